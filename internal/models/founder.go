package model

import (
	"database/sql"
	"time"
)

// Founder est le profil d'un créateur de challenges
type Founder struct {
	ID                string         `json:"id"`
	FullName          string         `json:"fullName"`
	Email             string         `json:"email"`
	PhoneNumber       string         `json:"phoneNumber,omitempty"`
	Profile           string         `json:"profile,omitempty"`
	Description       string         `json:"description,omitempty"`
	BusinessName      string         `json:"businessName,omitempty"`
	OrgType           string         `json:"orgType,omitempty"`
	StripeCustomerID  sql.NullString `json:"-"`
	SubscriptionID    sql.NullString `json:"subscriptionId,omitempty"`
	SubscriptionStart sql.NullTime   `json:"subscriptionStart,omitempty"`
	SubscriptionEnd   sql.NullTime   `json:"subscriptionEnd,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

// FounderSummary est la vue réduite du founder attachée aux challenges
type FounderSummary struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	FullName string   `json:"fullName"`
	Profile  string   `json:"profile,omitempty"`
	Role     UserRole `json:"role,omitempty"`
}

// Admin est le profil d'un modérateur
type Admin struct {
	ID          string    `json:"id"`
	FullName    string    `json:"fullName"`
	Email       string    `json:"email"`
	Profile     string    `json:"profile,omitempty"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	Address     string    `json:"address,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
