package model

import (
	"database/sql"
	"time"
)

// SubscriptionDuration est la périodicité de facturation d'un plan
type SubscriptionDuration string

const (
	DurationMonthly SubscriptionDuration = "MONTHLY"
	DurationYearly  SubscriptionDuration = "YEARLY"
)

// PaymentStatus suit l'état d'un paiement Stripe
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentSuccess PaymentStatus = "SUCCESS"
	PaymentFailed  PaymentStatus = "FAILED"
)

// Subscription est un plan d'abonnement, adossé à un produit/prix Stripe
type Subscription struct {
	ID              string               `json:"id"`
	Title           string               `json:"title"`
	Price           float64              `json:"price"`
	Duration        SubscriptionDuration `json:"duration"`
	Feature         []string             `json:"feature"`
	StripePriceID   sql.NullString       `json:"stripePriceId,omitempty"`
	StripeProductID sql.NullString       `json:"-"`
	IsActive        bool                 `json:"isActive"`
	AdminID         sql.NullString       `json:"-"`
	CreatedAt       time.Time            `json:"createdAt"`
}

// Payment est l'enregistrement local d'un paiement d'abonnement
type Payment struct {
	ID                   string         `json:"id"`
	SubscriptionID       string         `json:"subscriptionId"`
	FounderID            sql.NullString `json:"founderId,omitempty"`
	SeederID             sql.NullString `json:"seederId,omitempty"`
	Amount               float64        `json:"amount"`
	Currency             string         `json:"currency"`
	Status               PaymentStatus  `json:"status"`
	StripeSubscriptionID string         `json:"stripeSubscriptionId"`
	StripeCustomerID     string         `json:"stripeCustomerId"`
	StripePaymentID      sql.NullString `json:"stripePaymentId,omitempty"`
	CreatedAt            time.Time      `json:"createdAt"`
}

// UserSubscription est la vue "mon abonnement" avec les jours restants
type UserSubscription struct {
	ID            string               `json:"id"`
	Title         string               `json:"title"`
	Duration      SubscriptionDuration `json:"duration"`
	Feature       []string             `json:"feature"`
	StartDate     time.Time            `json:"startDate"`
	EndDate       time.Time            `json:"endDate"`
	RemainingDays int                  `json:"remainingDays"`
	Owner         string               `json:"owner"`
}
