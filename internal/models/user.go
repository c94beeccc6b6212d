package model

import (
	"database/sql"
	"time"
)

// UserRole représente les rôles de la plateforme
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleFounder UserRole = "FOUNDER"
	RoleSeeder  UserRole = "SEEDER"
)

// UserRoles liste les valeurs acceptées pour le filtre role
var UserRoles = []string{string(RoleAdmin), string(RoleFounder), string(RoleSeeder)}

// UserStatus représente l'état d'un compte
type UserStatus string

const (
	StatusActive     UserStatus = "ACTIVE"
	StatusRestricted UserStatus = "RESTRICTED"
)

// User est le compte d'authentification, lié à un profil seeder/founder/admin par email
type User struct {
	ID              string         `json:"id"`
	Email           string         `json:"email"`
	Password        string         `json:"-"`
	Role            UserRole       `json:"role"`
	Status          UserStatus     `json:"status"`
	IsEmailVerified bool           `json:"isEmailVerified"`
	IsDeleted       bool           `json:"isDeleted"`
	OTP             sql.NullString `json:"-"`
	OTPExpiry       sql.NullTime   `json:"-"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// AuthUser est l'utilisateur injecté dans le contexte des requêtes authentifiées
type AuthUser struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	FullName string   `json:"fullName"`
	Role     UserRole `json:"role"`
}

// UserSummary est la vue réduite retournée par le listing admin
type UserSummary struct {
	ID       string     `json:"id"`
	Email    string     `json:"email"`
	Role     UserRole   `json:"role"`
	Status   UserStatus `json:"status"`
	FullName string     `json:"fullName,omitempty"`
	Phone    string     `json:"phoneNumber,omitempty"`
}
