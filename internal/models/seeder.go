package model

import (
	"database/sql"
	"time"
)

// Level est le palier d'un seeder, dérivé de son solde de coins
type Level string

const (
	LevelStarter      Level = "Starter"
	LevelIntermediate Level = "Intermediate"
	LevelGold         Level = "Gold"
	LevelPro          Level = "Pro"
)

// Seeder est le profil d'un solveur de challenges
type Seeder struct {
	ID                string         `json:"id"`
	FullName          string         `json:"fullName"`
	Email             string         `json:"email"`
	PhoneNumber       string         `json:"phoneNumber,omitempty"`
	Profile           string         `json:"profile,omitempty"`
	Description       string         `json:"description,omitempty"`
	Skill             []string       `json:"skill"`
	IsPro             bool           `json:"isPro"`
	Level             Level          `json:"level"`
	Coin              int            `json:"coin"`
	StripeCustomerID  sql.NullString `json:"-"`
	SubscriptionID    sql.NullString `json:"subscriptionId,omitempty"`
	SubscriptionStart sql.NullTime   `json:"subscriptionStart,omitempty"`
	SubscriptionEnd   sql.NullTime   `json:"subscriptionEnd,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

// LevelInfo expose le palier courant avec ses bornes de coins
type LevelInfo struct {
	MinCoins int `json:"minCoins"`
	MaxCoins int `json:"maxCoins"` // -1 pour le dernier palier (pas de borne)
	Priority int `json:"priority"`
}

// LevelProgress décrit la progression vers le palier suivant
type LevelProgress struct {
	CurrentLevel       Level   `json:"currentLevel"`
	NextLevel          *Level  `json:"nextLevel"`
	CurrentCoins       int     `json:"currentCoins"`
	CoinsToNextLevel   int     `json:"coinsToNextLevel"`
	ProgressPercentage float64 `json:"progressPercentage"`
}

// RankedSeeder est un seeder enrichi des métadonnées de classement
type RankedSeeder struct {
	Seeder
	TotalWin              int       `json:"totalWin"`
	HasActiveSubscription bool      `json:"hasActiveSubscription"`
	LevelPriority         int       `json:"levelPriority"`
	Rank                  int       `json:"rank"`
	LevelInfo             LevelInfo `json:"levelInfo"`
}

// SeederRanking est le bloc de classement retourné sur la fiche d'un seeder
type SeederRanking struct {
	CurrentRank  int `json:"currentRank"`
	TotalSeeders int `json:"totalSeeders"`
}
