package model

import (
	"database/sql"
	"time"
)

// ChallengeStatus suit le cycle de vie d'un challenge
type ChallengeStatus string

const (
	ChallengePending  ChallengeStatus = "PENDING"
	ChallengeFinished ChallengeStatus = "FINISHED"
)

// ChallengeType contrôle la visibilité d'un challenge
type ChallengeType string

const (
	ChallengePublic  ChallengeType = "Public"
	ChallengePrivate ChallengeType = "Private"
)

type Challenge struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	ChallengeType ChallengeType   `json:"challengeType"`
	Category      string          `json:"category"`
	Attachment    sql.NullString  `json:"attachment,omitempty"`
	Tags          []string        `json:"tags"`
	SeedPoints    int             `json:"seedPoints"`
	Deadline      time.Time       `json:"deadline"`
	Status        ChallengeStatus `json:"status"`
	IsActive      bool            `json:"isActive"`
	IsDeleted     bool            `json:"isDeleted"`
	IsAwarded     bool            `json:"isAwarded"`
	InviteTalents []string        `json:"inviteTalents"`
	FounderID     string          `json:"founderId"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`

	// Champs dérivés, jamais persistés
	RemainingDays int             `json:"remainingDays"`
	ReactCount    int             `json:"reactCount"`
	CommentCount  int             `json:"commentCount"`
	IsReact       bool            `json:"isReact"`
	Founder       *FounderSummary `json:"founder,omitempty"`
}

// ChallengeCounts accompagne la liste "mes challenges" d'un founder
type ChallengeCounts struct {
	TotalChallenge  int `json:"totalChallenge"`
	ActiveChallenge int `json:"activeChallenge"`
}
