package model

import (
	"database/sql"
	"time"
)

// Comment est une soumission de seeder sur un challenge, ou une réponse de founder
type Comment struct {
	ID             string         `json:"id"`
	Content        string         `json:"content"`
	SeederID       sql.NullString `json:"seederId,omitempty"`
	FounderID      sql.NullString `json:"founderId,omitempty"`
	ChallengeID    string         `json:"challengeId"`
	ParentID       sql.NullString `json:"parentId,omitempty"`
	IsFounderReply bool           `json:"isFounderReply"`
	IsWin          bool           `json:"isWin"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`

	// Relations chargées à la demande
	Seeder  *CommentAuthor `json:"seeder,omitempty"`
	Founder *CommentAuthor `json:"founder,omitempty"`
	Replies []Comment      `json:"replies,omitempty"`
}

// CommentAuthor est la vue réduite de l'auteur d'un commentaire
type CommentAuthor struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Profile  string `json:"profile,omitempty"`
	Level    Level  `json:"level,omitempty"`
	Coin     int    `json:"coin,omitempty"`
}

// Commenter est un seeder unique ayant commenté un challenge, avec son premier commentaire
type Commenter struct {
	CommentAuthor
	FirstComment *Comment `json:"firstComment,omitempty"`
}

// React est la réaction (toggle) d'un seeder sur un challenge
type React struct {
	ID          string    `json:"id"`
	FounderID   string    `json:"founderId"`
	SeederID    string    `json:"seederId"`
	ChallengeID string    `json:"challengeId"`
	IsReact     bool      `json:"isReact"`
	CreatedAt   time.Time `json:"createdAt"`
}
