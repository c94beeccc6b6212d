package model

import (
	"database/sql"
	"time"
)

// Notification est une notification interne (fan-out à la création de challenge, etc.)
type Notification struct {
	ID         string         `json:"id"`
	ReceiverID string         `json:"receiverId"`
	SenderID   sql.NullString `json:"senderId,omitempty"`
	Title      string         `json:"title"`
	Body       string         `json:"body"`
	IsRead     bool           `json:"isRead"`
	CreatedAt  time.Time      `json:"createdAt"`
}
