package model

import "time"

// Room est une conversation entre deux utilisateurs
type Room struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Chat est un message persisté d'une room
type Chat struct {
	ID         string    `json:"id"`
	RoomID     string    `json:"roomId"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Message    string    `json:"message"`
	IsRead     bool      `json:"isRead"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ChatUser est la vue réduite d'un correspondant, nom et photo tirés du
// profil lié au rôle
type ChatUser struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	Role     UserRole `json:"role"`
	FullName string   `json:"fullName"`
	Profile  string   `json:"profile,omitempty"`
}

// ChatMessage est un message enrichi des profils expéditeur et destinataire
type ChatMessage struct {
	Chat
	Sender   *ChatUser `json:"sender,omitempty"`
	Receiver *ChatUser `json:"receiver,omitempty"`
}

// ConversationPreview est une entrée de la liste des conversations (dernier message)
type ConversationPreview struct {
	User        ChatUser `json:"user"`
	LastMessage *Chat    `json:"lastMessage"`
}
