package chat

import model "github.com/Barkat-Ullah/seed-lift-backend/internal/models"

// Évènements du protocole websocket
const (
	EventAuthenticate     = "authenticate"
	EventMessage          = "message"
	EventFreeStyleMessage = "freeStyleMessage"
	EventFetchChats       = "fetchChats"
	EventUnreadMessages   = "unReadMessages"
	EventMessageList      = "messageList"
	EventOnlineUsers      = "onlineUsers"
	EventUserStatus       = "userStatus"
	EventError            = "error"
)

// Envelope est le format sortant: {event, data} ou {event, message} en erreur
type Envelope struct {
	Event   string      `json:"event"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// clientEvent est le format entrant envoyé par le front
type clientEvent struct {
	Event      string `json:"event"`
	Token      string `json:"token,omitempty"`
	ReceiverID string `json:"receiverId,omitempty"`
	Message    string `json:"message,omitempty"`
}

// IsValidChatPair autorise la discussion entre rôles différents uniquement.
// Deux seeders ou deux founders ne peuvent pas se parler.
func IsValidChatPair(senderRole, receiverRole model.UserRole) bool {
	switch senderRole {
	case model.RoleSeeder:
		return receiverRole == model.RoleFounder || receiverRole == model.RoleAdmin
	case model.RoleFounder:
		return receiverRole == model.RoleSeeder || receiverRole == model.RoleAdmin
	case model.RoleAdmin:
		return receiverRole == model.RoleSeeder || receiverRole == model.RoleFounder
	}
	return false
}
