package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Barkat-Ullah/seed-lift-backend/internal/database"
	model "github.com/Barkat-Ullah/seed-lift-backend/internal/models"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/scanner"
)

// chatUserQuery joint le profil lié au rôle pour le nom et la photo
const chatUserQuery = `
	SELECT
		u.id, u.email, u.role,
		COALESCE(se.full_name, f.full_name, a.full_name, ''),
		COALESCE(se.profile, f.profile, a.profile, '')
	FROM users u
	LEFT JOIN seeders se ON se.email = u.email AND u.role = 'SEEDER'
	LEFT JOIN founders f ON f.email = u.email AND u.role = 'FOUNDER'
	LEFT JOIN admins a ON a.email = u.email AND u.role = 'ADMIN'
	WHERE u.id = $1 AND u.is_deleted = false`

// GetChatUser retourne la vue correspondant d'un utilisateur, nil si absent
func GetChatUser(ctx context.Context, userID string) (*model.ChatUser, error) {
	var u model.ChatUser
	err := database.DB.QueryRow(ctx, chatUserQuery, userID).Scan(
		&u.ID, &u.Email, &u.Role, &u.FullName, &u.Profile,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load chat user: %w", err)
	}
	return &u, nil
}

// FindOrCreateRoom retrouve la room entre deux utilisateurs quel que soit
// le sens, la crée au premier message
func FindOrCreateRoom(ctx context.Context, senderID, receiverID string) (*model.Room, error) {
	query := `SELECT id, sender_id, receiver_id, created_at FROM rooms
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)`

	room, err := scanner.ScanRoom(database.DB.QueryRow(ctx, query, senderID, receiverID))
	if err == nil {
		return room, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to find room: %w", err)
	}

	insert := `INSERT INTO rooms (id, sender_id, receiver_id, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, sender_id, receiver_id, created_at`

	room, err = scanner.ScanRoom(database.DB.QueryRow(ctx, insert, uuid.New().String(), senderID, receiverID))
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return room, nil
}

// FindRoom retrouve la room entre deux utilisateurs, nil si aucune
func FindRoom(ctx context.Context, senderID, receiverID string) (*model.Room, error) {
	query := `SELECT id, sender_id, receiver_id, created_at FROM rooms
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)`

	room, err := scanner.ScanRoom(database.DB.QueryRow(ctx, query, senderID, receiverID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find room: %w", err)
	}
	return room, nil
}

// SaveChat persiste un message dans sa room
func SaveChat(ctx context.Context, roomID, senderID, receiverID, message string) (*model.Chat, error) {
	query := `INSERT INTO chats (id, room_id, sender_id, receiver_id, message, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, false, NOW())
		RETURNING id, room_id, sender_id, receiver_id, message, is_read, created_at`

	chat, err := scanner.ScanChat(database.DB.QueryRow(ctx, query,
		uuid.New().String(), roomID, senderID, receiverID, message))
	if err != nil {
		return nil, fmt.Errorf("failed to save chat: %w", err)
	}
	return chat, nil
}

// RoomChats retourne l'historique d'une room dans l'ordre chronologique,
// chaque message enrichi des profils des deux participants
func RoomChats(ctx context.Context, roomID string, sender, receiver *model.ChatUser) ([]model.ChatMessage, error) {
	query := `SELECT id, room_id, sender_id, receiver_id, message, is_read, created_at
		FROM chats WHERE room_id = $1 ORDER BY created_at ASC`

	rows, err := database.DB.Query(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chats: %w", err)
	}
	defer rows.Close()

	participants := map[string]*model.ChatUser{}
	if sender != nil {
		participants[sender.ID] = sender
	}
	if receiver != nil {
		participants[receiver.ID] = receiver
	}

	messages := []model.ChatMessage{}
	for rows.Next() {
		chat, err := scanner.ScanChat(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, model.ChatMessage{
			Chat:     *chat,
			Sender:   participants[chat.SenderID],
			Receiver: participants[chat.ReceiverID],
		})
	}
	return messages, rows.Err()
}

// MarkChatsRead marque lus les messages reçus dans une room
func MarkChatsRead(ctx context.Context, roomID, receiverID string) error {
	query := `UPDATE chats SET is_read = true
		WHERE room_id = $1 AND receiver_id = $2 AND is_read = false`

	_, err := database.DB.Exec(ctx, query, roomID, receiverID)
	if err != nil {
		return fmt.Errorf("failed to mark chats read: %w", err)
	}
	return nil
}

// UnreadChats retourne les messages non lus adressés à receiverID dans la room
func UnreadChats(ctx context.Context, roomID, receiverID string) ([]model.Chat, error) {
	query := `SELECT id, room_id, sender_id, receiver_id, message, is_read, created_at
		FROM chats WHERE room_id = $1 AND receiver_id = $2 AND is_read = false
		ORDER BY created_at ASC`

	rows, err := database.DB.Query(ctx, query, roomID, receiverID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unread chats: %w", err)
	}
	defer rows.Close()

	chats := []model.Chat{}
	for rows.Next() {
		chat, err := scanner.ScanChat(rows)
		if err != nil {
			return nil, err
		}
		chats = append(chats, *chat)
	}
	return chats, rows.Err()
}

// ConversationList retourne les conversations de l'utilisateur avec le
// dernier message de chacune. Les rooms vers un rôle non autorisé sont filtrées.
func ConversationList(ctx context.Context, userID string, role model.UserRole) ([]model.ConversationPreview, error) {
	query := `SELECT id, sender_id, receiver_id, created_at FROM rooms
		WHERE sender_id = $1 OR receiver_id = $1
		ORDER BY created_at DESC`

	rows, err := database.DB.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rooms: %w", err)
	}

	rooms := []model.Room{}
	for rows.Next() {
		room, err := scanner.ScanRoom(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		rooms = append(rooms, *room)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	previews := []model.ConversationPreview{}
	for _, room := range rooms {
		otherID := room.SenderID
		if otherID == userID {
			otherID = room.ReceiverID
		}

		other, err := GetChatUser(ctx, otherID)
		if err != nil {
			return nil, err
		}
		if other == nil || !IsValidChatPair(role, other.Role) {
			continue
		}

		last, err := lastChat(ctx, room.ID)
		if err != nil {
			return nil, err
		}

		previews = append(previews, model.ConversationPreview{User: *other, LastMessage: last})
	}
	return previews, nil
}

func lastChat(ctx context.Context, roomID string) (*model.Chat, error) {
	query := `SELECT id, room_id, sender_id, receiver_id, message, is_read, created_at
		FROM chats WHERE room_id = $1 ORDER BY created_at DESC LIMIT 1`

	chat, err := scanner.ScanChat(database.DB.QueryRow(ctx, query, roomID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load last chat: %w", err)
	}
	return chat, nil
}

// ChatUsersByIDs retourne les vues correspondants d'une liste d'utilisateurs
func ChatUsersByIDs(ctx context.Context, ids []string) ([]model.ChatUser, error) {
	users := []model.ChatUser{}
	for _, id := range ids {
		u, err := GetChatUser(ctx, id)
		if err != nil {
			return nil, err
		}
		if u != nil {
			users = append(users, *u)
		}
	}
	return users, nil
}
