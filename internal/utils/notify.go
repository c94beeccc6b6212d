package utils

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Barkat-Ullah/seed-lift-backend/internal/database"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/logger"
)

// CreateNotification insère une notification pour un destinataire.
// L'échec est loggé mais ne doit pas faire échouer l'opération appelante.
func CreateNotification(ctx context.Context, receiverID, senderID, title, body string) error {
	query := `INSERT INTO notifications (id, receiver_id, sender_id, title, body, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, false, NOW())`

	_, err := database.DB.Exec(ctx, query,
		uuid.New().String(), receiverID, StringToNullString(senderID), title, body)
	if err != nil {
		logger.Error("Erreur création notification pour %s: %v", receiverID, err)
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// CreateBulkNotifications notifie plusieurs destinataires d'un coup
// (fan-out de création de challenge vers tous les seeders)
func CreateBulkNotifications(ctx context.Context, receiverIDs []string, senderID, title, body string) error {
	if len(receiverIDs) == 0 {
		return nil
	}

	query := `INSERT INTO notifications (id, receiver_id, sender_id, title, body, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, false, NOW())`

	for _, receiverID := range receiverIDs {
		_, err := database.DB.Exec(ctx, query,
			uuid.New().String(), receiverID, StringToNullString(senderID), title, body)
		if err != nil {
			logger.Error("Erreur notification bulk pour %s: %v", receiverID, err)
			return fmt.Errorf("failed to create notifications: %w", err)
		}
	}

	logger.Info("%d notifications créées: %s", len(receiverIDs), title)
	return nil
}
