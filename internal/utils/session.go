package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Barkat-Ullah/seed-lift-backend/internal/database"
)

// SessionDuration est la durée de vie d'un token de session
const SessionDuration = 7 * 24 * time.Hour

// CreateSession crée une session pour l'utilisateur et retourne le token
func CreateSession(ctx context.Context, userID string) (string, error) {
	token := uuid.New().String()
	expiresAt := time.Now().Add(SessionDuration)

	query := `INSERT INTO sessions (id, user_id, token, expires_at, is_active, created_at)
		VALUES ($1, $2, $3, $4, true, NOW())`

	_, err := database.DB.Exec(ctx, query, uuid.New().String(), userID, token, expiresAt)
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	return token, nil
}

// DeleteSession supprime la session liée au token (logout)
func DeleteSession(ctx context.Context, token string) error {
	_, err := database.DB.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteUserSessions invalide toutes les sessions d'un utilisateur
// (changement de mot de passe, restriction par un admin)
func DeleteUserSessions(ctx context.Context, userID string) error {
	_, err := database.DB.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}
	return nil
}
