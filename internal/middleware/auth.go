package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/Barkat-Ullah/seed-lift-backend/internal/database"
	model "github.com/Barkat-Ullah/seed-lift-backend/internal/models"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/utils"
)

// Context keys
type contextKey string

const (
	userContextKey  = contextKey("user")
	tokenContextKey = contextKey("token")
)

// AuthMiddleware valide le token de session et injecte l'utilisateur dans le contexte
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := utils.GetToken(r)
		if err != nil {
			utils.ErrorSimple(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		user, err := validateTokenAndGetUser(r.Context(), token)
		if err != nil {
			utils.ErrorSimple(w, http.StatusUnauthorized, fmt.Sprintf("invalid token: %v", err))
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, *user)
		ctx = context.WithValue(ctx, tokenContextKey, token)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth injecte l'utilisateur si le token est valide, continue sinon.
// Utilisé par les listings publics qui enrichissent la réponse quand
// l'appelant est connecté (isReact sur les challenges).
func OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token, err := utils.GetToken(r); err == nil {
			if user, err := validateTokenAndGetUser(r.Context(), token); err == nil {
				ctx := context.WithValue(r.Context(), userContextKey, *user)
				ctx = context.WithValue(ctx, tokenContextKey, token)
				r = r.WithContext(ctx)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRoles restreint une route aux rôles donnés, 403 sinon
func RequireRoles(roles ...model.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := GetUserFromContext(r)
			if err != nil {
				utils.ErrorSimple(w, http.StatusUnauthorized, "authentication required")
				return
			}
			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			utils.ErrorSimple(w, http.StatusForbidden, "insufficient permissions")
		})
	}
}

// validateTokenAndGetUser valide le token et retourne l'utilisateur associé.
// Le nom complet vient du profil lié au rôle (seeder, founder ou admin).
func validateTokenAndGetUser(ctx context.Context, token string) (*model.AuthUser, error) {
	var user model.AuthUser
	var status model.UserStatus

	query := `
	SELECT
		u.id, u.email, u.role, u.status,
		COALESCE(se.full_name, f.full_name, a.full_name, '')
	FROM users u
	JOIN sessions s ON u.id = s.user_id
	LEFT JOIN seeders se ON se.email = u.email AND u.role = 'SEEDER'
	LEFT JOIN founders f ON f.email = u.email AND u.role = 'FOUNDER'
	LEFT JOIN admins a ON a.email = u.email AND u.role = 'ADMIN'
	WHERE s.token = $1
		AND s.is_active = true
		AND s.expires_at > NOW()
		AND u.is_deleted = false`

	err := database.DB.QueryRow(ctx, query, token).Scan(
		&user.ID, &user.Email, &user.Role, &status, &user.FullName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("token not found or expired")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if status == model.StatusRestricted {
		return nil, fmt.Errorf("account restricted")
	}

	return &user, nil
}

// GetUserFromContext récupère l'utilisateur depuis le contexte de la requête
func GetUserFromContext(r *http.Request) (model.AuthUser, error) {
	user, ok := r.Context().Value(userContextKey).(model.AuthUser)
	if !ok {
		return model.AuthUser{}, fmt.Errorf("user not found in context")
	}
	return user, nil
}

// GetTokenFromContext récupère le token depuis le contexte de la requête
func GetTokenFromContext(r *http.Request) (string, error) {
	token, ok := r.Context().Value(tokenContextKey).(string)
	if !ok || token == "" {
		return "", fmt.Errorf("token not found in context")
	}
	return token, nil
}

// ValidateToken valide un token hors middleware (handshake websocket)
func ValidateToken(ctx context.Context, token string) (*model.AuthUser, error) {
	return validateTokenAndGetUser(ctx, token)
}
