package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Barkat-Ullah/seed-lift-backend/internal/database"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/middleware"
	model "github.com/Barkat-Ullah/seed-lift-backend/internal/models"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/scanner"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/utils"
)

// receiverProfileID résout l'id du profil lié au rôle, les notifications
// sont adressées au profil et non au compte
func receiverProfileID(r *http.Request) (string, error) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		return "", err
	}

	ctx := r.Context()
	switch user.Role {
	case model.RoleSeeder:
		s, err := findSeederByEmail(ctx, user.Email)
		if err != nil || s == nil {
			return "", err
		}
		return s.ID, nil
	case model.RoleFounder:
		f, err := findFounderByEmail(ctx, user.Email)
		if err != nil || f == nil {
			return "", err
		}
		return f.ID, nil
	case model.RoleAdmin:
		a, err := findAdminByEmail(ctx, user.Email)
		if err != nil || a == nil {
			return "", err
		}
		return a.ID, nil
	}
	return "", nil
}

// GetMyNotifications liste les notifications du profil connecté avec
// le compteur de non lues
func GetMyNotifications(w http.ResponseWriter, r *http.Request) {
	receiverID, err := receiverProfileID(r)
	if err != nil || receiverID == "" {
		utils.ErrorSimple(w, http.StatusUnauthorized, "authentication required")
		return
	}

	ctx := r.Context()

	rows, err := database.DB.Query(ctx, `
		SELECT id, receiver_id, sender_id, title, body, is_read, created_at
		FROM notifications WHERE receiver_id = $1
		ORDER BY created_at DESC`, receiverID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load notifications", err)
		return
	}
	defer rows.Close()

	notifications := []model.Notification{}
	unread := 0
	for rows.Next() {
		n, err := scanner.ScanNotification(rows)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to scan notification", err)
			return
		}
		if !n.IsRead {
			unread++
		}
		notifications = append(notifications, *n)
	}
	if err := rows.Err(); err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load notifications", err)
		return
	}

	utils.Success(w, map[string]interface{}{
		"notifications": notifications,
		"unreadCount":   unread,
	})
}

// MarkNotificationRead marque une notification du profil connecté comme lue
func MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	receiverID, err := receiverProfileID(r)
	if err != nil || receiverID == "" {
		utils.ErrorSimple(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id := mux.Vars(r)["id"]

	tag, err := database.DB.Exec(r.Context(), `
		UPDATE notifications SET is_read = true
		WHERE id = $1 AND receiver_id = $2`, id, receiverID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to update notification", err)
		return
	}
	if tag.RowsAffected() == 0 {
		utils.ErrorSimple(w, http.StatusNotFound, "notification not found")
		return
	}

	utils.Message(w, "Notification marked as read")
}

// MarkAllNotificationsRead marque tout comme lu
func MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	receiverID, err := receiverProfileID(r)
	if err != nil || receiverID == "" {
		utils.ErrorSimple(w, http.StatusUnauthorized, "authentication required")
		return
	}

	tag, err := database.DB.Exec(r.Context(), `
		UPDATE notifications SET is_read = true
		WHERE receiver_id = $1 AND is_read = false`, receiverID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to update notifications", err)
		return
	}

	utils.Success(w, map[string]interface{}{
		"updated": tag.RowsAffected(),
	})
}
