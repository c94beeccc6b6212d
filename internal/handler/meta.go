package handler

import (
	"net/http"
	"time"

	"github.com/Barkat-Ullah/seed-lift-backend/internal/database"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/middleware"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/utils"
)

// GetAdminMeta agrège les métriques du tableau de bord admin sur la
// période demandée (monthly par défaut, yearly sinon)
func GetAdminMeta(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.ErrorSimple(w, http.StatusUnauthorized, "authentication required")
		return
	}

	ctx := r.Context()

	admin, err := findAdminByEmail(ctx, user.Email)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load admin", err)
		return
	}
	if admin == nil {
		utils.ErrorSimple(w, http.StatusNotFound, "admin not found")
		return
	}

	period := r.URL.Query().Get("period")
	if period == "" {
		period = "monthly"
	}

	start, end, err := utils.DateRange(period, time.Now())
	if err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, err.Error())
		return
	}

	var totalChallenges, totalFounders, totalSeeders int
	var totalRevenue float64

	err = database.DB.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM challenges WHERE created_at >= $1 AND created_at < $2),
			(SELECT COUNT(*) FROM founders f
				JOIN users u ON u.email = f.email
				WHERE u.is_deleted = false AND u.created_at >= $1 AND u.created_at < $2),
			(SELECT COUNT(*) FROM seeders s
				JOIN users u ON u.email = s.email
				WHERE u.is_deleted = false AND u.created_at >= $1 AND u.created_at < $2),
			(SELECT COALESCE(SUM(amount), 0) FROM payments
				WHERE created_at >= $1 AND created_at < $2)`,
		start, end).Scan(&totalChallenges, &totalFounders, &totalSeeders, &totalRevenue)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to aggregate metrics", err)
		return
	}

	type leaderEntry struct {
		ID       string `json:"id"`
		FullName string `json:"fullName"`
		Email    string `json:"email"`
		Count    int    `json:"count"`
	}

	topFounders := []leaderEntry{}
	rows, err := database.DB.Query(ctx, `
		SELECT f.id, f.full_name, f.email, COUNT(c.id)
		FROM founders f
		JOIN users u ON u.email = f.email AND u.is_deleted = false
		JOIN challenges c ON c.founder_id = f.id
			AND c.is_awarded = true AND c.created_at >= $1 AND c.created_at < $2
		GROUP BY f.id, f.full_name, f.email
		ORDER BY COUNT(c.id) DESC
		LIMIT 3`, start, end)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load top founders", err)
		return
	}
	defer rows.Close()
	for rows.Next() {
		var e leaderEntry
		if err := rows.Scan(&e.ID, &e.FullName, &e.Email, &e.Count); err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to scan founder", err)
			return
		}
		topFounders = append(topFounders, e)
	}
	if err := rows.Err(); err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load top founders", err)
		return
	}

	topSeeders := []leaderEntry{}
	rows, err = database.DB.Query(ctx, `
		SELECT s.id, s.full_name, s.email, COUNT(cm.id)
		FROM seeders s
		JOIN users u ON u.email = s.email AND u.is_deleted = false
		JOIN comments cm ON cm.seeder_id = s.id
			AND cm.is_win = true AND cm.created_at >= $1 AND cm.created_at < $2
		GROUP BY s.id, s.full_name, s.email
		ORDER BY COUNT(cm.id) DESC
		LIMIT 2`, start, end)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load top seeders", err)
		return
	}
	defer rows.Close()
	for rows.Next() {
		var e leaderEntry
		if err := rows.Scan(&e.ID, &e.FullName, &e.Email, &e.Count); err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to scan seeder", err)
			return
		}
		topSeeders = append(topSeeders, e)
	}
	if err := rows.Err(); err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load top seeders", err)
		return
	}

	utils.Success(w, map[string]interface{}{
		"totalRevenue":    totalRevenue,
		"totalFounders":   totalFounders,
		"totalSeeders":    totalSeeders,
		"totalChallenges": totalChallenges,
		"topFounders":     topFounders,
		"topSeeders":      topSeeders,
	})
}
