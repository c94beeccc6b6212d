package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"

	"github.com/Barkat-Ullah/seed-lift-backend/internal/database"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/middleware"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/scanner"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/utils"
)

type reactRequest struct {
	ChallengeID string `json:"challengeId"`
}

// ToggleReact crée ou inverse la réaction du seeder sur un challenge.
// Une ligne par triplet (founder, seeder, challenge).
func ToggleReact(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.ErrorSimple(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req reactRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ChallengeID == "" {
		utils.ErrorSimple(w, http.StatusBadRequest, "challengeId is required")
		return
	}

	ctx := r.Context()

	seeder, err := findSeederByEmail(ctx, user.Email)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load seeder", err)
		return
	}
	if seeder == nil {
		utils.ErrorSimple(w, http.StatusNotFound, "seeder not found")
		return
	}

	challenge, err := loadChallenge(ctx, req.ChallengeID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load challenge", err)
		return
	}
	if challenge == nil {
		utils.ErrorSimple(w, http.StatusNotFound, "challenge not found")
		return
	}

	var out struct {
		ID      string `json:"id"`
		IsReact bool   `json:"isReact"`
	}

	err = database.DB.QueryRow(ctx,
		`UPDATE reacts SET is_react = NOT is_react
		WHERE founder_id = $1 AND seeder_id = $2 AND challenge_id = $3
		RETURNING id, is_react`,
		challenge.FounderID, seeder.ID, req.ChallengeID).Scan(&out.ID, &out.IsReact)
	if errors.Is(err, pgx.ErrNoRows) {
		err = database.DB.QueryRow(ctx,
			`INSERT INTO reacts (id, founder_id, seeder_id, challenge_id, is_react, created_at)
			VALUES ($1, $2, $3, $4, true, NOW())
			RETURNING id, is_react`,
			uuid.New().String(), challenge.FounderID, seeder.ID, req.ChallengeID).
			Scan(&out.ID, &out.IsReact)
	}
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to toggle react", err)
		return
	}

	utils.Success(w, out)
}

// GetReactsByChallenge liste les réactions d'un challenge avec leur total
func GetReactsByChallenge(w http.ResponseWriter, r *http.Request) {
	challengeID := mux.Vars(r)["id"]
	ctx := r.Context()

	rows, err := database.DB.Query(ctx,
		`SELECT id, founder_id, seeder_id, challenge_id, is_react, created_at
		FROM reacts WHERE challenge_id = $1`, challengeID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load reacts", err)
		return
	}
	defer rows.Close()

	type reactEntry struct {
		ID       string `json:"id"`
		SeederID string `json:"seederId"`
	}

	reacts := []reactEntry{}
	for rows.Next() {
		react, err := scanner.ScanReact(rows)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to scan react", err)
			return
		}
		reacts = append(reacts, reactEntry{ID: react.ID, SeederID: react.SeederID})
	}
	if err := rows.Err(); err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load reacts", err)
		return
	}

	utils.Success(w, map[string]interface{}{
		"reacts":     reacts,
		"totalReact": len(reacts),
	})
}
