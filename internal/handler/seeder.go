package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/lib/pq"

	"github.com/Barkat-Ullah/seed-lift-backend/internal/database"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/middleware"
	model "github.com/Barkat-Ullah/seed-lift-backend/internal/models"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/query"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/ranking"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/scanner"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/utils"
)

// GetAllSeeders retourne le classement des seeders. Le tri se fait en
// mémoire sur le tuple (abonnement, palier, coins), la pagination
// s'applique après.
func GetAllSeeders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	values := r.URL.Query()
	now := time.Now()

	page, limit, err := parsePagination(values.Get("page"), values.Get("limit"))
	if err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, err.Error())
		return
	}
	if values.Get("limit") == "" {
		limit = 15
	}

	where := []string{"1=1"}
	args := []interface{}{}

	if term := values.Get("searchTerm"); term != "" {
		args = append(args, "%"+term+"%")
		where = append(where, fmt.Sprintf("(s.full_name ILIKE $%d OR s.email ILIKE $%d)", len(args), len(args)))
	}
	if level := values.Get("level"); level != "" {
		if _, ok := utils.LevelConfig[model.Level(level)]; !ok {
			utils.ErrorSimple(w, http.StatusBadRequest, "invalid level")
			return
		}
		args = append(args, level)
		where = append(where, fmt.Sprintf("s.level = $%d", len(args)))
	}

	sql := `
	SELECT s.id, s.full_name, s.email, s.phone_number, s.profile, s.description,
		s.skill, s.is_pro, s.level, s.coin, s.stripe_customer_id, s.subscription_id,
		s.subscription_start, s.subscription_end, s.created_at, s.updated_at,
		(SELECT COUNT(*) FROM comments c
			JOIN challenges ch ON ch.id = c.challenge_id
			WHERE c.seeder_id = s.id AND c.is_win = true AND ch.is_awarded = true)
	FROM seeders s
	WHERE `
	for i, cond := range where {
		if i > 0 {
			sql += " AND "
		}
		sql += cond
	}

	rows, err := database.DB.Query(ctx, sql, args...)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load seeders", err)
		return
	}
	defer rows.Close()

	seeders := []model.RankedSeeder{}
	for rows.Next() {
		var rs model.RankedSeeder
		err := rows.Scan(
			&rs.ID, &rs.FullName, &rs.Email, &rs.PhoneNumber, &rs.Profile, &rs.Description,
			pq.Array(&rs.Skill), &rs.IsPro, &rs.Level, &rs.Coin,
			&rs.StripeCustomerID, &rs.SubscriptionID, &rs.SubscriptionStart, &rs.SubscriptionEnd,
			&rs.CreatedAt, &rs.UpdatedAt, &rs.TotalWin,
		)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to scan seeder", err)
			return
		}
		seeders = append(seeders, rs)
	}
	if err := rows.Err(); err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load seeders", err)
		return
	}

	ranked := ranking.Rank(seeders, now)

	total := len(ranked)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	// Bloc du seeder connecté avec sa progression de palier
	var current map[string]interface{}
	if user, err := middleware.GetUserFromContext(r); err == nil && user.Role == model.RoleSeeder {
		seeder, err := findSeederByEmail(ctx, user.Email)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to load seeder", err)
			return
		}
		if seeder != nil {
			current = map[string]interface{}{
				"id":                    seeder.ID,
				"fullName":              seeder.FullName,
				"profile":               seeder.Profile,
				"level":                 seeder.Level,
				"coin":                  seeder.Coin,
				"rank":                  ranking.RankOf(ranked, seeder.ID),
				"hasActiveSubscription": utils.HasActiveSubscription(seeder, now),
				"levelProgress":         utils.CalculateLevelProgress(seeder.Coin),
				"levelInfo":             utils.LevelConfig[seeder.Level],
			}
		}
	}

	totalPage := (total + limit - 1) / limit

	utils.SuccessWithMeta(w, map[string]interface{}{
		"currentSeeder": current,
		"seeders":       ranked[start:end],
	}, query.Meta{Page: page, Limit: limit, Total: total, TotalPage: totalPage})
}

// GetSeederByID retourne la fiche d'un seeder avec son rang et ses
// statistiques de victoire
func GetSeederByID(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ctx := r.Context()
	now := time.Now()

	seeder, err := findSeederByID(ctx, id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load seeder", err)
		return
	}
	if seeder == nil {
		utils.ErrorSimple(w, http.StatusNotFound, "seeder not found")
		return
	}

	wins, totalComments, err := seederCommentStats(ctx, id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load seeder stats", err)
		return
	}

	var founderReplies int
	err = database.DB.QueryRow(ctx, `
		SELECT COUNT(*) FROM comments c
		JOIN comments p ON p.id = c.parent_id
		WHERE c.is_founder_reply = true AND p.seeder_id = $1`, id).Scan(&founderReplies)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to count replies", err)
		return
	}

	ranked, err := loadRankedSeeders(ctx, now)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to rank seeders", err)
		return
	}

	successRate := 0
	if totalComments > 0 {
		successRate = int(float64(wins)/float64(totalComments)*100 + 0.5)
	}

	utils.Success(w, map[string]interface{}{
		"id":                    seeder.ID,
		"fullName":              seeder.FullName,
		"description":           seeder.Description,
		"email":                 seeder.Email,
		"profile":               seeder.Profile,
		"phoneNumber":           seeder.PhoneNumber,
		"skill":                 seeder.Skill,
		"isPro":                 seeder.IsPro,
		"level":                 seeder.Level,
		"coin":                  seeder.Coin,
		"subscriptionStart":     utils.NullTimeToPointer(seeder.SubscriptionStart),
		"subscriptionEnd":       utils.NullTimeToPointer(seeder.SubscriptionEnd),
		"hasActiveSubscription": utils.HasActiveSubscription(seeder, now),
		"levelInfo":             utils.LevelConfig[seeder.Level],
		"ranking": model.SeederRanking{
			CurrentRank:  ranking.RankOf(ranked, seeder.ID),
			TotalSeeders: len(ranked),
		},
		"totalWins":    wins,
		"totalReplies": founderReplies,
		"successRate":  successRate,
	})
}

// GetMySeederChallenges fusionne les challenges où le seeder est invité
// et ceux qu'il a commentés, ces derniers prenant le dessus en cas de
// doublon
func GetMySeederChallenges(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.ErrorSimple(w, http.StatusUnauthorized, "authentication required")
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

	invited, err := queryChallengesWithRelations(ctx,
		[]string{
			"c.challenge_type = 'Private'",
			"c.invite_talents && $2",
			"c.is_deleted = false",
			"c.is_active = true",
			"c.status = 'PENDING'",
		},
		[]interface{}{seeder.ID, pq.Array([]string{seeder.ID})}, "seeder_id")
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load invited challenges", err)
		return
	}

	commented, err := queryChallengesWithRelations(ctx,
		[]string{
			"c.status = 'PENDING'",
			"EXISTS(SELECT 1 FROM comments cm2 WHERE cm2.challenge_id = c.id AND cm2.seeder_id = $2)",
		},
		[]interface{}{seeder.ID, seeder.ID}, "seeder_id")
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load commented challenges", err)
		return
	}

	type taggedChallenge struct {
		model.Challenge
		Type string `json:"type"`
	}

	merged := map[string]taggedChallenge{}
	order := []string{}
	for _, c := range invited {
		if _, ok := merged[c.ID]; !ok {
			order = append(order, c.ID)
		}
		merged[c.ID] = taggedChallenge{Challenge: c, Type: "invited"}
	}
	for _, c := range commented {
		if _, ok := merged[c.ID]; !ok {
			order = append(order, c.ID)
		}
		merged[c.ID] = taggedChallenge{Challenge: c, Type: "commented"}
	}

	result := make([]taggedChallenge, 0, len(order))
	for _, id := range order {
		result = append(result, merged[id])
	}

	utils.Success(w, result)
}

// MyRewards liste les victoires du seeder avec les compteurs globaux
// de challenges
func MyRewards(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.ErrorSimple(w, http.StatusUnauthorized, "authentication required")
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

	rows, err := database.DB.Query(ctx, `
		SELECT cm.id, ch.id, ch.title, ch.description, ch.tags, ch.category,
			ch.seed_points, ch.is_awarded, ch.status,
			(SELECT COUNT(*) FROM reacts r WHERE r.challenge_id = ch.id),
			(SELECT COUNT(*) FROM comments c2 WHERE c2.challenge_id = ch.id)
		FROM comments cm
		JOIN challenges ch ON ch.id = cm.challenge_id
		WHERE cm.seeder_id = $1 AND cm.is_win = true AND ch.is_awarded = true
		ORDER BY cm.updated_at DESC`, seeder.ID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load rewards", err)
		return
	}
	defer rows.Close()

	type rewardEntry struct {
		CommentID    string                `json:"commentId"`
		ChallengeID  string                `json:"challengeId"`
		Title        string                `json:"title"`
		Description  string                `json:"description"`
		Tags         []string              `json:"tags"`
		Category     string                `json:"category"`
		SeedPoints   int                   `json:"seedPoints"`
		IsAwarded    bool                  `json:"isAwarded"`
		Status       model.ChallengeStatus `json:"status"`
		ReactCount   int                   `json:"reactCount"`
		CommentCount int                   `json:"commentCount"`
	}

	rewards := []rewardEntry{}
	for rows.Next() {
		var e rewardEntry
		err := rows.Scan(&e.CommentID, &e.ChallengeID, &e.Title, &e.Description,
			pq.Array(&e.Tags), &e.Category, &e.SeedPoints, &e.IsAwarded, &e.Status,
			&e.ReactCount, &e.CommentCount)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to scan reward", err)
			return
		}
		rewards = append(rewards, e)
	}
	if err := rows.Err(); err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load rewards", err)
		return
	}

	var totalChallenge, activeChallenge int
	err = database.DB.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE is_active = true)
		FROM challenges`).Scan(&totalChallenge, &activeChallenge)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to count challenges", err)
		return
	}

	utils.Success(w, map[string]interface{}{
		"totalChallenge":  totalChallenge,
		"activeChallenge": activeChallenge,
		"rewards":         rewards,
	})
}

// UpdateSeederLevel recalcule le palier d'un seeder depuis son solde
func UpdateSeederLevel(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ctx := r.Context()

	seeder, err := findSeederByID(ctx, id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load seeder", err)
		return
	}
	if seeder == nil {
		utils.ErrorSimple(w, http.StatusNotFound, "seeder not found")
		return
	}

	newLevel := utils.GetLevelByCoins(seeder.Coin)

	updated, err := scanner.ScanSeeder(database.DB.QueryRow(ctx,
		`UPDATE seeders SET level = $1, updated_at = NOW() WHERE id = $2
		RETURNING `+seederColumns, newLevel, id))
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to update level", err)
		return
	}

	utils.Success(w, updated)
}
