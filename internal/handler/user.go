package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/lib/pq"

	"github.com/Barkat-Ullah/seed-lift-backend/internal/database"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/logger"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/middleware"
	model "github.com/Barkat-Ullah/seed-lift-backend/internal/models"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/query"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/ranking"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/scanner"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/services"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/utils"
)

// UserHandler porte les opérations de compte, cloudinary est injecté
// pour la photo de profil
type UserHandler struct {
	Cloudinary *services.CloudinaryService
}

func NewUserHandler(cloudinary *services.CloudinaryService) *UserHandler {
	return &UserHandler{Cloudinary: cloudinary}
}

func userSchema() query.Schema {
	return query.Schema{
		Table: "users",
		PK:    "id",
		SelectColumns: "id, email, role, status, is_email_verified, is_deleted, " +
			"otp, otp_expiry, created_at, updated_at",
		Fields: map[string]query.Field{
			"id":     {Column: "id", Type: query.FieldText},
			"email":  {Column: "email", Type: query.FieldText, Searchable: true, Sortable: true},
			"role":   {Column: "role", Type: query.FieldEnum, Filterable: true, Enum: []string{"SEEDER", "FOUNDER"}},
			"status": {Column: "status", Type: query.FieldEnum, Filterable: true, Enum: []string{"ACTIVE", "RESTRICTED"}},
			"isEmailVerified": {Column: "is_email_verified", Type: query.FieldBool, Filterable: true},
			"createdAt":       {Column: "created_at", Sortable: true},
		},
		DefaultSort: "-createdAt",
		BaseWhere:   []string{"role IN ('SEEDER', 'FOUNDER')", "is_deleted = false"},
	}
}

// GetAll liste les comptes seeder et founder pour l'admin, enrichis du
// nom et du téléphone du profil lié
func (h *UserHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	b := query.New(userSchema())
	if err := b.FromQuery(r.URL.Query()); err != nil {
		if query.IsValidation(err) {
			utils.ErrorSimple(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.Error(w, http.StatusInternalServerError, "failed to build query", err)
		return
	}

	users, meta, err := query.Execute(ctx, database.DB, b, scanner.ScanUser)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load users", err)
		return
	}

	summaries := make([]model.UserSummary, 0, len(users))
	for _, u := range users {
		s := model.UserSummary{ID: u.ID, Email: u.Email, Role: u.Role, Status: u.Status}

		err := database.DB.QueryRow(ctx, `
			SELECT COALESCE(se.full_name, fo.full_name, ''),
				COALESCE(se.phone_number, fo.phone_number, '')
			FROM users u
			LEFT JOIN seeders se ON se.email = u.email AND u.role = 'SEEDER'
			LEFT JOIN founders fo ON fo.email = u.email AND u.role = 'FOUNDER'
			WHERE u.id = $1`, u.ID).Scan(&s.FullName, &s.Phone)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to load user profile", err)
			return
		}
		summaries = append(summaries, s)
	}

	utils.SuccessWithMeta(w, summaries, meta)
}

// GetMyProfile retourne le compte et son profil selon le rôle.
// Le niveau du seeder est recalculé depuis son solde au passage.
func (h *UserHandler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.ErrorSimple(w, http.StatusUnauthorized, "authentication required")
		return
	}

	ctx := r.Context()

	profile, err := h.profileForRole(ctx, user, true)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load profile", err)
		return
	}
	if profile == nil {
		utils.ErrorSimple(w, http.StatusNotFound, "profile not found")
		return
	}

	utils.Success(w, map[string]interface{}{
		"id":      user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"profile": profile,
	})
}

// GetUserDetails retourne la fiche complète d'un compte pour l'admin,
// avec le bloc de classement pour un seeder et les compteurs de
// challenges pour un founder
func (h *UserHandler) GetUserDetails(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ctx := r.Context()

	var u model.User
	err := database.DB.QueryRow(ctx,
		`SELECT id, email, role, status, is_deleted, is_email_verified
		FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Email, &u.Role, &u.Status, &u.IsDeleted, &u.IsEmailVerified)
	if err != nil {
		utils.ErrorSimple(w, http.StatusNotFound, "user not found")
		return
	}

	var profile map[string]interface{}

	switch u.Role {
	case model.RoleAdmin:
		admin, err := findAdminByEmail(ctx, u.Email)
		if err != nil || admin == nil {
			utils.ErrorSimple(w, http.StatusNotFound, "profile details not found")
			return
		}
		profile = map[string]interface{}{
			"id": admin.ID, "fullName": admin.FullName, "profile": admin.Profile,
			"phoneNumber": admin.PhoneNumber, "address": admin.Address,
		}

	case model.RoleSeeder:
		seeder, err := findSeederByEmail(ctx, u.Email)
		if err != nil || seeder == nil {
			utils.ErrorSimple(w, http.StatusNotFound, "profile details not found")
			return
		}
		profile, err = h.seederDetails(ctx, seeder)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to load seeder details", err)
			return
		}

	case model.RoleFounder:
		founder, err := findFounderByEmail(ctx, u.Email)
		if err != nil || founder == nil {
			utils.ErrorSimple(w, http.StatusNotFound, "profile details not found")
			return
		}

		var total, awarded int
		err = database.DB.QueryRow(ctx, `
			SELECT COUNT(*),
				COUNT(*) FILTER (WHERE is_awarded = true)
			FROM challenges WHERE founder_id = $1`, founder.ID).Scan(&total, &awarded)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to count challenges", err)
			return
		}
		profile = map[string]interface{}{
			"id": founder.ID, "fullName": founder.FullName, "email": founder.Email,
			"profile": founder.Profile, "phoneNumber": founder.PhoneNumber,
			"description": founder.Description, "businessName": founder.BusinessName,
			"orgType":           founder.OrgType,
			"totalChallenges":   total,
			"awardedChallenges": awarded,
		}
	}

	utils.Success(w, map[string]interface{}{
		"id":              u.ID,
		"email":           u.Email,
		"role":            u.Role,
		"status":          u.Status,
		"isDeleted":       u.IsDeleted,
		"isEmailVerified": u.IsEmailVerified,
		"profile":         profile,
	})
}

// UpdateUserStatus bascule ACTIVE <-> RESTRICTED (admin)
func (h *UserHandler) UpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ctx := r.Context()

	var current model.UserStatus
	err := database.DB.QueryRow(ctx,
		`SELECT status FROM users WHERE id = $1`, id).Scan(&current)
	if err != nil {
		utils.ErrorSimple(w, http.StatusNotFound, "user not found")
		return
	}

	newStatus := model.StatusRestricted
	if current == model.StatusRestricted {
		newStatus = model.StatusActive
	}

	var out struct {
		ID     string           `json:"id"`
		Email  string           `json:"email"`
		Role   model.UserRole   `json:"role"`
		Status model.UserStatus `json:"status"`
	}
	err = database.DB.QueryRow(ctx,
		`UPDATE users SET status = $1, updated_at = NOW() WHERE id = $2
		RETURNING id, email, role, status`, newStatus, id).
		Scan(&out.ID, &out.Email, &out.Role, &out.Status)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to update status", err)
		return
	}

	// Un compte restreint perd ses sessions ouvertes
	if newStatus == model.StatusRestricted {
		if err := utils.DeleteUserSessions(ctx, id); err != nil {
			logger.Error("Erreur invalidation sessions %s: %v", id, err)
		}
	}

	utils.Success(w, out)
}

// SoftDeleteUser marque le compte supprimé
func (h *UserHandler) SoftDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ctx := r.Context()

	var out struct {
		ID        string `json:"id"`
		IsDeleted bool   `json:"isDeleted"`
	}
	err := database.DB.QueryRow(ctx,
		`UPDATE users SET is_deleted = true, updated_at = NOW() WHERE id = $1
		RETURNING id, is_deleted`, id).Scan(&out.ID, &out.IsDeleted)
	if err != nil {
		utils.ErrorSimple(w, http.StatusNotFound, "user not found")
		return
	}

	if err := utils.DeleteUserSessions(ctx, id); err != nil {
		logger.Error("Erreur invalidation sessions %s: %v", id, err)
	}

	utils.Success(w, out)
}

// HardDeleteUser efface définitivement le compte et ses sessions
func (h *UserHandler) HardDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ctx := r.Context()

	if err := utils.DeleteUserSessions(ctx, id); err != nil {
		logger.Error("Erreur invalidation sessions %s: %v", id, err)
	}

	var out struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	err := database.DB.QueryRow(ctx,
		`DELETE FROM users WHERE id = $1 RETURNING id, email`, id).
		Scan(&out.ID, &out.Email)
	if err != nil {
		utils.ErrorSimple(w, http.StatusNotFound, "user not found")
		return
	}

	logger.Warning("Compte supprimé définitivement: %s", out.Email)
	utils.Success(w, out)
}

type profileUpdateRequest struct {
	FullName     string   `json:"fullName,omitempty"`
	PhoneNumber  string   `json:"phoneNumber,omitempty"`
	Description  string   `json:"description,omitempty"`
	Address      string   `json:"address,omitempty"`
	Skill        []string `json:"skill,omitempty"`
	BusinessName string   `json:"businessName,omitempty"`
	OrgType      string   `json:"orgType,omitempty"`
}

// UpdateMyProfile modifie le profil lié au rôle, avec upload de la
// photo si un fichier est joint
func (h *UserHandler) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.ErrorSimple(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req profileUpdateRequest
	if err := utils.DecodeMultipartData(r, &req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()

	var profileURL string
	if file, _, err := r.FormFile("file"); err == nil {
		defer file.Close()
		profileURL, err = h.Cloudinary.UploadProfileImage(ctx, file, user.ID)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to upload profile image", err)
			return
		}
	}

	switch user.Role {
	case model.RoleAdmin:
		admin, err := findAdminByEmail(ctx, user.Email)
		if err != nil || admin == nil {
			utils.ErrorSimple(w, http.StatusNotFound, "profile not found")
			return
		}
		applyString(&admin.FullName, req.FullName)
		applyString(&admin.PhoneNumber, req.PhoneNumber)
		applyString(&admin.Address, req.Address)
		applyString(&admin.Profile, profileURL)

		_, err = database.DB.Exec(ctx,
			`UPDATE admins SET full_name = $1, phone_number = $2, address = $3, profile = $4
			WHERE email = $5`,
			admin.FullName, admin.PhoneNumber, admin.Address, admin.Profile, user.Email)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to update profile", err)
			return
		}
		utils.Success(w, admin)

	case model.RoleFounder:
		founder, err := findFounderByEmail(ctx, user.Email)
		if err != nil || founder == nil {
			utils.ErrorSimple(w, http.StatusNotFound, "profile not found")
			return
		}
		applyString(&founder.FullName, req.FullName)
		applyString(&founder.PhoneNumber, req.PhoneNumber)
		applyString(&founder.Description, req.Description)
		applyString(&founder.BusinessName, req.BusinessName)
		applyString(&founder.OrgType, req.OrgType)
		applyString(&founder.Profile, profileURL)

		_, err = database.DB.Exec(ctx,
			`UPDATE founders SET full_name = $1, phone_number = $2, description = $3,
				business_name = $4, org_type = $5, profile = $6, updated_at = NOW()
			WHERE email = $7`,
			founder.FullName, founder.PhoneNumber, founder.Description,
			founder.BusinessName, founder.OrgType, founder.Profile, user.Email)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to update profile", err)
			return
		}
		utils.Success(w, founder)

	case model.RoleSeeder:
		seeder, err := findSeederByEmail(ctx, user.Email)
		if err != nil || seeder == nil {
			utils.ErrorSimple(w, http.StatusNotFound, "profile not found")
			return
		}
		applyString(&seeder.FullName, req.FullName)
		applyString(&seeder.PhoneNumber, req.PhoneNumber)
		applyString(&seeder.Description, req.Description)
		applyString(&seeder.Profile, profileURL)
		if len(req.Skill) > 0 {
			seeder.Skill = req.Skill
		}

		_, err = database.DB.Exec(ctx,
			`UPDATE seeders SET full_name = $1, phone_number = $2, description = $3,
				skill = $4, profile = $5, updated_at = NOW()
			WHERE email = $6`,
			seeder.FullName, seeder.PhoneNumber, seeder.Description,
			pq.Array(seeder.Skill), seeder.Profile, user.Email)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to update profile", err)
			return
		}
		utils.Success(w, seeder)

	default:
		utils.ErrorSimple(w, http.StatusBadRequest, "unsupported role")
	}
}

// ----- helpers -----

func applyString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// profileForRole charge le bloc profil de my-profile. refreshLevel
// recalcule le palier du seeder depuis son solde.
func (h *UserHandler) profileForRole(ctx context.Context, user model.AuthUser, refreshLevel bool) (map[string]interface{}, error) {
	switch user.Role {
	case model.RoleAdmin:
		admin, err := findAdminByEmail(ctx, user.Email)
		if err != nil || admin == nil {
			return nil, err
		}
		return map[string]interface{}{
			"id": admin.ID, "fullName": admin.FullName, "profile": admin.Profile,
			"phoneNumber": admin.PhoneNumber, "address": admin.Address,
		}, nil

	case model.RoleSeeder:
		seeder, err := findSeederByEmail(ctx, user.Email)
		if err != nil || seeder == nil {
			return nil, err
		}

		if refreshLevel {
			newLevel := utils.GetLevelByCoins(seeder.Coin)
			if newLevel != seeder.Level {
				_, err := database.DB.Exec(ctx,
					`UPDATE seeders SET level = $1, updated_at = NOW() WHERE id = $2 AND level <> $1`,
					newLevel, seeder.ID)
				if err != nil {
					return nil, err
				}
				seeder.Level = newLevel
			}
		}

		wins, totalComments, err := seederCommentStats(ctx, seeder.ID)
		if err != nil {
			return nil, err
		}

		return map[string]interface{}{
			"id": seeder.ID, "fullName": seeder.FullName, "email": seeder.Email,
			"profile": seeder.Profile, "phoneNumber": seeder.PhoneNumber,
			"description": seeder.Description, "skill": seeder.Skill,
			"isPro": seeder.IsPro, "level": seeder.Level, "coin": seeder.Coin,
			"subscriptionStart": utils.NullTimeToPointer(seeder.SubscriptionStart),
			"subscriptionEnd":   utils.NullTimeToPointer(seeder.SubscriptionEnd),
			"totalWins":         wins,
			"commentCount":      totalComments,
			"levelProgress":     utils.CalculateLevelProgress(seeder.Coin),
		}, nil

	case model.RoleFounder:
		founder, err := findFounderByEmail(ctx, user.Email)
		if err != nil || founder == nil {
			return nil, err
		}
		return map[string]interface{}{
			"id": founder.ID, "fullName": founder.FullName, "email": founder.Email,
			"profile": founder.Profile, "phoneNumber": founder.PhoneNumber,
			"description": founder.Description, "businessName": founder.BusinessName,
			"orgType":           founder.OrgType,
			"subscriptionStart": utils.NullTimeToPointer(founder.SubscriptionStart),
			"subscriptionEnd":   utils.NullTimeToPointer(founder.SubscriptionEnd),
		}, nil
	}

	return nil, nil
}

// seederDetails assemble le bloc seeder de la fiche admin, classement inclus
func (h *UserHandler) seederDetails(ctx context.Context, seeder *model.Seeder) (map[string]interface{}, error) {
	now := time.Now()

	wins, totalComments, err := seederCommentStats(ctx, seeder.ID)
	if err != nil {
		return nil, err
	}

	// Réponses de founders sous les commentaires de ce seeder
	var founderReplies int
	err = database.DB.QueryRow(ctx, `
		SELECT COUNT(*) FROM comments c
		JOIN comments p ON p.id = c.parent_id
		WHERE c.is_founder_reply = true AND p.seeder_id = $1`, seeder.ID).Scan(&founderReplies)
	if err != nil {
		return nil, err
	}

	ranked, err := loadRankedSeeders(ctx, now)
	if err != nil {
		return nil, err
	}
	rank := ranking.RankOf(ranked, seeder.ID)

	successRate := 0
	if totalComments > 0 {
		successRate = int(float64(wins)/float64(totalComments)*100 + 0.5)
	}

	return map[string]interface{}{
		"id": seeder.ID, "fullName": seeder.FullName, "email": seeder.Email,
		"profile": seeder.Profile, "phoneNumber": seeder.PhoneNumber,
		"description": seeder.Description, "skill": seeder.Skill,
		"isPro": seeder.IsPro, "level": seeder.Level, "coin": seeder.Coin,
		"subscriptionStart": utils.NullTimeToPointer(seeder.SubscriptionStart),
		"subscriptionEnd":   utils.NullTimeToPointer(seeder.SubscriptionEnd),
		"hasSubscription":   utils.HasActiveSubscription(seeder, now),
		"levelInfo":         utils.LevelConfig[seeder.Level],
		"currentRank":       rank,
		"totalSeeders":      len(ranked),
		"totalWins":         wins,
		"totalReplies":      founderReplies,
		"successRate":       successRate,
	}, nil
}

// seederCommentStats compte les commentaires gagnants (sur challenge
// récompensé) et le total de commentaires du seeder
func seederCommentStats(ctx context.Context, seederID string) (int, int, error) {
	var wins, total int
	err := database.DB.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM comments c
				JOIN challenges ch ON ch.id = c.challenge_id
				WHERE c.seeder_id = $1 AND c.is_win = true AND ch.is_awarded = true),
			(SELECT COUNT(*) FROM comments WHERE seeder_id = $1)`,
		seederID).Scan(&wins, &total)
	return wins, total, err
}

// loadRankedSeeders charge tous les seeders et applique le classement
func loadRankedSeeders(ctx context.Context, now time.Time) ([]model.RankedSeeder, error) {
	rows, err := database.DB.Query(ctx,
		"SELECT "+seederColumns+" FROM seeders")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seeders := []model.RankedSeeder{}
	for rows.Next() {
		s, err := scanner.ScanSeeder(rows)
		if err != nil {
			return nil, err
		}
		seeders = append(seeders, model.RankedSeeder{Seeder: *s})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ranking.Rank(seeders, now), nil
}
