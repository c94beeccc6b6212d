package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/Barkat-Ullah/seed-lift-backend/internal/database"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/logger"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/middleware"
	model "github.com/Barkat-Ullah/seed-lift-backend/internal/models"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/query"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/scanner"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/services"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/utils"
)

// ChallengeHandler porte les opérations challenges, cloudinary est injecté
// pour les pièces jointes
type ChallengeHandler struct {
	Cloudinary *services.CloudinaryService
}

func NewChallengeHandler(cloudinary *services.CloudinaryService) *ChallengeHandler {
	return &ChallengeHandler{Cloudinary: cloudinary}
}

type challengeRequest struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	ChallengeType string   `json:"challengeType"`
	Category      string   `json:"category"`
	Tags          []string `json:"tags"`
	SeedPoints    int      `json:"seedPoints"`
	Deadline      string   `json:"deadline"`
	Status        string   `json:"status,omitempty"`
	InviteTalents []string `json:"inviteTalents,omitempty"`
}

// challengeSchema alimente le listing admin via le pipeline de requête
func challengeSchema() query.Schema {
	return query.Schema{
		Table: "challenges",
		PK:    "id",
		SelectColumns: "id, title, description, challenge_type, category, attachment, " +
			"tags, seed_points, deadline, status, is_active, is_deleted, is_awarded, " +
			"invite_talents, founder_id, created_at, updated_at",
		Fields: map[string]query.Field{
			"id":            {Column: "id", Type: query.FieldText},
			"title":         {Column: "title", Type: query.FieldText, Searchable: true, Sortable: true},
			"description":   {Column: "description", Type: query.FieldText, Searchable: true},
			"category":      {Column: "category", Type: query.FieldText, Filterable: true, Sortable: true},
			"challengeType": {Column: "challenge_type", Type: query.FieldEnum, Filterable: true, Enum: []string{"Public", "Private"}},
			"status":        {Column: "status", Type: query.FieldEnum, Filterable: true, Enum: []string{"PENDING", "FINISHED"}},
			"isActive":      {Column: "is_active", Type: query.FieldBool, Filterable: true},
			"isAwarded":     {Column: "is_awarded", Type: query.FieldBool, Filterable: true},
			"seedPoints":    {Column: "seed_points", Type: query.FieldInt, Filterable: true, Sortable: true},
			"deadline":      {Column: "deadline", Sortable: true},
			"createdAt":     {Column: "created_at", Sortable: true},
		},
		DefaultSort: "-createdAt",
	}
}

// expireIfOverdue bascule un challenge PENDING dont l'échéance est passée.
// L'UPDATE est conditionné sur le statut et l'échéance: deux lectures
// concurrentes produisent le même résultat.
func expireIfOverdue(ctx context.Context, c *model.Challenge, now time.Time) {
	c.RemainingDays = utils.RemainingDays(c.Deadline, now)
	if c.RemainingDays > 0 || c.Status != model.ChallengePending {
		return
	}

	_, err := database.DB.Exec(ctx,
		`UPDATE challenges SET status = 'FINISHED', is_active = false, updated_at = NOW()
		WHERE id = $1 AND status = 'PENDING' AND deadline <= $2`,
		c.ID, now)
	if err != nil {
		logger.Error("Erreur expiration challenge %s: %v", c.ID, err)
		return
	}
	c.Status = model.ChallengeFinished
	c.IsActive = false
}

// Create crée un challenge (founder) et notifie les seeders concernés:
// tous pour un Public, ceux dont une skill correspond à la catégorie
// pour un Private
func (h *ChallengeHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.ErrorSimple(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req challengeRequest
	if err := utils.DecodeMultipartData(r, &req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" || req.Description == "" || req.Deadline == "" || req.SeedPoints <= 0 {
		utils.ErrorSimple(w, http.StatusBadRequest, "missing required fields")
		return
	}

	deadline, err := time.Parse(time.RFC3339, req.Deadline)
	if err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, "invalid deadline")
		return
	}

	ctx := r.Context()

	founder, err := findFounderByEmail(ctx, user.Email)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load founder", err)
		return
	}
	if founder == nil {
		utils.ErrorSimple(w, http.StatusNotFound, "founder not found")
		return
	}

	challengeID := uuid.New().String()

	// Pièce jointe facultative
	var attachment string
	if file, _, err := r.FormFile("file"); err == nil {
		defer file.Close()
		attachment, err = h.Cloudinary.UploadChallengeAttachment(ctx, file, challengeID)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to upload attachment", err)
			return
		}
	}

	status := model.ChallengePending
	if req.Status == string(model.ChallengeFinished) {
		status = model.ChallengeFinished
	}

	insert := `
	INSERT INTO challenges (id, title, description, challenge_type, category, attachment,
		tags, seed_points, deadline, status, is_active, is_deleted, is_awarded,
		invite_talents, founder_id, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, true, false, false, $11, $12, NOW(), NOW())
	RETURNING id, title, description, challenge_type, category, attachment, tags,
		seed_points, deadline, status, is_active, is_deleted, is_awarded,
		invite_talents, founder_id, created_at, updated_at`

	challenge, err := scanner.ScanChallenge(database.DB.QueryRow(ctx, insert,
		challengeID, req.Title, req.Description, req.ChallengeType, req.Category,
		utils.StringToNullString(attachment), pq.Array(req.Tags), req.SeedPoints,
		deadline, status, pq.Array(req.InviteTalents), founder.ID))
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to create challenge", err)
		return
	}

	h.notifySeeders(ctx, founder, challenge)

	logger.Success("Challenge créé: %s par %s", challenge.ID, founder.ID)
	utils.Created(w, challenge)
}

func (h *ChallengeHandler) notifySeeders(ctx context.Context, founder *model.Founder, c *model.Challenge) {
	var rows pgx.Rows
	var err error
	var title, body string

	if c.ChallengeType == model.ChallengePublic {
		rows, err = database.DB.Query(ctx, `
			SELECT s.id FROM seeders s
			JOIN users u ON u.email = s.email
			WHERE u.is_deleted = false AND u.status = 'ACTIVE'`)
		title = "New Challenge Available"
		body = fmt.Sprintf("%s posted a new challenge: %s", founder.FullName, c.Title)
	} else {
		if c.Category == "" {
			return
		}
		rows, err = database.DB.Query(ctx, `
			SELECT s.id FROM seeders s
			JOIN users u ON u.email = s.email
			WHERE $1 = ANY(s.skill) AND u.is_deleted = false AND u.status = 'ACTIVE'`,
			c.Category)
		title = "You Are Invited to a Challenge"
		body = fmt.Sprintf("%s invited you to: %s", founder.FullName, c.Title)
	}
	if err != nil {
		logger.Error("Erreur chargement seeders à notifier: %v", err)
		return
	}
	defer rows.Close()

	var seederIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			logger.Error("Erreur scan seeder: %v", err)
			return
		}
		seederIDs = append(seederIDs, id)
	}

	// La notification n'est pas bloquante pour la création
	if err := utils.CreateBulkNotifications(ctx, seederIDs, founder.ID, title, body); err != nil {
		logger.Error("Erreur notifications challenge %s: %v", c.ID, err)
	}
}

// GetAll liste les challenges ouverts côté seeder. Les Private ne sont
// visibles que des invités, et les challenges correspondant aux skills du
// seeder remontent en premier (bonus supplémentaire avec un abonnement).
func (h *ChallengeHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	values := r.URL.Query()

	var seeder *model.Seeder
	if user, err := middleware.GetUserFromContext(r); err == nil {
		seeder, err = findSeederByEmail(ctx, user.Email)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to load seeder", err)
			return
		}
	}

	viewerID := ""
	if seeder != nil {
		viewerID = seeder.ID
	}

	where := []string{"c.is_deleted = false", "c.is_active = true", "c.is_awarded = false", "c.status = 'PENDING'"}
	args := []interface{}{viewerID}

	addArg := func(cond string, v interface{}) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if term := values.Get("searchTerm"); term != "" {
		args = append(args, "%"+term+"%")
		where = append(where, fmt.Sprintf("(c.title ILIKE $%d OR c.description ILIKE $%d)", len(args), len(args)))
	}
	if category := values.Get("category"); category != "" {
		addArg("c.category = $%d", category)
	}
	if ct := values.Get("challengeType"); ct != "" {
		addArg("c.challenge_type = $%d", ct)
	}
	if tags := values["tags"]; len(tags) > 0 {
		addArg("c.tags && $%d", pq.Array(tags))
	}
	if min := values.Get("minSeedPoints"); min != "" {
		v, err := strconv.Atoi(min)
		if err != nil {
			utils.ErrorSimple(w, http.StatusBadRequest, "invalid minSeedPoints")
			return
		}
		addArg("c.seed_points >= $%d", v)
	}
	if max := values.Get("maxSeedPoints"); max != "" {
		v, err := strconv.Atoi(max)
		if err != nil {
			utils.ErrorSimple(w, http.StatusBadRequest, "invalid maxSeedPoints")
			return
		}
		addArg("c.seed_points <= $%d", v)
	}

	page, limit, err := parsePagination(values.Get("page"), values.Get("limit"))
	if err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, err.Error())
		return
	}

	challenges, err := queryChallengesWithRelations(ctx, where, args, "seeder_id")
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load challenges", err)
		return
	}

	now := time.Now()
	for i := range challenges {
		expireIfOverdue(ctx, &challenges[i], now)
	}

	// Visibilité: un Private n'apparaît qu'aux seeders invités
	visible := challenges[:0]
	for _, c := range challenges {
		if c.ChallengeType == model.ChallengePublic {
			visible = append(visible, c)
			continue
		}
		if seeder != nil && containsString(c.InviteTalents, seeder.ID) {
			visible = append(visible, c)
		}
	}

	// Pertinence: +2 si la catégorie matche une skill du seeder, +1 de plus
	// avec un abonnement actif. Tri stable, puis date décroissante.
	if seeder != nil {
		boosted := seeder.IsPro || utils.HasActiveSubscription(seeder, now)
		score := func(c *model.Challenge) int {
			s := 0
			if containsString(seeder.Skill, c.Category) {
				s += 2
				if boosted {
					s++
				}
			}
			return s
		}
		sort.SliceStable(visible, func(i, j int) bool {
			si, sj := score(&visible[i]), score(&visible[j])
			if si != sj {
				return si > sj
			}
			return visible[i].CreatedAt.After(visible[j].CreatedAt)
		})
	} else {
		sort.SliceStable(visible, func(i, j int) bool {
			return visible[i].CreatedAt.After(visible[j].CreatedAt)
		})
	}

	total := len(visible)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	totalPage := 0
	if limit > 0 {
		totalPage = (total + limit - 1) / limit
	}

	utils.SuccessWithMeta(w, visible[start:end], query.Meta{
		Page: page, Limit: limit, Total: total, TotalPage: totalPage,
	})
}

// GetAllAdmin liste tous les challenges sans filtre de visibilité,
// via le pipeline de requête typé
func (h *ChallengeHandler) GetAllAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	values := r.URL.Query()

	b := query.New(challengeSchema())

	// Les bornes de seedPoints sont des filtres d'intervalle, hors schéma
	if min := values.Get("minSeedPoints"); min != "" {
		v, err := strconv.Atoi(min)
		if err != nil {
			utils.ErrorSimple(w, http.StatusBadRequest, "invalid minSeedPoints")
			return
		}
		b.Wheref("seed_points >= ?", v)
		values.Del("minSeedPoints")
	}
	if max := values.Get("maxSeedPoints"); max != "" {
		v, err := strconv.Atoi(max)
		if err != nil {
			utils.ErrorSimple(w, http.StatusBadRequest, "invalid maxSeedPoints")
			return
		}
		b.Wheref("seed_points <= ?", v)
		values.Del("maxSeedPoints")
	}
	if tags := values["tags"]; len(tags) > 0 {
		b.Wheref("tags && ?", pq.Array(tags))
		values.Del("tags")
	}

	if err := b.FromQuery(values); err != nil {
		if query.IsValidation(err) {
			utils.ErrorSimple(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.Error(w, http.StatusInternalServerError, "failed to build query", err)
		return
	}

	challenges, meta, err := query.Execute(ctx, database.DB, b, scanner.ScanChallenge)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load challenges", err)
		return
	}

	now := time.Now()
	for _, c := range challenges {
		expireIfOverdue(ctx, c, now)
	}

	if b.HasProjection() {
		projected, err := query.ProjectAll(b, challenges)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to project challenges", err)
			return
		}
		utils.SuccessWithMeta(w, projected, meta)
		return
	}

	utils.SuccessWithMeta(w, challenges, meta)
}

// GetMy liste les challenges du founder connecté avec ses compteurs
func (h *ChallengeHandler) GetMy(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.ErrorSimple(w, http.StatusUnauthorized, "authentication required")
		return
	}

	ctx := r.Context()

	founder, err := findFounderByEmail(ctx, user.Email)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load founder", err)
		return
	}
	if founder == nil {
		utils.ErrorSimple(w, http.StatusNotFound, "founder not found")
		return
	}

	where := []string{"c.founder_id = $2", "c.is_deleted = false"}
	args := []interface{}{founder.ID, founder.ID}

	if status := r.URL.Query().Get("status"); status != "" {
		if status != string(model.ChallengePending) && status != string(model.ChallengeFinished) {
			utils.ErrorSimple(w, http.StatusBadRequest, "invalid status")
			return
		}
		args = append(args, status)
		where = append(where, fmt.Sprintf("c.status = $%d", len(args)))
	}

	challenges, err := queryChallengesWithRelations(ctx, where, args, "founder_id")
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load challenges", err)
		return
	}

	now := time.Now()
	for i := range challenges {
		expireIfOverdue(ctx, &challenges[i], now)
	}

	var counts model.ChallengeCounts
	err = database.DB.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM challenges WHERE founder_id = $1),
			(SELECT COUNT(*) FROM challenges WHERE is_active = true AND is_awarded = false
				AND is_deleted = false AND status = 'PENDING')`,
		founder.ID).Scan(&counts.TotalChallenge, &counts.ActiveChallenge)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to count challenges", err)
		return
	}

	utils.Success(w, map[string]interface{}{
		"totalChallenge":  counts.TotalChallenge,
		"activeChallenge": counts.ActiveChallenge,
		"challenges":      challenges,
	})
}

// GetByID retourne un challenge avec son founder et son fil de commentaires
func (h *ChallengeHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ctx := r.Context()

	challenge, err := loadChallenge(ctx, id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load challenge", err)
		return
	}
	if challenge == nil {
		utils.ErrorSimple(w, http.StatusNotFound, "challenge not found")
		return
	}
	if challenge.IsDeleted {
		utils.ErrorSimple(w, http.StatusNotFound, "challenge has been deleted")
		return
	}

	expireIfOverdue(ctx, challenge, time.Now())

	founder, err := founderSummary(ctx, challenge.FounderID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load founder", err)
		return
	}
	challenge.Founder = founder

	comments, err := challengeComments(ctx, id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load comments", err)
		return
	}

	utils.Success(w, map[string]interface{}{
		"challenge": challenge,
		"comments":  comments,
	})
}

// Update modifie les champs fournis d'un challenge non supprimé
func (h *ChallengeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ctx := r.Context()

	existing, err := loadChallenge(ctx, id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load challenge", err)
		return
	}
	if existing == nil {
		utils.ErrorSimple(w, http.StatusNotFound, "challenge not found")
		return
	}
	if existing.IsDeleted {
		utils.ErrorSimple(w, http.StatusBadRequest, "cannot update deleted challenge")
		return
	}

	var req challengeRequest
	if err := utils.DecodeMultipartData(r, &req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Title != "" {
		existing.Title = req.Title
	}
	if req.Description != "" {
		existing.Description = req.Description
	}
	if req.Category != "" {
		existing.Category = req.Category
	}
	if len(req.Tags) > 0 {
		existing.Tags = req.Tags
	}
	if req.SeedPoints > 0 {
		existing.SeedPoints = req.SeedPoints
	}
	if req.Deadline != "" {
		deadline, err := time.Parse(time.RFC3339, req.Deadline)
		if err != nil {
			utils.ErrorSimple(w, http.StatusBadRequest, "invalid deadline")
			return
		}
		existing.Deadline = deadline
	}

	if file, _, err := r.FormFile("file"); err == nil {
		defer file.Close()
		attachment, err := h.Cloudinary.UploadChallengeAttachment(ctx, file, id)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to upload attachment", err)
			return
		}
		existing.Attachment = utils.StringToNullString(attachment)
	}

	update := `
	UPDATE challenges SET title = $1, description = $2, category = $3, tags = $4,
		seed_points = $5, deadline = $6, attachment = $7, updated_at = NOW()
	WHERE id = $8
	RETURNING id, title, description, challenge_type, category, attachment, tags,
		seed_points, deadline, status, is_active, is_deleted, is_awarded,
		invite_talents, founder_id, created_at, updated_at`

	updated, err := scanner.ScanChallenge(database.DB.QueryRow(ctx, update,
		existing.Title, existing.Description, existing.Category, pq.Array(existing.Tags),
		existing.SeedPoints, existing.Deadline, existing.Attachment, id))
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to update challenge", err)
		return
	}

	updated.Founder, err = founderSummary(ctx, updated.FounderID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load founder", err)
		return
	}

	utils.Success(w, updated)
}

// SoftDelete marque le challenge supprimé sans effacer la ligne
func (h *ChallengeHandler) SoftDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ctx := r.Context()

	existing, err := loadChallenge(ctx, id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load challenge", err)
		return
	}
	if existing == nil {
		utils.ErrorSimple(w, http.StatusNotFound, "challenge not found")
		return
	}
	if existing.IsDeleted {
		utils.ErrorSimple(w, http.StatusBadRequest, "challenge already deleted")
		return
	}

	_, err = database.DB.Exec(ctx,
		`UPDATE challenges SET is_deleted = true, is_active = false, updated_at = NOW() WHERE id = $1`,
		id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to delete challenge", err)
		return
	}

	utils.Message(w, "Challenge deleted successfully")
}

// ToggleStatus bascule manuellement PENDING <-> FINISHED
func (h *ChallengeHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.ErrorSimple(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id := mux.Vars(r)["id"]
	ctx := r.Context()

	founder, err := findFounderByEmail(ctx, user.Email)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load founder", err)
		return
	}
	if founder == nil {
		utils.ErrorSimple(w, http.StatusNotFound, "founder not found")
		return
	}

	existing, err := loadChallenge(ctx, id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load challenge", err)
		return
	}
	if existing == nil {
		utils.ErrorSimple(w, http.StatusNotFound, "challenge not found")
		return
	}

	newStatus := model.ChallengeFinished
	if existing.Status == model.ChallengeFinished {
		newStatus = model.ChallengePending
	}

	var out struct {
		ID          string                `json:"id"`
		Title       string                `json:"title"`
		Description string                `json:"description"`
		Status      model.ChallengeStatus `json:"status"`
	}
	err = database.DB.QueryRow(ctx,
		`UPDATE challenges SET status = $1, updated_at = NOW() WHERE id = $2
		RETURNING id, title, description, status`,
		newStatus, id).Scan(&out.ID, &out.Title, &out.Description, &out.Status)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to update status", err)
		return
	}

	utils.Success(w, out)
}

type awardRequest struct {
	SeederID  string `json:"seederId"`
	CommentID string `json:"commentId"`
}

// Award récompense le commentaire gagnant d'un challenge FINISHED.
// Challenge, commentaire et solde du seeder changent dans une seule
// transaction, et un challenge déjà récompensé répond 409.
func (h *ChallengeHandler) Award(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.ErrorSimple(w, http.StatusUnauthorized, "authentication required")
		return
	}

	challengeID := mux.Vars(r)["id"]

	var req awardRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SeederID == "" || req.CommentID == "" {
		utils.ErrorSimple(w, http.StatusBadRequest, "seederId and commentId are required")
		return
	}

	ctx := r.Context()

	founder, err := findFounderByEmail(ctx, user.Email)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load founder", err)
		return
	}
	if founder == nil {
		utils.ErrorSimple(w, http.StatusNotFound, "founder not found")
		return
	}

	challenge, err := loadChallenge(ctx, challengeID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load challenge", err)
		return
	}
	if challenge == nil || challenge.Status != model.ChallengeFinished {
		utils.ErrorSimple(w, http.StatusNotFound, "challenge not found or not finished")
		return
	}
	if challenge.IsAwarded {
		utils.ErrorSimple(w, http.StatusConflict, "challenge already awarded")
		return
	}
	if challenge.FounderID != founder.ID {
		utils.ErrorSimple(w, http.StatusForbidden, "only challenge owner can award points")
		return
	}

	// Le commentaire doit appartenir au seeder désigné, sur ce challenge,
	// et ne pas déjà être gagnant
	var commentOK bool
	err = database.DB.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM comments
			WHERE id = $1 AND challenge_id = $2 AND seeder_id = $3 AND is_win = false)`,
		req.CommentID, challengeID, req.SeederID).Scan(&commentOK)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to check comment", err)
		return
	}
	if !commentOK {
		utils.ErrorSimple(w, http.StatusBadRequest, "no eligible comment found for this seeder")
		return
	}

	seeder, err := findSeederByID(ctx, req.SeederID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load seeder", err)
		return
	}
	if seeder == nil {
		utils.ErrorSimple(w, http.StatusNotFound, "seeder not found")
		return
	}

	// Bonus de 25% (arrondi bas) pour un abonnement actif
	awarded := challenge.SeedPoints
	if utils.HasActiveSubscription(seeder, time.Now()) {
		awarded = challenge.SeedPoints * 125 / 100
	}

	tx, err := database.DB.Begin(ctx)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to start transaction", err)
		return
	}
	defer tx.Rollback(ctx)

	// Garde anti double récompense au niveau SQL
	tag, err := tx.Exec(ctx,
		`UPDATE challenges SET is_awarded = true, updated_at = NOW()
		WHERE id = $1 AND is_awarded = false`, challengeID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to award challenge", err)
		return
	}
	if tag.RowsAffected() == 0 {
		utils.ErrorSimple(w, http.StatusConflict, "challenge already awarded")
		return
	}

	var winContent string
	err = tx.QueryRow(ctx,
		`UPDATE comments SET is_win = true, updated_at = NOW() WHERE id = $1
		RETURNING content`, req.CommentID).Scan(&winContent)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to mark winning comment", err)
		return
	}

	var newCoin int
	err = tx.QueryRow(ctx,
		`UPDATE seeders SET coin = coin + $1, updated_at = NOW() WHERE id = $2
		RETURNING coin`, awarded, req.SeederID).Scan(&newCoin)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to credit seeder", err)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to award points", err)
		return
	}

	// Le niveau suit le nouveau solde
	newLevel := utils.GetLevelByCoins(newCoin)
	_, err = database.DB.Exec(ctx,
		`UPDATE seeders SET level = $1, updated_at = NOW() WHERE id = $2 AND level <> $1`,
		newLevel, req.SeederID)
	if err != nil {
		logger.Error("Erreur mise à jour niveau %s: %v", req.SeederID, err)
	}

	if len(winContent) > 50 {
		winContent = winContent[:50]
	}

	logger.Success("Challenge %s récompensé: %d points pour %s", challengeID, awarded, req.SeederID)
	utils.Success(w, map[string]interface{}{
		"message": fmt.Sprintf("%s awarded %d SP for comment %q! New coin: %d",
			seeder.FullName, awarded, winContent, newCoin),
		"awardedPoints": awarded,
		"newCoin":       newCoin,
		"level":         newLevel,
	})
}

// ----- helpers -----

func loadChallenge(ctx context.Context, id string) (*model.Challenge, error) {
	sql := `SELECT id, title, description, challenge_type, category, attachment, tags,
		seed_points, deadline, status, is_active, is_deleted, is_awarded,
		invite_talents, founder_id, created_at, updated_at
	FROM challenges WHERE id = $1`

	c, err := scanner.ScanChallenge(database.DB.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// queryChallengesWithRelations charge les challenges avec compteurs,
// founder et réaction du lecteur ($1 = id du lecteur, reactColumn désigne
// la colonne de reacts à matcher)
func queryChallengesWithRelations(ctx context.Context, where []string, args []interface{}, reactColumn string) ([]model.Challenge, error) {
	sql := `
	SELECT c.id, c.title, c.description, c.challenge_type, c.category, c.attachment,
		c.tags, c.seed_points, c.deadline, c.status, c.is_active, c.is_deleted,
		c.is_awarded, c.invite_talents, c.founder_id, c.created_at, c.updated_at,
		(SELECT COUNT(*) FROM reacts r WHERE r.challenge_id = c.id),
		(SELECT COUNT(*) FROM comments cm WHERE cm.challenge_id = c.id),
		COALESCE((SELECT r2.is_react FROM reacts r2
			WHERE r2.challenge_id = c.id AND r2.` + reactColumn + ` = $1 LIMIT 1), false),
		f.id, f.email, f.full_name, COALESCE(f.profile, '')
	FROM challenges c
	JOIN founders f ON f.id = c.founder_id
	WHERE `
	for i, cond := range where {
		if i > 0 {
			sql += " AND "
		}
		sql += cond
	}
	sql += " ORDER BY c.created_at DESC"

	rows, err := database.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	challenges := []model.Challenge{}
	for rows.Next() {
		var c model.Challenge
		var f model.FounderSummary
		err := rows.Scan(
			&c.ID, &c.Title, &c.Description, &c.ChallengeType, &c.Category, &c.Attachment,
			pq.Array(&c.Tags), &c.SeedPoints, &c.Deadline, &c.Status, &c.IsActive,
			&c.IsDeleted, &c.IsAwarded, pq.Array(&c.InviteTalents), &c.FounderID,
			&c.CreatedAt, &c.UpdatedAt,
			&c.ReactCount, &c.CommentCount, &c.IsReact,
			&f.ID, &f.Email, &f.FullName, &f.Profile,
		)
		if err != nil {
			return nil, err
		}
		f.Role = model.RoleFounder
		c.Founder = &f
		challenges = append(challenges, c)
	}
	return challenges, rows.Err()
}

func founderSummary(ctx context.Context, founderID string) (*model.FounderSummary, error) {
	var f model.FounderSummary
	err := database.DB.QueryRow(ctx,
		`SELECT id, email, full_name, COALESCE(profile, '') FROM founders WHERE id = $1`,
		founderID).Scan(&f.ID, &f.Email, &f.FullName, &f.Profile)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	f.Role = model.RoleFounder
	return &f, nil
}

func parsePagination(pageRaw, limitRaw string) (int, int, error) {
	page, limit := 1, 10
	if pageRaw != "" {
		v, err := strconv.Atoi(pageRaw)
		if err != nil || v < 1 {
			return 0, 0, fmt.Errorf("invalid page: %s", pageRaw)
		}
		page = v
	}
	if limitRaw != "" {
		v, err := strconv.Atoi(limitRaw)
		if err != nil || v < 1 {
			return 0, 0, fmt.Errorf("invalid limit: %s", limitRaw)
		}
		limit = v
	}
	return page, limit, nil
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
