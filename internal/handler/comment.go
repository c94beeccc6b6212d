package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"

	"github.com/Barkat-Ullah/seed-lift-backend/internal/database"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/logger"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/middleware"
	model "github.com/Barkat-Ullah/seed-lift-backend/internal/models"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/query"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/scanner"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/utils"
)

const commentColumns = `id, content, seeder_id, founder_id, challenge_id,
	parent_id, is_founder_reply, is_win, created_at, updated_at`

type commentRequest struct {
	Content     string `json:"content"`
	ChallengeID string `json:"challengeId,omitempty"`
}

// CreateComment enregistre la soumission d'un seeder sur un challenge
// et notifie le founder
func CreateComment(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.ErrorSimple(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req commentRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Content == "" || req.ChallengeID == "" {
		utils.ErrorSimple(w, http.StatusBadRequest, "content and challengeId are required")
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
	if challenge.IsDeleted {
		utils.ErrorSimple(w, http.StatusBadRequest, "cannot comment on deleted challenge")
		return
	}

	insert := `
	INSERT INTO comments (id, content, seeder_id, founder_id, challenge_id,
		parent_id, is_founder_reply, is_win, created_at, updated_at)
	VALUES ($1, $2, $3, NULL, $4, NULL, false, false, NOW(), NOW())
	RETURNING ` + commentColumns

	comment, err := scanner.ScanComment(database.DB.QueryRow(ctx, insert,
		uuid.New().String(), req.Content, seeder.ID, req.ChallengeID))
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to create comment", err)
		return
	}

	comment.Seeder = &model.CommentAuthor{
		ID: seeder.ID, FullName: seeder.FullName, Email: seeder.Email,
		Profile: seeder.Profile, Level: seeder.Level,
	}

	name := seeder.FullName
	if name == "" {
		name = "A Seeder"
	}
	if err := utils.CreateNotification(ctx, challenge.FounderID, seeder.ID,
		"A New Comment Added Now",
		fmt.Sprintf("%s commented on your challenge: %s", name, challenge.Title)); err != nil {
		logger.Error("Erreur notification commentaire %s: %v", comment.ID, err)
	}

	utils.Created(w, comment)
}

// ReplyToComment ajoute la réponse du founder sous un commentaire
// de son propre challenge
func ReplyToComment(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.ErrorSimple(w, http.StatusUnauthorized, "authentication required")
		return
	}

	commentID := mux.Vars(r)["id"]

	var req commentRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Content == "" {
		utils.ErrorSimple(w, http.StatusBadRequest, "content is required")
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

	parent, err := loadComment(ctx, commentID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load comment", err)
		return
	}
	if parent == nil {
		utils.ErrorSimple(w, http.StatusNotFound, "comment not found")
		return
	}

	challenge, err := loadChallenge(ctx, parent.ChallengeID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load challenge", err)
		return
	}
	if challenge == nil || challenge.FounderID != founder.ID {
		utils.ErrorSimple(w, http.StatusForbidden, "you can only reply to comments on your own challenges")
		return
	}

	insert := `
	INSERT INTO comments (id, content, seeder_id, founder_id, challenge_id,
		parent_id, is_founder_reply, is_win, created_at, updated_at)
	VALUES ($1, $2, NULL, $3, $4, $5, true, false, NOW(), NOW())
	RETURNING ` + commentColumns

	reply, err := scanner.ScanComment(database.DB.QueryRow(ctx, insert,
		uuid.New().String(), req.Content, founder.ID, parent.ChallengeID, commentID))
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to create reply", err)
		return
	}

	reply.Founder = &model.CommentAuthor{
		ID: founder.ID, FullName: founder.FullName, Email: founder.Email,
		Profile: founder.Profile,
	}

	utils.Created(w, reply)
}

// GetCommentsByChallenge liste les commentaires racine paginés avec
// leurs réponses. Le total compte tous les commentaires du challenge.
func GetCommentsByChallenge(w http.ResponseWriter, r *http.Request) {
	challengeID := mux.Vars(r)["id"]
	ctx := r.Context()

	challenge, err := loadChallenge(ctx, challengeID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load challenge", err)
		return
	}
	if challenge == nil {
		utils.ErrorSimple(w, http.StatusNotFound, "challenge not found")
		return
	}

	values := r.URL.Query()
	page, limit, err := parsePagination(values.Get("page"), values.Get("limit"))
	if err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, err.Error())
		return
	}

	order := "ASC"
	if values.Get("sortOrder") == "desc" {
		order = "DESC"
	}

	comments, err := topLevelComments(ctx, challengeID, order, limit, (page-1)*limit)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load comments", err)
		return
	}

	var total int
	if err := database.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM comments WHERE challenge_id = $1`, challengeID).Scan(&total); err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to count comments", err)
		return
	}

	totalPage := (total + limit - 1) / limit

	utils.SuccessWithMeta(w, comments, query.Meta{
		Page: page, Limit: limit, Total: total, TotalPage: totalPage,
	})
}

// GetCommentersByChallenge retourne les seeders uniques ayant commenté,
// chacun avec son premier commentaire sur le challenge
func GetCommentersByChallenge(w http.ResponseWriter, r *http.Request) {
	challengeID := mux.Vars(r)["id"]
	ctx := r.Context()

	challenge, err := loadChallenge(ctx, challengeID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load challenge", err)
		return
	}
	if challenge == nil {
		utils.ErrorSimple(w, http.StatusNotFound, "challenge not found")
		return
	}

	founder, err := founderSummary(ctx, challenge.FounderID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load founder", err)
		return
	}

	rows, err := database.DB.Query(ctx, `
		SELECT DISTINCT ON (s.id) s.id, s.full_name, s.email,
			COALESCE(s.profile, ''), s.level, s.coin
		FROM comments c
		JOIN seeders s ON s.id = c.seeder_id
		WHERE c.challenge_id = $1 AND c.seeder_id IS NOT NULL
		ORDER BY s.id`, challengeID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load commenters", err)
		return
	}
	defer rows.Close()

	commenters := []model.Commenter{}
	for rows.Next() {
		var c model.Commenter
		if err := rows.Scan(&c.ID, &c.FullName, &c.Email, &c.Profile, &c.Level, &c.Coin); err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to scan commenter", err)
			return
		}
		commenters = append(commenters, c)
	}
	if err := rows.Err(); err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load commenters", err)
		return
	}

	for i := range commenters {
		first, err := scanner.ScanComment(database.DB.QueryRow(ctx,
			`SELECT `+commentColumns+` FROM comments
			WHERE challenge_id = $1 AND seeder_id = $2
			ORDER BY created_at ASC LIMIT 1`, challengeID, commenters[i].ID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			utils.Error(w, http.StatusInternalServerError, "failed to load first comment", err)
			return
		}
		commenters[i].FirstComment = first
	}

	utils.Success(w, map[string]interface{}{
		"totalCommenters": len(commenters),
		"challenge": map[string]interface{}{
			"id":         challenge.ID,
			"isAwarded":  challenge.IsAwarded,
			"seedPoints": challenge.SeedPoints,
			"status":     challenge.Status,
			"founder":    founder,
		},
		"commenters": commenters,
	})
}

// GetCommentByID retourne un commentaire avec son auteur et ses réponses
func GetCommentByID(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ctx := r.Context()

	comment, err := loadComment(ctx, id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load comment", err)
		return
	}
	if comment == nil {
		utils.ErrorSimple(w, http.StatusNotFound, "comment not found")
		return
	}

	if err := attachCommentAuthors(ctx, comment); err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load comment author", err)
		return
	}

	replies, err := commentReplies(ctx, id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load replies", err)
		return
	}
	comment.Replies = replies

	utils.Success(w, comment)
}

// UpdateComment modifie le contenu, réservé à l'auteur
func UpdateComment(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.ErrorSimple(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id := mux.Vars(r)["id"]

	var req commentRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Content == "" {
		utils.ErrorSimple(w, http.StatusBadRequest, "content is required")
		return
	}

	ctx := r.Context()

	comment, err := loadComment(ctx, id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load comment", err)
		return
	}
	if comment == nil {
		utils.ErrorSimple(w, http.StatusNotFound, "comment not found")
		return
	}

	var authorEmail string
	if comment.SeederID.Valid {
		err = database.DB.QueryRow(ctx,
			`SELECT email FROM seeders WHERE id = $1`, comment.SeederID.String).Scan(&authorEmail)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			utils.Error(w, http.StatusInternalServerError, "failed to check comment owner", err)
			return
		}
	}
	if authorEmail == "" || authorEmail != user.Email {
		utils.ErrorSimple(w, http.StatusForbidden, "you can only update your own comments")
		return
	}

	updated, err := scanner.ScanComment(database.DB.QueryRow(ctx,
		`UPDATE comments SET content = $1, updated_at = NOW() WHERE id = $2
		RETURNING `+commentColumns, req.Content, id))
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to update comment", err)
		return
	}

	if err := attachCommentAuthors(ctx, updated); err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load comment author", err)
		return
	}

	utils.Success(w, updated)
}

// DeleteComment supprime un commentaire et ses réponses. Autorisé à
// l'auteur ou au founder du challenge.
func DeleteComment(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.ErrorSimple(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id := mux.Vars(r)["id"]
	ctx := r.Context()

	comment, err := loadComment(ctx, id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load comment", err)
		return
	}
	if comment == nil {
		utils.ErrorSimple(w, http.StatusNotFound, "comment not found")
		return
	}

	var allowed bool
	err = database.DB.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM comments c
			LEFT JOIN seeders s ON s.id = c.seeder_id
			LEFT JOIN challenges ch ON ch.id = c.challenge_id
			LEFT JOIN founders f ON f.id = ch.founder_id
			WHERE c.id = $1 AND (s.email = $2 OR f.email = $2)
		)`, id, user.Email).Scan(&allowed)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to check permissions", err)
		return
	}
	if !allowed {
		utils.ErrorSimple(w, http.StatusForbidden,
			"you can only delete your own comments or comments on your challenges")
		return
	}

	// Les réponses partent avec le parent
	_, err = database.DB.Exec(ctx,
		`DELETE FROM comments WHERE id = $1 OR parent_id = $1`, id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to delete comment", err)
		return
	}

	utils.Message(w, "Comment deleted successfully")
}

// ----- helpers -----

func loadComment(ctx context.Context, id string) (*model.Comment, error) {
	c, err := scanner.ScanComment(database.DB.QueryRow(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func attachCommentAuthors(ctx context.Context, c *model.Comment) error {
	if c.SeederID.Valid {
		var a model.CommentAuthor
		err := database.DB.QueryRow(ctx,
			`SELECT id, full_name, email, COALESCE(profile, ''), level, coin
			FROM seeders WHERE id = $1`, c.SeederID.String).
			Scan(&a.ID, &a.FullName, &a.Email, &a.Profile, &a.Level, &a.Coin)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		if err == nil {
			c.Seeder = &a
		}
	}
	if c.FounderID.Valid {
		var a model.CommentAuthor
		err := database.DB.QueryRow(ctx,
			`SELECT id, full_name, email, COALESCE(profile, '')
			FROM founders WHERE id = $1`, c.FounderID.String).
			Scan(&a.ID, &a.FullName, &a.Email, &a.Profile)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		if err == nil {
			c.Founder = &a
		}
	}
	return nil
}

func commentReplies(ctx context.Context, parentID string) ([]model.Comment, error) {
	rows, err := database.DB.Query(ctx,
		`SELECT `+commentColumns+` FROM comments
		WHERE parent_id = $1 ORDER BY created_at ASC`, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	replies := []model.Comment{}
	for rows.Next() {
		c, err := scanner.ScanComment(rows)
		if err != nil {
			return nil, err
		}
		replies = append(replies, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range replies {
		if err := attachCommentAuthors(ctx, &replies[i]); err != nil {
			return nil, err
		}
	}
	return replies, nil
}

func topLevelComments(ctx context.Context, challengeID, order string, limit, offset int) ([]model.Comment, error) {
	rows, err := database.DB.Query(ctx,
		`SELECT `+commentColumns+` FROM comments
		WHERE challenge_id = $1 AND parent_id IS NULL
		ORDER BY created_at `+order+` LIMIT $2 OFFSET $3`,
		challengeID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		c, err := scanner.ScanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range comments {
		if err := attachCommentAuthors(ctx, &comments[i]); err != nil {
			return nil, err
		}
		replies, err := commentReplies(ctx, comments[i].ID)
		if err != nil {
			return nil, err
		}
		comments[i].Replies = replies
	}
	return comments, nil
}

// challengeComments charge le fil complet pour la fiche d'un challenge,
// racines les plus récentes d'abord
func challengeComments(ctx context.Context, challengeID string) ([]model.Comment, error) {
	rows, err := database.DB.Query(ctx,
		`SELECT `+commentColumns+` FROM comments
		WHERE challenge_id = $1 AND parent_id IS NULL
		ORDER BY created_at DESC`, challengeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		c, err := scanner.ScanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range comments {
		if err := attachCommentAuthors(ctx, &comments[i]); err != nil {
			return nil, err
		}
		replies, err := commentReplies(ctx, comments[i].ID)
		if err != nil {
			return nil, err
		}
		comments[i].Replies = replies
	}
	return comments, nil
}
