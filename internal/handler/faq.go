package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"

	"github.com/Barkat-Ullah/seed-lift-backend/internal/database"
	model "github.com/Barkat-Ullah/seed-lift-backend/internal/models"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/scanner"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/utils"
)

type faqRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// CreateFaq ajoute une entrée FAQ (admin)
func CreateFaq(w http.ResponseWriter, r *http.Request) {
	var req faqRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Question == "" || req.Answer == "" {
		utils.ErrorSimple(w, http.StatusBadRequest, "question and answer are required")
		return
	}

	faq, err := scanner.ScanFaq(database.DB.QueryRow(r.Context(), `
		INSERT INTO faqs (id, question, answer, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, question, answer, created_at`,
		uuid.New().String(), req.Question, req.Answer))
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to create faq", err)
		return
	}

	utils.Created(w, faq)
}

// GetAllFaq liste les entrées FAQ
func GetAllFaq(w http.ResponseWriter, r *http.Request) {
	rows, err := database.DB.Query(r.Context(),
		`SELECT id, question, answer, created_at FROM faqs ORDER BY created_at DESC`)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load faqs", err)
		return
	}
	defer rows.Close()

	faqs := []model.Faq{}
	for rows.Next() {
		f, err := scanner.ScanFaq(rows)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to scan faq", err)
			return
		}
		faqs = append(faqs, *f)
	}
	if err := rows.Err(); err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load faqs", err)
		return
	}

	utils.Success(w, faqs)
}

// GetFaqByID retourne une entrée
func GetFaqByID(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	faq, err := scanner.ScanFaq(database.DB.QueryRow(r.Context(),
		`SELECT id, question, answer, created_at FROM faqs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.ErrorSimple(w, http.StatusNotFound, "faq not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "failed to load faq", err)
		return
	}

	utils.Success(w, faq)
}

// UpdateFaq modifie les champs fournis
func UpdateFaq(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req faqRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, "invalid request body")
		return
	}

	faq, err := scanner.ScanFaq(database.DB.QueryRow(r.Context(), `
		UPDATE faqs SET question = COALESCE(NULLIF($1, ''), question),
			answer = COALESCE(NULLIF($2, ''), answer)
		WHERE id = $3
		RETURNING id, question, answer, created_at`,
		req.Question, req.Answer, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.ErrorSimple(w, http.StatusNotFound, "faq not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "failed to update faq", err)
		return
	}

	utils.Success(w, faq)
}

// DeleteFaq efface l'entrée
func DeleteFaq(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	tag, err := database.DB.Exec(r.Context(), `DELETE FROM faqs WHERE id = $1`, id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to delete faq", err)
		return
	}
	if tag.RowsAffected() == 0 {
		utils.ErrorSimple(w, http.StatusNotFound, "faq not found")
		return
	}

	utils.Message(w, "Faq deleted successfully")
}
