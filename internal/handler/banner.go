package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"

	"github.com/Barkat-Ullah/seed-lift-backend/internal/database"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/logger"
	model "github.com/Barkat-Ullah/seed-lift-backend/internal/models"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/scanner"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/services"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/utils"
)

// BannerHandler gère les bannières d'accueil, cloudinary pour l'image
type BannerHandler struct {
	Cloudinary *services.CloudinaryService
}

func NewBannerHandler(cloudinary *services.CloudinaryService) *BannerHandler {
	return &BannerHandler{Cloudinary: cloudinary}
}

type bannerRequest struct {
	Title string `json:"title"`
}

// Create enregistre une bannière, l'image est obligatoire
func (h *BannerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req bannerRequest
	if err := utils.DecodeMultipartData(r, &req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, "invalid request body")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, "banner image is required")
		return
	}
	defer file.Close()

	ctx := r.Context()
	bannerID := uuid.New().String()

	imageURL, err := h.Cloudinary.UploadBannerImage(ctx, file, bannerID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to upload banner image", err)
		return
	}

	banner, err := scanner.ScanBanner(database.DB.QueryRow(ctx, `
		INSERT INTO banners (id, title, image, is_active, created_at)
		VALUES ($1, $2, $3, true, NOW())
		RETURNING id, title, image, is_active, created_at`,
		bannerID, req.Title, imageURL))
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to create banner", err)
		return
	}

	utils.Created(w, banner)
}

// GetAll liste les bannières actives, les plus récentes d'abord
func (h *BannerHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	rows, err := database.DB.Query(r.Context(), `
		SELECT id, title, image, is_active, created_at
		FROM banners WHERE is_active = true
		ORDER BY created_at DESC`)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load banners", err)
		return
	}
	defer rows.Close()

	banners := []model.Banner{}
	for rows.Next() {
		b, err := scanner.ScanBanner(rows)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to scan banner", err)
			return
		}
		banners = append(banners, *b)
	}
	if err := rows.Err(); err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load banners", err)
		return
	}

	utils.Success(w, banners)
}

// GetByID retourne une bannière
func (h *BannerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	banner, err := scanner.ScanBanner(database.DB.QueryRow(r.Context(),
		`SELECT id, title, image, is_active, created_at FROM banners WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.ErrorSimple(w, http.StatusNotFound, "banner not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "failed to load banner", err)
		return
	}

	utils.Success(w, banner)
}

// Delete efface la bannière et son image distante
func (h *BannerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ctx := r.Context()

	banner, err := scanner.ScanBanner(database.DB.QueryRow(ctx,
		`DELETE FROM banners WHERE id = $1
		RETURNING id, title, image, is_active, created_at`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.ErrorSimple(w, http.StatusNotFound, "banner not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "failed to delete banner", err)
		return
	}

	if err := h.Cloudinary.DeleteImage(ctx, "seedlift/banners/"+banner.ID); err != nil {
		logger.Warning("Image de bannière non supprimée %s: %v", banner.ID, err)
	}

	utils.Success(w, banner)
}
