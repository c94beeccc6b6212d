package services

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/Barkat-Ullah/seed-lift-backend/internal/config"
)

// CloudinaryService handles all Cloudinary operations
type CloudinaryService struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryService creates a new Cloudinary service instance
func NewCloudinaryService(cfg *config.Config) (*CloudinaryService, error) {
	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		return nil, fmt.Errorf("cloudinary configuration is missing")
	}

	cld, err := cloudinary.NewFromParams(
		cfg.CloudinaryCloudName,
		cfg.CloudinaryAPIKey,
		cfg.CloudinaryAPISecret,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &CloudinaryService{
		cld: cld,
	}, nil
}

// UploadProfileImage uploads une photo de profil
func (s *CloudinaryService) UploadProfileImage(ctx context.Context, file multipart.File, userID string) (string, error) {
	publicID := fmt.Sprintf("profiles/%s", userID)
	overwrite := true

	uploadResult, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:       publicID,
		Folder:         "seedlift/profiles",
		Overwrite:      &overwrite, // Écraser l'ancienne photo
		ResourceType:   "image",
		Format:         "jpg",
		Transformation: "c_fill,g_face,h_500,w_500", // Centrer sur le visage
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to cloudinary: %w", err)
	}

	return uploadResult.SecureURL, nil
}

// UploadChallengeAttachment uploads la pièce jointe d'un challenge
func (s *CloudinaryService) UploadChallengeAttachment(ctx context.Context, file multipart.File, challengeID string) (string, error) {
	publicID := fmt.Sprintf("challenges/%s", challengeID)
	overwrite := true

	uploadResult, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:     publicID,
		Folder:       "seedlift/challenges",
		Overwrite:    &overwrite,
		ResourceType: "auto", // Images et documents
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload challenge attachment: %w", err)
	}

	return uploadResult.SecureURL, nil
}

// UploadBannerImage uploads une bannière d'accueil
func (s *CloudinaryService) UploadBannerImage(ctx context.Context, file multipart.File, bannerID string) (string, error) {
	publicID := fmt.Sprintf("banners/%s", bannerID)
	overwrite := true

	uploadResult, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:       publicID,
		Folder:         "seedlift/banners",
		Overwrite:      &overwrite,
		ResourceType:   "image",
		Transformation: "c_fill,h_800,w_1200", // Format landscape
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload banner: %w", err)
	}

	return uploadResult.SecureURL, nil
}

// DeleteImage deletes an image from Cloudinary by its public ID
func (s *CloudinaryService) DeleteImage(ctx context.Context, publicID string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	return nil
}
