package handler

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/Barkat-Ullah/seed-lift-backend/internal/database"
	model "github.com/Barkat-Ullah/seed-lift-backend/internal/models"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/scanner"
)

// Requêtes de profil partagées entre handlers. Retournent (nil, nil)
// quand la ligne n'existe pas.

const seederColumns = `id, full_name, email, phone_number, profile, description,
	skill, is_pro, level, coin, stripe_customer_id, subscription_id,
	subscription_start, subscription_end, created_at, updated_at`

const founderColumns = `id, full_name, email, phone_number, profile, description,
	business_name, org_type, stripe_customer_id, subscription_id,
	subscription_start, subscription_end, created_at, updated_at`

func findSeederByEmail(ctx context.Context, email string) (*model.Seeder, error) {
	s, err := scanner.ScanSeeder(database.DB.QueryRow(ctx,
		"SELECT "+seederColumns+" FROM seeders WHERE email = $1", email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

func findSeederByID(ctx context.Context, id string) (*model.Seeder, error) {
	s, err := scanner.ScanSeeder(database.DB.QueryRow(ctx,
		"SELECT "+seederColumns+" FROM seeders WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

func findFounderByEmail(ctx context.Context, email string) (*model.Founder, error) {
	f, err := scanner.ScanFounder(database.DB.QueryRow(ctx,
		"SELECT "+founderColumns+" FROM founders WHERE email = $1", email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return f, err
}

func findFounderByID(ctx context.Context, id string) (*model.Founder, error) {
	f, err := scanner.ScanFounder(database.DB.QueryRow(ctx,
		"SELECT "+founderColumns+" FROM founders WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return f, err
}

func findAdminByEmail(ctx context.Context, email string) (*model.Admin, error) {
	a, err := scanner.ScanAdmin(database.DB.QueryRow(ctx,
		`SELECT id, full_name, email, profile, phone_number, address, created_at
		FROM admins WHERE email = $1`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return a, err
}
