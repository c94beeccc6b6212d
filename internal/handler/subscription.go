package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/Barkat-Ullah/seed-lift-backend/internal/database"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/logger"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/middleware"
	model "github.com/Barkat-Ullah/seed-lift-backend/internal/models"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/scanner"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/services"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/utils"
)

// SubscriptionHandler porte les plans et abonnements, stripe est injecté
type SubscriptionHandler struct {
	Stripe *services.StripeService
}

func NewSubscriptionHandler(stripe *services.StripeService) *SubscriptionHandler {
	return &SubscriptionHandler{Stripe: stripe}
}

const subscriptionColumns = `id, title, price, duration, feature, stripe_price_id,
	stripe_product_id, is_active, admin_id, created_at`

type planRequest struct {
	Title    string   `json:"title"`
	Price    float64  `json:"price"`
	Duration string   `json:"duration"`
	Feature  []string `json:"feature"`
}

// CreatePlan crée le plan côté Stripe (produit + prix récurrent) puis
// l'enregistre localement
func (h *SubscriptionHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.ErrorSimple(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req planRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" || req.Price <= 0 || req.Duration == "" {
		utils.ErrorSimple(w, http.StatusBadRequest, "missing required fields")
		return
	}

	duration := model.SubscriptionDuration(req.Duration)
	if duration != model.DurationMonthly && duration != model.DurationYearly {
		utils.ErrorSimple(w, http.StatusBadRequest, "duration must be MONTHLY or YEARLY")
		return
	}

	productID, priceID, err := h.Stripe.CreatePlan(req.Title, req.Price, duration)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to create stripe plan", err)
		return
	}

	ctx := r.Context()

	admin, err := findAdminByEmail(ctx, user.Email)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load admin", err)
		return
	}
	adminID := sql.NullString{}
	if admin != nil {
		adminID = utils.StringToNullString(admin.ID)
	}

	plan, err := scanner.ScanSubscription(database.DB.QueryRow(ctx, `
		INSERT INTO subscriptions (id, title, price, duration, feature,
			stripe_price_id, stripe_product_id, is_active, admin_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, true, $8, NOW())
		RETURNING `+subscriptionColumns,
		uuid.New().String(), req.Title, req.Price, duration, pq.Array(req.Feature),
		utils.StringToNullString(priceID), utils.StringToNullString(productID), adminID))
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to create plan", err)
		return
	}

	logger.Success("Plan créé: %s (%s)", plan.Title, plan.ID)
	utils.Created(w, plan)
}

// GetAllPlans liste les plans actifs
func (h *SubscriptionHandler) GetAllPlans(w http.ResponseWriter, r *http.Request) {
	rows, err := database.DB.Query(r.Context(),
		`SELECT `+subscriptionColumns+` FROM subscriptions
		WHERE is_active = true ORDER BY created_at DESC`)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load plans", err)
		return
	}
	defer rows.Close()

	plans := []model.Subscription{}
	for rows.Next() {
		p, err := scanner.ScanSubscription(rows)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to scan plan", err)
			return
		}
		plans = append(plans, *p)
	}
	if err := rows.Err(); err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load plans", err)
		return
	}

	utils.Success(w, plans)
}

// GetPlanByID retourne un plan
func (h *SubscriptionHandler) GetPlanByID(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	plan, err := loadPlan(r.Context(), id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load plan", err)
		return
	}
	if plan == nil {
		utils.ErrorSimple(w, http.StatusNotFound, "subscription not found")
		return
	}

	utils.Success(w, plan)
}

// UpdatePlan synchronise Stripe puis la base. Un changement de tarif
// remplace le prix Stripe, l'ancien est désactivé.
func (h *SubscriptionHandler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		Title    string   `json:"title,omitempty"`
		Price    *float64 `json:"price,omitempty"`
		Duration string   `json:"duration,omitempty"`
		Feature  []string `json:"feature,omitempty"`
	}
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()

	plan, err := loadPlan(ctx, id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load plan", err)
		return
	}
	if plan == nil {
		utils.ErrorSimple(w, http.StatusNotFound, "subscription not found")
		return
	}
	if !plan.StripeProductID.Valid {
		utils.ErrorSimple(w, http.StatusInternalServerError,
			"missing stripe product id, cannot update paid subscription")
		return
	}

	if req.Title != "" {
		plan.Title = req.Title
	}
	if req.Duration != "" {
		duration := model.SubscriptionDuration(req.Duration)
		if duration != model.DurationMonthly && duration != model.DurationYearly {
			utils.ErrorSimple(w, http.StatusBadRequest, "duration must be MONTHLY or YEARLY")
			return
		}
		plan.Duration = duration
	}
	if req.Title != "" || req.Duration != "" {
		if err := h.Stripe.UpdateProduct(plan.StripeProductID.String, plan.Title, plan.Duration); err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to update stripe product", err)
			return
		}
	}

	if req.Price != nil && *req.Price != plan.Price {
		newPriceID, err := h.Stripe.ReplacePrice(plan.StripeProductID.String,
			utils.NullStringToString(plan.StripePriceID), *req.Price, plan.Duration)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to update stripe price", err)
			return
		}
		plan.Price = *req.Price
		plan.StripePriceID = utils.StringToNullString(newPriceID)
	}

	if req.Feature != nil {
		plan.Feature = req.Feature
	}

	updated, err := scanner.ScanSubscription(database.DB.QueryRow(ctx, `
		UPDATE subscriptions SET title = $1, price = $2, duration = $3,
			feature = $4, stripe_price_id = $5
		WHERE id = $6
		RETURNING `+subscriptionColumns,
		plan.Title, plan.Price, plan.Duration, pq.Array(plan.Feature),
		plan.StripePriceID, id))
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to update plan", err)
		return
	}

	utils.Success(w, updated)
}

// DeletePlan désactive le plan sans l'effacer
func (h *SubscriptionHandler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	plan, err := scanner.ScanSubscription(database.DB.QueryRow(r.Context(),
		`UPDATE subscriptions SET is_active = false WHERE id = $1
		RETURNING `+subscriptionColumns, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.ErrorSimple(w, http.StatusNotFound, "subscription not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "failed to delete plan", err)
		return
	}

	utils.Success(w, plan)
}

type assignRequest struct {
	SubscriptionID string `json:"subscriptionId"`
	MethodID       string `json:"methodId"`
}

// Assign ouvre l'abonnement Stripe du user connecté: client créé au
// besoin, moyen de paiement attaché, paiement local PENDING, dates
// provisoires posées sur le profil
func (h *SubscriptionHandler) Assign(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.ErrorSimple(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req assignRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SubscriptionID == "" || req.MethodID == "" {
		utils.ErrorSimple(w, http.StatusBadRequest, "subscriptionId and methodId are required")
		return
	}

	ctx := r.Context()

	profile, err := loadBillingProfile(ctx, user)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load profile", err)
		return
	}
	if profile == nil {
		utils.ErrorSimple(w, http.StatusNotFound, "profile not found")
		return
	}

	plan, err := loadPlan(ctx, req.SubscriptionID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load plan", err)
		return
	}
	if plan == nil {
		utils.ErrorSimple(w, http.StatusNotFound, "subscription not found")
		return
	}

	now := time.Now()
	if profile.subscriptionEnd.Valid && profile.subscriptionEnd.Time.After(now) {
		utils.ErrorSimple(w, http.StatusConflict, "user already has an active subscription")
		return
	}
	if !plan.StripePriceID.Valid {
		utils.ErrorSimple(w, http.StatusInternalServerError, "stripe price id missing")
		return
	}

	customerID := profile.stripeCustomerID
	if customerID == "" {
		customerID, err = h.Stripe.CreateCustomer(user.Email, profile.fullName, user.ID, user.Role)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to create stripe customer", err)
			return
		}
		_, err = database.DB.Exec(ctx,
			"UPDATE "+profile.table+" SET stripe_customer_id = $1 WHERE email = $2",
			customerID, user.Email)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to save stripe customer", err)
			return
		}
	}

	if err := h.Stripe.AttachPaymentMethod(customerID, req.MethodID); err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to attach payment method", err)
		return
	}

	result, err := h.Stripe.CreateSubscription(customerID, plan.StripePriceID.String)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to create stripe subscription", err)
		return
	}

	founderID, seederID := sql.NullString{}, sql.NullString{}
	if user.Role == model.RoleFounder {
		founderID = utils.StringToNullString(profile.id)
	} else {
		seederID = utils.StringToNullString(profile.id)
	}

	var paymentID string
	err = database.DB.QueryRow(ctx, `
		INSERT INTO payments (id, subscription_id, founder_id, seeder_id, amount,
			currency, status, stripe_subscription_id, stripe_customer_id,
			stripe_payment_id, created_at)
		VALUES ($1, $2, $3, $4, $5, 'usd', $6, $7, $8, $9, NOW())
		RETURNING id`,
		uuid.New().String(), plan.ID, founderID, seederID, plan.Price,
		model.PaymentPending, result.SubscriptionID, customerID,
		utils.StringToNullString(result.PaymentIntentID)).Scan(&paymentID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to record payment", err)
		return
	}

	endDate := now.AddDate(0, 1, 0)
	if plan.Duration == model.DurationYearly {
		endDate = now.AddDate(1, 0, 0)
	}

	if user.Role == model.RoleFounder {
		_, err = database.DB.Exec(ctx, `
			UPDATE founders SET subscription_id = $1, subscription_start = $2,
				subscription_end = $3, updated_at = NOW()
			WHERE email = $4`, plan.ID, now, endDate, user.Email)
	} else {
		_, err = database.DB.Exec(ctx, `
			UPDATE seeders SET is_pro = true, subscription_id = $1,
				subscription_start = $2, subscription_end = $3, updated_at = NOW()
			WHERE email = $4`, plan.ID, now, endDate, user.Email)
	}
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to save subscription dates", err)
		return
	}

	logger.Success("Abonnement initié: %s pour %s", result.SubscriptionID, user.Email)
	utils.Success(w, map[string]interface{}{
		"message":              "Subscription initiated successfully",
		"stripeSubscriptionId": result.SubscriptionID,
		"clientSecret":         result.ClientSecret,
		"paymentId":            paymentID,
	})
}

// GetMySubscription retourne l'abonnement courant. Un abonnement arrivé
// à échéance est remis à zéro sur le profil au passage.
func (h *SubscriptionHandler) GetMySubscription(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.ErrorSimple(w, http.StatusUnauthorized, "authentication required")
		return
	}

	ctx := r.Context()

	profile, err := loadBillingProfile(ctx, user)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load profile", err)
		return
	}
	if profile == nil || profile.subscriptionID == "" {
		utils.ErrorSimple(w, http.StatusNotFound, "no subscription found")
		return
	}

	payment, err := scanner.ScanPayment(database.DB.QueryRow(ctx, `
		SELECT id, subscription_id, founder_id, seeder_id, amount, currency, status,
			stripe_subscription_id, stripe_customer_id, stripe_payment_id, created_at
		FROM payments
		WHERE founder_id = $1 OR seeder_id = $1
		ORDER BY created_at DESC LIMIT 1`, profile.id))
	if err != nil || payment.Status != model.PaymentSuccess {
		utils.ErrorSimple(w, http.StatusNotFound, "payment not successful")
		return
	}

	now := time.Now()
	remainingDays := 0
	if profile.subscriptionEnd.Valid {
		remainingDays = utils.RemainingDays(profile.subscriptionEnd.Time, now)
	}

	if remainingDays == 0 {
		if user.Role == model.RoleFounder {
			_, err = database.DB.Exec(ctx, `
				UPDATE founders SET subscription_id = NULL, subscription_start = NULL,
					subscription_end = NULL, updated_at = NOW()
				WHERE email = $1`, user.Email)
		} else {
			_, err = database.DB.Exec(ctx, `
				UPDATE seeders SET is_pro = false, subscription_id = NULL,
					subscription_start = NULL, subscription_end = NULL, updated_at = NOW()
				WHERE email = $1`, user.Email)
		}
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to reset subscription", err)
			return
		}
		utils.Message(w, "Subscription expired. Data reset successfully.")
		return
	}

	plan, err := loadPlan(ctx, profile.subscriptionID)
	if err != nil || plan == nil {
		utils.ErrorSimple(w, http.StatusNotFound, "subscription not found")
		return
	}

	utils.Success(w, model.UserSubscription{
		ID:            plan.ID,
		Title:         plan.Title,
		Duration:      plan.Duration,
		Feature:       plan.Feature,
		StartDate:     profile.subscriptionStart.Time,
		EndDate:       profile.subscriptionEnd.Time,
		RemainingDays: remainingDays,
		Owner:         profile.fullName,
	})
}

// DeleteMySubscription détache l'abonnement du profil
func (h *SubscriptionHandler) DeleteMySubscription(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.ErrorSimple(w, http.StatusUnauthorized, "authentication required")
		return
	}

	ctx := r.Context()

	profile, err := loadBillingProfile(ctx, user)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load profile", err)
		return
	}
	if profile == nil {
		utils.ErrorSimple(w, http.StatusNotFound, "profile not found")
		return
	}
	if profile.subscriptionID == "" {
		utils.ErrorSimple(w, http.StatusBadRequest, "you do not have an active subscription to delete")
		return
	}

	_, err = database.DB.Exec(ctx, `
		UPDATE `+profile.table+` SET subscription_id = NULL,
			subscription_start = NULL, subscription_end = NULL, updated_at = NOW()
		WHERE email = $1`, user.Email)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to delete subscription", err)
		return
	}

	utils.Message(w, "Subscription deleted successfully")
}

// ----- helpers -----

// billingProfile est la vue commune founder/seeder pour la facturation
type billingProfile struct {
	table             string
	id                string
	fullName          string
	stripeCustomerID  string
	subscriptionID    string
	subscriptionStart sql.NullTime
	subscriptionEnd   sql.NullTime
}

func loadBillingProfile(ctx context.Context, user model.AuthUser) (*billingProfile, error) {
	switch user.Role {
	case model.RoleFounder:
		f, err := findFounderByEmail(ctx, user.Email)
		if err != nil || f == nil {
			return nil, err
		}
		return &billingProfile{
			table: "founders", id: f.ID, fullName: f.FullName,
			stripeCustomerID:  utils.NullStringToString(f.StripeCustomerID),
			subscriptionID:    utils.NullStringToString(f.SubscriptionID),
			subscriptionStart: f.SubscriptionStart,
			subscriptionEnd:   f.SubscriptionEnd,
		}, nil
	case model.RoleSeeder:
		s, err := findSeederByEmail(ctx, user.Email)
		if err != nil || s == nil {
			return nil, err
		}
		return &billingProfile{
			table: "seeders", id: s.ID, fullName: s.FullName,
			stripeCustomerID:  utils.NullStringToString(s.StripeCustomerID),
			subscriptionID:    utils.NullStringToString(s.SubscriptionID),
			subscriptionStart: s.SubscriptionStart,
			subscriptionEnd:   s.SubscriptionEnd,
		}, nil
	}
	return nil, nil
}

func loadPlan(ctx context.Context, id string) (*model.Subscription, error) {
	p, err := scanner.ScanSubscription(database.DB.QueryRow(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}
