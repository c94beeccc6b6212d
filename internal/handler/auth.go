package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/Barkat-Ullah/seed-lift-backend/internal/database"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/logger"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/middleware"
	model "github.com/Barkat-Ullah/seed-lift-backend/internal/models"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/services"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/utils"
)

// AuthHandler porte les flux d'authentification, le mailer est injecté
type AuthHandler struct {
	Mailer *services.MailerService
}

func NewAuthHandler(mailer *services.MailerService) *AuthHandler {
	return &AuthHandler{Mailer: mailer}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email        string   `json:"email"`
	Password     string   `json:"password"`
	Role         string   `json:"role"`
	FullName     string   `json:"fullName"`
	PhoneNumber  string   `json:"phoneNumber,omitempty"`
	Description  string   `json:"description,omitempty"`
	Skill        []string `json:"skill,omitempty"`
	BusinessName string   `json:"businessName,omitempty"`
	OrgType      string   `json:"orgType,omitempty"`
}

type otpRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// Login vérifie le mot de passe. Un compte non vérifié (hors admin) reçoit
// un nouvel OTP au lieu d'un token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		utils.ErrorSimple(w, http.StatusBadRequest, "email and password are required")
		return
	}

	ctx := r.Context()

	var user model.User
	var fullName string
	query := `
	SELECT u.id, u.email, u.password, u.role, u.status, u.is_email_verified,
		COALESCE(se.full_name, f.full_name, a.full_name, '')
	FROM users u
	LEFT JOIN seeders se ON se.email = u.email AND u.role = 'SEEDER'
	LEFT JOIN founders f ON f.email = u.email AND u.role = 'FOUNDER'
	LEFT JOIN admins a ON a.email = u.email AND u.role = 'ADMIN'
	WHERE u.email = $1 AND u.is_deleted = false`

	err := database.DB.QueryRow(ctx, query, req.Email).Scan(
		&user.ID, &user.Email, &user.Password, &user.Role, &user.Status,
		&user.IsEmailVerified, &fullName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.ErrorSimple(w, http.StatusNotFound, "user not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "failed to load user", err)
		return
	}

	if !utils.CheckPassword(user.Password, req.Password) {
		utils.ErrorSimple(w, http.StatusBadRequest, "password incorrect")
		return
	}

	if user.Status == model.StatusRestricted {
		utils.ErrorSimple(w, http.StatusForbidden, "account restricted")
		return
	}

	// Compte non vérifié: on relance la vérification au lieu d'ouvrir une session
	if user.Role != model.RoleAdmin && !user.IsEmailVerified {
		if err := h.issueOTP(ctx, user.Email); err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to send OTP email", err)
			return
		}
		utils.Message(w, "Please check your email for the verification OTP.")
		return
	}

	token, err := utils.CreateSession(ctx, user.ID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to create session", err)
		return
	}

	utils.Success(w, map[string]interface{}{
		"id":          user.ID,
		"name":        fullName,
		"email":       user.Email,
		"role":        user.Role,
		"accessToken": token,
	})
}

// Register crée le compte et son profil selon le rôle dans une transaction.
// L'envoi de l'OTP fait partie de la transaction: si l'email part en erreur,
// tout est annulé.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" || req.FullName == "" {
		utils.ErrorSimple(w, http.StatusBadRequest, "missing required fields")
		return
	}

	role := model.UserRole(req.Role)
	if role != model.RoleSeeder && role != model.RoleFounder {
		utils.ErrorSimple(w, http.StatusBadRequest, "invalid role for registration")
		return
	}

	ctx := r.Context()

	var exists bool
	err := database.DB.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, req.Email).Scan(&exists)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to check user", err)
		return
	}
	if exists {
		utils.ErrorSimple(w, http.StatusConflict, "user already exists")
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to hash password", err)
		return
	}

	otp, err := utils.GenerateOTP()
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to generate OTP", err)
		return
	}

	tx, err := database.DB.Begin(ctx)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to start transaction", err)
		return
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO users (id, email, password, role, status, is_email_verified, is_deleted, otp, otp_expiry, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 'ACTIVE', false, false, $5, $6, NOW(), NOW())`,
		uuid.New().String(), req.Email, hashed, role, otp, time.Now().Add(utils.OTPValidity))
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to create user", err)
		return
	}

	if role == model.RoleSeeder {
		_, err = tx.Exec(ctx, `
			INSERT INTO seeders (id, full_name, email, phone_number, description, skill, is_pro, level, coin, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, false, 'Starter', 0, NOW(), NOW())`,
			uuid.New().String(), req.FullName, req.Email, req.PhoneNumber, req.Description, pq.Array(req.Skill))
	} else {
		_, err = tx.Exec(ctx, `
			INSERT INTO founders (id, full_name, email, phone_number, description, business_name, org_type, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())`,
			uuid.New().String(), req.FullName, req.Email, req.PhoneNumber, req.Description, req.BusinessName, req.OrgType)
	}
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to create profile", err)
		return
	}

	if err := h.Mailer.SendOTP(req.Email, otp); err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to send OTP email", err)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to create user", err)
		return
	}

	logger.Success("Compte créé: %s (%s)", req.Email, role)
	utils.Message(w, "Please check your email for OTP and verify your account.")
}

// VerifyOTP couvre les deux flux: vérification d'inscription (retourne un
// token) et vérification avant reset de mot de passe.
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()

	var user model.User
	var fullName string
	query := `
	SELECT u.id, u.email, u.role, u.is_email_verified, u.otp, u.otp_expiry,
		COALESCE(se.full_name, f.full_name, a.full_name, '')
	FROM users u
	LEFT JOIN seeders se ON se.email = u.email AND u.role = 'SEEDER'
	LEFT JOIN founders f ON f.email = u.email AND u.role = 'FOUNDER'
	LEFT JOIN admins a ON a.email = u.email AND u.role = 'ADMIN'
	WHERE u.email = $1 AND u.is_deleted = false`

	err := database.DB.QueryRow(ctx, query, req.Email).Scan(
		&user.ID, &user.Email, &user.Role, &user.IsEmailVerified,
		&user.OTP, &user.OTPExpiry, &fullName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.ErrorSimple(w, http.StatusNotFound, "user not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "failed to load user", err)
		return
	}

	if !user.OTP.Valid || user.OTP.String != req.OTP ||
		!user.OTPExpiry.Valid || user.OTPExpiry.Time.Before(time.Now()) {
		utils.ErrorSimple(w, http.StatusBadRequest, "invalid or expired OTP")
		return
	}

	if !user.IsEmailVerified {
		// Flux inscription: le compte devient vérifié et une session s'ouvre
		_, err = database.DB.Exec(ctx,
			`UPDATE users SET otp = NULL, otp_expiry = NULL, is_email_verified = true, updated_at = NOW() WHERE email = $1`,
			user.Email)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to verify email", err)
			return
		}

		token, err := utils.CreateSession(ctx, user.ID)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to create session", err)
			return
		}

		utils.Success(w, map[string]interface{}{
			"message":     "Email verified successfully!",
			"accessToken": token,
			"id":          user.ID,
			"name":        fullName,
			"email":       user.Email,
			"role":        user.Role,
		})
		return
	}

	// Flux mot de passe oublié: l'OTP est consommé, le reset peut suivre
	_, err = database.DB.Exec(ctx,
		`UPDATE users SET otp = NULL, otp_expiry = NULL, updated_at = NOW() WHERE email = $1`,
		user.Email)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to consume OTP", err)
		return
	}

	utils.Message(w, "OTP verified for password reset!")
}

// ResendOTP renvoie un code à un compte pas encore vérifié
func (h *AuthHandler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()

	var status model.UserStatus
	var verified bool
	err := database.DB.QueryRow(ctx,
		`SELECT status, is_email_verified FROM users WHERE email = $1 AND is_deleted = false`,
		req.Email).Scan(&status, &verified)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.ErrorSimple(w, http.StatusNotFound, "user not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "failed to load user", err)
		return
	}

	if status == model.StatusRestricted {
		utils.ErrorSimple(w, http.StatusForbidden, "account restricted")
		return
	}
	if verified {
		utils.ErrorSimple(w, http.StatusBadRequest, "email is already verified")
		return
	}

	if err := h.issueOTP(ctx, req.Email); err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to send OTP email", err)
		return
	}

	utils.Message(w, "Verification OTP sent successfully. Please check your inbox.")
}

// ForgotPassword pose un OTP de reset. Un OTP encore valide bloque la
// demande, et l'OTP est annulé si l'email ne part pas.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()

	var status model.UserStatus
	var otp sql.NullString
	var otpExpiry sql.NullTime
	err := database.DB.QueryRow(ctx,
		`SELECT status, otp, otp_expiry FROM users WHERE email = $1 AND is_deleted = false`,
		req.Email).Scan(&status, &otp, &otpExpiry)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.ErrorSimple(w, http.StatusNotFound, "user not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "failed to load user", err)
		return
	}

	if status == model.StatusRestricted {
		utils.ErrorSimple(w, http.StatusBadRequest, "account restricted")
		return
	}

	if otp.Valid && otpExpiry.Valid && otpExpiry.Time.After(time.Now()) {
		remaining := int(time.Until(otpExpiry.Time).Seconds())
		utils.ErrorSimple(w, http.StatusConflict,
			fmt.Sprintf("An OTP was already sent. Try again in %d seconds.", remaining))
		return
	}

	if err := h.issueOTP(ctx, req.Email); err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to send OTP", err)
		return
	}

	utils.Message(w, "Password reset OTP sent. Please check your inbox.")
}

// ResetPassword remplace le mot de passe après un VerifyOTP réussi
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		utils.ErrorSimple(w, http.StatusBadRequest, "email and password are required")
		return
	}

	ctx := r.Context()

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to hash password", err)
		return
	}

	tag, err := database.DB.Exec(ctx,
		`UPDATE users SET password = $1, otp = NULL, otp_expiry = NULL, updated_at = NOW()
		WHERE email = $2 AND is_deleted = false`,
		hashed, req.Email)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to reset password", err)
		return
	}
	if tag.RowsAffected() == 0 {
		utils.ErrorSimple(w, http.StatusNotFound, "user not found")
		return
	}

	utils.Message(w, "Password reset successfully")
}

// ChangePassword vérifie l'ancien mot de passe puis invalide les autres sessions
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.ErrorSimple(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()

	var current string
	err = database.DB.QueryRow(ctx,
		`SELECT password FROM users WHERE id = $1 AND status = 'ACTIVE' AND is_deleted = false`,
		user.ID).Scan(&current)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load user", err)
		return
	}

	if !utils.CheckPassword(current, req.OldPassword) {
		utils.ErrorSimple(w, http.StatusBadRequest, "password incorrect")
		return
	}

	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to hash password", err)
		return
	}

	_, err = database.DB.Exec(ctx,
		`UPDATE users SET password = $1, updated_at = NOW() WHERE id = $2`, hashed, user.ID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to change password", err)
		return
	}

	if err := utils.DeleteUserSessions(ctx, user.ID); err != nil {
		logger.Error("Erreur invalidation sessions %s: %v", user.ID, err)
	}

	if err := h.Mailer.SendPasswordChanged(user.Email); err != nil {
		logger.Error("Erreur email changement mot de passe %s: %v", user.Email, err)
	}

	utils.Message(w, "Password changed successfully!")
}

// Logout supprime la session courante
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, err := middleware.GetTokenFromContext(r)
	if err != nil {
		utils.ErrorSimple(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := utils.DeleteSession(r.Context(), token); err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to logout", err)
		return
	}

	utils.Message(w, "Logged out successfully")
}

// issueOTP pose un nouvel OTP et l'envoie par mail. Si l'envoi échoue,
// l'OTP est remis à NULL pour ne pas bloquer une prochaine demande.
func (h *AuthHandler) issueOTP(ctx context.Context, email string) error {
	otp, err := utils.GenerateOTP()
	if err != nil {
		return err
	}

	_, err = database.DB.Exec(ctx,
		`UPDATE users SET otp = $1, otp_expiry = $2, updated_at = NOW() WHERE email = $3`,
		otp, time.Now().Add(utils.OTPValidity), email)
	if err != nil {
		return err
	}

	if err := h.Mailer.SendOTP(email, otp); err != nil {
		_, rollbackErr := database.DB.Exec(ctx,
			`UPDATE users SET otp = NULL, otp_expiry = NULL WHERE email = $1`, email)
		if rollbackErr != nil {
			logger.Error("Erreur annulation OTP %s: %v", email, rollbackErr)
		}
		return err
	}
	return nil
}
