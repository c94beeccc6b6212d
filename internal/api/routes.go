package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Barkat-Ullah/seed-lift-backend/internal/chat"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/handler"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/middleware"
	model "github.com/Barkat-Ullah/seed-lift-backend/internal/models"
)

// Handlers regroupe les handlers construits au démarrage avec leurs
// services injectés
type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Challenge    *handler.ChallengeHandler
	Subscription *handler.SubscriptionHandler
	Banner       *handler.BannerHandler
	Assist       *handler.AssistHandler
	Hub          *chat.Hub
}

func SetupRouter(h *Handlers) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.LoggerMiddleware)

	authenticated := r.PathPrefix("/").Subrouter()
	authenticated.Use(middleware.AuthMiddleware)

	admin := middleware.RequireRoles(model.RoleAdmin)
	founder := middleware.RequireRoles(model.RoleFounder)
	seeder := middleware.RequireRoles(model.RoleSeeder)

	// Root - API documentation
	r.HandleFunc("/", handler.RootHandler).Methods(http.MethodGet)
	r.HandleFunc("/health", handler.HealthCheck).Methods(http.MethodGet)

	// Auth
	r.HandleFunc("/auth/login", h.Auth.Login).Methods(http.MethodPost)
	r.HandleFunc("/auth/register", h.Auth.Register).Methods(http.MethodPost)
	r.HandleFunc("/auth/verify-otp", h.Auth.VerifyOTP).Methods(http.MethodPost)
	r.HandleFunc("/auth/resend-otp", h.Auth.ResendOTP).Methods(http.MethodPost)
	r.HandleFunc("/auth/forgot-password", h.Auth.ForgotPassword).Methods(http.MethodPost)
	r.HandleFunc("/auth/reset-password", h.Auth.ResetPassword).Methods(http.MethodPost)
	authenticated.HandleFunc("/auth/change-password", h.Auth.ChangePassword).Methods(http.MethodPost)
	authenticated.HandleFunc("/auth/logout", h.Auth.Logout).Methods(http.MethodPost)

	// Users
	authenticated.Handle("/users", admin(http.HandlerFunc(h.User.GetAll))).Methods(http.MethodGet)
	authenticated.HandleFunc("/users/me", h.User.GetMyProfile).Methods(http.MethodGet)
	authenticated.HandleFunc("/users/me", h.User.UpdateMyProfile).Methods(http.MethodPatch, http.MethodPut)
	authenticated.Handle("/users/{id}", admin(http.HandlerFunc(h.User.GetUserDetails))).Methods(http.MethodGet)
	authenticated.Handle("/users/{id}/status", admin(http.HandlerFunc(h.User.UpdateUserStatus))).Methods(http.MethodPatch)
	authenticated.Handle("/users/{id}", admin(http.HandlerFunc(h.User.SoftDeleteUser))).Methods(http.MethodDelete)
	authenticated.Handle("/users/{id}/hard", admin(http.HandlerFunc(h.User.HardDeleteUser))).Methods(http.MethodDelete)

	// Challenges
	r.Handle("/challenges", middleware.OptionalAuth(http.HandlerFunc(h.Challenge.GetAll))).Methods(http.MethodGet)
	authenticated.Handle("/challenges/admin", admin(http.HandlerFunc(h.Challenge.GetAllAdmin))).Methods(http.MethodGet)
	authenticated.Handle("/challenges/my", founder(http.HandlerFunc(h.Challenge.GetMy))).Methods(http.MethodGet)
	r.Handle("/challenges/{id}", middleware.OptionalAuth(http.HandlerFunc(h.Challenge.GetByID))).Methods(http.MethodGet)
	authenticated.Handle("/challenges", founder(http.HandlerFunc(h.Challenge.Create))).Methods(http.MethodPost)
	authenticated.Handle("/challenges/{id}", founder(http.HandlerFunc(h.Challenge.Update))).Methods(http.MethodPatch, http.MethodPut)
	authenticated.Handle("/challenges/{id}", middleware.RequireRoles(model.RoleFounder, model.RoleAdmin)(http.HandlerFunc(h.Challenge.SoftDelete))).Methods(http.MethodDelete)
	authenticated.Handle("/challenges/{id}/status", founder(http.HandlerFunc(h.Challenge.ToggleStatus))).Methods(http.MethodPatch)
	authenticated.Handle("/challenges/{id}/award", founder(http.HandlerFunc(h.Challenge.Award))).Methods(http.MethodPost)

	// Comments
	authenticated.Handle("/comments", seeder(http.HandlerFunc(handler.CreateComment))).Methods(http.MethodPost)
	authenticated.Handle("/comments/{id}/reply", founder(http.HandlerFunc(handler.ReplyToComment))).Methods(http.MethodPost)
	authenticated.HandleFunc("/comments/{id}", handler.GetCommentByID).Methods(http.MethodGet)
	authenticated.Handle("/comments/{id}", seeder(http.HandlerFunc(handler.UpdateComment))).Methods(http.MethodPatch)
	authenticated.HandleFunc("/comments/{id}", handler.DeleteComment).Methods(http.MethodDelete)
	r.HandleFunc("/challenges/{id}/comments", handler.GetCommentsByChallenge).Methods(http.MethodGet)
	authenticated.HandleFunc("/challenges/{id}/commenters", handler.GetCommentersByChallenge).Methods(http.MethodGet)

	// Reacts
	authenticated.Handle("/reacts", seeder(http.HandlerFunc(handler.ToggleReact))).Methods(http.MethodPost)
	r.HandleFunc("/challenges/{id}/reacts", handler.GetReactsByChallenge).Methods(http.MethodGet)

	// Seeders
	r.Handle("/seeders", middleware.OptionalAuth(http.HandlerFunc(handler.GetAllSeeders))).Methods(http.MethodGet)
	authenticated.Handle("/seeders/my-challenges", seeder(http.HandlerFunc(handler.GetMySeederChallenges))).Methods(http.MethodGet)
	authenticated.Handle("/seeders/my-rewards", seeder(http.HandlerFunc(handler.MyRewards))).Methods(http.MethodGet)
	r.HandleFunc("/seeders/{id}", handler.GetSeederByID).Methods(http.MethodGet)
	authenticated.Handle("/seeders/{id}/level", admin(http.HandlerFunc(handler.UpdateSeederLevel))).Methods(http.MethodPatch)

	// Subscriptions
	r.HandleFunc("/subscriptions", h.Subscription.GetAllPlans).Methods(http.MethodGet)
	authenticated.Handle("/subscriptions", admin(http.HandlerFunc(h.Subscription.CreatePlan))).Methods(http.MethodPost)
	authenticated.HandleFunc("/subscriptions/assign", h.Subscription.Assign).Methods(http.MethodPost)
	authenticated.HandleFunc("/subscriptions/my", h.Subscription.GetMySubscription).Methods(http.MethodGet)
	authenticated.HandleFunc("/subscriptions/my", h.Subscription.DeleteMySubscription).Methods(http.MethodDelete)
	r.HandleFunc("/subscriptions/{id}", h.Subscription.GetPlanByID).Methods(http.MethodGet)
	authenticated.Handle("/subscriptions/{id}", admin(http.HandlerFunc(h.Subscription.UpdatePlan))).Methods(http.MethodPatch)
	authenticated.Handle("/subscriptions/{id}", admin(http.HandlerFunc(h.Subscription.DeletePlan))).Methods(http.MethodDelete)

	// Notifications
	authenticated.HandleFunc("/notifications", handler.GetMyNotifications).Methods(http.MethodGet)
	authenticated.HandleFunc("/notifications/read-all", handler.MarkAllNotificationsRead).Methods(http.MethodPatch)
	authenticated.HandleFunc("/notifications/{id}/read", handler.MarkNotificationRead).Methods(http.MethodPatch)

	// Meta
	authenticated.Handle("/meta", admin(http.HandlerFunc(handler.GetAdminMeta))).Methods(http.MethodGet)

	// Banners
	r.HandleFunc("/banners", h.Banner.GetAll).Methods(http.MethodGet)
	authenticated.Handle("/banners", admin(http.HandlerFunc(h.Banner.Create))).Methods(http.MethodPost)
	r.HandleFunc("/banners/{id}", h.Banner.GetByID).Methods(http.MethodGet)
	authenticated.Handle("/banners/{id}", admin(http.HandlerFunc(h.Banner.Delete))).Methods(http.MethodDelete)

	// FAQ
	r.HandleFunc("/faqs", handler.GetAllFaq).Methods(http.MethodGet)
	authenticated.Handle("/faqs", admin(http.HandlerFunc(handler.CreateFaq))).Methods(http.MethodPost)
	r.HandleFunc("/faqs/{id}", handler.GetFaqByID).Methods(http.MethodGet)
	authenticated.Handle("/faqs/{id}", admin(http.HandlerFunc(handler.UpdateFaq))).Methods(http.MethodPatch)
	authenticated.Handle("/faqs/{id}", admin(http.HandlerFunc(handler.DeleteFaq))).Methods(http.MethodDelete)

	// Assistant
	authenticated.HandleFunc("/assist/ask", h.Assist.Ask).Methods(http.MethodPost)

	// WebSocket chat (authentification au premier message)
	r.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
		chat.ServeWs(h.Hub, w, req)
	}).Methods(http.MethodGet)

	return r
}
