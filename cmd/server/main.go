package main

import (
	"context"
	"net/http"
	"os"

	"github.com/Barkat-Ullah/seed-lift-backend/internal/api"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/cache"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/chat"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/config"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/database"
	apphandler "github.com/Barkat-Ullah/seed-lift-backend/internal/handler"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/logger"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/middleware"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Could not load config: %v", err)
		os.Exit(1)
	}

	// Connect to PostgreSQL
	db, err := database.ConnectPostgres(cfg)
	if err != nil {
		logger.Error("Database connection failed: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	// Connect to Redis (cache assistant + limites)
	cacheClient, err := cache.ConnectRedis(cfg)
	if err != nil {
		logger.Error("Redis connection failed: %v", err)
		os.Exit(1)
	}
	defer cacheClient.Close()

	// External services
	mailer := services.NewMailerService(cfg)

	cloudinary, err := services.NewCloudinaryService(cfg)
	if err != nil {
		logger.Error("Cloudinary initialization failed: %v", err)
		os.Exit(1)
	}

	stripe, err := services.NewStripeService(cfg)
	if err != nil {
		logger.Error("Stripe initialization failed: %v", err)
		os.Exit(1)
	}

	gemini, err := services.NewGeminiService(context.Background(), cfg)
	if err != nil {
		logger.Error("Gemini initialization failed: %v", err)
		os.Exit(1)
	}

	limiter := cache.NewLimiter(cacheClient, "assist:daily", cfg.AssistDailyLimit)

	// WebSocket hub
	hub := chat.NewHub()
	go hub.Run()

	// Initialize routes
	router := api.SetupRouter(&api.Handlers{
		Auth:         apphandler.NewAuthHandler(mailer),
		User:         apphandler.NewUserHandler(cloudinary),
		Challenge:    apphandler.NewChallengeHandler(cloudinary),
		Subscription: apphandler.NewSubscriptionHandler(stripe),
		Banner:       apphandler.NewBannerHandler(cloudinary),
		Assist:       apphandler.NewAssistHandler(gemini, cacheClient, limiter),
		Hub:          hub,
	})

	// Wrap router with CORS middleware
	handler := middleware.CORSMiddleware(router)

	// Start server
	logger.Success("Server starting on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		logger.Error("Server failed: %v", err)
		os.Exit(1)
	}
}
