package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "esg-assess/docs" // This is for Swagger
	"esg-assess/internal/auth"
	"esg-assess/internal/config"
	"esg-assess/internal/database"
	"esg-assess/internal/email"
	"esg-assess/internal/esg"
	"esg-assess/internal/handlers"
	"esg-assess/internal/logger"
	"esg-assess/internal/middleware"
	"esg-assess/internal/repository"
	"esg-assess/internal/scheduler"
	"esg-assess/internal/securestore"
	"esg-assess/internal/service"
	"esg-assess/internal/vault"
	"esg-assess/migrations"
)

// @title ESG Assess API
// @version 1.0
// @description Backend API for ESG self-assessment, recommendations, roadmaps and the implementation assistant

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger.Setup(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	// Carbon figures are exact decimals and go out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	slog.Info("Starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"env", cfg.App.Env,
		"log_level", logger.GetLevel(cfg.Log.Level),
	)

	db, err := database.New(&cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}()
	slog.Info("Database connection established")

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 2*time.Minute)
	err = database.NewMigrationExecutor(db.DB).RunMigrations(migrateCtx, migrations.FS)
	cancelMigrate()
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database migrations completed")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.DB)
	profileRepo := repository.NewProfileRepository(db.DB)
	assessRepo := repository.NewAssessmentRepository(db.DB)
	recRepo := repository.NewRecommendationRepository(db.DB)
	roadmapRepo := repository.NewRoadmapRepository(db.DB)
	chatRepo := repository.NewChatRepository(db.DB)
	auditRepo := repository.NewAuditRepository(db.DB)

	healthChecks := []handlers.HealthCheck{{Name: "database", Check: db.HealthCheck}}

	// Chat transcripts are sealed with Vault when it is enabled
	var store securestore.Store = securestore.Plain{}
	if cfg.Vault.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		vaultClient, err := vault.NewClient(ctx, &vault.Config{
			Address:      cfg.Vault.Address,
			Token:        cfg.Vault.Token,
			TransitMount: cfg.Vault.TransitMount,
		})
		if err != nil {
			cancel()
			slog.Error("Failed to initialize Vault client", "error", err)
			os.Exit(1)
		}
		transitStore, err := securestore.NewTransitStore(ctx, vaultClient, cfg.Vault.KeyName)
		cancel()
		if err != nil {
			slog.Error("Failed to initialize transcript encryption", "error", err)
			os.Exit(1)
		}
		store = transitStore
		healthChecks = append(healthChecks, handlers.HealthCheck{Name: "vault", Check: vaultClient.Health})
		slog.Info("Chat transcript encryption enabled", "vault_addr", cfg.Vault.Address)
	} else {
		slog.Warn("Vault is disabled - chat transcripts are stored unencrypted")
	}

	// Initialize services
	engine, err := esg.NewEngine(cfg.Scoring.Weights())
	if err != nil {
		slog.Error("Invalid scoring weights", "error", err)
		os.Exit(1)
	}
	authService := auth.NewService(&cfg.JWT)
	authSvc := service.NewAuthService(userRepo, authService, cfg.App.EnableRegistration)
	profileService := service.NewProfileService(profileRepo)
	assessmentService := service.NewAssessmentService(engine, profileRepo, assessRepo, recRepo, roadmapRepo)
	recommendationService := service.NewRecommendationService(engine.Weights(), profileRepo, assessRepo, recRepo)
	roadmapService := service.NewRoadmapService(profileRepo, assessRepo, recRepo, roadmapRepo)
	auditService := service.NewAuditService(auditRepo)

	llmService := service.NewLLMService(cfg.LLM)
	if llmService.Enabled() {
		slog.Info("Chat assistant uses a language model", "base_url", cfg.LLM.BaseURL, "model", cfg.LLM.Model)
	} else {
		slog.Info("Chat assistant runs on built-in guidance only")
	}
	chatService := service.NewChatService(
		llmService, store, chatRepo, profileRepo, assessRepo, recRepo, roadmapRepo, roadmapService,
		service.ChatOptions{HistoryMessages: cfg.Chat.HistoryMessages, Retention: cfg.Chat.Retention},
	)

	emailService := email.NewService(&cfg.Email)
	schedulerService := scheduler.NewScheduler(chatService, assessRepo, emailService, &cfg.Scheduler)
	schedulerService.Start()
	defer schedulerService.Stop()

	// Initialize middleware
	authMw := middleware.NewAuthMiddleware(authService)
	adminMw := middleware.NewAdminMiddleware(userRepo)
	auditMw := middleware.NewAuditMiddleware(auditService)
	corsMw := middleware.NewCORSMiddleware(&cfg.CORS)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit)
	defer rateLimiter.Stop()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authSvc, auditMw)
	profileHandler := handlers.NewProfileHandler(profileService)
	assessmentHandler := handlers.NewAssessmentHandler(assessmentService)
	recommendationHandler := handlers.NewRecommendationHandler(recommendationService)
	roadmapHandler := handlers.NewRoadmapHandler(roadmapService)
	chatHandler := handlers.NewChatHandler(chatService)
	auditHandler := handlers.NewAuditHandler(auditService)
	configHandler := handlers.NewConfigHandler(cfg)
	healthHandler := handlers.NewHealthHandler(cfg.App.Version, healthChecks...)

	protected := func(h http.HandlerFunc) http.Handler {
		return authMw.Authenticate(h)
	}
	audited := func(action, resource string, h http.HandlerFunc) http.Handler {
		return authMw.Authenticate(auditMw.Log(action, resource)(h))
	}

	// Setup router
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/v1/config/app", configHandler.GetAppConfig)

	// Protected routes
	mux.Handle("GET /api/v1/users/me", protected(authHandler.Me))
	mux.Handle("GET /api/v1/business-profile", protected(profileHandler.Get))
	mux.Handle("PUT /api/v1/business-profile", audited("profile.save", "business_profiles", profileHandler.Save))

	mux.Handle("POST /api/v1/assessments", audited("assessment.submit", "assessments", assessmentHandler.Submit))
	mux.Handle("GET /api/v1/assessments", protected(assessmentHandler.List))
	mux.Handle("GET /api/v1/assessments/latest", protected(assessmentHandler.Latest))
	mux.Handle("GET /api/v1/assessments/{id}", protected(assessmentHandler.Get))
	mux.Handle("GET /api/v1/assessments/{id}/dashboard", protected(assessmentHandler.Dashboard))

	mux.Handle("GET /api/v1/assessments/{id}/recommendations", protected(recommendationHandler.List))
	mux.Handle("POST /api/v1/assessments/{id}/recommendations/{recId}/simulate", protected(recommendationHandler.Simulate))
	mux.Handle("GET /api/v1/assessments/{id}/opportunities", protected(recommendationHandler.Opportunities))

	mux.Handle("POST /api/v1/assessments/{id}/roadmap", audited("roadmap.generate", "roadmap_items", roadmapHandler.Generate))
	mux.Handle("GET /api/v1/assessments/{id}/roadmap", protected(roadmapHandler.List))
	mux.Handle("POST /api/v1/assessments/{id}/roadmap/items", audited("roadmap.item.add", "roadmap_items", roadmapHandler.AddItem))
	mux.Handle("PUT /api/v1/roadmap/items/{itemId}/complete", audited("roadmap.item.complete", "roadmap_items", roadmapHandler.Complete))

	mux.Handle("POST /api/v1/chat", protected(chatHandler.Ask))
	mux.Handle("GET /api/v1/chat/sessions/{sessionId}/messages", protected(chatHandler.Transcript))

	// Admin routes
	mux.Handle("GET /api/v1/admin/audit-logs",
		authMw.Authenticate(
			adminMw.RequireAdmin(
				http.HandlerFunc(auditHandler.ListAuditLogs),
			),
		),
	)

	mux.HandleFunc("GET /health", healthHandler.Health)

	// Swagger documentation
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// Apply global middleware, outermost first
	handler := middleware.Chain(mux,
		middleware.RequestID,
		middleware.LoggingMiddleware,
		middleware.SecurityHeaders,
		corsMw.Handler,
		rateLimiter.Limit,
	)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.TimeoutRead,
		WriteTimeout: cfg.Server.TimeoutWrite,
		IdleTimeout:  cfg.Server.TimeoutIdle,
	}

	go func() {
		slog.Info("Server starting", "address", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped")
}
