package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/finanalysis/internal/adapters/gemini"
	portsrepo "github.com/SscSPs/finanalysis/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finanalysis/internal/core/ports/services"
	"github.com/SscSPs/finanalysis/internal/core/services"
	"github.com/SscSPs/finanalysis/internal/core/statement"
	"github.com/SscSPs/finanalysis/internal/dto"
	"github.com/SscSPs/finanalysis/internal/handlers"
	"github.com/SscSPs/finanalysis/internal/middleware"
	"github.com/SscSPs/finanalysis/internal/platform/config"
	"github.com/SscSPs/finanalysis/internal/repositories/database/pgsql"
	"github.com/SscSPs/finanalysis/internal/repositories/memory"
	"github.com/SscSPs/finanalysis/internal/utils"
	"github.com/SscSPs/finanalysis/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// @title Finanalysis API
// @version 1.0
// @description Upload general-ledger exports and explore the resulting financial statements.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	repos, dbPool, err := setupRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to set up session storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool, logger)

	keywords := statement.DefaultKeywords()
	if cfg.ClassificationRulesFile != "" {
		keywords, err = statement.LoadKeywords(cfg.ClassificationRulesFile)
		if err != nil {
			logger.Error("Failed to load classification rules", slog.String("file", cfg.ClassificationRulesFile), slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("Loaded classification rules", slog.String("file", cfg.ClassificationRulesFile))
	}

	var generator portssvc.SummaryGenerator
	if cfg.GeminiAPIKey != "" {
		g, err := gemini.NewGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("Failed to create summary generator", slog.String("error", err.Error()))
			os.Exit(1)
		}
		generator = g
	} else {
		logger.Warn("GEMINI_API_KEY not set, statement summaries will be unavailable")
	}

	serviceContainer := services.NewServiceContainer(cfg, repos, keywords, generator)

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, logger)
	defer posthogClient.Close()

	sweeper, err := services.NewSessionSweeper(serviceContainer.Reporting, cfg.SessionSweepSchedule, logger)
	if err != nil {
		logger.Error("Failed to schedule session sweeper", slog.String("error", err.Error()))
		os.Exit(1)
	}
	sweeper.Start()

	uploadLimiter, err := middleware.NewRateLimiter(cfg.UploadRateLimit)
	if err != nil {
		logger.Error("Invalid upload rate limit", slog.String("rate", cfg.UploadRateLimit), slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := dto.RegisterValidators(); err != nil {
		logger.Error("Failed to register request validators", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, cors)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	err = r.SetTrustedProxies(nil)
	if err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer, posthogClient, uploadLimiter)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", slog.String("error", err.Error()))
	}
	sweeper.Stop(shutdownCtx)

	logger.Info("Server exited")
}

// setupRepositories uses PostgreSQL when PGSQL_URL is set and falls back to in-memory sessions otherwise.
// The returned pool is nil in the in-memory case.
func setupRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, *pgxpool.Pool, error) {
	if cfg.DatabaseURL == "" {
		logger.Info("PGSQL_URL not set, keeping sessions in memory")
		return memory.NewRepositoryProvider(), nil, nil
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}

	logger.Info("Running database migrations...")
	if err := database.RunMigrations(cfg.DatabaseURL, logger); err != nil {
		dbPool.Close()
		return portsrepo.RepositoryProvider{}, nil, err
	}

	return pgsql.NewRepositoryProvider(dbPool), dbPool, nil
}
