package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/merraine/merraine-api/internal/auth"
	"github.com/merraine/merraine-api/internal/cache"
	"github.com/merraine/merraine-api/internal/config"
	"github.com/merraine/merraine-api/internal/database"
	"github.com/merraine/merraine-api/internal/handler"
	"github.com/merraine/merraine-api/internal/logger"
	middlewarepkg "github.com/merraine/merraine-api/internal/middleware"
	"github.com/merraine/merraine-api/internal/pearch"
	"github.com/merraine/merraine-api/internal/repository"
	"github.com/merraine/merraine-api/internal/router"
	"github.com/merraine/merraine-api/internal/scheduler"
	"github.com/merraine/merraine-api/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogJSON, cfg.LogDebug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	pool, err := database.Open(startCtx, cfg.DatabaseURL, cfg.AutoMigrate, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if pool != nil {
		defer pool.Close()
	}

	var responseCache *cache.Cache
	if cfg.RedisURL != "" {
		client, err := cache.Connect(startCtx, cfg.RedisURL)
		if err != nil {
			log.Warn("redis unavailable, response cache disabled", zap.Error(err))
		} else {
			defer client.Close()
			responseCache = cache.New(client, cfg.SearchCacheTTL, log)
		}
	}

	vendor := pearch.New(pearch.Options{
		APIKey:        cfg.Pearch.APIKey,
		BaseURL:       cfg.Pearch.BaseURL,
		Timeout:       cfg.Pearch.Timeout,
		MaxRetries:    cfg.Pearch.MaxRetries,
		RetryDelays:   cfg.Pearch.RetryDelays,
		ProxyAudience: cfg.Pearch.ProxyAudience,
		Logger:        log,
	})
	if !vendor.Configured() {
		log.Warn("PEARCH_API_KEY not set, vendor routes will fail")
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	normalizer := service.NewNormalizer(nil)

	var (
		settingsRepo   repository.SettingsRepository
		creditsRepo    repository.CreditsRepository
		candidatesRepo repository.CandidatesRepository
	)
	if pool != nil {
		settingsRepo = repository.NewPGXSettingsRepository(pool)
		creditsRepo = repository.NewPGXCreditsRepository(pool)
		candidatesRepo = repository.NewPGXCandidatesRepository(pool)
	}

	creditsService := service.NewCreditsService(creditsRepo, vendor, log)
	authService := service.NewAuthService(settingsRepo, jwtManager, service.Credentials{
		Username: cfg.AuthUsername,
		Password: cfg.AuthPassword,
	}, log)
	collector := service.NewCollector(vendor, normalizer, cfg.Pearch.MaxPerCall, log)
	searchService := service.NewSearchService(collector, responseCache, creditsService, log)
	enrichService := service.NewEnrichService(vendor, candidatesRepo, normalizer, responseCache, creditsService, log)
	jobsService := service.NewJobsService(vendor, creditsService, log)

	handlers := router.Handlers{
		Auth:        handler.NewAuthHandler(authService, cfg.CookieSecure),
		Search:      handler.NewSearchHandler(searchService),
		Enrich:      handler.NewEnrichHandler(enrichService),
		Jobs:        handler.NewJobsHandler(jobsService),
		Credits:     handler.NewCreditsHandler(creditsService),
		HasDatabase: pool != nil,
	}
	if pool != nil {
		searchesService := service.NewSearchesService(repository.NewPGXSearchesRepository(pool), creditsService, log)
		savedService := service.NewSavedService(repository.NewPGXSavedRepository(pool), candidatesRepo, log)
		handlers.Searches = handler.NewSearchesHandler(searchesService)
		handlers.Saved = handler.NewSavedHandler(savedService)
	}

	if pool != nil && cfg.BalanceSyncSpec != "" && vendor.Configured() {
		jobs := scheduler.New(cfg.BalanceSyncSpec, creditsService, log)
		if err := jobs.Start(ctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		defer jobs.Stop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging(log))
	e.Use(echoMiddleware.Recover())

	router.Register(e, cfg, jwtManager, handlers)

	serverErr := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("port", cfg.Port), zap.Bool("database", pool != nil), zap.Bool("cache", responseCache != nil))
		serverErr <- e.Start(":" + cfg.Port)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Warn("graceful shutdown failed", zap.Error(err))
	}
	return nil
}
