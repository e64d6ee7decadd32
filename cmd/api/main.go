package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dafibh/fortuna/fortuna-insights/internal/config"
	"github.com/dafibh/fortuna/fortuna-insights/internal/domain"
	"github.com/dafibh/fortuna/fortuna-insights/internal/handler"
	"github.com/dafibh/fortuna/fortuna-insights/internal/middleware"
	"github.com/dafibh/fortuna/fortuna-insights/internal/repository/postgres"
	"github.com/dafibh/fortuna/fortuna-insights/internal/repository/storage"
	"github.com/dafibh/fortuna/fortuna-insights/internal/service"
	"github.com/dafibh/fortuna/fortuna-insights/internal/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("log_level", cfg.LogLevel).Msg("Unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Apply schema migrations before serving
	if err := postgres.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Initialize repositories
	transactionRepo := postgres.NewTransactionRepository(pool)
	budgetRepo := postgres.NewBudgetRepository(pool)

	// Realtime events, with report invalidations coalesced per workspace
	hub := websocket.NewHub()
	publisher := websocket.NewDebouncedPublisher(hub, cfg.Analytics.InvalidationDelay)
	defer publisher.Stop()

	// Initialize services
	analyticsService := service.NewAnalyticsService(transactionRepo, budgetRepo, service.AnalyticsOptions{
		InvestmentCategory: cfg.Analytics.InvestmentCategory,
		TrendWindow:        cfg.Analytics.TrendWindow,
		ShortWindow:        cfg.Analytics.ShortWindow,
		ForecastMonths:     cfg.Analytics.ForecastMonths,
	})
	transactionService := service.NewTransactionService(transactionRepo, publisher)
	budgetService := service.NewBudgetService(budgetRepo, publisher)

	// Snapshot archive is optional
	var snapshotService *service.SnapshotService
	var snapshotWorker *service.SnapshotWorker
	if cfg.SnapshotsEnabled {
		var snapshotRepo domain.SnapshotRepository
		snapshotRepo, err = storage.NewS3SnapshotRepository(context.Background(), cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize snapshot storage")
		}
		snapshotService = service.NewSnapshotService(analyticsService, snapshotRepo, publisher)
		snapshotWorker = service.NewSnapshotWorker(snapshotService, transactionRepo, log.Logger, service.SnapshotWorkerConfig{
			Interval: cfg.SnapshotInterval,
		})
		log.Info().Str("bucket", cfg.S3.Bucket).Dur("interval", cfg.SnapshotInterval).Msg("Snapshot archive enabled")
	}

	// Initialize handlers
	handlers := handler.Handlers{
		Transaction: handler.NewTransactionHandler(transactionService),
		Budget:      handler.NewBudgetHandler(budgetService),
		Analytics:   handler.NewAnalyticsHandler(analyticsService, snapshotService),
		WebSocket:   handler.NewWebSocketHandler(hub, cfg.CORSOrigins),
	}

	rateLimiter := middleware.NewRateLimiterWithConfig(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	defer rateLimiter.Stop()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, middleware.WorkspaceHeader},
		ExposeHeaders:    []string{"X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Register API routes
	handler.RegisterRoutes(e, handlers, rateLimiter)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	if snapshotWorker != nil {
		snapshotWorker.Start(ctx)
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	if snapshotWorker != nil {
		snapshotWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			event := log.Info()
			if res.Status >= http.StatusInternalServerError {
				event = log.Error()
			}
			event.
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Str("workspace_id", req.Header.Get(middleware.WorkspaceHeader)).
				Msg("request")

			return nil
		}
	}
}
