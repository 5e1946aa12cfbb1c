package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"folio/internal/auth"
	"folio/internal/config"
	"folio/internal/handler"
	"folio/internal/middleware"
	"folio/internal/observability"
	"folio/internal/service/portfolio"
	authSvc "folio/internal/service/auth"
	"folio/internal/templates"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	var logOutput io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, cfg.LogMaxFiles)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOutput = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger) // Set as default logger

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"store", cfg.StoreDriver,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, logger, observability.TracingConfig{
		ServiceName: "folio",
		Environment: cfg.Environment,
		Exporter:    cfg.OTelExporter,
		Endpoint:    cfg.OTelEndpoint,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	// Create JWT verifier
	jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, cfg.JWTIssuer, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Storage
	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.StoreDriver, err)
	}
	defer st.close()

	visits, closeVisits, err := openVisitTracker(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer closeVisits()
	if visits != nil {
		st.checks["redis"] = visits.Ping
	}

	// Template catalog
	registry, err := templates.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to initialize template registry: %v", err)
	}
	logger.Info("template registry initialized", "templates", len(registry.ListTemplates()))

	// Services
	access := authSvc.NewAccessEvaluator()
	lifecycle := portfolio.NewLifecycleService(st.repo, access, registry, portfolio.LifecycleConfig{
		SlugMaxAttempts:    cfg.SlugMaxAttempts,
		MaxConflictRetries: cfg.MaxConflictRetries,
		MaxBackups:         config.MaxBackups,
	}, logger)
	engagement := portfolio.NewEngagementService(st.repo, access, logger)

	logger.Info("services initialized")

	// Authenticated API routes
	apiMux := http.NewServeMux()
	handler.NewPortfolioHandler(lifecycle, logger).RegisterRoutes(apiMux)
	handler.NewTemplateHandler(registry, logger).RegisterRoutes(apiMux)

	// Public routes (anonymous allowed)
	publicMux := http.NewServeMux()
	if visits != nil {
		handler.NewPublicHandler(lifecycle, engagement, visits, logger).RegisterRoutes(publicMux)
	} else {
		handler.NewPublicHandler(lifecycle, engagement, nil, logger).RegisterRoutes(publicMux)
	}

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	handler.NewHealthHandler(st.checks, logger).RegisterRoutes(mux)
	mux.Handle("/api/", middleware.RequireAuth(jwtVerifier, logger)(apiMux))
	mux.Handle("/public/", middleware.OptionalAuth(jwtVerifier, logger)(publicMux))

	// Build middleware chain
	// Order: CORS → Recovery → Routes (auth is applied per route group)
	var h http.Handler = mux
	h = middleware.Recovery(logger)(h)

	// CORS - outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracing shutdown failed", "error", err)
	}
}
