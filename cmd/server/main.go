package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"auditcore/internal/auth"
	"auditcore/internal/config"
	"auditcore/internal/handler"
	"auditcore/internal/metrics"
	"auditcore/internal/middleware"
	"auditcore/internal/repository/postgres"
	postgresLifecycle "auditcore/internal/repository/postgres/lifecycle"
	serviceLifecycle "auditcore/internal/service/lifecycle"
	"auditcore/internal/socket"
	"auditcore/internal/workflowdef"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

const sessionCacheTTL = 5 * time.Minute

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

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Create JWT verifier
	jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Create pgx connection pool
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	docRepo := postgresLifecycle.NewDocumentRepository(repoConfig)
	versionRepo := postgresLifecycle.NewVersionRepository(repoConfig)
	workflowRepo := postgresLifecycle.NewWorkflowRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Load workflow templates
	templates, err := workflowdef.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load workflow templates: %v", err)
	}
	logger.Info("workflow templates loaded", "count", len(templates.List()))

	// Metrics and event hub
	m := metrics.New()
	hub := socket.NewHub(m, logger)
	go hub.Run()

	// Create lifecycle services
	sessions := serviceLifecycle.NewSessionCache(sessionCacheTTL)
	versionStore := serviceLifecycle.NewVersionStore(docRepo, versionRepo, txManager, sessions, logger)
	engine := serviceLifecycle.NewWorkflowEngine(docRepo, workflowRepo, templates, logger)
	processor := serviceLifecycle.NewActionProcessor(workflowRepo, txManager, templates, logger)
	lifecycleService := serviceLifecycle.NewLifecycleService(
		versionStore,
		engine,
		processor,
		workflowRepo,
		templates,
		hub,
		m,
		logger,
	)
	documentRegistry := serviceLifecycle.NewDocumentRegistry(docRepo, logger)

	// Background timeout sweep
	sweeper := serviceLifecycle.NewTimeoutSweeper(workflowRepo, hub, m, cfg.SweepInterval, logger)
	go sweeper.Run(ctx)

	// Create handlers
	docHandler := handler.NewDocumentHandler(documentRegistry, logger)
	versionHandler := handler.NewVersionHandler(lifecycleService, logger)
	workflowHandler := handler.NewWorkflowHandler(lifecycleService, templates, logger)
	eventsHandler := handler.NewEventsHandler(hub, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check and metrics
	mux.HandleFunc("GET /health", docHandler.HealthCheck)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Document registry routes
	mux.HandleFunc("GET /api/documents", docHandler.ListDocuments)
	mux.HandleFunc("POST /api/documents", docHandler.RegisterDocument)
	mux.HandleFunc("GET /api/documents/{id}", docHandler.GetDocument)

	// Version history routes
	mux.HandleFunc("GET /api/documents/{id}/versions", versionHandler.ListVersions)
	mux.HandleFunc("POST /api/documents/{id}/versions", versionHandler.CreateVersion)
	mux.HandleFunc("POST /api/documents/{id}/versions/navigate", versionHandler.NavigateVersion) // Must come before {vid} routes
	mux.HandleFunc("POST /api/documents/{id}/versions/{vid}/select", versionHandler.SelectVersion)
	mux.HandleFunc("GET /api/documents/{id}/versions/{vid}/content", versionHandler.FetchVersionContent)
	mux.HandleFunc("GET /api/documents/{id}/versions/{vid}/download", versionHandler.DownloadVersion)

	// Workflow routes
	mux.HandleFunc("GET /api/documents/{id}/workflow", workflowHandler.GetWorkflowView)
	mux.HandleFunc("POST /api/documents/{id}/workflows", workflowHandler.StartWorkflow)
	mux.HandleFunc("POST /api/documents/{id}/workflow/actions", workflowHandler.SubmitAction)
	mux.HandleFunc("GET /api/workflow-templates", workflowHandler.ListTemplates)

	// Event stream
	mux.HandleFunc("GET /api/events", eventsHandler.Subscribe)

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Metrics → Recovery → Auth → Routes
	h = middleware.Auth(jwtVerifier)(h)
	h = middleware.Recovery(logger)(h)
	h = middleware.Metrics(m)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled to allow long-lived websocket connections
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
