// Ajiwai Labs - staff training server
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

	"github.com/ashureev/ajiwai-labs/internal/api"
	"github.com/ashureev/ajiwai-labs/internal/chat"
	"github.com/ashureev/ajiwai-labs/internal/config"
	"github.com/ashureev/ajiwai-labs/internal/identity"
	"github.com/ashureev/ajiwai-labs/internal/llm"
	"github.com/ashureev/ajiwai-labs/internal/manual"
	"github.com/ashureev/ajiwai-labs/internal/metrics"
	"github.com/ashureev/ajiwai-labs/internal/middleware"
	"github.com/ashureev/ajiwai-labs/internal/simulator"
	"github.com/ashureev/ajiwai-labs/internal/store"
	"github.com/ashureev/ajiwai-labs/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server",
		"port", cfg.Port,
		"dev", cfg.IsDevelopment(),
		"provider", cfg.LLM.Provider,
		"model", cfg.LLM.ChatModel,
		"retrieval", cfg.Manual.Backend)

	m := metrics.New()

	// Initialize the archive.
	var repo store.Repository = store.Nop{}
	if cfg.Archive.Enabled {
		sqlite, err := store.NewSQLite(cfg.DBPath)
		if err != nil {
			slog.Error("Failed to initialize database", "error", err)
			os.Exit(1)
		}
		if err := sqlite.Ping(context.Background()); err != nil {
			slog.Error("Database health check failed", "error", err)
			os.Exit(1)
		}
		repo = sqlite
		slog.Info("Transcript archive connected", "path", cfg.DBPath)
	} else {
		slog.Info("Transcript archive disabled")
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	clients, err := llm.New(cfg.LLM, m)
	if err != nil {
		slog.Error("Failed to initialize completion provider", "error", err)
		os.Exit(1)
	}

	// The manual index is built once and shared read-only.
	buildCtx, cancelBuild := context.WithTimeout(context.Background(), 2*time.Minute)
	retriever, err := manual.Build(buildCtx, cfg.Manual, clients.Embedder)
	cancelBuild()
	if err != nil {
		slog.Error("Failed to build manual index", "error", err, "path", cfg.Manual.Path)
		os.Exit(1)
	}

	catalog, err := simulator.LoadCatalog(cfg.Simulator.ScenariosPath, cfg.Simulator.Seed)
	if err != nil {
		slog.Error("Failed to load scenario catalog", "error", err)
		os.Exit(1)
	}
	slog.Info("Scenario catalog loaded", "scenarios", catalog.Len())

	// Initialize services.
	sessions := store.NewSessionStore(cfg.Session.Capacity, cfg.Session.TTL)
	limiter := api.NewRateLimiter(cfg.RateLimit.RequestsPerWindow, cfg.RateLimit.WindowDuration)
	defer limiter.Stop()

	handler := api.NewHandler(api.Deps{
		Chat:           chat.NewService(sessions, clients.Completer, repo, m),
		Simulator:      simulator.NewService(sessions, catalog, clients.Completer, repo, m),
		Manual:         manual.NewService(retriever, clients.Completer, m),
		Archive:        repo,
		Sessions:       sessions,
		Limiter:        limiter,
		Metrics:        m,
		AllowedOrigins: cfg.AllowedOrigins(),
		IsDev:          cfg.IsDevelopment(),
	})

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(cfg.AllowedOrigins()))

	r.Handle("/metrics", m.Handler())

	r.Group(func(r chi.Router) {
		r.Use(identity.Middleware(cfg.IsDevelopment()))
		handler.RegisterRoutes(r)
	})

	// Serve embedded frontend (SPA catch-all).
	r.Handle("/*", web.SPAHandler())

	// Completions can take a while; no WriteTimeout so the WebSocket stays open.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start retention worker.
	store.StartRetentionWorker(ctx, repo, cfg.Archive.Retention, func() {
		m.SetActiveSessions(sessions.Len())
	})

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	handler.CloseConnections()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
