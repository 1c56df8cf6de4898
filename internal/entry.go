// Package internal provides the main application initialization and runtime logic.
package internal

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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/bytebender77/MindMate/internal/api"
	"github.com/bytebender77/MindMate/internal/journal"
	"github.com/bytebender77/MindMate/internal/remote"
	"github.com/bytebender77/MindMate/internal/settings"
	"github.com/bytebender77/MindMate/internal/snapshot"
	"github.com/bytebender77/MindMate/internal/sse"
	pkgconfig "github.com/bytebender77/MindMate/pkg/config"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("analysis_url", cfg.Remote.BaseURL),
		slog.String("snapshot_path", cfg.Snapshot.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	loc, err := cfg.Journal.Location()
	if err != nil {
		return fmt.Errorf("resolve timezone: %w", err)
	}

	// Offline snapshot store (optional).
	var snap *snapshot.Store
	if cfg.Snapshot.Path != "" {
		snap, err = snapshot.Open(cfg.Snapshot.Path)
		if err != nil {
			return fmt.Errorf("open snapshot: %w", err)
		}
		defer snap.Close()
	}

	// Analysis service client and domain services.
	client := remote.New(cfg.Remote.BaseURL, &http.Client{Timeout: cfg.Remote.Timeout()})
	jsvc := journal.NewService(client, snap, cfg.Journal.AuthorID, loc)
	ssvc := settings.NewService(client)

	// Apply the configured provider at startup. Best effort: the analysis
	// service may still be coming up.
	applyProvider(ctx, ssvc, cfg.Remote.Provider, logger)

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)

	// Build API handler and router.
	h := api.NewHandler(jsvc, ssvc, client, broker, cfg.Journal.HistoryLimit)
	apiRouter := api.NewRouter(h, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.Origins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the config file for provider changes.
	if app.configPath != "" {
		configPath := app.configPath
		g.Go(func() error {
			return settings.Watch(gCtx, configPath, logger, func() {
				fresh := NewDefaultConfig()
				if loadErr := pkgconfig.Load(configPath, fresh); loadErr != nil {
					logger.Warn("config reload failed", slog.String("error", loadErr.Error()))
					return
				}
				applyProvider(gCtx, ssvc, fresh.Remote.Provider, logger)
			})
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		broker.Close()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

func applyProvider(ctx context.Context, ssvc *settings.Service, provider string, logger *slog.Logger) {
	if provider == "" {
		return
	}
	applyCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := ssvc.Switch(applyCtx, provider); err != nil {
		logger.Warn("apply provider failed",
			slog.String("provider", provider),
			slog.String("error", err.Error()))
		return
	}
	logger.Info("classification provider applied", slog.String("provider", provider))
}
