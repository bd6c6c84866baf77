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
	"golang.org/x/sync/errgroup"

	"github.com/starford/ansuz/internal/analysis"
	"github.com/starford/ansuz/internal/api"
	"github.com/starford/ansuz/internal/importer"
	"github.com/starford/ansuz/internal/library"
	"github.com/starford/ansuz/internal/mcpserver"
	"github.com/starford/ansuz/internal/sse"
	"github.com/starford/ansuz/internal/store"
	pkgconfig "github.com/starford/ansuz/pkg/config"
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
		slog.String("library_path", cfg.Library.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("analysis_mode", cfg.Analysis.Mode),
		slog.String("log_level", cfg.App.LogLevel.String()))

	db, lib, imp, err := buildCore(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	imp.SetNotify(broker.PublishPacketEvent)

	// Build API handler and router.
	handler := api.NewHandler(db, imp, lib, broker)
	apiRouter := api.NewRouter(handler, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

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

	g, gCtx := errgroup.WithContext(ctx)

	// Start inbox watcher when an inbox directory is configured.
	if cfg.Library.InboxPath != "" {
		if err := os.MkdirAll(cfg.Library.InboxPath, 0o755); err != nil {
			return fmt.Errorf("create inbox dir: %w", err)
		}
		g.Go(func() error {
			if err := importer.Watch(gCtx, imp, cfg.Library.InboxPath, logger); err != nil {
				logger.Error("inbox watcher stopped", slog.String("error", err.Error()))
			}
			return nil
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

// RunMCP starts the MCP server on stdio with the given options.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Log to stderr: stdout carries the MCP protocol.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	db, _, imp, err := buildCore(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	logger.Info("Starting MCP server on stdio")
	return mcpserver.New(db, imp).ServeStdio()
}

// buildCore wires the store, library, analysis chain, and importer shared by
// the HTTP and MCP entry points.
func buildCore(cfg *Config, logger *slog.Logger) (*store.DB, *library.Library, *importer.Service, error) {
	if err := os.MkdirAll(cfg.Library.Path, 0o755); err != nil {
		return nil, nil, nil, fmt.Errorf("create library dir: %w", err)
	}

	lib, err := library.New(cfg.Library.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init library: %w", err)
	}

	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init store: %w", err)
	}

	var analyzer importer.Analyzer
	mode := importer.Mode(cfg.Analysis.Mode)
	if mode == importer.ModeAuto {
		analyzer = buildAnalyzer(cfg, logger)
	}

	imp := importer.New(db, lib, analyzer, mode, logger)
	return db, lib, imp, nil
}

// buildAnalyzer assembles the backend chain: remote first, keyword fallback
// second. The router tries them in order.
func buildAnalyzer(cfg *Config, logger *slog.Logger) importer.Analyzer {
	timeout := time.Duration(cfg.Analysis.TimeoutSeconds) * time.Second
	remote := analysis.NewRemote(analysis.RemoteConfig{
		APIKeyEnv: cfg.Analysis.APIKeyEnv,
		APIKey:    cfg.Analysis.APIKey,
		BaseURL:   cfg.Analysis.BaseURL,
		Model:     cfg.Analysis.Model,
		Timeout:   timeout,
	})

	table := analysis.DefaultKeywordTable()
	if cfg.Analysis.KeywordTable != "" {
		var loaded analysis.KeywordTable
		if err := pkgconfig.Load(cfg.Analysis.KeywordTable, &loaded); err != nil {
			logger.Warn("keyword table load failed, using built-in table",
				slog.String("path", cfg.Analysis.KeywordTable),
				slog.String("error", err.Error()))
		} else if !loaded.Empty() {
			table = loaded
		}
	}
	fallback := analysis.NewFallback(table, 0)

	return analysis.NewRouter(logger, remote, fallback)
}
