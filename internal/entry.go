// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/nibi/internal/api"
	"github.com/starford/nibi/internal/index"
	"github.com/starford/nibi/internal/ingot"
	"github.com/starford/nibi/internal/ingotservice"
	"github.com/starford/nibi/internal/mcpserver"
	"github.com/starford/nibi/internal/render"
	"github.com/starford/nibi/internal/sse"
	"github.com/starford/nibi/internal/storage"
	"github.com/starford/nibi/internal/taxonomy"
)

// Core holds the components every command shares.
type Core struct {
	Config  *Config
	Logger  *slog.Logger
	Store   *storage.FS
	DB      *index.DB
	Indexer *index.Indexer
	Service *ingotservice.Service
}

// Close releases the database.
func (c *Core) Close() error {
	return c.DB.Close()
}

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev", logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// newLogger builds the structured JSON logger and makes it the default.
func newLogger(cfg *Config, w io.Writer) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// NewCore opens storage, the taxonomy and the index described by cfg.
func NewCore(cfg *Config, logger *slog.Logger) (*Core, error) {
	root := cfg.Project.IngotsPath()
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create ingots dir: %w", err)
	}

	store, err := storage.NewFS(root)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	tax, err := taxonomy.LoadFiles(cfg.Project.CategoriesPath(), cfg.Project.TagsPath())
	if err != nil {
		return nil, fmt.Errorf("load taxonomy: %w", err)
	}
	logger.Info("Taxonomy loaded",
		slog.Int("categories", len(tax.Categories())),
		slog.Int("tags", len(tax.Tags())))

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	ix := index.NewIndexer(db, store,
		index.WithTaxonomy(tax),
		index.WithParseOptions(append(cfg.Parse.ParseOptions(), ingot.WithLogger(logger))...),
		index.WithWorkers(cfg.Parse.Workers),
		index.WithLogger(logger),
	)

	var renderOpts []render.Option
	if cfg.Parse.UnsafeHTML {
		renderOpts = append(renderOpts, render.WithUnsafeHTML())
	}
	if cfg.Parse.HardWraps {
		renderOpts = append(renderOpts, render.WithHardWraps())
	}

	return &Core{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		DB:      db,
		Indexer: ix,
		Service: ingotservice.NewService(store, ix, render.New(renderOpts...)),
	}, nil
}

// Build syncs the project into the index once and returns the summary.
func Build(ctx context.Context, opts ...Option) (index.SyncStats, error) {
	app, err := newApplication(opts)
	if err != nil {
		return index.SyncStats{}, err
	}
	logger := newLogger(app.config, app.logOutput)

	core, err := NewCore(app.config, logger)
	if err != nil {
		return index.SyncStats{}, err
	}
	defer core.Close()

	start := time.Now()
	stats, err := core.Indexer.Sync(ctx)
	if err != nil {
		return stats, fmt.Errorf("sync: %w", err)
	}
	logger.Info("Build finished",
		slog.Int("indexed", stats.Indexed),
		slog.Int("unchanged", stats.Unchanged),
		slog.Int("removed", stats.Removed),
		slog.Int("failed", stats.Failed),
		slog.Duration("took", time.Since(start)))
	return stats, nil
}

// ServeMCP syncs the index and serves the MCP tools over stdio.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	logger := newLogger(app.config, app.logOutput)

	core, err := NewCore(app.config, logger)
	if err != nil {
		return err
	}
	defer core.Close()

	if _, err := core.Indexer.Sync(ctx); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}
	return mcpserver.New(core.Service, app.version).ServeStdio()
}

// Run starts the HTTP server and the file watcher with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := newLogger(cfg, app.logOutput)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("ingots_path", cfg.Project.IngotsPath()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	core, err := NewCore(cfg, logger)
	if err != nil {
		return err
	}
	defer core.Close()

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	stats, err := core.Indexer.Sync(ctx)
	if err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	} else {
		broker.Publish(sse.Event{Type: sse.TypeBuildDone, Data: stats})
	}

	apiRouter := api.NewRouter(core.Service, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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
		if err := core.DB.Ping(); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := core.Indexer.Watch(gCtx, cfg.Project.IngotsPath(), broker.PublishIngotEvent)
		if err != nil {
			logger.Error("watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

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
		defer signal.Stop(quit)

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
		return context.Canceled
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
