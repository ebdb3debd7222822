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

	"github.com/starford/chroniclelens/internal/api"
	"github.com/starford/chroniclelens/internal/journal"
	"github.com/starford/chroniclelens/internal/mcpserver"
	"github.com/starford/chroniclelens/internal/sse"
	pkgconfig "github.com/starford/chroniclelens/pkg/config"
)

// stateThrottle bounds how often state.updated frames are streamed.
const stateThrottle = 100 * time.Millisecond

// runtime is what both surfaces share: the logger, its live level and the
// journal store.
type runtime struct {
	cfg    *Config
	logger *slog.Logger
	level  *slog.LevelVar
	store  *journal.Store
}

func newRuntime(app *application) (*runtime, error) {
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	out := app.logOutput
	if out == nil {
		out = os.Stdout
	}

	// Initialize structured JSON logger.
	level := &slog.LevelVar{}
	level.Set(cfg.App.LogLevel)
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("add_latency", cfg.Journal.AddLatency.String()),
		slog.String("placement", cfg.Journal.Placement),
		slog.String("seed", cfg.Journal.Seed),
		slog.String("log_level", cfg.App.LogLevel.String()))

	opts, err := cfg.Journal.StoreOptions(time.Now())
	if err != nil {
		return nil, fmt.Errorf("init journal: %w", err)
	}
	opts = append(opts, journal.WithLogger(logger))

	return &runtime{
		cfg:    cfg,
		logger: logger,
		level:  level,
		store:  journal.New(opts...),
	}, nil
}

// apply pushes the reloadable settings of a freshly loaded config into the
// running process.
func (rt *runtime) apply(next *Config) {
	rt.level.Set(next.App.LogLevel)
	rt.store.SetLatency(next.Journal.AddLatency)

	if next.App.HTTP.Port != rt.cfg.App.HTTP.Port ||
		next.Journal.Placement != rt.cfg.Journal.Placement ||
		next.Journal.Seed != rt.cfg.Journal.Seed ||
		next.Journal.EffectBuffer != rt.cfg.Journal.EffectBuffer {
		rt.logger.Warn("config reload: only log_level and add_latency apply without a restart")
	}
	rt.logger.Info("config reload applied",
		slog.String("log_level", next.App.LogLevel.String()),
		slog.String("add_latency", next.Journal.AddLatency.String()))
}

// watchConfig runs the config watcher when a config path is known. Watcher
// failures are logged and never stop the application.
func (rt *runtime) watchConfig(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		rt.logger.Warn("config watcher disabled", slog.String("path", path), slog.String("error", err.Error()))
		return nil
	}
	if err := pkgconfig.Watch(ctx, path, NewDefaultConfig, rt.logger, rt.apply); err != nil {
		rt.logger.Warn("config watcher failed", slog.String("path", path), slog.String("error", err.Error()))
	}
	return nil
}

// Run starts the HTTP application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	rt, err := newRuntime(app)
	if err != nil {
		return err
	}
	defer rt.store.Close()

	cfg := rt.cfg
	logger := rt.logger

	// SSE broker fed by store subscriptions.
	broker := sse.NewBroker(stateThrottle)
	defer broker.Close()
	unsubscribe := rt.store.Subscribe(func(st journal.State) {
		broker.PublishState(api.NewStateResponse(st))
	})
	defer unsubscribe()

	apiRouter := api.NewRouter(rt.store, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints.
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
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the config file for live-reloadable settings.
	g.Go(func() error {
		return rt.watchConfig(gCtx, app.configPath)
	})

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
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Ending the streams first lets Shutdown drain the remaining requests.
		rt.store.Close()
		broker.Shutdown("server stopping")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown ends the errgroup so the config watcher stops with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the journal store over MCP on stdin/stdout. Logs go to the
// configured log output, which must not be stdout.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := &application{logOutput: os.Stderr}

	for _, opt := range opts {
		opt(app)
	}

	rt, err := newRuntime(app)
	if err != nil {
		return err
	}
	defer rt.store.Close()

	version := app.version
	if version == "" {
		version = "dev"
	}
	srv := mcpserver.New(rt.store, version)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return rt.watchConfig(gCtx, app.configPath)
	})

	g.Go(func() error {
		rt.logger.Info("MCP server starting on stdio")
		if err := srv.ServeStdio(); err != nil {
			return fmt.Errorf("MCP server error: %w", err)
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		rt.logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	rt.logger.Info("MCP server stopped")
	return nil
}
