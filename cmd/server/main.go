package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/gridcheck/internal/config"
	"github.com/JonMunkholm/gridcheck/internal/core"
	_ "github.com/JonMunkholm/gridcheck/internal/core/tables" // Register built-in grids
	"github.com/JonMunkholm/gridcheck/internal/logging"
	"github.com/JonMunkholm/gridcheck/internal/metrics"
	"github.com/JonMunkholm/gridcheck/internal/schema"
	"github.com/JonMunkholm/gridcheck/internal/web"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"max_concurrent_runs", cfg.Validation.MaxConcurrent,
		"schema_dir", cfg.Schema.Dir,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	collector := metrics.NewCollector(&cfg.Metrics, nil)

	service := core.NewService(core.ServiceOptions{
		MaxConcurrent: cfg.Validation.MaxConcurrent,
		MaxWait:       cfg.Validation.MaxWaitTime,
		RunTimeout:    cfg.Validation.RunTimeout,
		MaxRows:       cfg.Validation.MaxRows,
		SessionTTL:    cfg.Validation.SessionTTL,
		MaxSessions:   cfg.Validation.MaxSessions,
		Observer:      collector,
	})

	// Context for background jobs (schema watcher)
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()

	opts := web.Options{Metrics: collector.Handler()}

	var watcher *schema.Watcher
	if cfg.Schema.Dir != "" {
		loader := schema.NewLoader(cfg.Schema.Dir, cfg.Schema.Extensions, slog.Default())
		onReload := func(_ schema.LoadResult, err error) {
			collector.ObserveSchemaReload(err, core.GridCount())
		}

		// A broken file is logged and skipped; the rest of the directory loads.
		res, err := loader.Load()
		if err != nil {
			slog.Error("schema load failed", "dir", cfg.Schema.Dir, "error", err)
		}
		onReload(res, err)
		slog.Info("schemas loaded", "files", res.Files, "grids", res.Grids)

		opts.Schemas = loader
		opts.OnReload = onReload

		if cfg.Schema.Watch {
			watcher, err = schema.NewWatcher(loader, cfg.Schema.Debounce, onReload, slog.Default())
			if err != nil {
				slog.Error("failed to create schema watcher", "error", err)
				os.Exit(1)
			}
			go func() {
				if err := watcher.Watch(jobCtx); err != nil {
					slog.Error("schema watcher exited", "error", err)
				}
			}()
		}
	} else {
		collector.ObserveSchemaReload(nil, core.GridCount())
	}

	slog.Info("grids registered", "count", core.GridCount())
	for _, g := range core.All() {
		slog.Debug("grid", "key", g.Key, "columns", len(g.Columns))
	}

	server := web.NewServer(service, cfg, opts)

	// Graceful shutdown
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		if watcher != nil {
			if err := watcher.Stop(); err != nil {
				slog.Warn("schema watcher stop failed", "error", err)
			}
		}
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		// Wait for in-flight validation runs
		if status := service.Status(); status.Active > 0 {
			slog.Info("waiting for validation runs to complete", "active", status.Active)
		}
		if err := service.Shutdown(shutdownCtx); err != nil {
			slog.Warn("validation runs did not complete in time", "error", err)
		}
	}()

	if err := server.Start(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-shutdownDone
	slog.Info("server stopped")
}
