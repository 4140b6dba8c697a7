package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattjoyce/mira-bridge/internal/api"
	"github.com/mattjoyce/mira-bridge/internal/buildinfo"
	"github.com/mattjoyce/mira-bridge/internal/config"
	"github.com/mattjoyce/mira-bridge/internal/events"
	"github.com/mattjoyce/mira-bridge/internal/history"
	"github.com/mattjoyce/mira-bridge/internal/lock"
	"github.com/mattjoyce/mira-bridge/internal/log"
	"github.com/mattjoyce/mira-bridge/internal/metrics"
	"github.com/mattjoyce/mira-bridge/internal/storage"
)

// pruneInterval is how often expired history is removed.
const pruneInterval = time.Hour

func runStart(args []string) int {
	fs := flag.NewFlagSet("start", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	loaded, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	cfg := loaded.Config

	log.Setup(cfg.Service.LogLevel, cfg.Service.LogFormat)
	logger := log.WithComponent("main")
	info := buildinfo.Current()
	logger.Info("mira-bridge starting", "version", info.Version, "commit", info.Commit, "debug", info.Debug, "config_dir", cfg.ConfigDir)
	if cfg.ConfigDir == "" {
		logger.Warn("no config found, running on built-in defaults")
	}
	for _, w := range loaded.Integrity.Warnings {
		logger.Warn("config integrity", "warning", w)
	}

	lockPath := cfg.LockFile()
	pidLock, err := lock.AcquirePIDLock(lockPath)
	if err != nil {
		if errors.Is(err, lock.ErrLocked) {
			logger.Error("another instance is running", "path", lockPath, "error", err)
		} else {
			logger.Error("failed to acquire PID lock", "path", lockPath, "error", err)
		}
		return 1
	}
	defer pidLock.Release()
	logger.Info("acquired PID lock", "path", lockPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.OpenSQLite(ctx, cfg.State.Path)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.State.Path, "error", err)
		return 1
	}
	defer db.Close()
	logger.Info("database opened", "path", cfg.State.Path)

	store := history.New(db)
	comps, err := buildComponents(cfg, observers{
		hub:     events.NewHub(eventBuffer),
		metrics: metrics.New(),
		history: store,
	})
	if err != nil {
		logger.Error("failed to build bridge", "error", err)
		return 1
	}
	logger.Info("platform selected", "family", comps.family)

	go pruneHistory(ctx, store, cfg.State.HistoryRetention, logger)

	server := api.New(api.Config{
		Listen:         cfg.API.Listen,
		Tokens:         cfg.AuthTokens(),
		AllowedOrigins: cfg.API.CORS.AllowedOrigins,
		Version:        info.Version,
	}, api.Deps{
		Bridge:  comps.service,
		Window:  comps.remote,
		Events:  comps.hub,
		History: store,
		Metrics: comps.metrics.Handler(),
	}, log.WithComponent("api"))

	logger.Info("mira-bridge running (press Ctrl+C to stop)", "listen", cfg.API.Listen)
	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("api server failed", "error", err)
		return 1
	}

	logger.Info("mira-bridge stopped")
	return 0
}

// pruneHistory removes entries older than retention now and then hourly.
func pruneHistory(ctx context.Context, store *history.Store, retention time.Duration, logger *slog.Logger) {
	if retention <= 0 {
		return
	}
	prune := func() {
		n, err := store.Prune(ctx, retention)
		if err != nil {
			if ctx.Err() == nil {
				logger.Warn("history prune failed", "error", err)
			}
			return
		}
		if n > 0 {
			logger.Info("history pruned", "removed", n, "retention", retention)
		}
	}

	prune()
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prune()
		}
	}
}
