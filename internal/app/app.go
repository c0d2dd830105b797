// Package app initializes and holds long-lived application services, acting
// as a dependency injection container for the commands.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/frontierlabs/itemwatch/internal/config"
	"github.com/frontierlabs/itemwatch/internal/logging"
	"github.com/frontierlabs/itemwatch/internal/metrics"
	"github.com/frontierlabs/itemwatch/internal/state"
)

// App holds the shared services a command needs: the run-scoped logger and
// the checkpoint store. It is built once at startup and closed by a Cobra
// hook after the command finishes.
type App struct {
	Cfg    config.Config
	Logger *zap.Logger
	RunID  string
	Store  state.Store

	pool *pgxpool.Pool
}

// New initializes the services described by cfg, failing fast when a
// critical one cannot be built.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logger, runID := logging.WithRunID(logger)
	metrics.Init()

	a := &App{Cfg: cfg, Logger: logger, RunID: runID}

	switch cfg.State.Backend {
	case "file":
		store, err := state.NewFileStore(cfg.State.Dir)
		if err != nil {
			return nil, fmt.Errorf("init file state store: %w", err)
		}
		logger.Info("using file checkpoint store", zap.String("path", store.Path()))
		a.Store = store
	case "postgres":
		pool, err := state.Connect(ctx, cfg.State.DSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		store, err := state.NewPostgresStore(pool, cfg.State.Watcher)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("init postgres state store: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ensure checkpoint schema: %w", err)
		}
		logger.Info("using postgres checkpoint store", zap.String("watcher", cfg.State.Watcher))
		a.pool = pool
		a.Store = store
	default:
		return nil, fmt.Errorf("unknown state backend: %s", cfg.State.Backend)
	}

	return a, nil
}

// Close shuts down the services in the container. Called by a Cobra hook
// after the command finishes execution.
func (a *App) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
	// Best effort: stderr sync fails on some platforms.
	_ = a.Logger.Sync()
}
