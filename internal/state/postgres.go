package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/frontierlabs/itemwatch/internal/item"
)

// PgxPool is the slice of *pgxpool.Pool the store needs; pgxmock satisfies
// it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps the checkpoint in a single row keyed by watcher name,
// for deployments that already run Postgres and want the checkpoint visible
// to the rest of the stack.
type PostgresStore struct {
	pool    PgxPool
	watcher string
}

// NewPostgresStore constructs a PostgresStore over an open pool.
func NewPostgresStore(pool PgxPool, watcher string) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgx pool is required")
	}
	if watcher == "" {
		return nil, fmt.Errorf("watcher name is required")
	}
	return &PostgresStore{pool: pool, watcher: watcher}, nil
}

// Connect opens a pgx pool for the given DSN.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return pool, nil
}

// EnsureSchema creates the checkpoint table when absent.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS frontier_checkpoints (
			watcher    text PRIMARY KEY,
			frontier   bigint NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("ensure checkpoint schema: %w", err)
	}
	return nil
}

// Load returns the persisted frontier for this watcher.
func (s *PostgresStore) Load(ctx context.Context) (item.ID, error) {
	var frontier int64
	err := s.pool.QueryRow(ctx,
		`SELECT frontier FROM frontier_checkpoints WHERE watcher = $1`,
		s.watcher,
	).Scan(&frontier)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("load checkpoint: %w", err)
	}
	if frontier < 0 {
		return 0, fmt.Errorf("corrupt checkpoint: negative frontier %d", frontier)
	}
	return item.ID(frontier), nil
}

// Save upserts the frontier for this watcher.
func (s *PostgresStore) Save(ctx context.Context, id item.ID) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO frontier_checkpoints (watcher, frontier, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (watcher) DO UPDATE
		SET frontier = EXCLUDED.frontier, updated_at = now()`,
		s.watcher, int64(id),
	)
	if err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}
