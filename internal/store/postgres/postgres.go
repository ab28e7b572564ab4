// Package postgres holds the PostgreSQL event and snapshot stores. They mirror
// the SQLite stores in internal/store and are selected with MEALPLAN_STORE=postgres.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultMinConns        = 2
	defaultMaxConns        = 20
	defaultMaxConnLifetime = 30 * time.Minute
	defaultMaxConnIdleTime = 5 * time.Minute
	defaultHealthCheck     = 30 * time.Second
)

// Open connects a pool and makes sure the schema exists.
func Open(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	cfg.MinConns = defaultMinConns
	cfg.MaxConns = defaultMaxConns
	cfg.MaxConnLifetime = defaultMaxConnLifetime
	cfg.MaxConnIdleTime = defaultMaxConnIdleTime
	cfg.HealthCheckPeriod = defaultHealthCheck

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

const createEventsTableSQL = `
CREATE TABLE IF NOT EXISTS mealplan_events (
  id text PRIMARY KEY,
  user_id text NOT NULL,
  stream text NOT NULL,
  seq bigint NOT NULL,
  type text NOT NULL,
  data jsonb NOT NULL DEFAULT '{}'::jsonb,
  occurred_at bigint NOT NULL,
  UNIQUE (user_id, stream, seq)
)`

const createEventsIndexSQL = `
CREATE INDEX IF NOT EXISTS mealplan_events_stream_time
ON mealplan_events (user_id, stream, occurred_at, seq)`

const createSnapshotsTableSQL = `
CREATE TABLE IF NOT EXISTS mealplan_snapshots (
  user_id text NOT NULL,
  stream text NOT NULL,
  key text NOT NULL DEFAULT 'current',
  data jsonb NOT NULL,
  updated_at timestamptz NOT NULL DEFAULT now(),
  PRIMARY KEY (user_id, stream, key)
)`

// EnsureSchema creates the tables if they do not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range []string{createEventsTableSQL, createEventsIndexSQL, createSnapshotsTableSQL} {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
