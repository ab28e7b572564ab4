package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dukerupert/mealplan/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const upsertSnapshotSQL = `
INSERT INTO mealplan_snapshots (user_id, stream, key, data, updated_at)
VALUES ($1, $2, 'current', $3, now())
ON CONFLICT (user_id, stream, key) DO UPDATE
SET data = EXCLUDED.data, updated_at = now()`

const selectSnapshotSQL = `
SELECT data::text FROM mealplan_snapshots
WHERE user_id = $1 AND stream = $2 AND key = 'current'`

type SnapshotStore struct {
	Pool *pgxpool.Pool
}

func NewSnapshotStore(pool *pgxpool.Pool) *SnapshotStore {
	return &SnapshotStore{Pool: pool}
}

func (s *SnapshotStore) Put(ctx context.Context, userID string, stream model.Stream, data json.RawMessage) error {
	if _, err := s.Pool.Exec(ctx, upsertSnapshotSQL, userID, string(stream), string(data)); err != nil {
		return fmt.Errorf("put snapshot: %w", err)
	}
	return nil
}

// Get returns nil when no snapshot was written yet.
func (s *SnapshotStore) Get(ctx context.Context, userID string, stream model.Stream) (json.RawMessage, error) {
	var data string
	err := s.Pool.QueryRow(ctx, selectSnapshotSQL, userID, string(stream)).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return json.RawMessage(data), nil
}
