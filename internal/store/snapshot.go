package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dukerupert/mealplan/internal/model"
)

const currentKey = "current"

// SnapshotStore keeps one "current" snapshot per user and stream as JSON.
type SnapshotStore struct {
	db  *sql.DB
	Now func() time.Time
}

func NewSnapshotStore(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db, Now: time.Now}
}

// Put replaces the current snapshot.
func (s *SnapshotStore) Put(ctx context.Context, userID string, stream model.Stream, data json.RawMessage) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (user_id, stream, key, data, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, stream, key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		userID, stream, currentKey, string(data), s.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put snapshot: %w", err)
	}
	return nil
}

// Get returns the current snapshot, or nil if none was written yet.
func (s *SnapshotStore) Get(ctx context.Context, userID string, stream model.Stream) (json.RawMessage, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM snapshots WHERE user_id = ? AND stream = ? AND key = ?`,
		userID, stream, currentKey,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return json.RawMessage(data), nil
}
