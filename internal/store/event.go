package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/mealplan/internal/model"
	"github.com/google/uuid"
)

// EventStore is the append-only event log. Each (user, stream) pair has its
// own sequence starting at 1.
type EventStore struct {
	db    *sql.DB
	NewID func() string
	Now   func() time.Time
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db, NewID: uuid.NewString, Now: time.Now}
}

func scanEvent(scanner interface{ Scan(...any) error }) (*model.Event, error) {
	var e model.Event
	var data string
	var occurredAt int64
	err := scanner.Scan(&e.ID, &e.UserID, &e.Stream, &e.Seq, &e.Type, &data, &occurredAt)
	if err != nil {
		return nil, err
	}
	e.Data = json.RawMessage(data)
	e.Timestamp = time.UnixMilli(occurredAt).UTC()
	return &e, nil
}

const eventCols = `id, user_id, stream, seq, type, data, occurred_at`

// Append stores evt and returns the stored record. The timestamp is never
// earlier than the stream's previous event, so timestamp order and sequence
// order agree.
func (s *EventStore) Append(ctx context.Context, evt model.NewEvent) (model.Event, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Event{}, fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	var lastSeq, lastAt int64
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0), COALESCE(MAX(occurred_at), 0) FROM events WHERE user_id = ? AND stream = ?`,
		evt.UserID, evt.Stream,
	).Scan(&lastSeq, &lastAt)
	if err != nil {
		return model.Event{}, fmt.Errorf("read stream head: %w", err)
	}

	at := s.Now().UTC().UnixMilli()
	if at < lastAt {
		at = lastAt
	}
	data := evt.Data
	if len(data) == 0 {
		data = json.RawMessage(`{}`)
	}

	stored := model.Event{
		ID:        s.NewID(),
		Stream:    evt.Stream,
		Type:      evt.Type,
		UserID:    evt.UserID,
		Seq:       lastSeq + 1,
		Timestamp: time.UnixMilli(at).UTC(),
		Data:      data,
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO events (`+eventCols+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		stored.ID, stored.UserID, stored.Stream, stored.Seq, stored.Type, string(stored.Data), at,
	)
	if err != nil {
		return model.Event{}, fmt.Errorf("insert event: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.Event{}, fmt.Errorf("commit append: %w", err)
	}
	return stored, nil
}

// List returns the stream's events in replay order.
func (s *EventStore) List(ctx context.Context, userID string, stream model.Stream, r model.TimeRange) ([]model.Event, error) {
	where := []string{"user_id = ?", "stream = ?"}
	args := []any{userID, stream}
	if !r.Since.IsZero() {
		where = append(where, "occurred_at >= ?")
		args = append(args, r.Since.UnixMilli())
	}
	if !r.Until.IsZero() {
		where = append(where, "occurred_at <= ?")
		args = append(args, r.Until.UnixMilli())
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+eventCols+` FROM events WHERE `+strings.Join(where, " AND ")+` ORDER BY occurred_at ASC, seq ASC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// Count returns the total number of stored events across all users.
func (s *EventStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}
