package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dukerupert/mealplan/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const lockStreamSQL = `SELECT pg_advisory_xact_lock(hashtext($1::text || '/' || $2::text))`

const streamHeadSQL = `
SELECT COALESCE(MAX(seq), 0), COALESCE(MAX(occurred_at), 0)
FROM mealplan_events WHERE user_id = $1 AND stream = $2`

const insertEventSQL = `
INSERT INTO mealplan_events (id, user_id, stream, seq, type, data, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

// EventStore is the PostgreSQL event log. Appends to one stream are
// serialized with a transaction-scoped advisory lock.
type EventStore struct {
	Pool  *pgxpool.Pool
	NewID func() string
	Now   func() time.Time
}

func NewEventStore(pool *pgxpool.Pool) *EventStore {
	return &EventStore{Pool: pool, NewID: uuid.NewString, Now: time.Now}
}

func (s *EventStore) Append(ctx context.Context, evt model.NewEvent) (model.Event, error) {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return model.Event{}, fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, lockStreamSQL, evt.UserID, string(evt.Stream)); err != nil {
		return model.Event{}, fmt.Errorf("lock stream: %w", err)
	}

	var lastSeq, lastAt int64
	if err := tx.QueryRow(ctx, streamHeadSQL, evt.UserID, string(evt.Stream)).Scan(&lastSeq, &lastAt); err != nil {
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

	if _, err := tx.Exec(ctx, insertEventSQL,
		stored.ID, stored.UserID, string(stored.Stream), stored.Seq, string(stored.Type), string(stored.Data), at,
	); err != nil {
		return model.Event{}, fmt.Errorf("insert event: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Event{}, fmt.Errorf("commit append: %w", err)
	}
	return stored, nil
}

func (s *EventStore) List(ctx context.Context, userID string, stream model.Stream, r model.TimeRange) ([]model.Event, error) {
	where := []string{"user_id = $1", "stream = $2"}
	args := []any{userID, string(stream)}
	if !r.Since.IsZero() {
		args = append(args, r.Since.UnixMilli())
		where = append(where, "occurred_at >= $"+strconv.Itoa(len(args)))
	}
	if !r.Until.IsZero() {
		args = append(args, r.Until.UnixMilli())
		where = append(where, "occurred_at <= $"+strconv.Itoa(len(args)))
	}

	rows, err := s.Pool.Query(ctx,
		`SELECT id, user_id, stream, seq, type, data::text, occurred_at FROM mealplan_events
		 WHERE `+strings.Join(where, " AND ")+` ORDER BY occurred_at ASC, seq ASC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		var (
			e          model.Event
			stream     string
			typ        string
			data       string
			occurredAt int64
		)
		if err := rows.Scan(&e.ID, &e.UserID, &stream, &e.Seq, &typ, &data, &occurredAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Stream = model.Stream(stream)
		e.Type = model.EventType(typ)
		e.Data = json.RawMessage(data)
		e.Timestamp = time.UnixMilli(occurredAt).UTC()
		events = append(events, e)
	}
	return events, rows.Err()
}
