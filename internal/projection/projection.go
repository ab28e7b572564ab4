// Package projection records commands as events and keeps each user's
// "current" meal plan and grocery list snapshots in step with the event log.
//
// Every command appends one event, replays the whole stream through the
// reducer and overwrites the stored snapshot. A snapshot is therefore a pure
// function of its log: if a write after the append fails, the next command
// (or Rebuild) repairs it.
package projection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukerupert/mealplan/internal/grocery"
	"github.com/dukerupert/mealplan/internal/model"
	"github.com/dukerupert/mealplan/internal/reducer"
	"github.com/google/uuid"
)

var (
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrInvalidCommand   = errors.New("invalid command")
	ErrInvalidCount     = errors.New("count must be at least 1")
)

// EventStore is the append-only log, partitioned by user and stream.
type EventStore interface {
	Append(ctx context.Context, evt model.NewEvent) (model.Event, error)
	List(ctx context.Context, userID string, stream model.Stream, r model.TimeRange) ([]model.Event, error)
}

// SnapshotStore holds one encoded snapshot per user and stream. Get returns
// nil when nothing was stored yet.
type SnapshotStore interface {
	Put(ctx context.Context, userID string, stream model.Stream, data json.RawMessage) error
	Get(ctx context.Context, userID string, stream model.Stream) (json.RawMessage, error)
}

// Notifier is told about every event whose snapshot was written.
type Notifier interface {
	Recorded(ctx context.Context, evt model.Event) error
}

type Service struct {
	Events    EventStore
	Snapshots SnapshotStore
	Generator *grocery.Generator
	Notifiers []Notifier
	NewID     func() string
	Logger    *slog.Logger
}

func NewService(events EventStore, snapshots SnapshotStore, generator *grocery.Generator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		Events:    events,
		Snapshots: snapshots,
		Generator: generator,
		NewID:     uuid.NewString,
		Logger:    logger.With("component", "projection"),
	}
}

// Subscribe adds n to the notifiers called after each recorded event.
func (s *Service) Subscribe(n Notifier) {
	s.Notifiers = append(s.Notifiers, n)
}

// RecordMealPlanEvent appends an event to the user's meal plan stream and
// returns the re-projected plan.
func (s *Service) RecordMealPlanEvent(ctx context.Context, userID string, typ model.EventType, payload any) (model.MealPlan, error) {
	evt, err := s.append(ctx, userID, model.StreamMealPlan, typ, payload)
	if err != nil {
		return model.MealPlan{}, err
	}
	plan, err := project(ctx, s, userID, model.StreamMealPlan, reducer.MealPlan)
	if err != nil {
		return model.MealPlan{}, err
	}
	s.notify(ctx, evt)
	return plan, nil
}

// RecordGroceryListEvent appends an event to the user's grocery list stream
// and returns the re-projected list.
func (s *Service) RecordGroceryListEvent(ctx context.Context, userID string, typ model.EventType, payload any) (model.GroceryList, error) {
	evt, err := s.append(ctx, userID, model.StreamGroceryList, typ, payload)
	if err != nil {
		return model.GroceryList{}, err
	}
	list, err := project(ctx, s, userID, model.StreamGroceryList, reducer.GroceryList)
	if err != nil {
		return model.GroceryList{}, err
	}
	s.notify(ctx, evt)
	return list, nil
}

// MealPlan returns the stored snapshot, projecting it from the log when
// none exists yet. It never reports "absent": a user without events gets an
// empty plan.
func (s *Service) MealPlan(ctx context.Context, userID string) (model.MealPlan, error) {
	return current(ctx, s, userID, model.StreamMealPlan, reducer.MealPlan)
}

// GroceryList is MealPlan for the grocery list stream.
func (s *Service) GroceryList(ctx context.Context, userID string) (model.GroceryList, error) {
	return current(ctx, s, userID, model.StreamGroceryList, reducer.GroceryList)
}

// Rebuild replays the full stream and overwrites the stored snapshot.
func (s *Service) Rebuild(ctx context.Context, userID string, stream model.Stream) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	var err error
	switch stream {
	case model.StreamMealPlan:
		_, err = project(ctx, s, userID, stream, reducer.MealPlan)
	case model.StreamGroceryList:
		_, err = project(ctx, s, userID, stream, reducer.GroceryList)
	default:
		return fmt.Errorf("%w: unknown stream %q", ErrInvalidCommand, stream)
	}
	if err != nil {
		return err
	}
	s.Logger.Info("snapshot rebuilt", "user_id", userID, "stream", stream)
	return nil
}

// History returns the raw events of a stream within r.
func (s *Service) History(ctx context.Context, userID string, stream model.Stream, r model.TimeRange) ([]model.Event, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if !stream.Valid() {
		return nil, fmt.Errorf("%w: unknown stream %q", ErrInvalidCommand, stream)
	}
	events, err := s.Events.List(ctx, userID, stream, r)
	if err != nil {
		return nil, fmt.Errorf("list events: %w: %w", ErrStoreUnavailable, err)
	}
	return events, nil
}

func (s *Service) append(ctx context.Context, userID string, stream model.Stream, typ model.EventType, payload any) (model.Event, error) {
	if userID == "" {
		return model.Event{}, ErrNotAuthenticated
	}
	var data json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return model.Event{}, fmt.Errorf("%w: encode payload: %w", ErrInvalidCommand, err)
		}
		data = b
	}
	evt, err := s.Events.Append(ctx, model.NewEvent{UserID: userID, Stream: stream, Type: typ, Data: data})
	if err != nil {
		return model.Event{}, fmt.Errorf("append event: %w: %w", ErrStoreUnavailable, err)
	}
	s.Logger.Debug("event recorded", "user_id", userID, "stream", stream, "type", typ, "seq", evt.Seq)
	return evt, nil
}

// project replays the stream through fold and stores the result.
func project[T any](ctx context.Context, s *Service, userID string, stream model.Stream, fold func(string, []model.Event) T) (T, error) {
	var zero T
	events, err := s.Events.List(ctx, userID, stream, model.TimeRange{})
	if err != nil {
		return zero, fmt.Errorf("list events: %w: %w", ErrStoreUnavailable, err)
	}
	snap := fold(userID, events)
	data, err := json.Marshal(snap)
	if err != nil {
		return zero, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.Snapshots.Put(ctx, userID, stream, data); err != nil {
		s.Logger.Error("snapshot write failed", "user_id", userID, "stream", stream, "error", err)
		return zero, fmt.Errorf("put snapshot: %w: %w", ErrStoreUnavailable, err)
	}
	return snap, nil
}

func current[T any](ctx context.Context, s *Service, userID string, stream model.Stream, fold func(string, []model.Event) T) (T, error) {
	var zero T
	if userID == "" {
		return zero, ErrNotAuthenticated
	}
	data, err := s.Snapshots.Get(ctx, userID, stream)
	if err != nil {
		return zero, fmt.Errorf("get snapshot: %w: %w", ErrStoreUnavailable, err)
	}
	if data != nil {
		var snap T
		if err := json.Unmarshal(data, &snap); err == nil {
			return snap, nil
		}
		s.Logger.Warn("stored snapshot unreadable, replaying", "user_id", userID, "stream", stream)
	}
	return project(ctx, s, userID, stream, fold)
}

// notify runs after the snapshot is stored, so failures are only logged.
func (s *Service) notify(ctx context.Context, evt model.Event) {
	for _, n := range s.Notifiers {
		if err := n.Recorded(ctx, evt); err != nil {
			s.Logger.Warn("notify failed", "event_id", evt.ID, "stream", evt.Stream, "error", err)
		}
	}
}
