package projection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dukerupert/mealplan/internal/model"
)

var errDown = errors.New("connection refused")

type memEvents struct {
	events     []model.Event
	now        time.Time
	failAppend bool
	failList   bool
}

func (m *memEvents) Append(_ context.Context, ne model.NewEvent) (model.Event, error) {
	if m.failAppend {
		return model.Event{}, errDown
	}
	var seq int64
	for _, e := range m.events {
		if e.UserID == ne.UserID && e.Stream == ne.Stream {
			seq = e.Seq
		}
	}
	m.now = m.now.Add(time.Second)
	evt := model.Event{
		ID:        fmt.Sprintf("evt-%d", len(m.events)+1),
		Stream:    ne.Stream,
		Type:      ne.Type,
		UserID:    ne.UserID,
		Seq:       seq + 1,
		Timestamp: m.now,
		Data:      ne.Data,
	}
	m.events = append(m.events, evt)
	return evt, nil
}

func (m *memEvents) List(_ context.Context, userID string, stream model.Stream, r model.TimeRange) ([]model.Event, error) {
	if m.failList {
		return nil, errDown
	}
	out := []model.Event{}
	for _, e := range m.events {
		if e.UserID == userID && e.Stream == stream && r.Contains(e.Timestamp) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memEvents) count(userID string, stream model.Stream) int {
	n := 0
	for _, e := range m.events {
		if e.UserID == userID && e.Stream == stream {
			n++
		}
	}
	return n
}

type memSnapshots struct {
	data     map[string]json.RawMessage
	failPuts int
	failGet  bool
}

func newMemSnapshots() *memSnapshots {
	return &memSnapshots{data: make(map[string]json.RawMessage)}
}

func (m *memSnapshots) key(userID string, stream model.Stream) string {
	return userID + "/" + string(stream)
}

func (m *memSnapshots) Put(_ context.Context, userID string, stream model.Stream, data json.RawMessage) error {
	if m.failPuts > 0 {
		m.failPuts--
		return errDown
	}
	m.data[m.key(userID, stream)] = append(json.RawMessage(nil), data...)
	return nil
}

func (m *memSnapshots) Get(_ context.Context, userID string, stream model.Stream) (json.RawMessage, error) {
	if m.failGet {
		return nil, errDown
	}
	return m.data[m.key(userID, stream)], nil
}

type recordingNotifier struct {
	events []model.Event
	err    error
}

func (n *recordingNotifier) Recorded(_ context.Context, evt model.Event) error {
	n.events = append(n.events, evt)
	return n.err
}

type mapCatalog map[string]*model.Meal

func (c mapCatalog) MealByID(_ context.Context, id string) (*model.Meal, error) {
	return c[id], nil
}
