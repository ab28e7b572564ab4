package reducer

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dukerupert/mealplan/internal/model"
)

var t0 = time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)

type eventLog struct {
	events []model.Event
}

func (l *eventLog) add(typ model.EventType, payload any) model.Event {
	var data json.RawMessage
	if payload != nil {
		data, _ = json.Marshal(payload)
	}
	seq := int64(len(l.events) + 1)
	evt := model.Event{
		ID:        "evt-" + string(rune('a'+len(l.events))),
		Type:      typ,
		UserID:    "user-1",
		Seq:       seq,
		Timestamp: t0.Add(time.Duration(seq) * time.Second),
		Data:      data,
	}
	l.events = append(l.events, evt)
	return evt
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}
