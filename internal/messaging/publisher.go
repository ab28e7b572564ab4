package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dukerupert/mealplan/internal/model"
	"github.com/nats-io/nats.go"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, payload []byte) error
}

type JetStreamPublisher struct {
	JS nats.JetStreamContext
}

// Publish waits for the stream ack until ctx ends.
func (p JetStreamPublisher) Publish(ctx context.Context, subject string, payload []byte) error {
	_, err := p.JS.Publish(subject, payload, nats.Context(ctx))
	return err
}

// Subject returns the subject an event is published on:
// mealplan.event.<stream>.<user id>.
func Subject(evt model.Event) string {
	return fmt.Sprintf("%s.%s.%s", eventSubject, evt.Stream, evt.UserID)
}

const defaultPublishTimeout = 2 * time.Second

// EventPublisher forwards recorded events to NATS as JSON.
type EventPublisher struct {
	Publisher Publisher
	// Timeout bounds each publish, including the ack wait.
	Timeout time.Duration
}

func NewEventPublisher(p Publisher) *EventPublisher {
	return &EventPublisher{Publisher: p, Timeout: defaultPublishTimeout}
}

func (p *EventPublisher) Recorded(ctx context.Context, evt model.Event) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("publish event %s: %w", evt.ID, err)
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", evt.ID, err)
	}
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	if err := p.Publisher.Publish(ctx, Subject(evt), payload); err != nil {
		return fmt.Errorf("publish event %s: %w", evt.ID, err)
	}
	return nil
}
