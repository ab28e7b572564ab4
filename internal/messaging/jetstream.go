package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	// EventsStream captures every recorded meal plan and grocery list event.
	EventsStream = "MEALPLAN_EVENTS"
	eventSubject = "mealplan.event"
)

// EnsureStream creates the events stream if it does not exist yet.
func EnsureStream(js nats.JetStreamContext) error {
	if _, err := js.StreamInfo(EventsStream); err != nil {
		if !errors.Is(err, nats.ErrStreamNotFound) {
			return err
		}
		if _, err := js.AddStream(&nats.StreamConfig{
			Name:      EventsStream,
			Subjects:  []string{eventSubject + ".>"},
			Retention: nats.LimitsPolicy,
			Storage:   nats.FileStorage,
			Replicas:  1,
		}); err != nil {
			return err
		}
	}
	return nil
}

const (
	connectTimeout = 2 * time.Second
	retryInterval  = 500 * time.Millisecond
)

// Client holds the NATS connection and its JetStream context.
type Client struct {
	Conn *nats.Conn
	JS   nats.JetStreamContext
}

// Connect dials url, opens JetStream and makes sure the events stream exists.
func Connect(url string) (*Client, error) {
	conn, err := nats.Connect(url, nats.Name("mealplan"), nats.Timeout(connectTimeout))
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	client := &Client{Conn: conn}
	if client.JS, err = conn.JetStream(); err != nil {
		client.Close()
		return nil, fmt.Errorf("jetstream context: %w", err)
	}
	if err := EnsureStream(client.JS); err != nil {
		client.Close()
		return nil, fmt.Errorf("ensure stream %s: %w", EventsStream, err)
	}
	return client, nil
}

// ConnectWithRetry retries Connect until it succeeds, timeout elapses or ctx
// ends.
func ConnectWithRetry(ctx context.Context, url string, timeout time.Duration) (*Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var lastErr error
	for attempt := 1; ; attempt++ {
		client, err := Connect(url)
		if err == nil {
			return client, nil
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connect jetstream after %d attempts: %w", attempt, errors.Join(ctx.Err(), lastErr))
		case <-time.After(retryInterval):
		}
	}
}

// Close drains pending publishes and closes the connection. Safe on nil.
func (c *Client) Close() {
	if c == nil || c.Conn == nil {
		return
	}
	_ = c.Conn.Drain()
	c.Conn.Close()
}
