package messaging

import (
	"context"
	"errors"
	"testing"
	"time"
)

// Nothing listens on port 1, so every dial is refused immediately.
const unreachableURL = "nats://127.0.0.1:1"

func TestConnectWithRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	client, err := ConnectWithRetry(ctx, unreachableURL, time.Minute)
	if client != nil {
		t.Fatal("expected no client")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("retry loop ran %s after cancel", elapsed)
	}
}

func TestConnectWithRetryTimeout(t *testing.T) {
	client, err := ConnectWithRetry(context.Background(), unreachableURL, 200*time.Millisecond)
	if client != nil {
		t.Fatal("expected no client")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context.DeadlineExceeded", err)
	}
}

func TestConnectUnreachable(t *testing.T) {
	if _, err := Connect(unreachableURL); err == nil {
		t.Fatal("expected connect error")
	}
}

func TestClientCloseNil(t *testing.T) {
	var c *Client
	c.Close()
	(&Client{}).Close()
}
