package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/dukerupert/mealplan/internal/model"
)

// Message tells a user's clients that one of their snapshots moved on.
// Clients refetch the snapshot named by Stream.
type Message struct {
	Type    string `json:"type"`
	Stream  string `json:"stream"`
	Action  string `json:"action"`
	Version int64  `json:"version"`
	EventID string `json:"event_id,omitempty"`
}

// MessageFor builds the notification for a recorded event, e.g.
// {"type":"grocery_list_item_added","action":"item_added",...}.
func MessageFor(evt model.Event) Message {
	action := strings.ToLower(string(evt.Type))
	return Message{
		Type:    fmt.Sprintf("%s_%s", evt.Stream, action),
		Stream:  string(evt.Stream),
		Action:  action,
		Version: evt.Seq,
		EventID: evt.ID,
	}
}

// Hub tracks live connections per user and fans notifications out to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		logger:  logger,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if set, ok := h.clients[c.userID]; ok {
		if _, ok := set[c]; ok {
			delete(set, c)
			close(c.send)
		}
		if len(set) == 0 {
			delete(h.clients, c.userID)
		}
	}
	h.mu.Unlock()
}

// BroadcastTo sends msg to every connection of userID.
func (h *Hub) BroadcastTo(userID string, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients[userID] {
		select {
		case c.send <- data:
		default:
			// Client buffer full, drop.
			h.logger.Debug("client buffer full, dropping message", "user_id", userID, "type", msg.Type)
		}
	}
}

// Recorded forwards a recorded event to the owner's connections.
func (h *Hub) Recorded(_ context.Context, evt model.Event) error {
	h.BroadcastTo(evt.UserID, MessageFor(evt))
	return nil
}

// ClientCount returns the number of connected clients across all users.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}
