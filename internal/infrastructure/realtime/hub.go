// Package realtime pushes record events to connected dashboards over
// WebSocket.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dailymood/mood-tracker/internal/core/domain"
	"github.com/dailymood/mood-tracker/internal/pkg/metrics"
)

const writeWait = 10 * time.Second

// Conn is the subset of *websocket.Conn the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Client is one connected socket of one user. gorilla/websocket allows a
// single concurrent writer, so every write goes through mu.
type Client struct {
	UserID string
	conn   Conn
	mu     sync.Mutex
}

// NewClient wraps conn for userID.
func NewClient(userID string, conn Conn) *Client {
	return &Client{UserID: userID, conn: conn}
}

func (c *Client) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}

// Ping sends a keep-alive control frame.
func (c *Client) Ping() error {
	return c.write(websocket.PingMessage, nil)
}

// Hub tracks clients per user and implements ports.EventSink.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*Client]struct{})}
}

func (h *Hub) Name() string { return "websocket" }

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.clients[c.UserID] == nil {
		h.clients[c.UserID] = make(map[*Client]struct{})
	}
	h.clients[c.UserID][c] = struct{}{}
	h.mu.Unlock()
	metrics.WebsocketClients.Inc()
}

// Unregister removes c and closes its connection. Calling it twice is safe.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	set := h.clients[c.UserID]
	_, present := set[c]
	if present {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.UserID)
		}
	}
	h.mu.Unlock()

	if present {
		metrics.WebsocketClients.Dec()
		_ = c.conn.Close()
	}
}

// Count returns the number of sockets open for userID.
func (h *Hub) Count(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Deliver sends ev as a JSON text frame to every socket of ev.UserID. Sockets
// that fail to accept the write are dropped.
func (h *Hub) Deliver(_ context.Context, ev domain.RecordEvent) error {
	msg, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode record event: %w", err)
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients[ev.UserID]))
	for c := range h.clients[ev.UserID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.write(websocket.TextMessage, msg); err != nil {
			h.Unregister(c)
		}
	}
	return nil
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	var all []*Client
	for _, set := range h.clients {
		for c := range set {
			all = append(all, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range all {
		h.Unregister(c)
	}
}
