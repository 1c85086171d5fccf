package realtime

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jgirmay/inquizzitive/internal/metrics"
	"go.uber.org/zap"
)

// Message types pushed to clients
const (
	TypeWelcome            = "welcome"
	TypeAnalyticsRefreshed = "analytics_refreshed"
	TypePing               = "ping"
	TypePong               = "pong"
)

// Message is the JSON frame exchanged with clients
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Hub tracks live connections per user
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]map[*Client]struct{}
	closed  bool
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewHub(m *metrics.Metrics, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients: make(map[uuid.UUID]map[*Client]struct{}),
		metrics: m,
		log:     log,
	}
}

// Register adds c and queues its welcome frame
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	if h.clients[c.UserID] == nil {
		h.clients[c.UserID] = make(map[*Client]struct{})
	}
	h.clients[c.UserID][c] = struct{}{}
	h.metrics.WebsocketOpened()

	c.send <- &Message{
		Type:      TypeWelcome,
		Data:      map[string]interface{}{"client_id": c.ID},
		Timestamp: time.Now().UTC(),
	}
	h.log.Debug("websocket client registered",
		zap.String("client_id", c.ID),
		zap.String("user_id", c.UserID.String()),
	)
	return true
}

// Unregister removes c and closes its send queue. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(c)
}

func (h *Hub) remove(c *Client) {
	set, ok := h.clients[c.UserID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.UserID)
	}
	close(c.send)
	h.metrics.WebsocketClosed()
	h.log.Debug("websocket client unregistered", zap.String("client_id", c.ID))
}

// Publish sends msg to every connection of userID. Slow clients drop frames.
func (h *Hub) Publish(userID uuid.UUID, msg *Message) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for c := range h.clients[userID] {
		select {
		case c.send <- msg:
			delivered++
		default:
			h.log.Warn("dropping websocket message, send queue full", zap.String("client_id", c.ID))
		}
	}
	return delivered
}

// NotifyRefreshed tells the user's clients their analytics cache changed
func (h *Hub) NotifyRefreshed(userID uuid.UUID) {
	h.Publish(userID, &Message{
		Type:      TypeAnalyticsRefreshed,
		Data:      map[string]interface{}{"user_id": userID.String()},
		Timestamp: time.Now().UTC(),
	})
}

func (h *Hub) ClientCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Close disconnects every client and rejects new registrations
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for _, set := range h.clients {
		for c := range set {
			h.remove(c)
		}
	}
}
