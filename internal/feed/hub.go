// Package feed pushes the bench state to read-only overlay clients over
// websockets, e.g. a browser source in streaming software.
package feed

import (
	"sync"

	"go.uber.org/zap"

	"rinktally/internal/stats"
	"rinktally/internal/tracker"
)

// Hub tracks connected overlays and the last state they should see.
// It implements tracker.Display.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]bool
	closed  bool

	rows   []tracker.Row
	totals stats.Totals
	status *tracker.Status

	totalConnections int64
	totalMessages    int64

	log *zap.Logger
}

// NewHub creates an empty hub
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients: make(map[*client]bool),
		log:     log.Named("feed"),
	}
}

// RenderAll replaces the snapshot and pushes it
func (h *Hub) RenderAll(rows []tracker.Row) {
	copied := make([]tracker.Row, len(rows))
	copy(copied, rows)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.rows = copied
	h.broadcastLocked(MessageSnapshot, copied)
}

// SetCell updates one counter in the snapshot and pushes it
func (h *Hub) SetCell(ref stats.CellRef, value int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := range h.rows {
		if h.rows[i].Player != ref.Player {
			continue
		}
		switch ref.Stat {
		case stats.PlusMinus:
			h.rows[i].Stats.PlusMinus = value
		case stats.BlockedShots:
			h.rows[i].Stats.BlockedShots = value
		case stats.Takeaways:
			h.rows[i].Stats.Takeaways = value
		}
	}
	h.broadcastLocked(MessageCell, cellPayload{
		Player:    ref.Player,
		Stat:      string(ref.Stat),
		ElementID: ref.ElementID,
		Value:     value,
	})
}

// SetTotals pushes the aggregate counters
func (h *Hub) SetTotals(t stats.Totals) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.totals = t
	h.broadcastLocked(MessageTotals, t)
}

// SetStatus pushes the status line
func (h *Hub) SetStatus(s tracker.Status) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status = &s
	h.broadcastLocked(MessageStatus, s)
}

// ClientCount returns the number of connected overlays
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Metrics returns counters for the health endpoint
func (h *Hub) Metrics() map[string]any {
	h.mu.Lock()
	defer h.mu.Unlock()
	return map[string]any{
		"active_clients":    len(h.clients),
		"total_connections": h.totalConnections,
		"total_messages":    h.totalMessages,
	}
}

// Close disconnects every client; later registrations are refused
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.log.Info("shutting down feed", zap.Int("clients", len(h.clients)))
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	h.closed = true
}

// register adds a client and primes it with the current state
func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.clients[c] = true
	h.totalConnections++

	if h.rows != nil {
		if msg, err := encode(MessageSnapshot, h.rows); err == nil {
			c.trySend(msg)
		}
	}
	if msg, err := encode(MessageTotals, h.totals); err == nil {
		c.trySend(msg)
	}
	if h.status != nil {
		if msg, err := encode(MessageStatus, *h.status); err == nil {
			c.trySend(msg)
		}
	}

	h.log.Info("client connected", zap.String("client_id", c.id), zap.Int("total", len(h.clients)))
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unregisterLocked(c)
}

func (h *Hub) unregisterLocked(c *client) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		h.log.Info("client disconnected", zap.String("client_id", c.id), zap.Int("total", len(h.clients)))
	}
}

// broadcastLocked sends to every client; slow clients are dropped
func (h *Hub) broadcastLocked(t MessageType, payload any) {
	if len(h.clients) == 0 {
		return
	}

	msg, err := encode(t, payload)
	if err != nil {
		h.log.Error("failed to encode message", zap.String("type", string(t)), zap.Error(err))
		return
	}

	for c := range h.clients {
		if !c.trySend(msg) {
			h.log.Warn("client buffer full, disconnecting", zap.String("client_id", c.id))
			h.unregisterLocked(c)
		}
	}
	h.totalMessages++
}
