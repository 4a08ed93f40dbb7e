package ws

import (
	"encoding/json"
	"sync"

	"chatroomgo/internal/presence"

	"go.uber.org/zap"
)

// Hub maps connection ids to live clients and implements presence.Deliverer.
// Delivery never blocks: a client whose queue is full is dropped.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
}

func NewHub() *Hub { return &Hub{clients: make(map[string]*client)} }

var _ presence.Deliverer = (*Hub)(nil)

func (h *Hub) Register(c *client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
}

// Unregister removes c and closes its queue, which stops its writer.
func (h *Hub) Unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur, ok := h.clients[c.id]; ok && cur == c {
		delete(h.clients, c.id)
		close(c.send)
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Deliver encodes n and queues it for id.
func (h *Hub) Deliver(id string, n presence.Notice) {
	frame, err := encodeNotice(n)
	if err != nil {
		zap.L().Warn("ws.encode_notice", zap.String("kind", string(n.Kind)), zap.Error(err))
		return
	}
	h.enqueue(id, frame)
}

// Send queues a single event for id outside of the presence flow (errors).
func (h *Hub) Send(id, event string, body any) {
	frame, err := encodeEnvelope(event, body)
	if err != nil {
		zap.L().Warn("ws.encode_envelope", zap.String("event", event), zap.Error(err))
		return
	}
	h.enqueue(id, frame)
}

func (h *Hub) enqueue(id string, frame json.RawMessage) {
	h.mu.RLock()
	c, ok := h.clients[id]
	if !ok {
		h.mu.RUnlock()
		return
	}
	var full bool
	select {
	case c.send <- frame:
	default:
		full = true
	}
	h.mu.RUnlock()

	if full {
		zap.L().Warn("ws.send_queue_full", zap.String("conn", id))
		h.Unregister(c)
	}
}
