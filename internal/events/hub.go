// internal/events/hub.go
package events

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// DefaultBuffer is the outbound queue length of a registered connection.
const DefaultBuffer = 64

// Hub routes events to the connections registered on this process. Each
// connection drains its own channel; a full channel drops the event with a
// warning rather than stalling the room that produced it.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]chan []byte
	logger  *logrus.Logger
}

// NewHub returns an empty hub.
func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		clients: make(map[string]chan []byte),
		logger:  logger,
	}
}

// Register opens an outbound queue for playerID. Registering an id again
// closes the old queue.
func (h *Hub) Register(playerID string, buffer int) <-chan []byte {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	ch := make(chan []byte, buffer)

	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.clients[playerID]; ok {
		close(old)
	}
	h.clients[playerID] = ch
	return ch
}

// Unregister closes and forgets playerID's queue.
func (h *Hub) Unregister(playerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.clients[playerID]; ok {
		close(ch)
		delete(h.clients, playerID)
	}
}

// Connected reports whether playerID has a live queue here.
func (h *Hub) Connected(playerID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[playerID]
	return ok
}

func (h *Hub) Broadcast(roomID string, recipients []string, ev Event) {
	data, err := Encode(ev)
	if err != nil {
		h.logger.WithField("room", roomID).Warn(err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, id := range recipients {
		h.deliver(id, ev.Type, data)
	}
}

func (h *Hub) Send(playerID string, ev Event) {
	data, err := Encode(ev)
	if err != nil {
		h.logger.WithField("player", playerID).Warn(err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	h.deliver(playerID, ev.Type, data)
}

// deliver queues data for one recipient. Callers hold h.mu for reading.
func (h *Hub) deliver(playerID string, typ Type, data []byte) {
	ch, ok := h.clients[playerID]
	if !ok {
		return
	}
	select {
	case ch <- data:
	default:
		h.logger.WithFields(logrus.Fields{
			"player": playerID,
			"event":  typ,
		}).Warn("outbound queue full, dropping event")
	}
}
