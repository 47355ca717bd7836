package notify

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// DefaultBufferSize is the default per-subscriber channel buffer.
const DefaultBufferSize = 32

// Hub is an in-process pub/sub dispatcher for user-scoped toast events.
type Hub struct {
	mu      sync.RWMutex
	streams map[string]map[string]chan Event
}

// NewHub returns a hub with no subscribers.
func NewHub() *Hub {
	return &Hub{streams: map[string]map[string]chan Event{}}
}

// Publish broadcasts ev to every subscriber of ev.UserID. A full
// subscriber buffer drops the event rather than blocking the queue.
func (h *Hub) Publish(ev Event) {
	if h == nil {
		return
	}
	userID := strings.TrimSpace(ev.UserID)
	if userID == "" {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.streams[userID] {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribe registers a stream for userID. The returned cancel closes the
// channel and is safe to call more than once.
func (h *Hub) Subscribe(userID string, buffer int) (string, <-chan Event, func()) {
	userID = strings.TrimSpace(userID)
	if h == nil || userID == "" {
		ch := make(chan Event)
		close(ch)
		return "", ch, func() {}
	}
	if buffer <= 0 {
		buffer = DefaultBufferSize
	}

	streamID := uuid.NewString()
	ch := make(chan Event, buffer)

	h.mu.Lock()
	streams, ok := h.streams[userID]
	if !ok {
		streams = map[string]chan Event{}
		h.streams[userID] = streams
	}
	streams[streamID] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			streams := h.streams[userID]
			if current, ok := streams[streamID]; ok {
				delete(streams, streamID)
				close(current)
			}
			if len(streams) == 0 {
				delete(h.streams, userID)
			}
		})
	}
	return streamID, ch, cancel
}

// Subscribers returns the number of open streams for userID.
func (h *Hub) Subscribers(userID string) int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.streams[strings.TrimSpace(userID)])
}
