// Package hub fans order events out to connected event-stream clients.
package hub

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/beanbar/orderdesk/internal/core/domain"
	"github.com/beanbar/orderdesk/internal/stub/metrics"
)

const subscriberBuffer = 16

// Hub is a broadcast channel between order mutations and SSE handlers.
// Publish never blocks: a subscriber that cannot keep up has events
// dropped, since the stream is a notification trigger, not a ledger.
type Hub struct {
	mu   sync.Mutex
	subs map[chan domain.OrderEvent]struct{}
	log  zerolog.Logger
}

func New(log zerolog.Logger) *Hub {
	return &Hub{
		subs: make(map[chan domain.OrderEvent]struct{}),
		log:  log,
	}
}

// Subscribe registers a new listener. The returned cancel function
// removes the subscription and closes the channel.
func (h *Hub) Subscribe() (<-chan domain.OrderEvent, func()) {
	ch := make(chan domain.OrderEvent, subscriberBuffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	count := len(h.subs)
	h.mu.Unlock()
	metrics.StreamClients.Set(float64(count))

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			count := len(h.subs)
			h.mu.Unlock()
			close(ch)
			metrics.StreamClients.Set(float64(count))
		})
	}
	return ch, cancel
}

// Publish delivers event to every subscriber without blocking.
func (h *Hub) Publish(event domain.OrderEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		select {
		case ch <- event:
		default:
			h.log.Warn().
				Str("order_number", event.OrderNumber).
				Str("type", string(event.Type)).
				Msg("slow event subscriber, dropping event")
		}
	}
	metrics.EventsPublishedTotal.WithLabelValues(string(event.Type)).Inc()
}
