// Package events fans out change notifications to connected clients.
// Events carry no item state; they only tell a session when to refresh.
package events

import (
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	svc "bucketlist/internal/domain/services/bucketlist"
)

// subscriberBuffer is how many undelivered events a subscriber may hold
// before further events are dropped for it.
const subscriberBuffer = 16

// Event is one published change as sent on the wire
type Event struct {
	ID     uint64    `json:"id"`
	Type   string    `json:"type"`
	ItemID string    `json:"item_id,omitempty"`
	Actor  string    `json:"actor"`
	At     time.Time `json:"at"`
}

// Bus is an in-process publish/subscribe hub. Slow subscribers miss
// events rather than block publishers.
type Bus struct {
	mu     sync.RWMutex
	subs   map[chan []byte]struct{}
	seq    atomic.Uint64
	logger *slog.Logger
}

// NewBus creates an empty bus
func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		subs:   make(map[chan []byte]struct{}),
		logger: logger,
	}
}

var _ svc.ChangePublisher = (*Bus)(nil)

// Subscribe registers a new subscriber. cancel unregisters it and closes ch.
func (b *Bus) Subscribe() (ch <-chan []byte, cancel func()) {
	c := make(chan []byte, subscriberBuffer)

	b.mu.Lock()
	b.subs[c] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return c, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, c)
			b.mu.Unlock()
			close(c)
		})
	}
}

// Publish encodes change and offers it to every subscriber
func (b *Bus) Publish(change svc.Change) {
	ev := Event{
		ID:     b.seq.Add(1),
		Type:   change.Type,
		ItemID: change.ItemID,
		Actor:  change.Actor,
		At:     time.Now().UTC(),
	}
	data, err := json.Marshal(ev)
	if err != nil {
		b.logger.Error("failed to encode event", "type", ev.Type, "error", err)
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	dropped := 0
	for ch := range b.subs {
		select {
		case ch <- data:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		b.logger.Debug("dropped event for slow subscribers", "type", ev.Type, "dropped", dropped)
	}
}

// Subscribers returns the number of live subscriptions
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
