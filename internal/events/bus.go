// Package events delivers global notifications (catalog membership and
// activation transitions) to any number of subscribers.
//
// Publishing never blocks: a subscriber whose buffer is full misses the
// event and the drop is counted.
package events

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// Type names a global event.
type Type string

const (
	// PacksChanged follows any change to catalog membership.
	PacksChanged Type = "packsChanged"
	// ActivePackChangeStart is published before an activation begins loading.
	ActivePackChangeStart Type = "activePackChangeStart"
	// ActivePackChangeFinished is published once an activation has succeeded or failed.
	ActivePackChangeFinished Type = "activePackChangeFinished"
)

// Event is one global notification.
type Event struct {
	Type   Type   `json:"type"`
	PackID string `json:"packId,omitempty"`
	// Error is set on a failed ActivePackChangeFinished.
	Error string `json:"error,omitempty"`
}

// DefaultBuffer is the subscriber buffer used when Subscribe is given a
// non-positive size.
const DefaultBuffer = 64

// Bus fans events out to subscribers. The zero value is not usable; use NewBus.
type Bus struct {
	logger *slog.Logger

	mu   sync.RWMutex
	subs map[uint64]chan Event
	next uint64

	dropped atomic.Uint64
}

// NewBus creates a bus with no subscribers.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		logger: logger,
		subs:   make(map[uint64]chan Event),
	}
}

// Subscribe registers a subscriber and returns its channel plus a cancel
// func. Cancel closes the channel and is safe to call more than once.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			close(ch)
			b.mu.Unlock()
		})
	}
}

// Publish delivers e to every subscriber with room in its buffer.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.dropped.Add(1)
			b.logger.Debug("event_dropped", slog.String("type", string(e.Type)))
		}
	}
}

// Dropped returns how many deliveries were skipped because a buffer was full.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

// Subscribers returns the current subscriber count.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
