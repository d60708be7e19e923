// Package bus provides in-process fan-out of snow-state notification
// events to per-user subscribers (SSE streams, map sessions).
package bus

import (
	"sync"

	"github.com/helloneige/neige/internal/snow"
)

// Subscription is an explicit handle on a user-scoped event feed. It is
// created on sign-in (or stream attach) and must be closed on sign-out or
// disconnect so events for a stale user scope are never delivered.
type Subscription struct {
	C      <-chan snow.NotificationEvent
	userID string
	ch     chan snow.NotificationEvent
	bus    *Bus
	once   sync.Once
}

// Close detaches the subscription and closes its channel.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs, s)
		s.bus.mu.Unlock()
		close(s.ch)
	})
}

// Bus fans notification events out to subscribers. Publishing never
// blocks; a subscriber that cannot keep up misses events.
type Bus struct {
	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[*Subscription]struct{})}
}

// Subscribe returns a buffered subscription receiving only events scoped
// to the given user.
func (b *Bus) Subscribe(userID string) *Subscription {
	ch := make(chan snow.NotificationEvent, 16)
	sub := &Subscription{C: ch, ch: ch, userID: userID, bus: b}
	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

// Publish delivers an event to every subscription matching its user.
func (b *Bus) Publish(evt snow.NotificationEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.subs {
		if sub.userID != evt.UserID {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
			// subscriber too slow, skip
		}
	}
}
