package events

import (
	"log/slog"
	"sync"
)

// Bus fans lifecycle events out to any number of subscribers. Publish never
// blocks the committing caller: each subscriber owns a buffered channel and
// events are dropped, with a warning, once a subscriber's buffer is full.
// Delivery order to each subscriber matches publish (commit) order.
type Bus struct {
	mu     sync.RWMutex
	subs   map[Kind][]*Subscription
	buffer int
	closed bool
}

// Subscription is one subscriber's view of the bus. Receive from C; Close
// unregisters the subscription and closes C.
type Subscription struct {
	C <-chan Event

	bus   *Bus
	ch    chan Event
	kinds []Kind
	once  sync.Once
}

// NewBus creates a bus whose subscribers buffer up to buffer events each.
func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = 64
	}
	return &Bus{
		subs:   make(map[Kind][]*Subscription),
		buffer: buffer,
	}
}

// Subscribe registers a subscriber for the given kinds; no kinds means all.
func (b *Bus) Subscribe(kinds ...Kind) *Subscription {
	if len(kinds) == 0 {
		kinds = AllKinds()
	}

	ch := make(chan Event, b.buffer)
	sub := &Subscription{
		C:     ch,
		bus:   b,
		ch:    ch,
		kinds: kinds,
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return sub
	}
	for _, k := range kinds {
		b.subs[k] = append(b.subs[k], sub)
	}

	return sub
}

// Publish enqueues the event for every subscriber of its kind. A slow or
// stalled subscriber loses events instead of delaying the ledger commit.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}

	for _, sub := range b.subs[e.Kind] {
		select {
		case sub.ch <- e:
		default:
			slog.Warn("event dropped for slow subscriber", "kind", e.Kind)
		}
	}
}

// Close shuts the bus down and closes every subscriber channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true

	seen := make(map[*Subscription]struct{})
	for _, subs := range b.subs {
		for _, sub := range subs {
			if _, ok := seen[sub]; ok {
				continue
			}
			seen[sub] = struct{}{}
			sub.once.Do(func() { close(sub.ch) })
		}
	}
	b.subs = nil
}

// Close unregisters the subscription and closes its channel. Safe to call
// more than once.
func (s *Subscription) Close() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	if s.bus.closed {
		return
	}

	for _, k := range s.kinds {
		subs := s.bus.subs[k]
		for i, candidate := range subs {
			if candidate == s {
				s.bus.subs[k] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
	s.once.Do(func() { close(s.ch) })
}
