package engine

import (
	"sync"
	"time"
)

// EventKind identifies a generation lifecycle event.
type EventKind string

const (
	EventGenerationStart EventKind = "generation_start"
	EventGenerationEnd   EventKind = "generation_end"
	EventError           EventKind = "error"
)

// Event reports a generation starting, finishing or failing. Text deltas are
// not published here; they travel on the generation's own stream.
type Event struct {
	Kind       EventKind
	Generation string
	Timestamp  time.Time
	Data       any // GenerationSummary for EventGenerationEnd, error for EventError.
}

// GenerationSummary is the Data of an EventGenerationEnd.
type GenerationSummary struct {
	Kind     string
	Deltas   int
	Duration time.Duration
}

// Subscription is one listener of an EventBus. Read events from C; Close
// detaches it and closes C.
type Subscription struct {
	C <-chan Event

	bus *EventBus
	id  uint64
}

// Close detaches the subscription. It is safe to call more than once.
func (s *Subscription) Close() { s.bus.remove(s.id) }

// EventBus fans lifecycle events out to every subscription. A subscription
// whose buffer is full misses the event; Publish never blocks.
type EventBus struct {
	mu        sync.Mutex
	nextID    uint64
	listeners map[uint64]chan Event
	closed    bool
}

// NewEventBus returns an open, empty bus.
func NewEventBus() *EventBus {
	return &EventBus{listeners: make(map[uint64]chan Event)}
}

// Subscribe adds a listener with a buffer of size events. Subscribing to a
// closed bus returns a subscription whose channel is already closed.
func (b *EventBus) Subscribe(size int) *Subscription {
	ch := make(chan Event, size)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{C: ch, bus: b, id: b.nextID}

	if b.closed {
		close(ch)
		return sub
	}

	b.listeners[sub.id] = ch

	return sub
}

// Publish stamps e with the current time when it has none and offers it to
// every listener. It returns how many listeners took it.
func (b *EventBus) Publish(e Event) int {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	delivered := 0
	for _, ch := range b.listeners {
		select {
		case ch <- e:
			delivered++
		default:
		}
	}

	return delivered
}

// Close detaches every subscription. Later publishes reach nobody.
func (b *EventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	for id, ch := range b.listeners {
		delete(b.listeners, id)
		close(ch)
	}
}

func (b *EventBus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.listeners[id]; ok {
		delete(b.listeners, id)
		close(ch)
	}
}
