package events

import (
	"sync"
	"time"
)

// Handler processes a single event. Handlers must not block;
// long-running work should be dispatched to a goroutine.
type Handler func(Event)

// Bus distributes events to subscribed handlers.
// Emit is safe for concurrent use; handlers run synchronously
// in subscription order on the emitting goroutine.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
	closed   bool
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for all subsequent events
func (b *Bus) Subscribe(h Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Emit delivers the event to every subscribed handler.
// Sets Time if the caller left it zero. Events emitted after
// Close are dropped.
func (b *Bus) Emit(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	b.mu.RLock()
	closed := b.closed
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	if closed {
		return
	}

	for _, h := range handlers {
		h(e)
	}
}

// Close stops event delivery. Safe to call more than once.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}
