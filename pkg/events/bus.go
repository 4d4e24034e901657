package events

import (
	"context"
	"log"
	"sync"
)

// Handler processes one event. It has the same shape as the NATS
// subscriber's handler so consumers can be registered on either.
type Handler func(ctx context.Context, event Event) error

// Bus delivers events to in-process handlers. It stands in for NATS when
// NATS_URL is not configured.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	wg       sync.WaitGroup
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]Handler)}
}

func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish runs every handler for the event type in its own goroutine.
func (b *Bus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[event.EventType()]...)
	b.mu.RUnlock()

	detached := context.WithoutCancel(ctx)
	for _, h := range handlers {
		b.wg.Add(1)
		go func(h Handler) {
			defer b.wg.Done()
			if err := h(detached, event); err != nil {
				log.Printf("[Events] ❌ handler for %s failed: %v", event.EventType(), err)
			}
		}(h)
	}
	return nil
}

// Wait blocks until every dispatched handler has returned.
func (b *Bus) Wait() {
	b.wg.Wait()
}
