// Package memory is a thread-safe in-process broker for tests and examples.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/ourritual/sdk-go/messaging"
)

// Broker dispatches published messages synchronously to subscribed handlers.
type Broker struct {
	mu       sync.RWMutex
	handlers map[string][]messaging.Handler
}

// Ensure Broker satisfies the publish contract.
var _ messaging.Client = (*Broker)(nil)

func New() *Broker {
	return &Broker{handlers: make(map[string][]messaging.Handler)}
}

// Subscribe registers h for topic. Pass handlers through
// messaging.WrapHandler to get per-delivery context recovery.
func (b *Broker) Subscribe(topic string, h messaging.Handler) {
	b.mu.Lock()
	b.handlers[topic] = append(b.handlers[topic], h)
	b.mu.Unlock()
}

// Publish delivers to every subscriber of topic, stopping at the first
// handler error.
func (b *Broker) Publish(topic string, data []byte, attributes map[string]string) error {
	b.mu.RLock()
	subs := append([]messaging.Handler(nil), b.handlers[topic]...)
	b.mu.RUnlock()

	msg := messaging.NewMessage(data, attributes)
	for _, h := range subs {
		if err := h(context.Background(), msg); err != nil {
			return fmt.Errorf("deliver to %s: %w", topic, err)
		}
	}
	return nil
}
