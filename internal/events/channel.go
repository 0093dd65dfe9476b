// Package events carries pipeline events from a background run to a single
// polling consumer.
package events

import (
	"sync"

	"go-codegen-pipeline/internal/model"
)

// Channel is an unbounded FIFO of events. Emit never blocks; Drain hands back
// everything queued so far in emission order.
type Channel struct {
	mu     sync.Mutex
	queue  []model.Event
	notify chan struct{}
}

// NewChannel returns an empty channel.
func NewChannel() *Channel {
	return &Channel{notify: make(chan struct{}, 1)}
}

// Emit appends e and wakes a waiting consumer.
func (c *Channel) Emit(e model.Event) {
	c.mu.Lock()
	c.queue = append(c.queue, e)
	c.mu.Unlock()

	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// Drain removes and returns all queued events. It returns nil when empty.
func (c *Channel) Drain() []model.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) == 0 {
		return nil
	}
	out := c.queue
	c.queue = nil
	return out
}

func (c *Channel) requeue(events []model.Event) {
	if len(events) == 0 {
		return
	}
	c.mu.Lock()
	c.queue = append(append([]model.Event(nil), events...), c.queue...)
	c.mu.Unlock()
}

// Ready is signalled after at least one Emit since the last receive.
func (c *Channel) Ready() <-chan struct{} {
	return c.notify
}

// Len reports the number of queued events.
func (c *Channel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}
