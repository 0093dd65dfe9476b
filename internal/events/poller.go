package events

import (
	"context"
	"time"

	"go-codegen-pipeline/internal/model"
)

// DefaultPollInterval is the drain cadence for consumers that do not set one.
const DefaultPollInterval = 100 * time.Millisecond

// Handler consumes one event. Returning false stops polling.
type Handler func(model.Event) bool

// Poll drains ch on every tick and whenever new events are signalled, handing
// events to handle in order. It returns nil once handle returns false and
// ctx.Err() when ctx ends; events already queued are delivered before that.
func Poll(ctx context.Context, ch *Channel, interval time.Duration, handle Handler) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if !deliver(ch, handle) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
		case <-ch.Ready():
		}
		if !deliver(ch, handle) {
			return nil
		}
	}
}

// UntilTerminal polls until a terminal event is handled and returns it.
func UntilTerminal(ctx context.Context, ch *Channel, interval time.Duration, each func(model.Event)) (model.Event, error) {
	var last model.Event
	err := Poll(ctx, ch, interval, func(e model.Event) bool {
		if each != nil {
			each(e)
		}
		if e.Terminal() {
			last = e
			return false
		}
		return true
	})
	return last, err
}

// deliver hands drained events to handle. When handle stops early the
// undelivered tail goes back to the head of the queue.
func deliver(ch *Channel, handle Handler) bool {
	batch := ch.Drain()
	for i, e := range batch {
		if !handle(e) {
			ch.requeue(batch[i+1:])
			return false
		}
	}
	return true
}
