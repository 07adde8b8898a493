package events

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

const drainTimeout = 2 * time.Second

// ErrQueueFull is returned by Dispatcher.Publish when the queue has no room.
var ErrQueueFull = errors.New("event queue is full")

// Dispatcher queues events and forwards them to a sink from its own goroutine,
// so Publish never waits on the sink.
type Dispatcher struct {
	sink  Publisher
	queue chan Event
}

// NewDispatcher creates a dispatcher holding up to size pending events.
func NewDispatcher(sink Publisher, size int) *Dispatcher {
	if size <= 0 {
		size = 1
	}
	return &Dispatcher{
		sink:  sink,
		queue: make(chan Event, size),
	}
}

// Publish queues event without blocking.
func (d *Dispatcher) Publish(_ context.Context, event Event) error {
	select {
	case d.queue <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run forwards queued events until ctx is done. Events still queued after
// cancellation are flushed before it returns.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case event := <-d.queue:
			d.forward(ctx, event)
		case <-ctx.Done():
			d.drain()
			return
		}
	}
}

func (d *Dispatcher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	for {
		select {
		case event := <-d.queue:
			d.forward(ctx, event)
		default:
			return
		}
	}
}

func (d *Dispatcher) forward(ctx context.Context, event Event) {
	if err := d.sink.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish event", "event.type", event.Type, "error", err)
	}
}
