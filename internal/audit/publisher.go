package audit

import (
	"context"
	"log/slog"
	"time"
)

// defaultBufferSize bounds events waiting for the worker.
const defaultBufferSize = 1024

// Publisher queues decision events for asynchronous delivery. Emit never
// blocks the request path: when the buffer is full the event is dropped and
// logged, since the decision itself is already committed.
type Publisher struct {
	events chan Event
	logger *slog.Logger
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithPublisherLogger sets the logger used for dropped events.
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithBufferSize overrides the queue capacity.
func WithBufferSize(n int) PublisherOption {
	return func(p *Publisher) {
		if n > 0 {
			p.events = make(chan Event, n)
		}
	}
}

func NewPublisher(opts ...PublisherOption) *Publisher {
	p := &Publisher{events: make(chan Event, defaultBufferSize)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit queues event for delivery.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case p.events <- event:
	default:
		if p.logger != nil {
			p.logger.WarnContext(ctx, "audit event buffer full, dropping event",
				"action", event.Action,
				"decision_id", event.DecisionID,
			)
		}
	}
	return nil
}

// Inbox exposes the queue to the worker.
func (p *Publisher) Inbox() <-chan Event {
	return p.events
}
