package audit

import (
	"context"
	"log/slog"
	"time"
)

const defaultDrainTimeout = 2 * time.Second

// Sink delivers events to an external system.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Worker drains queued events into a sink. Delivery failures are logged and
// skipped. When ctx is cancelled the worker flushes what is already queued,
// bounded by the drain timeout, and stops.
type Worker struct {
	sink         Sink
	inbox        <-chan Event
	logger       *slog.Logger
	drainTimeout time.Duration
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithDrainTimeout bounds the shutdown flush of queued events.
func WithDrainTimeout(d time.Duration) WorkerOption {
	return func(w *Worker) {
		if d > 0 {
			w.drainTimeout = d
		}
	}
}

func NewWorker(sink Sink, inbox <-chan Event, logger *slog.Logger, opts ...WorkerOption) *Worker {
	w := &Worker{sink: sink, inbox: inbox, logger: logger, drainTimeout: defaultDrainTimeout}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			w.drain(ctx)
			return ctx.Err()
		}
		select {
		case <-ctx.Done():
			w.drain(ctx)
			return ctx.Err()
		case event := <-w.inbox:
			w.publish(ctx, event)
		}
	}
}

// drain publishes whatever is queued without waiting for new events.
func (w *Worker) drain(ctx context.Context) {
	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.drainTimeout)
	defer cancel()

	for {
		if drainCtx.Err() != nil {
			if dropped := len(w.inbox); dropped > 0 && w.logger != nil {
				w.logger.WarnContext(drainCtx, "audit event drain timed out",
					"dropped", dropped,
				)
			}
			return
		}
		select {
		case event := <-w.inbox:
			w.publish(drainCtx, event)
		default:
			return
		}
	}
}

func (w *Worker) publish(ctx context.Context, event Event) {
	if err := w.sink.Publish(ctx, event); err != nil && w.logger != nil {
		w.logger.ErrorContext(ctx, "failed to publish audit event",
			"action", event.Action,
			"decision_id", event.DecisionID,
			"error", err,
		)
	}
}
