package ports

import (
	"context"

	"remitguard/internal/audit"
)

// EventPublisher emits decision events after a decision has been committed.
// Delivery is best-effort: a failure never undoes a persisted decision.
type EventPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
