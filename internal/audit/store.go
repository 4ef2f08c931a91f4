package audit

import (
	"context"

	"remitguard/pkg/domain"
)

// Store persists audit entries. There is deliberately no update or delete.
type Store interface {
	Append(ctx context.Context, entry *Entry) error
	// ListByDecision returns a decision's entries in evaluation order.
	ListByDecision(ctx context.Context, decisionID domain.DecisionID) ([]*Entry, error)
	// Query returns matching entries, newest first.
	Query(ctx context.Context, filter Filter) ([]*Entry, error)
}
