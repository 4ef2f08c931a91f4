package audit

import (
	"context"

	"remitguard/pkg/domain"
)

// Service exposes read access to the audit trail. Entries are only ever
// written by the decision service, inside its persistence transaction.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Query returns entries matching filter, newest first.
func (s *Service) Query(ctx context.Context, filter Filter) ([]*Entry, error) {
	return s.store.Query(ctx, filter)
}

// ListByDecision returns a decision's entries in evaluation order.
func (s *Service) ListByDecision(ctx context.Context, decisionID domain.DecisionID) ([]*Entry, error) {
	return s.store.ListByDecision(ctx, decisionID)
}
