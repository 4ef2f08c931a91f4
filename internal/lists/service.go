package lists

import (
	"context"
	"fmt"
	"log/slog"

	"remitguard/internal/lists/models"
	"remitguard/internal/lists/store"
	"remitguard/pkg/domain"
	"remitguard/pkg/requestcontext"
)

// Service administers blacklist and whitelist entries and answers membership
// questions for the decision engine.
type Service struct {
	store  store.Store
	logger *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New constructs a list service.
func New(st store.Store, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, fmt.Errorf("list store is required")
	}
	s := &Service{store: st}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// UpsertRequest is a validated create-or-update of a list entry.
type UpsertRequest struct {
	ListType domain.ListType
	Address  string
	Reason   *string
	Scope    *string
}

// Upsert creates the entry or updates reason/scope of the existing one.
func (s *Service) Upsert(ctx context.Context, req UpsertRequest) (*models.Entry, error) {
	now := requestcontext.Now(ctx)
	entry := &models.Entry{
		ID:        domain.NewListEntryID(),
		ListType:  req.ListType,
		Address:   req.Address,
		Reason:    req.Reason,
		Scope:     req.Scope,
		CreatedAt: now,
		UpdatedAt: now,
	}
	stored, err := s.store.Upsert(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("upsert list entry: %w", err)
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "list entry upserted",
			"request_id", requestcontext.RequestID(ctx),
			"list_type", stored.ListType,
			"entry_id", stored.ID,
		)
	}
	return stored, nil
}

// List returns entries newest first, optionally filtered by type.
func (s *Service) List(ctx context.Context, listType *domain.ListType) ([]*models.Entry, error) {
	return s.store.List(ctx, listType)
}

// IsListed reports whether address is on the given list.
func (s *Service) IsListed(ctx context.Context, listType domain.ListType, address string) (bool, error) {
	if address == "" {
		return false, nil
	}
	return s.store.Exists(ctx, listType, address)
}
