package store

import (
	"context"

	"remitguard/internal/lists/models"
	"remitguard/pkg/domain"
)

// Store persists list entries.
type Store interface {
	// Upsert creates the entry or, when (ListType, Address) exists, replaces
	// its reason and scope. Returns the stored entry.
	Upsert(ctx context.Context, entry *models.Entry) (*models.Entry, error)
	// Exists reports whether address is on the given list.
	Exists(ctx context.Context, listType domain.ListType, address string) (bool, error)
	// List returns entries newest first, optionally filtered by type.
	List(ctx context.Context, listType *domain.ListType) ([]*models.Entry, error)
}
