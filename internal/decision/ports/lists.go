package ports

import (
	"context"

	"remitguard/pkg/domain"
)

// ListLookup answers list membership questions for the blacklist/whitelist rule
// without tying the decision engine to a particular list store.
type ListLookup interface {
	// IsListed reports whether address has an entry on the given list.
	// Returns an error only for infrastructure failures.
	IsListed(ctx context.Context, listType domain.ListType, address string) (bool, error)
}
