package decision

import (
	"context"
	"sync"
	"time"

	"remitguard/internal/audit"
	"remitguard/pkg/domain"
	dErrors "remitguard/pkg/domain-errors"
)

// Store persists decision records. FindByID returns sentinel.ErrNotFound for
// unknown IDs.
type Store interface {
	Save(ctx context.Context, record *Record) error
	FindByID(ctx context.Context, id domain.DecisionID) (*Record, error)
}

// TxStores are the stores available inside a transaction.
type TxStores struct {
	Decisions Store
	Audit     audit.Store
}

// StoreTx provides a transactional boundary for recording a decision together
// with its audit rows. Implementations may wrap a database transaction or,
// in-memory, a coarse lock. fn must use the ctx it is given.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, stores TxStores) error) error
}

// defaultTxTimeout bounds a transaction when the caller set no deadline.
const defaultTxTimeout = 5 * time.Second

type inMemoryTx struct {
	mu      sync.Mutex
	stores  TxStores
	timeout time.Duration
}

// NewInMemoryTx serializes transactions over in-memory stores. Writes made
// before a failure are not rolled back.
func NewInMemoryTx(decisions Store, auditLog audit.Store) StoreTx {
	return &inMemoryTx{
		stores:  TxStores{Decisions: decisions, Audit: auditLog},
		timeout: defaultTxTimeout,
	}
}

func (t *inMemoryTx) RunInTx(ctx context.Context, fn func(ctx context.Context, stores TxStores) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return fn(ctx, t.stores)
}
