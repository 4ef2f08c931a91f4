package main

import (
	"context"
	"database/sql"
	"time"

	"remitguard/internal/decision"
	dErrors "remitguard/pkg/domain-errors"
	txcontext "remitguard/pkg/platform/tx"
)

const defaultDecisionTxTimeout = 5 * time.Second

// decisionPostgresTx runs the decision and audit writes of one precheck in a
// single SQL transaction. The stores pick the transaction up from ctx.
type decisionPostgresTx struct {
	db      *sql.DB
	stores  decision.TxStores
	timeout time.Duration
}

func newDecisionPostgresTx(db *sql.DB, stores decision.TxStores) *decisionPostgresTx {
	return &decisionPostgresTx{db: db, stores: stores}
}

func (t *decisionPostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context, stores decision.TxStores) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultDecisionTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx), t.stores); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	return nil
}
