package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"remitguard/internal/decision"
	"remitguard/pkg/domain"
	"remitguard/pkg/platform/sentinel"
	txcontext "remitguard/pkg/platform/tx"
)

// PostgresStore persists decisions in the decisions table. Writes join the
// transaction in ctx when one is active.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, record *decision.Record) error {
	if record == nil {
		return fmt.Errorf("decision record is required")
	}
	query := `
		INSERT INTO decisions (id, status, reasons, sender, receiver, amount, currency, input_snapshot_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(record.ID),
		string(record.Status),
		pq.Array(nonNil(record.Reasons)),
		record.Sender,
		record.Receiver,
		record.Amount,
		record.Currency,
		record.InputSnapshotHash,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert decision: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.DecisionID) (*decision.Record, error) {
	query := `
		SELECT id, status, reasons, sender, receiver, amount, currency, input_snapshot_hash, created_at
		FROM decisions
		WHERE id = $1
	`
	var (
		rawID   uuid.UUID
		status  string
		reasons []string
		record  decision.Record
	)
	err := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(id)).Scan(
		&rawID,
		&status,
		pq.Array(&reasons),
		&record.Sender,
		&record.Receiver,
		&record.Amount,
		&record.Currency,
		&record.InputSnapshotHash,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find decision: %w", err)
	}
	record.ID = domain.DecisionID(rawID)
	record.Status = decision.Status(status)
	record.Reasons = nonNil(reasons)
	return &record, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
