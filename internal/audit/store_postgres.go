package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"remitguard/pkg/domain"
	txcontext "remitguard/pkg/platform/tx"
)

// PostgresStore persists audit entries in the audit_logs table. Writes join
// the transaction in ctx when one is active.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("audit entry is required")
	}
	query := `
		INSERT INTO audit_logs (
			id, decision_id, seq, rule_name, input_snapshot_hash,
			outcome, reasons, type, payload, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(entry.ID),
		uuid.UUID(entry.DecisionID),
		entry.Seq,
		entry.RuleName,
		entry.InputSnapshotHash,
		entry.Outcome,
		pq.Array(nonNil(entry.Reasons)),
		entry.Type,
		[]byte(entry.Payload),
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

const selectColumns = `
	SELECT id, decision_id, seq, rule_name, input_snapshot_hash,
		   outcome, reasons, type, payload, created_at
	FROM audit_logs
`

func (s *PostgresStore) ListByDecision(ctx context.Context, decisionID domain.DecisionID) ([]*Entry, error) {
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx,
		selectColumns+` WHERE decision_id = $1 ORDER BY seq ASC`,
		uuid.UUID(decisionID),
	)
	if err != nil {
		return nil, fmt.Errorf("query audit logs: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (s *PostgresStore) Query(ctx context.Context, filter Filter) ([]*Entry, error) {
	var (
		conds []string
		args  []any
	)
	if filter.DecisionID != nil {
		args = append(args, uuid.UUID(*filter.DecisionID))
		conds = append(conds, fmt.Sprintf("decision_id = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conds = append(conds, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	query := selectColumns
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, seq DESC"

	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit logs: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]*Entry, error) {
	entries := make([]*Entry, 0)
	for rows.Next() {
		var (
			e          Entry
			entryID    uuid.UUID
			decisionID uuid.UUID
			reasons    []string
			payload    []byte
		)
		if err := rows.Scan(
			&entryID,
			&decisionID,
			&e.Seq,
			&e.RuleName,
			&e.InputSnapshotHash,
			&e.Outcome,
			pq.Array(&reasons),
			&e.Type,
			&payload,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		e.ID = domain.AuditEntryID(entryID)
		e.DecisionID = domain.DecisionID(decisionID)
		e.Reasons = nonNil(reasons)
		e.Payload = payload
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit logs: %w", err)
	}
	return entries, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
