package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"remitguard/internal/lists/models"
	"remitguard/pkg/domain"
	txcontext "remitguard/pkg/platform/tx"
)

// PostgresStore persists list entries in the list_entries table, unique on
// (list_type, address).
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed list store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Upsert(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
	if entry == nil {
		return nil, fmt.Errorf("list entry is required")
	}
	query := `
		INSERT INTO list_entries (id, list_type, address, reason, scope, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (list_type, address) DO UPDATE SET
			reason = EXCLUDED.reason,
			scope = EXCLUDED.scope,
			updated_at = EXCLUDED.updated_at
		RETURNING id, list_type, address, reason, scope, created_at, updated_at
	`
	row := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, query,
		uuid.UUID(entry.ID),
		entry.ListType.StorageKey(),
		entry.Address,
		nullString(entry.Reason),
		nullString(entry.Scope),
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	stored, err := scanEntry(row)
	if err != nil {
		return nil, fmt.Errorf("upsert list entry: %w", err)
	}
	return stored, nil
}

func (s *PostgresStore) Exists(ctx context.Context, listType domain.ListType, address string) (bool, error) {
	var exists bool
	err := txcontext.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM list_entries WHERE list_type = $1 AND address = $2)`,
		listType.StorageKey(), address,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check list entry: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) List(ctx context.Context, listType *domain.ListType) ([]*models.Entry, error) {
	query := `
		SELECT id, list_type, address, reason, scope, created_at, updated_at
		FROM list_entries
	`
	var args []any
	if listType != nil {
		query += ` WHERE list_type = $1`
		args = append(args, listType.StorageKey())
	}
	query += ` ORDER BY created_at DESC`

	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan list entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate list entries: %w", err)
	}
	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*models.Entry, error) {
	var (
		e        models.Entry
		entryID  uuid.UUID
		listType string
		reason   sql.NullString
		scope    sql.NullString
	)
	if err := row.Scan(&entryID, &listType, &e.Address, &reason, &scope, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.ID = domain.ListEntryID(entryID)
	e.ListType = domain.ListTypeFromStorage(listType)
	if reason.Valid {
		e.Reason = &reason.String
	}
	if scope.Valid {
		e.Scope = &scope.String
	}
	return &e, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
