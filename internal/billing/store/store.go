package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/ocrasesorias/facturas/internal/billing"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) AppendEntry(ctx context.Context, entry *billing.Entry) error {
	query := `
		INSERT INTO billing_ledger (org_id, event_type, amount, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		entry.OrgID,
		entry.EventType,
		entry.Amount,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("appending ledger entry: %w", err)
	}

	return nil
}

func (s *Store) Balance(ctx context.Context, orgID uuid.UUID) (int64, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM billing_ledger WHERE org_id = $1`

	var balance int64

	err := s.db.QueryRowContext(ctx, query, orgID).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("summing ledger: %w", err)
	}

	return balance, nil
}

func (s *Store) ListEntries(ctx context.Context, orgID uuid.UUID, limit int) ([]*billing.Entry, error) {
	query := `
		SELECT id, org_id, event_type, amount, created_at
		FROM billing_ledger
		WHERE org_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, query, orgID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []*billing.Entry

	for rows.Next() {
		var e billing.Entry
		if err := rows.Scan(&e.ID, &e.OrgID, &e.EventType, &e.Amount, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning ledger entry: %w", err)
		}

		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ledger rows: %w", err)
	}

	return entries, nil
}
