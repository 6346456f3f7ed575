package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventExtraction is the ledger event type debited per extracted invoice.
const EventExtraction = "invoice extraction"

// Entry is one row in an organization's credit ledger. Debits are negative.
type Entry struct {
	ID        int64
	OrgID     uuid.UUID
	EventType string
	Amount    int64
	CreatedAt time.Time
}

type Repository interface {
	AppendEntry(ctx context.Context, entry *Entry) error
	Balance(ctx context.Context, orgID uuid.UUID) (int64, error)
	ListEntries(ctx context.Context, orgID uuid.UUID, limit int) ([]*Entry, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RecordExtraction debits one credit for an extracted invoice.
func (s *Service) RecordExtraction(ctx context.Context, orgID uuid.UUID) error {
	return s.repo.AppendEntry(ctx, &Entry{
		OrgID:     orgID,
		EventType: EventExtraction,
		Amount:    -1,
	})
}

// Balance returns the organization's current credit balance.
func (s *Service) Balance(ctx context.Context, orgID uuid.UUID) (int64, error) {
	return s.repo.Balance(ctx, orgID)
}

// ListEntries returns the most recent ledger rows for an organization.
func (s *Service) ListEntries(ctx context.Context, orgID uuid.UUID, limit int) ([]*Entry, error) {
	return s.repo.ListEntries(ctx, orgID, limit)
}
