package invoice

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of an invoice.
type Status string

const (
	StatusUploaded    Status = "uploaded"
	StatusProcessing  Status = "processing"
	StatusNeedsReview Status = "needs_review"
	StatusReady       Status = "ready"
	StatusError       Status = "error"
)

// DocumentType routes extraction behavior for supplier vs. client invoices.
type DocumentType string

const (
	DocumentExpense DocumentType = "expense"
	DocumentIncome  DocumentType = "income"
)

var (
	ErrNotFound  = errors.New("invoice not found")
	ErrForbidden = errors.New("invoice belongs to another organization")
)

// Invoice represents one uploaded document awaiting or having undergone
// field extraction. OrgID never changes after creation.
type Invoice struct {
	ID           uuid.UUID
	OrgID        uuid.UUID
	UploadID     uuid.UUID
	Filename     string
	Bucket       string
	StoragePath  string
	MimeType     string
	SizeBytes    int64
	DocumentType DocumentType
	Status       Status
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// Fields is the structured data produced by extraction or manual correction
// for exactly one invoice. Amounts are stored in cents.
type Fields struct {
	InvoiceID        uuid.UUID
	SupplierName     string
	SupplierTaxID    string
	InvoiceNumber    string
	InvoiceDate      *time.Time
	BaseAmountCents  *int64
	VATAmountCents   *int64
	TotalAmountCents *int64
	VATRate          *float64
	UpdatedBy        uuid.UUID
	UpdatedAt        *time.Time
}

// Upload represents one batch of uploaded invoice files.
type Upload struct {
	ID        uuid.UUID
	OrgID     uuid.UUID
	Name      string
	CreatedAt time.Time
}
