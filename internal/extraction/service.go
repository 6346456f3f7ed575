// Package extraction orchestrates the extract-normalize-persist workflow
// for one invoice at a time, and the batch driver that fans it out over an
// upload. Calls to the external extraction service go through a shared
// gate bounding process-wide concurrency.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ocrasesorias/facturas/internal/extractor"
	"github.com/ocrasesorias/facturas/internal/gate"
	"github.com/ocrasesorias/facturas/internal/invoice"
)

var (
	// ErrNotConfigured means no extractor endpoint is set. It is decided
	// before any slot is taken from the gate.
	ErrNotConfigured = errors.New("extractor endpoint not configured")

	// ErrExtractor marks a failed call to the extraction service. The
	// failure is local to one invoice and never aborts its siblings.
	ErrExtractor = errors.New("extraction failed")
)

type Extractor interface {
	Available() bool
	Extract(ctx context.Context, req extractor.Request) (*extractor.Result, error)
}

// URLSigner issues a short-lived read URL for a stored invoice file.
type URLSigner interface {
	SignURL(ctx context.Context, bucket, path string) (string, error)
}

// Ledger debits extraction usage. Writes are fire-and-forget.
type Ledger interface {
	RecordExtraction(ctx context.Context, orgID uuid.UUID) error
}

type Service struct {
	repo           invoice.Repository
	extractor      Extractor
	files          URLSigner
	ledger         Ledger
	gate           *gate.Gate
	toleranceCents int64
}

func NewService(repo invoice.Repository, ext Extractor, files URLSigner, ledger Ledger, g *gate.Gate, toleranceCents int64) *Service {
	return &Service{
		repo:           repo,
		extractor:      ext,
		files:          files,
		ledger:         ledger,
		gate:           g,
		toleranceCents: toleranceCents,
	}
}

// Outcome is what a completed workflow run hands back to its caller.
type Outcome struct {
	Fields            *invoice.Fields
	Status            invoice.Status
	MissingFields     []string
	AmountsConsistent bool
}

// ExtractInvoice runs the full workflow for one owned invoice: load, sign a
// read URL, call the extractor under the gate, normalize, persist fields and
// status, debit the ledger.
func (s *Service) ExtractInvoice(ctx context.Context, orgID, userID, invoiceID uuid.UUID, docType invoice.DocumentType) (*Outcome, error) {
	if !s.extractor.Available() {
		return nil, ErrNotConfigured
	}

	inv, err := s.repo.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if inv.OrgID != orgID {
		return nil, invoice.ErrForbidden
	}

	if docType == "" {
		docType = inv.DocumentType
	}

	if err := s.repo.SetExtractionStatus(ctx, invoiceID, invoice.StatusProcessing, ""); err != nil {
		return nil, fmt.Errorf("marking invoice processing: %w", err)
	}

	fileURL, err := s.files.SignURL(ctx, inv.Bucket, inv.StoragePath)
	if err != nil {
		s.markFailed(ctx, invoiceID, fmt.Sprintf("could not access stored file: %v", err))
		return nil, fmt.Errorf("%w: signing file url: %v", ErrExtractor, err)
	}

	res, err := gate.Run(s.gate, func() (*extractor.Result, error) {
		return s.extractor.Extract(ctx, extractor.Request{
			FileURL:      fileURL,
			Filename:     inv.Filename,
			MimeType:     inv.MimeType,
			DocumentType: string(docType),
		})
	})
	if err != nil {
		s.markFailed(ctx, invoiceID, fmt.Sprintf("extraction failed: %v", err))
		return nil, fmt.Errorf("%w: %v", ErrExtractor, err)
	}

	fields, err := normalizePayload(res.Raw)
	if err != nil {
		s.markFailed(ctx, invoiceID, fmt.Sprintf("unusable extraction payload: %v", err))
		return nil, fmt.Errorf("%w: %v", ErrExtractor, err)
	}

	fields.InvoiceID = invoiceID
	fields.UpdatedBy = userID

	// A persistence failure past this point leaves the invoice status
	// untouched so a retry can safely redo the work.
	if err := s.repo.UpsertFields(ctx, fields); err != nil {
		return nil, fmt.Errorf("saving extracted fields: %w", err)
	}

	status, missing, consistent := decideStatus(fields, s.toleranceCents)

	if err := s.repo.SetExtractionStatus(ctx, invoiceID, status, ""); err != nil {
		return nil, fmt.Errorf("updating invoice status: %w", err)
	}

	if err := s.ledger.RecordExtraction(ctx, orgID); err != nil {
		slog.Warn("failed to record extraction debit",
			"org_id", orgID, "invoice_id", invoiceID, "error", err)
	}

	return &Outcome{
		Fields:            fields,
		Status:            status,
		MissingFields:     missing,
		AmountsConsistent: consistent,
	}, nil
}

// markFailed records the extractor failure on the invoice. The guarded
// status update means a ready invoice is never downgraded by this path.
func (s *Service) markFailed(ctx context.Context, invoiceID uuid.UUID, msg string) {
	if err := s.repo.SetExtractionStatus(ctx, invoiceID, invoice.StatusError, msg); err != nil {
		slog.Error("failed to mark invoice errored", "invoice_id", invoiceID, "error", err)
	}
}
