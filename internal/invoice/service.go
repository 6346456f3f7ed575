package invoice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=invoice
type Repository interface {
	CreateUpload(ctx context.Context, up *Upload) error
	GetUpload(ctx context.Context, id uuid.UUID) (*Upload, error)

	CreateInvoice(ctx context.Context, inv *Invoice) error
	GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error)
	ListByUpload(ctx context.Context, uploadID uuid.UUID, limit int) ([]*Invoice, error)
	ListNeedsReview(ctx context.Context, orgID uuid.UUID, limit int) ([]*Invoice, error)
	DeleteInvoice(ctx context.Context, id uuid.UUID) error

	// SetExtractionStatus updates status and error message on behalf of the
	// extraction path. It never touches an invoice already marked ready, so
	// extraction cannot downgrade a human-validated invoice.
	SetExtractionStatus(ctx context.Context, id uuid.UUID, status Status, errMsg string) error

	// UpdateStatus is the unguarded status update used by the validation flow.
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error

	UpsertFields(ctx context.Context, f *Fields) error
	GetFields(ctx context.Context, invoiceID uuid.UUID) (*Fields, error)

	SetDocumentTypes(ctx context.Context, uploadID uuid.UUID, byFilename map[string]DocumentType) error
}

// ObjectRemover deletes an invoice's stored file. Removal is best-effort.
type ObjectRemover interface {
	Remove(ctx context.Context, bucket, path string) error
}

type Service struct {
	repo  Repository
	files ObjectRemover
}

func NewService(repo Repository, files ObjectRemover) *Service {
	return &Service{repo: repo, files: files}
}

// GetForOrg loads an invoice and enforces organization ownership.
func (s *Service) GetForOrg(ctx context.Context, orgID, id uuid.UUID) (*Invoice, error) {
	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	if inv.OrgID != orgID {
		return nil, ErrForbidden
	}

	return inv, nil
}

// GetFields returns the persisted field row, if any, for an owned invoice.
func (s *Service) GetFields(ctx context.Context, orgID, id uuid.UUID) (*Invoice, *Fields, error) {
	inv, err := s.GetForOrg(ctx, orgID, id)
	if err != nil {
		return nil, nil, err
	}

	fields, err := s.repo.GetFields(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return inv, fields, nil
}

// GetUploadForOrg loads an upload batch and enforces organization ownership.
func (s *Service) GetUploadForOrg(ctx context.Context, orgID, uploadID uuid.UUID) (*Upload, error) {
	up, err := s.repo.GetUpload(ctx, uploadID)
	if err != nil {
		return nil, err
	}

	if up.OrgID != orgID {
		return nil, ErrForbidden
	}

	return up, nil
}

func (s *Service) CreateUpload(ctx context.Context, orgID uuid.UUID, name string) (*Upload, error) {
	up := &Upload{OrgID: orgID, Name: name}
	if err := s.repo.CreateUpload(ctx, up); err != nil {
		return nil, err
	}

	return up, nil
}

type RegisterParams struct {
	UploadID     uuid.UUID
	Filename     string
	Bucket       string
	StoragePath  string
	MimeType     string
	SizeBytes    int64
	DocumentType DocumentType
}

// Register records the metadata of an uploaded file under an owned upload
// batch. The file itself is already in object storage.
func (s *Service) Register(ctx context.Context, orgID uuid.UUID, params RegisterParams) (*Invoice, error) {
	if _, err := s.GetUploadForOrg(ctx, orgID, params.UploadID); err != nil {
		return nil, err
	}

	docType := params.DocumentType
	if docType == "" {
		docType = DocumentExpense
	}

	inv := &Invoice{
		OrgID:        orgID,
		UploadID:     params.UploadID,
		Filename:     params.Filename,
		Bucket:       params.Bucket,
		StoragePath:  params.StoragePath,
		MimeType:     params.MimeType,
		SizeBytes:    params.SizeBytes,
		DocumentType: docType,
		Status:       StatusUploaded,
	}
	if err := s.repo.CreateInvoice(ctx, inv); err != nil {
		return nil, err
	}

	return inv, nil
}

// ListByUpload returns the upload's invoices in creation order.
func (s *Service) ListByUpload(ctx context.Context, orgID, uploadID uuid.UUID, limit int) ([]*Invoice, error) {
	if _, err := s.GetUploadForOrg(ctx, orgID, uploadID); err != nil {
		return nil, err
	}

	return s.repo.ListByUpload(ctx, uploadID, limit)
}

// ListNeedsReview returns the organization's review queue, oldest first.
func (s *Service) ListNeedsReview(ctx context.Context, orgID uuid.UUID, limit int) ([]*Invoice, error) {
	return s.repo.ListNeedsReview(ctx, orgID, limit)
}

// Validate replaces the invoice's field row with human-corrected values and
// promotes the invoice to ready. This is the only path to ready.
func (s *Service) Validate(ctx context.Context, orgID, userID, id uuid.UUID, fields Fields) (*Fields, error) {
	if _, err := s.GetForOrg(ctx, orgID, id); err != nil {
		return nil, err
	}

	fields.InvoiceID = id
	fields.UpdatedBy = userID
	fields.SupplierTaxID = strings.ToUpper(strings.TrimSpace(fields.SupplierTaxID))

	if err := s.repo.UpsertFields(ctx, &fields); err != nil {
		return nil, fmt.Errorf("saving validated fields: %w", err)
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusReady); err != nil {
		return nil, fmt.Errorf("marking invoice ready: %w", err)
	}

	return &fields, nil
}

// SetDocumentTypes applies manifest hints to an owned upload's invoices.
func (s *Service) SetDocumentTypes(ctx context.Context, orgID, uploadID uuid.UUID, byFilename map[string]DocumentType) error {
	if _, err := s.GetUploadForOrg(ctx, orgID, uploadID); err != nil {
		return err
	}

	if len(byFilename) == 0 {
		return nil
	}

	return s.repo.SetDocumentTypes(ctx, uploadID, byFilename)
}

// Delete removes an owned invoice and, best-effort, its stored file.
func (s *Service) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	inv, err := s.GetForOrg(ctx, orgID, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteInvoice(ctx, id); err != nil {
		return err
	}

	if s.files != nil && inv.StoragePath != "" {
		if err := s.files.Remove(ctx, inv.Bucket, inv.StoragePath); err != nil {
			slog.Warn("failed to remove stored invoice file",
				"invoice_id", id, "path", inv.StoragePath, "error", err)
		}
	}

	return nil
}
