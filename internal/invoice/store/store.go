package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/ocrasesorias/facturas/internal/invoice"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectInvoiceColumns = `
	i.id, i.org_id, i.upload_id, i.filename, i.bucket, i.storage_path,
	i.mime_type, i.size_bytes, i.document_type, i.status, i.error_message,
	i.created_at, i.updated_at
`

// scanInvoice reads an invoice row in selectInvoiceColumns order.
func scanInvoice(s scanner) (*invoice.Invoice, error) {
	var inv invoice.Invoice

	var docType, statusStr string

	var errMsg sql.NullString

	if err := s.Scan(
		&inv.ID, &inv.OrgID, &inv.UploadID, &inv.Filename, &inv.Bucket, &inv.StoragePath,
		&inv.MimeType, &inv.SizeBytes, &docType, &statusStr, &errMsg,
		&inv.CreatedAt, &inv.UpdatedAt,
	); err != nil {
		return nil, err
	}

	inv.DocumentType = invoice.DocumentType(docType)
	inv.Status = invoice.Status(statusStr)
	inv.ErrorMessage = errMsg.String

	return &inv, nil
}

func (s *Store) CreateUpload(ctx context.Context, up *invoice.Upload) error {
	query := `
		INSERT INTO uploads (org_id, name, created_at)
		VALUES ($1, $2, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, up.OrgID, up.Name).Scan(&up.ID, &up.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating upload: %w", err)
	}

	return nil
}

func (s *Store) GetUpload(ctx context.Context, id uuid.UUID) (*invoice.Upload, error) {
	query := `SELECT id, org_id, name, created_at FROM uploads WHERE id = $1`

	var up invoice.Upload

	err := s.db.QueryRowContext(ctx, query, id).Scan(&up.ID, &up.OrgID, &up.Name, &up.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, invoice.ErrNotFound
		}

		return nil, fmt.Errorf("getting upload: %w", err)
	}

	return &up, nil
}

func (s *Store) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	query := `
		INSERT INTO invoices (org_id, upload_id, filename, bucket, storage_path,
			mime_type, size_bytes, document_type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		inv.OrgID,
		inv.UploadID,
		inv.Filename,
		inv.Bucket,
		inv.StoragePath,
		inv.MimeType,
		inv.SizeBytes,
		inv.DocumentType,
		inv.Status,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating invoice: %w", err)
	}

	return nil
}

func (s *Store) GetInvoice(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + ` FROM invoices i WHERE i.id = $1`

	inv, err := scanInvoice(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, invoice.ErrNotFound
		}

		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	return inv, nil
}

// ListByUpload returns the upload's invoices in ascending creation order.
// A limit <= 0 means no cap.
func (s *Store) ListByUpload(ctx context.Context, uploadID uuid.UUID, limit int) ([]*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + `
		FROM invoices i
		WHERE i.upload_id = $1
		ORDER BY i.created_at ASC, i.id ASC`

	args := []any{uploadID}

	if limit > 0 {
		query += " LIMIT $2"

		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	defer rows.Close()

	var invs []*invoice.Invoice

	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}

		invs = append(invs, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoice rows: %w", err)
	}

	return invs, nil
}

// ListNeedsReview returns the organization's review queue, oldest first.
// A limit <= 0 means no cap.
func (s *Store) ListNeedsReview(ctx context.Context, orgID uuid.UUID, limit int) ([]*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + `
		FROM invoices i
		WHERE i.org_id = $1 AND i.status = $2
		ORDER BY i.created_at ASC, i.id ASC`

	args := []any{orgID, invoice.StatusNeedsReview}

	if limit > 0 {
		query += " LIMIT $3"

		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing review queue: %w", err)
	}
	defer rows.Close()

	var invs []*invoice.Invoice

	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}

		invs = append(invs, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoice rows: %w", err)
	}

	return invs, nil
}

// SetExtractionStatus writes the extraction path's status transitions. The
// status <> 'ready' guard keeps extraction from downgrading an invoice the
// owning user already validated.
func (s *Store) SetExtractionStatus(ctx context.Context, id uuid.UUID, status invoice.Status, errMsg string) error {
	query := `
		UPDATE invoices
		SET status = $1, error_message = NULLIF($2, ''), updated_at = NOW()
		WHERE id = $3 AND status <> $4
	`

	_, err := s.db.ExecContext(ctx, query, status, errMsg, id, invoice.StatusReady)
	if err != nil {
		return fmt.Errorf("updating extraction status: %w", err)
	}

	return nil
}

func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, status invoice.Status) error {
	query := `
		UPDATE invoices
		SET status = $1, error_message = NULL, updated_at = NOW()
		WHERE id = $2
	`

	_, err := s.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}

	return nil
}

// UpsertFields replaces the whole field row keyed on invoice_id. Whichever
// actor writes last supplies the complete known-field set.
func (s *Store) UpsertFields(ctx context.Context, f *invoice.Fields) error {
	query := `
		INSERT INTO invoice_fields (invoice_id, supplier_name, supplier_tax_id,
			invoice_number, invoice_date, base_amount_cents, vat_amount_cents,
			total_amount_cents, vat_rate, updated_by, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (invoice_id) DO UPDATE SET
			supplier_name = EXCLUDED.supplier_name,
			supplier_tax_id = EXCLUDED.supplier_tax_id,
			invoice_number = EXCLUDED.invoice_number,
			invoice_date = EXCLUDED.invoice_date,
			base_amount_cents = EXCLUDED.base_amount_cents,
			vat_amount_cents = EXCLUDED.vat_amount_cents,
			total_amount_cents = EXCLUDED.total_amount_cents,
			vat_rate = EXCLUDED.vat_rate,
			updated_by = EXCLUDED.updated_by,
			updated_at = NOW()
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		f.InvoiceID,
		f.SupplierName,
		f.SupplierTaxID,
		f.InvoiceNumber,
		f.InvoiceDate,
		f.BaseAmountCents,
		f.VATAmountCents,
		f.TotalAmountCents,
		f.VATRate,
		f.UpdatedBy,
	).Scan(&f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting invoice fields: %w", err)
	}

	return nil
}

// GetFields returns nil without error when no field row exists yet.
func (s *Store) GetFields(ctx context.Context, invoiceID uuid.UUID) (*invoice.Fields, error) {
	query := `
		SELECT invoice_id, supplier_name, supplier_tax_id, invoice_number,
			invoice_date, base_amount_cents, vat_amount_cents, total_amount_cents,
			vat_rate, updated_by, updated_at
		FROM invoice_fields
		WHERE invoice_id = $1
	`

	var f invoice.Fields

	err := s.db.QueryRowContext(ctx, query, invoiceID).Scan(
		&f.InvoiceID, &f.SupplierName, &f.SupplierTaxID, &f.InvoiceNumber,
		&f.InvoiceDate, &f.BaseAmountCents, &f.VATAmountCents, &f.TotalAmountCents,
		&f.VATRate, &f.UpdatedBy, &f.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, fmt.Errorf("getting invoice fields: %w", err)
	}

	return &f, nil
}

// SetDocumentTypes applies manifest hints in one database transaction.
func (s *Store) SetDocumentTypes(ctx context.Context, uploadID uuid.UUID, byFilename map[string]invoice.DocumentType) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		UPDATE invoices
		SET document_type = $1, updated_at = NOW()
		WHERE upload_id = $2 AND filename = $3
	`

	for filename, docType := range byFilename {
		if _, err := dbTx.ExecContext(ctx, query, docType, uploadID, filename); err != nil {
			return fmt.Errorf("setting document type for %q: %w", filename, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing document types: %w", err)
	}

	return nil
}

// DeleteInvoice removes the invoice row; invoice_fields cascades via FK.
func (s *Store) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM invoices WHERE id = $1`

	_, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting invoice: %w", err)
	}

	return nil
}
