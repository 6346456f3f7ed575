package invoices

import (
	"time"

	"github.com/google/uuid"

	"github.com/ocrasesorias/facturas/internal/extraction"
	"github.com/ocrasesorias/facturas/internal/invoice"
)

type invoiceResponse struct {
	ID           uuid.UUID            `json:"id"`
	UploadID     uuid.UUID            `json:"upload_id"`
	Filename     string               `json:"filename"`
	MimeType     string               `json:"mime_type,omitempty"`
	SizeBytes    int64                `json:"size_bytes,omitempty"`
	DocumentType invoice.DocumentType `json:"document_type"`
	Status       invoice.Status       `json:"status"`
	ErrorMessage string               `json:"error_message,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    *time.Time           `json:"updated_at,omitempty"`
}

type fieldsResponse struct {
	SupplierName     string   `json:"supplier_name,omitempty"`
	SupplierTaxID    string   `json:"supplier_tax_id,omitempty"`
	InvoiceNumber    string   `json:"invoice_number,omitempty"`
	InvoiceDate      *string  `json:"invoice_date,omitempty"`
	BaseAmountCents  *int64   `json:"base_amount_cents,omitempty"`
	VATAmountCents   *int64   `json:"vat_amount_cents,omitempty"`
	TotalAmountCents *int64   `json:"total_amount_cents,omitempty"`
	VATRate          *float64 `json:"vat_rate,omitempty"`
}

type detailResponse struct {
	invoiceResponse

	Fields *fieldsResponse `json:"fields,omitempty"`
}

type uploadResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type outcomeResponse struct {
	Status            invoice.Status  `json:"status"`
	Fields            *fieldsResponse `json:"fields"`
	MissingFields     []string        `json:"missing_fields,omitempty"`
	AmountsConsistent bool            `json:"amounts_consistent"`
}

type batchFailureResponse struct {
	InvoiceID uuid.UUID `json:"invoice_id"`
	Error     string    `json:"error"`
}

type batchResponse struct {
	Total     int                    `json:"total"`
	Succeeded int                    `json:"succeeded"`
	Failures  []batchFailureResponse `json:"failures"`
}

func toResponse(inv *invoice.Invoice) invoiceResponse {
	return invoiceResponse{
		ID:           inv.ID,
		UploadID:     inv.UploadID,
		Filename:     inv.Filename,
		MimeType:     inv.MimeType,
		SizeBytes:    inv.SizeBytes,
		DocumentType: inv.DocumentType,
		Status:       inv.Status,
		ErrorMessage: inv.ErrorMessage,
		CreatedAt:    inv.CreatedAt,
		UpdatedAt:    inv.UpdatedAt,
	}
}

func toResponseList(invs []*invoice.Invoice) []invoiceResponse {
	resp := make([]invoiceResponse, len(invs))
	for i, inv := range invs {
		resp[i] = toResponse(inv)
	}

	return resp
}

func toFieldsResponse(f *invoice.Fields) *fieldsResponse {
	if f == nil {
		return nil
	}

	resp := &fieldsResponse{
		SupplierName:     f.SupplierName,
		SupplierTaxID:    f.SupplierTaxID,
		InvoiceNumber:    f.InvoiceNumber,
		BaseAmountCents:  f.BaseAmountCents,
		VATAmountCents:   f.VATAmountCents,
		TotalAmountCents: f.TotalAmountCents,
		VATRate:          f.VATRate,
	}

	if f.InvoiceDate != nil {
		s := f.InvoiceDate.Format(time.DateOnly)
		resp.InvoiceDate = &s
	}

	return resp
}

func toDetailResponse(inv *invoice.Invoice, f *invoice.Fields) detailResponse {
	return detailResponse{
		invoiceResponse: toResponse(inv),
		Fields:          toFieldsResponse(f),
	}
}

func toUploadResponse(up *invoice.Upload) uploadResponse {
	return uploadResponse{
		ID:        up.ID,
		Name:      up.Name,
		CreatedAt: up.CreatedAt,
	}
}

func toOutcomeResponse(out *extraction.Outcome) outcomeResponse {
	return outcomeResponse{
		Status:            out.Status,
		Fields:            toFieldsResponse(out.Fields),
		MissingFields:     out.MissingFields,
		AmountsConsistent: out.AmountsConsistent,
	}
}

func toBatchResponse(res *extraction.BatchResult) batchResponse {
	resp := batchResponse{
		Total:     res.Total,
		Succeeded: res.Succeeded,
		Failures:  make([]batchFailureResponse, len(res.Failures)),
	}

	for i, f := range res.Failures {
		resp.Failures[i] = batchFailureResponse{InvoiceID: f.InvoiceID, Error: f.Error}
	}

	return resp
}
