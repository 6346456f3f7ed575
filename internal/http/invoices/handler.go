// Package invoices exposes the upload and invoice lifecycle over HTTP:
// registering files, triggering extraction, reviewing fields, deletion.
package invoices

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ocrasesorias/facturas/internal/extraction"
	"github.com/ocrasesorias/facturas/internal/http/auth"
	"github.com/ocrasesorias/facturas/internal/invoice"
	"github.com/ocrasesorias/facturas/internal/manifest"
)

type Handler struct {
	invoices   *invoice.Service
	extraction *extraction.Service
	manifests  *manifest.Parser
	bucket     string
}

func NewHandler(invoices *invoice.Service, ext *extraction.Service, bucket string) *Handler {
	return &Handler{
		invoices:   invoices,
		extraction: ext,
		manifests:  manifest.NewParser(),
		bucket:     bucket,
	}
}

// Routes mounts the single-invoice endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	r.Put("/{id}/fields", h.validate)
	r.Post("/{id}/extract", h.extract)
}

// UploadRoutes mounts the upload-batch endpoints.
func (h *Handler) UploadRoutes(r chi.Router) {
	r.Post("/", h.createUpload)
	r.Post("/{id}/invoices", h.register)
	r.Get("/{id}/invoices", h.list)
	r.Post("/{id}/manifest", h.applyManifest)
	r.Post("/{id}/extract", h.extractUpload)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	inv, fields, err := h.invoices.GetFields(r.Context(), identity.OrgID, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDetailResponse(inv, fields))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.invoices.Delete(r.Context(), identity.OrgID, id); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type validateRequest struct {
	SupplierName     string   `json:"supplier_name"`
	SupplierTaxID    string   `json:"supplier_tax_id"`
	InvoiceNumber    string   `json:"invoice_number"`
	InvoiceDate      *string  `json:"invoice_date"`
	BaseAmountCents  *int64   `json:"base_amount_cents"`
	VATAmountCents   *int64   `json:"vat_amount_cents"`
	TotalAmountCents *int64   `json:"total_amount_cents"`
	VATRate          *float64 `json:"vat_rate"`
}

func (h *Handler) validate(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	fields := invoice.Fields{
		SupplierName:     req.SupplierName,
		SupplierTaxID:    req.SupplierTaxID,
		InvoiceNumber:    req.InvoiceNumber,
		BaseAmountCents:  req.BaseAmountCents,
		VATAmountCents:   req.VATAmountCents,
		TotalAmountCents: req.TotalAmountCents,
		VATRate:          req.VATRate,
	}

	if req.InvoiceDate != nil {
		t, err := time.Parse(time.DateOnly, *req.InvoiceDate)
		if err != nil {
			http.Error(w, "invalid invoice_date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		fields.InvoiceDate = &t
	}

	saved, err := h.invoices.Validate(r.Context(), identity.OrgID, identity.UserID, id, fields)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toFieldsResponse(saved))
}

type extractRequest struct {
	DocumentType invoice.DocumentType `json:"document_type"`
}

func (h *Handler) extract(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	// The body is optional; an empty body means no document type override.
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	outcome, err := h.extraction.ExtractInvoice(r.Context(), identity.OrgID, identity.UserID, id, req.DocumentType)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toOutcomeResponse(outcome))
}

func (h *Handler) extractUpload(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	opts := extraction.BatchOptions{}

	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			opts.Limit = n
		}
	}

	if s := r.URL.Query().Get("concurrency"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			opts.Concurrency = n
		}
	}

	result, err := h.extraction.ExtractUpload(r.Context(), identity.OrgID, identity.UserID, id, opts)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	// Per-invoice failures are part of the report, not an HTTP error.
	writeJSON(w, http.StatusOK, toBatchResponse(result))
}

type createUploadRequest struct {
	Name string `json:"name"`
}

func (h *Handler) createUpload(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var req createUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	up, err := h.invoices.CreateUpload(r.Context(), identity.OrgID, req.Name)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUploadResponse(up))
}

type registerRequest struct {
	Filename     string               `json:"filename"`
	StoragePath  string               `json:"storage_path"`
	MimeType     string               `json:"mime_type"`
	SizeBytes    int64                `json:"size_bytes"`
	DocumentType invoice.DocumentType `json:"document_type"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	uploadID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Filename == "" || req.StoragePath == "" {
		http.Error(w, "filename and storage_path are required", http.StatusBadRequest)
		return
	}

	inv, err := h.invoices.Register(r.Context(), identity.OrgID, invoice.RegisterParams{
		UploadID:     uploadID,
		Filename:     req.Filename,
		Bucket:       h.bucket,
		StoragePath:  req.StoragePath,
		MimeType:     req.MimeType,
		SizeBytes:    req.SizeBytes,
		DocumentType: req.DocumentType,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(inv))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	uploadID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}

	invs, err := h.invoices.ListByUpload(r.Context(), identity.OrgID, uploadID, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponseList(invs))
}

func (h *Handler) applyManifest(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	uploadID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("manifest")
	if err != nil {
		http.Error(w, "manifest file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	hints, err := h.manifests.Parse(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.invoices.SetDocumentTypes(r.Context(), identity.OrgID, uploadID, hints); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"applied": len(hints)})
}

// writeDomainError maps service sentinels to status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, invoice.ErrNotFound):
		http.Error(w, "invoice not found", http.StatusNotFound)
	case errors.Is(err, invoice.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, extraction.ErrNotConfigured):
		http.Error(w, "extraction service not configured", http.StatusInternalServerError)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
