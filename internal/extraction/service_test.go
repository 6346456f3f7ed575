package extraction_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocrasesorias/facturas/internal/extraction"
	"github.com/ocrasesorias/facturas/internal/extractor"
	"github.com/ocrasesorias/facturas/internal/gate"
	"github.com/ocrasesorias/facturas/internal/invoice"
)

// memRepo is an in-memory invoice.Repository with the store's semantics,
// including the ready guard on extraction status updates.
type memRepo struct {
	mu       sync.Mutex
	uploads  map[uuid.UUID]*invoice.Upload
	invoices map[uuid.UUID]*invoice.Invoice
	fields   map[uuid.UUID]*invoice.Fields
	order    []uuid.UUID

	lastListLimit int
	failUpsert    bool
}

func newMemRepo() *memRepo {
	return &memRepo{
		uploads:  make(map[uuid.UUID]*invoice.Upload),
		invoices: make(map[uuid.UUID]*invoice.Invoice),
		fields:   make(map[uuid.UUID]*invoice.Fields),
	}
}

func (r *memRepo) addUpload(orgID uuid.UUID) uuid.UUID {
	id := uuid.New()
	r.uploads[id] = &invoice.Upload{ID: id, OrgID: orgID}

	return id
}

func (r *memRepo) addInvoice(orgID, uploadID uuid.UUID, filename string) uuid.UUID {
	id := uuid.New()
	r.invoices[id] = &invoice.Invoice{
		ID:           id,
		OrgID:        orgID,
		UploadID:     uploadID,
		Filename:     filename,
		Bucket:       "invoices",
		StoragePath:  "files/" + filename,
		MimeType:     "application/pdf",
		DocumentType: invoice.DocumentExpense,
		Status:       invoice.StatusUploaded,
	}
	r.order = append(r.order, id)

	return id
}

func (r *memRepo) CreateUpload(_ context.Context, up *invoice.Upload) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	up.ID = uuid.New()
	r.uploads[up.ID] = up

	return nil
}

func (r *memRepo) GetUpload(_ context.Context, id uuid.UUID) (*invoice.Upload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	up, ok := r.uploads[id]
	if !ok {
		return nil, invoice.ErrNotFound
	}

	return up, nil
}

func (r *memRepo) CreateInvoice(_ context.Context, inv *invoice.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	inv.ID = uuid.New()
	r.invoices[inv.ID] = inv
	r.order = append(r.order, inv.ID)

	return nil
}

func (r *memRepo) GetInvoice(_ context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inv, ok := r.invoices[id]
	if !ok {
		return nil, invoice.ErrNotFound
	}

	cp := *inv

	return &cp, nil
}

func (r *memRepo) ListByUpload(_ context.Context, uploadID uuid.UUID, limit int) ([]*invoice.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastListLimit = limit

	var invs []*invoice.Invoice

	for _, id := range r.order {
		inv := r.invoices[id]
		if inv == nil || inv.UploadID != uploadID {
			continue
		}

		cp := *inv
		invs = append(invs, &cp)

		if limit > 0 && len(invs) == limit {
			break
		}
	}

	return invs, nil
}

func (r *memRepo) ListNeedsReview(_ context.Context, orgID uuid.UUID, limit int) ([]*invoice.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var invs []*invoice.Invoice

	for _, id := range r.order {
		inv := r.invoices[id]
		if inv == nil || inv.OrgID != orgID || inv.Status != invoice.StatusNeedsReview {
			continue
		}

		cp := *inv
		invs = append(invs, &cp)

		if limit > 0 && len(invs) == limit {
			break
		}
	}

	return invs, nil
}

func (r *memRepo) DeleteInvoice(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.invoices, id)

	return nil
}

func (r *memRepo) SetExtractionStatus(_ context.Context, id uuid.UUID, status invoice.Status, errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	inv, ok := r.invoices[id]
	if !ok || inv.Status == invoice.StatusReady {
		return nil
	}

	inv.Status = status
	inv.ErrorMessage = errMsg

	return nil
}

func (r *memRepo) UpdateStatus(_ context.Context, id uuid.UUID, status invoice.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if inv, ok := r.invoices[id]; ok {
		inv.Status = status
		inv.ErrorMessage = ""
	}

	return nil
}

func (r *memRepo) UpsertFields(_ context.Context, f *invoice.Fields) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failUpsert {
		return errors.New("db write rejected")
	}

	cp := *f
	r.fields[f.InvoiceID] = &cp

	return nil
}

func (r *memRepo) GetFields(_ context.Context, invoiceID uuid.UUID) (*invoice.Fields, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.fields[invoiceID], nil
}

func (r *memRepo) SetDocumentTypes(_ context.Context, uploadID uuid.UUID, byFilename map[string]invoice.DocumentType) error {
	return nil
}

func (r *memRepo) status(id uuid.UUID) invoice.Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.invoices[id].Status
}

func (r *memRepo) fieldRow(id uuid.UUID) *invoice.Fields {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.fields[id]
}

type fakeExtractor struct {
	unavailable bool

	mu      sync.Mutex
	calls   int
	extract func(ctx context.Context, req extractor.Request) (*extractor.Result, error)
}

func (f *fakeExtractor) Available() bool { return !f.unavailable }

func (f *fakeExtractor) Extract(ctx context.Context, req extractor.Request) (*extractor.Result, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	return f.extract(ctx, req)
}

func (f *fakeExtractor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls
}

func payloadResult(doc string) (*extractor.Result, error) {
	return &extractor.Result{Raw: json.RawMessage(doc)}, nil
}

type fakeSigner struct {
	err error
}

func (f *fakeSigner) SignURL(_ context.Context, bucket, path string) (string, error) {
	if f.err != nil {
		return "", f.err
	}

	return "https://storage.example/sign/" + bucket + "/" + path, nil
}

type fakeLedger struct {
	mu     sync.Mutex
	debits []uuid.UUID
	err    error
}

func (f *fakeLedger) RecordExtraction(_ context.Context, orgID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}

	f.debits = append(f.debits, orgID)

	return nil
}

func (f *fakeLedger) debitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.debits)
}

const fullPayload = `{
	"supplier_name": "Suministros García SL",
	"supplier_tax_id": "B12345678",
	"invoice_number": "F-001",
	"invoice_date": "2024-03-01",
	"base_amount": 100.0,
	"vat_amount": 21.0,
	"total_amount": 121.0,
	"vat_rate": 21.0
}`

func newService(repo *memRepo, ext *fakeExtractor, ledger *fakeLedger) *extraction.Service {
	return extraction.NewService(repo, ext, &fakeSigner{}, ledger, gate.New(5), 2)
}

func TestExtractInvoice_Success(t *testing.T) {
	orgA := uuid.New()
	user := uuid.New()

	repo := newMemRepo()
	uploadID := repo.addUpload(orgA)
	invID := repo.addInvoice(orgA, uploadID, "factura-marzo.pdf")

	ext := &fakeExtractor{extract: func(_ context.Context, req extractor.Request) (*extractor.Result, error) {
		assert.Contains(t, req.FileURL, "files/factura-marzo.pdf")
		assert.Equal(t, "expense", req.DocumentType)

		return payloadResult(fullPayload)
	}}
	ledger := &fakeLedger{}

	svc := newService(repo, ext, ledger)

	out, err := svc.ExtractInvoice(context.Background(), orgA, user, invID, "")
	require.NoError(t, err)

	assert.Equal(t, invoice.StatusNeedsReview, out.Status)
	assert.Empty(t, out.MissingFields)
	assert.True(t, out.AmountsConsistent)

	row := repo.fieldRow(invID)
	require.NotNil(t, row)
	assert.Equal(t, "B12345678", row.SupplierTaxID)
	assert.Equal(t, "F-001", row.InvoiceNumber)
	assert.Equal(t, int64(12100), *row.TotalAmountCents)
	assert.Equal(t, int64(10000), *row.BaseAmountCents)
	assert.Equal(t, int64(2100), *row.VATAmountCents)
	assert.Equal(t, user, row.UpdatedBy)

	assert.Equal(t, invoice.StatusNeedsReview, repo.status(invID))
	assert.Equal(t, []uuid.UUID{orgA}, ledger.debits)
}

func TestExtractInvoice_NotFound(t *testing.T) {
	repo := newMemRepo()
	ext := &fakeExtractor{extract: func(context.Context, extractor.Request) (*extractor.Result, error) {
		return payloadResult(fullPayload)
	}}

	svc := newService(repo, ext, &fakeLedger{})

	_, err := svc.ExtractInvoice(context.Background(), uuid.New(), uuid.New(), uuid.New(), "")
	assert.ErrorIs(t, err, invoice.ErrNotFound)
	assert.Zero(t, ext.callCount())
}

func TestExtractInvoice_Forbidden(t *testing.T) {
	orgA, orgB := uuid.New(), uuid.New()

	repo := newMemRepo()
	uploadID := repo.addUpload(orgA)
	invID := repo.addInvoice(orgA, uploadID, "f.pdf")

	ext := &fakeExtractor{extract: func(context.Context, extractor.Request) (*extractor.Result, error) {
		return payloadResult(fullPayload)
	}}

	svc := newService(repo, ext, &fakeLedger{})

	_, err := svc.ExtractInvoice(context.Background(), orgB, uuid.New(), invID, "")
	assert.ErrorIs(t, err, invoice.ErrForbidden)
	assert.Zero(t, ext.callCount())

	// The foreign invoice is untouched.
	assert.Equal(t, invoice.StatusUploaded, repo.status(invID))
}

func TestExtractInvoice_NotConfigured(t *testing.T) {
	orgA := uuid.New()

	repo := newMemRepo()
	uploadID := repo.addUpload(orgA)
	invID := repo.addInvoice(orgA, uploadID, "f.pdf")

	ext := &fakeExtractor{unavailable: true}

	svc := newService(repo, ext, &fakeLedger{})

	_, err := svc.ExtractInvoice(context.Background(), orgA, uuid.New(), invID, "")
	assert.ErrorIs(t, err, extraction.ErrNotConfigured)
	assert.Equal(t, invoice.StatusUploaded, repo.status(invID))
}

func TestExtractInvoice_ExtractorFailure(t *testing.T) {
	orgA := uuid.New()

	repo := newMemRepo()
	uploadID := repo.addUpload(orgA)
	invID := repo.addInvoice(orgA, uploadID, "f.pdf")

	ext := &fakeExtractor{extract: func(context.Context, extractor.Request) (*extractor.Result, error) {
		return nil, errors.New("extractor returned status 503")
	}}
	ledger := &fakeLedger{}

	svc := newService(repo, ext, ledger)

	_, err := svc.ExtractInvoice(context.Background(), orgA, uuid.New(), invID, "")
	require.ErrorIs(t, err, extraction.ErrExtractor)

	assert.Equal(t, invoice.StatusError, repo.status(invID))
	assert.Contains(t, repo.invoices[invID].ErrorMessage, "503")
	assert.Nil(t, repo.fieldRow(invID))
	assert.Zero(t, ledger.debitCount())
}

func TestExtractInvoice_PersistenceFailure(t *testing.T) {
	orgA := uuid.New()

	repo := newMemRepo()
	uploadID := repo.addUpload(orgA)
	invID := repo.addInvoice(orgA, uploadID, "f.pdf")
	repo.failUpsert = true

	ext := &fakeExtractor{extract: func(context.Context, extractor.Request) (*extractor.Result, error) {
		return payloadResult(fullPayload)
	}}
	ledger := &fakeLedger{}

	svc := newService(repo, ext, ledger)

	_, err := svc.ExtractInvoice(context.Background(), orgA, uuid.New(), invID, "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, extraction.ErrExtractor)

	// Status is left as-is so a retry can redo the work; no debit recorded.
	assert.Equal(t, invoice.StatusProcessing, repo.status(invID))
	assert.Zero(t, ledger.debitCount())
}

func TestExtractInvoice_LedgerFailureNotPropagated(t *testing.T) {
	orgA := uuid.New()

	repo := newMemRepo()
	uploadID := repo.addUpload(orgA)
	invID := repo.addInvoice(orgA, uploadID, "f.pdf")

	ext := &fakeExtractor{extract: func(context.Context, extractor.Request) (*extractor.Result, error) {
		return payloadResult(fullPayload)
	}}

	svc := newService(repo, ext, &fakeLedger{err: errors.New("ledger down")})

	out, err := svc.ExtractInvoice(context.Background(), orgA, uuid.New(), invID, "")
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusNeedsReview, out.Status)
}

func TestExtractInvoice_ReadyIsNeverDowngraded(t *testing.T) {
	orgA := uuid.New()

	repo := newMemRepo()
	uploadID := repo.addUpload(orgA)
	invID := repo.addInvoice(orgA, uploadID, "f.pdf")
	repo.invoices[invID].Status = invoice.StatusReady

	ext := &fakeExtractor{extract: func(context.Context, extractor.Request) (*extractor.Result, error) {
		return payloadResult(fullPayload)
	}}

	svc := newService(repo, ext, &fakeLedger{})

	out, err := svc.ExtractInvoice(context.Background(), orgA, uuid.New(), invID, "")
	require.NoError(t, err)

	// The workflow's own decision is needs_review, never ready, and the
	// guarded status update keeps the validated row at ready.
	assert.Equal(t, invoice.StatusNeedsReview, out.Status)
	assert.Equal(t, invoice.StatusReady, repo.status(invID))
}

func TestExtractInvoice_ReextractReplacesWholeRow(t *testing.T) {
	orgA := uuid.New()

	repo := newMemRepo()
	uploadID := repo.addUpload(orgA)
	invID := repo.addInvoice(orgA, uploadID, "f.pdf")

	payloads := []string{
		fullPayload,
		`{"invoice_number": "F-999", "total_amount": 50.0}`,
	}

	call := 0
	ext := &fakeExtractor{extract: func(context.Context, extractor.Request) (*extractor.Result, error) {
		res, err := payloadResult(payloads[call])
		call++

		return res, err
	}}

	svc := newService(repo, ext, &fakeLedger{})

	_, err := svc.ExtractInvoice(context.Background(), orgA, uuid.New(), invID, "")
	require.NoError(t, err)

	_, err = svc.ExtractInvoice(context.Background(), orgA, uuid.New(), invID, "")
	require.NoError(t, err)

	row := repo.fieldRow(invID)
	require.NotNil(t, row)

	// Only the second payload's values remain; nothing merged from the first.
	assert.Equal(t, "F-999", row.InvoiceNumber)
	assert.Equal(t, int64(5000), *row.TotalAmountCents)
	assert.Empty(t, row.SupplierTaxID)
	assert.Empty(t, row.SupplierName)
	assert.Nil(t, row.BaseAmountCents)
}

func TestExtractUpload_BatchIndependence(t *testing.T) {
	orgA := uuid.New()

	repo := newMemRepo()
	uploadID := repo.addUpload(orgA)

	ids := make([]uuid.UUID, 5)
	for i := range ids {
		ids[i] = repo.addInvoice(orgA, uploadID, fmt.Sprintf("f-%d.pdf", i+1))
	}

	badID := ids[2]

	ext := &fakeExtractor{extract: func(_ context.Context, req extractor.Request) (*extractor.Result, error) {
		if req.Filename == "f-3.pdf" {
			return nil, errors.New("unreadable scan")
		}

		return payloadResult(fullPayload)
	}}
	ledger := &fakeLedger{}

	svc := newService(repo, ext, ledger)

	res, err := svc.ExtractUpload(context.Background(), orgA, uuid.New(), uploadID, extraction.BatchOptions{Concurrency: 3})
	require.NoError(t, err)

	assert.Equal(t, 5, res.Total)
	assert.Equal(t, 4, res.Succeeded)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, badID, res.Failures[0].InvoiceID)
	assert.Contains(t, res.Failures[0].Error, "unreadable scan")

	for i, id := range ids {
		if id == badID {
			assert.Nil(t, repo.fieldRow(id))
			assert.Equal(t, invoice.StatusError, repo.status(id))

			continue
		}

		assert.NotNil(t, repo.fieldRow(id), "invoice %d should have fields", i+1)
		assert.Equal(t, invoice.StatusNeedsReview, repo.status(id))
	}

	assert.Equal(t, 4, ledger.debitCount())
}

func TestExtractUpload_OwnershipChecks(t *testing.T) {
	orgA, orgB := uuid.New(), uuid.New()

	repo := newMemRepo()
	uploadID := repo.addUpload(orgA)

	ext := &fakeExtractor{extract: func(context.Context, extractor.Request) (*extractor.Result, error) {
		return payloadResult(fullPayload)
	}}

	svc := newService(repo, ext, &fakeLedger{})

	_, err := svc.ExtractUpload(context.Background(), orgB, uuid.New(), uploadID, extraction.BatchOptions{})
	assert.ErrorIs(t, err, invoice.ErrForbidden)

	_, err = svc.ExtractUpload(context.Background(), orgA, uuid.New(), uuid.New(), extraction.BatchOptions{})
	assert.ErrorIs(t, err, invoice.ErrNotFound)
}

func TestExtractUpload_ClampsLimit(t *testing.T) {
	orgA := uuid.New()

	repo := newMemRepo()
	uploadID := repo.addUpload(orgA)
	repo.addInvoice(orgA, uploadID, "f-1.pdf")

	ext := &fakeExtractor{extract: func(context.Context, extractor.Request) (*extractor.Result, error) {
		return payloadResult(fullPayload)
	}}

	svc := newService(repo, ext, &fakeLedger{})

	_, err := svc.ExtractUpload(context.Background(), orgA, uuid.New(), uploadID, extraction.BatchOptions{Limit: 5000, Concurrency: 99})
	require.NoError(t, err)
	assert.Equal(t, 500, repo.lastListLimit)
}

func TestExtractUpload_EveryInvoiceClaimedOnce(t *testing.T) {
	orgA := uuid.New()

	repo := newMemRepo()
	uploadID := repo.addUpload(orgA)

	const n = 23
	for i := 0; i < n; i++ {
		repo.addInvoice(orgA, uploadID, fmt.Sprintf("f-%d.pdf", i))
	}

	ext := &fakeExtractor{extract: func(context.Context, extractor.Request) (*extractor.Result, error) {
		return payloadResult(fullPayload)
	}}

	svc := newService(repo, ext, &fakeLedger{})

	res, err := svc.ExtractUpload(context.Background(), orgA, uuid.New(), uploadID, extraction.BatchOptions{Concurrency: 4})
	require.NoError(t, err)

	assert.Equal(t, n, res.Total)
	assert.Equal(t, n, res.Succeeded)
	assert.Empty(t, res.Failures)
	assert.Equal(t, n, ext.callCount())
}
