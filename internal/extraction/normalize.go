package extraction

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ocrasesorias/facturas/internal/invoice"
)

// payload mirrors the extractor's known field set. Decoding through this
// struct drops whatever else the service chose to send.
type payload struct {
	SupplierName  *string    `json:"supplier_name"`
	SupplierTaxID *string    `json:"supplier_tax_id"`
	InvoiceNumber *string    `json:"invoice_number"`
	InvoiceDate   *string    `json:"invoice_date"`
	BaseAmount    flexAmount `json:"base_amount"`
	VATAmount     flexAmount `json:"vat_amount"`
	TotalAmount   flexAmount `json:"total_amount"`
	VATRate       flexRate   `json:"vat_rate"`
}

// flexAmount accepts a JSON number or a numeric string ("1.234,56" and
// "1234.56" both work) and holds the value in cents. Unparseable values
// count as absent rather than failing the whole extraction.
type flexAmount struct {
	Cents int64
	Valid bool
}

func (a *flexAmount) UnmarshalJSON(b []byte) error {
	v, ok := parseFlexNumber(b)
	if !ok {
		return nil
	}

	a.Cents = int64(math.Round(v * 100))
	a.Valid = true

	return nil
}

// flexRate is flexAmount for percentages, kept as a plain value.
type flexRate struct {
	Rate  float64
	Valid bool
}

func (r *flexRate) UnmarshalJSON(b []byte) error {
	v, ok := parseFlexNumber(b)
	if !ok {
		return nil
	}

	r.Rate = v
	r.Valid = true

	return nil
}

func parseFlexNumber(b []byte) (float64, bool) {
	if string(b) == "null" {
		return 0, false
	}

	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		return f, true
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return 0, false
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	// European formatting: dots as thousand separators, comma as decimal.
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}

	return v, true
}

var dateLayouts = []string{
	time.DateOnly,
	"02/01/2006",
	"02-01-2006",
	time.RFC3339,
}

func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			// Canonical form is the date alone.
			day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &day
		}
	}

	return nil
}

// normalizePayload coerces a schema-validated raw payload into the persisted
// field set: amounts to cents, dates to canonical day precision, tax ids
// trimmed and upper-cased.
func normalizePayload(raw json.RawMessage) (*invoice.Fields, error) {
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decoding extractor payload: %w", err)
	}

	f := &invoice.Fields{}

	if p.SupplierName != nil {
		f.SupplierName = strings.TrimSpace(*p.SupplierName)
	}

	if p.SupplierTaxID != nil {
		f.SupplierTaxID = strings.ToUpper(strings.TrimSpace(*p.SupplierTaxID))
	}

	if p.InvoiceNumber != nil {
		f.InvoiceNumber = strings.TrimSpace(*p.InvoiceNumber)
	}

	if p.InvoiceDate != nil {
		f.InvoiceDate = parseDate(*p.InvoiceDate)
	}

	if p.BaseAmount.Valid {
		cents := p.BaseAmount.Cents
		f.BaseAmountCents = &cents
	}

	if p.VATAmount.Valid {
		cents := p.VATAmount.Cents
		f.VATAmountCents = &cents
	}

	if p.TotalAmount.Valid {
		cents := p.TotalAmount.Cents
		f.TotalAmountCents = &cents
	}

	if p.VATRate.Valid {
		rate := p.VATRate.Rate
		f.VATRate = &rate
	}

	return f, nil
}

// decideStatus picks the workflow's terminal invoice status and reports
// which required fields are absent for UI highlighting. Extraction never
// promotes an invoice to ready; only explicit human validation does.
func decideStatus(f *invoice.Fields, toleranceCents int64) (invoice.Status, []string, bool) {
	var missing []string

	if f.SupplierTaxID == "" {
		missing = append(missing, "supplier_tax_id")
	}

	if f.InvoiceNumber == "" {
		missing = append(missing, "invoice_number")
	}

	if f.InvoiceDate == nil {
		missing = append(missing, "invoice_date")
	}

	if f.TotalAmountCents == nil {
		missing = append(missing, "total_amount")
	}

	return invoice.StatusNeedsReview, missing, amountsConsistent(f, toleranceCents)
}

// amountsConsistent checks base + vat ≈ total within the configured
// rounding tolerance. Incomplete amount triples are not flagged.
func amountsConsistent(f *invoice.Fields, toleranceCents int64) bool {
	if f.BaseAmountCents == nil || f.VATAmountCents == nil || f.TotalAmountCents == nil {
		return true
	}

	diff := *f.BaseAmountCents + *f.VATAmountCents - *f.TotalAmountCents
	if diff < 0 {
		diff = -diff
	}

	return diff <= toleranceCents
}
