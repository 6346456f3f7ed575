package extractor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_Success(t *testing.T) {
	var gotReq Request

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"supplier_name": "Suministros García SL",
			"supplier_tax_id": "B12345678",
			"invoice_number": "F-001",
			"invoice_date": "2024-03-01",
			"base_amount": 100.0,
			"vat_amount": 21.0,
			"total_amount": 121.0
		}`))
	}))
	defer ts.Close()

	c := New(ts.URL, time.Second)
	require.True(t, c.Available())

	res, err := c.Extract(context.Background(), Request{
		FileURL:      "https://storage.example/signed/inv-1.pdf",
		Filename:     "factura-marzo.pdf",
		MimeType:     "application/pdf",
		DocumentType: "expense",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://storage.example/signed/inv-1.pdf", gotReq.FileURL)
	assert.Equal(t, "expense", gotReq.DocumentType)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(res.Raw, &payload))
	assert.Equal(t, "B12345678", payload["supplier_tax_id"])
}

func TestExtract_NonSuccessStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	c := New(ts.URL, time.Second)

	_, err := c.Extract(context.Background(), Request{FileURL: "https://x/y.pdf"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestExtract_MalformedPayload(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{name: "not json", body: `<html>gateway error</html>`},
		{name: "wrong field type", body: `{"supplier_name": 12, "total_amount": 121.0}`},
		{name: "array instead of object", body: `[{"total_amount": 1}]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer ts.Close()

			c := New(ts.URL, time.Second)

			_, err := c.Extract(context.Background(), Request{FileURL: "https://x/y.pdf"})
			assert.ErrorIs(t, err, ErrMalformedPayload)
		})
	}
}

func TestExtract_ExtraFieldsAccepted(t *testing.T) {
	// Unknown fields pass schema validation; normalization drops them later.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"total_amount": 121.0, "confidence": 0.93, "line_items": []}`))
	}))
	defer ts.Close()

	c := New(ts.URL, time.Second)

	_, err := c.Extract(context.Background(), Request{FileURL: "https://x/y.pdf"})
	assert.NoError(t, err)
}

func TestAvailable_Unconfigured(t *testing.T) {
	c := New("", time.Second)
	assert.False(t, c.Available())
}
