// Package extractor is the HTTP client for the external invoice-field
// extraction service. The service is treated as untrusted: responses are
// schema-checked before anything downstream looks at them.
package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrMalformedPayload marks a response body that is not the JSON document
// the extraction service is contracted to return.
var ErrMalformedPayload = errors.New("malformed extractor payload")

// Request references the stored invoice file and carries the routing hint.
type Request struct {
	FileURL      string `json:"file_url"`
	Filename     string `json:"filename,omitempty"`
	MimeType     string `json:"mime_type,omitempty"`
	DocumentType string `json:"document_type,omitempty"`
}

// Result holds the schema-validated raw payload. Normalization into the
// persisted field set happens in the extraction workflow.
type Result struct {
	Raw json.RawMessage
}

type Client struct {
	client *http.Client
	url    string
}

// New creates a client for the extraction endpoint. The timeout is the
// deadline that frees a gate slot when the upstream service hangs.
func New(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		client: &http.Client{Timeout: timeout},
		url:    url,
	}
}

// Available reports whether an extraction endpoint is configured.
func (c *Client) Available() bool {
	return c.url != ""
}

func (c *Client) Extract(ctx context.Context, req Request) (*Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding extraction request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling extractor: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading extractor response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extractor returned status %d", resp.StatusCode)
	}

	if err := validatePayload(raw); err != nil {
		return nil, err
	}

	return &Result{Raw: raw}, nil
}
