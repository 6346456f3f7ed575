// Package storage talks to the managed object store's REST API: short-lived
// signed read URLs for the extractor, and best-effort object removal when an
// invoice is deleted.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	client     *http.Client
	endpoint   string
	serviceKey string
	ttl        time.Duration
}

func New(endpoint, serviceKey string, ttl time.Duration) *Client {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &Client{
		client:     &http.Client{Timeout: 30 * time.Second},
		endpoint:   strings.TrimRight(endpoint, "/"),
		serviceKey: serviceKey,
		ttl:        ttl,
	}
}

type signRequest struct {
	ExpiresIn int `json:"expiresIn"`
}

type signResponse struct {
	SignedURL string `json:"signedURL"`
}

// SignURL returns a time-boxed read URL for a stored object.
func (c *Client) SignURL(ctx context.Context, bucket, path string) (string, error) {
	body, err := json.Marshal(signRequest{ExpiresIn: int(c.ttl.Seconds())})
	if err != nil {
		return "", fmt.Errorf("encoding sign request: %w", err)
	}

	url := fmt.Sprintf("%s/object/sign/%s/%s", c.endpoint, bucket, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("signing object url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code %d signing %s/%s", resp.StatusCode, bucket, path)
	}

	var signed signResponse
	if err := json.NewDecoder(resp.Body).Decode(&signed); err != nil {
		return "", fmt.Errorf("decoding sign response: %w", err)
	}

	if signed.SignedURL == "" {
		return "", fmt.Errorf("empty signed url for %s/%s", bucket, path)
	}

	if strings.HasPrefix(signed.SignedURL, "/") {
		return c.endpoint + signed.SignedURL, nil
	}

	return signed.SignedURL, nil
}

// Remove deletes a stored object.
func (c *Client) Remove(ctx context.Context, bucket, path string) error {
	url := fmt.Sprintf("%s/object/%s/%s", c.endpoint, bucket, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.serviceKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("removing object: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("unexpected status code %d removing %s/%s", resp.StatusCode, bucket, path)
	}

	return nil
}
