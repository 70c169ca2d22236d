// Where: internal/amberflo/client.go
// What: HTTP client for the Amberflo metering API.
// Why: One place for auth headers, gzip handling, retries, and error surfacing.
package amberflo

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxAttempts = 3

// APIError carries a non-success provider response. The provider's status
// and message are surfaced verbatim rather than synthesized.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("amberflo: status %d: %s", e.StatusCode, e.Message)
}

// Retryable reports whether the request may be retried. Client errors are
// final; server errors are not.
func (e *APIError) Retryable() bool {
	return e.StatusCode >= 500
}

// Client talks to the Amberflo API. The zero value is not usable; use New.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option adjusts client construction.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a client for the given endpoint and key.
func New(baseURL, apiKey string, opts ...Option) *Client {
	client := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// CreateMeter registers a new meter.
func (c *Client) CreateMeter(ctx context.Context, meter Meter) (Meter, error) {
	var out Meter
	if !meter.Valid() {
		return out, fmt.Errorf("amberflo: label, meterApiName, and meterType are required")
	}
	err := c.call(ctx, http.MethodPost, "/meters", meter, &out)
	return out, err
}

// UpdateMeter replaces an existing meter definition. The meter ID must be
// set; the provider matches on it.
func (c *Client) UpdateMeter(ctx context.Context, meter Meter) (Meter, error) {
	var out Meter
	if !meter.Valid() {
		return out, fmt.Errorf("amberflo: label, meterApiName, and meterType are required")
	}
	if meter.ID == "" {
		return out, fmt.Errorf("amberflo: meter id is required for update")
	}
	err := c.call(ctx, http.MethodPut, "/meters", meter, &out)
	return out, err
}

// GetMeter fetches one meter by ID.
func (c *Client) GetMeter(ctx context.Context, meterID string) (Meter, error) {
	var out Meter
	if meterID == "" {
		return out, fmt.Errorf("amberflo: meter id is required")
	}
	err := c.call(ctx, http.MethodGet, "/meters/"+meterID, nil, &out)
	return out, err
}

// ListMeters fetches every meter in the account.
func (c *Client) ListMeters(ctx context.Context) ([]Meter, error) {
	var out []Meter
	err := c.call(ctx, http.MethodGet, "/meters", nil, &out)
	return out, err
}

// DeleteMeter removes a meter by ID.
func (c *Client) DeleteMeter(ctx context.Context, meterID string) (Meter, error) {
	var out Meter
	if meterID == "" {
		return out, fmt.Errorf("amberflo: meter id is required")
	}
	err := c.call(ctx, http.MethodDelete, "/meters/"+meterID, nil, &out)
	return out, err
}

// Ingest records one usage event.
func (c *Client) Ingest(ctx context.Context, event IngestEvent) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.call(ctx, http.MethodPost, "/ingest", event, &out)
	return out, err
}

// GetUsage queries aggregated usage. The provider expects a POST with the
// query in the body.
func (c *Client) GetUsage(ctx context.Context, query UsageQuery) (json.RawMessage, error) {
	var out json.RawMessage
	if query.MeterAPIName == "" {
		return out, fmt.Errorf("amberflo: meterApiName is required")
	}
	err := c.call(ctx, http.MethodPost, "/usage", query, &out)
	return out, err
}

// CancelUsage filters ingested events out of billing by posting a
// filtering rule.
func (c *Client) CancelUsage(ctx context.Context, request CancelRequest) (json.RawMessage, error) {
	var out json.RawMessage
	if !request.Valid() {
		return out, fmt.Errorf("amberflo: id, meterApiName, and ingestionTimeRange are required")
	}
	request.Type = "by_property_filter_out"
	err := c.call(ctx, http.MethodPost, "/ingest-snapshot/custom-filtering-rules", request, &out)
	return out, err
}

// call performs one API request with up to maxAttempts tries on server
// errors and transport failures. Client errors are returned immediately.
func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("amberflo: encode request: %w", err)
		}
		payload = encoded
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := c.once(ctx, method, path, payload, out)
		if err == nil {
			return nil
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Retryable() {
			return err
		}
		lastErr = err
		if ctx.Err() != nil {
			return lastErr
		}
	}
	return lastErr
}

func (c *Client) once(ctx context.Context, method, path string, payload []byte, out any) error {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("amberflo: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("amberflo: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	responseBody, err := decodeResponseBody(resp)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(responseBody)),
		}
	}

	if out == nil || len(responseBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(responseBody, out); err != nil {
		return fmt.Errorf("amberflo: decode response: %w", err)
	}
	return nil
}

// decodeResponseBody reads the body, decompressing it when the provider
// honored the gzip request.
func decodeResponseBody(resp *http.Response) ([]byte, error) {
	reader := resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("amberflo: open gzip body: %w", err)
		}
		defer gz.Close()
		reader = gz
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("amberflo: read response: %w", err)
	}
	return data, nil
}
