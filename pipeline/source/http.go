package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// HTTP fetches product data from a JSON endpoint via GET.
//
// Example usage:
//
//	src := source.NewHTTP("https://catalog.example.com/products/42")
//	raw, err := src.Fetch(ctx)
//	if err != nil {
//	    return err
//	}
//	outputs, err := orch.ExecutePipeline(ctx, raw)
type HTTP struct {
	url    string
	client *http.Client
}

// NewHTTP returns a source fetching from the given URL with the
// default HTTP client. Timeouts are handled via the Fetch context.
func NewHTTP(url string) *HTTP {
	return NewHTTPWithClient(url, nil)
}

// NewHTTPWithClient returns a source using a caller-supplied client.
// A nil client falls back to http.DefaultClient.
func NewHTTPWithClient(url string, client *http.Client) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{url: url, client: client}
}

// Fetch executes the GET request and decodes the JSON body.
//
// Returns an error for any non-200 status; the body is only decoded
// on success.
func (h *HTTP) Fetch(ctx context.Context) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", h.url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse response from %s: %w", h.url, err)
	}
	return raw, nil
}
