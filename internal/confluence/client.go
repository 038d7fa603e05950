// Package confluence is an HTTP client for the Confluence content REST API,
// covering the single-page read and write exchanges the editor needs.
package confluence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// readExpand names the sub-resources a pull needs in one round trip.
const readExpand = "body.storage,space,version"

// Client is a Confluence REST API client.
type Client struct {
	baseURL    string
	username   string
	apiToken   string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client. Timeout policy lives on
// the supplied client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a client for the store at baseURL. Credentials are sent
// as basic auth on every request; pass empty strings for anonymous access.
func NewClient(baseURL, username, apiToken string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		apiToken: apiToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetPage fetches a page by ID with body, space, and version expanded.
func (c *Client) GetPage(ctx context.Context, id string) (*Page, error) {
	endpoint := fmt.Sprintf("%s/rest/api/content/%s?expand=%s", c.baseURL, url.PathEscape(id), url.QueryEscape(readExpand))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	return c.doPage(req)
}

// UpdatePage submits a full page representation. The store accepts the write
// only if upd.Version.Number matches the version it expects next.
func (c *Client) UpdatePage(ctx context.Context, id string, upd *PageUpdate) (*Page, error) {
	body, err := json.Marshal(upd)
	if err != nil {
		return nil, fmt.Errorf("marshal page: %w", err)
	}

	endpoint := fmt.Sprintf("%s/rest/api/content/%s", c.baseURL, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doPage(req)
}

// doPage executes a request whose success response is a page representation.
func (c *Client) doPage(req *http.Request) (*Page, error) {
	if c.username != "" || c.apiToken != "" {
		req.SetBasicAuth(c.username, c.apiToken)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apiError(resp.StatusCode, respBody)
	}

	var page Page
	if err := json.Unmarshal(respBody, &page); err != nil {
		return nil, fmt.Errorf("unmarshal page: %w", err)
	}

	return &page, nil
}

// apiError decodes the store's structured error body, falling back to the
// raw text when the body is not the expected JSON shape.
func apiError(status int, body []byte) *APIError {
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		if apiErr.StatusCode == 0 {
			apiErr.StatusCode = status
		}
		return &apiErr
	}
	return &APIError{
		StatusCode: status,
		Message:    strings.TrimSpace(string(body)),
	}
}
