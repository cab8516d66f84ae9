// Package backend provides the HTTP client for the BaseKit API. Constructing
// a client performs no network I/O; the lifecycle coordinator decides when a
// connection attempt actually happens.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/basekit-labs/basekit-mcp/internal/config"
)

// Client is a BaseKit API client. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger

	mu      sync.RWMutex
	token   string
	headers map[string]string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Used by tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHeaders sets custom headers applied to every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		c.SetHeaders(headers)
	}
}

// Dial creates a client for the given base URL. No connection is opened;
// the first request happens when a method is called.
func Dial(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("backend URL %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  slog.Default(),
		headers: make(map[string]string),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		rc := retryablehttp.NewClient()
		rc.RetryMax = config.DefaultBackendRetryMax
		rc.HTTPClient.Timeout = config.DefaultBackendRequestTimeout
		rc.Logger = nil
		c.http = rc.StandardClient()
	}

	return c, nil
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetHeaders replaces the custom headers applied to every request.
func (c *Client) SetHeaders(headers map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers = make(map[string]string, len(headers))
	for k, v := range headers {
		c.headers[k] = v
	}
}

// Authenticated reports whether an admin token is held.
func (c *Client) Authenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

// Health probes backend liveness.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", nil, nil)
}

// authResponse is the wire shape of an admin authentication response.
type authResponse struct {
	Token string `json:"token"`
}

// AuthWithPassword authenticates as an admin and stores the resulting token
// for subsequent requests.
func (c *Client) AuthWithPassword(ctx context.Context, identity, secret string) error {
	body := map[string]string{
		"identity": identity,
		"password": secret,
	}

	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/api/admins/auth-with-password", body, &resp); err != nil {
		return err
	}
	if resp.Token == "" {
		return fmt.Errorf("authentication response contained no token")
	}

	c.mu.Lock()
	c.token = resp.Token
	c.mu.Unlock()

	return nil
}

// Record is a single backend record. Field names are collection-defined.
type Record map[string]any

// ID returns the record identifier, if present.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// RecordList is a paginated record listing.
type RecordList struct {
	Page       int      `json:"page"`
	PerPage    int      `json:"perPage"`
	TotalItems int      `json:"totalItems"`
	Items      []Record `json:"items"`
}

// ListOptions narrows a record listing.
type ListOptions struct {
	Page    int
	PerPage int
	Filter  string
	Sort    string
}

// ListRecords returns records from a collection.
func (c *Client) ListRecords(ctx context.Context, collection string, opts ListOptions) (*RecordList, error) {
	if collection == "" {
		return nil, fmt.Errorf("collection name cannot be empty")
	}

	q := url.Values{}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PerPage > 0 {
		q.Set("perPage", strconv.Itoa(opts.PerPage))
	}
	if opts.Filter != "" {
		q.Set("filter", opts.Filter)
	}
	if opts.Sort != "" {
		q.Set("sort", opts.Sort)
	}

	path := "/api/collections/" + url.PathEscape(collection) + "/records"
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}

	var list RecordList
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetRecord returns a single record by ID.
func (c *Client) GetRecord(ctx context.Context, collection, id string) (Record, error) {
	if collection == "" || id == "" {
		return nil, fmt.Errorf("collection and record ID cannot be empty")
	}

	var rec Record
	path := "/api/collections/" + url.PathEscape(collection) + "/records/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodGet, path, nil, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// CreateRecord creates a record in a collection.
func (c *Client) CreateRecord(ctx context.Context, collection string, data map[string]any) (Record, error) {
	if collection == "" {
		return nil, fmt.Errorf("collection name cannot be empty")
	}

	var rec Record
	path := "/api/collections/" + url.PathEscape(collection) + "/records"
	if err := c.do(ctx, http.MethodPost, path, data, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// UpdateRecord applies a partial update to a record.
func (c *Client) UpdateRecord(ctx context.Context, collection, id string, data map[string]any) (Record, error) {
	if collection == "" || id == "" {
		return nil, fmt.Errorf("collection and record ID cannot be empty")
	}

	var rec Record
	path := "/api/collections/" + url.PathEscape(collection) + "/records/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodPatch, path, data, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// DeleteRecord removes a record.
func (c *Client) DeleteRecord(ctx context.Context, collection, id string) error {
	if collection == "" || id == "" {
		return fmt.Errorf("collection and record ID cannot be empty")
	}

	path := "/api/collections/" + url.PathEscape(collection) + "/records/" + url.PathEscape(id)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// Collection describes a backend collection.
type Collection struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// collectionList is the wire shape of a collection listing.
type collectionList struct {
	Items []Collection `json:"items"`
}

// ListCollections returns the backend's collection catalog.
func (c *Client) ListCollections(ctx context.Context) ([]Collection, error) {
	var list collectionList
	if err := c.do(ctx, http.MethodGet, "/api/collections", nil, &list); err != nil {
		return nil, err
	}
	return list.Items, nil
}

// APIError is a non-2xx backend response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// do executes one request against the backend, applying custom headers and
// the admin token when held. out may be nil for responses without a body.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mu.RLock()
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if c.token != "" {
		req.Header.Set("Authorization", c.token)
	}
	c.mu.RUnlock()

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := readErrorMessage(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}

// errorResponse is the wire shape of a backend error body.
type errorResponse struct {
	Message string `json:"message"`
}

func readErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return "no error detail"
	}

	var er errorResponse
	if json.Unmarshal(data, &er) == nil && er.Message != "" {
		return er.Message
	}
	return string(data)
}
