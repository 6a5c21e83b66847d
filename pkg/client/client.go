// Package client is a Go SDK for the tbeauty backend API.
//
// Every call takes an explicit Session. Calls that would break a known
// lifecycle rule are rejected locally with an *IllegalTransitionError before
// any request is sent. Failed requests surface as *APIError. Nothing is
// retried automatically.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Session identifies the caller of a request
type Session struct {
	// Token is sent as a bearer token when set
	Token string
	// ActorID and ActorName are sent as headers when no token is set
	ActorID   string
	ActorName string
}

// Client talks to one backend instance
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	apiVersion string
	userAgent  string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithAPIVersion sets the version segment of /api/<version>
func WithAPIVersion(version string) Option {
	return func(c *Client) {
		c.apiVersion = version
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a client for the API served at baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}

	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    u,
		apiVersion: "v1",
		userAgent:  "tbeauty-client/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *errorBody      `json:"error"`
}

type errorBody struct {
	Code      string       `json:"code"`
	Message   string       `json:"message"`
	RequestID string       `json:"request_id"`
	Details   []FieldError `json:"details"`
}

// do sends req and returns the payload, unwrapped from the envelope when
// the server sent one
func (c *Client) do(ctx context.Context, s Session, req request) (json.RawMessage, error) {
	u := c.buildURL(req.path, req.query)

	var body io.Reader
	if req.body != nil {
		raw, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	setSession(httpReq, s)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, networkError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkError(err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, newAPIError(resp.StatusCode, raw)
	}
	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	return unwrap(raw), nil
}

func (c *Client) buildURL(path string, query url.Values) *url.URL {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/api/" + c.apiVersion + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return &u
}

func setSession(req *http.Request, s Session) {
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
		return
	}
	if s.ActorID != "" {
		req.Header.Set("X-User-ID", s.ActorID)
	}
	if s.ActorName != "" {
		req.Header.Set("X-User-Name", s.ActorName)
	}
}

// unwrap returns the data member of an envelope, or raw itself
func unwrap(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return trimmed
	}
	if _, ok := fields["success"]; !ok {
		return trimmed
	}
	return fields["data"]
}

func decodeInto(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return errors.New("empty response body")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// Page is one page of a list endpoint
type Page[T any] struct {
	Items []T
	Total int64
}

// decodeList accepts a bare array or an object holding the rows under key
// with an optional total
func decodeList[T any](raw json.RawMessage, key string) (*Page[T], error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return &Page[T]{Items: []T{}}, nil
	}

	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decoding list: %w", err)
		}
		return &Page[T]{Items: items, Total: int64(len(items))}, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, fmt.Errorf("decoding list: %w", err)
	}
	rows, ok := obj[key]
	if !ok {
		return nil, fmt.Errorf("decoding list: missing %q", key)
	}
	page := &Page[T]{}
	if err := json.Unmarshal(rows, &page.Items); err != nil {
		return nil, fmt.Errorf("decoding list: %w", err)
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	page.Total = int64(len(page.Items))
	if total, ok := obj["total"]; ok {
		if err := json.Unmarshal(total, &page.Total); err != nil {
			return nil, fmt.Errorf("decoding list total: %w", err)
		}
	}
	return page, nil
}

func pageQuery(q url.Values, page, size int) url.Values {
	if page > 0 {
		q.Set("page", fmt.Sprint(page))
	}
	if size > 0 {
		q.Set("size", fmt.Sprint(size))
	}
	return q
}
