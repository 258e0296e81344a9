// Package uicode is the Go client for the uicode marketplace API. It
// handles session persistence through a TokenStore, attaches the bearer
// token to authenticated calls and maps API failures onto sentinel
// errors.
package uicode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Client talks to one uicode server. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore

	mu      sync.RWMutex
	current *User // resolved identity, nil while anonymous
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTokenStore replaces the in-memory default, typically with a
// FileTokenStore so sessions survive restarts.
func WithTokenStore(s TokenStore) Option {
	return func(c *Client) { c.tokens = s }
}

// New builds a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		tokens:  NewMemoryTokenStore(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TokenStore exposes the store backing this client.
func (c *Client) TokenStore() TokenStore { return c.tokens }

// CurrentUser returns the resolved identity, or nil while anonymous.
// Purely local: Login, Resolve or RefreshSession establish it, Logout
// and a rejected bearer token drop it.
func (c *Client) CurrentUser() *User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return nil
	}
	u := *c.current
	return &u
}

func (c *Client) setCurrent(u *User) {
	c.mu.Lock()
	c.current = u
	c.mu.Unlock()
}

// do runs one request. When auth is set the stored access token rides
// along as a bearer header, and a 401 answer clears the store: the
// server has declared the session dead and keeping the token would only
// repeat the failure.
func (c *Client) do(ctx context.Context, method, path string, contentType string, body io.Reader, auth bool, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if auth {
		creds, err := c.tokens.Load()
		if err != nil {
			return fmt.Errorf("load credentials: %w", err)
		}
		if creds.AccessToken != "" {
			req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.apiError(resp, auth)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// doJSON marshals body as a JSON request.
func (c *Client) doJSON(ctx context.Context, method, path string, body any, auth bool, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(data)
	}
	return c.do(ctx, method, path, "application/json", rd, auth, out)
}

func (c *Client) apiError(resp *http.Response, auth bool) error {
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&payload)

	if auth && resp.StatusCode == http.StatusUnauthorized {
		_ = c.tokens.Clear()
		c.setCurrent(nil)
	}
	return &APIError{
		Status:  resp.StatusCode,
		Message: payload.Error,
		kind:    kindFor(resp.StatusCode),
	}
}
