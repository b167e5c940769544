package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/logger"
)

// TokenStore persists the bearer token between invocations.
type TokenStore interface {
	Token() (string, error)
	SetToken(token string) error
	ClearToken() error
}

// MemoryTokenStore keeps the token in process memory only.
type MemoryTokenStore struct {
	token string
}

func (m *MemoryTokenStore) Token() (string, error)      { return m.token, nil }
func (m *MemoryTokenStore) SetToken(token string) error { m.token = token; return nil }
func (m *MemoryTokenStore) ClearToken() error           { m.token = ""; return nil }

// Client talks to the remote habit and planner service.
type Client struct {
	baseURL string
	http    *retryablehttp.Client
	tokens  TokenStore
}

type Option func(*Client)

// WithTokenStore sets where the bearer token is read from and written to.
func WithTokenStore(ts TokenStore) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

// WithRetryMax sets how many times a failed request is retried.
func WithRetryMax(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.http.RetryMax = n
		}
	}
}

// WithTimeout sets the per-attempt request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.HTTPClient.Timeout = d
		}
	}
}

// WithRetryWait bounds the backoff between retries.
func WithRetryWait(min, max time.Duration) Option {
	return func(c *Client) {
		c.http.RetryWaitMin = min
		c.http.RetryWaitMax = max
	}
}

type methodKey struct{}

func withMethod(ctx context.Context, method string) context.Context {
	return context.WithValue(ctx, methodKey{}, method)
}

// replayable reports whether the request carried by ctx may be sent again
// after the server has seen it. Requests built outside do are treated as unsafe.
func replayable(ctx context.Context) bool {
	method, _ := ctx.Value(methodKey{}).(string)
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete, http.MethodOptions:
		return true
	}
	return false
}

// retryPolicy applies retryablehttp's default policy to idempotent requests.
// POST and PATCH (creates and completion toggles) are only retried when the
// connection could not be opened.
func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if replayable(ctx) {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	var opErr *net.OpError
	if resp == nil && errors.As(err, &opErr) && opErr.Op == "dial" {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	return false, nil
}

// New creates a client for the service rooted at serverURL.
// The /api prefix is appended automatically.
func New(serverURL string, opts ...Option) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = constants.DefaultRetryMax
	rc.RetryWaitMin = constants.DefaultRetryWaitMin
	rc.RetryWaitMax = constants.DefaultRetryWaitMax
	rc.HTTPClient.Timeout = time.Duration(constants.DefaultRequestTimeoutSec) * time.Second
	rc.Logger = logger.Leveled()
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.CheckRetry = retryPolicy

	c := &Client{
		baseURL: strings.TrimRight(serverURL, "/") + constants.APIPathPrefix,
		http:    rc,
		tokens:  &MemoryTokenStore{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the resolved API root, including the /api prefix.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HasToken reports whether a bearer token is currently stored.
func (c *Client) HasToken() bool {
	token, err := c.tokens.Token()
	return err == nil && token != ""
}

// do sends one request and decodes a 2xx body into out when out is non-nil.
// Any "token" field in a successful body is persisted; a 401 clears the
// stored token.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var raw interface{}
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		raw = buf
	}

	req, err := retryablehttp.NewRequestWithContext(withMethod(ctx, method), method, c.baseURL+path, raw)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(constants.RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rlog := logger.Request(method, path, requestID)
	token, err := c.tokens.Token()
	if err != nil {
		rlog.Warn("Failed to read stored token", "error", err)
	} else if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		rlog.Failed(err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	rlog.Done(resp.StatusCode)

	data, err := io.ReadAll(io.LimitReader(resp.Body, constants.MaxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if err := c.tokens.ClearToken(); err != nil {
			rlog.Warn("Failed to clear token after 401", "error", err)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(data) > constants.MaxErrorBodyBytes {
			data = data[:constants.MaxErrorBodyBytes]
		}
		return newAPIError(resp.StatusCode, data, requestID)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	c.captureToken(data)

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) captureToken(data []byte) {
	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.Token == "" {
		return
	}
	if err := c.tokens.SetToken(payload.Token); err != nil {
		logger.Warn("Failed to store token", "error", err)
	}
}
