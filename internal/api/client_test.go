package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
)

// newTestClient starts a server with handler and returns a client pointed at it
// with fast retries and an in-memory token store.
func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Client, *MemoryTokenStore) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tokens := &MemoryTokenStore{}
	base := []Option{
		WithTokenStore(tokens),
		WithRetryWait(time.Millisecond, 5*time.Millisecond),
		WithRetryMax(0),
	}
	return New(srv.URL, append(base, opts...)...), tokens
}

func TestNewAppendsAPIPrefix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "https://example.com", want: "https://example.com/api"},
		{in: "https://example.com/", want: "https://example.com/api"},
		{in: "http://localhost:5000", want: "http://localhost:5000/api"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := New(tt.in).BaseURL(); got != tt.want {
				t.Errorf("BaseURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequestHeaders(t *testing.T) {
	var gotAuth, gotRequestID, gotContentType string
	client, tokens := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(`{}`))
	})
	_ = tokens.SetToken("secret")

	if err := client.do(context.Background(), http.MethodPost, "/ping", map[string]string{"a": "b"}, nil); err != nil {
		t.Fatalf("do() error = %v", err)
	}

	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer secret")
	}
	if gotRequestID == "" {
		t.Error("X-Request-ID header not set")
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotContentType)
	}
}

func TestRequestIDIsLogged(t *testing.T) {
	prev := logger.Logger
	t.Cleanup(func() { logger.Logger = prev })
	var buf bytes.Buffer
	logger.Logger = log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

	var gotRequestID string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get("X-Request-ID")
		w.WriteHeader(http.StatusNotFound)
	})

	err := client.ToggleHabitCompletion(context.Background(), "h1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("ToggleHabitCompletion() error = %v, want APIError", err)
	}
	if apiErr.RequestID != gotRequestID {
		t.Errorf("APIError.RequestID = %q, want %q", apiErr.RequestID, gotRequestID)
	}
	out := buf.String()
	for _, want := range []string{"request_id=" + gotRequestID, "method=PATCH", "status=404"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestNoAuthorizationWithoutToken(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "" {
			t.Errorf("Authorization = %q, want empty", auth)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	if err := client.do(context.Background(), http.MethodGet, "/ping", nil, nil); err != nil {
		t.Fatalf("do() error = %v", err)
	}
}

func TestResponseTokenIsStored(t *testing.T) {
	client, tokens := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":"fresh","habits":[]}`))
	})

	if _, err := client.GetAllHabits(context.Background()); err != nil {
		t.Fatalf("GetAllHabits() error = %v", err)
	}
	if got, _ := tokens.Token(); got != "fresh" {
		t.Errorf("stored token = %q, want %q", got, "fresh")
	}
}

func TestUnauthorizedClearsToken(t *testing.T) {
	client, tokens := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Not authorized, token failed"}`))
	})
	_ = tokens.SetToken("stale")

	_, err := client.GetAllHabits(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("GetAllHabits() error = %v, want ErrUnauthorized", err)
	}
	if client.HasToken() {
		t.Error("token still stored after 401")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error %v is not *APIError", err)
	}
	if apiErr.Message != "Not authorized, token failed" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestAPIErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantMsg  string
		notFound bool
	}{
		{name: "message field", status: 400, body: `{"message":"Name is required"}`, wantMsg: "api: Name is required (status 400)"},
		{name: "error field", status: 409, body: `{"error":"duplicate"}`, wantMsg: "api: duplicate (status 409)"},
		{name: "not json", status: 502, body: `<html>bad gateway</html>`, wantMsg: "api: bad gateway (status 502)"},
		{name: "not found", status: 404, body: ``, wantMsg: "api: not found (status 404)", notFound: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			err := client.DeleteHabit(context.Background(), "h1")
			if err == nil {
				t.Fatal("DeleteHabit() expected error")
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error %v is not *APIError", err)
			}
			if got := apiErr.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if IsNotFound(err) != tt.notFound {
				t.Errorf("IsNotFound() = %v, want %v", IsNotFound(err), tt.notFound)
			}
			if errors.Is(err, ErrUnauthorized) {
				t.Error("non-401 error matched ErrUnauthorized")
			}
		})
	}
}

func TestRetriesServerErrors(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"habits":[{"_id":"h1","name":"Read"}]}`))
	}, WithRetryMax(3))

	habits, err := client.GetAllHabits(context.Background())
	if err != nil {
		t.Fatalf("GetAllHabits() error = %v", err)
	}
	if len(habits) != 1 {
		t.Errorf("len(habits) = %d, want 1", len(habits))
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("server calls = %d, want 3", got)
	}
}

func TestRetriesExhaustedReturnsAPIError(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"boom"}`))
	}, WithRetryMax(2))

	_, err := client.GetAllHabits(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("GetAllHabits() error = %v, want 500 APIError", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("server calls = %d, want 3", got)
	}
}

func TestWritesAreNotRetriedAfterServerResponds(t *testing.T) {
	tests := []struct {
		name string
		call func(*Client) error
	}{
		{name: "toggle habit", call: func(c *Client) error { return c.ToggleHabitCompletion(context.Background(), "h1") }},
		{name: "toggle task", call: func(c *Client) error { return c.ToggleTaskCompletion(context.Background(), "t1") }},
		{name: "create habit", call: func(c *Client) error {
			_, err := c.CreateHabit(context.Background(), models.Habit{Name: "Read"})
			return err
		}},
		{name: "create task", call: func(c *Client) error {
			_, err := c.CreateTask(context.Background(), models.Task{Title: "Write"})
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(http.StatusServiceUnavailable)
			}, WithRetryMax(3))

			err := tt.call(client)
			var apiErr *APIError
			if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusServiceUnavailable {
				t.Fatalf("error = %v, want 503 APIError", err)
			}
			if got := atomic.LoadInt32(&calls); got != 1 {
				t.Errorf("server calls = %d, want 1", got)
			}
		})
	}
}

func TestIdempotentWritesAreRetried(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}, WithRetryMax(3))

	if err := client.DeleteHabit(context.Background(), "h1"); err != nil {
		t.Fatalf("DeleteHabit() error = %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("server calls = %d, want 2", got)
	}
}

func TestRetryPolicy(t *testing.T) {
	refused := &url.Error{Op: "Patch", URL: "http://localhost", Err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}}
	reset := &url.Error{Op: "Patch", URL: "http://localhost", Err: &net.OpError{Op: "read", Net: "tcp", Err: errors.New("connection reset by peer")}}
	unavailable := &http.Response{StatusCode: http.StatusServiceUnavailable}
	tooMany := &http.Response{StatusCode: http.StatusTooManyRequests}

	tests := []struct {
		name   string
		method string
		resp   *http.Response
		err    error
		want   bool
	}{
		{name: "get on 503", method: http.MethodGet, resp: unavailable, want: true},
		{name: "get on 429", method: http.MethodGet, resp: tooMany, want: true},
		{name: "delete on 503", method: http.MethodDelete, resp: unavailable, want: true},
		{name: "get on reset", method: http.MethodGet, err: reset, want: true},
		{name: "patch on 503", method: http.MethodPatch, resp: unavailable, want: false},
		{name: "post on 429", method: http.MethodPost, resp: tooMany, want: false},
		{name: "patch on reset", method: http.MethodPatch, err: reset, want: false},
		{name: "patch on refused", method: http.MethodPatch, err: refused, want: true},
		{name: "post on refused", method: http.MethodPost, err: refused, want: true},
		{name: "unknown method", method: "", resp: unavailable, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := retryPolicy(withMethod(context.Background(), tt.method), tt.resp, tt.err)
			if err != nil {
				t.Fatalf("retryPolicy() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("retryPolicy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRetryPolicyStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(withMethod(context.Background(), http.MethodGet))
	cancel()

	retry, err := retryPolicy(ctx, &http.Response{StatusCode: http.StatusServiceUnavailable}, nil)
	if retry || !errors.Is(err, context.Canceled) {
		t.Errorf("retryPolicy() = %v, %v, want false, context.Canceled", retry, err)
	}
}

func TestContextCanceled(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"habits":[]}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.GetAllHabits(ctx); err == nil {
		t.Error("GetAllHabits() with canceled context expected error")
	}
}
