package httpds

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func fastClient(retries int) *Client {
	return NewClient(Config{
		MaxRetries:     retries,
		Timeout:        2 * time.Second,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	})
}

// TestNewClient_Defaults verifies zero-value defaults and TLS wiring.
func TestNewClient_Defaults(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{InsecureSkipVerify: true})
	if c.httpClient.Timeout != 30*time.Second || c.maxRetries != 0 {
		t.Fatalf("timeout=%v retries=%d, want 30s and 0", c.httpClient.Timeout, c.maxRetries)
	}
	if c.initialBackoff != 200*time.Millisecond || c.maxBackoff != 5*time.Second {
		t.Fatalf("backoff = %v..%v", c.initialBackoff, c.maxBackoff)
	}
	tr, ok := c.httpClient.Transport.(*http.Transport)
	if !ok || tr.TLSClientConfig == nil || !tr.TLSClientConfig.InsecureSkipVerify {
		t.Fatalf("transport = %#v, want InsecureSkipVerify", c.httpClient.Transport)
	}
}

// TestDo_RetriesTransientStatuses serves 503, 429 and then 200 and expects a
// single successful response after three attempts.
func TestDo_RetriesTransientStatuses(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1:
			w.WriteHeader(http.StatusServiceUnavailable)
		case 2:
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			if got := r.Header.Get("X-Test"); got != "yes" {
				t.Errorf("X-Test = %q, want yes", got)
			}
			_, _ = io.WriteString(w, "ok")
		}
	}))
	defer srv.Close()

	resp, err := fastClient(3).Get(context.Background(), srv.URL, http.Header{"X-Test": {"yes"}})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || atomic.LoadInt32(&hits) != 3 {
		t.Fatalf("status=%d hits=%d, want 200 after 3", resp.StatusCode, hits)
	}
}

func TestDo_GivesUpAfterMaxRetries(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := fastClient(2).Get(context.Background(), srv.URL, nil)
	if err == nil || !strings.Contains(err.Error(), "retryable status 502") {
		t.Fatalf("err = %v, want retryable status 502", err)
	}
	if got := atomic.LoadInt32(&hits); got != 3 {
		t.Fatalf("hits = %d, want 3", got)
	}
}

func TestDo_InvalidArgsAndCancelledContext(t *testing.T) {
	t.Parallel()

	c := fastClient(0)
	if _, err := c.Do(context.Background(), "", "http://x", nil, nil); err == nil {
		t.Fatalf("empty method: error = nil")
	}
	if _, err := c.Do(context.Background(), http.MethodGet, "", nil, nil); err == nil {
		t.Fatalf("empty url: error = nil")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Get(ctx, "http://127.0.0.1:1", nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled ctx: err = %v, want context.Canceled", err)
	}
}

func TestBackoffDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{3, 500 * time.Millisecond},
		{40, 500 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := backoffDuration(100*time.Millisecond, tt.attempt, 500*time.Millisecond); got != tt.want {
			t.Errorf("backoffDuration(attempt=%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestSleepWithContext_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepWithContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
