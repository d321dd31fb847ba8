package httpds

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSource_Open(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.csv" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, "user_id,country\n1,US\n")
	}))
	defer srv.Close()

	rc, err := NewSource(fastClient(0), srv.URL+"/users.csv").Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	b, err := io.ReadAll(rc)
	rc.Close()
	if err != nil || !strings.HasPrefix(string(b), "user_id,country") {
		t.Fatalf("body = %q, err = %v", b, err)
	}

	_, err = NewSource(fastClient(0), srv.URL+"/missing.csv").Open(context.Background())
	if err == nil || !strings.Contains(err.Error(), "Not Found") {
		t.Fatalf("Open(missing) error = %v, want Not Found", err)
	}
}

func TestIsURL(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]bool{
		"https://example.com/orders.csv": true,
		"http://localhost:8080/u.csv":    true,
		"orders.csv":                     false,
		"/data/raw/orders.csv":           false,
		"ftp://example.com/orders.csv":   false,
	} {
		if got := IsURL(in); got != want {
			t.Errorf("IsURL(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestCacheName(t *testing.T) {
	t.Parallel()

	a := CacheName("https://example.com/exports/orders.csv?day=1")
	b := CacheName("https://example.com/exports/orders.csv?day=2")
	if a == b {
		t.Fatalf("CacheName collides for different queries: %q", a)
	}
	if !strings.HasPrefix(a, "orders-") || !strings.HasSuffix(a, ".csv") {
		t.Fatalf("CacheName = %q, want orders-<hash>.csv", a)
	}
	if CacheName("https://example.com/exports/orders.csv?day=1") != a {
		t.Fatalf("CacheName not stable")
	}
	if got := CacheName("https://example.com/"); len(got) != 12 || strings.ContainsAny(got, "/:") {
		t.Fatalf("CacheName(root) = %q, want a bare hash", got)
	}
}
