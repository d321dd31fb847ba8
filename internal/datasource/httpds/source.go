package httpds

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/zeebo/xxh3"
)

// Source is one remote input.
type Source struct {
	client *Client
	url    string
}

// NewSource binds url to c (a default Client when nil).
func NewSource(c *Client, url string) *Source {
	if c == nil {
		c = NewClient(Config{MaxRetries: 3})
	}
	return &Source{client: c, url: url}
}

// URL returns the bound URL.
func (s *Source) URL() string { return s.url }

// Open GETs the URL and returns the body. Any status other than 2xx is an
// error.
func (s *Source) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := s.client.Get(ctx, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("httpds: GET %s: %w", s.url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("httpds: GET %s: %s", s.url, http.StatusText(resp.StatusCode))
	}
	return resp.Body, nil
}

// IsURL reports whether s names an http or https resource.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

var nonFileChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// CacheName derives a stable, filesystem-safe file name for rawURL: the
// cleaned last path segment followed by a short hash of the full URL, so
// different queries for the same path do not collide.
func CacheName(rawURL string) string {
	h := fmt.Sprintf("%016x", xxh3.HashString(rawURL))[:12]

	base := ""
	if u, err := url.Parse(rawURL); err == nil {
		base = nonFileChars.ReplaceAllString(path.Base(u.Path), "_")
	}
	if base == "" || base == "." || base == "_" {
		return h
	}
	ext := path.Ext(base)
	return strings.TrimSuffix(base, ext) + "-" + h + ext
}
