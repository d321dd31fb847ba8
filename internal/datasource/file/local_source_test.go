package file

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalOpen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	orders := filepath.Join(dir, "orders.csv")
	if err := os.WriteFile(orders, []byte("order_id\nA\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name    string
		path    string
		ctx     context.Context
		wantErr error
		want    string
	}{
		{name: "reads file", path: orders, ctx: context.Background(), want: "order_id\nA\n"},
		{name: "missing file", path: filepath.Join(dir, "users.csv"), ctx: context.Background(), wantErr: os.ErrNotExist},
		{name: "cancelled context", path: orders, ctx: cancelled, wantErr: context.Canceled},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rc, err := NewLocal(tt.path).Open(tt.ctx)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) || rc != nil {
					t.Fatalf("Open() = (%v, %v), want (nil, %v)", rc, err, tt.wantErr)
				}
				if tt.wantErr == os.ErrNotExist && !strings.Contains(err.Error(), tt.path) {
					t.Fatalf("error %q does not name the path", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer rc.Close()
			got, err := io.ReadAll(rc)
			if err != nil || string(got) != tt.want {
				t.Fatalf("read = %q (err %v), want %q", got, err, tt.want)
			}
		})
	}
}

func TestLocalWrite_CreatesDirsAndOverwrites(t *testing.T) {
	t.Parallel()

	p := filepath.Join(t.TempDir(), "a", "b", "out.txt")
	dst := NewLocal(p)
	ctx := context.Background()

	for _, payload := range []string{"first version", "second"} {
		payload := payload
		if err := dst.Write(ctx, func(w io.Writer) error {
			_, err := io.WriteString(w, payload)
			return err
		}); err != nil {
			t.Fatalf("Write(%q): %v", payload, err)
		}
		got, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		if string(got) != payload {
			t.Fatalf("content = %q, want %q", got, payload)
		}
	}
}

func TestLocalWrite_FailureKeepsPreviousFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := filepath.Join(dir, "out.txt")
	if err := os.WriteFile(p, []byte("old"), 0o644); err != nil {
		t.Fatalf("write test file: %v", err)
	}
	boom := errors.New("boom")
	err := NewLocal(p).Write(context.Background(), func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Write error = %v, want %v", err, boom)
	}
	got, _ := os.ReadFile(p)
	if string(got) != "old" {
		t.Fatalf("content = %q, want old", got)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("temporary file left behind: %v", entries)
	}
}
