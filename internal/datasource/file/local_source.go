// Package file implements a local filesystem-backed data source and sink.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Local is a file on the local disk used as an input or an output.
type Local struct{ path string }

// NewLocal returns a Local bound to path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Path returns the bound filesystem path.
func (l *Local) Path() string { return l.path }

// Open opens the file for reading. A done ctx is reported before the
// filesystem is touched; filesystem errors name the path and keep the cause
// for errors.Is.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}

// Write creates the parent directories of the path, runs write against a
// temporary file next to it and renames the temporary file over the path when
// write succeeds. On any error the existing file is left untouched.
func (l *Local) Write(ctx context.Context, write func(w io.Writer) error) (err error) {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(l.path)+".*")
	if err != nil {
		return fmt.Errorf("create %s: %w", l.path, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return fmt.Errorf("write %s: %w", l.path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", l.path, err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", l.path, err)
	}
	if err = os.Rename(tmp.Name(), l.path); err != nil {
		return fmt.Errorf("rename %s: %w", l.path, err)
	}
	return nil
}
