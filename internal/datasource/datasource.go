package datasource

import (
	"context"
	"io"
)

// Source yields the bytes of one input.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Sink receives the bytes of one output. write is called once; the output is
// replaced only when it returns nil.
type Sink interface {
	Write(ctx context.Context, write func(w io.Writer) error) error
}
