// Package media holds the blob stores behind uploaded files.
package media

import (
	"context"
	"errors"
	"io"

	"go.opentelemetry.io/otel"
)

var tracer = otel.GetTracerProvider().Tracer("eventsite/internal/storage/media")

var ErrNotFound = errors.New("media object not found")

// Object is a stored blob. The caller closes Body.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

type Store interface {
	Put(ctx context.Context, name, contentType string, r io.Reader) (int64, error)
	Get(ctx context.Context, name string) (Object, error)
	Delete(ctx context.Context, name string) error
	Close(ctx context.Context) error
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
