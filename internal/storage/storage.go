package storage

import (
	"context"
	"io"
)

// ObjectStore is the blob storage contract the pipelines depend on.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}
