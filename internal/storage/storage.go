package storage

import (
	"context"
	"io"
)

// ObjectStorage is the avatar store contract: put an object under a key
// and resolve the public URL it will be served from.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	URL(key string) string
}
