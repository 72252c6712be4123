// Package storage defines the object storage boundary. The S3 implementation
// works with any S3-compatible provider; swap the concrete type injected at
// startup to change backends.
package storage

import (
	"context"
	"io"
)

// ObjectStore is the interface for persisting uploaded files.
type ObjectStore interface {
	// Upload streams data to the store under the given key.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// Delete removes an object identified by key.
	Delete(ctx context.Context, key string) error
	// PublicURL constructs the browser-accessible URL for a given key.
	PublicURL(key string) string
}
