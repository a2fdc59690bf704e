// Package storage defines the interface for object storage operations.
// The MinIO implementation works with any S3-compatible provider, so the
// concrete type injected at startup is the only place a provider choice
// appears.
package storage

import (
	"context"
	"io"
)

// Storage is the interface for uploading and removing stored objects.
// The key doubles as the deletion handle: whatever Upload was given must
// later be accepted by Delete.
type Storage interface {
	// Upload streams data to the store under the given key.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// Delete removes the object identified by key.
	Delete(ctx context.Context, key string) error
	// PublicURL constructs the browser-accessible URL for a given key.
	PublicURL(key string) string
}
