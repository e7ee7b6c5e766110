package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is wrapped by Download when the key holds no object.
var ErrNotFound = errors.New("storage: object not found")

// FileInfo describes a stored object.
type FileInfo struct {
	Path         string
	Size         int64
	LastModified time.Time
	ContentType  string
}

// Storage is a flat key/object store. Keys use forward slashes on every
// backend.
type Storage interface {
	Upload(ctx context.Context, path string, reader io.Reader) error
	// UploadWithType records contentType on backends that keep one.
	UploadWithType(ctx context.Context, path string, reader io.Reader, contentType string) error
	// Download returns the object body. Callers close it.
	Download(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete succeeds when the object is already gone.
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
	// URL is the unsigned address of the object.
	URL(ctx context.Context, path string) (string, error)
	// List returns objects whose key starts with prefix, sorted by key.
	List(ctx context.Context, prefix string) ([]FileInfo, error)
}

// SignedURLProvider is implemented by backends that can hand out
// time-limited links to private objects.
type SignedURLProvider interface {
	SignedURL(ctx context.Context, path string, expiry time.Duration) (string, error)
}
