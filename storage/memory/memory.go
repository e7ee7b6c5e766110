// Package memory is a process-local storage backend. Objects live in a map
// and vanish with the process; it backs tests and demo runs without S3.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderMemory, func(_ storage.Config, _ *logger.Logger) (storage.Storage, error) {
		return New(), nil
	})
}

type object struct {
	data        []byte
	contentType string
	modTime     time.Time
}

// Storage implements storage.Storage and storage.SignedURLProvider in memory.
type Storage struct {
	mu      sync.RWMutex
	objects map[string]*object
}

var (
	_ storage.Storage           = (*Storage)(nil)
	_ storage.SignedURLProvider = (*Storage)(nil)
)

// New creates an empty in-memory store.
func New() *Storage {
	return &Storage{objects: make(map[string]*object)}
}

// Upload stores the reader's content under path.
func (s *Storage) Upload(ctx context.Context, path string, reader io.Reader) error {
	return s.UploadWithType(ctx, path, reader, "")
}

// UploadWithType stores the reader's content under path with a media type.
func (s *Storage) UploadWithType(_ context.Context, path string, reader io.Reader, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("storage: read upload data: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path] = &object{data: data, contentType: contentType, modTime: time.Now()}
	return nil
}

// Download returns a reader over a copy of the object.
func (s *Storage) Download(_ context.Context, path string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, path)
	}
	return io.NopCloser(bytes.NewReader(bytes.Clone(obj.data))), nil
}

// Delete removes the object. Missing objects are not an error.
func (s *Storage) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, path)
	return nil
}

// Exists reports whether an object is stored under path.
func (s *Storage) Exists(_ context.Context, path string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[path]
	return ok, nil
}

// URL returns a mem:// URL for path.
func (s *Storage) URL(_ context.Context, path string) (string, error) {
	return (&url.URL{Scheme: "mem", Path: "/" + path}).String(), nil
}

// SignedURL returns the mem:// URL with the expiry as a query parameter.
func (s *Storage) SignedURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	u, _ := s.URL(ctx, path)
	return fmt.Sprintf("%s?expires=%d", u, int(expiry.Seconds())), nil
}

// List returns metadata for all objects whose path starts with prefix.
func (s *Storage) List(_ context.Context, prefix string) ([]storage.FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []storage.FileInfo
	for path, obj := range s.objects {
		if strings.HasPrefix(path, prefix) {
			result = append(result, storage.FileInfo{
				Path:         path,
				Size:         int64(len(obj.data)),
				LastModified: obj.modTime,
				ContentType:  obj.contentType,
			})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Path < result[j].Path })
	return result, nil
}

// Len returns the number of stored objects.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
