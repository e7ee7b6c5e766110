// Package local is a filesystem storage backend for development. Objects
// are files under a base directory and URLs are file:// URLs.
package local

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderLocal, func(cfg storage.Config, _ *logger.Logger) (storage.Storage, error) {
		return NewStorage(cfg.BasePath)
	})
}

// Storage keeps objects as files under one directory. All file access goes
// through an os.Root, so keys cannot reach outside it.
type Storage struct {
	dir  string
	root *os.Root
}

// NewStorage opens (creating if needed) the base directory.
func NewStorage(basePath string) (*Storage, error) {
	dir, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve base path: %w", err)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("storage: create base directory: %w", err)
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("storage: open base directory: %w", err)
	}
	return &Storage{dir: dir, root: root}, nil
}

// Close releases the base directory handle.
func (s *Storage) Close() error {
	return s.root.Close()
}

// name turns a key into a root-relative file name. Leading slashes and
// dot-dot segments are folded away.
func name(key string) string {
	return filepath.FromSlash(strings.TrimPrefix(path.Clean("/"+key), "/"))
}

// Upload writes reader to the file for path, creating parent directories.
func (s *Storage) Upload(_ context.Context, path string, reader io.Reader) error {
	n := name(path)
	if dir := filepath.Dir(n); dir != "." {
		if err := s.root.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("storage: create directory: %w", err)
		}
	}
	f, err := s.root.Create(n)
	if err != nil {
		return fmt.Errorf("storage: create file: %w", err)
	}
	if _, err := io.Copy(f, reader); err != nil {
		_ = f.Close()
		return fmt.Errorf("storage: write file: %w", err)
	}
	return f.Close()
}

// UploadWithType writes the file. The media type is derived from the
// extension when listing, so contentType is not stored.
func (s *Storage) UploadWithType(ctx context.Context, path string, reader io.Reader, _ string) error {
	return s.Upload(ctx, path, reader)
}

func (s *Storage) Download(_ context.Context, path string) (io.ReadCloser, error) {
	f, err := s.root.Open(name(path))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, path)
	case err != nil:
		return nil, fmt.Errorf("storage: open file: %w", err)
	}
	return f, nil
}

func (s *Storage) Delete(_ context.Context, path string) error {
	if err := s.root.Remove(name(path)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: delete file: %w", err)
	}
	return nil
}

func (s *Storage) Exists(_ context.Context, path string) (bool, error) {
	_, err := s.root.Stat(name(path))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("storage: stat file: %w", err)
	}
}

// URL returns a file:// URL for the object.
func (s *Storage) URL(_ context.Context, path string) (string, error) {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Join(s.dir, name(path)))}
	return u.String(), nil
}

// SignedURL returns the file:// URL. Local files carry no expiry.
func (s *Storage) SignedURL(ctx context.Context, path string, _ time.Duration) (string, error) {
	return s.URL(ctx, path)
}

// List walks the base directory and keeps files whose key has prefix.
func (s *Storage) List(_ context.Context, prefix string) ([]storage.FileInfo, error) {
	files := []storage.FileInfo{}
	err := fs.WalkDir(s.root.FS(), ".", func(key string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, storage.FileInfo{
			Path:         key,
			Size:         info.Size(),
			LastModified: info.ModTime(),
			ContentType:  cmp.Or(mime.TypeByExtension(path.Ext(key)), "application/octet-stream"),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list files: %w", err)
	}
	slices.SortFunc(files, func(a, b storage.FileInfo) int { return strings.Compare(a.Path, b.Path) })
	return files, nil
}

var (
	_ storage.Storage           = (*Storage)(nil)
	_ storage.SignedURLProvider = (*Storage)(nil)
)
