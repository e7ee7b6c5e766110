package storage

import (
	"bytes"
	"context"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"time"
)

// AudioStore stores uploaded recordings and resolves playback URLs.
type AudioStore struct {
	backend Storage
	scheme  string
	bucket  string
	expiry  time.Duration
}

// NewAudioStore wraps backend. Locators use cfg.Provider as scheme and
// cfg.Bucket as host.
func NewAudioStore(backend Storage, cfg Config) *AudioStore {
	cfg.ApplyDefaults()
	return &AudioStore{
		backend: backend,
		scheme:  cfg.Provider,
		bucket:  cfg.Bucket,
		expiry:  cfg.SignedURLExpiry,
	}
}

// Backend returns the underlying storage backend.
func (a *AudioStore) Backend() Storage { return a.backend }

// Store uploads data under key and returns its locator.
func (a *AudioStore) Store(ctx context.Context, key string, data []byte, mediaType string) (string, error) {
	if err := a.backend.UploadWithType(ctx, key, bytes.NewReader(data), mediaType); err != nil {
		return "", err
	}
	return a.Locator(key), nil
}

// Locator returns the persisted form of key: {scheme}://{bucket}/{key}.
func (a *AudioStore) Locator(key string) string {
	return a.prefix() + key
}

// KeyFromLocator strips the {scheme}://{bucket}/ prefix. A value without
// the prefix is returned unchanged.
func (a *AudioStore) KeyFromLocator(locator string) string {
	return strings.TrimPrefix(locator, a.prefix())
}

// URLFor returns a time-limited URL for key when the backend can sign,
// and the backend's plain URL otherwise.
func (a *AudioStore) URLFor(ctx context.Context, key string) (string, error) {
	if signer, ok := a.backend.(SignedURLProvider); ok {
		return signer.SignedURL(ctx, key, a.expiry)
	}
	return a.backend.URL(ctx, key)
}

// Remove deletes the object stored under key.
func (a *AudioStore) Remove(ctx context.Context, key string) error {
	return a.backend.Delete(ctx, key)
}

func (a *AudioStore) prefix() string {
	return fmt.Sprintf("%s://%s/", a.scheme, a.bucket)
}

// AudioKey builds the object key for an upload:
// {patientID}/{unixMillis}-{9 random digits}{ext}, where ext is taken from
// the client-supplied file name.
func AudioKey(patientID, fileName string, now time.Time) string {
	return fmt.Sprintf("%s/%d-%09d%s",
		patientID, now.UnixMilli(), 100_000_000+rand.IntN(900_000_000), filepath.Ext(fileName))
}
