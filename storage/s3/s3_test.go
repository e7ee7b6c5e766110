package s3

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/scribe/storage"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	cfg := storage.Config{
		Provider:  storage.ProviderS3,
		Bucket:    "scribe-audio",
		Region:    "us-east-1",
		Endpoint:  "http://localhost:9100",
		AccessKey: "AKIDEXAMPLE",
		SecretKey: "secret",
	}
	s, err := NewStorage(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	return s
}

func TestSignedURL_Presigns(t *testing.T) {
	s := newTestStorage(t)
	raw, err := s.SignedURL(context.Background(), "p1/1700000000000-123456789.webm", time.Hour)
	if err != nil {
		t.Fatalf("SignedURL: %v", err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if u.Host != "localhost:9100" {
		t.Errorf("expected custom endpoint host, got %q", u.Host)
	}
	if u.Path != "/scribe-audio/p1/1700000000000-123456789.webm" {
		t.Errorf("expected path-style key, got %q", u.Path)
	}
	q := u.Query()
	if q.Get("X-Amz-Expires") != "3600" {
		t.Errorf("expected 1h expiry, got %q", q.Get("X-Amz-Expires"))
	}
	if q.Get("X-Amz-Signature") == "" || !strings.HasPrefix(q.Get("X-Amz-Credential"), "AKIDEXAMPLE/") {
		t.Errorf("expected signed query, got %q", u.RawQuery)
	}
}

func TestURL_UsesEndpoint(t *testing.T) {
	s := newTestStorage(t)
	u, _ := s.URL(context.Background(), "p1/a.ogg")
	if u != "http://localhost:9100/scribe-audio/p1/a.ogg" {
		t.Errorf("unexpected url %q", u)
	}
}

func TestFactoryRegistered(t *testing.T) {
	st, err := storage.New(storage.Config{
		Provider:  storage.ProviderS3,
		AccessKey: "AKIDEXAMPLE",
		SecretKey: "secret",
	}, nil)
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	if _, ok := st.(storage.SignedURLProvider); !ok {
		t.Error("s3 backend should sign URLs")
	}
}

func TestURL_AWSAddressing(t *testing.T) {
	tests := []struct {
		name      string
		pathStyle bool
		want      string
	}{
		{"virtual hosted", false, "https://scribe-audio.s3.eu-west-1.amazonaws.com/p1/a.ogg"},
		{"path style", true, "https://s3.eu-west-1.amazonaws.com/scribe-audio/p1/a.ogg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStorage(context.Background(), storage.Config{
				Provider:       storage.ProviderS3,
				Bucket:         "scribe-audio",
				Region:         "eu-west-1",
				ForcePathStyle: tt.pathStyle,
				AccessKey:      "AKIDEXAMPLE",
				SecretKey:      "secret",
			}, nil)
			if err != nil {
				t.Fatalf("NewStorage: %v", err)
			}
			if u, _ := s.URL(context.Background(), "/p1/a.ogg"); u != tt.want {
				t.Errorf("got %q, want %q", u, tt.want)
			}
		})
	}
}
