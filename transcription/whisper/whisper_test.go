package whisper

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/httpclient"
	"github.com/kbukum/scribe/transcription"
)

type sleepRecorder struct {
	delays []time.Duration
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return nil
}

func newTestProvider(t *testing.T, url string, sleeper *sleepRecorder) *Provider {
	t.Helper()
	p, err := NewProvider(Config{URL: url}, WithSleep(sleeper.sleep))
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	return p
}

func request() transcription.TranscriptionRequest {
	return transcription.TranscriptionRequest{
		Audio:       []byte("fake-audio"),
		FileName:    "1700000000000-123456789.webm",
		ContentType: "audio/webm",
	}
}

func TestTranscribe_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/asr" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if r.URL.Query().Get("output") != "json" {
			t.Errorf("expected output=json, got %q", r.URL.RawQuery)
		}
		file, header, err := r.FormFile(FormField)
		if err != nil {
			t.Errorf("expected %s part: %v", FormField, err)
			return
		}
		data, _ := io.ReadAll(file)
		if string(data) != "fake-audio" || header.Filename != "1700000000000-123456789.webm" {
			t.Errorf("unexpected upload %q %q", header.Filename, data)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text":" Patient reports lower back pain.","language":"en"}`))
	}))
	defer srv.Close()

	sleeper := &sleepRecorder{}
	resp, err := newTestProvider(t, srv.URL, sleeper).Transcribe(context.Background(), request())
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if resp.Text != " Patient reports lower back pain." {
		t.Errorf("unexpected text %q", resp.Text)
	}
	if resp.Language != "en" {
		t.Errorf("expected language en, got %q", resp.Language)
	}
	if len(sleeper.delays) != 0 {
		t.Errorf("expected no retries, got %v", sleeper.delays)
	}
}

func TestTranscribe_MissingTextIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"segments":[]}`))
	}))
	defer srv.Close()

	resp, err := newTestProvider(t, srv.URL, &sleepRecorder{}).Transcribe(context.Background(), request())
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if resp.Text != "" {
		t.Errorf("expected empty text, got %q", resp.Text)
	}
}

func TestTranscribe_StatusFailureNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("CUDA out of memory"))
	}))
	defer srv.Close()

	sleeper := &sleepRecorder{}
	_, err := newTestProvider(t, srv.URL, sleeper).Transcribe(context.Background(), request())
	if err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 || len(sleeper.delays) != 0 {
		t.Errorf("expected one attempt and no waits, got %d attempts %v", calls.Load(), sleeper.delays)
	}
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeExternalService {
		t.Fatalf("expected external service error, got %v", err)
	}
	want := "whisper transcription failed: Internal Server Error - CUDA out of memory"
	if appErr.Cause == nil || appErr.Cause.Error() != want {
		t.Errorf("expected cause %q, got %v", want, appErr.Cause)
	}
}

func TestTranscribe_TransportFailureRetriedThreeTimes(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	sleeper := &sleepRecorder{}
	_, err := newTestProvider(t, url, sleeper).Transcribe(context.Background(), request())
	if !httpclient.IsConnection(err) {
		t.Fatalf("expected last transport error, got %v", err)
	}
	if len(sleeper.delays) != 2 {
		t.Fatalf("expected 2 waits between 3 attempts, got %v", sleeper.delays)
	}
	for _, d := range sleeper.delays {
		if d != 2*time.Second {
			t.Errorf("expected fixed 2s delay, got %v", d)
		}
	}
}

// flakyTransport fails the first n round trips at the transport level.
type flakyTransport struct {
	failures int
	calls    int
	next     http.RoundTripper
}

func (f *flakyTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, stderrors.New("connection reset by peer")
	}
	return f.next.RoundTrip(r)
}

func TestTranscribe_RecoversAfterTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text":"recovered"}`))
	}))
	defer srv.Close()

	sleeper := &sleepRecorder{}
	p := newTestProvider(t, srv.URL, sleeper)
	flaky := &flakyTransport{failures: 2, next: http.DefaultTransport}
	p.client.Unwrap().Transport = flaky

	resp, err := p.Transcribe(context.Background(), request())
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if resp.Text != "recovered" {
		t.Errorf("unexpected text %q", resp.Text)
	}
	if flaky.calls != 3 || len(sleeper.delays) != 2 {
		t.Errorf("expected 3 attempts and 2 waits, got %d / %v", flaky.calls, sleeper.delays)
	}
}

func TestTranscribe_LanguageAndTask(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("language") != "es" || q.Get("task") != "transcribe" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		w.Write([]byte(`{"text":"hola"}`))
	}))
	defer srv.Close()

	p, err := NewProvider(Config{URL: srv.URL, Language: "en", Task: "transcribe"})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	req := request()
	req.Language = "es"
	if _, err := p.Transcribe(context.Background(), req); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
}

func TestTranscribe_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := newTestProvider(t, srv.URL, &sleepRecorder{}).Transcribe(context.Background(), request())
	if err == nil || !strings.Contains(err.Error(), "decode whisper response") {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestIsAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	p := newTestProvider(t, srv.URL, &sleepRecorder{})
	if !p.IsAvailable(context.Background()) {
		t.Error("expected available")
	}
	srv.Close()
	if p.IsAvailable(context.Background()) {
		t.Error("expected unavailable after close")
	}
}

func TestConfig_Defaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.URL != "http://localhost:9000" || cfg.MaxAttempts != 3 || cfg.RetryDelay != 2*time.Second {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	bad := Config{URL: "http://x", Task: "summarize", MaxAttempts: 1}
	if err := bad.Validate(); err == nil {
		t.Error("expected invalid task to fail")
	}
}
