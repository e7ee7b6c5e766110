package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/scribe/component"
)

func recordingTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return exporter
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected endpoint localhost:4318, got %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected sample rate 1.0, got %f", cfg.SampleRate)
	}
	if cfg.MetricInterval != "15s" {
		t.Errorf("expected interval 15s, got %s", cfg.MetricInterval)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled config should validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"disabled ignores bad values", Config{SampleRate: 5, MetricInterval: "soon"}, false},
		{"valid", Config{Enabled: true, SampleRate: 0.5, MetricInterval: "10s"}, false},
		{"sample rate too high", Config{Enabled: true, SampleRate: 1.5, MetricInterval: "10s"}, true},
		{"negative sample rate", Config{Enabled: true, SampleRate: -0.1, MetricInterval: "10s"}, true},
		{"bad interval", Config{Enabled: true, SampleRate: 1, MetricInterval: "soon"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestConfigToProviderConfigs(t *testing.T) {
	cfg := Config{Enabled: true, Endpoint: "otel:4318", Insecure: true, SampleRate: 0.25, MetricInterval: "30s"}
	svc := Service{Name: "scribe", Version: "1.2.3", Environment: "test"}

	tc := cfg.tracerConfig(svc)
	if tc.ServiceName != "scribe" || tc.Endpoint != "otel:4318" || tc.SampleRate != 0.25 || !tc.Insecure {
		t.Errorf("unexpected tracer config: %+v", tc)
	}
	mc := cfg.meterConfig(svc)
	if mc.Interval != 30*time.Second || mc.ServiceVersion != "1.2.3" {
		t.Errorf("unexpected meter config: %+v", mc)
	}
}

func TestSampler(t *testing.T) {
	if got := sampler(1).Description(); got != sdktrace.ParentBased(sdktrace.AlwaysSample()).Description() {
		t.Errorf("rate 1: got %s", got)
	}
	if got := sampler(0).Description(); got != sdktrace.NeverSample().Description() {
		t.Errorf("rate 0: got %s", got)
	}
	if got := sampler(0.5).Description(); got != sdktrace.ParentBased(sdktrace.TraceIDRatioBased(0.5)).Description() {
		t.Errorf("rate 0.5: got %s", got)
	}
}

func TestStartSpanRecordsAttributes(t *testing.T) {
	exporter := recordingTracer(t)

	ctx, span := StartSpan(context.Background(), SpanNoteUpload)
	SetSpanAttribute(ctx, AttrPatientID, "p-1")
	SetSpanAttribute(ctx, "int-key", 42)
	SetSpanAttribute(ctx, "int64-key", int64(100))
	SetSpanAttribute(ctx, "float-key", 3.14)
	SetSpanAttribute(ctx, "bool-key", true)
	SetSpanAttribute(ctx, "slice-key", []string{"a", "b"})
	SetSpanAttribute(ctx, "ignored", struct{}{})
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	got := spans[0]
	if got.Name != SpanNoteUpload {
		t.Errorf("expected span %s, got %s", SpanNoteUpload, got.Name)
	}
	attrs := attribute.NewSet(got.Attributes...)
	if v, ok := attrs.Value(AttrPatientID); !ok || v.AsString() != "p-1" {
		t.Errorf("expected patient attribute, got %v", v)
	}
	if _, ok := attrs.Value("ignored"); ok {
		t.Error("unsupported attribute type should be skipped")
	}
	if attrs.Len() != 6 {
		t.Errorf("expected 6 attributes, got %d", attrs.Len())
	}
}

func TestSetSpanErrorMarksStatus(t *testing.T) {
	exporter := recordingTracer(t)

	ctx, span := StartSpan(context.Background(), SpanNoteTranscribe)
	SetSpanError(ctx, errors.New("whisper down"))
	span.End()

	got := exporter.GetSpans()[0]
	if got.Status.Code != codes.Error {
		t.Errorf("expected error status, got %v", got.Status.Code)
	}
	if got.Status.Description != "whisper down" {
		t.Errorf("unexpected status description %q", got.Status.Description)
	}
	if len(got.Events) != 1 {
		t.Errorf("expected 1 exception event, got %d", len(got.Events))
	}
}

func TestRecordErrorIgnoresNil(t *testing.T) {
	exporter := recordingTracer(t)

	_, span := StartSpan(context.Background(), SpanNotePersist)
	RecordError(span, nil)
	span.End()

	if code := exporter.GetSpans()[0].Status.Code; code != codes.Unset {
		t.Errorf("expected unset status, got %v", code)
	}
}

func TestNoSpanIsSafe(t *testing.T) {
	ctx := context.Background()
	SetSpanAttribute(ctx, "key", "value")
	SetSpanError(ctx, errors.New("no span"))

	traceID, spanID := TraceIDs(ctx)
	if traceID != "" || spanID != "" {
		t.Errorf("expected empty ids, got %q %q", traceID, spanID)
	}
}

func TestTraceIDs(t *testing.T) {
	recordingTracer(t)

	ctx, span := StartSpan(context.Background(), SpanHTTPRequest)
	defer span.End()

	traceID, spanID := TraceIDs(ctx)
	if traceID != span.SpanContext().TraceID().String() {
		t.Errorf("trace id mismatch: %s", traceID)
	}
	if spanID != span.SpanContext().SpanID().String() {
		t.Errorf("span id mismatch: %s", spanID)
	}
}

func TestMetricsNoop(t *testing.T) {
	metrics, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	ctx := context.Background()
	metrics.RecordRequestStart(ctx)
	metrics.RecordRequestEnd(ctx, "scribe", "GET /api/patients", "200", 100*time.Millisecond)
	metrics.RecordStage(ctx, "upload", "ok", 50*time.Millisecond)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.RecordRequestStart(ctx)
	m.RecordRequestEnd(ctx, "scribe", "GET /health", "200", time.Millisecond)
	m.RecordStage(ctx, "persist", "ok", time.Millisecond)
	m.RecordNoteCreated(ctx, "text")
	m.RecordNoteFailed(ctx, "upload")
}

func TestNoteCounters(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	ctx := context.Background()
	metrics.RecordNoteCreated(ctx, "text")
	metrics.RecordNoteCreated(ctx, "text")
	metrics.RecordNoteCreated(ctx, "audio")
	metrics.RecordNoteFailed(ctx, "transcribe")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	created := sumByAttr(t, rm, "scribe.notes.created", "input_type")
	if created["text"] != 2 || created["audio"] != 1 {
		t.Errorf("unexpected created counts: %v", created)
	}
	failed := sumByAttr(t, rm, "scribe.notes.failed", "stage")
	if failed["transcribe"] != 1 {
		t.Errorf("unexpected failed counts: %v", failed)
	}
}

func sumByAttr(t *testing.T, rm metricdata.ResourceMetrics, name, key string) map[string]int64 {
	t.Helper()
	out := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("%s: unexpected data type %T", name, m.Data)
			}
			for _, dp := range sum.DataPoints {
				v, _ := dp.Attributes.Value(attribute.Key(key))
				out[v.AsString()] += dp.Value
			}
			return out
		}
	}
	t.Fatalf("metric %s not found", name)
	return nil
}

func TestComponentDisabled(t *testing.T) {
	c := NewComponent(Config{}, Service{Name: "scribe"}, nil)
	ctx := context.Background()

	if c.Name() != "observability" {
		t.Errorf("unexpected name %s", c.Name())
	}
	if c.Enabled() {
		t.Error("expected disabled")
	}
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	h := c.Health(ctx)
	if h.Status != component.StatusHealthy || h.Message != "disabled" {
		t.Errorf("unexpected health %+v", h)
	}
	if err := c.Stop(ctx); err != nil {
		t.Errorf("Stop: %v", err)
	}
	if d := c.Describe(); d.Details != "disabled" {
		t.Errorf("unexpected description %+v", d)
	}
}

func TestComponentInvalidConfig(t *testing.T) {
	c := NewComponent(Config{Enabled: true, SampleRate: 2}, Service{Name: "scribe"}, nil)
	if err := c.Start(context.Background()); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestComponentEnabled(t *testing.T) {
	prevTP, prevMP := otel.GetTracerProvider(), otel.GetMeterProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetMeterProvider(prevMP)
	})

	c := NewComponent(Config{Enabled: true, Endpoint: "127.0.0.1:1", Insecure: true}, Service{Name: "scribe"}, nil)
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if h := c.Health(context.Background()); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy while running, got %+v", h)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	// Nothing listens on the endpoint; only the teardown matters here.
	_ = c.Stop(ctx)

	if h := c.Health(context.Background()); h.Status != component.StatusDegraded {
		t.Errorf("expected degraded after stop, got %+v", h)
	}
}
