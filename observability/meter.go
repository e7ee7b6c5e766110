package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/scribe/logger"
)

// MeterConfig configures the OTLP meter provider.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint is the OTLP HTTP collector as host:port.
	Endpoint string
	Insecure bool
	// Interval between periodic exports. Zero keeps the SDK default.
	Interval time.Duration
}

// InitMeter installs a periodic-export meter provider as the global one.
// Callers own the returned provider and must shut it down.
func InitMeter(ctx context.Context, cfg MeterConfig) (*sdkmetric.MeterProvider, error) {
	exporterOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		exporterOpts = append(exporterOpts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("metric exporter: %w", err)
	}

	res, err := newResource(ctx, cfg.ServiceName, cfg.ServiceVersion, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("metric resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", cfg.ServiceName,
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the HTTP and note pipeline instruments. Every Record method
// is a no-op on a nil *Metrics, so callers never need to guard.
type Metrics struct {
	requests       metric.Int64Counter
	requestSeconds metric.Float64Histogram
	inflight       metric.Int64UpDownCounter
	stages         metric.Int64Counter
	stageSeconds   metric.Float64Histogram
	notesCreated   metric.Int64Counter
	notesFailed    metric.Int64Counter
}

// instruments creates instruments on a meter and keeps the first error.
type instruments struct {
	meter metric.Meter
	err   error
}

func (b *instruments) counter(name, desc string) metric.Int64Counter {
	c, err := b.meter.Int64Counter(name, metric.WithDescription(desc))
	b.keep(name, err)
	return c
}

func (b *instruments) seconds(name, desc string) metric.Float64Histogram {
	h, err := b.meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"))
	b.keep(name, err)
	return h
}

func (b *instruments) gauge(name, desc string) metric.Int64UpDownCounter {
	g, err := b.meter.Int64UpDownCounter(name, metric.WithDescription(desc))
	b.keep(name, err)
	return g
}

func (b *instruments) keep(name string, err error) {
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("instrument %s: %w", name, err)
	}
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	b := &instruments{meter: meter}
	m := &Metrics{
		requests:       b.counter("http.server.requests", "Completed HTTP requests"),
		requestSeconds: b.seconds("http.server.duration", "HTTP request latency"),
		inflight:       b.gauge("http.server.active_requests", "HTTP requests in flight"),
		stages:         b.counter("scribe.stage.total", "Note pipeline stage runs by stage and status"),
		stageSeconds:   b.seconds("scribe.stage.duration", "Note pipeline stage latency"),
		notesCreated:   b.counter("scribe.notes.created", "Notes persisted by input type"),
		notesFailed:    b.counter("scribe.notes.failed", "Note creations that failed by stage"),
	}
	if b.err != nil {
		return nil, b.err
	}
	return m, nil
}

// RecordRequestStart marks a request as in flight.
func (m *Metrics) RecordRequestStart(ctx context.Context) {
	if m == nil {
		return
	}
	m.inflight.Add(ctx, 1)
}

// RecordRequestEnd closes a request opened with RecordRequestStart.
func (m *Metrics) RecordRequestEnd(ctx context.Context, service, method, status string, d time.Duration) {
	if m == nil {
		return
	}
	svc, meth := attribute.String("service", service), attribute.String("method", method)
	m.inflight.Add(ctx, -1)
	m.requests.Add(ctx, 1, metric.WithAttributes(svc, meth, attribute.String("status", status)))
	m.requestSeconds.Record(ctx, d.Seconds(), metric.WithAttributes(svc, meth))
}

// RecordStage records one run of a note pipeline stage.
func (m *Metrics) RecordStage(ctx context.Context, stage, status string, d time.Duration) {
	if m == nil {
		return
	}
	st := attribute.String("stage", stage)
	m.stages.Add(ctx, 1, metric.WithAttributes(st, attribute.String("status", status)))
	m.stageSeconds.Record(ctx, d.Seconds(), metric.WithAttributes(st))
}

// RecordNoteCreated counts a persisted note.
func (m *Metrics) RecordNoteCreated(ctx context.Context, inputType string) {
	if m == nil {
		return
	}
	m.notesCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("input_type", inputType)))
}

// RecordNoteFailed counts a note creation that failed at stage.
func (m *Metrics) RecordNoteFailed(ctx context.Context, stage string) {
	if m == nil {
		return
	}
	m.notesFailed.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
}
