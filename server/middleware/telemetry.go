package middleware

import (
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/observability"
)

// Telemetry returns middleware that opens a server span per request, links
// the trace to the request logger and records request metrics. metrics may
// be nil.
func Telemetry(service string, metrics *observability.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := observability.StartSpan(ctx, observability.SpanHTTPRequest,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.target", r.URL.Path),
					attribute.String(observability.AttrRequestID, r.Header.Get(HeaderRequestID)),
				),
			)
			defer span.End()

			if traceID, spanID := observability.TraceIDs(ctx); traceID != "" {
				ctx = logger.ContextWithTrace(ctx, traceID, spanID)
			}

			start := time.Now()
			metrics.RecordRequestStart(ctx)
			rec := newResponseRecorder(w)
			next.ServeHTTP(rec, r.WithContext(ctx))

			span.SetAttributes(attribute.Int("http.status_code", rec.status))
			if rec.status >= 500 {
				span.SetStatus(codes.Error, http.StatusText(rec.status))
			}
			metrics.RecordRequestEnd(ctx, service, r.Method, strconv.Itoa(rec.status), time.Since(start))
		})
	}
}
