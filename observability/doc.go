// Package observability wires OpenTelemetry tracing and metrics.
//
// When disabled the global providers stay at their no-op defaults, so
// StartSpan and metric instruments are always safe to call.
//
//	c := observability.NewComponent(cfg, observability.Service{Name: "scribe"}, log)
//	registry.Register(c)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanNoteUpload)
//	defer span.End()
package observability
