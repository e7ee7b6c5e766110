// Package server provides the HTTP server: a Gin engine served over h2c,
// wrapped in a net/http middleware stack and managed as a component.
//
// Middleware (server/middleware), outermost first:
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: X-Request-Id generation and propagation
//   - Telemetry: server span and request metrics
//   - RequestLogger: request logging with duration tracking
//   - CORS: cross-origin resource sharing via rs/cors
//   - BodySizeLimit: request body size limit
//
// Endpoints (server/endpoint):
//
//   - /health: liveness, always {"status":"ok"}
//   - /health/ready: component health aggregation
//   - /info: build version information
package server
