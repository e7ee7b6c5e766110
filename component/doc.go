// Package component defines the lifecycle interface for the service's
// infrastructure (database, storage, outbound clients, HTTP server) and the
// registry that starts them in order and stops them in reverse.
package component
