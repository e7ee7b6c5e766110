// Package errors defines the service's error taxonomy.
//
// Every failure that reaches an HTTP boundary is an *AppError carrying a
// machine-readable code, a client-safe message and the status to respond
// with. The underlying cause stays on the error for logging and is never
// serialized.
package errors
