// Package resilience provides a bounded retry policy for outbound calls.
//
// Retry runs a function up to MaxAttempts times, waiting between attempts
// according to the configured backoff. The wait goes through
// RetryConfig.Sleep, so tests can observe the delays without sleeping.
package resilience
