// Package util holds small helpers shared across packages: size strings,
// DSN redaction and optional values.
package util
