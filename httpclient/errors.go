package httpclient

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode says why a call failed.
type ErrorCode int

const (
	ErrCodeTimeout ErrorCode = iota
	ErrCodeConnection
	ErrCodeAuth
	ErrCodeNotFound
	ErrCodeRateLimit
	ErrCodeValidation
	ErrCodeServer
)

var codeNames = [...]string{
	ErrCodeTimeout:    "timeout",
	ErrCodeConnection: "connection",
	ErrCodeAuth:       "auth",
	ErrCodeNotFound:   "not_found",
	ErrCodeRateLimit:  "rate_limit",
	ErrCodeValidation: "validation",
	ErrCodeServer:     "server",
}

func (c ErrorCode) String() string {
	if c < 0 || int(c) >= len(codeNames) {
		return "unknown"
	}
	return codeNames[c]
}

// Error is a failed call. Transport failures have StatusCode 0; status
// failures keep the response body so callers can surface it.
type Error struct {
	StatusCode int
	Code       ErrorCode
	Message    string
	Retryable  bool
	Body       []byte
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("httpclient: %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("httpclient: %s (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// StatusText is the reason phrase of a status failure, e.g. "Bad Gateway".
func (e *Error) StatusText() string { return e.Message }

func transport(code ErrorCode, err error) *Error {
	return &Error{Code: code, Message: err.Error(), Retryable: true, Err: err}
}

// NewTimeoutError wraps a deadline hit while waiting on the server.
func NewTimeoutError(err error) *Error { return transport(ErrCodeTimeout, err) }

// NewConnectionError wraps a failure to reach the server or read its reply.
func NewConnectionError(err error) *Error { return transport(ErrCodeConnection, err) }

// NewValidationError reports a request that could not be built.
func NewValidationError(msg string) *Error {
	return &Error{Code: ErrCodeValidation, Message: msg}
}

// ClassifyStatus returns nil for 2xx and a typed *Error otherwise. status is
// the full status line, such as "502 Bad Gateway"; its reason phrase becomes
// the message, falling back to the standard text for statusCode.
func ClassifyStatus(statusCode int, status string, body []byte) *Error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}
	msg := http.StatusText(statusCode)
	if _, reason, ok := strings.Cut(status, " "); ok && reason != "" {
		msg = reason
	}
	code, retryable := statusCodeOf(statusCode)
	return &Error{StatusCode: statusCode, Code: code, Message: msg, Retryable: retryable, Body: body}
}

// statusCodeOf maps a non-2xx status. Only 429 and 5xx are worth retrying.
func statusCodeOf(status int) (ErrorCode, bool) {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return ErrCodeAuth, false
	case status == http.StatusNotFound:
		return ErrCodeNotFound, false
	case status == http.StatusTooManyRequests:
		return ErrCodeRateLimit, true
	case status >= 400 && status < 500:
		return ErrCodeValidation, false
	case status >= 500:
		return ErrCodeServer, true
	}
	return ErrCodeServer, false
}

// AsError finds an *Error in err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

func hasCode(err error, codes ...ErrorCode) bool {
	e, ok := AsError(err)
	if !ok {
		return false
	}
	for _, c := range codes {
		if e.Code == c {
			return true
		}
	}
	return false
}

func IsTimeout(err error) bool     { return hasCode(err, ErrCodeTimeout) }
func IsConnection(err error) bool  { return hasCode(err, ErrCodeConnection) }
func IsServerError(err error) bool { return hasCode(err, ErrCodeServer) }

// IsTransport reports whether err failed before any HTTP status arrived.
func IsTransport(err error) bool { return hasCode(err, ErrCodeConnection, ErrCodeTimeout) }

func IsRetryable(err error) bool {
	e, ok := AsError(err)
	return ok && e.Retryable
}
