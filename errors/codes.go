package errors

// ErrorCode is the machine-readable "code" field of an error response.
type ErrorCode string

const (
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeInvalidInput covers every request-shape failure: malformed ids,
	// missing note input, disallowed media types and oversized uploads.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"

	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
	ErrCodeDatabaseError   ErrorCode = "DATABASE_ERROR"
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

// IsRetryableCode reports whether a client may retry a request that failed
// with code.
func IsRetryableCode(code ErrorCode) bool {
	switch code {
	case ErrCodeDatabaseError, ErrCodeExternalService:
		return true
	}
	return false
}
