package validation

import (
	"slices"

	"github.com/google/uuid"

	"github.com/kbukum/scribe/errors"
)

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator records the first failing rule of a chain.
type Validator struct {
	first *FieldError
}

// New creates a new Validator.
func New() *Validator {
	return &Validator{}
}

func (v *Validator) fail(field, message string) *Validator {
	if v.first == nil {
		v.first = &FieldError{Field: field, Message: message}
	}
	return v
}

// Failed reports whether any rule has failed.
func (v *Validator) Failed() bool {
	return v.first != nil
}

// Err returns the first failure as a validation AppError, or nil.
func (v *Validator) Err() *errors.AppError {
	if v.first == nil {
		return nil
	}
	return errors.Validation(v.first.Message).WithDetail("field", v.first.Field)
}

// AsError is Err as a plain error; it is a nil interface when every rule passed.
func (v *Validator) AsError() error {
	if err := v.Err(); err != nil {
		return err
	}
	return nil
}

// UUID requires value to be a canonical 36-character UUID.
func (v *Validator) UUID(field, value, message string) *Validator {
	if v.Failed() {
		return v
	}
	if !IsUUID(value) {
		return v.fail(field, message)
	}
	return v
}

// NotEmpty requires a present value to be non-empty. A nil value passes.
func (v *Validator) NotEmpty(field string, value *string, message string) *Validator {
	if v.Failed() || value == nil {
		return v
	}
	if *value == "" {
		return v.fail(field, message)
	}
	return v
}

// Check fails with message when cond is false.
func (v *Validator) Check(cond bool, field, message string) *Validator {
	if v.Failed() || cond {
		return v
	}
	return v.fail(field, message)
}

// OneOf requires value to be in allowed.
func (v *Validator) OneOf(field, value string, allowed []string, message string) *Validator {
	if v.Failed() || slices.Contains(allowed, value) {
		return v
	}
	return v.fail(field, message)
}

// MaxSize requires size to be at most limit.
func (v *Validator) MaxSize(field string, size, limit int64, message string) *Validator {
	if v.Failed() || size <= limit {
		return v
	}
	return v.fail(field, message)
}

// IsUUID reports whether s is a hyphenated UUID. Braced and urn: forms,
// which uuid.Parse also accepts, are rejected.
func IsUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// ParseUUID parses an id path parameter under the same rule as UUID,
// returning a validation error with message when it is malformed.
func ParseUUID(value, message string) (uuid.UUID, error) {
	if !IsUUID(value) {
		return uuid.Nil, errors.Validation(message)
	}
	return uuid.MustParse(value), nil
}
