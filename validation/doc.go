// Package validation checks request input before any domain logic runs.
//
// Validator evaluates rules in the order they are chained and reports only
// the first failure, with the caller-supplied message, as an
// *errors.AppError. Once a rule fails the remaining rules are skipped.
//
//	err := validation.New().
//	    UUID("patientId", in.PatientID, "Invalid patient ID").
//	    Check(in.Text != nil || in.Audio != nil, "text", "Either text or audio file is required").
//	    Err()
//
// Struct-tag validation for configuration and DTOs goes through
// ValidateStruct, which wraps go-playground/validator.
package validation
