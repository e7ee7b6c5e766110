package validation

import (
	"net/http"
	"strings"
	"testing"

	"github.com/kbukum/scribe/errors"
)

func strPtr(s string) *string { return &s }

func TestValidator_FirstFailureWins(t *testing.T) {
	err := New().
		UUID("patientId", "not-a-uuid", "Invalid patient ID").
		NotEmpty("text", strPtr(""), "Text cannot be empty").
		Err()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if err.Message != "Invalid patient ID" {
		t.Errorf("expected first rule message, got %q", err.Message)
	}
	if err.HTTPStatus != http.StatusBadRequest || err.Code != errors.ErrCodeInvalidInput {
		t.Errorf("unexpected code/status %s/%d", err.Code, err.HTTPStatus)
	}
	if err.Details["field"] != "patientId" {
		t.Errorf("expected field detail, got %v", err.Details)
	}
}

func TestValidator_Passes(t *testing.T) {
	v := New().
		UUID("patientId", "11111111-1111-1111-1111-111111111111", "Invalid patient ID").
		NotEmpty("text", nil, "Text cannot be empty").
		Check(true, "text", "unused").
		OneOf("mimetype", "audio/ogg", []string{"audio/ogg"}, "bad type").
		MaxSize("size", 10, 10, "too big")
	if v.Failed() {
		t.Fatalf("expected pass, got %+v", v.Err())
	}
	if v.Err() != nil {
		t.Fatal("expected nil error")
	}
}

func TestValidator_Rules(t *testing.T) {
	tests := []struct {
		name string
		v    *Validator
		msg  string
	}{
		{"empty text", New().NotEmpty("text", strPtr(""), "Text cannot be empty"), "Text cannot be empty"},
		{"check", New().Check(false, "text", "Either text or audio file is required"), "Either text or audio file is required"},
		{"one of", New().OneOf("mimetype", "video/mp4", []string{"audio/mpeg"}, "Invalid file type"), "Invalid file type"},
		{"max size", New().MaxSize("size", 11, 10, "File too large"), "File too large"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.v.Err()
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Message != tt.msg {
				t.Errorf("expected %q, got %q", tt.msg, err.Message)
			}
		})
	}
}

func TestIsUUID(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"11111111-1111-1111-1111-111111111111", true},
		{"6ba7b810-9dad-11d1-80b4-00c04fd430c8", true},
		{"00000000-0000-0000-0000-000000000000", true},
		{"{6ba7b810-9dad-11d1-80b4-00c04fd430c8}", false},
		{"urn:uuid:6ba7b810-9dad-11d1-80b4-00c04fd430c8", false},
		{"6ba7b8109dad11d180b400c04fd430c8", false},
		{"not-a-uuid", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsUUID(tt.in); got != tt.want {
			t.Errorf("IsUUID(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseUUID(t *testing.T) {
	id, err := ParseUUID("6ba7b810-9dad-11d1-80b4-00c04fd430c8", "Invalid ID format")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.String() != "6ba7b810-9dad-11d1-80b4-00c04fd430c8" {
		t.Errorf("unexpected id %s", id)
	}

	_, err = ParseUUID("abc", "Invalid ID format")
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Message != "Invalid ID format" {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseUUID_MatchesUUIDRule(t *testing.T) {
	for _, id := range []string{
		" 6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		"6ba7b810-9dad-11d1-80b4-00c04fd430c8\n",
		"{6ba7b810-9dad-11d1-80b4-00c04fd430c8}",
	} {
		_, parseErr := ParseUUID(id, "Invalid patient ID")
		ruleErr := New().UUID("patientId", id, "Invalid patient ID").Err()
		if parseErr == nil || ruleErr == nil {
			t.Errorf("%q: path err %v, body err %v; both should reject", id, parseErr, ruleErr)
		}
	}
}

type sampleConfig struct {
	URL     string `mapstructure:"url" validate:"required,url"`
	Bucket  string `mapstructure:"bucket" validate:"required"`
	Retries int    `mapstructure:"max_attempts" validate:"gte=1"`
}

func TestValidateStruct(t *testing.T) {
	if err := ValidateStruct(sampleConfig{URL: "http://localhost:9000", Bucket: "b", Retries: 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := ValidateStruct(sampleConfig{URL: "::", Retries: 0})
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %v", err)
	}
	for _, want := range []string{"url must be a valid URL", "bucket is required", "max_attempts must be at least 1"} {
		if !strings.Contains(appErr.Message, want) {
			t.Errorf("expected %q in %q", want, appErr.Message)
		}
	}
	fields, _ := appErr.Details["fields"].([]FieldError)
	if len(fields) != 3 {
		t.Errorf("expected 3 field errors, got %d", len(fields))
	}
}

func TestValidator_AsErrorNilInterface(t *testing.T) {
	if err := New().Check(true, "x", "unused").AsError(); err != nil {
		t.Fatalf("expected nil error interface, got %#v", err)
	}
	if err := New().Check(false, "x", "bad").AsError(); err == nil || err.Error() == "" {
		t.Fatal("expected error")
	}
}
