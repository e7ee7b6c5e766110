package note

import (
	"fmt"
	"io"
	"os"

	"github.com/kbukum/scribe/validation"
)

// MaxAudioSize is the largest accepted recording, 25 MiB.
const MaxAudioSize int64 = 25 << 20

// AllowedAudioTypes lists the accepted recording media types.
var AllowedAudioTypes = []string{
	"audio/mpeg",
	"audio/wav",
	"audio/mp4",
	"audio/webm",
	"audio/ogg",
	"audio/x-m4a",
}

// Client-facing validation messages.
const (
	MsgInvalidPatientID = "Invalid patient ID"
	MsgEmptyText        = "Text cannot be empty"
	MsgMissingInput     = "Either text or audio file is required"
	MsgInvalidFileType  = "Invalid file type. Allowed: MP3, WAV, M4A, WebM, OGG"
	MsgFileTooLarge     = "File too large. Maximum size allowed is 25MB"
	MsgInvalidID        = "Invalid ID format"
	MsgCreateFailed     = "Failed to create note"
	MsgInvalidBody      = "Invalid request body"
)

// CreateInput is a note submission. Text is nil when the field was absent.
type CreateInput struct {
	PatientID string
	Text      *string
	Audio     *AudioFile
}

// Validate checks the submission shape. It runs before the patient lookup;
// the audio itself is checked later by AudioFile.Validate.
func (in CreateInput) Validate() error {
	return validation.New().
		UUID("patientId", in.PatientID, MsgInvalidPatientID).
		NotEmpty("text", in.Text, MsgEmptyText).
		Check(in.Text != nil || in.Audio != nil, "text", MsgMissingInput).
		AsError()
}

// AudioFile is an uploaded recording spooled to a temporary file.
type AudioFile struct {
	// Name is the client-supplied file name.
	Name        string
	ContentType string
	Size        int64
	path        string
}

// SpoolAudio copies r into a temporary file. The caller must Close the
// returned file, which removes it from disk.
func SpoolAudio(r io.Reader, name, contentType string) (*AudioFile, error) {
	f, err := os.CreateTemp("", "scribe-audio-*")
	if err != nil {
		return nil, fmt.Errorf("create spool file: %w", err)
	}
	a := &AudioFile{Name: name, ContentType: contentType, path: f.Name()}

	n, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("spool audio: %w", err)
	}
	a.Size = n
	return a, nil
}

// Validate checks the media type and size.
func (a *AudioFile) Validate() error {
	return validation.New().
		OneOf("audio", a.ContentType, AllowedAudioTypes, MsgInvalidFileType).
		MaxSize("audio", a.Size, MaxAudioSize, MsgFileTooLarge).
		AsError()
}

// Bytes reads the spooled recording.
func (a *AudioFile) Bytes() ([]byte, error) {
	return os.ReadFile(a.path)
}

// Close removes the spool file. It is safe to call more than once.
func (a *AudioFile) Close() error {
	if a == nil || a.path == "" {
		return nil
	}
	err := os.Remove(a.path)
	a.path = ""
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
