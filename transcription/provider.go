package transcription

import (
	"context"

	"github.com/kbukum/scribe/provider"
)

// Transcriber converts audio to text. A successful response may carry empty
// text when the backend heard nothing.
type Transcriber interface {
	Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error)
}

// Provider is the interface that transcription backends implement.
type Provider interface {
	provider.Provider
	Transcriber
}
