package transcription

// TranscriptionRequest holds the audio to transcribe.
type TranscriptionRequest struct {
	Audio []byte
	// FileName is sent to the backend; its extension hints at the container.
	FileName string
	// ContentType is the audio media type, e.g. "audio/webm".
	ContentType string
	// Language overrides the provider's configured language.
	Language string
}

// TranscriptionResponse holds the result of a transcription call.
type TranscriptionResponse struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments,omitempty"`
	Language string    `json:"language,omitempty"`
}

// Segment is a time-aligned portion of a transcript.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}
