package note

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kbukum/scribe/patient"
)

// InputType records how a note was submitted.
type InputType string

const (
	InputText  InputType = "text"
	InputAudio InputType = "audio"
)

// Note is a persisted clinical note. For audio notes RawText holds the
// transcription, so RawText and Transcription are equal.
type Note struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	PatientID     uuid.UUID        `gorm:"type:uuid;not null;index" json:"patientId"`
	Patient       *patient.Patient `gorm:"foreignKey:PatientID;constraint:OnDelete:CASCADE" json:"patient,omitempty"`
	InputType     InputType        `gorm:"not null" json:"inputType"`
	RawText       *string          `json:"rawText"`
	AudioURL      *string          `gorm:"column:audio_url" json:"audioUrl"`
	Transcription *string          `json:"transcription"`
	Summary       *string          `json:"summary"`
	CreatedAt     time.Time        `gorm:"not null;index" json:"createdAt"`
}

// BeforeCreate assigns an id to new records.
func (n *Note) BeforeCreate(_ *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// PatientSummary is n as listed under its patient.
func (n Note) PatientSummary() patient.NoteSummary {
	return patient.NoteSummary{
		ID:            n.ID,
		PatientID:     n.PatientID,
		InputType:     string(n.InputType),
		RawText:       n.RawText,
		AudioURL:      n.AudioURL,
		Transcription: n.Transcription,
		Summary:       n.Summary,
		CreatedAt:     n.CreatedAt,
	}
}
