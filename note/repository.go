package note

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kbukum/scribe/database"
	"github.com/kbukum/scribe/patient"
)

const resourceName = "Note"

// Repository reads and creates notes.
type Repository struct {
	db *database.DB
}

// NewRepository creates a Repository on db.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts n. The patient association is never written.
func (r *Repository) Create(ctx context.Context, n *Note) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(n).Error; err != nil {
		return database.FromDatabase(err, resourceName, "")
	}
	return nil
}

// List returns every note, newest first, with the patient's id and name.
func (r *Repository) List(ctx context.Context) ([]Note, error) {
	notes := []Note{}
	err := r.db.WithContext(ctx).
		Preload("Patient", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name") }).
		Order("created_at DESC").
		Find(&notes).Error
	if err != nil {
		return nil, database.FromDatabase(err, resourceName, "")
	}
	return notes, nil
}

// Get returns the note with id and its full patient, or a NotFound error.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Note, error) {
	var n Note
	if err := r.db.WithContext(ctx).Preload("Patient").First(&n, "id = ?", id).Error; err != nil {
		return nil, database.FromDatabase(err, resourceName, id.String())
	}
	return &n, nil
}

// ListByPatient returns a patient's notes, newest first, without the patient.
func (r *Repository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Note, error) {
	notes := []Note{}
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Find(&notes).Error
	if err != nil {
		return nil, database.FromDatabase(err, resourceName, "")
	}
	return notes, nil
}

// PatientNotes lists notes for the patient detail response.
func (r *Repository) PatientNotes() patient.NoteLister {
	return patient.NoteListerFunc(func(ctx context.Context, patientID uuid.UUID) ([]patient.NoteSummary, error) {
		notes, err := r.ListByPatient(ctx, patientID)
		if err != nil {
			return nil, err
		}
		out := make([]patient.NoteSummary, len(notes))
		for i, n := range notes {
			out[i] = n.PatientSummary()
		}
		return out, nil
	})
}
