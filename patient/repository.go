package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kbukum/scribe/database"
)

const resourceName = "Patient"

// Repository reads and creates patients.
type Repository struct {
	db *database.DB
}

// NewRepository creates a Repository on db.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// List returns all patients ordered by name.
func (r *Repository) List(ctx context.Context) ([]Patient, error) {
	var patients []Patient
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&patients).Error; err != nil {
		return nil, database.FromDatabase(err, resourceName, "")
	}
	return patients, nil
}

// Get returns the patient with id, or a NotFound error.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	var p Patient
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, database.FromDatabase(err, resourceName, id.String())
	}
	return &p, nil
}

// FindByName returns the first patient named name, or nil when none exists.
func (r *Repository) FindByName(ctx context.Context, name string) (*Patient, error) {
	var p Patient
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, database.FromDatabase(err, resourceName, "")
	}
	return &p, nil
}

// Create inserts p, assigning its id and creation time.
func (r *Repository) Create(ctx context.Context, p *Patient) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return database.FromDatabase(err, resourceName, "")
	}
	return nil
}
