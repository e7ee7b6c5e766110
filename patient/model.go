package patient

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Patient is a person notes are recorded for.
type Patient struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	BirthDate time.Time `gorm:"not null" json:"birthDate"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}

// BeforeCreate assigns an id to new records.
func (p *Patient) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
