package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/scribe/logger"
)

// SeedPatient is one demo patient.
type SeedPatient struct {
	Name      string
	BirthDate time.Time
}

// DefaultSeed is the demo patient set.
var DefaultSeed = []SeedPatient{
	{Name: "John Martinez", BirthDate: date(1985, time.March, 15)},
	{Name: "Sarah Johnson", BirthDate: date(1972, time.August, 22)},
	{Name: "Michael Chen", BirthDate: date(1990, time.November, 8)},
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Seed inserts every patient in set whose name is not taken yet. It returns
// the number of patients created.
func Seed(ctx context.Context, repo *Repository, set []SeedPatient, log *logger.Logger) (int, error) {
	if log == nil {
		log = logger.Nop()
	}

	created := 0
	for _, sp := range set {
		existing, err := repo.FindByName(ctx, sp.Name)
		if err != nil {
			return created, fmt.Errorf("lookup %s: %w", sp.Name, err)
		}
		if existing != nil {
			log.Info("Patient already exists", logger.Fields("name", sp.Name, logger.FieldPatientID, existing.ID.String()))
			continue
		}

		p := &Patient{Name: sp.Name, BirthDate: sp.BirthDate}
		if err := repo.Create(ctx, p); err != nil {
			return created, fmt.Errorf("create %s: %w", sp.Name, err)
		}
		created++
		log.Info("Created patient", logger.Fields("name", p.Name, logger.FieldPatientID, p.ID.String()))
	}
	return created, nil
}
