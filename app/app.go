package app

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/kbukum/scribe/bootstrap"
	"github.com/kbukum/scribe/component"
	"github.com/kbukum/scribe/database"
	"github.com/kbukum/scribe/database/migration"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/note"
	"github.com/kbukum/scribe/observability"
	"github.com/kbukum/scribe/patient"
	"github.com/kbukum/scribe/server"
	"github.com/kbukum/scribe/soap"
	"github.com/kbukum/scribe/storage"
	"github.com/kbukum/scribe/transcription/whisper"
	"github.com/kbukum/scribe/util"

	// Storage backends register themselves with storage.New.
	_ "github.com/kbukum/scribe/storage/local"
	_ "github.com/kbukum/scribe/storage/memory"
	_ "github.com/kbukum/scribe/storage/s3"
)

// Service holds the components of a running scribe instance.
type Service struct {
	Database   *database.Component
	Storage    *storage.Component
	Whisper    *component.ProviderComponent[*whisper.Provider]
	Summarizer *component.ProviderComponent[*soap.Summarizer]
	Server     *server.Server

	metrics *observability.Metrics
	log     *logger.Logger
}

// NewDatabase returns the database component with the scribe schema
// attached: embedded migrations on PostgreSQL, auto-migrated models on
// SQLite.
func NewDatabase(cfg database.Config, log *logger.Logger) *database.Component {
	log.Info("Database configured", logger.Fields(
		"driver", cfg.Driver,
		"dsn", util.RedactDSN(cfg.DSN),
	))
	return database.NewComponent(cfg, log).
		WithModels(&patient.Patient{}, &note.Note{}).
		WithMigrator(migration.Postgres)
}

// Register builds the full component set and registers it on a in start
// order. Handlers are mounted by the api component, which starts after its
// dependencies and before the HTTP server begins accepting requests.
func Register(a *bootstrap.App[*Config]) (*Service, error) {
	cfg, log := a.Cfg, a.Logger

	metrics, err := observability.NewMetrics(observability.Meter(ServiceName))
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	svc := &Service{
		Database: NewDatabase(cfg.Database, log),
		Storage:  storage.NewComponent(cfg.Storage, log),
		Whisper: component.NewProviderComponent("whisper", func(_ context.Context) (*whisper.Provider, error) {
			return whisper.NewProvider(cfg.Whisper, whisper.WithLogger(log))
		}).WithDescription(component.Description{
			Name:    "Whisper",
			Type:    "transcription",
			Details: "url=" + cfg.Whisper.URL,
		}),
		Summarizer: component.NewProviderComponent("summarizer", func(_ context.Context) (*soap.Summarizer, error) {
			return soap.New(cfg.Summarizer, soap.WithLogger(log))
		}).WithDescription(component.Description{
			Name:    "Summarizer",
			Type:    "llm",
			Details: summarizerDetails(cfg.Summarizer),
		}),
		Server:  server.New(cfg.Server, log),
		metrics: metrics,
		log:     log,
	}
	svc.Server.ApplyDefaults(cfg.Name, metrics, a.Components.HealthAll)

	err = a.RegisterComponents(
		observability.NewComponent(cfg.Observability, cfg.ObservabilityService(), log),
		svc.Database,
		svc.Storage,
		svc.Whisper,
		svc.Summarizer,
		&api{svc: svc},
		server.NewComponent(svc.Server),
	)
	if err != nil {
		return nil, err
	}
	a.OnReady(svc.checkTranscriber)
	return svc, nil
}

// checkTranscriber warns when Whisper does not answer at startup. Text notes
// keep working; audio notes fail until it is back.
func (s *Service) checkTranscriber(ctx context.Context) error {
	if p := s.Whisper.Get(); p != nil && !p.IsAvailable(ctx) {
		s.log.Warn("Whisper is not reachable, audio notes will fail", logger.Fields("provider", p.Name()))
	}
	return nil
}

func summarizerDetails(cfg soap.Config) string {
	if cfg.Mock {
		return "mode=mock"
	}
	return fmt.Sprintf("provider=%s model=%s", cfg.Provider, cfg.Model)
}

// api mounts the patient and note handlers once the database, storage and
// model clients are started.
type api struct {
	svc     *Service
	mounted atomic.Bool
}

var _ component.Component = (*api)(nil)

func (c *api) Name() string { return "api" }

func (c *api) Start(_ context.Context) error {
	if c.mounted.Load() {
		return nil
	}
	s := c.svc
	db := s.Database.DB()
	audio := s.Storage.Audio()
	if db == nil || audio == nil {
		return fmt.Errorf("api start: database and storage must be started first")
	}

	patients := patient.NewRepository(db)
	notes := note.NewRepository(db)
	pipeline := note.NewPipeline(
		patients,
		audio,
		s.Whisper.Get(),
		s.Summarizer.Get(),
		notes,
		note.WithMetrics(s.metrics),
		note.WithLogger(s.log),
	)

	engine := s.Server.GinEngine()
	patient.NewHandler(patients, notes.PatientNotes(), s.log).Register(engine)
	note.NewHandler(pipeline, notes, audio, s.log).Register(engine)

	c.mounted.Store(true)
	return nil
}

// Stop is a no-op: gin routes cannot be removed, and the server stops first.
func (c *api) Stop(_ context.Context) error { return nil }

func (c *api) Health(_ context.Context) component.Health {
	if !c.mounted.Load() {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "routes not mounted"}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}
