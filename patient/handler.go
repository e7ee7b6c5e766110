package patient

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/server"
	"github.com/kbukum/scribe/validation"
)

// NoteSummary is a note as listed under its patient. It renders like a note
// without the embedded patient.
type NoteSummary struct {
	ID            uuid.UUID `json:"id"`
	PatientID     uuid.UUID `json:"patientId"`
	InputType     string    `json:"inputType"`
	RawText       *string   `json:"rawText"`
	AudioURL      *string   `json:"audioUrl"`
	Transcription *string   `json:"transcription"`
	Summary       *string   `json:"summary"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NoteLister returns a patient's notes, newest first.
type NoteLister interface {
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]NoteSummary, error)
}

// NoteListerFunc adapts a function to NoteLister.
type NoteListerFunc func(ctx context.Context, patientID uuid.UUID) ([]NoteSummary, error)

// ListByPatient calls f.
func (f NoteListerFunc) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]NoteSummary, error) {
	return f(ctx, patientID)
}

// Detail is a patient with its notes. Notes is never nil.
type Detail struct {
	Patient
	Notes []NoteSummary `json:"notes"`
}

// Handler serves the patient endpoints.
type Handler struct {
	repo  *Repository
	notes NoteLister
	log   *logger.Logger
}

// NewHandler creates a Handler. notes may be nil, in which case the detail
// response carries an empty notes array.
func NewHandler(repo *Repository, notes NoteLister, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{repo: repo, notes: notes, log: log.WithComponent("patient-handler")}
}

// Register mounts the patient routes on r.
func (h *Handler) Register(r gin.IRouter) {
	g := r.Group("/api/patients")
	g.GET("", h.List)
	g.GET("/:id", h.Get)
}

// List handles GET /api/patients.
func (h *Handler) List(c *gin.Context) {
	patients, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.log.WithContext(c.Request.Context()).Error("Failed to list patients", logger.Fields(logger.FieldError, err))
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, patients)
}

// Get handles GET /api/patients/:id.
func (h *Handler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := validation.ParseUUID(c.Param("id"), "Invalid patient ID")
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	p, err := h.repo.Get(ctx, id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	var notes []NoteSummary
	if h.notes != nil {
		if notes, err = h.notes.ListByPatient(ctx, id); err != nil {
			h.log.WithContext(ctx).Error("Failed to list patient notes", logger.Fields(
				logger.FieldPatientID, id.String(), logger.FieldError, err))
			server.RespondWithError(c, err)
			return
		}
	}
	if notes == nil {
		notes = []NoteSummary{}
	}
	server.RespondOK(c, Detail{Patient: *p, Notes: notes})
}
