package note

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/server"
	"github.com/kbukum/scribe/validation"
)

const (
	fieldPatientID = "patientId"
	fieldText      = "text"
	fieldAudio     = "audio"

	// Multipart parts beyond this stay on disk.
	multipartMemory = 8 << 20
)

// PlaybackSigner turns stored locators into playback URLs.
type PlaybackSigner interface {
	KeyFromLocator(locator string) string
	URLFor(ctx context.Context, key string) (string, error)
}

// Creator runs note creation.
type Creator interface {
	Create(ctx context.Context, in CreateInput) (*Note, error)
}

// PatientRef is the patient summary embedded in note listings.
type PatientRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ListItem is a note as rendered by GET /api/notes.
type ListItem struct {
	Note
	Patient *PatientRef `json:"patient"`
}

// Detail is a note as rendered by GET /api/notes/:id. AudioPlaybackURL is
// minted on every request.
type Detail struct {
	Note
	AudioPlaybackURL *string `json:"audioPlaybackUrl"`
}

// Handler serves the note endpoints.
type Handler struct {
	creator Creator
	repo    *Repository
	signer  PlaybackSigner
	log     *logger.Logger
}

// NewHandler creates a Handler.
func NewHandler(creator Creator, repo *Repository, signer PlaybackSigner, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{creator: creator, repo: repo, signer: signer, log: log.WithComponent("note-handler")}
}

// Register mounts the note routes on r.
func (h *Handler) Register(r gin.IRouter) {
	g := r.Group("/api/notes")
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
}

// List handles GET /api/notes.
func (h *Handler) List(c *gin.Context) {
	notes, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.log.WithContext(c.Request.Context()).Error("Failed to list notes", logger.Fields(logger.FieldError, err.Error()))
		server.RespondWithError(c, err)
		return
	}

	items := make([]ListItem, 0, len(notes))
	for _, n := range notes {
		item := ListItem{Note: n}
		if n.Patient != nil {
			item.Patient = &PatientRef{ID: n.Patient.ID, Name: n.Patient.Name}
		}
		items = append(items, item)
	}
	server.RespondOK(c, items)
}

// Get handles GET /api/notes/:id.
func (h *Handler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := validation.ParseUUID(c.Param("id"), MsgInvalidID)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	n, err := h.repo.Get(ctx, id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	resp := Detail{Note: *n}
	if n.AudioURL != nil && h.signer != nil {
		url, err := h.signer.URLFor(ctx, h.signer.KeyFromLocator(*n.AudioURL))
		if err != nil {
			h.log.WithContext(ctx).Warn("Failed to sign playback URL", logger.Fields(
				logger.FieldNoteID, id.String(), logger.FieldError, err.Error()))
		} else {
			resp.AudioPlaybackURL = &url
		}
	}
	server.RespondOK(c, resp)
}

// Create handles POST /api/notes. It accepts multipart/form-data with the
// fields patientId, text and audio, or a url-encoded form without audio.
func (h *Handler) Create(c *gin.Context) {
	in, err := h.bind(c.Request)
	defer in.Audio.Close()
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	n, err := h.creator.Create(c.Request.Context(), in)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondCreated(c, n)
}

// bind reads the submission. Any spooled audio is set on the returned input
// even when an error is returned, so the caller can release it.
func (h *Handler) bind(r *http.Request) (CreateInput, error) {
	var in CreateInput

	err := r.ParseMultipartForm(multipartMemory)
	if stderrors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		if maxErr := new(http.MaxBytesError); stderrors.As(err, &maxErr) {
			return in, errors.Validation(MsgFileTooLarge)
		}
		return in, errors.Validation(MsgInvalidBody).WithCause(err)
	}

	in.PatientID = r.PostForm.Get(fieldPatientID)
	if values, ok := r.PostForm[fieldText]; ok && len(values) > 0 {
		text := values[0]
		in.Text = &text
	}

	if r.MultipartForm == nil || len(r.MultipartForm.File[fieldAudio]) == 0 {
		return in, nil
	}
	fh := r.MultipartForm.File[fieldAudio][0]
	f, err := fh.Open()
	if err != nil {
		return in, errors.Validation(MsgInvalidBody).WithCause(err)
	}
	defer f.Close()

	audio, err := SpoolAudio(f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		return in, errors.Internal(err).WithMessage(MsgCreateFailed)
	}
	in.Audio = audio
	return in, nil
}
