package note

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/observability"
	"github.com/kbukum/scribe/patient"
	"github.com/kbukum/scribe/storage"
	"github.com/kbukum/scribe/transcription"
	"github.com/kbukum/scribe/util"
)

const (
	serviceName = "note-pipeline"

	stageLookup     = "lookup"
	stageRead       = "read"
	stageUpload     = "upload"
	stageTranscribe = "transcribe"
	stageSummarize  = "summarize"
	stagePersist    = "persist"

	compensateTimeout = 10 * time.Second
)

// PatientFinder looks up the patient a note belongs to. A missing patient is
// reported as a NotFound AppError.
type PatientFinder interface {
	Get(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

// AudioStore keeps uploaded recordings.
type AudioStore interface {
	Store(ctx context.Context, key string, data []byte, mediaType string) (string, error)
	Remove(ctx context.Context, key string) error
}

// Summarizer turns clinical text into a SOAP note.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// NoteWriter persists a new note.
type NoteWriter interface {
	Create(ctx context.Context, n *Note) error
}

// Pipeline creates notes from text or audio submissions.
type Pipeline struct {
	patients    PatientFinder
	audio       AudioStore
	transcriber transcription.Transcriber
	summarizer  Summarizer
	notes       NoteWriter

	metrics *observability.Metrics
	log     *logger.Logger
	now     func() time.Time
}

// PipelineOption customizes a Pipeline.
type PipelineOption func(*Pipeline)

// WithMetrics records stage and note counters on m.
func WithMetrics(m *observability.Metrics) PipelineOption {
	return func(p *Pipeline) { p.metrics = m }
}

// WithLogger sets the pipeline logger.
func WithLogger(log *logger.Logger) PipelineOption {
	return func(p *Pipeline) {
		if log != nil {
			p.log = log
		}
	}
}

// WithClock replaces the time source used for upload keys.
func WithClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) { p.now = now }
}

// NewPipeline creates a Pipeline.
func NewPipeline(
	patients PatientFinder,
	audio AudioStore,
	transcriber transcription.Transcriber,
	summarizer Summarizer,
	notes NoteWriter,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		patients:    patients,
		audio:       audio,
		transcriber: transcriber,
		summarizer:  summarizer,
		notes:       notes,
		log:         logger.Nop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.WithComponent(serviceName)
	return p
}

// Create runs the ingestion pipeline and returns the persisted note with its
// patient attached.
//
// Validation failures return a validation AppError before any collaborator
// is called. Any failure after validation returns an internal AppError with
// the message "Failed to create note"; if audio was already uploaded it is
// removed again, and nothing is persisted.
func (p *Pipeline) Create(ctx context.Context, in CreateInput) (*Note, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanNoteCreate)
	defer span.End()

	if err := in.Validate(); err != nil {
		return nil, err
	}
	patientID := uuid.MustParse(in.PatientID)
	observability.SetSpanAttribute(ctx, observability.AttrPatientID, patientID.String())
	log := p.log.WithContext(ctx).WithFields(logger.Fields(logger.FieldPatientID, patientID.String()))

	pat, err := p.patients.Get(ctx, patientID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NotFound("Patient", patientID.String())
		}
		return nil, p.fail(ctx, log, stageLookup, err)
	}

	n := &Note{PatientID: patientID, InputType: InputText, RawText: in.Text}
	observability.SetSpanAttribute(ctx, observability.AttrInputType, string(n.InputType))

	var uploadedKey string
	if in.Audio != nil {
		if err := in.Audio.Validate(); err != nil {
			return nil, err
		}
		n.InputType = InputAudio
		observability.SetSpanAttribute(ctx, observability.AttrInputType, string(n.InputType))

		data, err := in.Audio.Bytes()
		if err != nil {
			return nil, p.fail(ctx, log, stageRead, err)
		}

		key := storage.AudioKey(patientID.String(), in.Audio.Name, p.now())
		err = p.stage(ctx, observability.SpanNoteUpload, stageUpload, func(ctx context.Context) error {
			locator, err := p.audio.Store(ctx, key, data, in.Audio.ContentType)
			if err != nil {
				return err
			}
			n.AudioURL = &locator
			return nil
		})
		if err != nil {
			return nil, p.fail(ctx, log, stageUpload, err)
		}
		uploadedKey = key
		log.Debug("Audio uploaded", logger.Fields("key", key, "bytes", len(data)))

		err = p.stage(ctx, observability.SpanNoteTranscribe, stageTranscribe, func(ctx context.Context) error {
			resp, err := p.transcriber.Transcribe(ctx, transcription.TranscriptionRequest{
				Audio:       data,
				FileName:    in.Audio.Name,
				ContentType: in.Audio.ContentType,
			})
			if err != nil {
				return err
			}
			n.Transcription = util.Ptr(resp.Text)
			n.RawText = util.Ptr(resp.Text)
			return nil
		})
		if err != nil {
			p.compensate(ctx, log, uploadedKey)
			return nil, p.fail(ctx, log, stageTranscribe, err)
		}
		log.Debug("Audio transcribed", logger.Fields("chars", len(*n.Transcription)))
	}

	err = p.stage(ctx, observability.SpanNoteSummarize, stageSummarize, func(ctx context.Context) error {
		summary, err := p.summarizer.Summarize(ctx, util.Deref(n.RawText))
		if err != nil {
			return err
		}
		n.Summary = &summary
		return nil
	})
	if err != nil {
		p.compensate(ctx, log, uploadedKey)
		return nil, p.fail(ctx, log, stageSummarize, err)
	}

	err = p.stage(ctx, observability.SpanNotePersist, stagePersist, func(ctx context.Context) error {
		return p.notes.Create(ctx, n)
	})
	if err != nil {
		p.compensate(ctx, log, uploadedKey)
		return nil, p.fail(ctx, log, stagePersist, err)
	}

	n.Patient = pat
	observability.SetSpanAttribute(ctx, observability.AttrNoteID, n.ID.String())
	p.metrics.RecordNoteCreated(ctx, string(n.InputType))
	log.Info("Note created", logger.Fields(
		logger.FieldNoteID, n.ID.String(),
		"input_type", string(n.InputType),
	))
	return n, nil
}

// stage runs fn inside a child span and records its duration.
func (p *Pipeline) stage(ctx context.Context, spanName, name string, fn func(ctx context.Context) error) error {
	ctx, span := observability.StartSpan(ctx, spanName)
	defer span.End()

	start := time.Now()
	err := fn(ctx)

	status := "ok"
	if err != nil {
		status = "error"
		observability.RecordError(span, err)
	}
	p.metrics.RecordStage(ctx, name, status, time.Since(start))
	return err
}

func (p *Pipeline) fail(ctx context.Context, log *logger.Logger, stage string, cause error) error {
	observability.SetSpanError(ctx, cause)
	p.metrics.RecordNoteFailed(ctx, stage)
	log.Error("Note creation failed", logger.Fields(
		logger.FieldStage, stage,
		logger.FieldError, cause.Error(),
	))
	return errors.Internal(cause).WithMessage(MsgCreateFailed)
}

// compensate removes an uploaded recording after a later stage failed. It
// runs even when ctx was canceled.
func (p *Pipeline) compensate(ctx context.Context, log *logger.Logger, key string) {
	if key == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensateTimeout)
	defer cancel()

	if err := p.audio.Remove(ctx, key); err != nil {
		log.Warn("Failed to remove orphaned audio", logger.Fields("key", key, logger.FieldError, err.Error()))
		return
	}
	log.Debug("Removed orphaned audio", logger.Fields("key", key))
}
