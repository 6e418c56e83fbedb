package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sign-translate-client/internal/models"
	"sign-translate-client/internal/observability/logging"
	"sign-translate-client/internal/observability/metrics"
)

// Uploader is the external upload endpoint.
type Uploader interface {
	Upload(ctx context.Context, file FileInfo, userID string) (models.UploadResponse, error)
}

// Processor is the external processing endpoint.
type Processor interface {
	Process(ctx context.Context, videoID, language string) (models.ProcessResponse, error)
}

// Orchestrator sequences one upload session at a time through
// validate -> upload -> process -> terminal stage. A new Submit or a Reset
// bumps the session epoch; any in-flight completion carrying a stale epoch
// is discarded, which closes the reset-during-flight race.
type Orchestrator struct {
	uploader  Uploader
	processor Processor
	validator *Validator
	language  string
	userID    string

	mu      sync.Mutex
	epoch   uint64
	session Session

	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithValidator overrides the default file validator.
func WithValidator(v *Validator) Option {
	return func(o *Orchestrator) { o.validator = v }
}

// WithLanguage sets the sign language requested from the processor.
func WithLanguage(lang string) Option {
	return func(o *Orchestrator) { o.language = lang }
}

// WithUserID attaches a user identity to uploads.
func WithUserID(id string) Option {
	return func(o *Orchestrator) { o.userID = id }
}

// NewOrchestrator creates an idle orchestrator.
func NewOrchestrator(uploader Uploader, processor Processor, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		uploader:  uploader,
		processor: processor,
		validator: NewValidator(0, nil),
		language:  "asl",
		logger:    logging.WithComponent("batch"),
		metrics:   metrics.DefaultMetrics,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.session = Session{Stage: StageIdle}
	return o
}

// Session returns a snapshot of the current session.
func (o *Orchestrator) Session() Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session
}

// Epoch returns the current session epoch.
func (o *Orchestrator) Epoch() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.epoch
}

// Submit runs a file through the full pipeline. Validation failures are
// returned immediately and leave the session untouched at Idle; network
// failures are absorbed into a terminal Failed stage, never returned.
// Submit blocks until the session is terminal (or superseded).
func (o *Orchestrator) Submit(ctx context.Context, file FileInfo) error {
	if err := o.validator.Validate(file); err != nil {
		o.logger.Warn().Err(err).Str("filename", file.Name).Msg("Rejected file")
		return err
	}

	o.mu.Lock()
	// Starting a new upload invalidates the prior session and its preview.
	o.releasePreviewLocked()
	o.epoch++
	myEpoch := o.epoch
	o.session = Session{
		File:       file,
		PreviewRef: "preview-" + uuid.NewString(),
		Stage:      StageUploading,
	}
	o.mu.Unlock()

	logger := logging.WithUpload(fmt.Sprintf("epoch-%d", myEpoch), file.Name)
	logger.Info().Int64("sizeBytes", file.SizeBytes).Msg("Upload started")
	started := time.Now()

	up, err := o.uploader.Upload(ctx, file, o.userID)
	if err != nil {
		o.failIfCurrent(myEpoch, StageUploading, fmt.Sprintf("upload failed: %v", err))
		o.metrics.RecordUploadOutcome("upload_failed", time.Since(started).Seconds())
		return nil
	}

	advanced := o.applyIfCurrent(myEpoch, func(s *Session) {
		s.Stage = StageProcessing
		s.UploadProgress = 100
	})
	if !advanced {
		logger.Debug().Msg("Discarding upload completion for superseded session")
		return nil
	}
	o.metrics.UploadBytes.Add(float64(file.SizeBytes))
	logger.Info().Str("videoId", up.ID).Msg("Upload complete, processing")

	res, err := o.processor.Process(ctx, up.ID, o.language)
	switch {
	case err != nil:
		o.failIfCurrent(myEpoch, StageProcessing, fmt.Sprintf("processing failed: %v", err))
		o.metrics.RecordUploadOutcome("processing_failed", time.Since(started).Seconds())
	case res.Result == nil:
		o.failIfCurrent(myEpoch, StageProcessing, ErrNoResult.Error())
		o.metrics.RecordUploadOutcome("no_result", time.Since(started).Seconds())
	default:
		completed := o.applyIfCurrent(myEpoch, func(s *Session) {
			s.Stage = StageComplete
			s.Result = res.Result
		})
		if completed {
			o.metrics.RecordUploadOutcome("complete", time.Since(started).Seconds())
			logger.Info().
				Str("resultId", res.Result.ID).
				Int("segments", len(res.Result.Segments)).
				Msg("Processing complete")
		} else {
			logger.Debug().Msg("Discarding late result for superseded session")
		}
	}
	return nil
}

// Reset releases the preview reference and returns the session to Idle,
// discarding any in-flight work via the epoch bump.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.releasePreviewLocked()
	o.epoch++
	o.session = Session{Stage: StageIdle}
}

// applyIfCurrent mutates the session only when the epoch still matches and
// the resulting stage transition is legal. Returns false for stale or
// illegal applications.
func (o *Orchestrator) applyIfCurrent(epoch uint64, fn func(*Session)) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if epoch != o.epoch {
		return false
	}
	next := o.session
	fn(&next)
	if next.Stage != o.session.Stage && !o.session.Stage.canAdvance(next.Stage) {
		o.logger.Error().
			Str("from", o.session.Stage.String()).
			Str("to", next.Stage.String()).
			Msg("Refusing backward stage transition")
		return false
	}
	o.session = next
	return true
}

// failIfCurrent moves the session to Failed with a message, guarding on
// both the epoch and the expected originating stage.
func (o *Orchestrator) failIfCurrent(epoch uint64, from Stage, msg string) {
	applied := o.applyIfCurrent(epoch, func(s *Session) {
		s.Stage = StageFailed
		s.Error = msg
	})
	if applied {
		o.logger.Warn().Str("from", from.String()).Str("error", msg).Msg("Session failed")
	}
}

// releasePreviewLocked drops the preview reference. Caller holds o.mu.
// Skipping this on re-submission would leak the reference.
func (o *Orchestrator) releasePreviewLocked() {
	if o.session.PreviewRef != "" {
		o.logger.Debug().Str("preview", o.session.PreviewRef).Msg("Releasing preview")
		o.session.PreviewRef = ""
	}
}
