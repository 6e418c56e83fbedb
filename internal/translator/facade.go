// Package translator is the single entry point for callers. It composes
// the live channel, the batch orchestrator and the shared history recorder
// into one facade so UI layers never touch the pipelines directly.
package translator

import (
	"context"

	"github.com/rs/zerolog"

	"sign-translate-client/internal/batch"
	"sign-translate-client/internal/history"
	"sign-translate-client/internal/historystore"
	"sign-translate-client/internal/live"
	"sign-translate-client/internal/models"
	"sign-translate-client/internal/observability/logging"
)

// Status is a point-in-time snapshot of everything a caller renders.
type Status struct {
	Connection     live.ConnectionState
	FallbackReason live.FallbackReason
	Recognizing    bool
	Current        models.PredictionResult
	History        []models.PredictionResult
	Upload         batch.Session
}

// Facade coordinates both pipelines over one result model.
type Facade struct {
	channel      *live.Channel
	orchestrator *batch.Orchestrator
	recorder     *history.Recorder
	store        *historystore.Client
	userID       string

	logger zerolog.Logger
}

// Option configures a Facade.
type Option func(*Facade)

// WithHistoryStore enables remote history persistence.
func WithHistoryStore(store *historystore.Client, userID string) Option {
	return func(f *Facade) {
		f.store = store
		f.userID = userID
	}
}

// New wires the facade. channel, orchestrator and recorder are required;
// the recorder must be the same instance the channel records into.
func New(channel *live.Channel, orchestrator *batch.Orchestrator, recorder *history.Recorder, opts ...Option) *Facade {
	f := &Facade{
		channel:      channel,
		orchestrator: orchestrator,
		recorder:     recorder,
		logger:       logging.WithComponent("translator"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Connect opens the live channel.
func (f *Facade) Connect(ctx context.Context) error {
	return f.channel.Connect(ctx)
}

// Disconnect tears down the live channel and resets the current prediction.
func (f *Facade) Disconnect() {
	f.channel.Disconnect()
}

// ToggleRecognition flips recognition with connect-on-demand: stopping when
// running, starting when connected, and connecting first when the channel
// is down.
func (f *Facade) ToggleRecognition(ctx context.Context) error {
	switch f.channel.State() {
	case live.StateRecognizing:
		f.channel.StopRecognition()
		return nil
	case live.StateConnected:
		return f.channel.StartRecognition(ctx)
	case live.StateFallback:
		if err := f.channel.StartRecognition(ctx); err == live.ErrAlreadyRecognizing {
			f.channel.StopRecognition()
			return nil
		} else if err != nil {
			return err
		}
		return nil
	default: // Disconnected, Error
		if err := f.channel.Connect(ctx); err != nil {
			return err
		}
		return f.channel.StartRecognition(ctx)
	}
}

// UploadFile runs a video through the batch pipeline. On completion the
// task's segments are replayed into the shared history model so both
// pipelines surface results the same way. Validation errors are returned;
// pipeline failures land in the upload session's Failed stage.
func (f *Facade) UploadFile(ctx context.Context, file batch.FileInfo) error {
	if err := f.orchestrator.Submit(ctx, file); err != nil {
		return err
	}

	s := f.orchestrator.Session()
	if s.Stage == batch.StageComplete && s.Result != nil {
		f.replayResult(s.Result)
	}
	return nil
}

// replayResult records each recognized segment in order.
func (f *Facade) replayResult(result *models.TranslationTaskResult) {
	for _, seg := range result.Segments {
		f.recorder.Record(models.NewPredictionResult(seg.Prediction, seg.Confidence))
	}
	f.logger.Info().
		Str("resultId", result.ID).
		Int("segments", len(result.Segments)).
		Msg("Batch result replayed into history")
}

// RemoveFile discards the selected file and returns the upload session to
// Idle, releasing the preview reference.
func (f *Facade) RemoveFile() {
	f.orchestrator.Reset()
}

// ClearHistory empties the local history buffer and resets the current
// prediction.
func (f *Facade) ClearHistory() {
	f.recorder.Clear()
}

// SaveCurrent persists the current prediction to the remote history store.
// A no-op default prediction is not worth saving and is rejected locally.
func (f *Facade) SaveCurrent(ctx context.Context) (models.HistoryEntry, error) {
	cur := f.recorder.Current()
	if cur.Prediction == models.DefaultPrediction {
		return models.HistoryEntry{}, historystore.ErrNothingToSave
	}
	if f.store == nil {
		return models.HistoryEntry{}, historystore.ErrNoStore
	}
	return f.store.Save(ctx, f.userID, cur)
}

// SavedHistory lists the remote history, falling back to the local cache
// when the API is unreachable.
func (f *Facade) SavedHistory(ctx context.Context) ([]models.HistoryEntry, error) {
	if f.store == nil {
		return nil, historystore.ErrNoStore
	}
	entries, err := f.store.List(ctx, f.userID)
	if err != nil {
		if cached, cacheErr := f.store.ListCached(f.userID); cacheErr == nil {
			f.logger.Warn().Err(err).Msg("History API unreachable, serving cached list")
			return cached, nil
		}
		return nil, err
	}
	return entries, nil
}

// DeleteSaved removes one remote history entry.
func (f *Facade) DeleteSaved(ctx context.Context, entryID string) error {
	if f.store == nil {
		return historystore.ErrNoStore
	}
	return f.store.Delete(ctx, f.userID, entryID)
}

// Status returns a consistent-enough snapshot for rendering. Each field is
// internally consistent; the set is not taken under one global lock.
func (f *Facade) Status() Status {
	return Status{
		Connection:     f.channel.State(),
		FallbackReason: f.channel.Reason(),
		Recognizing:    f.channel.Recognizing(),
		Current:        f.recorder.Current(),
		History:        f.recorder.Entries(),
		Upload:         f.orchestrator.Session(),
	}
}
