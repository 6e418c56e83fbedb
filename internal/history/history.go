// Package history holds the unified result model shared by the live and
// batch pipelines: the current prediction plus a bounded most-recent-first
// buffer of past predictions. It has no knowledge of transport.
package history

import (
	"sync"

	"sign-translate-client/internal/models"
)

// Capacity bounds the in-memory buffer; older entries are silently evicted.
const Capacity = 10

// Recorder maintains the current prediction and the history buffer.
// Thread-safe for concurrent access.
type Recorder struct {
	mu      sync.RWMutex
	current models.PredictionResult
	entries []models.PredictionResult
}

// NewRecorder creates an empty recorder showing the default prediction.
func NewRecorder() *Recorder {
	return &Recorder{
		current: models.PredictionResult{Prediction: models.DefaultPrediction},
	}
}

// Record sets the current prediction and prepends it to the buffer,
// trimming to Capacity. Entries are applied in receipt order; the recorder
// does not reorder or deduplicate.
func (r *Recorder) Record(p models.PredictionResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.current = p
	r.entries = append([]models.PredictionResult{p}, r.entries...)
	if len(r.entries) > Capacity {
		r.entries = r.entries[:Capacity]
	}
}

// Clear resets the current prediction to the default and empties the buffer.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.current = models.PredictionResult{Prediction: models.DefaultPrediction}
	r.entries = nil
}

// ResetCurrent puts the current prediction back to the default without
// touching the buffer. Used when the live channel disconnects.
func (r *Recorder) ResetCurrent() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = models.PredictionResult{Prediction: models.DefaultPrediction}
}

// Current returns the most recent prediction, or the default if none.
func (r *Recorder) Current() models.PredictionResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Entries returns a copy of the buffer, most recent first.
func (r *Recorder) Entries() []models.PredictionResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.PredictionResult, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of buffered entries.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
