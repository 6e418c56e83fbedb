// Package models defines the data structures shared by the live and
// batch translation pipelines.
package models

import (
	"math"
	"time"
)

// DefaultPrediction is the placeholder shown when nothing has been recognized.
const DefaultPrediction = "no sign detected"

// PredictionResult is a single recognized sign with a normalized confidence.
// Immutable once created; both pipelines produce this shape.
type PredictionResult struct {
	Prediction string `json:"prediction"`
	Confidence int    `json:"confidence"` // always 0..100
	Timestamp  string `json:"timestamp"`
}

// NewPredictionResult builds a PredictionResult from a service confidence
// value. Services report confidence as a float in [0,1]; anything above 1 is
// treated as already-percent. The stored value is clamped to [0,100].
func NewPredictionResult(prediction string, confidence float64) PredictionResult {
	pct := confidence
	if pct <= 1 {
		pct = pct * 100
	}
	c := int(math.Round(pct))
	if c < 0 {
		c = 0
	}
	if c > 100 {
		c = 100
	}
	return PredictionResult{
		Prediction: prediction,
		Confidence: c,
		Timestamp:  time.Now().Format(time.RFC3339),
	}
}

// ServiceMessage is one inbound JSON text frame from the live recognition
// service. The service emits either "prediction" or "current_word"; any
// other shape is ignored by the receiver.
type ServiceMessage struct {
	Prediction  string   `json:"prediction"`
	CurrentWord string   `json:"current_word"`
	Confidence  *float64 `json:"confidence"`
}

// Word returns the recognized word regardless of which field the service
// used, or "" if the message carries neither.
func (m ServiceMessage) Word() string {
	if m.Prediction != "" {
		return m.Prediction
	}
	return m.CurrentWord
}

// BoundingBox locates a detected sign within a video frame.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// VideoSegment is one time-boxed recognition from a processed video.
type VideoSegment struct {
	StartTime   float64     `json:"startTime"`
	EndTime     float64     `json:"endTime"`
	Prediction  string      `json:"prediction"`
	Confidence  float64     `json:"confidence"`
	BoundingBox BoundingBox `json:"boundingBox"`
}

// TranslationTaskResult is the terminal artifact of the batch pipeline.
// It is only ever constructed complete; partial results are never exposed.
type TranslationTaskResult struct {
	ID          string         `json:"id"`
	Filename    string         `json:"filename"`
	FileSize    int64          `json:"fileSize"`
	Segments    []VideoSegment `json:"segments"`
	Summary     string         `json:"summary"`
	DurationSec float64        `json:"duration"`
	Status      string         `json:"status"`
	CreatedAt   string         `json:"createdAt"`
	CompletedAt string         `json:"completedAt"`
}

// UploadResponse is the upload endpoint's reply.
type UploadResponse struct {
	ID        string `json:"id"`
	UploadURL string `json:"uploadUrl"`
	Filename  string `json:"filename"`
	FileSize  int64  `json:"fileSize"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

// ProcessRequest asks the processing endpoint to translate an uploaded video.
type ProcessRequest struct {
	VideoID  string `json:"videoId"`
	Language string `json:"language"`
}

// ProcessResponse is the processing endpoint's reply. A nil Result on an
// otherwise successful call is treated as a processing failure.
type ProcessResponse struct {
	ID       string                 `json:"id"`
	Status   string                 `json:"status"`
	Progress int                    `json:"progress"`
	Result   *TranslationTaskResult `json:"result,omitempty"`
}

// HistoryEntry is one saved prediction in the remote history store.
type HistoryEntry struct {
	ID         string `json:"id"`
	UserID     string `json:"userId"`
	Prediction string `json:"prediction"`
	Confidence int    `json:"confidence"`
	Timestamp  string `json:"timestamp"`
}
