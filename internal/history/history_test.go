package history

import (
	"fmt"
	"testing"

	"sign-translate-client/internal/models"
)

func TestRecorder_InitialState(t *testing.T) {
	r := NewRecorder()

	if got := r.Current().Prediction; got != models.DefaultPrediction {
		t.Errorf("expected default prediction %q, got %q", models.DefaultPrediction, got)
	}
	if r.Len() != 0 {
		t.Errorf("expected empty buffer, got %d entries", r.Len())
	}
}

func TestRecorder_RecordSetsCurrentAndPrepends(t *testing.T) {
	r := NewRecorder()

	r.Record(models.NewPredictionResult("hello", 0.9))
	r.Record(models.NewPredictionResult("world", 0.8))

	if got := r.Current().Prediction; got != "world" {
		t.Errorf("expected current 'world', got %q", got)
	}

	entries := r.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Prediction != "world" || entries[1].Prediction != "hello" {
		t.Errorf("expected most-recent-first order, got %q, %q",
			entries[0].Prediction, entries[1].Prediction)
	}
}

func TestRecorder_BoundAndEviction(t *testing.T) {
	r := NewRecorder()

	for i := 1; i <= Capacity+1; i++ {
		r.Record(models.NewPredictionResult(fmt.Sprintf("sign-%d", i), 0.5))
	}

	if r.Len() != Capacity {
		t.Fatalf("expected buffer bounded to %d, got %d", Capacity, r.Len())
	}

	entries := r.Entries()
	if entries[0].Prediction != fmt.Sprintf("sign-%d", Capacity+1) {
		t.Errorf("expected newest at index 0, got %q", entries[0].Prediction)
	}
	for _, e := range entries {
		if e.Prediction == "sign-1" {
			t.Error("oldest entry should have been evicted")
		}
	}
}

func TestRecorder_Clear(t *testing.T) {
	r := NewRecorder()
	r.Record(models.NewPredictionResult("hello", 0.9))

	r.Clear()

	if got := r.Current().Prediction; got != models.DefaultPrediction {
		t.Errorf("expected default after clear, got %q", got)
	}
	if r.Len() != 0 {
		t.Errorf("expected empty buffer after clear, got %d", r.Len())
	}
}

func TestRecorder_EntriesReturnsCopy(t *testing.T) {
	r := NewRecorder()
	r.Record(models.NewPredictionResult("hello", 0.9))

	entries := r.Entries()
	entries[0].Prediction = "mutated"

	if got := r.Entries()[0].Prediction; got != "hello" {
		t.Errorf("internal buffer was mutated through the returned slice: %q", got)
	}
}

func TestNewPredictionResult_Normalization(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		expected   int
	}{
		{"zero", 0, 0},
		{"fraction", 0.87, 87},
		{"rounds up", 0.875, 88},
		{"rounds down", 0.874, 87},
		{"one", 1, 100},
		{"already percent", 87, 87},
		{"over percent clamps", 150, 100},
		{"negative clamps", -0.5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := models.NewPredictionResult("sign", tt.confidence)
			if p.Confidence != tt.expected {
				t.Errorf("confidence %v: expected %d, got %d",
					tt.confidence, tt.expected, p.Confidence)
			}
			if p.Confidence < 0 || p.Confidence > 100 {
				t.Errorf("confidence out of [0,100]: %d", p.Confidence)
			}
			if p.Timestamp == "" {
				t.Error("expected non-empty timestamp")
			}
		})
	}
}
