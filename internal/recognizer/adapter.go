// Package recognizer defines the interface for sign recognition adapters.
// The live WebSocket transport and the degraded fallback mode both
// implement it; everything above this layer is transport-agnostic.
package recognizer

import (
	"context"
	"errors"
)

// ErrStreamClosed is reported through Callback.OnError when the service
// closed the stream cleanly, as opposed to a transport failure.
var ErrStreamClosed = errors.New("recognition stream closed by service")

// Callback receives recognition results from the adapter.
type Callback interface {
	// OnPrediction is called for each recognized sign. Confidence is the
	// service's native scale (usually 0..1); normalization happens upstream.
	OnPrediction(word string, confidence float64)

	// OnError is called when the transport fails mid-session.
	OnError(err error)
}

// Adapter defines the interface for recognition transports.
type Adapter interface {
	// Start opens the session and begins delivering results to cb.
	Start(ctx context.Context, cb Callback) error

	// SendFrame sends one encoded frame (base64 data URI) to the service.
	SendFrame(ctx context.Context, frame string) error

	// Close ends the session and releases resources. Idempotent.
	Close() error
}
