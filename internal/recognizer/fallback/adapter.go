// Package fallback provides a degraded-mode recognizer used when the
// remote service is unreachable or live transport is disabled. It accepts
// frames and emits nothing, so the rest of the pipeline (camera preview,
// sampler, facade) keeps working without special cases.
package fallback

import (
	"context"
	"sync"

	"sign-translate-client/internal/recognizer"
)

// Adapter implements recognizer.Adapter with no real recognition.
type Adapter struct {
	mu            sync.Mutex
	cb            recognizer.Callback
	framesDropped int
	closed        bool
}

// New creates a new fallback adapter.
func New() *Adapter {
	return &Adapter{}
}

// Start records the callback and succeeds immediately.
func (a *Adapter) Start(ctx context.Context, cb recognizer.Callback) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cb = cb
	a.closed = false
	return nil
}

// SendFrame accepts and discards the frame. The callback is never invoked:
// demo output would be indistinguishable from real predictions to callers.
func (a *Adapter) SendFrame(ctx context.Context, frame string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.framesDropped++
	return nil
}

// FramesDropped returns how many frames were accepted and discarded.
func (a *Adapter) FramesDropped() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.framesDropped
}

// Close ends the session.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return nil
}
