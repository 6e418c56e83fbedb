// Package live owns the live translation pipeline: one channel to the
// recognition service, its connection state machine, and the frame sampler
// that feeds it.
package live

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"sign-translate-client/internal/capture"
	"sign-translate-client/internal/history"
	"sign-translate-client/internal/models"
	"sign-translate-client/internal/observability/logging"
	"sign-translate-client/internal/observability/metrics"
	"sign-translate-client/internal/recognizer"
	"sign-translate-client/internal/recognizer/fallback"
)

// Errors for invalid channel operations.
var (
	ErrNotConnected       = errors.New("live channel is not connected")
	ErrAlreadyRecognizing = errors.New("recognition is already running")
)

// FrameProvider supplies encoded frames on demand; nil means not ready.
type FrameProvider interface {
	CaptureFrame() []byte
}

// AdapterFactory builds a fresh transport adapter for a connection attempt.
type AdapterFactory func() recognizer.Adapter

// Channel manages the single bidirectional connection to the recognition
// service. It owns the ConnectionState exclusively; callers read it via
// State(). Reconnection is caller-initiated - the channel never retries in
// the background.
type Channel struct {
	newAdapter    AdapterFactory
	capturer      FrameProvider
	recorder      *history.Recorder
	sampler       *Sampler
	liveEnabled   bool
	fallbackOnErr bool
	onPrediction  func(models.PredictionResult)

	mu          sync.Mutex
	state       ConnectionState
	reason      FallbackReason
	adapter     recognizer.Adapter
	recognizing bool

	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// Option configures a Channel.
type Option func(*Channel)

// WithSampleInterval overrides the frame sampling period.
func WithSampleInterval(d time.Duration) Option {
	return func(c *Channel) { c.sampler = NewSampler(d) }
}

// WithLiveDisabled forces fallback mode on every connect.
func WithLiveDisabled() Option {
	return func(c *Channel) { c.liveEnabled = false }
}

// WithoutFallback makes dial failures land in the Error state instead of
// degrading to fallback mode.
func WithoutFallback() Option {
	return func(c *Channel) { c.fallbackOnErr = false }
}

// WithPredictionHook registers a function invoked for every recorded
// prediction, after it is applied to the history model.
func WithPredictionHook(hook func(models.PredictionResult)) Option {
	return func(c *Channel) { c.onPrediction = hook }
}

// NewChannel creates a disconnected channel.
func NewChannel(factory AdapterFactory, capturer FrameProvider, recorder *history.Recorder, opts ...Option) *Channel {
	c := &Channel{
		newAdapter:    factory,
		capturer:      capturer,
		recorder:      recorder,
		sampler:       NewSampler(DefaultSampleInterval),
		liveEnabled:   true,
		fallbackOnErr: true,
		state:         StateDisconnected,
		logger:        logging.WithComponent("live-channel"),
		metrics:       metrics.DefaultMetrics,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current connection state.
func (c *Channel) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Recognizing reports whether the sampler is armed. In fallback mode this
// is the only signal, since the state stays Fallback.
func (c *Channel) Recognizing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recognizing
}

// Reason returns why the channel is in fallback mode, or FallbackNone.
func (c *Channel) Reason() FallbackReason {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reason
}

// Connect opens the transport. Valid from Disconnected, Error or Fallback;
// a no-op elsewhere. If live transport is disabled, or the service is
// unreachable and fallback is permitted, the channel enters Fallback and
// Connect returns nil - degraded, not failed.
func (c *Channel) Connect(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StateConnecting, StateConnected, StateRecognizing:
		c.mu.Unlock()
		return nil
	}

	c.metrics.ConnectionsTotal.Inc()
	c.setStateLocked(StateConnecting)
	// Connecting from Fallback replaces the degraded adapter; release it so
	// the sampler has nothing to feed until the dial settles.
	old := c.adapter
	c.adapter = nil
	c.mu.Unlock()

	if old != nil {
		old.Close()
	}

	if !c.liveEnabled {
		c.enterFallback(ctx, FallbackLiveDisabled)
		return nil
	}

	a := c.newAdapter()
	if err := a.Start(ctx, c); err != nil {
		c.metrics.ConnectionsFailed.Inc()
		c.logger.Warn().Err(err).Msg("Failed to reach recognition service")
		if c.fallbackOnErr {
			c.enterFallback(ctx, FallbackServiceUnreachable)
			return nil
		}
		c.mu.Lock()
		if c.state == StateConnecting {
			c.setStateLocked(StateError)
		}
		c.mu.Unlock()
		return fmt.Errorf("connect recognition service: %w", err)
	}

	c.mu.Lock()
	if c.state != StateConnecting {
		// Disconnect raced the dial; drop the fresh transport.
		c.mu.Unlock()
		a.Close()
		return nil
	}
	c.adapter = a
	c.reason = FallbackNone
	// Recognition kept running across an upgrade from fallback; the new
	// transport inherits the armed sampler.
	if c.recognizing {
		c.setStateLocked(StateRecognizing)
	} else {
		c.setStateLocked(StateConnected)
	}
	c.mu.Unlock()

	c.logger.Info().Msg("Connected to recognition service")
	return nil
}

func (c *Channel) enterFallback(ctx context.Context, reason FallbackReason) {
	a := fallback.New()
	a.Start(ctx, c) // never fails

	c.mu.Lock()
	if c.state != StateConnecting {
		// Disconnect raced the dial; stay down.
		c.mu.Unlock()
		a.Close()
		return
	}
	c.adapter = a
	c.reason = reason
	c.setStateLocked(StateFallback)
	c.mu.Unlock()

	c.logger.Info().Str("reason", reason.String()).Msg("Live channel in fallback mode")
}

// StartRecognition arms the frame sampler. Valid from Connected or
// Fallback; in fallback mode the state stays Fallback so callers keep
// seeing the degraded status.
func (c *Channel) StartRecognition(ctx context.Context) error {
	c.mu.Lock()
	if c.recognizing {
		c.mu.Unlock()
		return ErrAlreadyRecognizing
	}
	if !c.state.CanStartRecognition() {
		c.mu.Unlock()
		return ErrNotConnected
	}
	c.recognizing = true
	if c.state == StateConnected {
		c.setStateLocked(StateRecognizing)
	}
	c.mu.Unlock()

	c.sampler.Arm(c.sampleTick)
	c.metrics.RecognitionActive.Set(1)
	c.logger.Info().Msg("Recognition started")
	return nil
}

// StopRecognition disarms the sampler. Idempotent.
func (c *Channel) StopRecognition() {
	c.mu.Lock()
	if !c.recognizing {
		c.mu.Unlock()
		return
	}
	c.recognizing = false
	if c.state == StateRecognizing {
		c.setStateLocked(StateConnected)
	}
	c.mu.Unlock()

	c.sampler.Disarm()
	c.metrics.RecognitionActive.Set(0)
	c.logger.Info().Msg("Recognition stopped")
}

// Disconnect releases the transport from any state, cancels sampling, and
// resets the current prediction to the default.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	c.recognizing = false
	a := c.adapter
	c.adapter = nil
	c.reason = FallbackNone
	c.setStateLocked(StateDisconnected)
	c.mu.Unlock()

	c.sampler.Disarm()
	c.metrics.RecognitionActive.Set(0)
	if a != nil {
		a.Close()
	}
	c.recorder.ResetCurrent()
	c.logger.Info().Msg("Disconnected from recognition service")
}

// sampleTick captures and sends one frame. Not ready to send means skip
// silently: frames are never queued, a stale frame is worthless.
func (c *Channel) sampleTick() {
	c.mu.Lock()
	a := c.adapter
	ready := c.recognizing && a != nil
	c.mu.Unlock()
	if !ready {
		c.metrics.FramesSkipped.Inc()
		return
	}

	frame := c.capturer.CaptureFrame()
	if frame == nil {
		c.metrics.FramesSkipped.Inc()
		return
	}
	c.metrics.FramesCaptured.Inc()

	if err := a.SendFrame(context.Background(), capture.DataURI(frame)); err != nil {
		c.metrics.FramesSkipped.Inc()
		c.logger.Debug().Err(err).Msg("Dropped frame")
		return
	}
	c.metrics.FramesSent.Inc()
}

// setStateLocked transitions the state. Caller holds c.mu.
func (c *Channel) setStateLocked(s ConnectionState) {
	if c.state == s {
		return
	}
	c.state = s
	c.metrics.RecordStateTransition(s.String())
}

// --- recognizer.Callback implementation ---

// OnPrediction normalizes and records an inbound prediction, in receipt
// order.
func (c *Channel) OnPrediction(word string, confidence float64) {
	p := models.NewPredictionResult(word, confidence)
	c.recorder.Record(p)
	c.metrics.PredictionConfidence.Observe(float64(p.Confidence))

	if c.onPrediction != nil {
		c.onPrediction(p)
	}
}

// OnError handles a mid-session transport failure. A clean close by the
// service lands in Disconnected; anything else lands in Error. Either way
// sampling is cancelled and the caller decides whether to reconnect.
func (c *Channel) OnError(err error) {
	target := StateError
	if errors.Is(err, recognizer.ErrStreamClosed) {
		target = StateDisconnected
	}

	c.mu.Lock()
	c.recognizing = false
	a := c.adapter
	c.adapter = nil
	c.setStateLocked(target)
	c.mu.Unlock()

	c.sampler.Disarm()
	c.metrics.RecognitionActive.Set(0)
	if a != nil {
		a.Close()
	}

	c.logger.Warn().Err(err).Str("state", target.String()).Msg("Live transport failed")
}
