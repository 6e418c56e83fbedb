// Package wsadapter provides the WebSocket recognizer client. Each outbound
// message is one frame as a base64 data URI text frame, fire-and-forget;
// inbound messages are JSON predictions.
package wsadapter

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"sign-translate-client/internal/models"
	"sign-translate-client/internal/observability/logging"
	"sign-translate-client/internal/observability/metrics"
	"sign-translate-client/internal/recognizer"
)

// Adapter implements recognizer.Adapter over a single WebSocket connection.
type Adapter struct {
	url         string
	dialTimeout time.Duration

	mu     sync.Mutex
	conn   *websocket.Conn
	cb     recognizer.Callback
	closed bool

	metrics *metrics.Metrics
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithDialTimeout sets the handshake timeout.
func WithDialTimeout(d time.Duration) Option {
	return func(a *Adapter) { a.dialTimeout = d }
}

// New creates a WebSocket adapter for the given service URL.
func New(url string, opts ...Option) *Adapter {
	a := &Adapter{
		url:         url,
		dialTimeout: 10 * time.Second,
		metrics:     metrics.DefaultMetrics,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Start dials the recognition service and begins the read loop.
func (a *Adapter) Start(ctx context.Context, cb recognizer.Callback) error {
	dialer := websocket.Dialer{HandshakeTimeout: a.dialTimeout}
	conn, resp, err := dialer.DialContext(ctx, a.url, nil)
	if err != nil {
		// On a failed handshake the response body carries the server's
		// reply and must be drained.
		if resp != nil {
			resp.Body.Close()
		}
		return err
	}

	a.mu.Lock()
	a.conn = conn
	a.cb = cb
	a.closed = false
	a.mu.Unlock()

	go a.readLoop(conn, cb)
	return nil
}

// SendFrame writes one frame to the socket as a text message.
func (a *Adapter) SendFrame(ctx context.Context, frame string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed || a.conn == nil {
		return websocket.ErrCloseSent
	}
	return a.conn.WriteMessage(websocket.TextMessage, []byte(frame))
}

// Close shuts the connection down. Idempotent; a read-loop error caused by
// this close is not reported through the callback.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	if a.conn != nil {
		return a.conn.Close()
	}
	return nil
}

// readLoop decodes inbound predictions until the connection dies. A single
// malformed message must not interrupt an otherwise healthy stream, so
// parse failures are dropped and logged rather than surfaced.
func (a *Adapter) readLoop(conn *websocket.Conn, cb recognizer.Callback) {
	logger := logging.WithComponent("wsadapter")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			a.mu.Lock()
			closed := a.closed
			a.mu.Unlock()
			if !closed {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					cb.OnError(recognizer.ErrStreamClosed)
				} else {
					cb.OnError(err)
				}
			}
			return
		}

		var msg models.ServiceMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			a.metrics.MalformedMessages.Inc()
			logger.Debug().Err(err).Int("bytes", len(data)).Msg("Dropping malformed message")
			continue
		}
		if msg.Word() == "" || msg.Confidence == nil {
			a.metrics.MalformedMessages.Inc()
			logger.Debug().Int("bytes", len(data)).Msg("Dropping message without prediction")
			continue
		}

		a.metrics.PredictionsReceived.Inc()
		cb.OnPrediction(msg.Word(), *msg.Confidence)
	}
}
