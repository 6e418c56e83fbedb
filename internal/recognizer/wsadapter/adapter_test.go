package wsadapter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type prediction struct {
	word       string
	confidence float64
}

type collectingCallback struct {
	mu          sync.Mutex
	predictions []prediction
	errors      []error
}

func (c *collectingCallback) OnPrediction(word string, confidence float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.predictions = append(c.predictions, prediction{word, confidence})
}

func (c *collectingCallback) OnError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = append(c.errors, err)
}

func (c *collectingCallback) snapshot() ([]prediction, []error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]prediction(nil), c.predictions...), append([]error(nil), c.errors...)
}

func (c *collectingCallback) waitFor(t *testing.T, n int) []prediction {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		preds, _ := c.snapshot()
		if len(preds) >= n {
			return preds
		}
		time.Sleep(5 * time.Millisecond)
	}
	preds, _ := c.snapshot()
	t.Fatalf("timed out waiting for %d predictions, got %d", n, len(preds))
	return preds
}

// startService runs a websocket endpoint that replies to each inbound frame
// with the next canned message.
func startService(t *testing.T, replies []string, gotFrames chan<- string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		i := 0
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if gotFrames != nil {
				gotFrames <- string(data)
			}
			if i < len(replies) {
				if err := conn.WriteMessage(websocket.TextMessage, []byte(replies[i])); err != nil {
					return
				}
				i++
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestAdapter_SendAndReceive(t *testing.T) {
	frames := make(chan string, 4)
	srv := startService(t, []string{
		`{"prediction":"hello","confidence":0.92}`,
		`{"current_word":"world","confidence":0.7}`,
	}, frames)

	a := New(wsURL(srv))
	cb := &collectingCallback{}

	if err := a.Start(context.Background(), cb); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer a.Close()

	frame := "data:image/jpeg;base64,AAAA"
	if err := a.SendFrame(context.Background(), frame); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if err := a.SendFrame(context.Background(), frame); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	if got := <-frames; got != frame {
		t.Errorf("service received %q, expected %q", got, frame)
	}

	preds := cb.waitFor(t, 2)
	if preds[0].word != "hello" || preds[0].confidence != 0.92 {
		t.Errorf("unexpected first prediction: %+v", preds[0])
	}
	if preds[1].word != "world" || preds[1].confidence != 0.7 {
		t.Errorf("unexpected second prediction: %+v", preds[1])
	}
}

func TestAdapter_MalformedMessagesDropped(t *testing.T) {
	srv := startService(t, []string{
		`not json at all`,
		`{"unrelated":"shape"}`,
		`{"prediction":"ok","confidence":0.5}`,
	}, nil)

	a := New(wsURL(srv))
	cb := &collectingCallback{}

	if err := a.Start(context.Background(), cb); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer a.Close()

	for i := 0; i < 3; i++ {
		if err := a.SendFrame(context.Background(), "frame"); err != nil {
			t.Fatalf("send %d failed: %v", i, err)
		}
	}

	preds := cb.waitFor(t, 1)
	if len(preds) != 1 || preds[0].word != "ok" {
		t.Errorf("expected only the valid prediction, got %+v", preds)
	}
	_, errs := cb.snapshot()
	if len(errs) != 0 {
		t.Errorf("malformed messages must not surface errors, got %v", errs)
	}
}

func TestAdapter_DialFailure(t *testing.T) {
	a := New("ws://127.0.0.1:1/nope", WithDialTimeout(200*time.Millisecond))

	if err := a.Start(context.Background(), &collectingCallback{}); err == nil {
		t.Fatal("expected dial error")
	}
}

func TestAdapter_HandshakeRejected(t *testing.T) {
	// A plain HTTP endpoint refuses the upgrade; the dial must fail cleanly
	// with the server's reply drained.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no websocket here", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	a := New(wsURL(srv))
	err := a.Start(context.Background(), &collectingCallback{})
	if !errors.Is(err, websocket.ErrBadHandshake) {
		t.Fatalf("expected ErrBadHandshake, got %v", err)
	}
}

func TestAdapter_CloseSuppressesReadError(t *testing.T) {
	srv := startService(t, nil, nil)

	a := New(wsURL(srv))
	cb := &collectingCallback{}

	if err := a.Start(context.Background(), cb); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}

	// Give the read loop time to observe the closed connection.
	time.Sleep(50 * time.Millisecond)

	_, errs := cb.snapshot()
	if len(errs) != 0 {
		t.Errorf("close must not be reported as a transport error, got %v", errs)
	}

	if err := a.SendFrame(context.Background(), "frame"); err == nil {
		t.Error("expected error sending after close")
	}
}
