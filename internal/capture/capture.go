// Package capture produces encoded still frames from a live video source.
package capture

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/jpeg"
	"sync"
)

// JPEG quality trades fidelity for payload size; frames are previews, not
// archival stills.
const jpegQuality = 70

// Source provides raw frames from a video device or other feed.
type Source interface {
	// Frame returns the current frame and true, or false if the source has
	// no frame available yet (e.g. no video dimensions).
	Frame() (image.Image, bool)
}

// Capturer encodes frames from a Source on demand. The encode buffer is
// allocated once and reused, so a Capturer must not be shared without
// external synchronization beyond its own lock.
type Capturer struct {
	source Source

	mu  sync.Mutex
	buf bytes.Buffer
}

// New creates a Capturer over the given source.
func New(source Source) *Capturer {
	return &Capturer{source: source}
}

// CaptureFrame reads the current frame and returns it encoded as JPEG.
// Returns nil when the source is not ready.
func (c *Capturer) CaptureFrame() []byte {
	img, ok := c.source.Frame()
	if !ok || img == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.buf.Reset()
	if err := jpeg.Encode(&c.buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil
	}

	// The buffer is reused on the next capture; hand out a copy.
	out := make([]byte, c.buf.Len())
	copy(out, c.buf.Bytes())
	return out
}

// DataURI encodes a captured frame as the base64 data URI string the
// recognition service expects on the wire.
func DataURI(frame []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(frame)
}
