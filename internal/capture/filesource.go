package capture

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// FileSource cycles through still images on disk, simulating a live feed.
// Used by the CLI clients to drive the pipeline without a camera.
type FileSource struct {
	mu     sync.Mutex
	frames []image.Image
	next   int
}

// NewFileSource loads every decodable image under dir, in name order.
func NewFileSource(dir string) (*FileSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	s := &FileSource{}
	for _, name := range names {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		img, _, err := image.Decode(f)
		f.Close()
		if err != nil {
			continue
		}
		s.frames = append(s.frames, img)
	}
	return s, nil
}

// Frame returns the next image in the cycle, or false if none decoded.
func (s *FileSource) Frame() (image.Image, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) == 0 {
		return nil, false
	}
	img := s.frames[s.next]
	s.next = (s.next + 1) % len(s.frames)
	return img, true
}
