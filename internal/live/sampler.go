package live

import (
	"sync"
	"time"
)

// DefaultSampleInterval is the nominal frame sampling period.
const DefaultSampleInterval = 200 * time.Millisecond

// Sampler runs one repeating tick while armed. Cancellation is enforced by
// a generation counter checked at the top of every tick, so a tick that was
// already scheduled when Disarm ran can never fire its work. Arm/Disarm are
// safe to call from any goroutine; Disarm is idempotent.
type Sampler struct {
	interval time.Duration

	mu         sync.Mutex
	armed      bool
	generation uint64
	stop       chan struct{}
}

// NewSampler creates a sampler with the given tick period.
func NewSampler(interval time.Duration) *Sampler {
	if interval <= 0 {
		interval = DefaultSampleInterval
	}
	return &Sampler{interval: interval}
}

// Arm starts the repeating tick. Returns false if already armed.
func (s *Sampler) Arm(tick func()) bool {
	s.mu.Lock()
	if s.armed {
		s.mu.Unlock()
		return false
	}
	s.armed = true
	s.generation++
	gen := s.generation
	stop := make(chan struct{})
	s.stop = stop
	s.mu.Unlock()

	go func() {
		t := time.NewTicker(s.interval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				if !s.runTick(gen, tick) {
					return
				}
			}
		}
	}()
	return true
}

// runTick executes tick only if the sampler is still armed with the same
// generation. Returns false when the loop should exit.
func (s *Sampler) runTick(gen uint64, tick func()) bool {
	s.mu.Lock()
	ok := s.armed && s.generation == gen
	s.mu.Unlock()
	if !ok {
		return false
	}
	tick()
	return true
}

// Disarm cancels the tick loop. The generation bump guarantees that a tick
// already scheduled at this moment is a no-op.
func (s *Sampler) Disarm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.armed {
		return
	}
	s.armed = false
	s.generation++
	close(s.stop)
	s.stop = nil
}

// Armed reports whether the sampler is currently armed.
func (s *Sampler) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armed
}
