// Package tap estimates a tempo from a sequence of user taps.
package tap

import (
	"math"
	"sync"
	"time"

	"github.com/satindergrewal/metronome/internal/clock"
	"github.com/satindergrewal/metronome/internal/tempo"
)

const (
	// Window is how far back from the latest tap older taps still count.
	Window = 2 * time.Second
	// MaxTaps bounds the history kept for the running mean.
	MaxTaps = 16
)

// Estimator keeps the recent tap history.
type Estimator struct {
	clock clock.Clock

	mu   sync.Mutex
	taps []time.Duration
}

// New creates an estimator reading tap times from c.
func New(c clock.Clock) *Estimator {
	return &Estimator{clock: c}
}

// Tap records a tap at the current time. See TapAt.
func (e *Estimator) Tap() (int, bool) {
	return e.TapAt(e.clock.Now())
}

// TapAt records a tap at t and returns the estimated BPM. ok is false when
// fewer than two taps remain in the window.
func (e *Estimator) TapAt(t time.Duration) (bpm int, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.taps = append(e.taps, t)
	for len(e.taps) > 1 && (t-e.taps[0] > Window || len(e.taps) > MaxTaps) {
		e.taps = e.taps[1:]
	}
	if len(e.taps) < 2 {
		return 0, false
	}

	// mean of consecutive intervals telescopes to span / count
	span := e.taps[len(e.taps)-1] - e.taps[0]
	meanMs := float64(span) / float64(time.Millisecond) / float64(len(e.taps)-1)
	if meanMs <= 0 {
		return 0, false
	}
	bpm = int(math.Round(60000 / meanMs))
	return min(max(bpm, tempo.MinBPM), tempo.MaxBPM), true
}

// Count returns the number of taps in the current window.
func (e *Estimator) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.taps)
}

// Reset forgets all taps.
func (e *Estimator) Reset() {
	e.mu.Lock()
	e.taps = nil
	e.mu.Unlock()
}
