package audio

import (
	"time"

	"github.com/satindergrewal/metronome/internal/clock"
)

// Silent is the Device used when no audio output could be acquired. It
// keeps time from a clock and drops every click.
type Silent struct {
	Clock clock.Clock
}

func (s Silent) Now() time.Duration { return s.Clock.Now() }

func (s Silent) Schedule(Click) {}

func (s Silent) Resume() error { return nil }
