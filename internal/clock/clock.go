// Package clock provides the monotonic time references the metronome runs on.
package clock

import (
	"sync"
	"time"
)

// Clock is a monotonically increasing time reference. Now returns the time
// elapsed since the clock's origin.
type Clock interface {
	Now() time.Duration
}

// System is a Clock backed by the runtime's monotonic clock.
type System struct {
	origin time.Time
}

// NewSystem returns a System clock whose origin is the current instant.
func NewSystem() *System {
	return &System{origin: time.Now()}
}

// Now returns the time since the clock was created.
func (s *System) Now() time.Duration {
	return time.Since(s.origin)
}

// Manual is a Clock that only moves when told to. Used to drive scheduling
// deterministically in tests and offline rendering.
type Manual struct {
	mu  sync.Mutex
	now time.Duration
}

// NewManual returns a Manual clock positioned at start.
func NewManual(start time.Duration) *Manual {
	return &Manual{now: start}
}

// Now returns the current manual time.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set moves the clock to t. Moving backwards is ignored.
func (m *Manual) Set(t time.Duration) {
	m.mu.Lock()
	if t > m.now {
		m.now = t
	}
	m.mu.Unlock()
}

// Advance moves the clock forward by d and returns the new time.
func (m *Manual) Advance(d time.Duration) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d > 0 {
		m.now += d
	}
	return m.now
}
