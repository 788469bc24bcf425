// Package timer tracks elapsed playing time, or counts down to a target.
//
// The timer pauses rather than resets: Stop folds the time since the last
// Start into an accumulator and the next Start continues from there. While
// running, a per-frame refresh loop recomputes the display and stops the
// timer when a countdown reaches zero.
package timer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/satindergrewal/metronome/internal/clock"
)

const (
	// MaxTarget is the largest countdown target, 99:59.
	MaxTarget = 99*time.Minute + 59*time.Second

	DefaultStep    = 15 * time.Second
	DefaultRefresh = 16 * time.Millisecond
)

// State is the raw timer state.
type State struct {
	Running bool
	Base    time.Duration // accumulated while stopped
	Start   time.Duration // clock time of the last resume
	Target  time.Duration // 0 counts up
}

// Reading is what the display shows.
type Reading struct {
	Display   string
	Value     time.Duration // remaining in countdown mode, else elapsed
	Countdown bool
	Done      bool // countdown target reached
	Running   bool
}

// Label returns "Remaining" for a countdown and "Elapsed" otherwise.
func (r Reading) Label() string {
	if r.Countdown {
		return "Remaining"
	}
	return "Elapsed"
}

// Timer is the elapsed/countdown timer.
type Timer struct {
	clock   clock.Clock
	step    time.Duration
	refresh time.Duration

	// OnUpdate receives the reading whenever the display changes.
	// OnComplete is called once each time a running countdown reaches zero,
	// after the timer has stopped itself. Both are called without the
	// timer's lock held and must be set before Start.
	OnUpdate   func(Reading)
	OnComplete func()

	newTicker func(time.Duration) (<-chan time.Time, func())

	mu     sync.Mutex
	st     State
	cancel context.CancelFunc
	shown  Reading
}

// New creates a stopped timer. Non-positive step or refresh use the defaults.
func New(c clock.Clock, step, refresh time.Duration) *Timer {
	if step <= 0 {
		step = DefaultStep
	}
	if refresh <= 0 {
		refresh = DefaultRefresh
	}
	return &Timer{
		clock:   c,
		step:    step,
		refresh: refresh,
		newTicker: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
	}
}

// Start resumes the timer. A countdown that already finished starts over.
// Returns false if already running.
func (t *Timer) Start() bool {
	t.mu.Lock()
	if t.st.Running {
		t.mu.Unlock()
		return false
	}
	if t.st.Target > 0 && t.st.Base >= t.st.Target {
		t.st.Base = 0
	}
	t.st.Running = true
	t.st.Start = t.clock.Now()

	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.mu.Unlock()

	go t.run(ctx)
	t.Refresh()
	return true
}

// Stop pauses the timer, keeping the accumulated time. Returns false if
// already stopped.
func (t *Timer) Stop() bool {
	t.mu.Lock()
	stopped := t.stopLocked(t.clock.Now())
	t.mu.Unlock()

	if stopped {
		t.Refresh()
	}
	return stopped
}

// Reset zeroes the accumulator and stops. The target is kept.
func (t *Timer) Reset() {
	t.mu.Lock()
	t.stopLocked(t.clock.Now())
	t.st.Base = 0
	t.st.Start = 0
	t.mu.Unlock()

	t.Refresh()
}

func (t *Timer) stopLocked(now time.Duration) bool {
	if !t.st.Running {
		return false
	}
	t.st.Base += now - t.st.Start
	t.st.Running = false
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	return true
}

// SetTarget sets the countdown target, clamped to [0, MaxTarget] and
// truncated to whole milliseconds. 0 switches to counting up. Elapsed
// progress is kept.
func (t *Timer) SetTarget(d time.Duration) time.Duration {
	d = min(max(d, 0), MaxTarget).Truncate(time.Millisecond)

	t.mu.Lock()
	t.st.Target = d
	t.mu.Unlock()

	t.Refresh()
	return d
}

// Step moves the target by n steps.
func (t *Timer) Step(n int) time.Duration {
	limit := int(MaxTarget/t.step) + 1
	n = min(max(n, -limit), limit)
	return t.SetTarget(t.Target() + time.Duration(n)*t.step)
}

// Millis converts a millisecond count to a target, clamped to
// [0, MaxTarget] before scaling.
func Millis(ms int64) time.Duration {
	ms = min(max(ms, 0), MaxTarget.Milliseconds())
	return time.Duration(ms) * time.Millisecond
}

// Target returns the countdown target; 0 when counting up.
func (t *Timer) Target() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.st.Target
}

// Running reports whether the timer is advancing.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.st.Running
}

// State returns a copy of the raw state.
func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.st
}

// Restore replaces the raw state, e.g. to carry a paused session over. A
// running timer is stopped first.
func (t *Timer) Restore(st State) {
	t.mu.Lock()
	t.stopLocked(t.clock.Now())
	t.st = State{
		Base:   max(st.Base, 0),
		Target: min(max(st.Target, 0), MaxTarget).Truncate(time.Millisecond),
	}
	t.mu.Unlock()

	t.Refresh()
}

// Progress returns the total running time.
func (t *Timer) Progress() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progressLocked(t.clock.Now())
}

// Remaining returns the time left on the countdown, never negative. 0 when
// counting up.
func (t *Timer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.st.Target == 0 {
		return 0
	}
	return max(t.st.Target-t.progressLocked(t.clock.Now()), 0)
}

func (t *Timer) progressLocked(now time.Duration) time.Duration {
	p := t.st.Base
	if t.st.Running {
		p += now - t.st.Start
	}
	return p
}

// Reading returns the current display without side effects.
func (t *Timer) Reading() Reading {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.readingLocked(t.progressLocked(t.clock.Now()))
}

func (t *Timer) readingLocked(progress time.Duration) Reading {
	r := Reading{Running: t.st.Running, Value: progress}
	if t.st.Target > 0 {
		r.Countdown = true
		r.Value = max(t.st.Target-progress, 0)
		r.Done = r.Value == 0
	}
	r.Display = Format(r.Value)
	return r
}

// Refresh recomputes the reading. A running countdown that has reached zero
// stops the timer and triggers OnComplete.
func (t *Timer) Refresh() Reading {
	t.mu.Lock()
	now := t.clock.Now()
	progress := t.progressLocked(now)

	completed := false
	if t.st.Running && t.st.Target > 0 && progress >= t.st.Target {
		t.stopLocked(now)
		completed = true
	}
	r := t.readingLocked(progress)
	changed := completed || r.Display != t.shown.Display ||
		r.Countdown != t.shown.Countdown || r.Running != t.shown.Running
	t.shown = r
	t.mu.Unlock()

	if changed && t.OnUpdate != nil {
		t.OnUpdate(r)
	}
	if completed && t.OnComplete != nil {
		t.OnComplete()
	}
	return r
}

func (t *Timer) run(ctx context.Context) {
	ticks, stop := t.newTicker(t.refresh)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			t.Refresh()
		}
	}
}

// Format renders d as MM:SS, or HH:MM:SS from one hour up. Partial seconds
// are dropped and negative durations show as zero.
func Format(d time.Duration) string {
	total := int64(max(d, 0) / time.Second)
	h := total / 3600
	m := total / 60 % 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
