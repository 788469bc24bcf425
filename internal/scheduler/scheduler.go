// Package scheduler turns the tempo/meter model into a stream of click
// events ahead of real time.
//
// A short recurring pass (Lookahead) schedules every click that falls within
// Horizon of the source clock. The pass interval is shorter than the horizon,
// so a late or throttled tick never leaves a gap.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/satindergrewal/metronome/internal/audio"
	"github.com/satindergrewal/metronome/internal/tempo"
	"github.com/satindergrewal/metronome/internal/visual"
)

// Options are the scheduling constants.
type Options struct {
	Lookahead   time.Duration // interval between passes
	Horizon     time.Duration // how far ahead of now each pass schedules
	StartMargin time.Duration // delay before the first beat after start or re-anchor
}

// DefaultOptions returns the standard timing: 25ms passes, 150ms horizon,
// 50ms start margin.
func DefaultOptions() Options {
	return Options{
		Lookahead:   25 * time.Millisecond,
		Horizon:     150 * time.Millisecond,
		StartMargin: 50 * time.Millisecond,
	}
}

func (o Options) normalize() Options {
	def := DefaultOptions()
	if o.Horizon <= 0 {
		o.Horizon = def.Horizon
	}
	if o.Lookahead <= 0 {
		o.Lookahead = def.Lookahead
	}
	if o.Lookahead >= o.Horizon {
		o.Lookahead = o.Horizon / 2
	}
	if o.StartMargin < 0 {
		o.StartMargin = 0
	}
	return o
}

// Source is the clock the scheduler plans against and the sink its clicks
// are enqueued on.
type Source interface {
	Now() time.Duration
	Schedule(c audio.Click)
}

// Visual receives one pulse per main beat, delayed until the beat is heard.
type Visual interface {
	Enqueue(p visual.Pulse, delay time.Duration)
}

// Scheduler is the look-ahead scheduling engine. Idle until Start, Running
// until Stop.
type Scheduler struct {
	meter  *tempo.Meter
	source Source
	visual Visual
	opts   Options

	newTicker func(time.Duration) (<-chan time.Time, func())

	mu      sync.Mutex
	running bool
	cursor  Cursor
	cancel  context.CancelFunc
	loops   int // recurring pass loops started
}

// New creates an idle scheduler. vis may be nil.
func New(meter *tempo.Meter, source Source, vis Visual, opts Options) *Scheduler {
	return &Scheduler{
		meter:  meter,
		source: source,
		visual: vis,
		opts:   opts.normalize(),

		newTicker: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
	}
}

// Options returns the effective scheduling constants.
func (s *Scheduler) Options() Options {
	return s.opts
}

// Start anchors the first beat StartMargin from now, runs the first pass and
// begins the recurring pass. Returns false if already running.
func (s *Scheduler) Start() bool {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return false
	}
	s.running = true
	s.cursor = Cursor{Next: s.source.Now() + s.opts.StartMargin}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.loops++
	s.mu.Unlock()

	s.Pass()
	go s.run(ctx)
	return true
}

// Loops returns how many recurring pass loops have been started.
func (s *Scheduler) Loops() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loops
}

// Stop halts the recurring pass. Clicks and pulses already enqueued still
// play. Returns false if already stopped.
func (s *Scheduler) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return false
	}
	s.running = false
	s.cancel()
	s.cancel = nil
	return true
}

// Running reports whether the scheduler is producing events.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Cursor returns the current scheduling position.
func (s *Scheduler) Cursor() Cursor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Resync moves the next beat forward to at least StartMargin from now. The
// cursor is never moved backwards, so beats already scheduled keep their
// times and nothing overdue is replayed as a burst.
func (s *Scheduler) Resync() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	if floor := s.source.Now() + s.opts.StartMargin; s.cursor.Next < floor {
		s.cursor.Next = floor
	}
}

// Pass runs one look-ahead pass and returns the number of main beats it
// scheduled. The meter is read fresh on every pass.
func (s *Scheduler) Pass() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return 0
	}

	now := s.source.Now()
	beats, next := Plan(s.meter.Config(), s.cursor, now, s.opts.Horizon)
	for _, b := range beats {
		s.source.Schedule(b.Main)
		if s.visual != nil {
			s.visual.Enqueue(visual.Pulse{
				Beat:        b.Index,
				BeatsPerBar: b.BeatsPerBar,
				Accent:      b.Accent(),
				At:          b.Main.At,
			}, b.Main.At-now)
		}
		for _, c := range b.Subs {
			s.source.Schedule(c)
		}
	}
	s.cursor = next
	return len(beats)
}

func (s *Scheduler) run(ctx context.Context) {
	ticks, stop := s.newTicker(s.opts.Lookahead)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			s.Pass()
		}
	}
}
