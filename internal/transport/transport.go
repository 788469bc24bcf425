// Package transport ties the metronome together: one Metronome owns the
// tempo model, the look-ahead scheduler, the timer, tap tempo and the visual
// pulse dispatcher, and starts and stops them as a unit.
package transport

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/satindergrewal/metronome/internal/audio"
	"github.com/satindergrewal/metronome/internal/clock"
	"github.com/satindergrewal/metronome/internal/scheduler"
	"github.com/satindergrewal/metronome/internal/settings"
	"github.com/satindergrewal/metronome/internal/tap"
	"github.com/satindergrewal/metronome/internal/tempo"
	"github.com/satindergrewal/metronome/internal/timer"
	"github.com/satindergrewal/metronome/internal/visual"
)

// Options configure a Metronome. Zero values are usable.
type Options struct {
	Scheduler    scheduler.Options
	TimerStep    time.Duration
	TimerRefresh time.Duration

	// Clock drives the timer, tap tempo and visual pulses. Defaults to the
	// system clock.
	Clock clock.Clock

	// OpenAudio acquires the output on first use. nil or an error means
	// clicks are muted while everything else keeps running.
	OpenAudio func() (audio.Device, error)

	// Store persists every configuration change when set.
	Store *settings.Store

	// Notify receives events from Run's goroutine.
	Notify func(Event)
}

// Metronome is the transport: Idle until Start, Running until Stop or a
// finished countdown.
type Metronome struct {
	opts   Options
	clock  clock.Clock
	meter  *tempo.Meter
	timer  *timer.Timer
	taps   *tap.Estimator
	pulses *visual.Dispatcher
	events chan Event

	mu       sync.Mutex
	running  bool
	hidden   bool
	device   audio.Device
	silent   bool
	sched    *scheduler.Scheduler
	lastBeat int
	theme    string
}

// New creates an idle metronome with default settings. Audio is not touched
// until the first Start or Unlock.
func New(opts Options) *Metronome {
	if opts.Clock == nil {
		opts.Clock = clock.NewSystem()
	}
	m := &Metronome{
		opts:     opts,
		clock:    opts.Clock,
		meter:    tempo.NewMeter(),
		taps:     tap.New(opts.Clock),
		events:   make(chan Event, 256),
		lastBeat: -1,
	}
	m.timer = timer.New(opts.Clock, opts.TimerStep, opts.TimerRefresh)
	m.timer.OnUpdate = m.timerUpdated
	m.timer.OnComplete = m.countdownDone
	m.pulses = visual.NewDispatcher(opts.Clock, m.pulse)
	return m
}

// Run delivers visual pulses and events until ctx is cancelled.
func (m *Metronome) Run(ctx context.Context) {
	go m.pulses.Run(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-m.events:
			if m.opts.Notify != nil {
				m.opts.Notify(ev)
			}
		}
	}
}

// emit queues an event, dropping it if Run has fallen behind.
func (m *Metronome) emit(ev Event) {
	select {
	case m.events <- ev:
	default:
	}
}

// Unlock acquires and resumes the audio output. Called on the first user
// interaction; Start calls it too.
func (m *Metronome) Unlock() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acquireLocked()
}

func (m *Metronome) acquireLocked() {
	if m.device == nil {
		var dev audio.Device
		var err error
		if m.opts.OpenAudio != nil {
			dev, err = m.opts.OpenAudio()
		}
		if dev == nil || err != nil {
			if err != nil {
				log.Printf("Audio unavailable, clicks muted: %v", err)
			} else {
				log.Println("No audio output configured, clicks muted")
			}
			dev = audio.Silent{Clock: m.clock}
			m.silent = true
		}
		m.device = dev
		m.sched = scheduler.New(m.meter, dev, m.pulses, m.opts.Scheduler)
		return
	}
	if err := m.device.Resume(); err != nil && !m.silent {
		log.Printf("Audio resume failed, clicks muted: %v", err)
		m.sched.Stop()
		m.device = audio.Silent{Clock: m.clock}
		m.silent = true
		m.sched = scheduler.New(m.meter, m.device, m.pulses, m.opts.Scheduler)
		if m.running {
			m.sched.Start()
		}
	}
}

// Start begins scheduling and the timer together. Returns false if already
// running.
func (m *Metronome) Start() bool {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return false
	}
	m.acquireLocked()
	m.running = true
	m.sched.Start()
	m.timer.Start()
	st := m.statusLocked()
	m.mu.Unlock()

	log.Printf("Metronome started at %.1f BPM", st.BPM)
	m.emit(Event{Kind: EventState, Status: st})
	return true
}

// Stop halts scheduling and the timer together. Clicks already scheduled
// still sound. Returns false if already stopped.
func (m *Metronome) Stop() bool {
	m.mu.Lock()
	if !m.stopLocked() {
		m.mu.Unlock()
		return false
	}
	st := m.statusLocked()
	m.mu.Unlock()

	m.emit(Event{Kind: EventState, Status: st})
	return true
}

func (m *Metronome) stopLocked() bool {
	if !m.running {
		return false
	}
	m.running = false
	m.sched.Stop()
	m.timer.Stop()
	return true
}

// Toggle flips between running and stopped and returns the new state.
func (m *Metronome) Toggle() bool {
	if m.Start() {
		return true
	}
	m.Stop()
	return false
}

func (m *Metronome) countdownDone() {
	if m.Stop() {
		log.Println("Countdown finished, metronome stopped")
	}
}

func (m *Metronome) timerUpdated(r timer.Reading) {
	m.emit(Event{Kind: EventTime, Timer: r})
}

func (m *Metronome) pulse(p visual.Pulse) {
	m.mu.Lock()
	m.lastBeat = p.Beat
	m.mu.Unlock()

	m.emit(Event{Kind: EventBeat, Pulse: p})
}

// Running reports whether the transport is running.
func (m *Metronome) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// SetHidden records host visibility. Becoming visible again while running
// re-anchors the next beat forward instead of replaying missed beats.
func (m *Metronome) SetHidden(hidden bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hidden = hidden
	if !hidden && m.running {
		m.sched.Resync()
	}
}

// Meter exposes the tempo model for read access.
func (m *Metronome) Meter() *tempo.Meter {
	return m.meter
}

// Timer exposes the timer for read access.
func (m *Metronome) Timer() *timer.Timer {
	return m.timer
}

// Cursor returns the scheduling position, or a zero cursor before audio has
// been acquired.
func (m *Metronome) Cursor() scheduler.Cursor {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sched == nil {
		return scheduler.Cursor{}
	}
	return m.sched.Cursor()
}

// PendingPulses returns the number of visual pulses not yet delivered.
func (m *Metronome) PendingPulses() int {
	return m.pulses.Len()
}

// --- Configuration ---

// SetBpm sets an integer tempo.
func (m *Metronome) SetBpm(v float64) float64 {
	return m.tempoChanged(m.meter.SetBpm(v))
}

// SetBpmFine sets a tempo with tenth-of-a-BPM resolution.
func (m *Metronome) SetBpmFine(v float64) float64 {
	return m.tempoChanged(m.meter.SetBpmFine(v))
}

// SetBpmString parses typed input. Blank or non-numeric text keeps the
// current tempo.
func (m *Metronome) SetBpmString(s string) float64 {
	return m.tempoChanged(m.meter.SetBpmString(s))
}

// NudgeBpm moves the tempo by delta: whole steps round to integers, finer
// steps to tenths.
func (m *Metronome) NudgeBpm(delta float64) float64 {
	return m.tempoChanged(m.meter.NudgeBpm(delta))
}

// Tap records a tap and applies the estimated tempo once there are enough
// taps.
func (m *Metronome) Tap() (float64, bool) {
	bpm, ok := m.taps.Tap()
	if !ok {
		return m.meter.BPM(), false
	}
	return m.SetBpm(float64(bpm)), true
}

func (m *Metronome) tempoChanged(bpm float64) float64 {
	m.mu.Lock()
	if m.running {
		m.sched.Resync()
	}
	m.mu.Unlock()

	m.changed()
	return bpm
}

// SetBeatsPerBar sets the bar length, clamped to [1,12].
func (m *Metronome) SetBeatsPerBar(n int) int {
	n = m.meter.SetBeatsPerBar(n)
	m.changed()
	return n
}

// SetNoteValue sets the note that gets the beat.
func (m *Metronome) SetNoteValue(n int) int {
	n = m.meter.SetNoteValue(n)
	m.changed()
	return n
}

// SetSubdivision selects the sub-click pattern.
func (m *Metronome) SetSubdivision(s tempo.Subdivision) tempo.Subdivision {
	s = m.meter.SetSubdivision(s)
	m.changed()
	return s
}

// SetMode selects the sub-click pattern by name. Unknown names are ignored.
func (m *Metronome) SetMode(name string) tempo.Subdivision {
	if s, ok := tempo.ParseSubdivision(name); ok {
		return m.SetSubdivision(s)
	}
	return m.meter.Subdivision()
}

// CycleSubdivision moves to the next sub-click pattern.
func (m *Metronome) CycleSubdivision() tempo.Subdivision {
	return m.SetSubdivision(m.meter.Subdivision().Next())
}

// SetAccent turns the downbeat accent on or off.
func (m *Metronome) SetAccent(on bool) {
	m.meter.SetAccent(on)
	m.changed()
}

// SetTimerTarget sets the countdown target; 0 counts up.
func (m *Metronome) SetTimerTarget(d time.Duration) time.Duration {
	d = m.timer.SetTarget(d)
	m.changed()
	return d
}

// StepTimer moves the countdown target by n steps.
func (m *Metronome) StepTimer(n int) time.Duration {
	d := m.timer.Step(n)
	m.changed()
	return d
}

// SetTheme records the display theme, "light" or "dark".
func (m *Metronome) SetTheme(theme string) string {
	if theme != "light" && theme != "dark" {
		return m.Theme()
	}
	m.mu.Lock()
	m.theme = theme
	m.mu.Unlock()

	m.changed()
	return theme
}

// Theme returns the display theme, empty if never chosen.
func (m *Metronome) Theme() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.theme
}

// Reset stops everything and restores the default tempo, meter and timer.
func (m *Metronome) Reset() {
	m.mu.Lock()
	m.stopLocked()
	m.lastBeat = -1
	m.mu.Unlock()

	m.meter.Reset()
	m.taps.Reset()
	m.timer.Reset()
	m.timer.SetTarget(0)
	m.changed()
	log.Println("Metronome reset to defaults")
}

// changed persists the configuration and announces it.
func (m *Metronome) changed() {
	if st := m.opts.Store; st != nil {
		if err := st.Save(m.Snapshot()); err != nil {
			log.Printf("Settings save failed: %v", err)
		}
	}
	m.emit(Event{Kind: EventConfig, Status: m.Status()})
}

// --- Persistence ---

// Snapshot returns the persisted configuration.
func (m *Metronome) Snapshot() settings.Snapshot {
	cfg := m.meter.Config()
	s := settings.Snapshot{
		BPM:           settings.Float64(cfg.BPM),
		Accent:        settings.Bool(cfg.Accent),
		Mode:          settings.String(cfg.Subdivision.String()),
		Beats:         settings.Int(cfg.BeatsPerBar),
		TimerTargetMs: settings.Int64(m.timer.Target().Milliseconds()),
	}
	if theme := m.Theme(); theme != "" {
		s.Theme = settings.String(theme)
	}
	return s
}

// Restore applies every usable field of s. Missing or invalid fields keep
// their current values. Nothing is written back to the store.
func (m *Metronome) Restore(s settings.Snapshot) {
	if s.BPM != nil {
		m.meter.SetBpmFine(*s.BPM)
	}
	if s.Accent != nil {
		m.meter.SetAccent(*s.Accent)
	}
	if s.Mode != nil {
		if sub, ok := tempo.ParseSubdivision(*s.Mode); ok {
			m.meter.SetSubdivision(sub)
		}
	}
	if s.Beats != nil {
		m.meter.SetBeatsPerBar(*s.Beats)
	}
	if s.TimerTargetMs != nil {
		m.timer.SetTarget(timer.Millis(*s.TimerTargetMs))
	}
	if s.Theme != nil && (*s.Theme == "light" || *s.Theme == "dark") {
		m.mu.Lock()
		m.theme = *s.Theme
		m.mu.Unlock()
	}
	m.emit(Event{Kind: EventConfig, Status: m.Status()})
}
