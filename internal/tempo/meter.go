// Package tempo holds the tempo and meter configuration the scheduler reads
// on every look-ahead pass.
package tempo

import (
	"math"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	MinBPM = 20
	MaxBPM = 240

	MinBeatsPerBar = 1
	MaxBeatsPerBar = 12

	DefaultBPM         = 100
	DefaultBeatsPerBar = 4
	DefaultNoteValue   = 4

	// FineStep is the BPM granularity of the fine adjustment controls.
	FineStep = 0.1
)

// Config is a point-in-time copy of the meter settings.
type Config struct {
	BPM         float64
	BeatsPerBar int
	NoteValue   int
	Subdivision Subdivision
	Accent      bool
}

// BeatSeconds returns the length of one beat: 60/bpm * (4/noteValue).
func (c Config) BeatSeconds() float64 {
	return 60 / c.BPM * (4 / float64(c.NoteValue))
}

// BeatDuration returns BeatSeconds rounded to the nearest nanosecond.
func (c Config) BeatDuration() time.Duration {
	return time.Duration(math.Round(c.BeatSeconds() * float64(time.Second)))
}

// Defaults returns the configuration a fresh metronome starts with.
func Defaults() Config {
	return Config{
		BPM:         DefaultBPM,
		BeatsPerBar: DefaultBeatsPerBar,
		NoteValue:   DefaultNoteValue,
		Subdivision: Quarter,
		Accent:      true,
	}
}

// Meter is the mutable tempo/meter model. All setters clamp or round their
// input to a valid value; none of them fail.
type Meter struct {
	mu  sync.RWMutex
	cfg Config
}

// NewMeter creates a meter with default settings.
func NewMeter() *Meter {
	return &Meter{cfg: Defaults()}
}

// Config returns a consistent copy of the current settings.
func (m *Meter) Config() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// Reset restores the defaults.
func (m *Meter) Reset() {
	m.mu.Lock()
	m.cfg = Defaults()
	m.mu.Unlock()
}

// SetBpm rounds v to an integer, clamps it to [MinBPM, MaxBPM] and returns
// the applied value. NaN is treated as zero and lands on MinBPM.
func (m *Meter) SetBpm(v float64) float64 {
	return m.setBpm(math.Round(finite(v)))
}

// SetBpmFine is SetBpm with tenths granularity.
func (m *Meter) SetBpmFine(v float64) float64 {
	return m.setBpm(roundTenths(finite(v)))
}

// SetBpmString applies a typed-in value. Blank or non-numeric input leaves
// the tempo unchanged.
func (m *Meter) SetBpmString(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return m.BPM()
	}
	return m.SetBpm(v)
}

// NudgeBpm moves the tempo by delta. Whole-number deltas keep integer
// granularity; fractional deltas switch to tenths.
func (m *Meter) NudgeBpm(delta float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := m.cfg.BPM + delta
	if delta == math.Trunc(delta) {
		v = math.Round(v)
	} else {
		v = roundTenths(v)
	}
	m.cfg.BPM = clampFloat(v, MinBPM, MaxBPM)
	return m.cfg.BPM
}

func (m *Meter) setBpm(v float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.BPM = clampFloat(v, MinBPM, MaxBPM)
	return m.cfg.BPM
}

// SetBeatsPerBar clamps n to [MinBeatsPerBar, MaxBeatsPerBar].
func (m *Meter) SetBeatsPerBar(n int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.BeatsPerBar = clampInt(n, MinBeatsPerBar, MaxBeatsPerBar)
	return m.cfg.BeatsPerBar
}

// SetNoteValue sets the beat unit (4 = quarter). Values that are not a power
// of two between 1 and 16 are ignored.
func (m *Meter) SetNoteValue(n int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch n {
	case 1, 2, 4, 8, 16:
		m.cfg.NoteValue = n
	}
	return m.cfg.NoteValue
}

// SetSubdivision selects the subdivision pattern. Unknown values are ignored.
func (m *Meter) SetSubdivision(s Subdivision) Subdivision {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s >= Quarter && s <= Swing {
		m.cfg.Subdivision = s
	}
	return m.cfg.Subdivision
}

// SetEighths is the on/off form of subdivision: true selects eighths,
// false turns subdivision off.
func (m *Meter) SetEighths(on bool) Subdivision {
	if on {
		return m.SetSubdivision(Eighths)
	}
	return m.SetSubdivision(Quarter)
}

// SetAccent enables or disables the accent on the first beat of each bar.
func (m *Meter) SetAccent(on bool) {
	m.mu.Lock()
	m.cfg.Accent = on
	m.mu.Unlock()
}

func (m *Meter) BPM() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg.BPM
}

func (m *Meter) BeatsPerBar() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg.BeatsPerBar
}

func (m *Meter) NoteValue() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg.NoteValue
}

func (m *Meter) Subdivision() Subdivision {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg.Subdivision
}

func (m *Meter) Accent() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg.Accent
}

// BeatSeconds returns the current beat length in seconds.
func (m *Meter) BeatSeconds() float64 {
	return m.Config().BeatSeconds()
}

// BeatDuration returns the current beat length.
func (m *Meter) BeatDuration() time.Duration {
	return m.Config().BeatDuration()
}

func finite(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func roundTenths(v float64) float64 {
	return math.Round(v*10) / 10
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func clampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
