package transport

import (
	"time"

	"github.com/satindergrewal/metronome/internal/timer"
	"github.com/satindergrewal/metronome/internal/visual"
)

// EventKind identifies what changed.
type EventKind int

const (
	EventBeat   EventKind = iota // a main beat is sounding now
	EventTime                    // the timer display changed
	EventState                   // started or stopped
	EventConfig                  // tempo, meter, timer target or theme changed
)

func (k EventKind) String() string {
	switch k {
	case EventBeat:
		return "beat"
	case EventTime:
		return "time"
	case EventState:
		return "state"
	case EventConfig:
		return "config"
	}
	return "unknown"
}

// Event is a notification for front-ends.
type Event struct {
	Kind   EventKind
	Pulse  visual.Pulse  // EventBeat
	Timer  timer.Reading // EventTime
	Status Status        // EventState, EventConfig
}

// Status is the full user-visible state.
type Status struct {
	Running       bool    `json:"running"`
	BPM           float64 `json:"bpm"`
	BeatsPerBar   int     `json:"beats"`
	NoteValue     int     `json:"note_value"`
	Mode          string  `json:"mode"`
	Accent        bool    `json:"accent"`
	Beat          int     `json:"beat"` // last highlighted beat, -1 before the first
	TimerTargetMs int64   `json:"timer_target_ms"`
	TimerDisplay  string  `json:"timer_display"`
	TimerLabel    string  `json:"timer_label"`
	Hidden        bool    `json:"hidden"`
	Audio         string  `json:"audio"` // "pending", "device" or "muted"
	Theme         string  `json:"theme,omitempty"`
}

// Status returns a consistent view of the current state.
func (m *Metronome) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusLocked()
}

func (m *Metronome) statusLocked() Status {
	cfg := m.meter.Config()
	r := m.timer.Reading()
	st := Status{
		Running:       m.running,
		BPM:           cfg.BPM,
		BeatsPerBar:   cfg.BeatsPerBar,
		NoteValue:     cfg.NoteValue,
		Mode:          cfg.Subdivision.String(),
		Accent:        cfg.Accent,
		Beat:          m.lastBeat,
		TimerTargetMs: m.timer.Target().Milliseconds(),
		TimerDisplay:  r.Display,
		TimerLabel:    r.Label(),
		Hidden:        m.hidden,
		Audio:         "pending",
		Theme:         m.theme,
	}
	switch {
	case m.device == nil:
	case m.silent:
		st.Audio = "muted"
	default:
		st.Audio = "device"
	}
	return st
}

// Getters for each persisted field.

func (m *Metronome) BPM() float64 { return m.meter.BPM() }

func (m *Metronome) BeatsPerBar() int { return m.meter.BeatsPerBar() }

func (m *Metronome) Subdivision() string { return m.meter.Subdivision().String() }

func (m *Metronome) Accent() bool { return m.meter.Accent() }

func (m *Metronome) TimerTarget() time.Duration { return m.timer.Target() }

func (m *Metronome) TimerDisplay() string { return m.timer.Reading().Display }
