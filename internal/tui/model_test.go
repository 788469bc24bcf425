package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/satindergrewal/metronome/internal/clock"
	"github.com/satindergrewal/metronome/internal/transport"
	"github.com/satindergrewal/metronome/internal/visual"
)

func newTestModel(t *testing.T) (Model, *clock.Manual) {
	t.Helper()
	c := clock.NewManual(0)
	met := transport.New(transport.Options{Clock: c})
	t.Cleanup(func() { met.Stop() })
	return NewModel(met, nil), c
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m Model, keys ...tea.KeyMsg) Model {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(Model)
	}
	return m
}

// --- Keys ---

func TestKeys(t *testing.T) {
	tests := []struct {
		name  string
		keys  []tea.KeyMsg
		check func(st transport.Status) bool
	}{
		{"up", []tea.KeyMsg{{Type: tea.KeyUp}}, func(st transport.Status) bool { return st.BPM == 101 }},
		{"down", []tea.KeyMsg{{Type: tea.KeyDown}, {Type: tea.KeyDown}}, func(st transport.Status) bool { return st.BPM == 98 }},
		{"fine", []tea.KeyMsg{{Type: tea.KeyRight}}, func(st transport.Status) bool { return st.BPM == 100.1 }},
		{"fine down", []tea.KeyMsg{{Type: tea.KeyLeft}}, func(st transport.Status) bool { return st.BPM == 99.9 }},
		{"more beats", []tea.KeyMsg{runes("]")}, func(st transport.Status) bool { return st.BeatsPerBar == 5 }},
		{"fewer beats", []tea.KeyMsg{runes("["), runes("[")}, func(st transport.Status) bool { return st.BeatsPerBar == 2 }},
		{"mode", []tea.KeyMsg{runes("m"), runes("m")}, func(st transport.Status) bool { return st.Mode == "sixteenths" }},
		{"accent", []tea.KeyMsg{runes("a")}, func(st transport.Status) bool { return !st.Accent }},
		{"timer", []tea.KeyMsg{runes("+"), runes("+"), runes("-")}, func(st transport.Status) bool { return st.TimerTargetMs == 15000 }},
		{"theme", []tea.KeyMsg{runes("T")}, func(st transport.Status) bool { return st.Theme == "light" }},
		{"theme twice", []tea.KeyMsg{runes("T"), runes("T")}, func(st transport.Status) bool { return st.Theme == "dark" }},
		{"reset", []tea.KeyMsg{{Type: tea.KeyUp}, runes("m"), runes("r")}, func(st transport.Status) bool {
			return st.BPM == 100 && st.Mode == "quarter"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestModel(t)
			m = press(m, tt.keys...)
			if !tt.check(m.status) {
				t.Errorf("status after %s = %+v", tt.name, m.status)
			}
		})
	}
}

func TestSpaceToggles(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(m, tea.KeyMsg{Type: tea.KeySpace})
	if !m.Metronome.Running() || !m.status.Running {
		t.Fatal("space did not start")
	}
	if !strings.Contains(m.View(), "PLAY") {
		t.Error("view missing PLAY")
	}

	m = press(m, tea.KeyMsg{Type: tea.KeySpace})
	if m.Metronome.Running() {
		t.Error("space did not stop")
	}
}

func TestTapKey(t *testing.T) {
	m, c := newTestModel(t)
	for i := 0; i < 3; i++ {
		m = press(m, runes("t"))
		c.Advance(500 * time.Millisecond)
	}
	if m.status.BPM != 120 {
		t.Errorf("BPM = %v, want 120", m.status.BPM)
	}
	if !strings.Contains(m.View(), "tap 120") {
		t.Errorf("view missing tap readout:\n%s", m.View())
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(m, tea.KeyMsg{Type: tea.KeySpace})

	next, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
	if next.(Model).Metronome.Running() {
		t.Error("quit left the metronome running")
	}
	if next.View() != "" {
		t.Error("view not empty after quit")
	}
}

// --- Events ---

func TestBeatHighlight(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(m, tea.KeyMsg{Type: tea.KeySpace})

	next, _ := m.Update(EventMsg{Kind: transport.EventBeat, Pulse: visual.Pulse{Beat: 2, BeatsPerBar: 4}})
	m = next.(Model)
	if m.beat != 2 {
		t.Errorf("beat = %d, want 2", m.beat)
	}

	m = press(m, tea.KeyMsg{Type: tea.KeySpace})
	if m.beat != -1 {
		t.Errorf("beat after stop = %d, want -1", m.beat)
	}
}

func TestListenForEvents(t *testing.T) {
	events := make(chan transport.Event, 1)
	events <- transport.Event{Kind: transport.EventConfig}

	msg := ListenForEvents(events)()
	ev, ok := msg.(EventMsg)
	if !ok || ev.Kind != transport.EventConfig {
		t.Errorf("msg = %#v", msg)
	}

	close(events)
	if msg := ListenForEvents(events)(); msg != nil {
		t.Errorf("closed channel msg = %#v, want nil", msg)
	}
}

// --- View ---

func TestView(t *testing.T) {
	m, _ := newTestModel(t)
	v := m.View()
	for _, want := range []string{"metronome", "STOP", "100.0 bpm", "4/4", "quarter", "accent:on", "Elapsed 00:00"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q:\n%s", want, v)
		}
	}
	if n := strings.Count(v, "○"); n != 4 {
		t.Errorf("pips = %d, want 4", n)
	}

	m = press(m, runes("+"))
	v = m.View()
	if !strings.Contains(v, "Remaining 00:15") {
		t.Errorf("countdown view:\n%s", v)
	}
}
