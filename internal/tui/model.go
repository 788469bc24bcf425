// Package tui is the terminal front-end: a bubbletea model driving one
// transport.Metronome from the keyboard.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/satindergrewal/metronome/internal/timer"
	"github.com/satindergrewal/metronome/internal/transport"
)

type Model struct {
	Metronome *transport.Metronome
	events    <-chan transport.Event
	status    transport.Status
	beat      int // highlighted pip, -1 for none
	tapped    string
	quitting  bool
}

// EventMsg carries one transport event into the update loop.
type EventMsg transport.Event

// NewModel creates the model. events may be nil when nothing forwards
// transport notifications.
func NewModel(m *transport.Metronome, events <-chan transport.Event) Model {
	return Model{
		Metronome: m,
		events:    events,
		status:    m.Status(),
		beat:      -1,
	}
}

// ListenForEvents waits for the next transport event.
func ListenForEvents(events <-chan transport.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return EventMsg(ev)
	}
}

func (m Model) Init() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return ListenForEvents(m.events)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	met := m.Metronome
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			met.Stop()
			return m, tea.Quit

		case " ", "space", "enter":
			met.Toggle()

		case "t":
			met.Unlock()
			if bpm, ok := met.Tap(); ok {
				m.tapped = fmt.Sprintf("tap %g", bpm)
			} else {
				m.tapped = "tap..."
			}

		case "up", "k":
			met.NudgeBpm(1)
		case "down", "j":
			met.NudgeBpm(-1)
		case "right", "l":
			met.NudgeBpm(0.1)
		case "left", "h":
			met.NudgeBpm(-0.1)

		case "]":
			met.SetBeatsPerBar(met.BeatsPerBar() + 1)
		case "[":
			met.SetBeatsPerBar(met.BeatsPerBar() - 1)

		case "m":
			met.CycleSubdivision()

		case "a":
			met.SetAccent(!met.Accent())

		case "+", "=":
			met.StepTimer(1)
		case "-", "_":
			met.StepTimer(-1)

		case "r":
			met.Reset()
			m.tapped = ""

		case "T":
			if met.Theme() == "light" {
				met.SetTheme("dark")
			} else {
				met.SetTheme("light")
			}
		}

	case EventMsg:
		ev := transport.Event(msg)
		if ev.Kind == transport.EventBeat {
			m.beat = ev.Pulse.Beat
		}
		if m.events != nil {
			cmd = ListenForEvents(m.events)
		}
	}

	m.status = met.Status()
	if !m.status.Running {
		m.beat = -1
	}
	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	st := m.status
	pal := paletteFor(st.Theme)

	headerStyle := lipgloss.NewStyle().Foreground(pal.fg).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(pal.muted)
	beatStyle := lipgloss.NewStyle().Foreground(pal.beat).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(pal.accent).Bold(true)

	playState := "STOP"
	if st.Running {
		playState = "PLAY"
	}
	accent := "off"
	if st.Accent {
		accent = "on"
	}
	header := headerStyle.Render(fmt.Sprintf("metronome  %s  %5.1f bpm  %d/%d  %s  accent:%s",
		playState, st.BPM, st.BeatsPerBar, st.NoteValue, st.Mode, accent))

	// Pips, one per beat
	pips := make([]string, st.BeatsPerBar)
	for i := range pips {
		switch {
		case i == m.beat && i == 0 && st.Accent:
			pips[i] = accentStyle.Render("●")
		case i == m.beat:
			pips[i] = beatStyle.Render("●")
		default:
			pips[i] = dimStyle.Render("○")
		}
	}

	timerLine := fmt.Sprintf("%s %s", st.TimerLabel, st.TimerDisplay)
	if st.TimerTargetMs > 0 {
		timerLine += dimStyle.Render(fmt.Sprintf("  (target %s)", timer.Format(time.Duration(st.TimerTargetMs)*time.Millisecond)))
	}
	if st.Audio == "muted" {
		timerLine += dimStyle.Render("  [muted]")
	}
	if m.tapped != "" {
		timerLine += dimStyle.Render("  " + m.tapped)
	}

	help := dimStyle.Render("space:play  t:tap  ↑↓:bpm  ←→:fine  []:beats  m:mode  a:accent  +/-:timer  r:reset  T:theme  q:quit")

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n  ")
	out.WriteString(strings.Join(pips, " "))
	out.WriteString("\n\n")
	out.WriteString(timerLine)
	out.WriteString("\n\n")
	out.WriteString(help)
	return out.String()
}
