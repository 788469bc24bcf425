package tui

import "github.com/charmbracelet/lipgloss"

// palette is one display theme.
type palette struct {
	fg     lipgloss.Color
	muted  lipgloss.Color
	accent lipgloss.Color
	beat   lipgloss.Color
}

var palettes = map[string]palette{
	"dark": {
		fg:     lipgloss.Color("#e6e6e6"),
		muted:  lipgloss.Color("#6c6c6c"),
		accent: lipgloss.Color("#ff5f5f"),
		beat:   lipgloss.Color("#5fd7ff"),
	},
	"light": {
		fg:     lipgloss.Color("#1c1c1c"),
		muted:  lipgloss.Color("#8a8a8a"),
		accent: lipgloss.Color("#d70000"),
		beat:   lipgloss.Color("#005fd7"),
	},
}

// paletteFor falls back to dark when no theme has been chosen.
func paletteFor(theme string) palette {
	if p, ok := palettes[theme]; ok {
		return p
	}
	return palettes["dark"]
}
