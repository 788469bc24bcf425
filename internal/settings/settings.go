// Package settings persists the user-facing metronome configuration as JSON.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/satindergrewal/metronome/internal/tempo"
	"github.com/satindergrewal/metronome/internal/timer"
)

// Snapshot is the persisted configuration. A nil field was missing or
// unreadable and leaves the current value alone on restore.
type Snapshot struct {
	BPM           *float64 `json:"bpm,omitempty"`
	Accent        *bool    `json:"accent,omitempty"`
	Mode          *string  `json:"mode,omitempty"`
	Beats         *int     `json:"beats,omitempty"`
	TimerTargetMs *int64   `json:"timerTargetMs,omitempty"`
	Theme         *string  `json:"theme,omitempty"`
}

// Decode parses data one field at a time. A field with the wrong type is
// dropped without affecting the others. The error is only set when data is
// not a JSON object at all; the returned snapshot is then empty.
func Decode(data []byte) (Snapshot, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Snapshot{}, fmt.Errorf("parse settings: %w", err)
	}

	var s Snapshot
	if v, ok := number(raw["bpm"]); ok && v > 0 {
		s.BPM = &v
	}
	var accent bool
	if field(raw["accent"], &accent) {
		s.Accent = &accent
	}
	var mode string
	if field(raw["mode"], &mode) && mode != "" {
		s.Mode = &mode
	}
	if v, ok := number(raw["beats"]); ok && v > 0 {
		beats := int(math.Round(min(v, tempo.MaxBeatsPerBar)))
		s.Beats = &beats
	}
	if v, ok := number(raw["timerTargetMs"]); ok {
		target := int64(math.Floor(min(max(v, 0), float64(timer.MaxTarget.Milliseconds()))))
		s.TimerTargetMs = &target
	}
	var theme string
	if field(raw["theme"], &theme) && (theme == "light" || theme == "dark") {
		s.Theme = &theme
	}
	return s, nil
}

func field(msg json.RawMessage, dst any) bool {
	if len(msg) == 0 || string(msg) == "null" {
		return false
	}
	return json.Unmarshal(msg, dst) == nil
}

func number(msg json.RawMessage) (float64, bool) {
	var v float64
	if !field(msg, &v) || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Float64 and friends build Snapshot fields.
func Float64(v float64) *float64 { return &v }

func Bool(v bool) *bool { return &v }

func String(v string) *string { return &v }

func Int(v int) *int { return &v }

func Int64(v int64) *int64 { return &v }

// DefaultPath returns ~/.config/metronome/settings.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "metronome", "settings.json"), nil
}

// Store reads and writes a Snapshot at Path.
type Store struct {
	Path string
}

// Load reads the stored snapshot. A missing file is an empty snapshot. A
// corrupt file returns an empty snapshot along with the parse error.
func (st *Store) Load() (Snapshot, error) {
	data, err := os.ReadFile(st.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Snapshot{}, nil
		}
		return Snapshot{}, fmt.Errorf("read settings: %w", err)
	}
	return Decode(data)
}

// Save writes s to Path, creating the directory if needed.
func (st *Store) Save(s Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(st.Path), 0755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(st.Path, data, 0644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
