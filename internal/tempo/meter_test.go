package tempo

import (
	"math"
	"testing"
	"time"
)

// --- BPM clamping and rounding ---

func TestSetBpmClampsAndRounds(t *testing.T) {
	tests := []struct {
		input float64
		want  float64
	}{
		{120, 120},
		{120.4, 120},
		{120.5, 121},
		{19, MinBPM},
		{-5, MinBPM},
		{0, MinBPM},
		{241, MaxBPM},
		{1e9, MaxBPM},
		{math.Inf(1), MaxBPM},
		{math.NaN(), MinBPM},
	}
	for _, tt := range tests {
		m := NewMeter()
		if got := m.SetBpm(tt.input); got != tt.want {
			t.Errorf("SetBpm(%v) = %v, want %v", tt.input, got, tt.want)
		}
		if got := m.BPM(); got != tt.want {
			t.Errorf("BPM() after SetBpm(%v) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSetBpmFineKeepsTenths(t *testing.T) {
	tests := []struct {
		input float64
		want  float64
	}{
		{120.14, 120.1},
		{120.15, 120.2},
		{99.96, 100},
		{19.96, 20},
		{240.04, 240},
		{240.1, 240},
	}
	for _, tt := range tests {
		m := NewMeter()
		if got := m.SetBpmFine(tt.input); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("SetBpmFine(%v) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSetBpmString(t *testing.T) {
	m := NewMeter()
	if got := m.SetBpmString(" 132 "); got != 132 {
		t.Errorf("SetBpmString(132) = %v, want 132", got)
	}
	if got := m.SetBpmString(""); got != 132 {
		t.Errorf("blank input changed BPM to %v", got)
	}
	if got := m.SetBpmString("fast"); got != 132 {
		t.Errorf("non-numeric input changed BPM to %v", got)
	}
	if got := m.SetBpmString("900"); got != MaxBPM {
		t.Errorf("SetBpmString(900) = %v, want %v", got, MaxBPM)
	}
}

func TestNudgeBpm(t *testing.T) {
	m := NewMeter()
	if got := m.NudgeBpm(1); got != 101 {
		t.Errorf("NudgeBpm(+1) = %v, want 101", got)
	}
	if got := m.NudgeBpm(0.1); math.Abs(got-101.1) > 1e-9 {
		t.Errorf("NudgeBpm(+0.1) = %v, want 101.1", got)
	}
	if got := m.NudgeBpm(-0.1); math.Abs(got-101) > 1e-9 {
		t.Errorf("NudgeBpm(-0.1) = %v, want 101", got)
	}
	m.SetBpm(MinBPM)
	if got := m.NudgeBpm(-1); got != MinBPM {
		t.Errorf("NudgeBpm below min = %v, want %v", got, MinBPM)
	}
}

// --- Beat duration ---

func TestBeatDurationFormula(t *testing.T) {
	tests := []struct {
		bpm       float64
		noteValue int
	}{
		{60, 4},
		{100, 4},
		{120, 8},
		{90, 2},
		{133, 4},
		{20, 16},
		{240, 1},
	}
	for _, tt := range tests {
		m := NewMeter()
		m.SetBpm(tt.bpm)
		m.SetNoteValue(tt.noteValue)
		want := 60 / tt.bpm * (4 / float64(tt.noteValue))
		if got := m.BeatSeconds(); got != want {
			t.Errorf("BeatSeconds(bpm=%v, note=%d) = %v, want %v", tt.bpm, tt.noteValue, got, want)
		}
	}
}

func TestBeatDurationAt120(t *testing.T) {
	m := NewMeter()
	m.SetBpm(120)
	if got := m.BeatDuration(); got != 500*time.Millisecond {
		t.Errorf("BeatDuration at 120 = %v, want 500ms", got)
	}
}

func TestSetNoteValueIgnoresInvalid(t *testing.T) {
	m := NewMeter()
	for _, n := range []int{0, 3, 5, 32, -4} {
		if got := m.SetNoteValue(n); got != DefaultNoteValue {
			t.Errorf("SetNoteValue(%d) = %d, want unchanged %d", n, got, DefaultNoteValue)
		}
	}
	if got := m.SetNoteValue(8); got != 8 {
		t.Errorf("SetNoteValue(8) = %d, want 8", got)
	}
}

// --- Meter ---

func TestSetBeatsPerBarClamps(t *testing.T) {
	tests := []struct {
		input, want int
	}{
		{4, 4},
		{0, 1},
		{-3, 1},
		{12, 12},
		{13, 12},
		{7, 7},
	}
	for _, tt := range tests {
		m := NewMeter()
		if got := m.SetBeatsPerBar(tt.input); got != tt.want {
			t.Errorf("SetBeatsPerBar(%d) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestDefaults(t *testing.T) {
	m := NewMeter()
	cfg := m.Config()
	if cfg.BPM != 100 || cfg.BeatsPerBar != 4 || cfg.NoteValue != 4 || cfg.Subdivision != Quarter || !cfg.Accent {
		t.Errorf("Defaults = %+v", cfg)
	}
	m.SetBpm(180)
	m.SetAccent(false)
	m.SetSubdivision(Triplets)
	m.Reset()
	if got := m.Config(); got != Defaults() {
		t.Errorf("Reset left %+v, want defaults", got)
	}
}

func TestSetEighthsIsSubsetOfModes(t *testing.T) {
	m := NewMeter()
	if got := m.SetEighths(true); got != Eighths {
		t.Errorf("SetEighths(true) = %v, want eighths", got)
	}
	if got := m.SetEighths(false); got != Quarter {
		t.Errorf("SetEighths(false) = %v, want quarter", got)
	}
}

func TestSetSubdivisionIgnoresUnknown(t *testing.T) {
	m := NewMeter()
	m.SetSubdivision(Sixteenths)
	if got := m.SetSubdivision(Subdivision(42)); got != Sixteenths {
		t.Errorf("unknown subdivision replaced mode with %v", got)
	}
}
