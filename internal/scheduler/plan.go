package scheduler

import (
	"math"
	"time"

	"github.com/satindergrewal/metronome/internal/audio"
	"github.com/satindergrewal/metronome/internal/tempo"
)

// Cursor is the scheduling position: the time of the next main beat and its
// index within the bar.
type Cursor struct {
	Next      time.Duration
	BeatInBar int
}

// Beat is everything scheduled for one main pulse.
type Beat struct {
	Index       int // 0-indexed position in the bar
	BeatsPerBar int
	Main        audio.Click
	Subs        []audio.Click
}

// Accent reports whether the main click uses the accent timbre.
func (b Beat) Accent() bool {
	return b.Main.Tier == audio.TierAccent
}

// Plan returns every beat whose main click starts before now+horizon,
// in time order, and the cursor after them. Beat times come only from the
// running sum in the cursor; now just bounds the window.
func Plan(cfg tempo.Config, cur Cursor, now, horizon time.Duration) ([]Beat, Cursor) {
	if cfg.BPM <= 0 || cfg.BeatsPerBar < 1 {
		return nil, cur
	}
	beat := cfg.BeatDuration()
	if beat <= 0 {
		return nil, cur
	}
	offsets := cfg.Subdivision.Offsets()
	subGain := 1.0
	if cfg.Subdivision.Soft() {
		subGain = audio.SoftGain()
	}

	// a shorter bar starts over on its first beat
	if cur.BeatInBar >= cfg.BeatsPerBar || cur.BeatInBar < 0 {
		cur.BeatInBar = 0
	}

	var out []Beat
	for cur.Next < now+horizon {
		b := Beat{
			Index:       cur.BeatInBar,
			BeatsPerBar: cfg.BeatsPerBar,
			Main:        audio.Click{At: cur.Next, Tier: audio.TierBeat, Gain: 1},
		}
		if cur.BeatInBar == 0 && cfg.Accent {
			b.Main.Tier = audio.TierAccent
		}
		for _, off := range offsets {
			b.Subs = append(b.Subs, audio.Click{
				At:   cur.Next + time.Duration(math.Round(off*float64(beat))),
				Tier: audio.TierSub,
				Gain: subGain,
			})
		}
		out = append(out, b)

		cur.BeatInBar = (cur.BeatInBar + 1) % cfg.BeatsPerBar
		cur.Next += beat
	}
	return out, cur
}
