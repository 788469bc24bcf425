// Package render produces click tracks offline, with the same planning code
// the live scheduler uses.
package render

import (
	"fmt"
	"os"
	"time"

	"github.com/satindergrewal/metronome/internal/audio"
	"github.com/satindergrewal/metronome/internal/scheduler"
	"github.com/satindergrewal/metronome/internal/tempo"
)

// Track renders bars of cfg as interleaved 16-bit stereo PCM at
// audio.SampleRate. The first beat starts after lead; the track ends when
// the last click has died away.
func Track(cfg tempo.Config, bars int, lead time.Duration) []int16 {
	if bars < 1 || cfg.BPM <= 0 || cfg.BeatsPerBar < 1 || cfg.NoteValue < 1 {
		return nil
	}
	lead = max(lead, 0)
	total := bars * cfg.BeatsPerBar
	end := lead + time.Duration(total)*cfg.BeatDuration() + audio.SamplesToDuration(int64(audio.ClickSamples))
	horizon := scheduler.DefaultOptions().Horizon

	e := audio.NewEngine()
	cur := scheduler.Cursor{Next: lead}
	scheduled := 0
	var out []int16
	for e.Now() < end {
		if scheduled < total {
			var beats []scheduler.Beat
			beats, cur = scheduler.Plan(cfg, cur, e.Now(), horizon)
			if len(beats) > total-scheduled {
				beats = beats[:total-scheduled]
			}
			for _, b := range beats {
				e.Schedule(b.Main)
				for _, c := range b.Subs {
					e.Schedule(c)
				}
			}
			scheduled += len(beats)
		}
		out = append(out, e.RenderFrame()...)
	}
	return out
}

// WriteFile renders the track and writes it to path as a WAV file.
func WriteFile(path string, cfg tempo.Config, bars int, lead time.Duration) error {
	samples := Track(cfg, bars, lead)
	if len(samples) == 0 {
		return fmt.Errorf("nothing to render for %d bars", bars)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := audio.WriteWAV(f, samples); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
