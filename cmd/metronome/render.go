package main

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/satindergrewal/metronome/internal/render"
	"github.com/satindergrewal/metronome/internal/tempo"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Write a click track to a WAV file",
	RunE:  runRender,
}

func init() {
	f := renderCmd.Flags()
	f.Float64("bpm", tempo.DefaultBPM, "tempo in beats per minute")
	f.Int("beats", tempo.DefaultBeatsPerBar, "beats per bar")
	f.Int("note", tempo.DefaultNoteValue, "note value that gets the beat")
	f.String("mode", "quarter", "subdivision: quarter, eighths, sixteenths, triplets or swing")
	f.Bool("accent", true, "accent the first beat of each bar")
	f.Int("bars", 4, "number of bars")
	f.Duration("lead", 50*time.Millisecond, "silence before the first click")
	f.StringP("out", "o", "click.wav", "output file")
}

func runRender(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	bpm, _ := f.GetFloat64("bpm")
	beats, _ := f.GetInt("beats")
	note, _ := f.GetInt("note")
	mode, _ := f.GetString("mode")
	accent, _ := f.GetBool("accent")
	bars, _ := f.GetInt("bars")
	lead, _ := f.GetDuration("lead")
	out, _ := f.GetString("out")

	sub, ok := tempo.ParseSubdivision(mode)
	if !ok {
		return fmt.Errorf("unknown mode %q", mode)
	}

	// Run the values through the meter so they clamp like the live controls
	meter := tempo.NewMeter()
	meter.SetBpmFine(bpm)
	meter.SetBeatsPerBar(beats)
	meter.SetNoteValue(note)
	meter.SetSubdivision(sub)
	meter.SetAccent(accent)
	cfg := meter.Config()

	if err := render.WriteFile(out, cfg, bars, lead); err != nil {
		return err
	}
	log.Printf("Wrote %d bars at %.1f bpm (%d/%d, %s) to %s", bars, cfg.BPM, cfg.BeatsPerBar, cfg.NoteValue, cfg.Subdivision, out)
	return nil
}
