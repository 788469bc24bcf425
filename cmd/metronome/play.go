package main

import (
	"context"
	"fmt"
	"io"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/satindergrewal/metronome/internal/audio"
	"github.com/satindergrewal/metronome/internal/config"
	"github.com/satindergrewal/metronome/internal/transport"
	"github.com/satindergrewal/metronome/internal/tui"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Run the metronome in the terminal on the local speaker",
	RunE:  runPlay,
}

func init() {
	playCmd.Flags().StringP("log", "l", "", "write logs to file (default METRONOME_LOG_FILE, empty discards)")
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if path, _ := cmd.Flags().GetString("log"); path != "" {
		cfg.LogFile = path
	}

	// The terminal belongs to the UI
	if cfg.LogFile != "" {
		f, err := tea.LogToFile(cfg.LogFile, "metronome")
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	events := make(chan transport.Event, 64)

	var spk *audio.Speaker
	opts := transportOptions(cfg)
	opts.OpenAudio = func() (audio.Device, error) {
		s, err := audio.OpenSpeaker(audio.NewEngine(), cfg.SpeakerBuffer, cfg.Volume)
		if err != nil {
			return nil, err
		}
		spk = s
		return s, nil
	}
	opts.Notify = func(ev transport.Event) {
		select {
		case events <- ev:
		default:
		}
	}

	m := transport.New(opts)
	if err := restore(m, opts.Store); err != nil {
		log.Printf("Settings not restored: %v", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go m.Run(ctx)

	p := tea.NewProgram(tui.NewModel(m, events), tea.WithAltScreen())
	_, err := p.Run()

	m.Stop()
	if spk != nil {
		spk.Close()
	}
	return err
}
