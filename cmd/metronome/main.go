package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/satindergrewal/metronome/internal/config"
	"github.com/satindergrewal/metronome/internal/scheduler"
	"github.com/satindergrewal/metronome/internal/settings"
	"github.com/satindergrewal/metronome/internal/transport"
)

var rootCmd = &cobra.Command{
	Use:   "metronome",
	Short: "A look-ahead metronome",
	Long: `metronome schedules clicks slightly ahead of time against the audio
clock, so beats stay sample-accurate however busy the process is.

Run it in the terminal (play), serve it to browsers (serve), or render a
click track to a WAV file (render).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, playCmd, renderCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// transportOptions maps the environment configuration onto the transport.
func transportOptions(cfg config.Config) transport.Options {
	return transport.Options{
		Scheduler: scheduler.Options{
			Lookahead:   cfg.Lookahead,
			Horizon:     cfg.Horizon,
			StartMargin: cfg.StartMargin,
		},
		TimerStep:    cfg.TimerStep,
		TimerRefresh: cfg.TimerRefresh,
		Store:        &settings.Store{Path: cfg.SettingsPath},
	}
}

// restore applies the saved settings, if any, before the first start.
func restore(m *transport.Metronome, store *settings.Store) error {
	s, err := store.Load()
	if err != nil {
		return err
	}
	m.Restore(s)
	return nil
}
