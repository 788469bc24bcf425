package config

import (
	"os"
	"strconv"
	"time"

	"github.com/satindergrewal/metronome/internal/settings"
)

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	// Server
	Port   int
	FFmpeg string // binary used for the MP3 stream

	// Persistence
	SettingsPath string

	// Scheduling
	Lookahead    time.Duration // interval between scheduling passes
	Horizon      time.Duration // how far ahead each pass schedules
	StartMargin  time.Duration // delay before the first beat
	TimerStep    time.Duration // countdown target step
	TimerRefresh time.Duration // display refresh period

	// Local output
	SpeakerBuffer time.Duration
	Volume        float64 // base-2 exponent, 0 = unity
	LogFile       string  // terminal UI log destination, empty discards
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		Port:   envInt("METRONOME_PORT", 8080),
		FFmpeg: envStr("METRONOME_FFMPEG", "ffmpeg"),

		SettingsPath: envStr("METRONOME_SETTINGS", defaultSettingsPath()),

		Lookahead:    envMillis("METRONOME_LOOKAHEAD_MS", 25),
		Horizon:      envMillis("METRONOME_HORIZON_MS", 150),
		StartMargin:  envMillis("METRONOME_START_MARGIN_MS", 50),
		TimerStep:    envMillis("METRONOME_TIMER_STEP_MS", 15000),
		TimerRefresh: envMillis("METRONOME_FRAME_MS", 16),

		SpeakerBuffer: envMillis("METRONOME_SPEAKER_BUFFER_MS", 40),
		Volume:        envFloat("METRONOME_VOLUME", 0),
		LogFile:       envStr("METRONOME_LOG_FILE", ""),
	}
}

func defaultSettingsPath() string {
	p, err := settings.DefaultPath()
	if err != nil {
		return "metronome-settings.json"
	}
	return p
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// envMillis reads a non-negative millisecond count.
func envMillis(key string, fallback int) time.Duration {
	n := envInt(key, fallback)
	if n < 0 {
		n = fallback
	}
	return time.Duration(n) * time.Millisecond
}
