package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// Clear any env vars that might interfere
	envVars := []string{
		"METRONOME_PORT", "METRONOME_FFMPEG", "METRONOME_SETTINGS",
		"METRONOME_LOOKAHEAD_MS", "METRONOME_HORIZON_MS", "METRONOME_START_MARGIN_MS",
		"METRONOME_TIMER_STEP_MS", "METRONOME_FRAME_MS",
		"METRONOME_SPEAKER_BUFFER_MS", "METRONOME_VOLUME", "METRONOME_LOG_FILE",
	}
	for _, k := range envVars {
		os.Unsetenv(k)
	}
	t.Setenv("HOME", "/home/test")

	cfg := Load()

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.FFmpeg != "ffmpeg" {
		t.Errorf("FFmpeg = %q, want 'ffmpeg'", cfg.FFmpeg)
	}
	if cfg.SettingsPath != "/home/test/.config/metronome/settings.json" {
		t.Errorf("SettingsPath = %q, want default", cfg.SettingsPath)
	}
	if cfg.Lookahead != 25*time.Millisecond {
		t.Errorf("Lookahead = %v, want 25ms", cfg.Lookahead)
	}
	if cfg.Horizon != 150*time.Millisecond {
		t.Errorf("Horizon = %v, want 150ms", cfg.Horizon)
	}
	if cfg.StartMargin != 50*time.Millisecond {
		t.Errorf("StartMargin = %v, want 50ms", cfg.StartMargin)
	}
	if cfg.TimerStep != 15*time.Second {
		t.Errorf("TimerStep = %v, want 15s", cfg.TimerStep)
	}
	if cfg.TimerRefresh != 16*time.Millisecond {
		t.Errorf("TimerRefresh = %v, want 16ms", cfg.TimerRefresh)
	}
	if cfg.SpeakerBuffer != 40*time.Millisecond {
		t.Errorf("SpeakerBuffer = %v, want 40ms", cfg.SpeakerBuffer)
	}
	if cfg.Volume != 0 {
		t.Errorf("Volume = %f, want 0", cfg.Volume)
	}
	if cfg.LogFile != "" {
		t.Errorf("LogFile = %q, want empty default", cfg.LogFile)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("METRONOME_PORT", "3000")
	t.Setenv("METRONOME_FFMPEG", "/usr/local/bin/ffmpeg")
	t.Setenv("METRONOME_SETTINGS", "/tmp/settings.json")
	t.Setenv("METRONOME_LOOKAHEAD_MS", "10")
	t.Setenv("METRONOME_HORIZON_MS", "100")
	t.Setenv("METRONOME_START_MARGIN_MS", "0")
	t.Setenv("METRONOME_TIMER_STEP_MS", "30000")
	t.Setenv("METRONOME_FRAME_MS", "33")
	t.Setenv("METRONOME_SPEAKER_BUFFER_MS", "100")
	t.Setenv("METRONOME_VOLUME", "-1.5")
	t.Setenv("METRONOME_LOG_FILE", "/tmp/metronome.log")

	cfg := Load()

	if cfg.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Port)
	}
	if cfg.FFmpeg != "/usr/local/bin/ffmpeg" {
		t.Errorf("FFmpeg = %q, want env override", cfg.FFmpeg)
	}
	if cfg.SettingsPath != "/tmp/settings.json" {
		t.Errorf("SettingsPath = %q, want env override", cfg.SettingsPath)
	}
	if cfg.Lookahead != 10*time.Millisecond {
		t.Errorf("Lookahead = %v, want 10ms", cfg.Lookahead)
	}
	if cfg.Horizon != 100*time.Millisecond {
		t.Errorf("Horizon = %v, want 100ms", cfg.Horizon)
	}
	if cfg.StartMargin != 0 {
		t.Errorf("StartMargin = %v, want 0", cfg.StartMargin)
	}
	if cfg.TimerStep != 30*time.Second {
		t.Errorf("TimerStep = %v, want 30s", cfg.TimerStep)
	}
	if cfg.TimerRefresh != 33*time.Millisecond {
		t.Errorf("TimerRefresh = %v, want 33ms", cfg.TimerRefresh)
	}
	if cfg.SpeakerBuffer != 100*time.Millisecond {
		t.Errorf("SpeakerBuffer = %v, want 100ms", cfg.SpeakerBuffer)
	}
	if cfg.Volume != -1.5 {
		t.Errorf("Volume = %f, want -1.5", cfg.Volume)
	}
	if cfg.LogFile != "/tmp/metronome.log" {
		t.Errorf("LogFile = %q, want env override", cfg.LogFile)
	}
}

func TestEnvIntInvalidFallsBack(t *testing.T) {
	t.Setenv("METRONOME_PORT", "not-a-number")
	cfg := Load()
	if cfg.Port != 8080 {
		t.Errorf("Invalid int env should fallback to default: got %d, want 8080", cfg.Port)
	}
}

func TestEnvMillisNegativeFallsBack(t *testing.T) {
	t.Setenv("METRONOME_HORIZON_MS", "-20")
	cfg := Load()
	if cfg.Horizon != 150*time.Millisecond {
		t.Errorf("Negative millis should fallback: got %v, want 150ms", cfg.Horizon)
	}
}

func TestEnvFloatInvalidFallsBack(t *testing.T) {
	t.Setenv("METRONOME_VOLUME", "loud")
	cfg := Load()
	if cfg.Volume != 0 {
		t.Errorf("Invalid float env should fallback: got %f, want 0", cfg.Volume)
	}
}
