package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("VOICECAPTURE_LANGUAGE", "")
	t.Setenv("VOICECAPTURE_FORMAT", "")
	t.Setenv("VOICECAPTURE_PAUSE_THRESHOLD", "")
	t.Setenv("VOICECAPTURE_COOLDOWN", "")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Language != DefaultLanguage {
		t.Errorf("language = %q", cfg.Language)
	}
	if cfg.Format != DefaultFormat {
		t.Errorf("format = %q", cfg.Format)
	}
	if cfg.PauseThreshold != DefaultPauseThreshold {
		t.Errorf("pause threshold = %s", cfg.PauseThreshold)
	}
	if cfg.Cooldown != DefaultCooldown {
		t.Errorf("cooldown = %s", cfg.Cooldown)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("VOICECAPTURE_LANGUAGE", "de")
	t.Setenv("VOICECAPTURE_FORMAT", "flac")
	t.Setenv("VOICECAPTURE_PAUSE_THRESHOLD", "750ms")
	t.Setenv("VOICECAPTURE_COOLDOWN", "2s")
	t.Setenv("VOICECAPTURE_SPEECH_RATE", "1.25")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Language != "de" || cfg.Format != "flac" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.PauseThreshold != 750*time.Millisecond {
		t.Errorf("pause threshold = %s", cfg.PauseThreshold)
	}
	if cfg.Cooldown != 2*time.Second {
		t.Errorf("cooldown = %s", cfg.Cooldown)
	}
	if cfg.SpeechRate != 1.25 {
		t.Errorf("speech rate = %g", cfg.SpeechRate)
	}
}

func TestBareNumberIsMilliseconds(t *testing.T) {
	t.Setenv("VOICECAPTURE_COOLDOWN", "500")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Cooldown != 500*time.Millisecond {
		t.Errorf("cooldown = %s", cfg.Cooldown)
	}
}

func TestInvalidFormatRejected(t *testing.T) {
	t.Setenv("VOICECAPTURE_FORMAT", "mp3")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("VOICECAPTURE_PAUSE_THRESHOLD", "soon")
	t.Setenv("VOICECAPTURE_SPEECH_RATE", "fast")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PauseThreshold != DefaultPauseThreshold {
		t.Errorf("pause threshold = %s", cfg.PauseThreshold)
	}
	if cfg.SpeechRate != DefaultSpeechRate {
		t.Errorf("speech rate = %g", cfg.SpeechRate)
	}
}
