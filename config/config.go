// Package config loads runtime settings from the environment, with an
// optional .env file for development setups.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultLanguage       = "en"
	DefaultFormat         = "wav"
	DefaultVoice          = "aura-2-thalia-en"
	DefaultPauseThreshold = 800 * time.Millisecond
	DefaultCooldown       = 1200 * time.Millisecond
	DefaultSpeechRate     = 1.0
	DefaultPitch          = 1.0
)

// Config carries everything tunable from the outside. Zero values never
// survive Load; every field is defaulted.
type Config struct {
	Language       string
	Format         string // recording artifact container, wav or flac
	Voice          string
	PauseThreshold time.Duration // silence that ends an utterance in a call
	Cooldown       time.Duration // pause between bot speech and re-listen
	SpeechRate     float64
	Pitch          float64

	GroqAPIKey     string
	OpenAIAPIKey   string
	DeepgramAPIKey string

	LogPath string
}

// Load reads .env if present, then the process environment. Environment
// variables win over the file, which is godotenv's default.
func Load() (Config, error) {
	godotenv.Load()

	cfg := Config{
		Language:       getEnv("VOICECAPTURE_LANGUAGE", DefaultLanguage),
		Format:         getEnv("VOICECAPTURE_FORMAT", DefaultFormat),
		Voice:          getEnv("VOICECAPTURE_VOICE", DefaultVoice),
		PauseThreshold: getEnvDuration("VOICECAPTURE_PAUSE_THRESHOLD", DefaultPauseThreshold),
		Cooldown:       getEnvDuration("VOICECAPTURE_COOLDOWN", DefaultCooldown),
		SpeechRate:     getEnvFloat("VOICECAPTURE_SPEECH_RATE", DefaultSpeechRate),
		Pitch:          getEnvFloat("VOICECAPTURE_PITCH", DefaultPitch),
		GroqAPIKey:     os.Getenv("GROQ_API_KEY"),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		DeepgramAPIKey: os.Getenv("DEEPGRAM_API_KEY"),
		LogPath:        os.Getenv("VOICECAPTURE_LOG_PATH"),
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Format != "wav" && c.Format != "flac" {
		return fmt.Errorf("unsupported format %q (want wav or flac)", c.Format)
	}
	if c.PauseThreshold <= 0 {
		return fmt.Errorf("pause threshold must be positive, got %s", c.PauseThreshold)
	}
	if c.Cooldown < 0 {
		return fmt.Errorf("cooldown must not be negative, got %s", c.Cooldown)
	}
	if c.SpeechRate <= 0 || c.Pitch <= 0 {
		return fmt.Errorf("speech rate and pitch must be positive, got %g and %g", c.SpeechRate, c.Pitch)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("750ms") and bare numbers,
// which are read as milliseconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return fallback
}
