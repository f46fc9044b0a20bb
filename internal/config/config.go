// Package config loads conversion defaults from environment variables.
package config

import (
	"os"
	"strconv"

	"github.com/dudk/mmlmp3/synth"
)

// Config holds runtime configuration.
type Config struct {
	// Synthesizer
	SampleRate int
	Polyphony  int
	Reverb     bool
	Chorus     bool
	Gain       float64

	// TempDir is a directory for intermediate files.
	TempDir string
}

// Load reads configuration from environment variables with defaults of
// synth.DefaultSettings.
func Load() Config {
	d := synth.DefaultSettings()
	return Config{
		SampleRate: envInt("MMLMP3_SAMPLE_RATE", d.SampleRate),
		Polyphony:  envInt("MMLMP3_POLYPHONY", d.Polyphony),
		Reverb:     envBool("MMLMP3_REVERB", d.Reverb),
		Chorus:     envBool("MMLMP3_CHORUS", d.Chorus),
		Gain:       envFloat("MMLMP3_GAIN", d.Gain),
		TempDir:    envStr("MMLMP3_TEMP_DIR", os.TempDir()),
	}
}

// Settings returns synthesizer settings. Containers are always stereo.
func (c Config) Settings() synth.Settings {
	return synth.Settings{
		SampleRate:  c.SampleRate,
		NumChannels: 2,
		Polyphony:   c.Polyphony,
		Reverb:      c.Reverb,
		Chorus:      c.Chorus,
		Gain:        c.Gain,
	}
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

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
