package audio

import (
	"os"
	"strconv"
	"time"
)

// Config controls impact sound synthesis
type Config struct {
	Enabled      bool
	MasterVolume float64 // 0.0-1.0
	SampleRate   int

	// Impacts slower than MinSpeed are silent; MaxSpeed and above play at full volume
	MinSpeed float64
	MaxSpeed float64

	// Minimum spacing between clicks so resting contacts do not buzz
	Cooldown time.Duration
}

// DefaultConfig returns audio settings tuned for the built-in scenes
func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		MasterVolume: 0.5,
		SampleRate:   48000,
		MinSpeed:     20,
		MaxSpeed:     600,
		Cooldown:     40 * time.Millisecond,
	}
}

// LoadConfig applies environment overrides to the defaults
func LoadConfig() *Config {
	cfg := DefaultConfig()

	if enabled := os.Getenv("XPBD_AUDIO_ENABLED"); enabled != "" {
		if val, err := strconv.ParseBool(enabled); err == nil {
			cfg.Enabled = val
		}
	}

	// Master volume 0-100 converted to 0.0-1.0
	if volume := os.Getenv("XPBD_MASTER_VOLUME"); volume != "" {
		if val, err := strconv.Atoi(volume); err == nil {
			cfg.MasterVolume = clamp01(float64(val) / 100.0)
		}
	}

	if sampleRate := os.Getenv("XPBD_SAMPLE_RATE"); sampleRate != "" {
		if val, err := strconv.Atoi(sampleRate); err == nil && val > 0 {
			cfg.SampleRate = val
		}
	}

	return cfg
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
