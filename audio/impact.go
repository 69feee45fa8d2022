package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const (
	clickDuration = 60 * time.Millisecond
	clickAttack   = 2 * time.Millisecond
	clickRelease  = 45 * time.Millisecond

	// Pitch drops as impacts get harder
	clickFreqSoft = 1200.0
	clickFreqHard = 500.0

	noiseLevel = 0.35
)

// ImpactPlayer turns the per-step peak impact speed into a short click
// Safe for concurrent use; OnImpact is cheap when disabled or cooling down
type ImpactPlayer struct {
	mu          sync.Mutex
	cfg         Config
	rate        beep.SampleRate
	mixer       *beep.Mixer
	initialized bool
	lastPlayed  time.Time
	played      int
}

// NewImpactPlayer creates a player; nil cfg uses DefaultConfig
func NewImpactPlayer(cfg *Config) *ImpactPlayer {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &ImpactPlayer{
		cfg:   *cfg,
		rate:  beep.SampleRate(cfg.SampleRate),
		mixer: &beep.Mixer{},
	}
}

// Initialize opens the speaker and starts the mixer
func (p *ImpactPlayer) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized || !p.cfg.Enabled {
		return nil
	}

	if err := speaker.Init(p.rate, p.rate.N(100*time.Millisecond)); err != nil {
		return err
	}

	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Cleanup silences pending clicks and closes the speaker
func (p *ImpactPlayer) Cleanup() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}

	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()

	speaker.Close()
	p.initialized = false
}

// Loudness maps an impact speed onto 0..1 between MinSpeed and MaxSpeed
func (p *ImpactPlayer) Loudness(speed float64) float64 {
	if speed < p.cfg.MinSpeed {
		return 0
	}
	span := p.cfg.MaxSpeed - p.cfg.MinSpeed
	if span <= 0 {
		return 1
	}
	return clamp01((speed - p.cfg.MinSpeed) / span)
}

// OnImpact plays a click for the given speed unless it is too soft or too soon after the last one
// Returns whether the click was accepted; without an open speaker nothing is heard
func (p *ImpactPlayer) OnImpact(speed float64, now time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.cfg.Enabled || speed < p.cfg.MinSpeed {
		return false
	}
	if !p.lastPlayed.IsZero() && now.Sub(p.lastPlayed) < p.cfg.Cooldown {
		return false
	}
	p.lastPlayed = now
	p.played++

	if p.initialized {
		s := p.impactSound(speed)
		speaker.Lock()
		p.mixer.Add(s)
		speaker.Unlock()
	}
	return true
}

// Played returns the number of accepted clicks
func (p *ImpactPlayer) Played() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.played
}

// ImpactSound builds the click streamer for an impact speed
func (p *ImpactPlayer) ImpactSound(speed float64) beep.Streamer {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.impactSound(speed)
}

func (p *ImpactPlayer) impactSound(speed float64) beep.Streamer {
	loud := p.Loudness(speed)
	freq := clickFreqSoft + (clickFreqHard-clickFreqSoft)*loud

	tone := NewOscillator(freq, clickDuration, WaveSine, p.rate)
	noise := newVolume(NewOscillator(freq*3, clickDuration, WaveNoise, p.rate), noiseLevel)
	shaped := NewEnvelope(beep.Mix(tone, noise), clickDuration, clickAttack, clickRelease, p.rate)

	return newVolume(shaped, p.cfg.MasterVolume*loud)
}
