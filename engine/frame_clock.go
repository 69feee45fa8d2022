package engine

import (
	"sync"
	"time"
)

// FrameClock converts successive wall-clock readings into per-frame deltas for the scheduler
// Deltas are clamped so a stall (debugger, window drag, suspended terminal) arrives as one bounded frame
type FrameClock struct {
	mu sync.Mutex

	provider TimeProvider
	maxDelta time.Duration

	lastTick time.Time
	started  bool

	// Cumulative time cut off by the clamp
	totalClamped time.Duration
}

// NewFrameClock creates a frame clock reading from provider; maxDelta <= 0 disables clamping
func NewFrameClock(provider TimeProvider, maxDelta time.Duration) *FrameClock {
	return &FrameClock{
		provider: provider,
		maxDelta: maxDelta,
	}
}

// Tick returns the time elapsed since the previous Tick; the first Tick returns 0
func (c *FrameClock) Tick() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.provider.Now()
	if !c.started {
		c.started = true
		c.lastTick = now
		return 0
	}

	delta := now.Sub(c.lastTick)
	c.lastTick = now

	if delta < 0 {
		return 0
	}
	if c.maxDelta > 0 && delta > c.maxDelta {
		c.totalClamped += delta - c.maxDelta
		delta = c.maxDelta
	}
	return delta
}

// Reset makes the next Tick return 0, used after reloading a scene or resuming from a long pause
func (c *FrameClock) Reset() {
	c.mu.Lock()
	c.started = false
	c.mu.Unlock()
}

// TotalClamped returns cumulative wall-clock time discarded by the frame delta clamp
func (c *FrameClock) TotalClamped() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalClamped
}
