package engine

import (
	"sync/atomic"
	"time"
)

// TimeProvider abstracts the wall clock so frame timing can be driven by tests
type TimeProvider interface {
	Now() time.Time
}

// MonotonicTimeProvider provides the real system time with monotonic clock readings
type MonotonicTimeProvider struct{}

// NewMonotonicTimeProvider creates a new monotonic time provider
func NewMonotonicTimeProvider() *MonotonicTimeProvider {
	return &MonotonicTimeProvider{}
}

// Now returns the current time with monotonic clock reading
func (p *MonotonicTimeProvider) Now() time.Time {
	return time.Now()
}

// MockTimeProvider is a manually driven clock for deterministic frame timing in tests
// Time is stored as nanoseconds since base so reads and writes are lock-free
type MockTimeProvider struct {
	base    time.Time
	elapsed atomic.Int64
}

// NewMockTimeProvider creates a mock clock reading startTime
func NewMockTimeProvider(startTime time.Time) *MockTimeProvider {
	return &MockTimeProvider{base: startTime}
}

// Now returns the mocked time
func (m *MockTimeProvider) Now() time.Time {
	return m.base.Add(time.Duration(m.elapsed.Load()))
}

// SetTime jumps the clock to t, which may be earlier than the current reading
func (m *MockTimeProvider) SetTime(t time.Time) {
	m.elapsed.Store(int64(t.Sub(m.base)))
}

// Advance moves the clock forward by d
func (m *MockTimeProvider) Advance(d time.Duration) {
	m.elapsed.Add(int64(d))
}

// AdvanceFrames moves the clock by n frames of d each
func (m *MockTimeProvider) AdvanceFrames(n int, d time.Duration) {
	m.elapsed.Add(int64(n) * int64(d))
}
