package engine

import (
	"sync"
	"time"
)

// RunState is the result of polling the scheduler
type RunState uint8

const (
	// RunDone means no more substeps this frame
	RunDone RunState = iota
	// RunAgain means execute one substep, then poll again
	RunAgain
)

func (s RunState) String() string {
	if s == RunAgain {
		return "again"
	}
	return "done"
}

// SubstepScheduler is a fixed-timestep accumulator that hands out substeps one poll at a time
// Host loop: for sched.Poll(dt) == RunAgain { runSubstep() }
type SubstepScheduler struct {
	mu sync.Mutex

	fixedDelta time.Duration
	substeps   int
	maxCatchUp int // Whole steps allowed in the accumulator after adding a frame; 0 = unbounded

	// Integer nanoseconds keep step counts independent of how deltas are chunked
	accumulator    time.Duration
	hasAddedTime   bool
	substepping    bool
	currentSubstep int
	queuedSteps    int
	paused         bool

	completedSteps uint64
	droppedSteps   uint64
}

// NewSubstepScheduler creates a scheduler running substeps per fixedDelta step
func NewSubstepScheduler(fixedDelta time.Duration, substeps, maxCatchUp int) *SubstepScheduler {
	if fixedDelta <= 0 {
		panic("substep scheduler: fixed delta must be positive")
	}
	if substeps <= 0 {
		panic("substep scheduler: substeps must be positive")
	}
	if maxCatchUp < 0 {
		maxCatchUp = 0
	}
	return &SubstepScheduler{
		fixedDelta: fixedDelta,
		substeps:   substeps,
		maxCatchUp: maxCatchUp,
	}
}

// Poll advances the state machine by one transition
// frameDelta is consumed once per frame, on the first poll after the previous RunDone
func (s *SubstepScheduler) Poll(frameDelta time.Duration) RunState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.paused && s.queuedSteps == 0 && !s.substepping {
		s.hasAddedTime = false
		return RunDone
	}

	if !s.hasAddedTime {
		s.hasAddedTime = true
		if s.paused {
			s.accumulator += s.fixedDelta * time.Duration(s.queuedSteps)
		} else {
			if frameDelta > 0 {
				s.accumulator += frameDelta
			}
			s.clampAccumulator()
		}
	}

	if s.substepping {
		s.currentSubstep++
		if s.currentSubstep < s.substeps {
			return RunAgain
		}

		// Whole step finished; a queued step also pays for its own fixed delta so it runs once
		if s.paused && s.queuedSteps > 0 {
			s.queuedSteps--
		}
		s.accumulator -= s.fixedDelta
		s.completedSteps++
		s.currentSubstep = 0
		s.substepping = false

		if s.paused && s.queuedSteps == 0 {
			s.hasAddedTime = false
			return RunDone
		}
	}

	if s.accumulator >= s.fixedDelta {
		s.substepping = true
		s.currentSubstep = 0
		return RunAgain
	}

	s.hasAddedTime = false
	return RunDone
}

// clampAccumulator discards whole steps beyond the catch-up limit, keeping the fractional remainder
func (s *SubstepScheduler) clampAccumulator() {
	if s.maxCatchUp == 0 {
		return
	}
	whole := int(s.accumulator / s.fixedDelta)
	if whole <= s.maxCatchUp {
		return
	}
	s.droppedSteps += uint64(whole - s.maxCatchUp)
	s.accumulator = s.fixedDelta*time.Duration(s.maxCatchUp) + s.accumulator%s.fixedDelta
}

// Pause freezes simulation time; queued single steps still run
func (s *SubstepScheduler) Pause() {
	s.mu.Lock()
	s.paused = true
	s.mu.Unlock()
}

// Resume continues accumulating wall-clock time and discards unconsumed single steps
func (s *SubstepScheduler) Resume() {
	s.mu.Lock()
	s.paused = false
	s.queuedSteps = 0
	s.mu.Unlock()
}

// Step queues one full step for execution while paused; ignored when running
func (s *SubstepScheduler) Step() {
	s.mu.Lock()
	if s.paused {
		s.queuedSteps++
	}
	s.mu.Unlock()
}

// IsPaused returns current pause state
func (s *SubstepScheduler) IsPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// FirstSubstep reports whether the substep about to run opens a new step
func (s *SubstepScheduler) FirstSubstep() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.substepping && s.currentSubstep == 0
}

// LastSubstep reports whether the substep about to run closes the current step
func (s *SubstepScheduler) LastSubstep() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.substepping && s.currentSubstep == s.substeps-1
}

// CurrentSubstep returns the index of the substep about to run
func (s *SubstepScheduler) CurrentSubstep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentSubstep
}

// QueuedSteps returns the number of pending single steps
func (s *SubstepScheduler) QueuedSteps() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queuedSteps
}

// CompletedSteps returns the number of whole steps finished since creation
func (s *SubstepScheduler) CompletedSteps() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completedSteps
}

// DroppedSteps returns the number of whole steps discarded by the catch-up clamp
func (s *SubstepScheduler) DroppedSteps() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.droppedSteps
}

// Accumulator returns the unconsumed time debt
func (s *SubstepScheduler) Accumulator() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accumulator
}
