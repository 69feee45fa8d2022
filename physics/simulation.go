package physics

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/lixenwraith/xpbd/component"
	"github.com/lixenwraith/xpbd/core"
	"github.com/lixenwraith/xpbd/engine"
	"github.com/lixenwraith/xpbd/status"
	"github.com/lixenwraith/xpbd/vmath"
)

// Metric keys published to the status registry
const (
	MetricSteps              = "physics.steps"
	MetricSubsteps           = "physics.substeps"
	MetricBodies             = "physics.bodies"
	MetricPairs              = "physics.pairs"
	MetricDynamicContacts    = "physics.contacts.dynamic"
	MetricStaticContacts     = "physics.contacts.static"
	MetricDegenerateContacts = "physics.contacts.degenerate"
	MetricImpactSpeed        = "physics.impact_speed"
	MetricPeakImpactSpeed    = "physics.impact_speed.peak"
	MetricPairRefresh        = "physics.pair_refresh"
	MetricStaticPairing      = "physics.static_pairing"
	MetricSimTime            = "physics.sim_time"
	MetricPaused             = "physics.paused"
	MetricDroppedSteps       = "scheduler.dropped_steps"
	MetricQueuedSteps        = "scheduler.queued_steps"
	MetricBacklog            = "scheduler.backlog"
)

// dropLogInterval rate-limits the catch-up clamp warning
const dropLogInterval = time.Second

// TransformSink receives body positions after the last substep of a step
// Called with the world lock held; implementations must not call back into the world
type TransformSink interface {
	SyncTransform(e core.Entity, pos vmath.Vec2)
}

// StepStats is a snapshot of solver activity
type StepStats struct {
	Steps    uint64
	Substeps uint64
	Bodies   int
	Pairs    int

	// Contact counts summed over the substeps of the latest step
	DynamicContacts int
	StaticContacts  int
	// Running total of contacts resolved along a substituted normal
	Degenerate uint64

	// Peak approach speed over the latest step
	ImpactSpeed float64
	SimTime     float64

	DroppedSteps uint64
	QueuedSteps  int
	Paused       bool
}

// Simulation drives the solver from host frame deltas through the substep scheduler
// All world access happens under World.RunSafe; the host mutates bodies between Advance calls
type Simulation struct {
	world     *engine.World
	config    Config
	scheduler *engine.SubstepScheduler
	broad     *BroadPhase
	solver    *Solver

	subDt        float64
	marginFactor float64
	gravity      vmath.Vec2 // Guarded by the world lock

	stats StepStats

	lastDropped uint64
	lastDropLog time.Time

	// Cached metric pointers
	statSteps      *atomic.Int64
	statSubsteps   *atomic.Int64
	statBodies     *atomic.Int64
	statPairs      *atomic.Int64
	statDynamic    *atomic.Int64
	statStatic     *atomic.Int64
	statDegenerate *atomic.Int64
	statDropped    *atomic.Int64
	statQueued     *atomic.Int64
	statImpact     *status.AtomicFloat
	statSimTime    *status.AtomicFloat
	statPaused     *atomic.Bool
	statPeakImpact *status.AtomicFloat
	statBacklog    *status.AtomicFloat
}

// NewSimulation validates cfg and binds a solver to w
// reg may be nil, in which case metrics go to a private registry
func NewSimulation(w *engine.World, cfg Config, reg *status.Registry) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if w == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "nil world")
	}
	if reg == nil {
		reg = status.NewRegistry()
	}

	s := &Simulation{
		world:        w,
		config:       cfg,
		scheduler:    engine.NewSubstepScheduler(cfg.FixedDelta(), cfg.Substeps, cfg.MaxCatchUpSteps),
		broad:        NewBroadPhase(),
		solver:       NewSolver(),
		subDt:        cfg.SubDt(),
		marginFactor: cfg.MarginFactor(),
		gravity:      cfg.Gravity,

		statSteps:      reg.Ints.Get(MetricSteps),
		statSubsteps:   reg.Ints.Get(MetricSubsteps),
		statBodies:     reg.Ints.Get(MetricBodies),
		statPairs:      reg.Ints.Get(MetricPairs),
		statDynamic:    reg.Ints.Get(MetricDynamicContacts),
		statStatic:     reg.Ints.Get(MetricStaticContacts),
		statDegenerate: reg.Ints.Get(MetricDegenerateContacts),
		statDropped:    reg.Ints.Get(MetricDroppedSteps),
		statQueued:     reg.Ints.Get(MetricQueuedSteps),
		statImpact:     reg.Floats.Get(MetricImpactSpeed),
		statPeakImpact: reg.Floats.Get(MetricPeakImpactSpeed),
		statBacklog:    reg.Floats.Get(MetricBacklog),
		statSimTime:    reg.Floats.Get(MetricSimTime),
		statPaused:     reg.Bools.Get(MetricPaused),
	}
	w.RunSafe(func() {
		w.SetSubDt(s.subDt)
	})
	reg.Strings.Get(MetricPairRefresh).Store(cfg.PairRefresh.String())
	reg.Strings.Get(MetricStaticPairing).Store(cfg.StaticPairing.String())
	return s, nil
}

// World returns the body store the simulation advances
func (s *Simulation) World() *engine.World {
	return s.world
}

// Config returns the startup configuration
func (s *Simulation) Config() Config {
	return s.config
}

// Advance consumes one host frame delta and runs every substep the scheduler hands out
// sink, if non-nil, receives positions after each completed step; returns completed step count
func (s *Simulation) Advance(frameDelta time.Duration, sink TransformSink) int {
	steps := 0
	s.world.RunSafe(func() {
		for s.scheduler.Poll(frameDelta) == engine.RunAgain {
			first := s.scheduler.FirstSubstep()
			last := s.scheduler.LastSubstep()
			s.substep(first)
			if last {
				steps++
				s.finishStep(sink)
			}
		}
		s.publishSchedulerStats()
	})
	return steps
}

// substep runs the ordered pipeline once
func (s *Simulation) substep(first bool) {
	w := s.world

	if first {
		s.stats.ImpactSpeed = 0
		s.stats.DynamicContacts = 0
		s.stats.StaticContacts = 0
	}
	if first || s.config.PairRefresh == PairRefreshPerSubstep {
		UpdateBounds(w, s.marginFactor)
		s.broad.Collect(w)
	}
	pairs := s.broad.Pairs()

	s.solver.Integrate(w, s.subDt, s.gravity)
	s.solver.ClearContacts()
	s.solver.SolvePositions(w, pairs)
	if s.config.StaticPairing == StaticPairsExhaustive {
		s.solver.SolveStaticPositionsExhaustive(w)
	} else {
		s.solver.SolveStaticPositions(w, pairs)
	}
	s.solver.UpdateVelocities(w, s.subDt)
	s.solver.SolveVelocities(w)
	s.solver.SolveStaticVelocities(w)

	sub := s.solver.Stats()
	s.stats.Substeps++
	s.stats.DynamicContacts += sub.DynamicContacts
	s.stats.StaticContacts += sub.StaticContacts
	s.stats.Degenerate += uint64(sub.Degenerate)
	if sub.ImpactSpeed > s.stats.ImpactSpeed {
		s.stats.ImpactSpeed = sub.ImpactSpeed
	}
}

// finishStep syncs transforms and publishes per-step metrics
func (s *Simulation) finishStep(sink TransformSink) {
	s.stats.Steps++
	s.stats.Bodies = s.world.Colliders.Count()
	s.stats.Pairs = len(s.broad.Pairs())

	if sink != nil {
		s.world.Colliders.Each(func(e core.Entity, _ *component.ColliderComponent) {
			if kin := s.world.Kinetics.Ptr(e); kin != nil {
				sink.SyncTransform(e, kin.Pos)
			}
		})
	}

	s.statSteps.Store(int64(s.stats.Steps))
	s.statSubsteps.Store(int64(s.stats.Substeps))
	s.statBodies.Store(int64(s.stats.Bodies))
	s.statPairs.Store(int64(s.stats.Pairs))
	s.statDynamic.Store(int64(s.stats.DynamicContacts))
	s.statStatic.Store(int64(s.stats.StaticContacts))
	s.statDegenerate.Store(int64(s.stats.Degenerate))
	s.statImpact.Set(s.stats.ImpactSpeed)
	s.statPeakImpact.StoreMax(s.stats.ImpactSpeed)
}

func (s *Simulation) publishSchedulerStats() {
	s.stats.DroppedSteps = s.scheduler.DroppedSteps()
	s.stats.QueuedSteps = s.scheduler.QueuedSteps()
	s.stats.Paused = s.scheduler.IsPaused()
	s.stats.SimTime = float64(s.scheduler.CompletedSteps()) / s.config.StepHz

	s.statDropped.Store(int64(s.stats.DroppedSteps))
	s.statQueued.Store(int64(s.stats.QueuedSteps))
	s.statPaused.Store(s.stats.Paused)
	s.statSimTime.Set(s.stats.SimTime)
	s.statBacklog.Set(s.scheduler.Accumulator().Seconds())

	if s.stats.DroppedSteps > s.lastDropped {
		now := time.Now()
		if now.Sub(s.lastDropLog) >= dropLogInterval {
			log.Printf("physics: catch-up clamp dropped %d steps (total %d)",
				s.stats.DroppedSteps-s.lastDropped, s.stats.DroppedSteps)
			s.lastDropped = s.stats.DroppedSteps
			s.lastDropLog = now
		}
	}
}

// SyncAll pushes every body position to sink without stepping, used after spawning or reload
func (s *Simulation) SyncAll(sink TransformSink) {
	s.world.RunSafe(func() {
		s.world.Colliders.Each(func(e core.Entity, _ *component.ColliderComponent) {
			if kin := s.world.Kinetics.Ptr(e); kin != nil {
				sink.SyncTransform(e, kin.Pos)
			}
		})
	})
}

// Pause freezes the simulation; queued single steps still run
func (s *Simulation) Pause() {
	s.scheduler.Pause()
}

// Resume continues real-time stepping
func (s *Simulation) Resume() {
	s.scheduler.Resume()
}

// TogglePause flips the pause state and returns the new state
func (s *Simulation) TogglePause() bool {
	if s.scheduler.IsPaused() {
		s.scheduler.Resume()
		return false
	}
	s.scheduler.Pause()
	return true
}

// Step queues one fixed step while paused
func (s *Simulation) Step() {
	s.scheduler.Step()
}

// IsPaused returns the scheduler pause state
func (s *Simulation) IsPaused() bool {
	return s.scheduler.IsPaused()
}

// SetGravity replaces the gravity acceleration; takes effect from the next substep
func (s *Simulation) SetGravity(g vmath.Vec2) error {
	if !vmath.IsFinite(g) {
		return errors.Wrapf(ErrInvalidConfig, "gravity %v", g)
	}
	s.world.RunSafe(func() {
		s.gravity = g
	})
	return nil
}

// Gravity returns the current gravity acceleration
func (s *Simulation) Gravity() vmath.Vec2 {
	var g vmath.Vec2
	s.world.RunSafe(func() {
		g = s.gravity
	})
	return g
}

// Stats returns a snapshot of solver and scheduler counters
func (s *Simulation) Stats() StepStats {
	var st StepStats
	s.world.RunSafe(func() {
		st = s.stats
	})
	return st
}
