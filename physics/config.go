package physics

import (
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/lixenwraith/xpbd/parameter"
	"github.com/lixenwraith/xpbd/vmath"
)

// ErrInvalidConfig is returned by Config.Validate
var ErrInvalidConfig = errors.New("invalid physics config")

// PairRefresh selects how often broad-phase candidates are rebuilt
type PairRefresh uint8

const (
	// PairRefreshPerStep collects pairs on the first substep only
	PairRefreshPerStep PairRefresh = iota
	// PairRefreshPerSubstep collects pairs before every substep
	PairRefreshPerSubstep
)

func (p PairRefresh) String() string {
	if p == PairRefreshPerSubstep {
		return "substep"
	}
	return "step"
}

// UnmarshalText accepts "step" or "substep"
func (p *PairRefresh) UnmarshalText(text []byte) error {
	switch string(text) {
	case "step", "":
		*p = PairRefreshPerStep
	case "substep":
		*p = PairRefreshPerSubstep
	default:
		return errors.Wrapf(ErrInvalidConfig, "pair refresh %q", text)
	}
	return nil
}

// StaticPairing selects which dynamic-static combinations reach the narrow phase
type StaticPairing uint8

const (
	// StaticPairsBroadPhase tests only broad-phase candidates
	StaticPairsBroadPhase StaticPairing = iota
	// StaticPairsExhaustive tests every dynamic body against every static body
	StaticPairsExhaustive
)

func (p StaticPairing) String() string {
	if p == StaticPairsExhaustive {
		return "exhaustive"
	}
	return "broadphase"
}

// UnmarshalText accepts "broadphase" or "exhaustive"
func (p *StaticPairing) UnmarshalText(text []byte) error {
	switch string(text) {
	case "broadphase", "":
		*p = StaticPairsBroadPhase
	case "exhaustive":
		*p = StaticPairsExhaustive
	default:
		return errors.Wrapf(ErrInvalidConfig, "static pairing %q", text)
	}
	return nil
}

// Config is fixed at simulation construction
type Config struct {
	StepHz          float64 // Fixed steps per simulated second
	Substeps        int
	MarginK         float64 // AABB margin = MarginK·DeltaTime·|v|
	Gravity         vmath.Vec2
	MaxCatchUpSteps int // 0 = unbounded
	PairRefresh     PairRefresh
	StaticPairing   StaticPairing
}

// DefaultConfig returns the reference timing: 60 Hz, 10 substeps, k=2
func DefaultConfig() Config {
	return Config{
		StepHz:          parameter.StepHz,
		Substeps:        parameter.NumSubsteps,
		MarginK:         parameter.CollisionPairVelMarginK,
		Gravity:         vmath.V2(parameter.DefaultGravityX, parameter.DefaultGravityY),
		MaxCatchUpSteps: parameter.MaxCatchUpSteps,
		PairRefresh:     PairRefreshPerStep,
		StaticPairing:   StaticPairsBroadPhase,
	}
}

// Validate fails fast on values that would stall or destabilize the solver
func (c Config) Validate() error {
	if !(c.StepHz > 0) || math.IsInf(c.StepHz, 0) {
		return errors.Wrapf(ErrInvalidConfig, "step rate %v", c.StepHz)
	}
	if c.FixedDelta() <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "step rate %v below clock resolution", c.StepHz)
	}
	if c.Substeps <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "substeps %d", c.Substeps)
	}
	if !(c.MarginK >= 0) || math.IsInf(c.MarginK, 0) {
		return errors.Wrapf(ErrInvalidConfig, "margin multiplier %v", c.MarginK)
	}
	if !vmath.IsFinite(c.Gravity) {
		return errors.Wrapf(ErrInvalidConfig, "gravity %v", c.Gravity)
	}
	if c.MaxCatchUpSteps < 0 {
		return errors.Wrapf(ErrInvalidConfig, "max catch-up steps %d", c.MaxCatchUpSteps)
	}
	if c.PairRefresh > PairRefreshPerSubstep {
		return errors.Wrapf(ErrInvalidConfig, "pair refresh %d", c.PairRefresh)
	}
	if c.StaticPairing > StaticPairsExhaustive {
		return errors.Wrapf(ErrInvalidConfig, "static pairing %d", c.StaticPairing)
	}
	return nil
}

// FixedDelta returns one step rounded to the nanosecond, the unit of the scheduler accumulator
// The rounding only shifts when steps fire against wall time; solver seconds come from DeltaTime
func (c Config) FixedDelta() time.Duration {
	return time.Duration(math.Round(float64(time.Second) / c.StepHz))
}

// DeltaTime returns one step in seconds
func (c Config) DeltaTime() float64 {
	return 1 / c.StepHz
}

// SubDt returns the substep interval in seconds
func (c Config) SubDt() float64 {
	return 1 / (c.StepHz * float64(c.Substeps))
}

// MarginFactor returns the velocity multiplier applied to AABB half extents
func (c Config) MarginFactor() float64 {
	return c.MarginK / c.StepHz
}
