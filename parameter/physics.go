package parameter

import "time"

// Solver timing
const (
	// StepHz is the fixed physics rate; seconds fed to the solver derive from it exactly
	StepHz = 60.0

	// NumSubsteps splits every step for constraint stability
	NumSubsteps = 10

	// MaxCatchUpSteps bounds steps run in a single frame, 0 disables the clamp
	MaxCatchUpSteps = 5

	// MaxFrameDelta caps a single frame clock reading (stall, debugger break)
	MaxFrameDelta = 250 * time.Millisecond
)

// Derived timing in seconds, exact rational constants rounded once to float64
const (
	DeltaTime = 1 / StepHz
	SubDt     = DeltaTime / NumSubsteps
)

// Broad phase
const (
	// CollisionPairVelMarginK scales |v|·DeltaTime into the AABB safety margin
	CollisionPairVelMarginK = 2.0
)

// Body defaults
const (
	DefaultMass         = 1.0
	DefaultRestitution  = 0.3
	DefaultCircleRadius = 20.0
	DefaultBoxSize      = 1.0
	DefaultGravityX     = 0.0
	DefaultGravityY     = -9.81
)
