package component

import (
	"math"

	"github.com/pkg/errors"

	"github.com/lixenwraith/xpbd/vmath"
)

var (
	// ErrInvalidMass is returned for zero, negative, or non-finite masses
	ErrInvalidMass = errors.New("invalid mass")
	// ErrInvalidRestitution is returned for coefficients outside [0,1]
	ErrInvalidRestitution = errors.New("invalid restitution")
)

// KineticComponent holds the integrated state of a body
// PrevPos is overwritten at the start of every integrate stage
// PreSolveVel is the snapshot taken after integration and before position correction
type KineticComponent struct {
	Pos         vmath.Vec2
	PrevPos     vmath.Vec2
	Vel         vmath.Vec2
	PreSolveVel vmath.Vec2
}

// MassComponent marks a body as dynamic; its absence marks the body static
// Only constructible with a finite positive mass through NewMass
type MassComponent struct {
	mass    float64
	invMass float64
}

// NewMass validates m and precomputes the inverse
func NewMass(m float64) (MassComponent, error) {
	if !(m > 0) || math.IsInf(m, 0) {
		return MassComponent{}, errors.Wrapf(ErrInvalidMass, "mass %v", m)
	}
	return MassComponent{mass: m, invMass: 1 / m}, nil
}

// Mass returns the mass in kilograms
func (m MassComponent) Mass() float64 { return m.mass }

// InvMass returns 1/mass
func (m MassComponent) InvMass() float64 { return m.invMass }

// RestitutionComponent is the bounce coefficient in [0,1]
type RestitutionComponent struct {
	Coefficient float64
}

// NewRestitution validates the coefficient range
func NewRestitution(e float64) (RestitutionComponent, error) {
	if !(e >= 0 && e <= 1) {
		return RestitutionComponent{}, errors.Wrapf(ErrInvalidRestitution, "restitution %v", e)
	}
	return RestitutionComponent{Coefficient: e}, nil
}

// ColliderComponent attaches a shape; bodies without one are invisible to both phases
type ColliderComponent struct {
	Shape Shape
}

// BoundsComponent is the swept AABB refreshed by the broad phase
type BoundsComponent struct {
	vmath.AABB
}
