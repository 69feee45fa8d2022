package engine

import (
	"github.com/pkg/errors"

	"github.com/lixenwraith/xpbd/component"
	"github.com/lixenwraith/xpbd/core"
	"github.com/lixenwraith/xpbd/parameter"
	"github.com/lixenwraith/xpbd/vmath"
)

// Bundle is a validated set of components spawned together
type Bundle interface {
	// build validates the bundle and returns a function inserting its components
	build() (func(eb *EntityBuilder), error)
}

// Spawn validates b and, only if valid, creates an entity carrying its components
func Spawn(w *World, b Bundle) (core.Entity, error) {
	insert, err := b.build()
	if err != nil {
		return core.NullEntity, errors.Wrapf(err, "spawn %T", b)
	}
	eb := w.NewEntity()
	insert(eb)
	return eb.Build(), nil
}

// Validate reports whether b would spawn, without touching any world
func Validate(b Bundle) error {
	if _, err := b.build(); err != nil {
		return errors.Wrapf(err, "bundle %T", b)
	}
	return nil
}

// ParticleBundle is a dynamic circle
type ParticleBundle struct {
	Pos         vmath.Vec2
	Vel         vmath.Vec2
	Mass        float64
	Restitution float64
	Radius      float64
}

// NewParticleBundle returns a particle with default mass, restitution, and radius
func NewParticleBundle(pos, vel vmath.Vec2) ParticleBundle {
	return ParticleBundle{
		Pos:         pos,
		Vel:         vel,
		Mass:        parameter.DefaultMass,
		Restitution: parameter.DefaultRestitution,
		Radius:      parameter.DefaultCircleRadius,
	}
}

func (b ParticleBundle) build() (func(*EntityBuilder), error) {
	return dynamicBody(b.Pos, b.Vel, b.Mass, b.Restitution, component.Circle{Radius: b.Radius})
}

// DynamicBoxBundle is a dynamic axis-aligned box
type DynamicBoxBundle struct {
	Pos         vmath.Vec2
	Vel         vmath.Vec2
	Mass        float64
	Restitution float64
	Size        vmath.Vec2
}

// NewDynamicBoxBundle returns a box with default mass, restitution, and unit size
func NewDynamicBoxBundle(pos, vel vmath.Vec2) DynamicBoxBundle {
	return DynamicBoxBundle{
		Pos:         pos,
		Vel:         vel,
		Mass:        parameter.DefaultMass,
		Restitution: parameter.DefaultRestitution,
		Size:        vmath.Splat(parameter.DefaultBoxSize),
	}
}

func (b DynamicBoxBundle) build() (func(*EntityBuilder), error) {
	return dynamicBody(b.Pos, b.Vel, b.Mass, b.Restitution, component.Box{Size: b.Size})
}

// StaticCircleBundle is an immovable circle
type StaticCircleBundle struct {
	Pos         vmath.Vec2
	Restitution float64
	Radius      float64
}

// NewStaticCircleBundle returns a static circle with default restitution and radius
func NewStaticCircleBundle(pos vmath.Vec2) StaticCircleBundle {
	return StaticCircleBundle{
		Pos:         pos,
		Restitution: parameter.DefaultRestitution,
		Radius:      parameter.DefaultCircleRadius,
	}
}

func (b StaticCircleBundle) build() (func(*EntityBuilder), error) {
	return staticBody(b.Pos, b.Restitution, component.Circle{Radius: b.Radius})
}

// StaticBoxBundle is an immovable box
type StaticBoxBundle struct {
	Pos         vmath.Vec2
	Restitution float64
	Size        vmath.Vec2
}

// NewStaticBoxBundle returns a static box with default restitution
func NewStaticBoxBundle(pos, size vmath.Vec2) StaticBoxBundle {
	return StaticBoxBundle{
		Pos:         pos,
		Restitution: parameter.DefaultRestitution,
		Size:        size,
	}
}

func (b StaticBoxBundle) build() (func(*EntityBuilder), error) {
	return staticBody(b.Pos, b.Restitution, component.Box{Size: b.Size})
}

func dynamicBody(pos, vel vmath.Vec2, m, e float64, shape component.Shape) (func(*EntityBuilder), error) {
	mass, err := component.NewMass(m)
	if err != nil {
		return nil, err
	}
	insertStatic, err := staticBody(pos, e, shape)
	if err != nil {
		return nil, err
	}
	if !vmath.IsFinite(vel) {
		return nil, errors.Errorf("non-finite velocity %v", vel)
	}

	return func(eb *EntityBuilder) {
		insertStatic(eb)
		w := eb.world
		With(eb, w.Kinetics, component.KineticComponent{
			Pos:     pos,
			PrevPos: pos.Sub(vel.Mul(w.SubDt())),
			Vel:     vel,
		})
		With(eb, w.Masses, mass)
	}, nil
}

func staticBody(pos vmath.Vec2, e float64, shape component.Shape) (func(*EntityBuilder), error) {
	if !vmath.IsFinite(pos) {
		return nil, errors.Errorf("non-finite position %v", pos)
	}
	if err := component.ValidateShape(shape); err != nil {
		return nil, err
	}
	restitution, err := component.NewRestitution(e)
	if err != nil {
		return nil, err
	}

	return func(eb *EntityBuilder) {
		w := eb.world
		With(eb, w.Kinetics, component.KineticComponent{Pos: pos, PrevPos: pos})
		With(eb, w.Restitutions, restitution)
		With(eb, w.Colliders, component.ColliderComponent{Shape: shape})
		With(eb, w.Bounds, component.BoundsComponent{
			AABB: vmath.AABBFromCenter(pos, shape.HalfExtents()),
		})
	}, nil
}
