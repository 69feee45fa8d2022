package component

import (
	"math"

	"github.com/pkg/errors"

	"github.com/lixenwraith/xpbd/vmath"
)

// ErrInvalidShape is returned for non-positive or non-finite collider dimensions
var ErrInvalidShape = errors.New("invalid collider shape")

// Shape is the closed set of collider geometries: Circle or Box
// Contact generation dispatches on the concrete type with a type switch
type Shape interface {
	// HalfExtents returns the half size of the shape's axis-aligned bounds
	HalfExtents() vmath.Vec2
	isShape()
}

// Circle collider centered on the body position
type Circle struct {
	Radius float64
}

func (c Circle) HalfExtents() vmath.Vec2 { return vmath.Splat(c.Radius) }
func (Circle) isShape()                  {}

// Box collider, axis-aligned, Size is the full extent
type Box struct {
	Size vmath.Vec2
}

func (b Box) HalfExtents() vmath.Vec2 { return b.Size.Mul(0.5) }
func (Box) isShape()                  {}

// ValidateShape rejects nil, non-positive, and non-finite dimensions
func ValidateShape(s Shape) error {
	switch sh := s.(type) {
	case Circle:
		if !(sh.Radius > 0) || math.IsInf(sh.Radius, 0) {
			return errors.Wrapf(ErrInvalidShape, "circle radius %v", sh.Radius)
		}
	case Box:
		if !(sh.Size[0] > 0) || !(sh.Size[1] > 0) || !vmath.IsFinite(sh.Size) {
			return errors.Wrapf(ErrInvalidShape, "box size %v", sh.Size)
		}
	case nil:
		return errors.Wrap(ErrInvalidShape, "nil shape")
	default:
		return errors.Wrapf(ErrInvalidShape, "unsupported shape %T", s)
	}
	return nil
}
