package vmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec2 is the float64 2D vector used by every physics stage
// Aliased so mgl64 methods (Add, Sub, Mul, Dot, Len, Normalize, ApproxEqualThreshold) apply directly
type Vec2 = mgl64.Vec2

// Axis unit vectors
var (
	UnitX = Vec2{1, 0}
	UnitY = Vec2{0, 1}
	Zero  = Vec2{}
)

// V2 builds a vector from components
func V2(x, y float64) Vec2 {
	return Vec2{x, y}
}

// Splat returns a vector with both components set to s
func Splat(s float64) Vec2 {
	return Vec2{s, s}
}

// Abs returns the component-wise absolute value
func Abs(v Vec2) Vec2 {
	return Vec2{math.Abs(v[0]), math.Abs(v[1])}
}

// Signum returns the component-wise sign, +1 for positive zero and -1 for negative zero
// Never returns 0 so it is safe as a normal direction multiplier
func Signum(v Vec2) Vec2 {
	return Vec2{math.Copysign(1, v[0]), math.Copysign(1, v[1])}
}

// MulElem returns the component-wise product
func MulElem(a, b Vec2) Vec2 {
	return Vec2{a[0] * b[0], a[1] * b[1]}
}

// LenSq returns the squared length
func LenSq(v Vec2) float64 {
	return v[0]*v[0] + v[1]*v[1]
}

// IsFinite reports whether neither component is NaN or infinite
func IsFinite(v Vec2) bool {
	return !math.IsNaN(v[0]) && !math.IsNaN(v[1]) && !math.IsInf(v[0], 0) && !math.IsInf(v[1], 0)
}
