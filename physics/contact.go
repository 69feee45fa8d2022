package physics

import (
	"math"

	"github.com/lixenwraith/xpbd/component"
	"github.com/lixenwraith/xpbd/vmath"
)

// Contact describes an overlap between body A and body B
// Normal is unit length and points from A toward B; moving A by -Normal·Penetration separates them
type Contact struct {
	Normal      vmath.Vec2
	Penetration float64

	// Degenerate is set when the separation direction was undefined and a fixed axis was substituted
	Degenerate bool
}

// CircleCircle tests two circles; no contact when the centers are at least rA+rB apart
// Coincident centers resolve along +X with the full combined radius as penetration
func CircleCircle(posA vmath.Vec2, radiusA float64, posB vmath.Vec2, radiusB float64) (Contact, bool) {
	ab := posB.Sub(posA)
	combined := radiusA + radiusB
	distSq := vmath.LenSq(ab)

	if distSq >= combined*combined {
		return Contact{}, false
	}
	if distSq == 0 {
		return Contact{Normal: vmath.UnitX, Penetration: combined, Degenerate: true}, true
	}

	dist := math.Sqrt(distSq)
	return Contact{
		Normal:      ab.Mul(1 / dist),
		Penetration: combined - dist,
	}, true
}

// CircleBox tests a circle (A) against an axis-aligned box (B) of full extent size
func CircleBox(posA vmath.Vec2, radius float64, posB vmath.Vec2, size vmath.Vec2) (Contact, bool) {
	boxToCircle := posA.Sub(posB)
	cornerToCenter := vmath.Abs(boxToCircle).Sub(size.Mul(0.5))

	if cornerToCenter[0] > radius || cornerToCenter[1] > radius {
		return Contact{}, false
	}

	// Normal points back toward the box, opposite the box-to-circle direction
	s := vmath.Signum(boxToCircle)

	switch {
	case cornerToCenter[0] > 0 && cornerToCenter[1] > 0:
		// Corner region: nearest feature is the corner point
		distSq := vmath.LenSq(cornerToCenter)
		if distSq > radius*radius {
			return Contact{}, false
		}
		dist := math.Sqrt(distSq)
		return Contact{
			Normal:      vmath.MulElem(cornerToCenter.Mul(1/dist), s.Mul(-1)),
			Penetration: radius - dist,
		}, true

	case cornerToCenter[0] > cornerToCenter[1]:
		// Closer to a vertical edge
		return Contact{
			Normal:      vmath.UnitX.Mul(-s[0]),
			Penetration: radius - cornerToCenter[0],
		}, true

	default:
		return Contact{
			Normal:      vmath.UnitY.Mul(-s[1]),
			Penetration: radius - cornerToCenter[1],
		}, true
	}
}

// BoxBox tests two axis-aligned boxes and separates along the axis of least overlap
// Touching boxes report a zero-penetration contact; on equal overlap the x axis wins
func BoxBox(posA, sizeA, posB, sizeB vmath.Vec2) (Contact, bool) {
	ab := posB.Sub(posA)
	overlap := sizeA.Add(sizeB).Mul(0.5).Sub(vmath.Abs(ab))

	if overlap[0] < 0 || overlap[1] < 0 {
		return Contact{}, false
	}

	s := vmath.Signum(ab)
	if overlap[0] <= overlap[1] {
		return Contact{Normal: vmath.UnitX.Mul(s[0]), Penetration: overlap[0]}, true
	}
	return Contact{Normal: vmath.UnitY.Mul(s[1]), Penetration: overlap[1]}, true
}

// Collide dispatches on the shape pair; box-circle reuses CircleBox with the normal flipped
func Collide(posA vmath.Vec2, shapeA component.Shape, posB vmath.Vec2, shapeB component.Shape) (Contact, bool) {
	switch a := shapeA.(type) {
	case component.Circle:
		switch b := shapeB.(type) {
		case component.Circle:
			return CircleCircle(posA, a.Radius, posB, b.Radius)
		case component.Box:
			return CircleBox(posA, a.Radius, posB, b.Size)
		}
	case component.Box:
		switch b := shapeB.(type) {
		case component.Circle:
			c, ok := CircleBox(posB, b.Radius, posA, a.Size)
			c.Normal = c.Normal.Mul(-1)
			return c, ok
		case component.Box:
			return BoxBox(posA, a.Size, posB, b.Size)
		}
	}
	return Contact{}, false
}
