package vmath

// AABB is an axis-aligned bounding box in world units
type AABB struct {
	Min, Max Vec2
}

// AABBFromCenter builds a box centered at c with the given half extents
func AABBFromCenter(c, halfExtents Vec2) AABB {
	return AABB{
		Min: c.Sub(halfExtents),
		Max: c.Add(halfExtents),
	}
}

// Intersects reports overlap on both axes, touching edges count as overlap
func (a AABB) Intersects(b AABB) bool {
	return a.Max[0] >= b.Min[0] &&
		a.Max[1] >= b.Min[1] &&
		b.Max[0] >= a.Min[0] &&
		b.Max[1] >= a.Min[1]
}

// Contains reports whether p lies inside or on the border of the box
func (a AABB) Contains(p Vec2) bool {
	return p[0] >= a.Min[0] && p[0] <= a.Max[0] && p[1] >= a.Min[1] && p[1] <= a.Max[1]
}

// Center returns the midpoint of the box
func (a AABB) Center() Vec2 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// Size returns the full extent of the box
func (a AABB) Size() Vec2 {
	return a.Max.Sub(a.Min)
}
