package physics

import (
	"github.com/lixenwraith/xpbd/component"
	"github.com/lixenwraith/xpbd/core"
	"github.com/lixenwraith/xpbd/engine"
	"github.com/lixenwraith/xpbd/vmath"
)

// Pair is an unordered broad-phase candidate; A precedes B in bounds store order
type Pair struct {
	A, B core.Entity
}

// UpdateBounds refreshes the swept AABB of every shaped body
// Half extents grow by marginFactor·|velocity| so fast bodies pair up before they tunnel
func UpdateBounds(w *engine.World, marginFactor float64) {
	w.Colliders.Each(func(e core.Entity, c *component.ColliderComponent) {
		kin := w.Kinetics.Ptr(e)
		if kin == nil || c.Shape == nil {
			return
		}
		margin := marginFactor * kin.Vel.Len()
		half := c.Shape.HalfExtents().Add(vmath.Splat(margin))
		w.Bounds.Set(e, component.BoundsComponent{AABB: vmath.AABBFromCenter(kin.Pos, half)})
	})
}

// BroadPhase collects candidate pairs by brute-force AABB overlap over all 2-combinations
// Rebuilt from scratch on every Collect; buffers are reused between calls
type BroadPhase struct {
	pairs    []Pair
	entities []core.Entity
	boxes    []vmath.AABB
	dynamic  []bool
}

// NewBroadPhase creates an empty collector
func NewBroadPhase() *BroadPhase {
	return &BroadPhase{
		pairs: make([]Pair, 0, 256),
	}
}

// Collect returns every overlapping pair with at least one dynamic body
// Static-static pairs are never solved and are not emitted
// The returned slice is owned by the BroadPhase and valid until the next Collect
func (bp *BroadPhase) Collect(w *engine.World) []Pair {
	bp.pairs = bp.pairs[:0]
	bp.entities = bp.entities[:0]
	bp.boxes = bp.boxes[:0]
	bp.dynamic = bp.dynamic[:0]

	w.Bounds.Each(func(e core.Entity, b *component.BoundsComponent) {
		if !w.Colliders.Has(e) {
			return
		}
		bp.entities = append(bp.entities, e)
		bp.boxes = append(bp.boxes, b.AABB)
		bp.dynamic = append(bp.dynamic, w.Masses.Has(e))
	})

	n := len(bp.entities)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if !bp.dynamic[i] && !bp.dynamic[j] {
				continue
			}
			if bp.boxes[i].Intersects(bp.boxes[j]) {
				bp.pairs = append(bp.pairs, Pair{A: bp.entities[i], B: bp.entities[j]})
			}
		}
	}

	return bp.pairs
}

// Pairs returns the result of the last Collect
func (bp *BroadPhase) Pairs() []Pair {
	return bp.pairs
}
