package vmath

// FastRand is a xorshift64 generator, deterministic for a given seed
// Not safe for concurrent use
type FastRand struct {
	state uint64
}

func NewFastRand(seed uint64) *FastRand {
	if seed == 0 {
		seed = 1
	}
	return &FastRand{state: seed}
}

func (r *FastRand) Next() uint64 {
	x := r.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	r.state = x
	return x
}

// Float64 returns a value in [0, 1) built from the top 53 bits
func (r *FastRand) Float64() float64 {
	return float64(r.Next()>>11) / (1 << 53)
}

// Range returns a value in [lo, hi), or lo when hi <= lo
func (r *FastRand) Range(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + r.Float64()*(hi-lo)
}

// InBox returns a point uniformly distributed inside box
func (r *FastRand) InBox(box AABB) Vec2 {
	return Vec2{
		r.Range(box.Min[0], box.Max[0]),
		r.Range(box.Min[1], box.Max[1]),
	}
}
