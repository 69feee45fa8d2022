package vmath

import (
	"math"
	"testing"
)

func TestSignumNeverZero(t *testing.T) {
	tests := []struct {
		in   Vec2
		want Vec2
	}{
		{V2(3, -2), V2(1, -1)},
		{V2(0, 0), V2(1, 1)},
		{V2(math.Copysign(0, -1), 5), V2(-1, 1)},
	}

	for _, tt := range tests {
		if got := Signum(tt.in); got != tt.want {
			t.Errorf("Signum(%v): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestAbsAndLenSq(t *testing.T) {
	v := V2(-3, 4)
	if got := Abs(v); got != V2(3, 4) {
		t.Errorf("Expected (3,4), got %v", got)
	}
	if got := LenSq(v); got != 25 {
		t.Errorf("Expected 25, got %v", got)
	}
	if got := MulElem(v, V2(2, 0.5)); got != V2(-6, 2) {
		t.Errorf("Expected (-6,2), got %v", got)
	}
}

func TestIsFinite(t *testing.T) {
	if !IsFinite(V2(1, -1)) {
		t.Error("Expected finite vector")
	}
	if IsFinite(V2(math.NaN(), 0)) {
		t.Error("NaN component should not be finite")
	}
	if IsFinite(V2(0, math.Inf(-1))) {
		t.Error("Inf component should not be finite")
	}
}

func TestAABBIntersects(t *testing.T) {
	a := AABBFromCenter(Zero, Splat(1))

	tests := []struct {
		name   string
		center Vec2
		want   bool
	}{
		{"overlapping", V2(1.5, 0), true},
		{"touching edge", V2(2, 0), true},
		{"separated x", V2(2.01, 0), false},
		{"separated -y", V2(0, -2.01), false},
		{"corner overlap", V2(1.9, 1.9), true},
	}

	for _, tt := range tests {
		b := AABBFromCenter(tt.center, Splat(1))
		if got := a.Intersects(b); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
		if got := b.Intersects(a); got != tt.want {
			t.Errorf("%s (swapped): expected %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestAABBGeometry(t *testing.T) {
	box := AABB{Min: V2(-2, 0), Max: V2(4, 2)}
	if c := box.Center(); c != V2(1, 1) {
		t.Errorf("Expected center (1,1), got %v", c)
	}
	if s := box.Size(); s != V2(6, 2) {
		t.Errorf("Expected size (6,2), got %v", s)
	}
	if !box.Contains(V2(4, 2)) {
		t.Error("Border point should be contained")
	}
	if box.Contains(V2(4.1, 1)) {
		t.Error("Outside point should not be contained")
	}
}

func TestFastRandDeterministic(t *testing.T) {
	a := NewFastRand(42)
	b := NewFastRand(42)
	for i := 0; i < 100; i++ {
		if a.Next() != b.Next() {
			t.Fatalf("Sequences diverged at %d", i)
		}
	}

	r := NewFastRand(0)
	box := AABB{Min: V2(-10, 5), Max: V2(10, 6)}
	for i := 0; i < 1000; i++ {
		f := r.Float64()
		if f < 0 || f >= 1 {
			t.Fatalf("Float64 out of range: %v", f)
		}
		p := r.InBox(box)
		if !box.Contains(p) {
			t.Fatalf("InBox produced %v outside %v", p, box)
		}
	}

	if got := r.Range(3, 3); got != 3 {
		t.Errorf("Expected degenerate range to return lo, got %v", got)
	}
}
