package engine

import (
	"math"
	"testing"

	"github.com/pkg/errors"

	"github.com/lixenwraith/xpbd/component"
	"github.com/lixenwraith/xpbd/parameter"
	"github.com/lixenwraith/xpbd/vmath"
)

func TestSpawnParticle(t *testing.T) {
	w := NewWorld()
	pos := vmath.V2(10, 20)
	vel := vmath.V2(60, 0)

	e, err := Spawn(w, NewParticleBundle(pos, vel))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if w.Kind(e) != BodyDynamic {
		t.Errorf("Expected dynamic body, got %v", w.Kind(e))
	}

	kin, ok := w.Kinetics.Get(e)
	if !ok {
		t.Fatal("Expected kinetic component")
	}
	wantPrev := pos.Sub(vel.Mul(parameter.SubDt))
	if !kin.PrevPos.ApproxEqualThreshold(wantPrev, 1e-12) {
		t.Errorf("Expected prev pos %v, got %v", wantPrev, kin.PrevPos)
	}
	if kin.Vel != vel {
		t.Errorf("Expected velocity %v, got %v", vel, kin.Vel)
	}

	m, _ := w.Masses.Get(e)
	if m.Mass() != parameter.DefaultMass {
		t.Errorf("Expected default mass, got %v", m.Mass())
	}
	r, _ := w.Restitutions.Get(e)
	if r.Coefficient != parameter.DefaultRestitution {
		t.Errorf("Expected default restitution, got %v", r.Coefficient)
	}
	c, _ := w.Colliders.Get(e)
	if circle, ok := c.Shape.(component.Circle); !ok || circle.Radius != parameter.DefaultCircleRadius {
		t.Errorf("Expected default circle, got %#v", c.Shape)
	}
	b, _ := w.Bounds.Get(e)
	if !b.Contains(pos) {
		t.Errorf("Expected initial bounds around %v, got %v", pos, b.AABB)
	}
}

func TestSpawnStaticBodies(t *testing.T) {
	w := NewWorld()

	floor, err := Spawn(w, NewStaticBoxBundle(vmath.V2(0, -150), vmath.V2(1000, 20)))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	peg, err := Spawn(w, NewStaticCircleBundle(vmath.V2(0, 0)))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if w.Kind(floor) != BodyStatic || w.Kind(peg) != BodyStatic {
		t.Errorf("Expected static bodies, got %v and %v", w.Kind(floor), w.Kind(peg))
	}
	if w.Masses.Has(floor) || w.Masses.Has(peg) {
		t.Error("Expected static bodies to carry no mass")
	}

	kin, _ := w.Kinetics.Get(floor)
	if kin.Vel != vmath.Zero || kin.PrevPos != kin.Pos {
		t.Errorf("Expected resting static body, got %+v", kin)
	}
}

func TestSpawnDynamicBox(t *testing.T) {
	w := NewWorld()
	b := NewDynamicBoxBundle(vmath.V2(0, 0), vmath.Zero)
	b.Size = vmath.V2(20, 20)
	b.Mass = 3

	e, err := Spawn(w, b)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	m, _ := w.Masses.Get(e)
	if m.Mass() != 3 {
		t.Errorf("Expected mass 3, got %v", m.Mass())
	}
	c, _ := w.Colliders.Get(e)
	if box, ok := c.Shape.(component.Box); !ok || box.Size != vmath.V2(20, 20) {
		t.Errorf("Expected 20x20 box, got %#v", c.Shape)
	}
}

func TestSpawnRejectsInvalid(t *testing.T) {
	zeroMass := NewParticleBundle(vmath.Zero, vmath.Zero)
	zeroMass.Mass = 0

	nanMass := NewParticleBundle(vmath.Zero, vmath.Zero)
	nanMass.Mass = math.NaN()

	badRadius := NewParticleBundle(vmath.Zero, vmath.Zero)
	badRadius.Radius = -1

	badRestitution := NewStaticCircleBundle(vmath.Zero)
	badRestitution.Restitution = 1.5

	flatBox := NewStaticBoxBundle(vmath.Zero, vmath.V2(10, 0))

	badVel := NewDynamicBoxBundle(vmath.Zero, vmath.V2(math.Inf(1), 0))

	tests := []struct {
		name   string
		bundle Bundle
		want   error
	}{
		{"zero mass", zeroMass, component.ErrInvalidMass},
		{"nan mass", nanMass, component.ErrInvalidMass},
		{"negative radius", badRadius, component.ErrInvalidShape},
		{"restitution above one", badRestitution, component.ErrInvalidRestitution},
		{"zero box height", flatBox, component.ErrInvalidShape},
		{"infinite velocity", badVel, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWorld()
			e, err := Spawn(w, tt.bundle)
			if err == nil {
				t.Fatal("Expected error")
			}
			if tt.want != nil && errors.Cause(err) != tt.want {
				t.Errorf("Expected cause %v, got %v", tt.want, err)
			}
			if !e.IsNull() {
				t.Errorf("Expected null entity on failure, got %v", e)
			}
			if w.EntityCount() != 0 {
				t.Errorf("Expected no entity allocated on failure, got %d", w.EntityCount())
			}
		})
	}
}

func TestSpawnSeedsPrevPosFromWorldSubDt(t *testing.T) {
	w := NewWorld()
	if w.SubDt() != parameter.SubDt {
		t.Errorf("Expected default sub dt %v, got %v", parameter.SubDt, w.SubDt())
	}

	w.SetSubDt(0.25)
	e, err := Spawn(w, NewDynamicBoxBundle(vmath.V2(1, 1), vmath.V2(4, -8)))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	kin, _ := w.Kinetics.Get(e)
	if want := vmath.V2(0, 3); kin.PrevPos != want {
		t.Errorf("Expected prev pos %v, got %v", want, kin.PrevPos)
	}
}
