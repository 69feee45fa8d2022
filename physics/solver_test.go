package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/xpbd/core"
	"github.com/lixenwraith/xpbd/engine"
	"github.com/lixenwraith/xpbd/vmath"
)

func mustSpawn(t *testing.T, w *engine.World, b engine.Bundle) core.Entity {
	t.Helper()
	e, err := engine.Spawn(w, b)
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	return e
}

func particle(pos, vel vmath.Vec2, mass, radius, restitution float64) engine.ParticleBundle {
	b := engine.NewParticleBundle(pos, vel)
	b.Mass = mass
	b.Radius = radius
	b.Restitution = restitution
	return b
}

func TestConstrainPositionsMassWeighted(t *testing.T) {
	posA := vmath.V2(0, 0)
	posB := vmath.V2(1, 0)
	n := vmath.UnitX
	p := 3.0

	ConstrainPositions(&posA, &posB, 1.0/10, 1.0/2, n, p)

	wantA := -p * (1.0 / 10) / (1.0/10 + 1.0/2)
	wantB := 1 + p*(1.0/2)/(1.0/10+1.0/2)
	if !mgl64.FloatEqualThreshold(posA[0], wantA, eps) {
		t.Errorf("Expected heavy body at %v, got %v", wantA, posA[0])
	}
	if !mgl64.FloatEqualThreshold(posB[0], wantB, eps) {
		t.Errorf("Expected light body at %v, got %v", wantB, posB[0])
	}
	if sep := posB[0] - posA[0]; !mgl64.FloatEqualThreshold(sep, 1+p, eps) {
		t.Errorf("Expected total separation increase %v, got %v", p, sep-1)
	}
	if posA[1] != 0 || posB[1] != 0 {
		t.Errorf("Expected no tangential motion, got %v and %v", posA, posB)
	}
}

func TestConstrainPositionsZeroWeight(t *testing.T) {
	posA, posB := vmath.V2(1, 1), vmath.V2(2, 2)
	ConstrainPositions(&posA, &posB, 0, 0, vmath.UnitX, 1)
	if posA != vmath.V2(1, 1) || posB != vmath.V2(2, 2) {
		t.Errorf("Expected no correction between immovable bodies, got %v %v", posA, posB)
	}
}

func TestIntegrateZeroGravityNoop(t *testing.T) {
	w := engine.NewWorld()
	e := mustSpawn(t, w, particle(vmath.V2(3, 4), vmath.Zero, 1, 1, 0.5))
	s := NewSolver()

	before, _ := w.Kinetics.Get(e)
	s.Integrate(w, 0.01, vmath.Zero)
	s.UpdateVelocities(w, 0.01)
	after, _ := w.Kinetics.Get(e)

	if after.Pos != before.Pos {
		t.Errorf("Expected position unchanged, got %v -> %v", before.Pos, after.Pos)
	}
	if after.Vel != vmath.Zero {
		t.Errorf("Expected zero velocity, got %v", after.Vel)
	}
}

func TestIntegrateGravity(t *testing.T) {
	w := engine.NewWorld()
	e := mustSpawn(t, w, particle(vmath.V2(0, 0), vmath.V2(1, 0), 5, 1, 0.5))
	static := mustSpawn(t, w, engine.NewStaticCircleBundle(vmath.V2(100, 100)))
	s := NewSolver()

	g := vmath.V2(0, -10)
	s.Integrate(w, 0.1, g)

	kin, _ := w.Kinetics.Get(e)
	wantVel := vmath.V2(1, -1)
	wantPos := vmath.V2(0.1, -0.1)
	if !kin.Vel.ApproxEqualThreshold(wantVel, eps) {
		t.Errorf("Expected velocity %v, got %v", wantVel, kin.Vel)
	}
	if !kin.Pos.ApproxEqualThreshold(wantPos, eps) {
		t.Errorf("Expected position %v, got %v", wantPos, kin.Pos)
	}
	if kin.PrevPos != vmath.Zero {
		t.Errorf("Expected previous position at origin, got %v", kin.PrevPos)
	}
	if kin.PreSolveVel != kin.Vel {
		t.Errorf("Expected pre-solve snapshot %v, got %v", kin.Vel, kin.PreSolveVel)
	}

	// Mass does not change gravitational acceleration; static bodies never integrate
	sk, _ := w.Kinetics.Get(static)
	if sk.Pos != vmath.V2(100, 100) {
		t.Errorf("Expected static body untouched, got %v", sk.Pos)
	}
}

// runContactSubstep executes one zero-gravity substep with exhaustive static pairing
func runContactSubstep(w *engine.World, s *Solver, subDt float64) {
	UpdateBounds(w, 0)
	pairs := NewBroadPhase().Collect(w)
	s.Integrate(w, subDt, vmath.Zero)
	s.ClearContacts()
	s.SolvePositions(w, pairs)
	s.SolveStaticPositionsExhaustive(w)
	s.UpdateVelocities(w, subDt)
	s.SolveVelocities(w)
	s.SolveStaticVelocities(w)
}

func TestRestitutionBounds(t *testing.T) {
	tests := []struct {
		name        string
		restitution float64
	}{
		{"inelastic", 0},
		{"half", 0.5},
		{"elastic", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := engine.NewWorld()
			a := mustSpawn(t, w, particle(vmath.V2(0, 0), vmath.V2(10, 0), 1, 10, tt.restitution))
			b := mustSpawn(t, w, particle(vmath.V2(15, 0), vmath.V2(-10, 0), 3, 10, tt.restitution))
			s := NewSolver()

			runContactSubstep(w, s, 0.01)

			if got := s.Stats().DynamicContacts; got != 1 {
				t.Fatalf("Expected 1 dynamic contact, got %d", got)
			}

			ka, _ := w.Kinetics.Get(a)
			kb, _ := w.Kinetics.Get(b)
			n := vmath.UnitX
			pre := ka.PreSolveVel.Sub(kb.PreSolveVel).Dot(n)
			post := ka.Vel.Sub(kb.Vel).Dot(n)

			if !mgl64.FloatEqualThreshold(pre, 20, 1e-9) {
				t.Errorf("Expected pre-solve approach speed 20, got %v", pre)
			}
			want := -tt.restitution * pre
			if !near(post, want, 1e-6) {
				t.Errorf("Expected post relative normal velocity %v, got %v", want, post)
			}
			if got := s.Stats().ImpactSpeed; !mgl64.FloatEqualThreshold(got, 20, 1e-9) {
				t.Errorf("Expected impact speed 20, got %v", got)
			}
		})
	}
}

func TestStaticImmovability(t *testing.T) {
	w := engine.NewWorld()
	floorPos := vmath.V2(0, -150)
	floor := mustSpawn(t, w, engine.NewStaticBoxBundle(floorPos, vmath.V2(1000, 20)))
	ball := mustSpawn(t, w, particle(vmath.V2(0, -135), vmath.V2(0, -50), 1, 10, 0))
	s := NewSolver()

	runContactSubstep(w, s, 0.01)

	if got := s.Stats().StaticContacts; got != 1 {
		t.Fatalf("Expected 1 static contact, got %d", got)
	}

	fk, _ := w.Kinetics.Get(floor)
	if fk.Pos != floorPos {
		t.Errorf("Expected static body at %v, got %v", floorPos, fk.Pos)
	}

	// Integrated to y=-135.5, fully pushed out to rest on the top face at -140+10
	bk, _ := w.Kinetics.Get(ball)
	if !mgl64.FloatEqualThreshold(bk.Pos[1], -130, 1e-9) {
		t.Errorf("Expected ball resting at y=-130, got %v", bk.Pos[1])
	}
	// Blended restitution (0 + 0.3)/2 bounces the ball upward
	if bk.Vel[1] <= 0 {
		t.Errorf("Expected upward velocity after static bounce, got %v", bk.Vel)
	}
}

func TestStaticContactsThroughBroadPhase(t *testing.T) {
	w := engine.NewWorld()
	mustSpawn(t, w, engine.NewStaticCircleBundle(vmath.V2(0, 0)))
	ball := mustSpawn(t, w, particle(vmath.V2(0, 35), vmath.Zero, 1, 20, 0))
	s := NewSolver()

	UpdateBounds(w, 0)
	pairs := NewBroadPhase().Collect(w)
	if len(pairs) != 1 {
		t.Fatalf("Expected 1 candidate pair, got %d", len(pairs))
	}
	s.ClearContacts()
	s.SolveStaticPositions(w, pairs)

	bk, _ := w.Kinetics.Get(ball)
	if !bk.Pos.ApproxEqualThreshold(vmath.V2(0, 40), 1e-9) {
		t.Errorf("Expected ball pushed to (0, 40), got %v", bk.Pos)
	}
	if s.Stats().StaticContacts != 1 {
		t.Errorf("Expected 1 static contact, got %d", s.Stats().StaticContacts)
	}
}

func TestStaleReferencesSkipped(t *testing.T) {
	w := engine.NewWorld()
	a := mustSpawn(t, w, particle(vmath.V2(0, 0), vmath.V2(10, 0), 1, 10, 0.5))
	b := mustSpawn(t, w, particle(vmath.V2(15, 0), vmath.V2(-10, 0), 1, 10, 0.5))
	s := NewSolver()

	UpdateBounds(w, 0)
	pairs := NewBroadPhase().Collect(w)
	if len(pairs) != 1 {
		t.Fatalf("Expected 1 pair, got %d", len(pairs))
	}

	// Despawn after pair collection, then recycle the slot with a fresh body
	w.DestroyEntity(b)
	c := mustSpawn(t, w, particle(vmath.V2(15, 0), vmath.Zero, 1, 10, 0.5))
	if c.Index() != b.Index() {
		t.Fatalf("Expected slot reuse, got %v and %v", c, b)
	}

	s.Integrate(w, 0.01, vmath.Zero)
	s.ClearContacts()
	s.SolvePositions(w, pairs)
	s.SolveStaticPositions(w, pairs)
	s.UpdateVelocities(w, 0.01)
	s.SolveVelocities(w)
	s.SolveStaticVelocities(w)

	if s.Stats().DynamicContacts != 0 || s.Stats().StaticContacts != 0 {
		t.Errorf("Expected stale pair to be skipped, got %+v", s.Stats())
	}
	ka, _ := w.Kinetics.Get(a)
	if !ka.Vel.ApproxEqualThreshold(vmath.V2(10, 0), 1e-9) {
		t.Errorf("Expected untouched velocity, got %v", ka.Vel)
	}

	// Contacts recorded before a despawn are skipped in the velocity pass
	UpdateBounds(w, 0)
	pairs = NewBroadPhase().Collect(w)
	s.Integrate(w, 0.01, vmath.Zero)
	s.ClearContacts()
	s.SolvePositions(w, pairs)
	s.UpdateVelocities(w, 0.01)
	w.DestroyEntity(c)
	s.SolveVelocities(w)
}

func TestDegenerateContactCounted(t *testing.T) {
	w := engine.NewWorld()
	a := mustSpawn(t, w, particle(vmath.V2(5, 5), vmath.Zero, 1, 1, 0))
	b := mustSpawn(t, w, particle(vmath.V2(5, 5), vmath.Zero, 1, 1, 0))
	s := NewSolver()

	runContactSubstep(w, s, 0.01)

	if s.Stats().Degenerate != 1 {
		t.Errorf("Expected 1 degenerate contact, got %d", s.Stats().Degenerate)
	}
	ka, _ := w.Kinetics.Get(a)
	kb, _ := w.Kinetics.Get(b)
	if !ka.Pos.ApproxEqualThreshold(vmath.V2(4, 5), 1e-9) || !kb.Pos.ApproxEqualThreshold(vmath.V2(6, 5), 1e-9) {
		t.Errorf("Expected bodies split along x, got %v and %v", ka.Pos, kb.Pos)
	}
}

func TestResolveVelocity(t *testing.T) {
	vel := vmath.V2(3, -4)
	n := vmath.V2(0, -1)
	pre := vel.Dot(n)

	ResolveVelocity(&vel, n, vel.Dot(n), pre, 1)
	if !vel.ApproxEqualThreshold(vmath.V2(3, 4), eps) {
		t.Errorf("Expected elastic reflection (3, 4), got %v", vel)
	}
}

func TestSolveStaticPositionsExhaustive(t *testing.T) {
	w := engine.NewWorld()
	onFloor := mustSpawn(t, w, particle(vmath.V2(0, 15), vmath.Zero, 1, 10, 0.3))
	mustSpawn(t, w, engine.NewStaticBoxBundle(vmath.Zero, vmath.V2(100, 20)))

	post := engine.NewStaticCircleBundle(vmath.V2(215, 0))
	post.Radius = 10
	mustSpawn(t, w, post)
	onPost := mustSpawn(t, w, particle(vmath.V2(200, 0), vmath.Zero, 1, 10, 0.3))

	// Overlapping dynamics are not static candidates
	left := mustSpawn(t, w, particle(vmath.V2(-200, 100), vmath.Zero, 1, 10, 0.3))
	right := mustSpawn(t, w, particle(vmath.V2(-185, 100), vmath.Zero, 1, 10, 0.3))

	s := NewSolver()
	s.ClearContacts()
	s.SolveStaticPositionsExhaustive(w)

	if got := s.Stats().StaticContacts; got != 2 {
		t.Fatalf("Expected 2 static contacts without broad-phase pairs, got %d", got)
	}
	if kin, _ := w.Kinetics.Get(onFloor); !kin.Pos.ApproxEqualThreshold(vmath.V2(0, 20), eps) {
		t.Errorf("Expected body pushed onto floor at (0,20), got %v", kin.Pos)
	}
	if kin, _ := w.Kinetics.Get(onPost); !kin.Pos.ApproxEqualThreshold(vmath.V2(195, 0), eps) {
		t.Errorf("Expected body pushed off post to (195,0), got %v", kin.Pos)
	}
	if kin, _ := w.Kinetics.Get(left); kin.Pos != vmath.V2(-200, 100) {
		t.Errorf("Expected dynamic pair untouched, got %v", kin.Pos)
	}
	if kin, _ := w.Kinetics.Get(right); kin.Pos != vmath.V2(-185, 100) {
		t.Errorf("Expected dynamic pair untouched, got %v", kin.Pos)
	}
}
