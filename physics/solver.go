package physics

import (
	"github.com/lixenwraith/xpbd/component"
	"github.com/lixenwraith/xpbd/core"
	"github.com/lixenwraith/xpbd/engine"
	"github.com/lixenwraith/xpbd/parameter"
	"github.com/lixenwraith/xpbd/vmath"
)

// contactRecord links a position-solve contact to the velocity solve of the same substep
// For static contacts a is the dynamic body and the normal points from it toward the static body
type contactRecord struct {
	a, b   core.Entity
	normal vmath.Vec2
}

// SubstepStats counts solver activity in one substep
type SubstepStats struct {
	DynamicContacts int
	StaticContacts  int
	Degenerate      int
	// Peak pre-solve approach speed along a contact normal
	ImpactSpeed float64
}

// Solver runs the XPBD stages in order against a world
// Pairs and contacts are owned by the solver and never exposed to the host
// Stages are sequential Gauss-Seidel passes: each correction sees the ones before it
type Solver struct {
	contacts       []contactRecord
	staticContacts []contactRecord

	stats SubstepStats
}

// NewSolver creates a solver with empty contact buffers
func NewSolver() *Solver {
	return &Solver{
		contacts:       make([]contactRecord, 0, 64),
		staticContacts: make([]contactRecord, 0, 64),
	}
}

// Stats returns counters accumulated since the last ClearContacts
func (s *Solver) Stats() SubstepStats {
	return s.stats
}

// Integrate applies gravity and advances every dynamic body by subDt
// Mass cancels out of force/mass for uniform gravity, so acceleration is applied directly
func (s *Solver) Integrate(w *engine.World, subDt float64, gravity vmath.Vec2) {
	w.Masses.Each(func(e core.Entity, _ *component.MassComponent) {
		kin := w.Kinetics.Ptr(e)
		if kin == nil {
			return
		}
		kin.PrevPos = kin.Pos
		kin.Vel = kin.Vel.Add(gravity.Mul(subDt))
		kin.Pos = kin.Pos.Add(kin.Vel.Mul(subDt))
		kin.PreSolveVel = kin.Vel
	})
}

// ClearContacts empties both contact lists and resets substep counters
func (s *Solver) ClearContacts() {
	s.contacts = s.contacts[:0]
	s.staticContacts = s.staticContacts[:0]
	s.stats = SubstepStats{}
}

// SolvePositions separates overlapping dynamic-dynamic candidates, lighter bodies moving more
func (s *Solver) SolvePositions(w *engine.World, pairs []Pair) {
	for _, p := range pairs {
		massA, okA := w.Masses.Get(p.A)
		massB, okB := w.Masses.Get(p.B)
		if !okA || !okB {
			continue
		}
		kinA, kinB := w.Kinetics.Ptr(p.A), w.Kinetics.Ptr(p.B)
		colA, colB := w.Colliders.Ptr(p.A), w.Colliders.Ptr(p.B)
		if kinA == nil || kinB == nil || colA == nil || colB == nil {
			continue
		}

		c, ok := Collide(kinA.Pos, colA.Shape, kinB.Pos, colB.Shape)
		if !ok {
			continue
		}
		ConstrainPositions(&kinA.Pos, &kinB.Pos, massA.InvMass(), massB.InvMass(), c.Normal, c.Penetration)
		s.contacts = append(s.contacts, contactRecord{a: p.A, b: p.B, normal: c.Normal})
		s.stats.DynamicContacts++
		if c.Degenerate {
			s.stats.Degenerate++
		}
	}
}

// SolveStaticPositions corrects dynamic bodies against static candidates from the broad phase
func (s *Solver) SolveStaticPositions(w *engine.World, pairs []Pair) {
	for _, p := range pairs {
		dyn, stat := p.A, p.B
		switch {
		case w.Masses.Has(p.A) && !w.Masses.Has(p.B):
		case w.Masses.Has(p.B) && !w.Masses.Has(p.A):
			dyn, stat = p.B, p.A
		default:
			continue
		}
		s.solveStatic(w, dyn, stat)
	}
}

// SolveStaticPositionsExhaustive tests every dynamic body against every static body
func (s *Solver) SolveStaticPositionsExhaustive(w *engine.World) {
	dynamics := w.Query().With(w.Masses).With(w.Colliders).Execute()
	statics := w.Query().With(w.Colliders).Without(w.Masses).Execute()

	for _, dyn := range dynamics {
		for _, stat := range statics {
			s.solveStatic(w, dyn, stat)
		}
	}
}

func (s *Solver) solveStatic(w *engine.World, dyn, stat core.Entity) {
	kinA, kinB := w.Kinetics.Ptr(dyn), w.Kinetics.Ptr(stat)
	colA, colB := w.Colliders.Ptr(dyn), w.Colliders.Ptr(stat)
	if kinA == nil || kinB == nil || colA == nil || colB == nil {
		return
	}

	c, ok := Collide(kinA.Pos, colA.Shape, kinB.Pos, colB.Shape)
	if !ok {
		return
	}
	ConstrainPosition(&kinA.Pos, c.Normal, c.Penetration)
	s.staticContacts = append(s.staticContacts, contactRecord{a: dyn, b: stat, normal: c.Normal})
	s.stats.StaticContacts++
	if c.Degenerate {
		s.stats.Degenerate++
	}
}

// UpdateVelocities derives velocity from the corrected position delta
func (s *Solver) UpdateVelocities(w *engine.World, subDt float64) {
	inv := 1 / subDt
	w.Masses.Each(func(e core.Entity, _ *component.MassComponent) {
		kin := w.Kinetics.Ptr(e)
		if kin == nil {
			return
		}
		kin.Vel = kin.Pos.Sub(kin.PrevPos).Mul(inv)
	})
}

// SolveVelocities applies restitution to dynamic-dynamic contacts, split by inverse mass
func (s *Solver) SolveVelocities(w *engine.World) {
	for _, c := range s.contacts {
		massA, okA := w.Masses.Get(c.a)
		massB, okB := w.Masses.Get(c.b)
		kinA, kinB := w.Kinetics.Ptr(c.a), w.Kinetics.Ptr(c.b)
		if !okA || !okB || kinA == nil || kinB == nil {
			continue
		}

		preNormalVel := kinA.PreSolveVel.Sub(kinB.PreSolveVel).Dot(c.normal)
		normalVel := kinA.Vel.Sub(kinB.Vel).Dot(c.normal)
		e := (restitutionOf(w, c.a) + restitutionOf(w, c.b)) / 2

		s.trackImpact(preNormalVel)
		ResolveVelocities(&kinA.Vel, &kinB.Vel, massA.InvMass(), massB.InvMass(), c.normal, normalVel, preNormalVel, e)
	}
}

// SolveStaticVelocities applies restitution to dynamic-static contacts; only the dynamic body changes
func (s *Solver) SolveStaticVelocities(w *engine.World) {
	for _, c := range s.staticContacts {
		kin := w.Kinetics.Ptr(c.a)
		if kin == nil || !w.Masses.Has(c.a) || !w.Alive(c.b) {
			continue
		}

		preNormalVel := kin.PreSolveVel.Dot(c.normal)
		normalVel := kin.Vel.Dot(c.normal)
		e := (restitutionOf(w, c.a) + restitutionOf(w, c.b)) / 2

		s.trackImpact(preNormalVel)
		ResolveVelocity(&kin.Vel, c.normal, normalVel, preNormalVel, e)
	}
}

func (s *Solver) trackImpact(preNormalVel float64) {
	if preNormalVel > s.stats.ImpactSpeed {
		s.stats.ImpactSpeed = preNormalVel
	}
}

// restitutionOf falls back to the default coefficient for bodies assembled without one
func restitutionOf(w *engine.World, e core.Entity) float64 {
	if r, ok := w.Restitutions.Get(e); ok {
		return r.Coefficient
	}
	return parameter.DefaultRestitution
}

// ConstrainPositions applies the symmetric mass-weighted correction
// A moves against the normal and B along it; total separation equals penetration
func ConstrainPositions(posA, posB *vmath.Vec2, invMassA, invMassB float64, normal vmath.Vec2, penetration float64) {
	wSum := invMassA + invMassB
	if wSum == 0 {
		return
	}
	impulse := normal.Mul(-penetration / wSum)
	*posA = posA.Add(impulse.Mul(invMassA))
	*posB = posB.Sub(impulse.Mul(invMassB))
}

// ConstrainPosition moves a body out of an immovable one by the full penetration
func ConstrainPosition(pos *vmath.Vec2, normal vmath.Vec2, penetration float64) {
	*pos = pos.Sub(normal.Mul(penetration))
}

// ResolveVelocities sets the relative normal velocity to -e·preSolveNormalVel, split by inverse mass
func ResolveVelocities(velA, velB *vmath.Vec2, invMassA, invMassB float64, normal vmath.Vec2, normalVel, preSolveNormalVel, restitution float64) {
	wSum := invMassA + invMassB
	if wSum == 0 {
		return
	}
	dv := normal.Mul(-normalVel - restitution*preSolveNormalVel)
	*velA = velA.Add(dv.Mul(invMassA / wSum))
	*velB = velB.Sub(dv.Mul(invMassB / wSum))
}

// ResolveVelocity is ResolveVelocities against a body of infinite mass
func ResolveVelocity(vel *vmath.Vec2, normal vmath.Vec2, normalVel, preSolveNormalVel, restitution float64) {
	*vel = vel.Add(normal.Mul(-normalVel - restitution*preSolveNormalVel))
}
