package scene

import (
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/lixenwraith/xpbd/core"
	"github.com/lixenwraith/xpbd/engine"
	"github.com/lixenwraith/xpbd/vmath"
)

// Emitter periodically spawns randomized dynamic bodies and removes those that leave its cull box
// Randomness comes from a seeded generator so runs are reproducible
type Emitter struct {
	template  bodySpec
	interval  time.Duration
	area      vmath.AABB
	vel       vmath.AABB // velocity range, Min..Max per axis
	cull      vmath.AABB
	hasCull   bool
	maxBodies int
	seed      uint64

	rng         *vmath.FastRand
	accumulator time.Duration
	live        []core.Entity

	spawned uint64
	culled  uint64
}

func (es emitterSpec) emitter() (*Emitter, error) {
	if es.Kind != KindParticle && es.Kind != KindDynamicBox {
		return nil, errors.Wrapf(ErrUnknownBodyKind, "emitter kind %q", es.Kind)
	}
	// Upper bound also rejects +Inf; the converted duration must stay positive
	if !(es.Interval > 0) || es.Interval*float64(time.Second) >= math.MaxInt64 {
		return nil, errors.Wrapf(ErrInvalidScene, "interval %v", es.Interval)
	}
	interval := time.Duration(es.Interval * float64(time.Second))
	if interval <= 0 {
		return nil, errors.Wrapf(ErrInvalidScene, "interval %v below clock resolution", es.Interval)
	}
	if es.MaxBodies < 0 {
		return nil, errors.Wrapf(ErrInvalidScene, "max_bodies %d", es.MaxBodies)
	}

	em := &Emitter{
		template:  es.bodySpec,
		interval:  interval,
		maxBodies: es.MaxBodies,
		seed:      es.Seed,
	}

	var err error
	if em.area.Min, err = vec(es.AreaMin, vmath.Zero, "area_min"); err != nil {
		return nil, err
	}
	if em.area.Max, err = vec(es.AreaMax, em.area.Min, "area_max"); err != nil {
		return nil, err
	}
	if em.vel.Min, err = vec(es.VelMin, vmath.Zero, "vel_min"); err != nil {
		return nil, err
	}
	if em.vel.Max, err = vec(es.VelMax, em.vel.Min, "vel_max"); err != nil {
		return nil, err
	}
	if es.CullMin != nil || es.CullMax != nil {
		if em.cull.Min, err = vec(es.CullMin, vmath.Zero, "cull_min"); err != nil {
			return nil, err
		}
		if em.cull.Max, err = vec(es.CullMax, vmath.Zero, "cull_max"); err != nil {
			return nil, err
		}
		em.hasCull = true
	}

	// Template must spawn; pos/vel are replaced per emission
	sample, err := em.template.bundle(em.area.Min, em.vel.Min)
	if err == nil {
		err = engine.Validate(sample)
	}
	if err != nil {
		return nil, errors.Wrap(err, "template")
	}

	em.Reset()
	return em, nil
}

// Reset reseeds the generator and forgets tracked bodies and pending time
func (e *Emitter) Reset() {
	e.rng = vmath.NewFastRand(e.seed)
	e.accumulator = 0
	e.live = e.live[:0]
	e.spawned = 0
	e.culled = 0
}

// Interval returns the time between emissions
func (e *Emitter) Interval() time.Duration {
	return e.interval
}

// Update advances the emission clock by dt and spawns one body per elapsed interval
// Emissions are skipped, not deferred, while MaxBodies are alive
func (e *Emitter) Update(w *engine.World, dt time.Duration) (int, error) {
	if dt <= 0 {
		return 0, nil
	}
	e.accumulator += dt

	n := 0
	var spawnErr error
	w.RunSafe(func() {
		e.prune(w)
		for e.accumulator >= e.interval {
			e.accumulator -= e.interval
			if e.maxBodies > 0 && len(e.live) >= e.maxBodies {
				continue
			}
			pos := e.rng.InBox(e.area)
			vel := e.rng.InBox(e.vel)
			b, err := e.template.bundle(vmath.Zero, vmath.Zero)
			if err != nil {
				spawnErr = err
				return
			}
			b = place(b, pos, vel)
			ent, err := engine.Spawn(w, b)
			if err != nil {
				spawnErr = err
				return
			}
			e.live = append(e.live, ent)
			e.spawned++
			n++
		}
	})
	return n, spawnErr
}

// Cull destroys emitted bodies whose position has left the cull box
func (e *Emitter) Cull(w *engine.World) int {
	if !e.hasCull {
		return 0
	}
	n := 0
	w.RunSafe(func() {
		kept := e.live[:0]
		for _, ent := range e.live {
			kin, ok := w.Kinetics.Get(ent)
			if !ok {
				continue
			}
			if !e.cull.Contains(kin.Pos) {
				w.DestroyEntity(ent)
				n++
				continue
			}
			kept = append(kept, ent)
		}
		e.live = kept
	})
	e.culled += uint64(n)
	return n
}

// prune drops handles of bodies destroyed by someone else
func (e *Emitter) prune(w *engine.World) {
	kept := e.live[:0]
	for _, ent := range e.live {
		if w.Alive(ent) {
			kept = append(kept, ent)
		}
	}
	e.live = kept
}

// Live returns the number of emitted bodies still tracked
func (e *Emitter) Live() int {
	return len(e.live)
}

// Spawned returns the number of bodies emitted since the last Reset
func (e *Emitter) Spawned() uint64 {
	return e.spawned
}

// Culled returns the number of bodies removed by Cull since the last Reset
func (e *Emitter) Culled() uint64 {
	return e.culled
}

// place overrides position and velocity of a dynamic bundle
func place(b engine.Bundle, pos, vel vmath.Vec2) engine.Bundle {
	switch v := b.(type) {
	case engine.ParticleBundle:
		v.Pos, v.Vel = pos, vel
		return v
	case engine.DynamicBoxBundle:
		v.Pos, v.Vel = pos, vel
		return v
	}
	return b
}
