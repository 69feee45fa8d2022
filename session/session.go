// Package session ties a scene, world and simulation together for host programs
package session

import (
	"log"
	"time"

	"github.com/pkg/errors"

	"github.com/lixenwraith/xpbd/engine"
	"github.com/lixenwraith/xpbd/physics"
	"github.com/lixenwraith/xpbd/scene"
	"github.com/lixenwraith/xpbd/status"
	"github.com/lixenwraith/xpbd/vmath"
)

// Metric keys for emitter activity
const (
	MetricEmitterLive    = "scene.live"
	MetricEmitterSpawned = "scene.spawned"
	MetricEmitterCulled  = "scene.culled"
)

// Session owns one loaded scene; Reload rebuilds everything from the same source
// Not safe for concurrent use; hosts drive it from their frame loop
type Session struct {
	source string

	Scene    *scene.Scene
	World    *engine.World
	Sim      *physics.Simulation
	Registry *status.Registry

	gravityOn bool
}

// Open loads a built-in scene name or TOML path
func Open(source string) (*Session, error) {
	s := &Session{source: source}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the scene and replaces world, registry and simulation
// On failure the previous state is kept
func (s *Session) Reload() error {
	sc, err := scene.Open(s.source)
	if err != nil {
		return errors.Wrap(err, "open scene")
	}

	w := engine.NewWorld()
	reg := status.NewRegistry()
	sim, err := physics.NewSimulation(w, sc.Config, reg)
	if err != nil {
		return errors.Wrap(err, "create simulation")
	}
	if _, err := sc.Spawn(w); err != nil {
		return errors.Wrap(err, "spawn scene")
	}

	s.Scene, s.World, s.Sim, s.Registry = sc, w, sim, reg
	s.gravityOn = true
	s.publishEmitter()
	return nil
}

// Name returns the loaded scene name
func (s *Session) Name() string {
	return s.Scene.Name
}

// Frame runs the emitter for dt of wall time then advances the simulation
// Emission and culling pause with the simulation; single steps do not emit
func (s *Session) Frame(dt time.Duration, sink physics.TransformSink) int {
	if em := s.Scene.Emitter; em != nil && !s.Sim.IsPaused() {
		if _, err := em.Update(s.World, dt); err != nil {
			log.Printf("emitter: %v", err)
		}
		em.Cull(s.World)
		s.publishEmitter()
	}
	return s.Sim.Advance(dt, sink)
}

func (s *Session) publishEmitter() {
	em := s.Scene.Emitter
	if em == nil {
		return
	}
	s.Registry.Ints.Get(MetricEmitterLive).Store(int64(em.Live()))
	s.Registry.Ints.Get(MetricEmitterSpawned).Store(int64(em.Spawned()))
	s.Registry.Ints.Get(MetricEmitterCulled).Store(int64(em.Culled()))
}

// ToggleGravity switches between the scene gravity and none, returning whether gravity is on
func (s *Session) ToggleGravity() bool {
	s.gravityOn = !s.gravityOn
	g := vmath.Zero
	if s.gravityOn {
		g = s.Scene.Config.Gravity
	}
	// Scene gravity was validated at load
	_ = s.Sim.SetGravity(g)
	return s.gravityOn
}

// GravityOn reports whether scene gravity is applied
func (s *Session) GravityOn() bool {
	return s.gravityOn
}
