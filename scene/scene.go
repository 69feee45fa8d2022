// Package scene loads body layouts from TOML and spawns them into a world
package scene

import (
	"log"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/lixenwraith/xpbd/core"
	"github.com/lixenwraith/xpbd/engine"
	"github.com/lixenwraith/xpbd/parameter"
	"github.com/lixenwraith/xpbd/physics"
	"github.com/lixenwraith/xpbd/vmath"
)

var (
	ErrUnknownBodyKind = errors.New("unknown body kind")
	ErrInvalidScene    = errors.New("invalid scene")
)

// Body kinds accepted in [[body]], [[grid]] and [emitter] tables
const (
	KindParticle     = "particle"
	KindDynamicBox   = "dynamic_box"
	KindStaticCircle = "static_circle"
	KindStaticBox    = "static_box"
)

// defaultView is shown when a scene declares none
var defaultView = vmath.AABB{Min: vmath.V2(-500, -300), Max: vmath.V2(500, 300)}

// Scene is a parsed, validated scene ready to spawn
type Scene struct {
	Name    string
	View    vmath.AABB
	Config  physics.Config
	Bodies  []engine.Bundle
	Emitter *Emitter
}

// file mirrors the TOML layout; optional numbers are pointers so defaults can apply
type file struct {
	Name       string         `toml:"name"`
	View       *viewSpec      `toml:"view"`
	Simulation simulationSpec `toml:"simulation"`
	Bodies     []bodySpec     `toml:"body"`
	Grids      []gridSpec     `toml:"grid"`
	Emitter    *emitterSpec   `toml:"emitter"`
}

type viewSpec struct {
	Min []float64 `toml:"min"`
	Max []float64 `toml:"max"`
}

type simulationSpec struct {
	StepHz        *float64              `toml:"step_hz"`
	Substeps      *int                  `toml:"substeps"`
	MarginK       *float64              `toml:"margin_k"`
	Gravity       []float64             `toml:"gravity"`
	MaxCatchUp    *int                  `toml:"max_catch_up"`
	PairRefresh   *physics.PairRefresh  `toml:"pair_refresh"`
	StaticPairing *physics.StaticPairing `toml:"static_pairing"`
}

type bodySpec struct {
	Kind        string    `toml:"kind"`
	Pos         []float64 `toml:"pos"`
	Vel         []float64 `toml:"vel"`
	Mass        *float64  `toml:"mass"`
	Restitution *float64  `toml:"restitution"`
	Radius      *float64  `toml:"radius"`
	Size        []float64 `toml:"size"`
}

// gridSpec places rows×columns copies of a body template
type gridSpec struct {
	bodySpec
	Rows    int       `toml:"rows"`
	Columns int       `toml:"columns"`
	Origin  []float64 `toml:"origin"`
	Spacing []float64 `toml:"spacing"`
}

type emitterSpec struct {
	bodySpec
	Interval  float64   `toml:"interval"` // seconds
	AreaMin   []float64 `toml:"area_min"`
	AreaMax   []float64 `toml:"area_max"`
	VelMin    []float64 `toml:"vel_min"`
	VelMax    []float64 `toml:"vel_max"`
	CullMin   []float64 `toml:"cull_min"`
	CullMax   []float64 `toml:"cull_max"`
	MaxBodies int       `toml:"max_bodies"`
	Seed      uint64    `toml:"seed"`
}

// Load reads and parses a scene file
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read scene %s", path)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "scene %s", path)
	}
	return s, nil
}

// Parse decodes TOML scene data and validates every body
func Parse(data []byte) (*Scene, error) {
	var f file
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, errors.Wrap(err, "decode scene")
	}

	s := &Scene{Name: f.Name, View: defaultView}

	if f.View != nil {
		minV, err := vec(f.View.Min, vmath.Zero, "view.min")
		if err != nil {
			return nil, err
		}
		maxV, err := vec(f.View.Max, vmath.Zero, "view.max")
		if err != nil {
			return nil, err
		}
		if maxV[0] <= minV[0] || maxV[1] <= minV[1] {
			return nil, errors.Wrapf(ErrInvalidScene, "empty view %v..%v", minV, maxV)
		}
		s.View = vmath.AABB{Min: minV, Max: maxV}
	}

	cfg, err := f.Simulation.config()
	if err != nil {
		return nil, err
	}
	s.Config = cfg

	for i, b := range f.Bodies {
		bundle, err := b.bundle(vmath.Zero, vmath.Zero)
		if err == nil {
			err = engine.Validate(bundle)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "body %d", i)
		}
		s.Bodies = append(s.Bodies, bundle)
	}

	for i, g := range f.Grids {
		bundles, err := g.bundles()
		if err != nil {
			return nil, errors.Wrapf(err, "grid %d", i)
		}
		s.Bodies = append(s.Bodies, bundles...)
	}

	if f.Emitter != nil {
		em, err := f.Emitter.emitter()
		if err != nil {
			return nil, errors.Wrap(err, "emitter")
		}
		s.Emitter = em
	}

	return s, nil
}

// Spawn creates the scene's bodies in w under the world lock and returns their handles
// The emitter, if any, is reset so a reloaded scene starts from its seed
func (s *Scene) Spawn(w *engine.World) ([]core.Entity, error) {
	entities := make([]core.Entity, 0, len(s.Bodies))
	var spawnErr error
	w.RunSafe(func() {
		for i, b := range s.Bodies {
			e, err := engine.Spawn(w, b)
			if err != nil {
				spawnErr = errors.Wrapf(err, "body %d", i)
				return
			}
			entities = append(entities, e)
		}
	})
	if spawnErr != nil {
		return entities, spawnErr
	}
	if s.Emitter != nil {
		s.Emitter.Reset()
	}
	log.Printf("scene %q: spawned %d bodies", s.Name, len(entities))
	return entities, nil
}

func (sim simulationSpec) config() (physics.Config, error) {
	cfg := physics.DefaultConfig()
	if sim.StepHz != nil {
		cfg.StepHz = *sim.StepHz
	}
	if sim.Substeps != nil {
		cfg.Substeps = *sim.Substeps
	}
	if sim.MarginK != nil {
		cfg.MarginK = *sim.MarginK
	}
	if sim.Gravity != nil {
		g, err := vec(sim.Gravity, cfg.Gravity, "simulation.gravity")
		if err != nil {
			return cfg, err
		}
		cfg.Gravity = g
	}
	if sim.MaxCatchUp != nil {
		cfg.MaxCatchUpSteps = *sim.MaxCatchUp
	}
	if sim.PairRefresh != nil {
		cfg.PairRefresh = *sim.PairRefresh
	}
	if sim.StaticPairing != nil {
		cfg.StaticPairing = *sim.StaticPairing
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrap(err, "simulation")
	}
	return cfg, nil
}

// bundle resolves the spec at an offset position with an explicit velocity override
func (b bodySpec) bundle(offset, velOverride vmath.Vec2) (engine.Bundle, error) {
	pos, err := vec(b.Pos, vmath.Zero, "pos")
	if err != nil {
		return nil, err
	}
	pos = pos.Add(offset)
	vel, err := vec(b.Vel, vmath.Zero, "vel")
	if err != nil {
		return nil, err
	}
	vel = vel.Add(velOverride)

	switch b.Kind {
	case KindParticle:
		p := engine.NewParticleBundle(pos, vel)
		p.Mass = orDefault(b.Mass, p.Mass)
		p.Restitution = orDefault(b.Restitution, p.Restitution)
		p.Radius = orDefault(b.Radius, p.Radius)
		return p, nil
	case KindDynamicBox:
		p := engine.NewDynamicBoxBundle(pos, vel)
		p.Mass = orDefault(b.Mass, p.Mass)
		p.Restitution = orDefault(b.Restitution, p.Restitution)
		if p.Size, err = vec(b.Size, p.Size, "size"); err != nil {
			return nil, err
		}
		return p, nil
	case KindStaticCircle:
		p := engine.NewStaticCircleBundle(pos)
		p.Restitution = orDefault(b.Restitution, p.Restitution)
		p.Radius = orDefault(b.Radius, p.Radius)
		return p, nil
	case KindStaticBox:
		p := engine.NewStaticBoxBundle(pos, vmath.Splat(parameter.DefaultBoxSize))
		p.Restitution = orDefault(b.Restitution, p.Restitution)
		if p.Size, err = vec(b.Size, p.Size, "size"); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, errors.Wrapf(ErrUnknownBodyKind, "%q", b.Kind)
	}
}

func (g gridSpec) bundles() ([]engine.Bundle, error) {
	if g.Rows <= 0 || g.Columns <= 0 {
		return nil, errors.Wrapf(ErrInvalidScene, "grid %dx%d", g.Rows, g.Columns)
	}
	origin, err := vec(g.Origin, vmath.Zero, "origin")
	if err != nil {
		return nil, err
	}
	spacing, err := vec(g.Spacing, vmath.Zero, "spacing")
	if err != nil {
		return nil, err
	}

	out := make([]engine.Bundle, 0, g.Rows*g.Columns)
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Columns; col++ {
			offset := origin.Add(vmath.V2(float64(col)*spacing[0], float64(row)*spacing[1]))
			b, err := g.bodySpec.bundle(offset, vmath.Zero)
			if err == nil {
				err = engine.Validate(b)
			}
			if err != nil {
				return nil, errors.Wrapf(err, "cell %d,%d", row, col)
			}
			out = append(out, b)
		}
	}
	return out, nil
}

// vec converts a two-element TOML array, returning def when the key was absent
func vec(v []float64, def vmath.Vec2, field string) (vmath.Vec2, error) {
	if v == nil {
		return def, nil
	}
	if len(v) != 2 {
		return def, errors.Wrapf(ErrInvalidScene, "%s needs 2 components, got %d", field, len(v))
	}
	return vmath.V2(v[0], v[1]), nil
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
