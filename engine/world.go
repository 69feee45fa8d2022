package engine

import (
	"sync"

	"github.com/lixenwraith/xpbd/component"
	"github.com/lixenwraith/xpbd/core"
	"github.com/lixenwraith/xpbd/parameter"
)

// BodyKind classifies an entity for the solver
type BodyKind uint8

const (
	// BodyInert has no collider and no mass, or no longer exists
	BodyInert BodyKind = iota
	// BodyDynamic carries a MassComponent
	BodyDynamic
	// BodyStatic has a collider but no mass: immovable, infinite effective mass
	BodyStatic
)

func (k BodyKind) String() string {
	switch k {
	case BodyDynamic:
		return "dynamic"
	case BodyStatic:
		return "static"
	default:
		return "inert"
	}
}

// World contains all entities and their components using typed stores
// Component stores are not locked individually; the solver and host mutations serialize through RunSafe
type World struct {
	updateMutex sync.Mutex

	// Slot generations; a slot's generation is bumped on destroy so old handles stop resolving
	generations []uint32
	alive       []bool
	freeSlots   []uint32
	liveCount   int

	// Substep interval in seconds used to seed PrevPos of spawned dynamic bodies
	subDt float64

	Kinetics     *Store[component.KineticComponent]
	Masses       *Store[component.MassComponent]
	Restitutions *Store[component.RestitutionComponent]
	Colliders    *Store[component.ColliderComponent]
	Bounds       *Store[component.BoundsComponent]

	// Lifecycle registry - all stores implement AnyStore for uniform cleanup
	allStores []AnyStore
}

// NewWorld creates an empty world with all body stores initialized
func NewWorld() *World {
	w := &World{
		// Slot 0 is reserved so NullEntity never resolves
		generations:  []uint32{0},
		alive:        []bool{false},
		subDt:        parameter.SubDt,
		Kinetics:     NewStore[component.KineticComponent](),
		Masses:       NewStore[component.MassComponent](),
		Restitutions: NewStore[component.RestitutionComponent](),
		Colliders:    NewStore[component.ColliderComponent](),
		Bounds:       NewStore[component.BoundsComponent](),
	}

	w.allStores = []AnyStore{
		w.Kinetics,
		w.Masses,
		w.Restitutions,
		w.Colliders,
		w.Bounds,
	}

	return w
}

// CreateEntity issues a new handle, recycling a free slot when one exists
func (w *World) CreateEntity() core.Entity {
	var index uint32
	if n := len(w.freeSlots); n > 0 {
		index = w.freeSlots[n-1]
		w.freeSlots = w.freeSlots[:n-1]
	} else {
		index = uint32(len(w.generations))
		w.generations = append(w.generations, 0)
		w.alive = append(w.alive, false)
	}

	w.generations[index]++
	w.alive[index] = true
	w.liveCount++
	return core.NewEntity(index, w.generations[index])
}

// Alive reports whether e still resolves to a live entity
func (w *World) Alive(e core.Entity) bool {
	i := e.Index()
	return int(i) < len(w.generations) && w.alive[i] && w.generations[i] == e.Generation()
}

// DestroyEntity removes all components of e and retires its handle
// Destroying a stale or unknown handle is a no-op
func (w *World) DestroyEntity(e core.Entity) {
	if !w.Alive(e) {
		return
	}
	for _, store := range w.allStores {
		store.Remove(e)
	}
	i := e.Index()
	w.alive[i] = false
	w.freeSlots = append(w.freeSlots, i)
	w.liveCount--
}

// EntityCount returns the number of live entities
func (w *World) EntityCount() int {
	return w.liveCount
}

// Kind classifies e by component presence: mass means dynamic, collider without mass means static
func (w *World) Kind(e core.Entity) BodyKind {
	if !w.Alive(e) {
		return BodyInert
	}
	if w.Masses.Has(e) {
		return BodyDynamic
	}
	if w.Colliders.Has(e) {
		return BodyStatic
	}
	return BodyInert
}

// Clear removes all entities and components from the world
// Generations survive so handles issued before Clear stay stale
func (w *World) Clear() {
	for _, store := range w.allStores {
		store.Clear()
	}
	w.freeSlots = w.freeSlots[:0]
	for i := len(w.alive) - 1; i > 0; i-- {
		w.alive[i] = false
		w.freeSlots = append(w.freeSlots, uint32(i))
	}
	w.liveCount = 0
}

// RunSafe executes a function while holding the world's update lock
func (w *World) RunSafe(fn func()) {
	w.updateMutex.Lock()
	defer w.updateMutex.Unlock()
	fn()
}

// SetSubDt sets the substep interval bundles seed PrevPos with; the simulation binds it at construction
func (w *World) SetSubDt(subDt float64) {
	w.subDt = subDt
}

// SubDt returns the substep interval in seconds
func (w *World) SubDt() float64 {
	return w.subDt
}
