package engine

import "github.com/lixenwraith/xpbd/core"

// EntityBuilder provides a fluent, type-safe interface for constructing entities with components.
//
// Example usage:
//
//	e := With(With(world.NewEntity(), world.Kinetics, kinetic), world.Colliders, collider).Build()
type EntityBuilder struct {
	world  *World
	entity core.Entity
	built  bool
}

// NewEntity creates a new EntityBuilder with a freshly issued handle
func (w *World) NewEntity() *EntityBuilder {
	return &EntityBuilder{
		world:  w,
		entity: w.CreateEntity(),
	}
}

// With adds a component of type T to the entity being built.
// Panics if called after Build().
func With[T any](eb *EntityBuilder, store *Store[T], component T) *EntityBuilder {
	if eb.built {
		panic("entity already built - cannot add components after Build()")
	}
	store.Set(eb.entity, component)
	return eb
}

// Build finalizes entity construction and returns the entity handle.
func (eb *EntityBuilder) Build() core.Entity {
	eb.built = true
	return eb.entity
}
