package engine

import (
	"github.com/lixenwraith/xpbd/core"
)

// Store is a generic container for a specific component type T
// Sparse set: dense value and entity arrays plus an entity->slot index
// Not safe for concurrent use; callers serialize through World.RunSafe
type Store[T any] struct {
	dense    []T
	entities []core.Entity
	sparse   map[core.Entity]int
}

// NewStore creates a new component store for type T
func NewStore[T any]() *Store[T] {
	return &Store[T]{
		dense:    make([]T, 0, 64),
		entities: make([]core.Entity, 0, 64),
		sparse:   make(map[core.Entity]int),
	}
}

// Set inserts or updates a component for an entity
func (s *Store[T]) Set(e core.Entity, val T) {
	if i, ok := s.sparse[e]; ok {
		s.dense[i] = val
		return
	}
	s.sparse[e] = len(s.dense)
	s.dense = append(s.dense, val)
	s.entities = append(s.entities, e)
}

// Get retrieves a copy of the component for an entity
func (s *Store[T]) Get(e core.Entity) (T, bool) {
	if i, ok := s.sparse[e]; ok {
		return s.dense[i], true
	}
	var zero T
	return zero, false
}

// Ptr returns a pointer into the dense array, nil if absent
// Valid until the next Set of a new entity or Remove on this store
func (s *Store[T]) Ptr(e core.Entity) *T {
	if i, ok := s.sparse[e]; ok {
		return &s.dense[i]
	}
	return nil
}

// Has checks if entity has this component
func (s *Store[T]) Has(e core.Entity) bool {
	_, ok := s.sparse[e]
	return ok
}

// Remove deletes the entity's component by swapping the last slot into its place
func (s *Store[T]) Remove(e core.Entity) {
	i, ok := s.sparse[e]
	if !ok {
		return
	}
	last := len(s.dense) - 1
	if i != last {
		s.dense[i] = s.dense[last]
		s.entities[i] = s.entities[last]
		s.sparse[s.entities[i]] = i
	}
	var zero T
	s.dense[last] = zero
	s.dense = s.dense[:last]
	s.entities = s.entities[:last]
	delete(s.sparse, e)
}

// All returns a copy of all entities with this component, in dense order
func (s *Store[T]) All() []core.Entity {
	result := make([]core.Entity, len(s.entities))
	copy(result, s.entities)
	return result
}

// Each visits every component in dense order
// fn must not add or remove components on this store
func (s *Store[T]) Each(fn func(e core.Entity, val *T)) {
	for i := range s.dense {
		fn(s.entities[i], &s.dense[i])
	}
}

// Count returns number of entities with this component
func (s *Store[T]) Count() int {
	return len(s.dense)
}

// Clear removes all components from this store
func (s *Store[T]) Clear() {
	s.dense = s.dense[:0]
	s.entities = s.entities[:0]
	s.sparse = make(map[core.Entity]int)
}
