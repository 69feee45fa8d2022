package engine

import (
	"sort"

	"github.com/lixenwraith/xpbd/core"
)

// QueryBuilder provides a fluent interface for querying entities based on component intersection.
// It starts from the smallest included store and filters candidates through the others,
// then drops candidates present in any excluded store.
type QueryBuilder struct {
	world    *World
	stores   []QueryableStore
	excluded []AnyStore
	executed bool
	results  []core.Entity
}

// Query creates a new QueryBuilder for finding entities with specific component combinations.
//
// Example:
//
//	statics := world.Query().
//	    With(world.Colliders).
//	    Without(world.Masses).
//	    Execute()
func (w *World) Query() *QueryBuilder {
	return &QueryBuilder{
		world:  w,
		stores: make([]QueryableStore, 0, 4),
	}
}

// With adds a component store to the query filter.
// Panics if called after Execute().
func (qb *QueryBuilder) With(store QueryableStore) *QueryBuilder {
	if qb.executed {
		panic("query already executed - cannot modify after Execute()")
	}
	qb.stores = append(qb.stores, store)
	return qb
}

// Without excludes entities that have a component in store.
// Panics if called after Execute().
func (qb *QueryBuilder) Without(store AnyStore) *QueryBuilder {
	if qb.executed {
		panic("query already executed - cannot modify after Execute()")
	}
	qb.excluded = append(qb.excluded, store)
	return qb
}

// Execute runs the query and returns all entities present in every With store and no Without store.
// Calling Execute() multiple times returns the cached result.
func (qb *QueryBuilder) Execute() []core.Entity {
	if qb.executed {
		return qb.results
	}
	qb.executed = true

	if len(qb.stores) == 0 {
		qb.results = make([]core.Entity, 0)
		return qb.results
	}

	// Smallest store first minimizes Has() checks
	sort.SliceStable(qb.stores, func(i, j int) bool {
		return qb.stores[i].Count() < qb.stores[j].Count()
	})

	candidates := qb.stores[0].All()
	filtered := candidates[:0]
	for _, e := range candidates {
		if qb.matches(e) {
			filtered = append(filtered, e)
		}
	}

	qb.results = filtered
	return qb.results
}

func (qb *QueryBuilder) matches(e core.Entity) bool {
	for _, store := range qb.stores[1:] {
		if !store.Has(e) {
			return false
		}
	}
	for _, store := range qb.excluded {
		if store.Has(e) {
			return false
		}
	}
	return true
}
