package core

import "fmt"

// Entity is a generational handle: low 32 bits hold the slot index, high 32 bits the generation
// A destroyed slot is recycled with a bumped generation so stale handles never resolve again
type Entity uint64

// NullEntity is never issued by a world
const NullEntity Entity = 0

const entityIndexBits = 32

// NewEntity packs a slot index and generation into a handle
func NewEntity(index, generation uint32) Entity {
	return Entity(uint64(generation)<<entityIndexBits | uint64(index))
}

// Index returns the slot index
func (e Entity) Index() uint32 {
	return uint32(e)
}

// Generation returns the slot generation the handle was issued for
func (e Entity) Generation() uint32 {
	return uint32(e >> entityIndexBits)
}

// IsNull reports whether e is the zero handle
func (e Entity) IsNull() bool {
	return e == NullEntity
}

func (e Entity) String() string {
	return fmt.Sprintf("%d:%d", e.Index(), e.Generation())
}
