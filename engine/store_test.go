package engine

import (
	"testing"

	"github.com/lixenwraith/xpbd/core"
)

func TestStoreSetGetRemove(t *testing.T) {
	s := NewStore[int]()
	e1 := core.NewEntity(1, 1)
	e2 := core.NewEntity(2, 1)
	e3 := core.NewEntity(3, 1)

	s.Set(e1, 10)
	s.Set(e2, 20)
	s.Set(e3, 30)
	s.Set(e2, 21)

	if s.Count() != 3 {
		t.Fatalf("Expected 3 components, got %d", s.Count())
	}
	if v, ok := s.Get(e2); !ok || v != 21 {
		t.Errorf("Expected 21 for e2, got %d (ok=%v)", v, ok)
	}

	// Removing from the middle swaps the last element in
	s.Remove(e1)
	if s.Has(e1) {
		t.Error("Expected e1 removed")
	}
	if v, ok := s.Get(e3); !ok || v != 30 {
		t.Errorf("Expected e3 to survive swap-remove with 30, got %d (ok=%v)", v, ok)
	}
	if s.Count() != 2 {
		t.Errorf("Expected 2 components, got %d", s.Count())
	}

	// Removing an absent entity is a no-op
	s.Remove(e1)
	if s.Count() != 2 {
		t.Errorf("Expected 2 components after no-op remove, got %d", s.Count())
	}
}

func TestStorePtrAliasesDense(t *testing.T) {
	s := NewStore[int]()
	e := core.NewEntity(1, 1)

	if s.Ptr(e) != nil {
		t.Error("Expected nil pointer for absent entity")
	}

	s.Set(e, 1)
	*s.Ptr(e) = 42
	if v, _ := s.Get(e); v != 42 {
		t.Errorf("Expected write through pointer to stick, got %d", v)
	}
}

func TestStoreStaleGeneration(t *testing.T) {
	s := NewStore[int]()
	old := core.NewEntity(5, 1)
	fresh := core.NewEntity(5, 2)

	s.Set(old, 1)
	if s.Has(fresh) {
		t.Error("Expected a different generation of the same slot to miss")
	}
}

func TestStoreEachAndAll(t *testing.T) {
	s := NewStore[int]()
	for i := uint32(1); i <= 4; i++ {
		s.Set(core.NewEntity(i, 1), int(i))
	}

	sum := 0
	s.Each(func(e core.Entity, v *int) {
		sum += *v
		*v *= 2
	})
	if sum != 10 {
		t.Errorf("Expected sum 10, got %d", sum)
	}
	if v, _ := s.Get(core.NewEntity(3, 1)); v != 6 {
		t.Errorf("Expected Each to mutate in place, got %d", v)
	}

	all := s.All()
	if len(all) != 4 {
		t.Fatalf("Expected 4 entities, got %d", len(all))
	}
	all[0] = core.NullEntity
	if s.All()[0] == core.NullEntity {
		t.Error("Expected All to return a copy")
	}

	s.Clear()
	if s.Count() != 0 || s.Has(core.NewEntity(1, 1)) {
		t.Error("Expected empty store after Clear")
	}
}
