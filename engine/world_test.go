package engine

import (
	"testing"

	"github.com/lixenwraith/xpbd/component"
	"github.com/lixenwraith/xpbd/vmath"
)

func TestWorldEntityLifecycle(t *testing.T) {
	w := NewWorld()

	e1 := w.CreateEntity()
	e2 := w.CreateEntity()
	if e1.IsNull() || e2.IsNull() {
		t.Fatal("Expected non-null handles")
	}
	if e1 == e2 {
		t.Fatal("Expected distinct handles")
	}
	if w.EntityCount() != 2 {
		t.Errorf("Expected 2 entities, got %d", w.EntityCount())
	}

	w.Kinetics.Set(e1, component.KineticComponent{Pos: vmath.V2(1, 2)})
	w.DestroyEntity(e1)

	if w.Alive(e1) {
		t.Error("Expected e1 dead after destroy")
	}
	if w.Kinetics.Has(e1) {
		t.Error("Expected components removed on destroy")
	}
	if w.EntityCount() != 1 {
		t.Errorf("Expected 1 entity, got %d", w.EntityCount())
	}

	// Slot is recycled with a new generation; old handle stays stale
	e3 := w.CreateEntity()
	if e3.Index() != e1.Index() {
		t.Errorf("Expected slot %d recycled, got %d", e1.Index(), e3.Index())
	}
	if e3.Generation() == e1.Generation() {
		t.Error("Expected generation bump on recycle")
	}
	if w.Alive(e1) {
		t.Error("Expected stale handle to stay dead after recycle")
	}

	// Destroying a stale handle must not touch the new occupant
	w.Kinetics.Set(e3, component.KineticComponent{})
	w.DestroyEntity(e1)
	if !w.Alive(e3) || !w.Kinetics.Has(e3) {
		t.Error("Expected stale destroy to be a no-op")
	}
}

func TestWorldNullEntityNeverAlive(t *testing.T) {
	w := NewWorld()
	w.CreateEntity()

	if w.Alive(0) {
		t.Error("Expected null entity to never resolve")
	}
	if w.Kind(0) != BodyInert {
		t.Errorf("Expected null entity inert, got %v", w.Kind(0))
	}
}

func TestWorldKind(t *testing.T) {
	w := NewWorld()
	mass, err := component.NewMass(2)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	dyn := w.CreateEntity()
	w.Masses.Set(dyn, mass)
	w.Colliders.Set(dyn, component.ColliderComponent{Shape: component.Circle{Radius: 1}})

	stat := w.CreateEntity()
	w.Colliders.Set(stat, component.ColliderComponent{Shape: component.Box{Size: vmath.V2(1, 1)}})

	inert := w.CreateEntity()
	w.Kinetics.Set(inert, component.KineticComponent{})

	tests := []struct {
		name string
		kind BodyKind
		want BodyKind
	}{
		{"mass makes dynamic", w.Kind(dyn), BodyDynamic},
		{"collider without mass is static", w.Kind(stat), BodyStatic},
		{"neither is inert", w.Kind(inert), BodyInert},
	}
	for _, tt := range tests {
		if tt.kind != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, tt.kind)
		}
	}

	w.DestroyEntity(dyn)
	if w.Kind(dyn) != BodyInert {
		t.Errorf("Expected destroyed entity inert, got %v", w.Kind(dyn))
	}
}

func TestWorldClear(t *testing.T) {
	w := NewWorld()
	e1 := w.CreateEntity()
	w.Kinetics.Set(e1, component.KineticComponent{})
	w.CreateEntity()

	w.Clear()
	if w.EntityCount() != 0 {
		t.Errorf("Expected 0 entities after clear, got %d", w.EntityCount())
	}
	if w.Kinetics.Count() != 0 {
		t.Errorf("Expected empty stores after clear, got %d", w.Kinetics.Count())
	}

	e2 := w.CreateEntity()
	if w.Alive(e1) {
		t.Error("Expected handles from before Clear to stay stale")
	}
	if e2.Index() != 1 {
		t.Errorf("Expected lowest slot reused first, got %d", e2.Index())
	}
}

func TestWorldRunSafe(t *testing.T) {
	w := NewWorld()
	done := make(chan struct{})

	for i := 0; i < 8; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				w.RunSafe(func() {
					e := w.CreateEntity()
					w.DestroyEntity(e)
				})
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	if w.EntityCount() != 0 {
		t.Errorf("Expected 0 entities, got %d", w.EntityCount())
	}
}
