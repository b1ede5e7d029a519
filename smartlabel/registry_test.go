package smartlabel

import "testing"

func TestRegistryPutDisposesPrevious(t *testing.T) {
	reg := NewRegistry()
	oldFC, newFC := newFakeContainers(), newFakeContainers()
	old := New("chart-1", oldFC, true, Options{})
	next := New("chart-1", newFC, true, Options{})

	reg.Put(old)
	reg.Put(next)
	if oldFC.disposed != 1 || old.Initialized() {
		t.Fatalf("replaced manager should be disposed")
	}
	if newFC.disposed != 0 {
		t.Fatalf("new manager should stay live")
	}
	got, ok := reg.Get("chart-1")
	if !ok || got != next {
		t.Fatalf("registry should hold the new manager")
	}

	reg.Put(next)
	if newFC.disposed != 0 {
		t.Fatalf("putting the same manager again must not dispose it")
	}
}

func TestRegistryIgnoresUninitialized(t *testing.T) {
	reg := NewRegistry()
	reg.Put(New("", newFakeContainers(), true, Options{}))
	if reg.Len() != 0 {
		t.Fatalf("uninitialized manager should not be stored")
	}
}

func TestRegistryDeleteAndClose(t *testing.T) {
	reg := NewRegistry()
	a, b := newFakeContainers(), newFakeContainers()
	reg.Put(New("a", a, true, Options{}))
	reg.Put(New("b", b, true, Options{}))

	reg.Delete("a")
	if a.disposed != 1 || reg.Len() != 1 {
		t.Fatalf("delete should dispose and remove: disposed=%d len=%d", a.disposed, reg.Len())
	}
	if _, ok := reg.Get("a"); ok {
		t.Fatalf("deleted id still reachable")
	}
	reg.Close()
	if b.disposed != 1 || reg.Len() != 0 {
		t.Fatalf("close should dispose everything")
	}
}
