package core

import "testing"

func TestSlotmapSetGet(t *testing.T) {
	sm := NewSlotmap[string]()
	id := NewID()
	sm.Set(id, "hello")

	v, ok := sm.Get(id)
	if !ok || v != "hello" {
		t.Fatalf("got %q, %v; want hello, true", v, ok)
	}
	if sm.Status(id) != SlotStatusCreated {
		t.Fatalf("expected SlotStatusCreated after Set")
	}
}

func TestSlotmapDelete(t *testing.T) {
	sm := NewSlotmap[int]()
	id := NewID()
	sm.Set(id, 42)
	sm.Delete(id)

	if _, ok := sm.Get(id); ok {
		t.Fatalf("expected deleted id to be absent")
	}
	if sm.Status(id) != SlotStatusNone {
		t.Fatalf("expected SlotStatusNone after delete")
	}
}

func TestSlotmapMissing(t *testing.T) {
	sm := NewSlotmap[int]()
	if sm.Has(NewID()) {
		t.Fatalf("fresh slotmap should not have any id")
	}
}

func TestSlotmapKeys(t *testing.T) {
	sm := NewSlotmap[int]()
	a, b := NewID(), NewID()
	sm.Set(a, 1)
	sm.Set(b, 2)
	keys := sm.Keys()
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(keys))
	}
}

func TestNewIDNeverZero(t *testing.T) {
	for i := 0; i < 1000; i++ {
		if NewID() == NoID {
			t.Fatalf("NewID returned the sentinel NoID value")
		}
	}
}
