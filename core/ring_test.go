package core

import "testing"

func TestRingPushWithinCapacity(t *testing.T) {
	r := NewRing[int](4)
	r.Push(1)
	r.Push(2)
	if r.Len() != 2 {
		t.Fatalf("len = %d, want 2", r.Len())
	}
	if got := r.Items(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("items = %v, want [1 2]", got)
	}
}

func TestRingEvictsOldestWhenFull(t *testing.T) {
	r := NewRing[int](3)
	r.Push(1)
	r.Push(2)
	r.Push(3)
	r.Push(4)
	got := r.Items()
	want := []int{2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("items = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("items = %v, want %v", got, want)
		}
	}
}

func TestRingClear(t *testing.T) {
	r := NewRing[int](2)
	r.Push(1)
	r.Clear()
	if r.Len() != 0 {
		t.Fatalf("expected empty ring after Clear, got len %d", r.Len())
	}
}
