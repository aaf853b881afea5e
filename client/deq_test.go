package client

import "testing"

func TestDeqOrderDepthFirst(t *testing.T) {
	d := NewDeq()
	var drained []string
	d.Callback(0, 1, func(item DeqItem) { drained = append(drained, item.Value.(string)) })
	d.Callback(1, 1, func(item DeqItem) { drained = append(drained, item.Value.(string)) })

	d.Enqueue(0, DeqItem{Type: 1, Value: "A"})
	d.Enqueue(1, DeqItem{Type: 1, Value: "B"})
	d.Enqueue(0, DeqItem{Type: 1, Value: "C"})

	p := d.Proc(0, []uint32{0, 1}, DepthFirst)
	d.Process(p)

	want := []string{"A", "C", "B"}
	if len(drained) != len(want) {
		t.Fatalf("got %v, want %v", drained, want)
	}
	for i := range want {
		if drained[i] != want[i] {
			t.Fatalf("got %v, want %v", drained, want)
		}
	}
}

func TestDeqOrderBreadthFirst(t *testing.T) {
	d := NewDeq()
	var drained []string
	d.Callback(0, 1, func(item DeqItem) { drained = append(drained, item.Value.(string)) })
	d.Callback(1, 1, func(item DeqItem) { drained = append(drained, item.Value.(string)) })

	d.Enqueue(0, DeqItem{Type: 1, Value: "A"})
	d.Enqueue(1, DeqItem{Type: 1, Value: "B"})
	d.Enqueue(0, DeqItem{Type: 1, Value: "C"})

	p := d.Proc(0, []uint32{0, 1}, BreadthFirst)
	d.Process(p)

	want := []string{"A", "B", "C"}
	if len(drained) != len(want) {
		t.Fatalf("got %v, want %v", drained, want)
	}
	for i := range want {
		if drained[i] != want[i] {
			t.Fatalf("got %v, want %v", drained, want)
		}
	}
}

// P6: enqueue followed by a non-blocking dequeue returns the same item iff
// the queue was empty beforehand.
func TestFifoEnqueueDequeueRoundTrip(t *testing.T) {
	d := NewDeq()
	if _, ok := d.Dequeue(0, false); ok {
		t.Fatalf("expected empty queue to report no item")
	}
	d.Enqueue(0, DeqItem{Type: 1, Value: 42})
	item, ok := d.Dequeue(0, false)
	if !ok || item.Value.(int) != 42 {
		t.Fatalf("expected to dequeue the enqueued item, got %v, %v", item, ok)
	}
	if _, ok := d.Dequeue(0, false); ok {
		t.Fatalf("queue should be empty again after a single dequeue")
	}
}

func TestEnqueueFirstJumpsOrder(t *testing.T) {
	d := NewDeq()
	d.Enqueue(0, DeqItem{Type: 1, Value: "A"})
	d.EnqueueFirst(0, DeqItem{Type: 1, Value: "priority"})
	item, _ := d.Dequeue(0, false)
	if item.Value.(string) != "priority" {
		t.Fatalf("expected EnqueueFirst item to be dequeued first, got %v", item.Value)
	}
}
