package client

import "testing"

func TestClientSyncCallbackRunsInline(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	called := false
	c.On(EventFrame, Sync, func(data any) { called = true })
	c.fire(EventFrame, nil)
	if !called {
		t.Fatalf("expected sync callback to run inline")
	}
}

func TestClientAsyncCallbackRunsViaDeq(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	called := false
	c.On(EventFrame, Async, func(data any) { called = true })
	c.fire(EventFrame, nil)
	if called {
		t.Fatalf("async callback should not run before Process")
	}
	c.deq.Process(c.proc)
	if !called {
		t.Fatalf("expected async callback to run after Process")
	}
}

func TestClientNewTimerAssignsDistinctIDs(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a := c.NewTimer(0, 1, 0)
	b := c.NewTimer(0, 1, 0)
	if a == b {
		t.Fatalf("expected distinct timer ids, got %d twice", a)
	}
}
