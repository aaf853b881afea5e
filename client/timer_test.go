package client

import "testing"

// Scenario 5: ticks at t = 0, 0.49, 0.5, 0.99, 1.5, 2.5 fire at
// t = 0.5, 1.5, 2.5 only; pausing then ticking produces no fire; starting
// again and ticking produces a fire.
func TestTimerScenario5(t *testing.T) {
	timer := NewTimer(0.5, 1.0, 0)
	timer.Start(0)

	ticks := []float64{0, 0.49, 0.5, 0.99, 1.5, 2.5}
	totalFires := uint32(0)
	for _, tk := range ticks {
		totalFires += timer.Tick(tk)
	}
	if totalFires != 3 {
		t.Fatalf("expected 3 fires across the tick sequence, got %d", totalFires)
	}

	timer.Pause(3.0)
	if timer.Tick(4.5) != 0 {
		t.Fatalf("expected no fire while paused")
	}

	timer.Start(15.0)
	if timer.Tick(15.9) == 0 {
		t.Fatalf("expected a fire after restarting")
	}
}

// Boundary behavior: a timer with max_count = k fires exactly k times,
// then running == false.
func TestTimerMaxCount(t *testing.T) {
	timer := NewTimer(0, 1.0, 3)
	timer.Start(0)

	fires := uint32(0)
	for tk := 0.0; tk <= 10.0; tk += 1.0 {
		fires += timer.Tick(tk)
	}
	if fires != 3 {
		t.Fatalf("expected exactly 3 fires, got %d", fires)
	}
	if timer.Running() {
		t.Fatalf("expected running == false once max_count is reached")
	}
}

func TestTimerP7Formula(t *testing.T) {
	timer := NewTimer(0.5, 1.0, 0)
	timer.Start(0)
	total := timer.Tick(5.5)
	want := uint32(6) // floor((5.5-0.5)/1)+1 = 6
	if total != want {
		t.Fatalf("got %d fires, want %d", total, want)
	}
}
