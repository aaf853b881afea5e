package client

import "sync"

// Timer is the delay/period/max_count tick item: a supplemented feature
// (spec.md describes its behavior via testable property P7 and scenario 5
// but does not name a type for it).
type Timer struct {
	mu sync.Mutex

	Delay    float64
	Period   float64
	MaxCount uint32 // 0 = unbounded

	startTime  float64
	firedCount uint32
	running    bool
	paused     bool
	pausedAt   float64
}

// NewTimer creates a timer with the given delay/period/max_count, not yet
// started.
func NewTimer(delay, period float64, maxCount uint32) *Timer {
	return &Timer{Delay: delay, Period: period, MaxCount: maxCount}
}

// Start (re)starts the timer as of tNow: firedCount and the delay baseline
// are reset, the way a fresh dvz_timer_new's item would begin ticking.
func (t *Timer) Start(tNow float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.startTime = tNow
	t.firedCount = 0
	t.running = true
	t.paused = false
}

// Stop halts the timer; subsequent Tick calls are no-ops until Start.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
}

// Pause records tNow and makes Tick calls no-ops, keeping firedCount.
// There is no resume: Start restarts the timer, resetting firedCount and
// the delay baseline.
func (t *Timer) Pause(tNow float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pausedAt = tNow
	t.paused = true
}

func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Tick advances the timer to tNow and returns the number of new fires
// since the last Tick (0 if none). Implements P7: over [delay, tNow] the
// total fire count is floor((tNow-delay)/period)+1, capped at MaxCount
// when MaxCount > 0; once that cap is reached, running becomes false.
func (t *Timer) Tick(tNow float64) uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running || t.paused {
		return 0
	}
	elapsed := tNow - t.startTime
	if elapsed < t.Delay {
		return 0
	}
	total := uint32((elapsed-t.Delay)/t.Period) + 1
	if t.MaxCount > 0 && total > t.MaxCount {
		total = t.MaxCount
	}
	if total <= t.firedCount {
		return 0
	}
	newFires := total - t.firedCount
	t.firedCount = total
	if t.MaxCount > 0 && t.firedCount >= t.MaxCount {
		t.running = false
	}
	return newFires
}
