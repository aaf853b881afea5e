package recorder

import (
	"testing"

	"github.com/datoviz/datoviz-sub007/core"
	"github.com/datoviz/datoviz-sub007/request"
)

// countingTarget/countingDrawer stand in for a canvas/renderer, counting
// how many times each operation actually ran (spec.md scenario 4 verifies
// the fill happens only once via "a counter in a test renderer").
type countingTarget struct{ resets, begins, viewports, ends int }

func (c *countingTarget) CmdReset(int) error             { c.resets++; return nil }
func (c *countingTarget) CanvasBegin(int) error          { c.begins++; return nil }
func (c *countingTarget) CanvasViewport(int, [2]int32, [2]uint32) error { c.viewports++; return nil }
func (c *countingTarget) CanvasEnd(int) error            { c.ends++; return nil }

type countingDrawer struct{ draws int }

func (c *countingDrawer) BindPipeline(int, core.ID) error { return nil }
func (c *countingDrawer) Draw(int, uint32, uint32, uint32, uint32) error {
	c.draws++
	return nil
}
func (c *countingDrawer) DrawIndexed(int, uint32, int32, uint32, uint32, uint32) error { return nil }
func (c *countingDrawer) DrawIndirect(int, core.ID) error                              { return nil }
func (c *countingDrawer) DrawIndexedIndirect(int, core.ID) error                       { return nil }

// Scenario 4: with 3 swapchain images, append 4 draw commands, call
// set(0) -> set(0) again: the fill happens only once. Then set_dirty();
// the next set(0) refills.
func TestRecorderCachesUntilDirty(t *testing.T) {
	r := New(3, FlagNone)
	pipeID := core.NewID()
	for i := 0; i < 4; i++ {
		r.Append(request.RecorderPayload{Type: request.RecorderCmdDraw, PipeID: pipeID})
	}

	target := &countingTarget{}
	drawer := &countingDrawer{}

	replayed, err := r.Set(target, drawer, 0)
	if err != nil || !replayed {
		t.Fatalf("expected first Set to replay, err=%v replayed=%v", err, replayed)
	}
	if drawer.draws != 4 {
		t.Fatalf("expected 4 draws after first Set, got %d", drawer.draws)
	}

	replayed, err = r.Set(target, drawer, 0)
	if err != nil || replayed {
		t.Fatalf("expected second Set to be a cache hit (no replay), got replayed=%v", replayed)
	}
	if drawer.draws != 4 {
		t.Fatalf("expected no new draws on cache hit, got %d", drawer.draws)
	}

	r.SetDirty()
	replayed, err = r.Set(target, drawer, 0)
	if err != nil || !replayed {
		t.Fatalf("expected Set after SetDirty to replay again")
	}
	if drawer.draws != 8 {
		t.Fatalf("expected 8 total draws after the refill, got %d", drawer.draws)
	}
}

// P3: after Recorder::set(i), dirty[i] == false unless caching is disabled.
func TestRecorderSetClearsDirtyBit(t *testing.T) {
	r := New(2, FlagNone)
	r.Append(request.RecorderPayload{Type: request.RecorderCmdBegin})
	if !r.Dirty(0) {
		t.Fatalf("fresh recorder should start dirty")
	}
	if _, err := r.Set(&countingTarget{}, &countingDrawer{}, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Dirty(0) {
		t.Fatalf("expected dirty[0] == false after Set")
	}
	if !r.Dirty(1) {
		t.Fatalf("Set(0) must not affect dirty[1]")
	}
}

func TestRecorderDisableCacheAlwaysReplays(t *testing.T) {
	r := New(1, FlagDisableCache)
	r.Append(request.RecorderPayload{Type: request.RecorderCmdBegin})
	target := &countingTarget{}
	drawer := &countingDrawer{}
	r.Set(target, drawer, 0)
	r.Set(target, drawer, 0)
	if target.begins != 2 {
		t.Fatalf("expected 2 replays with caching disabled, got %d", target.begins)
	}
}

// Round-trip: Recorder::clear(); Recorder::set(i) produces the same
// command buffer contents as a freshly-constructed canvas (here: no
// commands run, and the dirty bit still clears).
func TestRecorderClearThenSetMatchesFresh(t *testing.T) {
	r := New(1, FlagNone)
	r.Append(request.RecorderPayload{Type: request.RecorderCmdDraw})
	r.Clear()
	if len(r.Commands()) != 0 {
		t.Fatalf("expected Clear to empty the command list")
	}
	replayed, err := r.Set(&countingTarget{}, &countingDrawer{}, 0)
	if err != nil || !replayed {
		t.Fatalf("expected Set to run (possibly a no-op replay) after Clear")
	}
	if r.Dirty(0) {
		t.Fatalf("expected dirty[0] cleared after Set following Clear")
	}
}
