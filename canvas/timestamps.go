package canvas

import (
	vk "github.com/goki/vulkan"

	"github.com/datoviz/datoviz-sub007/core"
	"github.com/datoviz/datoviz-sub007/gpu"
	"github.com/datoviz/datoviz-sub007/host"
)

// timestampsCapacity bounds how many frame timings a canvas keeps, per
// spec.md §4.6.
const timestampsCapacity = 16384

// Timestamps tracks per-frame GPU render duration in a capped ring buffer,
// pairing a gpu.TimestampPool (the actual vkCmdWriteTimestamp queries) with
// a core.Ring of collected seconds-elapsed samples.
type Timestamps struct {
	pool    *gpu.TimestampPool
	history *core.Ring[float64]
	pending map[int]bool
}

func newTimestamps(h *host.Host, imageCount int) (*Timestamps, error) {
	pool, err := gpu.NewTimestampPool(h, imageCount)
	if err != nil {
		return nil, err
	}
	return &Timestamps{pool: pool, history: core.NewRing[float64](timestampsCapacity), pending: make(map[int]bool)}, nil
}

func (t *Timestamps) writeBegin(cb vk.CommandBuffer, imageIdx int) {
	t.pool.Reset(cb, imageIdx)
	t.pool.WriteBegin(cb, imageIdx)
}

func (t *Timestamps) writeEnd(cb vk.CommandBuffer, imageIdx int) {
	t.pool.WriteEnd(cb, imageIdx)
	t.pending[imageIdx] = true
}

// Collect polls every image with an outstanding query and appends any that
// have completed since the last call into the history ring. Call once per
// frame after Present; a query not yet ready is retried on the next call.
func (t *Timestamps) Collect(h *host.Host) {
	for imageIdx := range t.pending {
		if elapsed, ok := t.pool.Elapsed(h, imageIdx); ok {
			t.history.Push(elapsed)
			delete(t.pending, imageIdx)
		}
	}
}

// Samples returns the collected per-frame GPU durations in seconds, oldest
// first, capped at timestampsCapacity entries.
func (t *Timestamps) Samples() []float64 {
	return t.history.Items()
}

func (t *Timestamps) destroy(h *host.Host) {
	t.pool.Destroy(h)
}
