package gpu

import (
	vk "github.com/goki/vulkan"

	"github.com/datoviz/datoviz-sub007/core"
	"github.com/datoviz/datoviz-sub007/host"
)

// TimestampPool wraps a timestamp query pool sized for one begin/end pair
// per swapchain image, the GPU-side counterpart to canvas's CPU-side
// Timestamps ring buffer.
type TimestampPool struct {
	Handle        vk.QueryPool
	period        float64 // nanoseconds per tick, from VkPhysicalDeviceLimits
	queriesPerImg uint32
}

func NewTimestampPool(h *host.Host, imageCount int) (*TimestampPool, error) {
	info := vk.QueryPoolCreateInfo{
		SType:      vk.StructureTypeQueryPoolCreateInfo,
		QueryType:  vk.QueryTypeTimestamp,
		QueryCount: uint32(imageCount) * 2,
	}
	var handle vk.QueryPool
	if res := vk.CreateQueryPool(h.Device, &info, h.Allocator, &handle); res != vk.Success {
		return nil, core.NewErrorf(core.ErrorKindResourceExhausted, "vkCreateQueryPool failed: %d", res)
	}

	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(h.PhysicalDevice, &props)
	props.Deref()
	props.Limits.Deref()

	return &TimestampPool{Handle: handle, period: float64(props.Limits.TimestampPeriod), queriesPerImg: 2}, nil
}

// Reset must be called before the first CmdWriteTimestamp targeting
// imageIdx in a given command buffer recording.
func (p *TimestampPool) Reset(cb vk.CommandBuffer, imageIdx int) {
	vk.CmdResetQueryPool(cb, p.Handle, uint32(imageIdx)*p.queriesPerImg, p.queriesPerImg)
}

func (p *TimestampPool) WriteBegin(cb vk.CommandBuffer, imageIdx int) {
	vk.CmdWriteTimestamp(cb, vk.PipelineStageTopOfPipeBit, p.Handle, uint32(imageIdx)*p.queriesPerImg)
}

func (p *TimestampPool) WriteEnd(cb vk.CommandBuffer, imageIdx int) {
	vk.CmdWriteTimestamp(cb, vk.PipelineStageBottomOfPipeBit, p.Handle, uint32(imageIdx)*p.queriesPerImg+1)
}

// Elapsed reads back the begin/end pair for imageIdx and returns the GPU
// time elapsed in seconds. Returns false if the results are not yet
// available (query still pending).
func (p *TimestampPool) Elapsed(h *host.Host, imageIdx int) (float64, bool) {
	results := make([]uint64, p.queriesPerImg)
	res := vk.GetQueryPoolResults(h.Device, p.Handle, uint32(imageIdx)*p.queriesPerImg, p.queriesPerImg,
		uint(p.queriesPerImg)*8, results, 8, vk.QueryResultFlags(vk.QueryResult64Bit))
	if res == vk.NotReady {
		return 0, false
	}
	if res != vk.Success {
		return 0, false
	}
	deltaTicks := float64(results[1] - results[0])
	return deltaTicks * p.period / 1e9, true
}

func (p *TimestampPool) Destroy(h *host.Host) {
	if p.Handle != vk.NullQueryPool {
		vk.DestroyQueryPool(h.Device, p.Handle, h.Allocator)
		p.Handle = vk.NullQueryPool
	}
}
