package gpu

import (
	vk "github.com/goki/vulkan"

	"github.com/datoviz/datoviz-sub007/core"
	"github.com/datoviz/datoviz-sub007/host"
)

// CommandBufferState tracks where a CommandBuffer sits in its
// allocate/begin/record/end/submit lifecycle, the way the teacher's
// VulkanCommandBuffer does, generalized to expose Reset as a real
// operation (cmd_reset in the recorder's BEGIN replay, spec.md §4.3).
type CommandBufferState int

const (
	CommandBufferStateNotAllocated CommandBufferState = iota
	CommandBufferStateReady
	CommandBufferStateRecording
	CommandBufferStateInRenderPass
	CommandBufferStateRecordingEnded
	CommandBufferStateSubmitted
)

type CommandBuffer struct {
	Handle vk.CommandBuffer
	State  CommandBufferState
	pool   vk.CommandPool
}

// NewCommandBuffer allocates one command buffer from pool.
func NewCommandBuffer(h *host.Host, pool vk.CommandPool, primary bool) (*CommandBuffer, error) {
	level := vk.CommandBufferLevelSecondary
	if primary {
		level = vk.CommandBufferLevelPrimary
	}
	info := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		CommandBufferCount: 1,
		Level:              level,
	}
	handles := make([]vk.CommandBuffer, 1)
	if res := vk.AllocateCommandBuffers(h.Device, &info, handles); res != vk.Success {
		return nil, core.NewErrorf(core.ErrorKindResourceExhausted, "vkAllocateCommandBuffers failed: %d", res)
	}
	return &CommandBuffer{Handle: handles[0], State: CommandBufferStateReady, pool: pool}, nil
}

func (cb *CommandBuffer) Free(h *host.Host) {
	vk.FreeCommandBuffers(h.Device, cb.pool, 1, []vk.CommandBuffer{cb.Handle})
	cb.Handle = nil
	cb.State = CommandBufferStateNotAllocated
}

func (cb *CommandBuffer) Begin(singleUse, renderpassContinue, simultaneousUse bool) error {
	info := vk.CommandBufferBeginInfo{SType: vk.StructureTypeCommandBufferBeginInfo}
	if singleUse {
		info.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit)
	}
	if renderpassContinue {
		info.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageRenderPassContinueBit)
	}
	if simultaneousUse {
		info.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageSimultaneousUseBit)
	}
	if res := vk.BeginCommandBuffer(cb.Handle, &info); res != vk.Success {
		return core.NewErrorf(core.ErrorKindDeviceLost, "vkBeginCommandBuffer failed: %d", res)
	}
	cb.State = CommandBufferStateRecording
	return nil
}

func (cb *CommandBuffer) End() error {
	if res := vk.EndCommandBuffer(cb.Handle); res != vk.Success {
		return core.NewErrorf(core.ErrorKindDeviceLost, "vkEndCommandBuffer failed: %d", res)
	}
	cb.State = CommandBufferStateRecordingEnded
	return nil
}

// Reset marks the buffer ready for a fresh Begin. The pool was created
// with ResetCommandBufferBit (host.New), so no explicit vkResetCommandBuffer
// call is required before re-recording.
func (cb *CommandBuffer) Reset() {
	cb.State = CommandBufferStateReady
}

func (cb *CommandBuffer) MarkSubmitted() {
	cb.State = CommandBufferStateSubmitted
}

// AllocateAndBeginSingleUse allocates a primary command buffer and begins
// it with the one-time-submit flag, for short-lived transfer operations
// (e.g. a Tex's staged upload or a Dat's resize copy).
func AllocateAndBeginSingleUse(h *host.Host, pool vk.CommandPool) (*CommandBuffer, error) {
	cb, err := NewCommandBuffer(h, pool, true)
	if err != nil {
		return nil, err
	}
	if err := cb.Begin(true, false, false); err != nil {
		return nil, err
	}
	return cb, nil
}

// EndSingleUse ends, submits and waits for a single-use command buffer,
// then frees it.
func (cb *CommandBuffer) EndSingleUse(h *host.Host, pool vk.CommandPool, queue vk.Queue) error {
	if err := cb.End(); err != nil {
		return err
	}
	info := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{cb.Handle},
	}
	if res := vk.QueueSubmit(queue, 1, []vk.SubmitInfo{info}, nil); res != vk.Success {
		return core.NewErrorf(core.ErrorKindDeviceLost, "vkQueueSubmit failed: %d", res)
	}
	if res := vk.QueueWaitIdle(queue); res != vk.Success {
		return core.NewErrorf(core.ErrorKindDeviceLost, "vkQueueWaitIdle failed: %d", res)
	}
	cb.Free(h)
	return nil
}
