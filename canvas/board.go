package canvas

import (
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/datoviz/datoviz-sub007/core"
	"github.com/datoviz/datoviz-sub007/gpu"
	"github.com/datoviz/datoviz-sub007/host"
	"github.com/datoviz/datoviz-sub007/request"
)

// Board is an offscreen Canvas: a single color+depth image pair with no
// swapchain, no present queue, and a Download path that reads the rendered
// image back to CPU memory (spec.md §3.5's "board" render target, absent
// from the teacher, grounded on its ImageCreate/Buffer pair generalized to
// a one-shot render-then-download flow).
type Board struct {
	id   core.ID
	host *host.Host

	width, height uint32
	color         *gpu.Image
	depth         *gpu.Image
	renderpass    *gpu.Renderpass
	framebuffer   *gpu.Framebuffer
	cmdBuffer     *gpu.CommandBuffer
	fence         *gpu.Fence
	timestamps    *Timestamps
}

const boardColorFormat = vk.FormatR8g8b8a8Unorm

// NewBoard creates an offscreen render target of width x height.
func NewBoard(h *host.Host, id core.ID, width, height uint32) (*Board, error) {
	b := &Board{id: id, host: h, width: width, height: height}

	color, err := gpu.NewImage(h, 2, width, height, 1, boardColorFormat,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit|vk.ImageUsageTransferSrcBit),
		true, vk.ImageAspectFlags(vk.ImageAspectColorBit))
	if err != nil {
		return nil, err
	}
	b.color = color

	depthFmt, err := pickDepthFormat(h)
	if err != nil {
		return nil, err
	}
	depth, err := gpu.NewImage(h, 2, width, height, 1, depthFmt,
		vk.ImageTilingOptimal, vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		true, vk.ImageAspectFlags(vk.ImageAspectDepthBit))
	if err != nil {
		return nil, err
	}
	b.depth = depth

	rp, err := gpu.NewRenderpass(h, boardColorFormat, vk.ImageLayoutTransferSrcOptimal, true, depthFmt)
	if err != nil {
		return nil, err
	}
	b.renderpass = rp

	fb, err := gpu.NewFramebuffer(h, rp, width, height, []vk.ImageView{color.View, depth.View})
	if err != nil {
		return nil, err
	}
	b.framebuffer = fb

	cb, err := gpu.NewCommandBuffer(h, h.GraphicsCommandPool, true)
	if err != nil {
		return nil, err
	}
	b.cmdBuffer = cb

	fence, err := gpu.NewFence(h, true)
	if err != nil {
		return nil, err
	}
	b.fence = fence

	ts, err := newTimestamps(h, 1)
	if err != nil {
		return nil, err
	}
	b.timestamps = ts

	core.LogInfo("board canvas created (%dx%d)", width, height)
	return b, nil
}

func (b *Board) ID() core.ID                          { return b.id }
func (b *Board) ImageCount() int                       { return 1 }
func (b *Board) Extent() (uint32, uint32)              { return b.width, b.height }
func (b *Board) Renderpass() *gpu.Renderpass           { return b.renderpass }
func (b *Board) CommandBuffer(int) *gpu.CommandBuffer  { return b.cmdBuffer }
func (b *Board) Framebuffer(int) *gpu.Framebuffer      { return b.framebuffer }
func (b *Board) Timestamps() *Timestamps               { return b.timestamps }

// Recreate resizes the board's images, a true no-op when the extent is
// unchanged (SPEC_FULL.md §7 Open Question 1, shared with Windowed).
func (b *Board) Recreate(width, height uint32) error {
	if width == b.width && height == b.height {
		return nil
	}
	if err := b.host.WaitIdle(); err != nil {
		return err
	}
	var history []float64
	if b.timestamps != nil {
		history = b.timestamps.Samples()
	}
	b.destroyImages()
	nb, err := NewBoard(b.host, b.id, width, height)
	if err != nil {
		return err
	}
	*b = *nb
	for _, s := range history {
		b.timestamps.history.Push(s)
	}
	return nil
}

func (b *Board) destroyImages() {
	h := b.host
	if b.timestamps != nil {
		b.timestamps.destroy(h)
	}
	b.framebuffer.Destroy(h)
	b.renderpass.Destroy(h)
	b.depth.Destroy(h)
	b.color.Destroy(h)
}

// Submit submits the recorded command buffer and waits for completion —
// a board has no swapchain semaphore chain, so submission is synchronous.
func (b *Board) Submit() error {
	if err := b.fence.Reset(b.host); err != nil {
		return err
	}
	info := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{b.cmdBuffer.Handle},
	}
	if res := vk.QueueSubmit(b.host.GraphicsQueue, 1, []vk.SubmitInfo{info}, b.fence.Handle); res != vk.Success {
		return core.NewErrorf(core.ErrorKindDeviceLost, "vkQueueSubmit failed: %d", res)
	}
	b.cmdBuffer.MarkSubmitted()
	return b.fence.Wait(b.host, ^uint64(0))
}

// Download reads the board's color attachment back via a host-visible
// staging buffer and a one-shot transfer command buffer.
func (b *Board) Download() ([]byte, error) {
	h := b.host
	bytesPerPixel := uint64(4)
	size := uint64(b.width) * uint64(b.height) * bytesPerPixel

	staging, err := gpu.NewBuffer(h, request.BufferTypeStaging, size, true)
	if err != nil {
		return nil, err
	}
	defer staging.Destroy(h)

	cb, err := gpu.AllocateAndBeginSingleUse(h, h.GraphicsCommandPool)
	if err != nil {
		return nil, err
	}

	region := vk.BufferImageCopy{
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LayerCount: 1,
		},
		ImageExtent: vk.Extent3D{Width: b.width, Height: b.height, Depth: 1},
	}
	vk.CmdCopyImageToBuffer(cb.Handle, b.color.Handle, vk.ImageLayoutTransferSrcOptimal, staging.Handle, 1, []vk.BufferImageCopy{region})

	if err := cb.EndSingleUse(h, h.GraphicsCommandPool, h.GraphicsQueue); err != nil {
		return nil, err
	}

	if err := staging.Map(h); err != nil {
		return nil, err
	}
	defer staging.Unmap(h)

	out := make([]byte, size)
	copy(out, unsafe.Slice((*byte)(staging.Mapped), size))
	return out, nil
}

// CmdReset implements recorder.Target.
func (b *Board) CmdReset(int) error {
	b.cmdBuffer.Reset()
	return nil
}

// CanvasBegin implements recorder.Target.
func (b *Board) CanvasBegin(imageIdx int) error {
	return recordBegin(b.cmdBuffer, b.renderpass, b.framebuffer, b.width, b.height, b.timestamps, imageIdx)
}

// CanvasViewport implements recorder.Target.
func (b *Board) CanvasViewport(_ int, offset [2]int32, shape [2]uint32) error {
	recordViewport(b.cmdBuffer, offset, shape)
	return nil
}

// CanvasEnd implements recorder.Target.
func (b *Board) CanvasEnd(imageIdx int) error {
	return recordEnd(b.cmdBuffer, b.timestamps, imageIdx)
}

// CollectTimestamps polls the outstanding GPU timestamp query and appends
// any now-ready sample into the Timestamps history. Call after Submit.
func (b *Board) CollectTimestamps() {
	if b.timestamps != nil {
		b.timestamps.Collect(b.host)
	}
}

func (b *Board) Destroy() {
	b.destroyImages()
	b.cmdBuffer.Free(b.host)
	b.fence.Destroy(b.host)
}
