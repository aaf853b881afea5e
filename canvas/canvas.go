// Package canvas implements the render-target abstraction (L3): Windowed
// (swapchain-backed, presentable) and Board (offscreen) both drive the same
// per-image command-buffer lifecycle the recorder replays into, generalizing
// the teacher's single hardcoded VulkanSwapchain/world-renderpass pair into
// two interchangeable Canvas implementations.
package canvas

import (
	vk "github.com/goki/vulkan"

	"github.com/datoviz/datoviz-sub007/core"
	"github.com/datoviz/datoviz-sub007/gpu"
	"github.com/datoviz/datoviz-sub007/host"
)

// Canvas is the common surface the renderer and recorder drive: a set of
// per-image command buffers recorded against a shared renderpass.
type Canvas interface {
	ID() core.ID
	ImageCount() int
	Extent() (width, height uint32)
	CommandBuffer(imageIdx int) *gpu.CommandBuffer
	Renderpass() *gpu.Renderpass
	Framebuffer(imageIdx int) *gpu.Framebuffer

	// Timestamps exposes the per-frame GPU duration history (spec.md §4.6).
	Timestamps() *Timestamps

	// Target, the recorder's replay surface (spec.md §4.3).
	CmdReset(imageIdx int) error
	CanvasBegin(imageIdx int) error
	CanvasViewport(imageIdx int, offset [2]int32, shape [2]uint32) error
	CanvasEnd(imageIdx int) error

	Destroy()
}

// pickDepthFormat mirrors the teacher's DeviceDetectDepthFormat, generalized
// to a plain function any canvas constructor can call.
func pickDepthFormat(h *host.Host) (vk.Format, error) {
	candidates := []vk.Format{vk.FormatD32SfloatS8Uint, vk.FormatD32Sfloat, vk.FormatD24UnormS8Uint}
	for _, f := range candidates {
		var props vk.FormatProperties
		vk.GetPhysicalDeviceFormatProperties(h.PhysicalDevice, f, &props)
		props.Deref()
		if vk.FormatFeatureFlagBits(props.OptimalTilingFeatures)&vk.FormatFeatureDepthStencilAttachmentBit != 0 {
			return f, nil
		}
	}
	return vk.FormatUndefined, core.NewErrorf(core.ErrorKindUnsupportedFeature, "no supported depth format")
}

func recordBegin(cb *gpu.CommandBuffer, rp *gpu.Renderpass, fb *gpu.Framebuffer, width, height uint32, ts *Timestamps, imageIdx int) error {
	if err := cb.Begin(false, false, false); err != nil {
		return err
	}
	if ts != nil {
		ts.writeBegin(cb.Handle, imageIdx)
	}
	clearCount := 1
	if rp.HasDepth {
		clearCount = 2
	}
	clearValues := make([]vk.ClearValue, clearCount)
	clearValues[0].SetColor([]float32{0, 0, 0, 1})
	if rp.HasDepth {
		clearValues[1].SetDepthStencil(1, 0)
	}
	beginInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  rp.Handle,
		Framebuffer: fb.Handle,
		RenderArea:  vk.Rect2D{Extent: vk.Extent2D{Width: width, Height: height}},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}
	vk.CmdBeginRenderPass(cb.Handle, &beginInfo, vk.SubpassContentsInline)
	cb.State = gpu.CommandBufferStateInRenderPass
	return nil
}

func recordViewport(cb *gpu.CommandBuffer, offset [2]int32, shape [2]uint32) {
	viewport := vk.Viewport{
		X: float32(offset[0]), Y: float32(offset[1]),
		Width: float32(shape[0]), Height: float32(shape[1]),
		MinDepth: 0, MaxDepth: 1,
	}
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: offset[0], Y: offset[1]},
		Extent: vk.Extent2D{Width: shape[0], Height: shape[1]},
	}
	vk.CmdSetViewport(cb.Handle, 0, 1, []vk.Viewport{viewport})
	vk.CmdSetScissor(cb.Handle, 0, 1, []vk.Rect2D{scissor})
}

func recordEnd(cb *gpu.CommandBuffer, ts *Timestamps, imageIdx int) error {
	vk.CmdEndRenderPass(cb.Handle)
	cb.State = gpu.CommandBufferStateRecording
	if ts != nil {
		ts.writeEnd(cb.Handle, imageIdx)
	}
	return cb.End()
}
