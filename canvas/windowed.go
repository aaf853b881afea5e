package canvas

import (
	"math"

	vk "github.com/goki/vulkan"

	"github.com/datoviz/datoviz-sub007/core"
	"github.com/datoviz/datoviz-sub007/gpu"
	"github.com/datoviz/datoviz-sub007/host"
)

// Windowed is a swapchain-backed Canvas, generalizing the teacher's
// VulkanSwapchain (fixed to one format-selection policy and one hardcoded
// world renderpass) into a reusable, resizable render target any number of
// windows can own.
type Windowed struct {
	id   core.ID
	host *host.Host

	surface vk.Surface
	format  vk.SurfaceFormat
	extent  vk.Extent2D
	handle  vk.Swapchain

	images       []*gpu.Image
	depth        *gpu.Image
	renderpass   *gpu.Renderpass
	framebuffers []*gpu.Framebuffer
	cmdBuffers   []*gpu.CommandBuffer

	sync         *gpu.SyncSet
	currentFrame int

	timestamps *Timestamps
}

// NewWindowed creates a swapchain sized to width x height against surface.
func NewWindowed(h *host.Host, id core.ID, surface vk.Surface, width, height uint32) (*Windowed, error) {
	w := &Windowed{id: id, host: h, surface: surface}
	if err := w.create(width, height); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Windowed) ID() core.ID                  { return w.id }
func (w *Windowed) ImageCount() int               { return len(w.images) }
func (w *Windowed) Extent() (uint32, uint32)      { return w.extent.Width, w.extent.Height }
func (w *Windowed) Renderpass() *gpu.Renderpass   { return w.renderpass }
func (w *Windowed) CommandBuffer(i int) *gpu.CommandBuffer { return w.cmdBuffers[i] }
func (w *Windowed) Framebuffer(i int) *gpu.Framebuffer     { return w.framebuffers[i] }
func (w *Windowed) Timestamps() *Timestamps                { return w.timestamps }

func (w *Windowed) create(width, height uint32) error {
	h := w.host

	var caps vk.SurfaceCapabilities
	if res := vk.GetPhysicalDeviceSurfaceCapabilities(h.PhysicalDevice, w.surface, &caps); res != vk.Success {
		return core.NewErrorf(core.ErrorKindUnsupportedFeature, "vkGetPhysicalDeviceSurfaceCapabilities failed: %d", res)
	}
	caps.Deref()

	var formatCount uint32
	vk.GetPhysicalDeviceSurfaceFormats(h.PhysicalDevice, w.surface, &formatCount, nil)
	formats := make([]vk.SurfaceFormat, formatCount)
	vk.GetPhysicalDeviceSurfaceFormats(h.PhysicalDevice, w.surface, &formatCount, formats)
	format := formats[0]
	for _, f := range formats {
		f.Deref()
		if f.Format == vk.FormatB8g8r8a8Unorm && f.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			format = f
			break
		}
	}
	format.Deref()
	w.format = format

	var presentModeCount uint32
	vk.GetPhysicalDeviceSurfacePresentModes(h.PhysicalDevice, w.surface, &presentModeCount, nil)
	presentModes := make([]vk.PresentMode, presentModeCount)
	vk.GetPhysicalDeviceSurfacePresentModes(h.PhysicalDevice, w.surface, &presentModeCount, presentModes)
	presentMode := vk.PresentModeFifo
	for _, m := range presentModes {
		if m == vk.PresentModeMailbox {
			presentMode = m
			break
		}
	}

	extent := vk.Extent2D{Width: width, Height: height}
	if caps.CurrentExtent.Width != math.MaxUint32 {
		extent = caps.CurrentExtent
	}
	extent.Width = clampU32(extent.Width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width)
	extent.Height = clampU32(extent.Height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height)
	w.extent = extent

	imageCount := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && imageCount > caps.MaxImageCount {
		imageCount = caps.MaxImageCount
	}

	createInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          w.surface,
		MinImageCount:    imageCount,
		ImageFormat:      format.Format,
		ImageColorSpace:  format.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      presentMode,
		Clipped:          vk.True,
	}
	if h.GraphicsQueueIndex != h.PresentQueueIndex {
		createInfo.ImageSharingMode = vk.SharingModeConcurrent
		createInfo.QueueFamilyIndexCount = 2
		createInfo.PQueueFamilyIndices = []uint32{h.GraphicsQueueIndex, h.PresentQueueIndex}
	} else {
		createInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	var handle vk.Swapchain
	if res := vk.CreateSwapchain(h.Device, &createInfo, h.Allocator, &handle); res != vk.Success {
		return core.NewErrorf(core.ErrorKindResourceExhausted, "vkCreateSwapchain failed: %d", res)
	}
	w.handle = handle

	var n uint32
	vk.GetSwapchainImages(h.Device, handle, &n, nil)
	rawImages := make([]vk.Image, n)
	vk.GetSwapchainImages(h.Device, handle, &n, rawImages)

	w.images = make([]*gpu.Image, n)
	for i, raw := range rawImages {
		viewInfo := vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    raw,
			ViewType: vk.ImageViewType2d,
			Format:   format.Format,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LevelCount: 1,
				LayerCount: 1,
			},
		}
		var view vk.ImageView
		if res := vk.CreateImageView(h.Device, &viewInfo, h.Allocator, &view); res != vk.Success {
			return core.NewErrorf(core.ErrorKindResourceExhausted, "vkCreateImageView failed: %d", res)
		}
		w.images[i] = gpu.WrapSwapchainImage(raw, view, extent.Width, extent.Height, format.Format)
	}

	depthFmt, err := pickDepthFormat(h)
	if err != nil {
		return err
	}
	depth, err := gpu.NewImage(h, 2, extent.Width, extent.Height, 1, depthFmt,
		vk.ImageTilingOptimal, vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		true, vk.ImageAspectFlags(vk.ImageAspectDepthBit))
	if err != nil {
		return err
	}
	w.depth = depth

	rp, err := gpu.NewRenderpass(h, format.Format, vk.ImageLayoutPresentSrc, true, depthFmt)
	if err != nil {
		return err
	}
	w.renderpass = rp

	w.framebuffers = make([]*gpu.Framebuffer, n)
	w.cmdBuffers = make([]*gpu.CommandBuffer, n)
	for i, img := range w.images {
		fb, err := gpu.NewFramebuffer(h, rp, extent.Width, extent.Height, []vk.ImageView{img.View, depth.View})
		if err != nil {
			return err
		}
		w.framebuffers[i] = fb
		cb, err := gpu.NewCommandBuffer(h, h.GraphicsCommandPool, true)
		if err != nil {
			return err
		}
		w.cmdBuffers[i] = cb
	}

	sync, err := gpu.NewSyncSet(h, int(n))
	if err != nil {
		return err
	}
	w.sync = sync

	ts, err := newTimestamps(h, int(n))
	if err != nil {
		return err
	}
	w.timestamps = ts

	core.LogInfo("windowed canvas created (%dx%d, %d images)", extent.Width, extent.Height, n)
	return nil
}

func (w *Windowed) destroySwapchainObjects() {
	h := w.host
	for _, fb := range w.framebuffers {
		fb.Destroy(h)
	}
	for _, cb := range w.cmdBuffers {
		cb.Free(h)
	}
	if w.renderpass != nil {
		w.renderpass.Destroy(h)
	}
	if w.depth != nil {
		w.depth.Destroy(h)
	}
	for _, img := range w.images {
		img.Destroy(h)
	}
	if w.sync != nil {
		w.sync.Destroy(h)
	}
	if w.timestamps != nil {
		w.timestamps.destroy(h)
	}
	if w.handle != vk.NullSwapchain {
		vk.DestroySwapchain(h.Device, w.handle, h.Allocator)
		w.handle = vk.NullSwapchain
	}
}

// Recreate tears down and rebuilds the swapchain at the new extent
// (resize-to-same-extent is a true no-op, SPEC_FULL.md §7 Open Question 1).
func (w *Windowed) Recreate(width, height uint32) error {
	if width == w.extent.Width && height == w.extent.Height {
		return nil
	}
	if err := w.host.WaitIdle(); err != nil {
		return err
	}
	var history []float64
	if w.timestamps != nil {
		history = w.timestamps.Samples()
	}
	w.destroySwapchainObjects()
	if err := w.create(width, height); err != nil {
		return err
	}
	for _, s := range history {
		w.timestamps.history.Push(s)
	}
	return nil
}

// AcquireNextImage blocks on the in-flight fence for the current frame slot
// then acquires the next presentable image index.
func (w *Windowed) AcquireNextImage(timeoutNs uint64) (uint32, error) {
	fence := w.sync.InFlightFences[w.currentFrame]
	if err := fence.Wait(w.host, timeoutNs); err != nil {
		return 0, err
	}

	var imageIndex uint32
	result := vk.AcquireNextImage(w.host.Device, w.handle, timeoutNs,
		w.sync.ImageAvailable[w.currentFrame].Handle, nil, &imageIndex)
	if result == vk.ErrorOutOfDate {
		return 0, core.NewError(core.ErrorKindSwapchainOutOfDate, nil)
	}
	if result != vk.Success && result != vk.Suboptimal {
		return 0, core.NewErrorf(core.ErrorKindDeviceLost, "vkAcquireNextImage failed: %d", result)
	}

	if w.sync.ImagesInFlight[imageIndex] != nil {
		vk.WaitForFences(w.host.Device, 1, []vk.Fence{w.sync.ImagesInFlight[imageIndex]}, vk.True, math.MaxUint64)
	}
	w.sync.ImagesInFlight[imageIndex] = fence.Handle
	return imageIndex, nil
}

// Submit submits the recorded command buffer for imageIdx, signaling
// RenderFinished once done.
func (w *Windowed) Submit(imageIdx uint32) error {
	fence := w.sync.InFlightFences[w.currentFrame]
	if err := fence.Reset(w.host); err != nil {
		return err
	}
	waitStages := []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)}
	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{w.sync.ImageAvailable[w.currentFrame].Handle},
		PWaitDstStageMask:    waitStages,
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{w.cmdBuffers[imageIdx].Handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{w.sync.RenderFinished[w.currentFrame].Handle},
	}
	if res := vk.QueueSubmit(w.host.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, fence.Handle); res != vk.Success {
		return core.NewErrorf(core.ErrorKindDeviceLost, "vkQueueSubmit failed: %d", res)
	}
	w.cmdBuffers[imageIdx].MarkSubmitted()
	fence.IsSignaled = false
	return nil
}

// Present presents imageIdx, returning core.ErrorKindSwapchainOutOfDate if
// the caller must recreate the swapchain before the next acquire.
func (w *Windowed) Present(imageIdx uint32) error {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{w.sync.RenderFinished[w.currentFrame].Handle},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{w.handle},
		PImageIndices:      []uint32{imageIdx},
	}
	result := vk.QueuePresent(w.host.PresentQueue, &presentInfo)
	w.currentFrame = (w.currentFrame + 1) % gpu.MaxFramesInFlight
	if result == vk.ErrorOutOfDate || result == vk.Suboptimal {
		return core.NewError(core.ErrorKindSwapchainOutOfDate, nil)
	}
	if result != vk.Success {
		return core.NewErrorf(core.ErrorKindDeviceLost, "vkQueuePresent failed: %d", result)
	}
	return nil
}

// CmdReset implements recorder.Target.
func (w *Windowed) CmdReset(imageIdx int) error {
	w.cmdBuffers[imageIdx].Reset()
	return nil
}

// CanvasBegin implements recorder.Target.
func (w *Windowed) CanvasBegin(imageIdx int) error {
	return recordBegin(w.cmdBuffers[imageIdx], w.renderpass, w.framebuffers[imageIdx], w.extent.Width, w.extent.Height, w.timestamps, imageIdx)
}

// CanvasViewport implements recorder.Target.
func (w *Windowed) CanvasViewport(imageIdx int, offset [2]int32, shape [2]uint32) error {
	recordViewport(w.cmdBuffers[imageIdx], offset, shape)
	return nil
}

// CanvasEnd implements recorder.Target.
func (w *Windowed) CanvasEnd(imageIdx int) error {
	return recordEnd(w.cmdBuffers[imageIdx], w.timestamps, imageIdx)
}

// CollectTimestamps polls outstanding GPU timestamp queries and appends any
// now-ready samples into the Timestamps history. Call once per frame.
func (w *Windowed) CollectTimestamps() {
	if w.timestamps != nil {
		w.timestamps.Collect(w.host)
	}
}

func (w *Windowed) Destroy() {
	w.destroySwapchainObjects()
}

func clampU32(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
