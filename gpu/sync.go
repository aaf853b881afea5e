// Package gpu provides typed wrappers over Vulkan objects (L1): buffers,
// images, samplers, descriptor slots, pipelines, renderpasses,
// framebuffers, sync primitives and command-buffer recording helpers.
// This generalizes the teacher's single-purpose vulkan package into
// request-driven building blocks the renderer assembles per object.
package gpu

import (
	vk "github.com/goki/vulkan"

	"github.com/datoviz/datoviz-sub007/core"
	"github.com/datoviz/datoviz-sub007/host"
)

// Fence wraps a vk.Fence with the signaled-state bookkeeping the teacher's
// VulkanFence carries, so callers don't need to track it themselves.
type Fence struct {
	Handle     vk.Fence
	IsSignaled bool
}

func NewFence(h *host.Host, createSignaled bool) (*Fence, error) {
	f := &Fence{IsSignaled: createSignaled}
	info := vk.FenceCreateInfo{SType: vk.StructureTypeFenceCreateInfo}
	if createSignaled {
		info.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	var handle vk.Fence
	if res := vk.CreateFence(h.Device, &info, h.Allocator, &handle); res != vk.Success {
		return nil, core.NewErrorf(core.ErrorKindResourceExhausted, "vkCreateFence failed: %d", res)
	}
	f.Handle = handle
	return f, nil
}

// Wait blocks up to timeoutNs for the fence to signal. Returns
// core.ErrorKindTimeout on a timeout and core.ErrorKindDeviceLost if the
// device was lost while waiting (spec.md §7).
func (f *Fence) Wait(h *host.Host, timeoutNs uint64) error {
	if f.IsSignaled {
		return nil
	}
	result := vk.WaitForFences(h.Device, 1, []vk.Fence{f.Handle}, vk.True, timeoutNs)
	switch result {
	case vk.Success:
		f.IsSignaled = true
		return nil
	case vk.Timeout:
		return core.NewError(core.ErrorKindTimeout, nil)
	case vk.ErrorDeviceLost:
		return core.NewError(core.ErrorKindDeviceLost, nil)
	default:
		return core.NewErrorf(core.ErrorKindDeviceLost, "vkWaitForFences: unexpected result %d", result)
	}
}

func (f *Fence) Reset(h *host.Host) error {
	if !f.IsSignaled {
		return nil
	}
	if res := vk.ResetFences(h.Device, 1, []vk.Fence{f.Handle}); res != vk.Success {
		return core.NewErrorf(core.ErrorKindResourceExhausted, "vkResetFences failed: %d", res)
	}
	f.IsSignaled = false
	return nil
}

func (f *Fence) Destroy(h *host.Host) {
	if f.Handle != vk.NullFence {
		vk.DestroyFence(h.Device, f.Handle, h.Allocator)
		f.Handle = vk.NullFence
	}
	f.IsSignaled = false
}

// Semaphore wraps a vk.Semaphore.
type Semaphore struct {
	Handle vk.Semaphore
}

func NewSemaphore(h *host.Host) (*Semaphore, error) {
	info := vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}
	var handle vk.Semaphore
	if res := vk.CreateSemaphore(h.Device, &info, h.Allocator, &handle); res != vk.Success {
		return nil, core.NewErrorf(core.ErrorKindResourceExhausted, "vkCreateSemaphore failed: %d", res)
	}
	return &Semaphore{Handle: handle}, nil
}

func (s *Semaphore) Destroy(h *host.Host) {
	if s.Handle != vk.NullSemaphore {
		vk.DestroySemaphore(h.Device, s.Handle, h.Allocator)
		s.Handle = vk.NullSemaphore
	}
}

// SyncSet bundles the per-in-flight-frame sync primitives a canvas needs:
// one pair of semaphores and a fence per frame slot, plus a per-image
// "fence currently rendering this image" tracking array.
type SyncSet struct {
	ImageAvailable []*Semaphore
	RenderFinished []*Semaphore
	InFlightFences []*Fence
	ImagesInFlight []vk.Fence // aliases InFlightFences[*].Handle, indexed by image
}

const MaxFramesInFlight = 2

func NewSyncSet(h *host.Host, imageCount int) (*SyncSet, error) {
	s := &SyncSet{ImagesInFlight: make([]vk.Fence, imageCount)}
	for i := 0; i < MaxFramesInFlight; i++ {
		avail, err := NewSemaphore(h)
		if err != nil {
			return nil, err
		}
		finished, err := NewSemaphore(h)
		if err != nil {
			return nil, err
		}
		fence, err := NewFence(h, true)
		if err != nil {
			return nil, err
		}
		s.ImageAvailable = append(s.ImageAvailable, avail)
		s.RenderFinished = append(s.RenderFinished, finished)
		s.InFlightFences = append(s.InFlightFences, fence)
	}
	return s, nil
}

func (s *SyncSet) Destroy(h *host.Host) {
	for _, sem := range s.ImageAvailable {
		sem.Destroy(h)
	}
	for _, sem := range s.RenderFinished {
		sem.Destroy(h)
	}
	for _, f := range s.InFlightFences {
		f.Destroy(h)
	}
}
