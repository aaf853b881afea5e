package gpu

import (
	vk "github.com/goki/vulkan"

	"github.com/datoviz/datoviz-sub007/core"
	"github.com/datoviz/datoviz-sub007/host"
)

// Sampler wraps filter + address-mode state (spec.md §3.4).
type Sampler struct {
	Handle vk.Sampler
}

func NewSampler(h *host.Host, filter vk.Filter, addressMode vk.SamplerAddressMode) (*Sampler, error) {
	info := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               filter,
		MinFilter:               filter,
		AddressModeU:            addressMode,
		AddressModeV:            addressMode,
		AddressModeW:            addressMode,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
	}
	var handle vk.Sampler
	if res := vk.CreateSampler(h.Device, &info, h.Allocator, &handle); res != vk.Success {
		return nil, core.NewErrorf(core.ErrorKindResourceExhausted, "vkCreateSampler failed: %d", res)
	}
	return &Sampler{Handle: handle}, nil
}

func (s *Sampler) Destroy(h *host.Host) {
	if s.Handle != vk.NullSampler {
		vk.DestroySampler(h.Device, s.Handle, h.Allocator)
		s.Handle = vk.NullSampler
	}
}
