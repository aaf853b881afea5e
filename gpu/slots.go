package gpu

import (
	vk "github.com/goki/vulkan"

	"github.com/datoviz/datoviz-sub007/core"
	"github.com/datoviz/datoviz-sub007/host"
)

// Slots is an ordered descriptor-set layout plus push-constant ranges
// (spec.md §3.4).
type Slots struct {
	Layout       vk.DescriptorSetLayout
	Bindings     []vk.DescriptorSetLayoutBinding
	PushConstant []vk.PushConstantRange
}

// NewSlots builds a descriptor set layout from bindings (type + stage +
// binding index, one entry per descriptor).
func NewSlots(h *host.Host, bindings []vk.DescriptorSetLayoutBinding, pushConstants []vk.PushConstantRange) (*Slots, error) {
	info := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}
	var layout vk.DescriptorSetLayout
	if res := vk.CreateDescriptorSetLayout(h.Device, &info, h.Allocator, &layout); res != vk.Success {
		return nil, core.NewErrorf(core.ErrorKindResourceExhausted, "vkCreateDescriptorSetLayout failed: %d", res)
	}
	return &Slots{Layout: layout, Bindings: bindings, PushConstant: pushConstants}, nil
}

func (s *Slots) Destroy(h *host.Host) {
	if s.Layout != vk.NullDescriptorSetLayout {
		vk.DestroyDescriptorSetLayout(h.Device, s.Layout, h.Allocator)
		s.Layout = vk.NullDescriptorSetLayout
	}
}

// Descriptors holds up to N parallel descriptor sets (N = swapchain image
// count) bound to a Slots layout, each carrying per-slot bindings.
type Descriptors struct {
	Pool vk.DescriptorPool
	Sets []vk.DescriptorSet
}

// NewDescriptors allocates `count` descriptor sets from a freshly-created
// pool sized for slots.Bindings.
func NewDescriptors(h *host.Host, slots *Slots, count int) (*Descriptors, error) {
	poolSizes := make([]vk.DescriptorPoolSize, 0, len(slots.Bindings))
	for _, b := range slots.Bindings {
		poolSizes = append(poolSizes, vk.DescriptorPoolSize{
			Type:            b.DescriptorType,
			DescriptorCount: uint32(count),
		})
	}
	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes:    poolSizes,
		MaxSets:       uint32(count),
	}
	var pool vk.DescriptorPool
	if res := vk.CreateDescriptorPool(h.Device, &poolInfo, h.Allocator, &pool); res != vk.Success {
		return nil, core.NewErrorf(core.ErrorKindResourceExhausted, "vkCreateDescriptorPool failed: %d", res)
	}

	layouts := make([]vk.DescriptorSetLayout, count)
	for i := range layouts {
		layouts[i] = slots.Layout
	}
	allocInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     pool,
		DescriptorSetCount: uint32(count),
		PSetLayouts:        layouts,
	}
	sets := make([]vk.DescriptorSet, count)
	if res := vk.AllocateDescriptorSets(h.Device, &allocInfo, &sets[0]); res != vk.Success {
		vk.DestroyDescriptorPool(h.Device, pool, h.Allocator)
		return nil, core.NewErrorf(core.ErrorKindResourceExhausted, "vkAllocateDescriptorSets failed: %d", res)
	}
	return &Descriptors{Pool: pool, Sets: sets}, nil
}

// BindBuffer writes a buffer-backed binding into every descriptor set.
func (d *Descriptors) BindBuffer(h *host.Host, bindingIdx uint32, descType vk.DescriptorType, buf *Buffer, offset, size uint64) {
	for _, set := range d.Sets {
		bufferInfo := vk.DescriptorBufferInfo{Buffer: buf.Handle, Offset: vk.DeviceSize(offset), Range: vk.DeviceSize(size)}
		write := vk.WriteDescriptorSet{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      bindingIdx,
			DescriptorCount: 1,
			DescriptorType:  descType,
			PBufferInfo:     []vk.DescriptorBufferInfo{bufferInfo},
		}
		vk.UpdateDescriptorSets(h.Device, 1, []vk.WriteDescriptorSet{write}, 0, nil)
	}
}

// BindImage writes an image+sampler binding into every descriptor set.
func (d *Descriptors) BindImage(h *host.Host, bindingIdx uint32, img *Image, sampler *Sampler, layout vk.ImageLayout) {
	for _, set := range d.Sets {
		imageInfo := vk.DescriptorImageInfo{Sampler: sampler.Handle, ImageView: img.View, ImageLayout: layout}
		write := vk.WriteDescriptorSet{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      bindingIdx,
			DescriptorCount: 1,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			PImageInfo:      []vk.DescriptorImageInfo{imageInfo},
		}
		vk.UpdateDescriptorSets(h.Device, 1, []vk.WriteDescriptorSet{write}, 0, nil)
	}
}

func (d *Descriptors) Destroy(h *host.Host) {
	if d.Pool != vk.NullDescriptorPool {
		vk.DestroyDescriptorPool(h.Device, d.Pool, h.Allocator)
		d.Pool = vk.NullDescriptorPool
	}
}
