package gpu

import (
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/datoviz/datoviz-sub007/core"
	"github.com/datoviz/datoviz-sub007/host"
	"github.com/datoviz/datoviz-sub007/request"
)

// Buffer is a raw Vulkan buffer plus its backing memory, generalizing the
// teacher's VulkanBuffer to the five buffer types spec.md §3.4 names.
type Buffer struct {
	Type     request.BufferType
	Handle   vk.Buffer
	Memory   vk.DeviceMemory
	Size     uint64
	Mapped   unsafe.Pointer
	MemIndex int32
}

func usageFlags(t request.BufferType) vk.BufferUsageFlagBits {
	base := vk.BufferUsageTransferSrcBit | vk.BufferUsageTransferDstBit
	switch t {
	case request.BufferTypeVertex:
		return base | vk.BufferUsageVertexBufferBit
	case request.BufferTypeIndex:
		return base | vk.BufferUsageIndexBufferBit
	case request.BufferTypeStorage:
		return base | vk.BufferUsageStorageBufferBit
	case request.BufferTypeUniform:
		return base | vk.BufferUsageUniformBufferBit
	case request.BufferTypeStaging:
		return vk.BufferUsageTransferSrcBit
	default:
		return base
	}
}

// NewBuffer allocates a Vulkan buffer of `size` bytes for the given type,
// choosing host-visible+coherent memory when mappable is requested and
// device-local memory otherwise — the mappable/non-mappable split spec.md
// §3.6 describes for Dat lifecycles.
func NewBuffer(h *host.Host, bufType request.BufferType, size uint64, mappable bool) (*Buffer, error) {
	if size == 0 {
		size = 1 // Vulkan forbids zero-size buffers; keep a 1-byte floor.
	}
	info := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       vk.BufferUsageFlags(usageFlags(bufType)),
		SharingMode: vk.SharingModeExclusive,
	}
	var handle vk.Buffer
	if res := vk.CreateBuffer(h.Device, &info, h.Allocator, &handle); res != vk.Success {
		return nil, core.NewErrorf(core.ErrorKindResourceExhausted, "vkCreateBuffer failed: %d", res)
	}

	var reqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(h.Device, handle, &reqs)
	reqs.Deref()

	propFlags := vk.MemoryPropertyDeviceLocalBit
	if mappable {
		propFlags = vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit
	}
	memIndex, err := h.FindMemoryIndex(reqs.MemoryTypeBits, propFlags)
	if err != nil {
		vk.DestroyBuffer(h.Device, handle, h.Allocator)
		return nil, err
	}

	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  reqs.Size,
		MemoryTypeIndex: uint32(memIndex),
	}
	var memory vk.DeviceMemory
	if res := vk.AllocateMemory(h.Device, &allocInfo, h.Allocator, &memory); res != vk.Success {
		vk.DestroyBuffer(h.Device, handle, h.Allocator)
		return nil, core.NewErrorf(core.ErrorKindResourceExhausted, "vkAllocateMemory failed: %d", res)
	}
	if res := vk.BindBufferMemory(h.Device, handle, memory, 0); res != vk.Success {
		return nil, core.NewErrorf(core.ErrorKindResourceExhausted, "vkBindBufferMemory failed: %d", res)
	}

	return &Buffer{Type: bufType, Handle: handle, Memory: memory, Size: uint64(reqs.Size), MemIndex: memIndex}, nil
}

// Upload copies data into the buffer at byteOffset by mapping its memory,
// so the buffer must have been created with mappable=true. The renderer
// creates every Dat that way; Tex uploads go through a mappable staging
// Buffer and a buffer-to-image copy.
func (b *Buffer) Upload(h *host.Host, byteOffset uint64, data []byte) error {
	var ptr unsafe.Pointer
	if res := vk.MapMemory(h.Device, b.Memory, vk.DeviceSize(byteOffset), vk.DeviceSize(len(data)), 0, &ptr); res != vk.Success {
		return core.NewErrorf(core.ErrorKindResourceExhausted, "vkMapMemory failed: %d", res)
	}
	vk.Memcopy(ptr, data)
	vk.UnmapMemory(h.Device, b.Memory)
	return nil
}

// Map permanently maps the buffer's memory for mappable dats that keep a
// pointer for the object lifetime (spec.md §3.6).
func (b *Buffer) Map(h *host.Host) error {
	var ptr unsafe.Pointer
	if res := vk.MapMemory(h.Device, b.Memory, 0, vk.DeviceSize(b.Size), 0, &ptr); res != vk.Success {
		return core.NewErrorf(core.ErrorKindResourceExhausted, "vkMapMemory failed: %d", res)
	}
	b.Mapped = ptr
	return nil
}

func (b *Buffer) Unmap(h *host.Host) {
	if b.Mapped != nil {
		vk.UnmapMemory(h.Device, b.Memory)
		b.Mapped = nil
	}
}

func (b *Buffer) Destroy(h *host.Host) {
	if b.Handle != vk.NullBuffer {
		vk.DestroyBuffer(h.Device, b.Handle, h.Allocator)
		b.Handle = vk.NullBuffer
	}
	if b.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(h.Device, b.Memory, h.Allocator)
		b.Memory = vk.NullDeviceMemory
	}
}
