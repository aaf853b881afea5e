package gpu

import (
	vk "github.com/goki/vulkan"

	"github.com/datoviz/datoviz-sub007/core"
	"github.com/datoviz/datoviz-sub007/host"
)

// Image is a 1D/2D/3D image array, generalizing the teacher's
// ImageCreate/ImageViewCreate pair (fixed at 2D, 4 mips) into the
// dims/format/tiling/usage/aspect tuple spec.md §3.4 names.
type Image struct {
	Handle vk.Image
	Memory vk.DeviceMemory
	View   vk.ImageView
	Width  uint32
	Height uint32
	Depth  uint32
	Format vk.Format
	// Owned is false for a swapchain view, which the swapchain destroys.
	Owned bool
}

// NewImage allocates an image of the given dims (1, 2 or 3), usage and
// aspect; createView controls whether an ImageView is also created.
func NewImage(h *host.Host, dims uint8, width, height, depth uint32, format vk.Format, tiling vk.ImageTiling, usage vk.ImageUsageFlags, createView bool, aspect vk.ImageAspectFlags) (*Image, error) {
	imgType := vk.ImageType1d
	switch dims {
	case 2:
		imgType = vk.ImageType2d
	case 3:
		imgType = vk.ImageType3d
	}
	if depth == 0 {
		depth = 1
	}

	img := &Image{Width: width, Height: height, Depth: depth, Format: format, Owned: true}
	info := vk.ImageCreateInfo{
		SType:         vk.StructureTypeImageCreateInfo,
		ImageType:     imgType,
		Extent:        vk.Extent3D{Width: width, Height: height, Depth: depth},
		MipLevels:     1,
		ArrayLayers:   1,
		Format:        format,
		Tiling:        tiling,
		InitialLayout: vk.ImageLayoutUndefined,
		Usage:         usage,
		Samples:       vk.SampleCount1Bit,
		SharingMode:   vk.SharingModeExclusive,
	}
	if res := vk.CreateImage(h.Device, &info, h.Allocator, &img.Handle); res != vk.Success {
		return nil, core.NewErrorf(core.ErrorKindResourceExhausted, "vkCreateImage failed: %d", res)
	}

	var reqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(h.Device, img.Handle, &reqs)
	reqs.Deref()
	memIndex, err := h.FindMemoryIndex(reqs.MemoryTypeBits, vk.MemoryPropertyDeviceLocalBit)
	if err != nil {
		vk.DestroyImage(h.Device, img.Handle, h.Allocator)
		return nil, err
	}
	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  reqs.Size,
		MemoryTypeIndex: uint32(memIndex),
	}
	if res := vk.AllocateMemory(h.Device, &allocInfo, h.Allocator, &img.Memory); res != vk.Success {
		vk.DestroyImage(h.Device, img.Handle, h.Allocator)
		return nil, core.NewErrorf(core.ErrorKindResourceExhausted, "vkAllocateMemory failed: %d", res)
	}
	if res := vk.BindImageMemory(h.Device, img.Handle, img.Memory, 0); res != vk.Success {
		return nil, core.NewErrorf(core.ErrorKindResourceExhausted, "vkBindImageMemory failed: %d", res)
	}

	if createView {
		if err := img.createView(h, format, aspect); err != nil {
			return nil, err
		}
	}
	return img, nil
}

// WrapSwapchainImage wraps a non-owned swapchain image + its view, so the
// canvas's per-image operations treat swapchain and offscreen images
// uniformly (spec.md §3.4: "may be a swapchain view, not owned").
func WrapSwapchainImage(handle vk.Image, view vk.ImageView, width, height uint32, format vk.Format) *Image {
	return &Image{Handle: handle, View: view, Width: width, Height: height, Depth: 1, Format: format, Owned: false}
}

func (img *Image) createView(h *host.Host, format vk.Format, aspect vk.ImageAspectFlags) error {
	info := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    img.Handle,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     aspect,
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}
	if res := vk.CreateImageView(h.Device, &info, h.Allocator, &img.View); res != vk.Success {
		return core.NewErrorf(core.ErrorKindResourceExhausted, "vkCreateImageView failed: %d", res)
	}
	return nil
}

func (img *Image) Destroy(h *host.Host) {
	if img.View != vk.NullImageView {
		vk.DestroyImageView(h.Device, img.View, h.Allocator)
		img.View = vk.NullImageView
	}
	if !img.Owned {
		return
	}
	if img.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(h.Device, img.Memory, h.Allocator)
		img.Memory = vk.NullDeviceMemory
	}
	if img.Handle != vk.NullImage {
		vk.DestroyImage(h.Device, img.Handle, h.Allocator)
		img.Handle = vk.NullImage
	}
}
