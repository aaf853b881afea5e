package gpu

import (
	vk "github.com/goki/vulkan"

	"github.com/datoviz/datoviz-sub007/core"
	"github.com/datoviz/datoviz-sub007/host"
)

// Framebuffer pairs a renderpass with the image views attached to it,
// generalizing the teacher's FramebufferCreate to an arbitrary attachment
// count.
type Framebuffer struct {
	Handle      vk.Framebuffer
	Attachments []vk.ImageView
	Renderpass  *Renderpass
}

func NewFramebuffer(h *host.Host, rp *Renderpass, width, height uint32, attachments []vk.ImageView) (*Framebuffer, error) {
	info := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      rp.Handle,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		Width:           width,
		Height:          height,
		Layers:          1,
	}
	var handle vk.Framebuffer
	if res := vk.CreateFramebuffer(h.Device, &info, h.Allocator, &handle); res != vk.Success {
		return nil, core.NewErrorf(core.ErrorKindResourceExhausted, "vkCreateFramebuffer failed: %d", res)
	}
	return &Framebuffer{Handle: handle, Attachments: attachments, Renderpass: rp}, nil
}

func (fb *Framebuffer) Destroy(h *host.Host) {
	if fb.Handle != vk.NullFramebuffer {
		vk.DestroyFramebuffer(h.Device, fb.Handle, h.Allocator)
		fb.Handle = vk.NullFramebuffer
	}
	fb.Attachments = nil
}
