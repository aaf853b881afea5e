package gpu

import (
	vk "github.com/goki/vulkan"

	"github.com/datoviz/datoviz-sub007/core"
	"github.com/datoviz/datoviz-sub007/host"
)

// Renderpass wraps a vk.RenderPass with a single color + optional depth
// attachment, generalizing the teacher's hard-coded world/UI renderpass
// pair into a single reusable constructor any canvas or board selects.
type Renderpass struct {
	Handle    vk.RenderPass
	HasDepth  bool
	ColorFmt  vk.Format
	DepthFmt  vk.Format
}

// NewRenderpass creates a renderpass with one color attachment (colorFmt,
// cleared+stored, transitioning to finalLayout) and, if hasDepth, a depth
// attachment (depthFmt, cleared, not stored).
func NewRenderpass(h *host.Host, colorFmt vk.Format, finalLayout vk.ImageLayout, hasDepth bool, depthFmt vk.Format) (*Renderpass, error) {
	attachments := []vk.AttachmentDescription{{
		Format:         colorFmt,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    finalLayout,
	}}
	colorRef := []vk.AttachmentReference{{Attachment: 0, Layout: vk.ImageLayoutColorAttachmentOptimal}}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments:    colorRef,
	}

	if hasDepth {
		attachments = append(attachments, vk.AttachmentDescription{
			Format:         depthFmt,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpDontCare,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
		})
		depthRef := vk.AttachmentReference{Attachment: 1, Layout: vk.ImageLayoutDepthStencilAttachmentOptimal}
		subpass.PDepthStencilAttachment = &depthRef
	}

	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: 0,
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
	}

	info := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}

	var handle vk.RenderPass
	if res := vk.CreateRenderPass(h.Device, &info, h.Allocator, &handle); res != vk.Success {
		return nil, core.NewErrorf(core.ErrorKindResourceExhausted, "vkCreateRenderPass failed: %d", res)
	}
	return &Renderpass{Handle: handle, HasDepth: hasDepth, ColorFmt: colorFmt, DepthFmt: depthFmt}, nil
}

func (r *Renderpass) Destroy(h *host.Host) {
	if r.Handle != vk.NullRenderPass {
		vk.DestroyRenderPass(h.Device, r.Handle, h.Allocator)
		r.Handle = vk.NullRenderPass
	}
}
