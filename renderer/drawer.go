package renderer

import (
	vk "github.com/goki/vulkan"

	"github.com/datoviz/datoviz-sub007/core"
)

// BindPipeline implements recorder.Drawer: binds pipeID's pipeline, its
// vertex buffers and (if present) its index buffer onto the active
// canvas's command buffer for imageIdx.
func (r *Renderer) BindPipeline(imageIdx int, pipeID core.ID) error {
	if r.activeCanvas == nil {
		return core.NewErrorf(core.ErrorKindInvalidAction, "bind pipeline %d: no active canvas", pipeID)
	}
	g, ok := r.graphics.Get(pipeID)
	if !ok || g.pipeline == nil {
		return core.NewErrorf(core.ErrorKindInvalidId, "bind pipeline: unbaked or unknown graphics %d", pipeID)
	}
	cb := r.activeCanvas.CommandBuffer(imageIdx).Handle
	vk.CmdBindPipeline(cb, vk.PipelineBindPointGraphics, g.pipeline.Handle)

	if g.descriptors != nil && len(g.descriptors.Sets) > 0 {
		sets := []vk.DescriptorSet{g.descriptors.Sets[0]}
		vk.CmdBindDescriptorSets(cb, vk.PipelineBindPointGraphics, g.pipeline.Layout, 0, uint32(len(sets)), sets, 0, nil)
	}

	if len(g.vertexDats) > 0 {
		maxSlot := uint32(0)
		for slot := range g.vertexDats {
			if slot > maxSlot {
				maxSlot = slot
			}
		}
		buffers := make([]vk.Buffer, maxSlot+1)
		offsets := make([]vk.DeviceSize, maxSlot+1)
		for slot, datID := range g.vertexDats {
			buf, ok := r.dats.Get(datID)
			if !ok {
				return core.NewErrorf(core.ErrorKindInvalidId, "bind pipeline %d: unknown vertex dat %d at slot %d", pipeID, datID, slot)
			}
			buffers[slot] = buf.Handle
		}
		vk.CmdBindVertexBuffers(cb, 0, uint32(len(buffers)), buffers, offsets)
	}

	if g.indexDatID != core.NoID {
		buf, ok := r.dats.Get(g.indexDatID)
		if !ok {
			return core.NewErrorf(core.ErrorKindInvalidId, "bind pipeline %d: unknown index dat %d", pipeID, g.indexDatID)
		}
		vk.CmdBindIndexBuffer(cb, buf.Handle, 0, vk.IndexTypeUint32)
	}
	return nil
}

// Draw implements recorder.Drawer.
func (r *Renderer) Draw(imageIdx int, firstVertex, vertexCount, firstInstance, instanceCount uint32) error {
	cb := r.activeCanvas.CommandBuffer(imageIdx).Handle
	vk.CmdDraw(cb, vertexCount, instanceCount, firstVertex, firstInstance)
	return nil
}

// DrawIndexed implements recorder.Drawer.
func (r *Renderer) DrawIndexed(imageIdx int, firstIndex uint32, vertexOffset int32, indexCount, firstInstance, instanceCount uint32) error {
	cb := r.activeCanvas.CommandBuffer(imageIdx).Handle
	vk.CmdDrawIndexed(cb, indexCount, instanceCount, firstIndex, vertexOffset, firstInstance)
	return nil
}

// DrawIndirect implements recorder.Drawer.
func (r *Renderer) DrawIndirect(imageIdx int, indirectDatID core.ID) error {
	buf, ok := r.dats.Get(indirectDatID)
	if !ok {
		return core.NewErrorf(core.ErrorKindInvalidId, "draw indirect: unknown dat %d", indirectDatID)
	}
	cb := r.activeCanvas.CommandBuffer(imageIdx).Handle
	vk.CmdDrawIndirect(cb, buf.Handle, 0, 1, 0)
	return nil
}

// DrawIndexedIndirect implements recorder.Drawer.
func (r *Renderer) DrawIndexedIndirect(imageIdx int, indirectDatID core.ID) error {
	buf, ok := r.dats.Get(indirectDatID)
	if !ok {
		return core.NewErrorf(core.ErrorKindInvalidId, "draw indexed indirect: unknown dat %d", indirectDatID)
	}
	cb := r.activeCanvas.CommandBuffer(imageIdx).Handle
	vk.CmdDrawIndexedIndirect(cb, buf.Handle, 0, 1, 0)
	return nil
}
