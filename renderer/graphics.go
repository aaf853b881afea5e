package renderer

import (
	vk "github.com/goki/vulkan"

	"github.com/datoviz/datoviz-sub007/core"
	"github.com/datoviz/datoviz-sub007/gpu"
	"github.com/datoviz/datoviz-sub007/request"
)

// GraphicsObject tracks a graphics pipeline's declared vertex layout and
// resolved bindings until a `set graphics` request bakes it into a
// gpu.GraphicsPipeline (spec.md §3.4: bindings/attributes are declared
// before the fixed-function state that depends on them is fixed).
type GraphicsObject struct {
	shaderID core.ID
	slotsID  core.ID
	canvasID core.ID

	bindings   []vk.VertexInputBindingDescription
	attributes []vk.VertexInputAttributeDescription

	vertexDats  map[uint32]core.ID
	indexDatID  core.ID
	descriptors *gpu.Descriptors

	state    gpu.GraphicsState
	pipeline *gpu.GraphicsPipeline
}

// ComputeObject mirrors GraphicsObject for the single-stage compute pipeline.
type ComputeObject struct {
	shaderID    core.ID
	slotsID     core.ID
	descriptors *gpu.Descriptors
	pipeline    *gpu.ComputePipeline
}

// newDescriptors resolves slotsID to its Slots layout and allocates a
// single descriptor set for it, or returns (nil, nil) if slotsID is unset —
// a graphics/compute object that only uses push constants declares no
// slots at all. One set per object rather than one per swapchain image is
// a deliberate simplification (DESIGN.md); it means a descriptor bind
// written this frame is visible to a command buffer still in flight from
// last frame, acceptable since Dat/Tex contents themselves carry no such
// double-buffering guarantee either.
func (r *Renderer) newDescriptors(slotsID core.ID) (*gpu.Descriptors, error) {
	if slotsID == core.NoID {
		return nil, nil
	}
	slots, ok := r.slotsObjs.Get(slotsID)
	if !ok {
		return nil, core.NewErrorf(core.ErrorKindInvalidId, "unknown slots %d", slotsID)
	}
	return gpu.NewDescriptors(r.host, slots, 1)
}

func (r *Renderer) createGraphics(req request.Request) error {
	descriptors, err := r.newDescriptors(req.Content.SlotsID)
	if err != nil {
		return core.NewErrorf(core.ErrorKindInvalidId, "create graphics %d: %v", req.ID, err)
	}
	r.graphics.Set(req.ID, &GraphicsObject{
		shaderID:    req.Content.ShaderID,
		slotsID:     req.Content.SlotsID,
		vertexDats:  make(map[uint32]core.ID),
		indexDatID:  core.NoID,
		descriptors: descriptors,
		state:       gpu.DefaultGraphicsState(),
	})
	return nil
}

func (r *Renderer) createCompute(req request.Request) error {
	descriptors, err := r.newDescriptors(req.Content.SlotsID)
	if err != nil {
		return core.NewErrorf(core.ErrorKindInvalidId, "create compute %d: %v", req.ID, err)
	}
	r.computes.Set(req.ID, &ComputeObject{
		shaderID:    req.Content.ShaderID,
		slotsID:     req.Content.SlotsID,
		descriptors: descriptors,
	})
	return nil
}

// bindDescriptor routes a uniform/storage/sampler bind into descriptors,
// validating the target dat's own BufferType against the requested kind
// (spec.md §3.5: "the renderer must reject mismatches").
func (r *Renderer) bindDescriptor(id core.ID, descriptors *gpu.Descriptors, req request.Request) error {
	if descriptors == nil {
		return core.NewErrorf(core.ErrorKindInvalidAction, "bind %d: no descriptor slots declared", id)
	}
	switch req.Content.BindKind {
	case request.BindKindBuffer:
		buf, ok := r.dats.Get(req.Content.BindDatID)
		if !ok {
			return core.NewErrorf(core.ErrorKindInvalidId, "bind %d: unknown dat %d", id, req.Content.BindDatID)
		}
		var descType vk.DescriptorType
		switch buf.Type {
		case request.BufferTypeUniform:
			descType = vk.DescriptorTypeUniformBuffer
		case request.BufferTypeStorage:
			descType = vk.DescriptorTypeStorageBuffer
		default:
			return core.NewErrorf(core.ErrorKindInvalidAction,
				"bind %d: dat %d has buffer type %d, want uniform or storage", id, req.Content.BindDatID, buf.Type)
		}
		descriptors.BindBuffer(r.host, req.Content.BindSlot, descType, buf, 0, buf.Size)
		return nil
	case request.BindKindSampler:
		tex, ok := r.texs.Get(req.Content.BindTexID)
		if !ok {
			return core.NewErrorf(core.ErrorKindInvalidId, "bind %d: unknown tex %d", id, req.Content.BindTexID)
		}
		samp, ok := r.samplers.Get(req.Content.BindSamplerID)
		if !ok {
			return core.NewErrorf(core.ErrorKindInvalidId, "bind %d: unknown sampler %d", id, req.Content.BindSamplerID)
		}
		descriptors.BindImage(r.host, req.Content.BindSlot, tex, samp, vk.ImageLayoutShaderReadOnlyOptimal)
		return nil
	default:
		return core.NewErrorf(core.ErrorKindInvalidAction, "bind %d: kind %s is not a descriptor bind", id, req.Content.BindKind)
	}
}

// bindGraphics attaches a vertex dat, the index dat, or a descriptor
// binding to graphicsID, dispatching on Content.BindKind (spec.md's `bind`
// action / SetVertex, SetIndex, SetBinding, SetSampler constructors).
func (r *Renderer) bindGraphics(req request.Request) error {
	g, ok := r.graphics.Get(req.ID)
	if !ok {
		return core.NewErrorf(core.ErrorKindInvalidId, "bind graphics: unknown id %d", req.ID)
	}
	switch req.Content.BindKind {
	case request.BindKindVertex:
		buf, ok := r.dats.Get(req.Content.BindDatID)
		if !ok {
			return core.NewErrorf(core.ErrorKindInvalidId, "bind graphics %d: unknown vertex dat %d", req.ID, req.Content.BindDatID)
		}
		if buf.Type != request.BufferTypeVertex {
			return core.NewErrorf(core.ErrorKindInvalidAction,
				"bind graphics %d: dat %d has buffer type %d, want vertex", req.ID, req.Content.BindDatID, buf.Type)
		}
		g.vertexDats[req.Content.BindSlot] = req.Content.BindDatID
		return nil
	case request.BindKindIndex:
		buf, ok := r.dats.Get(req.Content.BindDatID)
		if !ok {
			return core.NewErrorf(core.ErrorKindInvalidId, "bind graphics %d: unknown index dat %d", req.ID, req.Content.BindDatID)
		}
		if buf.Type != request.BufferTypeIndex {
			return core.NewErrorf(core.ErrorKindInvalidAction,
				"bind graphics %d: dat %d has buffer type %d, want index", req.ID, req.Content.BindDatID, buf.Type)
		}
		g.indexDatID = req.Content.BindDatID
		return nil
	case request.BindKindBuffer, request.BindKindSampler:
		return r.bindDescriptor(req.ID, g.descriptors, req)
	default:
		return core.NewErrorf(core.ErrorKindInvalidAction, "bind graphics %d: unspecified bind kind", req.ID)
	}
}

func (r *Renderer) bindCompute(req request.Request) error {
	c, ok := r.computes.Get(req.ID)
	if !ok {
		return core.NewErrorf(core.ErrorKindInvalidId, "bind compute: unknown id %d", req.ID)
	}
	switch req.Content.BindKind {
	case request.BindKindBuffer, request.BindKindSampler:
		return r.bindDescriptor(req.ID, c.descriptors, req)
	default:
		return core.NewErrorf(core.ErrorKindInvalidAction, "bind compute %d: kind %s has no vertex/index slots to bind", req.ID, req.Content.BindKind)
	}
}

// SetVertexLayout declares binding idx's stride/attributes before baking,
// called by the visual layer (baker) ahead of the `set graphics` request.
func (r *Renderer) SetVertexLayout(graphicsID core.ID, bindings []vk.VertexInputBindingDescription, attributes []vk.VertexInputAttributeDescription) error {
	g, ok := r.graphics.Get(graphicsID)
	if !ok {
		return core.NewErrorf(core.ErrorKindInvalidId, "set vertex layout: unknown graphics %d", graphicsID)
	}
	g.bindings = bindings
	g.attributes = attributes
	return nil
}

// SetTargetCanvas records which canvas's renderpass/extent this pipeline
// bakes against.
func (r *Renderer) SetTargetCanvas(graphicsID, canvasID core.ID) error {
	g, ok := r.graphics.Get(graphicsID)
	if !ok {
		return core.NewErrorf(core.ErrorKindInvalidId, "set target canvas: unknown graphics %d", graphicsID)
	}
	g.canvasID = canvasID
	return nil
}

// bakeGraphics builds the actual vk.Pipeline once bindings, shader and
// target canvas are all known (`set graphics` request, spec.md §3.2).
func (r *Renderer) bakeGraphics(req request.Request) error {
	g, ok := r.graphics.Get(req.ID)
	if !ok {
		return core.NewErrorf(core.ErrorKindInvalidId, "set graphics: unknown id %d", req.ID)
	}
	if r.shaders == nil {
		return core.NewErrorf(core.ErrorKindUnsupportedFeature, "set graphics %d: no shader provider installed", req.ID)
	}
	stages, err := r.shaders.Stages(g.shaderID)
	if err != nil {
		return err
	}
	slots, ok := r.slotsObjs.Get(g.slotsID)
	if !ok {
		return core.NewErrorf(core.ErrorKindInvalidId, "set graphics %d: unknown slots %d", req.ID, g.slotsID)
	}
	c, ok := r.canvases.Get(g.canvasID)
	if !ok {
		return core.NewErrorf(core.ErrorKindInvalidId, "set graphics %d: unknown target canvas %d", req.ID, g.canvasID)
	}
	width, height := c.Extent()

	if g.pipeline != nil {
		g.pipeline.Destroy(r.host)
	}
	pipe, err := gpu.NewGraphicsPipeline(r.host, c.Renderpass(), g.bindings, g.attributes, stages,
		[]vk.DescriptorSetLayout{slots.Layout}, vk.Extent2D{Width: width, Height: height}, g.state)
	if err != nil {
		return err
	}
	g.pipeline = pipe
	return nil
}

func (r *Renderer) bakeCompute(req request.Request) error {
	c, ok := r.computes.Get(req.ID)
	if !ok {
		return core.NewErrorf(core.ErrorKindInvalidId, "set compute: unknown id %d", req.ID)
	}
	if r.shaders == nil {
		return core.NewErrorf(core.ErrorKindUnsupportedFeature, "set compute %d: no shader provider installed", req.ID)
	}
	stages, err := r.shaders.Stages(c.shaderID)
	if err != nil {
		return err
	}
	if len(stages) != 1 {
		return core.NewErrorf(core.ErrorKindShaderCompileError, "set compute %d: expected exactly one stage, got %d", req.ID, len(stages))
	}
	slots, ok := r.slotsObjs.Get(c.slotsID)
	if !ok {
		return core.NewErrorf(core.ErrorKindInvalidId, "set compute %d: unknown slots %d", req.ID, c.slotsID)
	}
	if c.pipeline != nil {
		c.pipeline.Destroy(r.host)
	}
	pipe, err := gpu.NewComputePipeline(r.host, stages[0], []vk.DescriptorSetLayout{slots.Layout})
	if err != nil {
		return err
	}
	c.pipeline = pipe
	return nil
}

// deleteGraphics queues req.ID for destruction rather than tearing down its
// pipeline/descriptors inline — the pipeline may still be bound in a
// command buffer in flight. Renderer.Sweep does the actual Destroy once the
// caller has waited for the GPU to go idle (spec.md §4.2).
func (r *Renderer) deleteGraphics(req request.Request) error {
	r.graphics.MarkDestroyed(req.ID)
	return nil
}

func (r *Renderer) deleteCompute(req request.Request) error {
	r.computes.MarkDestroyed(req.ID)
	return nil
}
