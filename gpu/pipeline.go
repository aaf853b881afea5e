package gpu

import (
	vk "github.com/goki/vulkan"

	"github.com/datoviz/datoviz-sub007/core"
	"github.com/datoviz/datoviz-sub007/host"
)

// GraphicsState is the fixed-function state a Graphics pipeline is built
// with: topology, polygon mode, blend, depth test/write, cull mode and
// front face. It has no color mask (NewGraphicsPipeline always writes
// RGBA) and no specialization constants.
type GraphicsState struct {
	Topology    vk.PrimitiveTopology
	PolygonMode vk.PolygonMode
	CullMode    vk.CullModeFlagBits
	FrontFace   vk.FrontFace
	BlendEnable bool
	DepthTest   bool
	DepthWrite  bool
}

func DefaultGraphicsState() GraphicsState {
	return GraphicsState{
		Topology:    vk.PrimitiveTopologyTriangleList,
		PolygonMode: vk.PolygonModeFill,
		CullMode:    vk.CullModeBackBit,
		FrontFace:   vk.FrontFaceCounterClockwise,
		BlendEnable: true,
		DepthTest:   true,
		DepthWrite:  true,
	}
}

// GraphicsPipeline wraps a vk.Pipeline + its layout, built from vertex
// bindings/attributes resolved by the baker package, shader stages and
// Slots resolved by the shaders/renderer packages, and a GraphicsState.
type GraphicsPipeline struct {
	Handle vk.Pipeline
	Layout vk.PipelineLayout
}

// NewGraphicsPipeline assembles the pipeline. bindings/attributes come
// from baker.Baker's resolved layout; stages come from the shaders
// package; slots is the descriptor set layout the pipeline's resources
// bind through.
func NewGraphicsPipeline(
	h *host.Host,
	rp *Renderpass,
	bindings []vk.VertexInputBindingDescription,
	attributes []vk.VertexInputAttributeDescription,
	stages []vk.PipelineShaderStageCreateInfo,
	slotsLayouts []vk.DescriptorSetLayout,
	viewportExtent vk.Extent2D,
	state GraphicsState,
) (*GraphicsPipeline, error) {
	vertexInput := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(bindings)),
		PVertexBindingDescriptions:      bindings,
		VertexAttributeDescriptionCount: uint32(len(attributes)),
		PVertexAttributeDescriptions:    attributes,
	}

	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology: state.Topology,
	}

	viewport := vk.Viewport{Width: float32(viewportExtent.Width), Height: float32(viewportExtent.Height), MaxDepth: 1.0}
	scissor := vk.Rect2D{Extent: viewportExtent}
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		PViewports:    []vk.Viewport{viewport},
		ScissorCount:  1,
		PScissors:     []vk.Rect2D{scissor},
	}

	rasterizer := vk.PipelineRasterizationStateCreateInfo{
		SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
		PolygonMode: state.PolygonMode,
		CullMode:    vk.CullModeFlags(state.CullMode),
		FrontFace:   state.FrontFace,
		LineWidth:   1.0,
	}

	multisample := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: vk.SampleCount1Bit,
		MinSampleShading:     1.0,
	}

	blendAttachment := vk.PipelineColorBlendAttachmentState{
		ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit),
	}
	if state.BlendEnable {
		blendAttachment.BlendEnable = vk.True
		blendAttachment.SrcColorBlendFactor = vk.BlendFactorSrcAlpha
		blendAttachment.DstColorBlendFactor = vk.BlendFactorOneMinusSrcAlpha
		blendAttachment.ColorBlendOp = vk.BlendOpAdd
		blendAttachment.SrcAlphaBlendFactor = vk.BlendFactorOne
		blendAttachment.DstAlphaBlendFactor = vk.BlendFactorZero
		blendAttachment.AlphaBlendOp = vk.BlendOpAdd
	}
	colorBlend := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{blendAttachment},
	}

	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType:            vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:  vk.False,
		DepthWriteEnable: vk.False,
		DepthCompareOp:   vk.CompareOpLess,
	}
	if state.DepthTest {
		depthStencil.DepthTestEnable = vk.True
	}
	if state.DepthWrite {
		depthStencil.DepthWriteEnable = vk.True
	}

	layoutInfo := vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: uint32(len(slotsLayouts)),
		PSetLayouts:    slotsLayouts,
	}
	var layout vk.PipelineLayout
	if res := vk.CreatePipelineLayout(h.Device, &layoutInfo, h.Allocator, &layout); res != vk.Success {
		return nil, core.NewErrorf(core.ErrorKindResourceExhausted, "vkCreatePipelineLayout failed: %d", res)
	}

	info := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInput,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizer,
		PMultisampleState:   &multisample,
		PColorBlendState:    &colorBlend,
		PDepthStencilState:  &depthStencil,
		Layout:              layout,
		RenderPass:          rp.Handle,
		Subpass:             0,
	}

	pipelines := make([]vk.Pipeline, 1)
	if res := vk.CreateGraphicsPipelines(h.Device, vk.NullPipelineCache, 1, []vk.GraphicsPipelineCreateInfo{info}, h.Allocator, pipelines); res != vk.Success {
		vk.DestroyPipelineLayout(h.Device, layout, h.Allocator)
		return nil, core.NewErrorf(core.ErrorKindShaderCompileError, "vkCreateGraphicsPipelines failed: %d", res)
	}

	return &GraphicsPipeline{Handle: pipelines[0], Layout: layout}, nil
}

func (p *GraphicsPipeline) Destroy(h *host.Host) {
	if p.Handle != vk.NullPipeline {
		vk.DestroyPipeline(h.Device, p.Handle, h.Allocator)
		p.Handle = vk.NullPipeline
	}
	if p.Layout != vk.NullPipelineLayout {
		vk.DestroyPipelineLayout(h.Device, p.Layout, h.Allocator)
		p.Layout = vk.NullPipelineLayout
	}
}

// ComputePipeline wraps a single compute shader stage pipeline.
type ComputePipeline struct {
	Handle vk.Pipeline
	Layout vk.PipelineLayout
}

func NewComputePipeline(h *host.Host, stage vk.PipelineShaderStageCreateInfo, slotsLayouts []vk.DescriptorSetLayout) (*ComputePipeline, error) {
	layoutInfo := vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: uint32(len(slotsLayouts)),
		PSetLayouts:    slotsLayouts,
	}
	var layout vk.PipelineLayout
	if res := vk.CreatePipelineLayout(h.Device, &layoutInfo, h.Allocator, &layout); res != vk.Success {
		return nil, core.NewErrorf(core.ErrorKindResourceExhausted, "vkCreatePipelineLayout failed: %d", res)
	}

	info := vk.ComputePipelineCreateInfo{
		SType:  vk.StructureTypeComputePipelineCreateInfo,
		Stage:  stage,
		Layout: layout,
	}
	pipelines := make([]vk.Pipeline, 1)
	if res := vk.CreateComputePipelines(h.Device, vk.NullPipelineCache, 1, []vk.ComputePipelineCreateInfo{info}, h.Allocator, pipelines); res != vk.Success {
		vk.DestroyPipelineLayout(h.Device, layout, h.Allocator)
		return nil, core.NewErrorf(core.ErrorKindShaderCompileError, "vkCreateComputePipelines failed: %d", res)
	}
	return &ComputePipeline{Handle: pipelines[0], Layout: layout}, nil
}

func (p *ComputePipeline) Destroy(h *host.Host) {
	if p.Handle != vk.NullPipeline {
		vk.DestroyPipeline(h.Device, p.Handle, h.Allocator)
		p.Handle = vk.NullPipeline
	}
	if p.Layout != vk.NullPipelineLayout {
		vk.DestroyPipelineLayout(h.Device, p.Layout, h.Allocator)
		p.Layout = vk.NullPipelineLayout
	}
}
