package request

import "github.com/datoviz/datoviz-sub007/core"

// CreateCanvas builds a `create canvas` request. id == 0 means auto-assign.
func CreateCanvas(id core.ID, width, height uint32, flags Flags) Request {
	r := newRequest(ActionCreate, ObjectTypeCanvas, id)
	r.Content.Width = width
	r.Content.Height = height
	r.Flags = flags
	return r
}

// CreateBoard builds a `create board` (offscreen canvas) request.
func CreateBoard(id core.ID, width, height uint32, flags Flags) Request {
	r := newRequest(ActionCreate, ObjectTypeBoard, id)
	r.Content.Width = width
	r.Content.Height = height
	r.Flags = flags
	return r
}

// CreateDat builds a `create dat` request: a logical GPU buffer region.
func CreateDat(id core.ID, bufType BufferType, count uint32, itemSize uint32, flags Flags) Request {
	r := newRequest(ActionCreate, ObjectTypeDat, id)
	r.Content.BufferType = bufType
	r.Content.Count = count
	r.Content.ItemSize = itemSize
	r.Flags = flags
	return r
}

// CreateTex builds a `create tex` request for a 1D/2D/3D image.
func CreateTex(id core.ID, dims uint8, width, height, depth uint32, format uint32, flags Flags) Request {
	r := newRequest(ActionCreate, ObjectTypeTex, id)
	r.Content.TexDims = dims
	r.Content.Width = width
	r.Content.Height = height
	r.Content.Depth = depth
	r.Content.Format = format
	r.Flags = flags
	return r
}

// CreateSampler builds a `create sampler` request.
func CreateSampler(id core.ID, flags Flags) Request {
	return newRequest(ActionCreate, ObjectTypeSampler, id)
}

// CreateShader builds a `create shader` request.
func CreateShader(id core.ID) Request {
	return newRequest(ActionCreate, ObjectTypeShader, id)
}

// CreateGraphics builds a `create graphics` request for a render pipeline.
func CreateGraphics(id core.ID, shaderID, slotsID core.ID) Request {
	r := newRequest(ActionCreate, ObjectTypeGraphics, id)
	r.Content.ShaderID = shaderID
	r.Content.SlotsID = slotsID
	return r
}

// CreateCompute builds a `create compute` request for a compute pipeline.
func CreateCompute(id core.ID, shaderID, slotsID core.ID) Request {
	r := newRequest(ActionCreate, ObjectTypeCompute, id)
	r.Content.ShaderID = shaderID
	r.Content.SlotsID = slotsID
	return r
}

// SetViewport builds a `set viewport` request targeting a canvas/board.
func SetViewport(canvasID core.ID, offset [2]int32, shape [2]uint32) Request {
	r := newRequest(ActionSet, ObjectTypeCanvas, canvasID)
	r.Content.ViewportOffset = offset
	r.Content.ViewportShape = shape
	return r
}

// SetGraphics builds a `set graphics` request, which makes the renderer
// bake graphicsID's pipeline from the state already declared for it.
func SetGraphics(graphicsID core.ID) Request {
	return newRequest(ActionSet, ObjectTypeGraphics, graphicsID)
}

// SetCompute builds a `set compute` request, which makes the renderer bake
// computeID's pipeline from the state already declared for it.
func SetCompute(computeID core.ID) Request {
	return newRequest(ActionSet, ObjectTypeCompute, computeID)
}

// SetVertex binds a vertex dat to binding slot idx on graphicsID.
func SetVertex(graphicsID core.ID, slot uint32, datID core.ID) Request {
	r := newRequest(ActionBind, ObjectTypeGraphics, graphicsID)
	r.Content.BindKind = BindKindVertex
	r.Content.BindSlot = slot
	r.Content.BindDatID = datID
	return r
}

// SetIndex binds the index dat to graphicsID.
func SetIndex(graphicsID core.ID, datID core.ID) Request {
	r := newRequest(ActionBind, ObjectTypeGraphics, graphicsID)
	r.Content.BindKind = BindKindIndex
	r.Content.BindDatID = datID
	return r
}

// SetBinding binds a uniform/storage dat to descriptor slot idx on
// graphicsID or computeID (objType selects which); the renderer checks the
// dat's own BufferType to tell uniform from storage.
func SetBinding(objType ObjectType, id core.ID, slot uint32, datID core.ID) Request {
	r := newRequest(ActionBind, objType, id)
	r.Content.BindKind = BindKindBuffer
	r.Content.BindSlot = slot
	r.Content.BindDatID = datID
	return r
}

// SetSampler binds a texture+sampler pair to descriptor slot idx on id.
func SetSampler(objType ObjectType, id core.ID, slot uint32, texID, samplerID core.ID) Request {
	r := newRequest(ActionBind, objType, id)
	r.Content.BindKind = BindKindSampler
	r.Content.BindSlot = slot
	r.Content.BindTexID = texID
	r.Content.BindSamplerID = samplerID
	return r
}

// Resize builds a `resize` request against an existing dat/tex/canvas.
func Resize(objType ObjectType, id core.ID, width, height, depth uint32) Request {
	r := newRequest(ActionResize, objType, id)
	r.Content.Width = width
	r.Content.Height = height
	r.Content.Depth = depth
	return r
}

// Upload builds an `upload` request carrying CPU bytes into a dat/tex.
// data is not copied; the caller must not mutate it after Append.
func Upload(objType ObjectType, id core.ID, offset, size uint64, data []byte) Request {
	r := newRequest(ActionUpload, objType, id)
	r.Content.Offset = offset
	r.Content.Size = size
	r.Content.Data = data
	return r
}

// Download builds a `download` request; Content.Size is the requested byte
// count, Content.Data is populated by the renderer on success.
func Download(objType ObjectType, id core.ID, offset, size uint64) Request {
	r := newRequest(ActionDownload, objType, id)
	r.Content.Offset = offset
	r.Content.Size = size
	return r
}

// Upfill builds an `upfill` request: fills a byte range with a repeating
// pattern (data) rather than transferring a matching-size buffer.
func Upfill(objType ObjectType, id core.ID, offset, size uint64, pattern []byte) Request {
	r := newRequest(ActionUpfill, objType, id)
	r.Content.Offset = offset
	r.Content.Size = size
	r.Content.Data = pattern
	return r
}

// Delete builds a `delete` request; the renderer marks the object
// need_destroy rather than destroying it synchronously.
func Delete(objType ObjectType, id core.ID) Request {
	return newRequest(ActionDelete, objType, id)
}

// Get builds a `get` request, used to read back renderer-side metadata
// (e.g. an auto-assigned id) rather than buffer contents.
func Get(objType ObjectType, id core.ID) Request {
	return newRequest(ActionGet, objType, id)
}

// Flush builds a `flush` request forcing any pending staged uploads for id
// to complete before the call returns.
func Flush(objType ObjectType, id core.ID) Request {
	return newRequest(ActionFlush, objType, id)
}

// Record wraps a RecorderPayload as a `record` request forwarded untouched
// to the target canvas's recorder (spec.md §4.2: "do not touch Vulkan").
func Record(canvasID core.ID, cmd RecorderPayload) Request {
	r := newRequest(ActionRecord, ObjectTypeRecorderCommand, canvasID)
	cmd.CanvasID = canvasID
	r.Content.Command = cmd
	return r
}

// RecordBegin is the BEGIN recorder command constructor.
func RecordBegin(canvasID core.ID) Request {
	return Record(canvasID, RecorderPayload{Type: RecorderCmdBegin})
}

// RecordViewport is the VIEWPORT recorder command constructor.
func RecordViewport(canvasID core.ID, offset [2]int32, shape [2]uint32) Request {
	return Record(canvasID, RecorderPayload{
		Type: RecorderCmdViewport, ViewportOffset: offset, ViewportShape: shape,
	})
}

// RecordDraw is the DRAW recorder command constructor.
func RecordDraw(canvasID, pipeID core.ID, firstVertex, vertexCount, firstInstance, instanceCount uint32) Request {
	return Record(canvasID, RecorderPayload{
		Type: RecorderCmdDraw, PipeID: pipeID,
		FirstVertex: firstVertex, VertexCount: vertexCount,
		FirstInstance: firstInstance, InstanceCount: instanceCount,
	})
}

// RecordDrawIndexed is the DRAW_INDEXED recorder command constructor.
func RecordDrawIndexed(canvasID, pipeID core.ID, firstIndex uint32, vertexOffset int32, indexCount, firstInstance, instanceCount uint32) Request {
	return Record(canvasID, RecorderPayload{
		Type: RecorderCmdDrawIndexed, PipeID: pipeID,
		FirstIndex: firstIndex, VertexOffset: vertexOffset, IndexCount: indexCount,
		FirstInstance: firstInstance, InstanceCount: instanceCount,
	})
}

// RecordDrawIndirect is the DRAW_INDIRECT recorder command constructor.
func RecordDrawIndirect(canvasID, pipeID, indirectDatID core.ID) Request {
	return Record(canvasID, RecorderPayload{
		Type: RecorderCmdDrawIndirect, PipeID: pipeID, IndirectDatID: indirectDatID,
	})
}

// RecordDrawIndexedIndirect is the DRAW_INDEXED_INDIRECT recorder command constructor.
func RecordDrawIndexedIndirect(canvasID, pipeID, indirectDatID core.ID) Request {
	return Record(canvasID, RecorderPayload{
		Type: RecorderCmdDrawIndexedIndirect, PipeID: pipeID, IndirectDatID: indirectDatID,
	})
}

// RecordEnd is the END recorder command constructor.
func RecordEnd(canvasID core.ID) Request {
	return Record(canvasID, RecorderPayload{Type: RecorderCmdEnd})
}
