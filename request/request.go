// Package request implements the tagged-union request protocol (L4): the
// only legal way client code mutates renderer-owned GPU state.
package request

import "github.com/datoviz/datoviz-sub007/core"

// Action is the verb half of a request's (action, object_type) dispatch key.
type Action uint8

const (
	ActionNone Action = iota
	ActionCreate
	ActionResize
	ActionSet
	ActionUpdate
	ActionUpload
	ActionDownload
	ActionUpfill
	ActionDelete
	ActionRecord
	ActionBind
	ActionGet
	ActionFlush
)

func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionResize:
		return "resize"
	case ActionSet:
		return "set"
	case ActionUpdate:
		return "update"
	case ActionUpload:
		return "upload"
	case ActionDownload:
		return "download"
	case ActionUpfill:
		return "upfill"
	case ActionDelete:
		return "delete"
	case ActionRecord:
		return "record"
	case ActionBind:
		return "bind"
	case ActionGet:
		return "get"
	case ActionFlush:
		return "flush"
	default:
		return "none"
	}
}

// ObjectType is the noun half of a request's dispatch key.
type ObjectType uint8

const (
	ObjectTypeNone ObjectType = iota
	ObjectTypeBoard
	ObjectTypeCanvas
	ObjectTypeDat
	ObjectTypeTex
	ObjectTypeSampler
	ObjectTypeGraphics
	ObjectTypeCompute
	ObjectTypeShader
	ObjectTypeRecorderCommand
)

func (t ObjectType) String() string {
	switch t {
	case ObjectTypeBoard:
		return "board"
	case ObjectTypeCanvas:
		return "canvas"
	case ObjectTypeDat:
		return "dat"
	case ObjectTypeTex:
		return "tex"
	case ObjectTypeSampler:
		return "sampler"
	case ObjectTypeGraphics:
		return "graphics"
	case ObjectTypeCompute:
		return "compute"
	case ObjectTypeShader:
		return "shader"
	case ObjectTypeRecorderCommand:
		return "recorder_command"
	default:
		return "none"
	}
}

// ProtocolVersion is the wire/in-process version stamped on every request.
const ProtocolVersion uint32 = 1

// Flags are action-specific bits carried alongside a request's content.
type Flags uint32

const (
	FlagNone Flags = 0
	// FlagKeepOnResize preserves a Dat's contents across a resize.
	FlagKeepOnResize Flags = 1 << iota
	// FlagPersistentStaging keeps a reusable staging buffer for an unmapped Dat.
	FlagPersistentStaging
	// FlagDup resolves Open Question 2: a dat created with this flag still
	// uses a single backing copy (see SPEC_FULL.md §7 resolution), the flag
	// is kept only so callers can express the intent explicitly.
	FlagDup
)

// Content is the action-specific payload carried by a Request. Exactly one
// field is meaningful per (action, object_type) pair; this mirrors the
// source's tagged union without resorting to an `any` grab-bag, so the
// renderer's router can type-assert nothing and just read fields.
type Content struct {
	// sizing / shape
	Width, Height, Depth uint32
	Count                uint32 // element count for Dat / vertex / index counts

	// Dat / Tex creation
	BufferType  BufferType
	TexDims     uint8 // 1, 2 or 3
	Format      uint32
	ItemSize    uint32

	// upload/download/upfill
	Offset uint64
	Size   uint64
	Data   []byte

	// viewport
	ViewportOffset [2]int32
	ViewportShape  [2]uint32

	// graphics/compute wiring
	ShaderID core.ID
	SlotsID  core.ID

	// record
	Command RecorderPayload

	// indirect draw (Open Question 3 resolution)
	Indirect IndirectDraw

	// bind: SetVertex/SetIndex/SetBinding/SetSampler attach an external
	// object to a slot on the graphics/compute object named by Request.ID.
	// BindKind disambiguates the four constructors at the wire level —
	// without it a vertex bind at slot 0 and an index bind are the same
	// Content shape.
	BindKind      BindKind
	BindSlot      uint32
	BindDatID     core.ID
	BindTexID     core.ID
	BindSamplerID core.ID
}

// BindKind tags which of SetVertex/SetIndex/SetBinding/SetSampler produced
// a bind Request, since Content otherwise carries the same fields for all
// four (spec.md §3.4/§4.2 bind kinds).
type BindKind uint8

const (
	BindKindNone BindKind = iota
	BindKindVertex
	BindKindIndex
	// BindKindBuffer covers both uniform and storage dats: the renderer
	// resolves which from the target dat's own BufferType rather than
	// requiring the caller to repeat it.
	BindKindBuffer
	BindKindSampler
)

func (k BindKind) String() string {
	switch k {
	case BindKindVertex:
		return "vertex"
	case BindKindIndex:
		return "index"
	case BindKindBuffer:
		return "buffer"
	case BindKindSampler:
		return "sampler"
	default:
		return "none"
	}
}

// BufferType mirrors the source's numeric buffer-type enum (bit-compatible,
// per SPEC_FULL.md/spec.md §6.1).
type BufferType uint8

const (
	BufferTypeNone    BufferType = 0
	BufferTypeStaging BufferType = 1
	BufferTypeVertex  BufferType = 2
	BufferTypeIndex   BufferType = 3
	BufferTypeStorage BufferType = 4
	BufferTypeUniform BufferType = 5
)

// IndirectDraw is the resolved indirect-draw payload shape (Open Question 3):
// mirrors VkDrawIndirectCommand's buffer-based indirection instead of an
// inline struct.
type IndirectDraw struct {
	IndirectDatID core.ID
	DrawCount     uint32
	Stride        uint32
}

// RecorderCommandType tags a RecorderPayload the way spec.md §4.3 lists the
// command kinds.
type RecorderCommandType uint8

const (
	RecorderCmdNone RecorderCommandType = iota
	RecorderCmdBegin
	RecorderCmdViewport
	RecorderCmdDraw
	RecorderCmdDrawIndexed
	RecorderCmdDrawIndirect
	RecorderCmdDrawIndexedIndirect
	RecorderCmdEnd
)

// RecorderPayload is the content of a `record` request's forwarded command.
type RecorderPayload struct {
	Type           RecorderCommandType
	CanvasID       core.ID
	PipeID         core.ID
	FirstVertex    uint32
	VertexCount    uint32
	FirstIndex     uint32
	VertexOffset   int32
	IndexCount     uint32
	FirstInstance  uint32
	InstanceCount  uint32
	IndirectDatID  core.ID
	ViewportOffset [2]int32
	ViewportShape  [2]uint32
}

// Request is an immutable value-type record describing one atomic mutation.
// Heap payloads referenced from Content (e.g. Data) are owned by the Batch
// that holds the Request and released when the batch is destroyed/cleared.
type Request struct {
	Version    uint32
	Action     Action
	ObjectType ObjectType
	ID         core.ID // target object; 0 for create-auto
	Content    Content
	Flags      Flags
	// Desc is an optional human-readable description, kept in the batch's
	// parallel array rather than inline so zero-value requests stay cheap.
	Desc string
}

func newRequest(action Action, objType ObjectType, id core.ID) Request {
	return Request{
		Version:    ProtocolVersion,
		Action:     action,
		ObjectType: objType,
		ID:         id,
	}
}
