// Package recorder implements the append-only, per-image-dirty command
// list (L6) that lazily rebuilds a canvas's Vulkan command buffer.
package recorder

import (
	"github.com/datoviz/datoviz-sub007/core"
	"github.com/datoviz/datoviz-sub007/request"
)

// Flags are recorder-wide bits; DisableCache forces a full replay on every
// Set call regardless of the per-image dirty bit.
type Flags uint32

const (
	FlagNone         Flags = 0
	FlagDisableCache Flags = 1 << 0
)

// Target is the subset of canvas behavior the recorder drives during replay.
type Target interface {
	CmdReset(imageIdx int) error
	CanvasBegin(imageIdx int) error
	CanvasViewport(imageIdx int, offset [2]int32, shape [2]uint32) error
	CanvasEnd(imageIdx int) error
}

// Drawer is the subset of renderer behavior the recorder drives during
// replay: pipeline resolution and the draw call family.
type Drawer interface {
	BindPipeline(imageIdx int, pipeID core.ID) error
	Draw(imageIdx int, firstVertex, vertexCount, firstInstance, instanceCount uint32) error
	DrawIndexed(imageIdx int, firstIndex uint32, vertexOffset int32, indexCount, firstInstance, instanceCount uint32) error
	DrawIndirect(imageIdx int, indirectDatID core.ID) error
	DrawIndexedIndirect(imageIdx int, indirectDatID core.ID) error
}

// Command is one recorded draw-call-adjacent operation, forwarded verbatim
// from a `record` request's payload.
type Command = request.RecorderPayload

// Recorder owns the append-only command list and per-image dirty bits for
// one canvas.
type Recorder struct {
	flags      Flags
	imageCount int
	commands   []Command
	dirty      []bool
}

// New creates a recorder for a canvas with imageCount swapchain images.
func New(imageCount int, flags Flags) *Recorder {
	r := &Recorder{flags: flags, imageCount: imageCount}
	r.dirty = make([]bool, imageCount)
	for i := range r.dirty {
		r.dirty[i] = true
	}
	return r
}

// Append adds cmd to the end of the command list.
func (r *Recorder) Append(cmd Command) {
	r.commands = append(r.commands, cmd)
}

// Clear empties the command list and marks all images dirty.
func (r *Recorder) Clear() {
	r.commands = r.commands[:0]
	r.SetDirty()
}

// SetDirty marks every image dirty without emptying the command list —
// used after a canvas resize/recreate.
func (r *Recorder) SetDirty() {
	for i := range r.dirty {
		r.dirty[i] = true
	}
}

// Dirty reports whether image imageIdx needs a replay.
func (r *Recorder) Dirty(imageIdx int) bool {
	if imageIdx < 0 || imageIdx >= len(r.dirty) {
		return false
	}
	return r.dirty[imageIdx]
}

// Set replays the command list into the command buffer for imageIdx if
// caching is disabled or the image is dirty (spec.md §4.3). Returns true
// if a replay actually happened.
func (r *Recorder) Set(target Target, drawer Drawer, imageIdx int) (bool, error) {
	cached := r.flags&FlagDisableCache == 0
	if cached && !r.Dirty(imageIdx) {
		return false, nil
	}

	for _, cmd := range r.commands {
		if err := r.replay(target, drawer, imageIdx, cmd); err != nil {
			return false, err
		}
	}
	if imageIdx >= 0 && imageIdx < len(r.dirty) {
		r.dirty[imageIdx] = false
	}
	return true, nil
}

func (r *Recorder) replay(target Target, drawer Drawer, imageIdx int, cmd Command) error {
	switch cmd.Type {
	case request.RecorderCmdBegin:
		if err := target.CmdReset(imageIdx); err != nil {
			return err
		}
		return target.CanvasBegin(imageIdx)
	case request.RecorderCmdViewport:
		return target.CanvasViewport(imageIdx, cmd.ViewportOffset, cmd.ViewportShape)
	case request.RecorderCmdDraw:
		if err := drawer.BindPipeline(imageIdx, cmd.PipeID); err != nil {
			return err
		}
		return drawer.Draw(imageIdx, cmd.FirstVertex, cmd.VertexCount, cmd.FirstInstance, cmd.InstanceCount)
	case request.RecorderCmdDrawIndexed:
		if err := drawer.BindPipeline(imageIdx, cmd.PipeID); err != nil {
			return err
		}
		return drawer.DrawIndexed(imageIdx, cmd.FirstIndex, cmd.VertexOffset, cmd.IndexCount, cmd.FirstInstance, cmd.InstanceCount)
	case request.RecorderCmdDrawIndirect:
		if err := drawer.BindPipeline(imageIdx, cmd.PipeID); err != nil {
			return err
		}
		return drawer.DrawIndirect(imageIdx, cmd.IndirectDatID)
	case request.RecorderCmdDrawIndexedIndirect:
		if err := drawer.BindPipeline(imageIdx, cmd.PipeID); err != nil {
			return err
		}
		return drawer.DrawIndexedIndirect(imageIdx, cmd.IndirectDatID)
	case request.RecorderCmdEnd:
		return target.CanvasEnd(imageIdx)
	default:
		return core.NewErrorf(core.ErrorKindInvalidAction, "recorder: unknown command type %v", cmd.Type)
	}
}

// Commands returns the recorded command list (read-only snapshot).
func (r *Recorder) Commands() []Command {
	return r.commands
}
