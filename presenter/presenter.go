// Package presenter implements the per-frame driver (L9): one Renderer, one
// Client, and the GUI hook table, continuing
// engine/renderer/vulkan/backend.go's BeginFrame/EndFrame pairing but
// inserting the request-batch hand-off and recorder-dirty replay in place
// of the teacher's single hard-coded renderpass begin/end.
package presenter

import (
	"github.com/datoviz/datoviz-sub007/canvas"
	"github.com/datoviz/datoviz-sub007/client"
	"github.com/datoviz/datoviz-sub007/core"
	"github.com/datoviz/datoviz-sub007/renderer"
	"github.com/datoviz/datoviz-sub007/request"
)

// GUICallback draws immediate-mode UI for one canvas/image, the hook
// contract spec.md §4.8/§6.5 describes without mandating a specific GUI
// library (Dear ImGui wiring is a Non-goal beyond this hook).
type GUICallback func(canvasID core.ID, imageIdx int) error

// Presenter owns the renderer + client pair and drives one frame at a time.
type Presenter struct {
	renderer *renderer.Renderer
	client   *client.Client

	guiCBs map[core.ID][]GUICallback

	pending *request.Batch
}

// New wires a Presenter around an already-constructed renderer and client.
func New(r *renderer.Renderer, c *client.Client) *Presenter {
	return &Presenter{renderer: r, client: c, guiCBs: make(map[core.ID][]GUICallback)}
}

// OnGUI registers fn to run during the frame of canvasID, after the
// recorder's recorded commands and before Present.
func (p *Presenter) OnGUI(canvasID core.ID, fn GUICallback) {
	p.guiCBs[canvasID] = append(p.guiCBs[canvasID], fn)
}

// Submit hands batch to the renderer immediately: a deep copy per spec.md
// §4.1 so the caller's batch may keep mutating while this one is in flight.
// Any id the renderer auto-assigned (or bytes a `download` fetched) are
// written back into the caller's own batch before the clone is released.
func (p *Presenter) Submit(batch *request.Batch) []error {
	clone := batch.Copy()
	errs := p.renderer.Requests(clone)
	batch.Writeback(clone)
	clone.Destroy()
	return errs
}

// FrameWindowed runs the 9-step per-frame protocol against a single
// windowed canvas: fence wait, image acquire, recorder replay (with any
// registered GUI hooks), submit, present.
//
//  1. resolve the canvas and its windowed swapchain
//  2. acquire the next image (waits the in-flight fence internally)
//  3. mark this canvas active on the renderer so Drawer calls target the
//     right command buffer
//  4. replay the recorder's commands into that image's command buffer if
//     dirty
//  5. run any GUI hooks registered for this canvas
//  6. submit
//  7. present
//  8. on ErrorKindSwapchainOutOfDate, recreate at the platform's current
//     framebuffer size, mark the recorder dirty, and retry next frame rather
//     than failing
//  9. return any other error to the caller
func (p *Presenter) FrameWindowed(canvasID core.ID) error {
	c, ok := p.renderer.Canvas(canvasID)
	if !ok {
		return core.NewErrorf(core.ErrorKindInvalidId, "frame: unknown canvas %d", canvasID)
	}
	w, ok := c.(*canvas.Windowed)
	if !ok {
		return core.NewErrorf(core.ErrorKindInvalidAction, "frame: canvas %d is not windowed", canvasID)
	}

	imageIdx, err := w.AcquireNextImage(^uint64(0))
	if err != nil {
		if core.KindOf(err) == core.ErrorKindSwapchainOutOfDate {
			width, height := p.client.Platform().FramebufferSize()
			if err := w.Recreate(uint32(width), uint32(height)); err != nil {
				return err
			}
			if rec, ok := p.renderer.Recorder(canvasID); ok {
				rec.SetDirty()
			}
			return nil
		}
		return err
	}

	p.renderer.SetActiveCanvas(w)

	rec, ok := p.renderer.Recorder(canvasID)
	if !ok {
		return core.NewErrorf(core.ErrorKindInvalidId, "frame: no recorder for canvas %d", canvasID)
	}
	if _, err := rec.Set(w, p.renderer, int(imageIdx)); err != nil {
		return err
	}

	for _, fn := range p.guiCBs[canvasID] {
		if err := fn(canvasID, int(imageIdx)); err != nil {
			return err
		}
	}

	if err := w.Submit(imageIdx); err != nil {
		return err
	}
	if err := w.Present(imageIdx); err != nil {
		if core.KindOf(err) == core.ErrorKindSwapchainOutOfDate {
			width, height := p.client.Platform().FramebufferSize()
			if err := w.Recreate(uint32(width), uint32(height)); err != nil {
				return err
			}
			rec.SetDirty()
			return nil
		}
		return err
	}
	return nil
}

// FrameBoard runs the offscreen equivalent: replay, submit (synchronous),
// no present. Used by headless/screenshot-only batches.
func (p *Presenter) FrameBoard(canvasID core.ID) error {
	c, ok := p.renderer.Canvas(canvasID)
	if !ok {
		return core.NewErrorf(core.ErrorKindInvalidId, "frame: unknown board %d", canvasID)
	}
	b, ok := c.(*canvas.Board)
	if !ok {
		return core.NewErrorf(core.ErrorKindInvalidAction, "frame: canvas %d is not a board", canvasID)
	}

	p.renderer.SetActiveCanvas(b)

	rec, ok := p.renderer.Recorder(canvasID)
	if !ok {
		return core.NewErrorf(core.ErrorKindInvalidId, "frame: no recorder for board %d", canvasID)
	}
	if _, err := rec.Set(b, p.renderer, 0); err != nil {
		return err
	}

	for _, fn := range p.guiCBs[canvasID] {
		if err := fn(canvasID, 0); err != nil {
			return err
		}
	}

	return b.Submit()
}
