package renderer

import (
	vk "github.com/goki/vulkan"

	"github.com/datoviz/datoviz-sub007/canvas"
	"github.com/datoviz/datoviz-sub007/core"
	"github.com/datoviz/datoviz-sub007/recorder"
	"github.com/datoviz/datoviz-sub007/request"
)

// createCanvas rejects a plain `create canvas` request: a windowed canvas
// needs a platform-provided vk.Surface that has no room in the wire-protocol
// Content, so callers must go through CreateWindowed instead.
func (r *Renderer) createCanvas(req request.Request) error {
	return core.NewErrorf(core.ErrorKindInvalidAction, "create canvas %d: use CreateWindowed with an explicit surface", req.ID)
}

// CreateWindowed is the renderer-side counterpart to a `create canvas`
// request that also needs a platform-provided vk.Surface: the presenter
// calls this directly instead of routing a plain request through Request,
// since the wire-protocol Content has no room for a live surface handle.
func (r *Renderer) CreateWindowed(id core.ID, surface vk.Surface, width, height uint32) (core.ID, error) {
	if id == core.NoID {
		id = core.NewID()
	}
	w, err := canvas.NewWindowed(r.host, id, surface, width, height)
	if err != nil {
		return 0, err
	}
	r.canvases.Set(id, w)
	r.recorders.Set(id, recorder.New(w.ImageCount(), recorder.FlagNone))
	return id, nil
}

func (r *Renderer) createBoard(req request.Request) error {
	b, err := canvas.NewBoard(r.host, req.ID, req.Content.Width, req.Content.Height)
	if err != nil {
		return err
	}
	r.canvases.Set(req.ID, b)
	r.recorders.Set(req.ID, recorder.New(b.ImageCount(), recorder.FlagNone))
	return nil
}

func (r *Renderer) resizeCanvas(req request.Request) error {
	c, ok := r.canvases.Get(req.ID)
	if !ok {
		return core.NewErrorf(core.ErrorKindInvalidId, "resize canvas: unknown id %d", req.ID)
	}
	w, ok := c.(*canvas.Windowed)
	if !ok {
		return core.NewErrorf(core.ErrorKindInvalidAction, "resize canvas %d: not a windowed canvas", req.ID)
	}
	if err := w.Recreate(req.Content.Width, req.Content.Height); err != nil {
		return err
	}
	if err := r.Idle(); err != nil {
		return err
	}
	if rec, ok := r.recorders.Get(req.ID); ok {
		rec.SetDirty()
	}
	return nil
}

func (r *Renderer) resizeBoard(req request.Request) error {
	c, ok := r.canvases.Get(req.ID)
	if !ok {
		return core.NewErrorf(core.ErrorKindInvalidId, "resize board: unknown id %d", req.ID)
	}
	b, ok := c.(*canvas.Board)
	if !ok {
		return core.NewErrorf(core.ErrorKindInvalidAction, "resize board %d: not a board", req.ID)
	}
	if err := b.Recreate(req.Content.Width, req.Content.Height); err != nil {
		return err
	}
	if err := r.Idle(); err != nil {
		return err
	}
	if rec, ok := r.recorders.Get(req.ID); ok {
		rec.SetDirty()
	}
	return nil
}

func (r *Renderer) setViewport(req request.Request) error {
	rec, ok := r.recorders.Get(req.ID)
	if !ok {
		return core.NewErrorf(core.ErrorKindInvalidId, "set viewport: unknown canvas %d", req.ID)
	}
	rec.Append(recorder.Command{Type: request.RecorderCmdViewport, CanvasID: req.ID,
		ViewportOffset: req.Content.ViewportOffset, ViewportShape: req.Content.ViewportShape})
	rec.SetDirty()
	return nil
}

func (r *Renderer) downloadBoard(req request.Request) error {
	c, ok := r.canvases.Get(req.ID)
	if !ok {
		return core.NewErrorf(core.ErrorKindInvalidId, "download board: unknown id %d", req.ID)
	}
	b, ok := c.(*canvas.Board)
	if !ok {
		return core.NewErrorf(core.ErrorKindInvalidAction, "download %d: not a board", req.ID)
	}
	data, err := b.Download()
	if err != nil {
		return err
	}
	r.lastDownload = data
	return nil
}

// deleteCanvas queues req.ID for destruction (spec.md §4.2); the canvas's
// framebuffer/images may still be referenced by an in-flight command
// buffer, so the actual Destroy waits for Renderer.Sweep. The recorder has
// no Vulkan handle of its own, so it's fine to drop immediately — nothing
// reads it once r.canvases.Get(req.ID) starts reporting the canvas gone.
func (r *Renderer) deleteCanvas(req request.Request) error {
	r.canvases.MarkDestroyed(req.ID)
	r.recorders.Delete(req.ID)
	return nil
}

// record forwards a RecorderCommand verbatim into the target canvas's
// recorder, never touching Vulkan directly (spec.md §4.2).
func (r *Renderer) record(req request.Request) error {
	rec, ok := r.recorders.Get(req.Content.Command.CanvasID)
	if !ok {
		return core.NewErrorf(core.ErrorKindInvalidId, "record: unknown canvas %d", req.Content.Command.CanvasID)
	}
	rec.Append(req.Content.Command)
	return nil
}
