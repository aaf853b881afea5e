// Package renderer implements the request router (L5): the only code that
// touches Vulkan objects in response to a Batch, continuing the teacher's
// dispatch-by-field style (engine/core/events.go's event-code table)
// generalized from a fixed array into a 2D (action, object type) table
// (spec.md §4.2, §9).
package renderer

import (
	vk "github.com/goki/vulkan"

	"github.com/datoviz/datoviz-sub007/canvas"
	"github.com/datoviz/datoviz-sub007/core"
	"github.com/datoviz/datoviz-sub007/gpu"
	"github.com/datoviz/datoviz-sub007/host"
	"github.com/datoviz/datoviz-sub007/recorder"
	"github.com/datoviz/datoviz-sub007/request"
)

// ShaderProvider resolves a shader object id to its compiled pipeline
// stages. Renderer depends on this interface rather than importing the
// shaders package directly, the same import-cycle avoidance recorder uses
// for its Target/Drawer interfaces.
type ShaderProvider interface {
	Stages(shaderID core.ID) ([]vk.PipelineShaderStageCreateInfo, error)
}

type routerKey struct {
	action  request.Action
	objType request.ObjectType
}

type routerFunc func(*Renderer, request.Request) error

// Renderer owns every Vulkan object a Batch can create, keyed by core.ID in
// per-kind slot maps, plus one Recorder per canvas/board.
type Renderer struct {
	host *host.Host

	canvases  *core.Slotmap[canvas.Canvas]
	recorders *core.Slotmap[*recorder.Recorder]
	dats      *core.Slotmap[*gpu.Buffer]
	texs      *core.Slotmap[*gpu.Image]
	samplers  *core.Slotmap[*gpu.Sampler]
	slotsObjs *core.Slotmap[*gpu.Slots]
	graphics  *core.Slotmap[*GraphicsObject]
	computes  *core.Slotmap[*ComputeObject]

	shaders ShaderProvider

	// activeCanvas is set by the presenter before Recorder.Set replays into
	// a particular canvas, since recorder.Drawer's methods only carry an
	// image index, not a canvas reference.
	activeCanvas canvas.Canvas

	router map[routerKey]routerFunc

	// lastDownload holds the most recent downloadDat/downloadBoard result,
	// written back into the triggering request's Content.Data by Requests.
	lastDownload []byte
}

// New creates an empty Renderer bound to h.
func New(h *host.Host) *Renderer {
	r := &Renderer{
		host:      h,
		canvases:  core.NewSlotmap[canvas.Canvas](),
		recorders: core.NewSlotmap[*recorder.Recorder](),
		dats:      core.NewSlotmap[*gpu.Buffer](),
		texs:      core.NewSlotmap[*gpu.Image](),
		samplers:  core.NewSlotmap[*gpu.Sampler](),
		slotsObjs: core.NewSlotmap[*gpu.Slots](),
		graphics:  core.NewSlotmap[*GraphicsObject](),
		computes:  core.NewSlotmap[*ComputeObject](),
	}
	r.router = r.buildRouter()
	return r
}

// SetShaderProvider wires the shader-stage resolver; must be set before any
// `set graphics`/`set compute` request bakes a pipeline.
func (r *Renderer) SetShaderProvider(p ShaderProvider) {
	r.shaders = p
}

// SetActiveCanvas selects which canvas's command buffer BindPipeline/Draw*
// issue into, for the duration of one Recorder.Set replay.
func (r *Renderer) SetActiveCanvas(c canvas.Canvas) {
	r.activeCanvas = c
}

// Canvas returns the canvas registered under id, if any.
func (r *Renderer) Canvas(id core.ID) (canvas.Canvas, bool) {
	return r.canvases.Get(id)
}

// Recorder returns the recorder owned by canvas id, if any.
func (r *Renderer) Recorder(id core.ID) (*recorder.Recorder, bool) {
	return r.recorders.Get(id)
}

func (r *Renderer) buildRouter() map[routerKey]routerFunc {
	m := make(map[routerKey]routerFunc)

	m[routerKey{request.ActionCreate, request.ObjectTypeCanvas}] = (*Renderer).createCanvas
	m[routerKey{request.ActionCreate, request.ObjectTypeBoard}] = (*Renderer).createBoard
	m[routerKey{request.ActionCreate, request.ObjectTypeDat}] = (*Renderer).createDat
	m[routerKey{request.ActionCreate, request.ObjectTypeTex}] = (*Renderer).createTex
	m[routerKey{request.ActionCreate, request.ObjectTypeSampler}] = (*Renderer).createSampler
	m[routerKey{request.ActionCreate, request.ObjectTypeGraphics}] = (*Renderer).createGraphics
	m[routerKey{request.ActionCreate, request.ObjectTypeCompute}] = (*Renderer).createCompute

	m[routerKey{request.ActionResize, request.ObjectTypeDat}] = (*Renderer).resizeDat
	m[routerKey{request.ActionResize, request.ObjectTypeTex}] = (*Renderer).resizeTex
	m[routerKey{request.ActionResize, request.ObjectTypeCanvas}] = (*Renderer).resizeCanvas
	m[routerKey{request.ActionResize, request.ObjectTypeBoard}] = (*Renderer).resizeBoard

	m[routerKey{request.ActionUpload, request.ObjectTypeDat}] = (*Renderer).uploadDat
	m[routerKey{request.ActionUpload, request.ObjectTypeTex}] = (*Renderer).uploadTex
	m[routerKey{request.ActionUpfill, request.ObjectTypeDat}] = (*Renderer).upfillDat
	m[routerKey{request.ActionDownload, request.ObjectTypeDat}] = (*Renderer).downloadDat
	m[routerKey{request.ActionDownload, request.ObjectTypeBoard}] = (*Renderer).downloadBoard

	m[routerKey{request.ActionSet, request.ObjectTypeCanvas}] = (*Renderer).setViewport
	m[routerKey{request.ActionSet, request.ObjectTypeGraphics}] = (*Renderer).bakeGraphics
	m[routerKey{request.ActionSet, request.ObjectTypeCompute}] = (*Renderer).bakeCompute

	m[routerKey{request.ActionBind, request.ObjectTypeGraphics}] = (*Renderer).bindGraphics
	m[routerKey{request.ActionBind, request.ObjectTypeCompute}] = (*Renderer).bindCompute

	m[routerKey{request.ActionDelete, request.ObjectTypeDat}] = (*Renderer).deleteDat
	m[routerKey{request.ActionDelete, request.ObjectTypeTex}] = (*Renderer).deleteTex
	m[routerKey{request.ActionDelete, request.ObjectTypeSampler}] = (*Renderer).deleteSampler
	m[routerKey{request.ActionDelete, request.ObjectTypeGraphics}] = (*Renderer).deleteGraphics
	m[routerKey{request.ActionDelete, request.ObjectTypeCompute}] = (*Renderer).deleteCompute
	m[routerKey{request.ActionDelete, request.ObjectTypeCanvas}] = (*Renderer).deleteCanvas
	m[routerKey{request.ActionDelete, request.ObjectTypeBoard}] = (*Renderer).deleteCanvas

	m[routerKey{request.ActionRecord, request.ObjectTypeRecorderCommand}] = (*Renderer).record

	m[routerKey{request.ActionGet, request.ObjectTypeDat}] = (*Renderer).getDat
	m[routerKey{request.ActionGet, request.ObjectTypeTex}] = (*Renderer).getTex
	m[routerKey{request.ActionGet, request.ObjectTypeSampler}] = (*Renderer).getSampler
	m[routerKey{request.ActionGet, request.ObjectTypeGraphics}] = (*Renderer).getGraphics
	m[routerKey{request.ActionGet, request.ObjectTypeCompute}] = (*Renderer).getCompute
	m[routerKey{request.ActionFlush, request.ObjectTypeDat}] = (*Renderer).noop

	return m
}

func (r *Renderer) noop(request.Request) error { return nil }

// get* handlers back ActionGet: today every object's wire-visible metadata
// is just "does this id exist", which is exactly what an auto-assigned-id
// readback needs (spec.md §4.2) — Requests below is what actually returns
// the id to the caller, by writing it into the request in place.
func (r *Renderer) getDat(req request.Request) error {
	if _, ok := r.dats.Get(req.ID); !ok {
		return core.NewErrorf(core.ErrorKindInvalidId, "get dat: unknown id %d", req.ID)
	}
	return nil
}

func (r *Renderer) getTex(req request.Request) error {
	if _, ok := r.texs.Get(req.ID); !ok {
		return core.NewErrorf(core.ErrorKindInvalidId, "get tex: unknown id %d", req.ID)
	}
	return nil
}

func (r *Renderer) getSampler(req request.Request) error {
	if _, ok := r.samplers.Get(req.ID); !ok {
		return core.NewErrorf(core.ErrorKindInvalidId, "get sampler: unknown id %d", req.ID)
	}
	return nil
}

func (r *Renderer) getGraphics(req request.Request) error {
	if _, ok := r.graphics.Get(req.ID); !ok {
		return core.NewErrorf(core.ErrorKindInvalidId, "get graphics: unknown id %d", req.ID)
	}
	return nil
}

func (r *Renderer) getCompute(req request.Request) error {
	if _, ok := r.computes.Get(req.ID); !ok {
		return core.NewErrorf(core.ErrorKindInvalidId, "get compute: unknown id %d", req.ID)
	}
	return nil
}

// Request dispatches a single request through the router (spec.md §4.2:
// "an object is created only after a create request succeeds; subsequent
// set/bind/update requests with an unknown id are errors").
func (r *Renderer) Request(req request.Request) error {
	fn, ok := r.router[routerKey{req.Action, req.ObjectType}]
	if !ok {
		return core.NewErrorf(core.ErrorKindInvalidAction, "no handler for action=%s object_type=%s", req.Action, req.ObjectType)
	}
	if req.Action != request.ActionCreate && req.ID == core.NoID {
		return core.NewErrorf(core.ErrorKindInvalidId, "%s %s: id required", req.Action, req.ObjectType)
	}
	return fn(r, req)
}

// Requests processes every request in batch in order, collecting per-request
// errors without rolling back earlier successful requests (spec.md §7: "no
// rollback across a batch"). A `create` request with id == 0 is assigned a
// fresh id here, before the handler runs, and that id is written back into
// the batch's own storage so the caller can read it after Submit returns
// (spec.md §4.2), the same write-back path Content.Data already uses for
// `download`.
func (r *Renderer) Requests(batch *request.Batch) []error {
	reqs := batch.Requests()
	errs := make([]error, len(reqs))
	for i, req := range reqs {
		r.lastDownload = nil
		if req.Action == request.ActionCreate && req.ID == core.NoID {
			req.ID = core.NewID()
			reqs[i].ID = req.ID
		}
		if err := r.Request(req); err != nil {
			errs[i] = err
			r.host.ReportError(err)
			continue
		}
		if req.Action == request.ActionDownload {
			reqs[i].Content.Data = r.lastDownload
		}
	}
	return errs
}

// Sweep performs the actual Vulkan destruction of every object a `delete`
// request has marked need_destroy since the last Sweep (spec.md §4.2). The
// caller must already have waited for the GPU to go idle — use Idle, which
// does both — otherwise a resource still referenced by an in-flight command
// buffer can be freed out from under it.
func (r *Renderer) Sweep() {
	r.dats.Sweep(func(b *gpu.Buffer) { b.Destroy(r.host) })
	r.texs.Sweep(func(t *gpu.Image) { t.Destroy(r.host) })
	r.samplers.Sweep(func(s *gpu.Sampler) { s.Destroy(r.host) })
	r.graphics.Sweep(func(g *GraphicsObject) {
		if g.descriptors != nil {
			g.descriptors.Destroy(r.host)
		}
		if g.pipeline != nil {
			g.pipeline.Destroy(r.host)
		}
	})
	r.computes.Sweep(func(c *ComputeObject) {
		if c.descriptors != nil {
			c.descriptors.Destroy(r.host)
		}
		if c.pipeline != nil {
			c.pipeline.Destroy(r.host)
		}
	})
	r.slotsObjs.Sweep(func(s *gpu.Slots) { s.Destroy(r.host) })
	r.canvases.Sweep(func(c canvas.Canvas) { c.Destroy() })
}

// Idle waits for the GPU to finish all outstanding work, then sweeps every
// object marked need_destroy. Called at the renderer's known safe points:
// canvas/board resize (which already needs the wait) and shutdown.
func (r *Renderer) Idle() error {
	if err := r.host.WaitIdle(); err != nil {
		return err
	}
	r.Sweep()
	return nil
}
