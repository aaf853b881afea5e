// This is an example application that wires host, client, renderer and
// presenter into a single running window, replacing the scene-graph demo
// the engine package used to boot here (testbed.NewTestGame).
package main

import (
	"os"

	"github.com/datoviz/datoviz-sub007/client"
	"github.com/datoviz/datoviz-sub007/config"
	"github.com/datoviz/datoviz-sub007/core"
	"github.com/datoviz/datoviz-sub007/host"
	"github.com/datoviz/datoviz-sub007/presenter"
	"github.com/datoviz/datoviz-sub007/renderer"
	"github.com/datoviz/datoviz-sub007/request"
	"github.com/datoviz/datoviz-sub007/shaders"
)

const (
	windowWidth  = 1024
	windowHeight = 768
)

func main() {
	cfg, err := config.Load(os.Getenv("DVZ_CONFIG"))
	if err != nil {
		core.LogFatal("load config: %v", err)
	}

	c, err := client.New()
	if err != nil {
		core.LogFatal("client.New: %v", err)
	}
	if err := c.Startup("datoviz", windowWidth, windowHeight); err != nil {
		core.LogFatal("client startup: %v", err)
	}

	h, err := host.New(cfg, c.Platform())
	if err != nil {
		core.LogFatal("host.New: %v", err)
	}
	h.OnError(func(err error) { core.LogError("renderer error: %v", err) })

	r := renderer.New(h)
	r.SetShaderProvider(shaders.New(h))

	surface, err := c.Platform().CreateSurface(h.Instance)
	if err != nil {
		core.LogFatal("create surface: %v", err)
	}
	width, height := c.Platform().FramebufferSize()
	canvasID, err := r.CreateWindowed(core.NewID(), surface, uint32(width), uint32(height))
	if err != nil {
		core.LogFatal("create windowed canvas: %v", err)
	}

	p := presenter.New(r, c)

	batch := request.NewBatch(request.FlagNone)
	batch.Append(request.SetViewport(canvasID, [2]int32{0, 0}, [2]uint32{uint32(width), uint32(height)}))
	if errs := p.Submit(batch); len(errs) > 0 {
		core.LogError("startup batch: %v", errs[0])
	}
	batch.Destroy()

	c.On(client.EventWindowResize, client.Sync, func(data any) {
		ev := data.(client.ResizeEvent)
		if ev.Width == 0 || ev.Height == 0 {
			return
		}
		resize := request.NewBatch(request.FlagNone)
		resize.Append(request.Resize(request.ObjectTypeCanvas, canvasID, uint32(ev.Width), uint32(ev.Height), 1))
		if errs := p.Submit(resize); len(errs) > 0 {
			core.LogError("resize batch: %v", errs[0])
		}
		resize.Destroy()
	})

	c.On(client.EventFrame, client.Sync, func(data any) {
		if err := p.FrameWindowed(canvasID); err != nil {
			core.LogError("frame: %v", err)
		}
	})

	c.On(client.EventDestroy, client.Sync, func(data any) {
		r.Idle()
		h.Destroy()
	})

	if capturePath := os.Getenv("DVZ_CAPTURE_PNG"); capturePath != "" {
		runCapture(r, p, capturePath)
		return
	}

	c.Run()
}

// runCapture services the DVZ_CAPTURE_PNG env hook (spec.md §6.3): it
// forces an offscreen board instead of the windowed swapchain, renders one
// frame, and writes it to disk, optionally stamping the FPS HUD with the
// bitmap font file named by DVZ_HUD_FONT.
func runCapture(r *renderer.Renderer, p *presenter.Presenter, path string) {
	boardID := core.NewID()
	batch := request.NewBatch(request.FlagNone)
	batch.Append(request.CreateBoard(boardID, windowWidth, windowHeight, request.FlagNone))
	if errs := p.Submit(batch); len(errs) > 0 {
		core.LogFatal("capture: create board: %v", errs[0])
	}
	batch.Destroy()

	var hud *presenter.HUD
	if fntPath := os.Getenv("DVZ_HUD_FONT"); fntPath != "" {
		h, err := presenter.NewHUD(fntPath)
		if err != nil {
			core.LogWarn("capture: hud disabled: %v", err)
		} else {
			hud = h
		}
	}

	if err := p.Capture(boardID, path, hud, 0); err != nil {
		core.LogFatal("capture: %v", err)
	}
	core.LogInfo("capture written to %s", path)
}
