// Package platform wraps glfw window creation and Vulkan surface setup
// (L1), continuing engine/platform/platform.go's windowing layer but
// routing its input callbacks into client's event dispatch instead of
// leaving them empty.
package platform

import (
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"

	"github.com/datoviz/datoviz-sub007/core"
)

func init() {
	runtime.LockOSThread()
}

// InputSink receives raw glfw callbacks; client.Client implements it to
// translate them into queued MOUSE/KEYBOARD/WINDOW_RESIZE events.
type InputSink interface {
	OnKey(key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey)
	OnMouseButton(button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey)
	OnCursorPos(x, y float64)
	OnScroll(xoff, yoff float64)
	OnFramebufferSize(width, height int)
}

// Platform owns one glfw window. A headless Platform (Window == nil) backs
// Board-only (offscreen) hosts, which need no window at all.
type Platform struct {
	Window *glfw.Window
	sink   InputSink
}

// New constructs an unopened Platform; call Startup to open a window.
func New() (*Platform, error) {
	return &Platform{}, nil
}

// Startup creates and shows a window, wiring every glfw callback to sink.
func (p *Platform) Startup(title string, x, y, width, height int, sink InputSink) error {
	if err := glfw.Init(); err != nil {
		return core.NewError(core.ErrorKindUnsupportedFeature, err)
	}
	p.sink = sink

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // no GL context; Vulkan owns presentation

	window, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return core.NewError(core.ErrorKindUnsupportedFeature, err)
	}
	p.Window = window

	window.SetKeyCallback(p.onKey)
	window.SetMouseButtonCallback(p.onMouseButton)
	window.SetCursorPosCallback(p.onCursorPos)
	window.SetScrollCallback(p.onScroll)
	window.SetFramebufferSizeCallback(p.onFramebufferSize)
	window.SetPos(x, y)
	window.Show()
	return nil
}

func (p *Platform) onKey(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if p.sink != nil {
		p.sink.OnKey(key, scancode, action, mods)
	}
}

func (p *Platform) onMouseButton(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	if p.sink != nil {
		p.sink.OnMouseButton(button, action, mods)
	}
}

func (p *Platform) onCursorPos(w *glfw.Window, x, y float64) {
	if p.sink != nil {
		p.sink.OnCursorPos(x, y)
	}
}

func (p *Platform) onScroll(w *glfw.Window, xoff, yoff float64) {
	if p.sink != nil {
		p.sink.OnScroll(xoff, yoff)
	}
}

func (p *Platform) onFramebufferSize(w *glfw.Window, width, height int) {
	if p.sink != nil {
		p.sink.OnFramebufferSize(width, height)
	}
}

// ShouldClose reports whether the OS asked the window to close.
func (p *Platform) ShouldClose() bool {
	return p.Window != nil && p.Window.ShouldClose()
}

// PollEvents pumps the glfw event queue, delivering any pending callbacks.
func (p *Platform) PollEvents() {
	glfw.PollEvents()
}

// FramebufferSize returns the window's current pixel extent.
func (p *Platform) FramebufferSize() (int, int) {
	if p.Window == nil {
		return 0, 0
	}
	return p.Window.GetFramebufferSize()
}

// RequiredInstanceExtensions implements host.Surfacer.
func (p *Platform) RequiredInstanceExtensions() []string {
	return glfw.GetRequiredInstanceExtensions()
}

// CreateSurface implements host.Surfacer.
func (p *Platform) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	surface, err := p.Window.CreateWindowSurface(instance, nil)
	if err != nil {
		return vk.NullSurface, core.NewError(core.ErrorKindUnsupportedFeature, err)
	}
	return vk.SurfaceFromPointer(surface), nil
}

// Shutdown terminates glfw, invalidating every window it owns.
func (p *Platform) Shutdown() error {
	glfw.Terminate()
	return nil
}
