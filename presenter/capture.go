package presenter

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/datoviz/datoviz-sub007/canvas"
	"github.com/datoviz/datoviz-sub007/core"
)

// Capture runs one offscreen frame against canvasID and writes the result
// to path as PNG, the DVZ_CAPTURE_PNG hook (spec.md §6.3). If hud is
// non-nil, the FPS overlay text is blitted onto the downloaded frame
// before it's encoded, the "ambient debug HUD" path from the domain stack
// notes rather than a live on-screen overlay (the board never round-trips
// back through the swapchain).
func (p *Presenter) Capture(canvasID core.ID, path string, hud *HUD, fps float64) error {
	if err := p.FrameBoard(canvasID); err != nil {
		return err
	}

	c, ok := p.renderer.Canvas(canvasID)
	if !ok {
		return core.NewErrorf(core.ErrorKindInvalidId, "capture: unknown board %d", canvasID)
	}
	b, ok := c.(*canvas.Board)
	if !ok {
		return core.NewErrorf(core.ErrorKindInvalidAction, "capture: canvas %d is not a board", canvasID)
	}
	b.CollectTimestamps()

	if hud == nil {
		return canvas.CapturePNG(b, path)
	}

	pixels, err := b.Download()
	if err != nil {
		return err
	}
	width, height := b.Extent()
	img := &image.NRGBA{
		Pix:    pixels,
		Stride: int(width) * 4,
		Rect:   image.Rect(0, 0, int(width), int(height)),
	}
	hud.Overlay(img, fmt.Sprintf("%.1f fps", fps), 8, 8)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
