package canvas

import (
	"image"
	"image/png"
	"os"
)

// CapturePNG downloads a Board's color attachment and writes it to path as
// PNG, the DVZ_CAPTURE_PNG offscreen-capture path (spec.md §6.3): stdlib
// image/png plus the board's existing RGBA8 Download, no visual library
// involved.
func CapturePNG(b *Board, path string) error {
	pixels, err := b.Download()
	if err != nil {
		return err
	}
	img := &image.NRGBA{
		Pix:    pixels,
		Stride: int(b.width) * 4,
		Rect:   image.Rect(0, 0, int(b.width), int(b.height)),
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
