package presenter

import (
	"image"
	"image/draw"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/fzipp/bmfont"
	xdraw "golang.org/x/image/draw"
)

type glyph struct {
	page                       int
	x, y, width, height        int
	xoffset, yoffset, xadvance int
}

// HUD renders the debug FPS counter as a bitmap-font text blit, continuing
// engine/assets/loaders/bitmap_font.go's bmfont.Load path but against a
// plain image destination instead of a GPU texture: an ambient operator
// aid, not the excluded scene-graph visual library.
type HUD struct {
	glyphs map[rune]glyph
	pages  map[int]image.Image
}

// NewHUD loads a bmfont .fnt descriptor and its referenced page atlases
// (PNGs alongside the descriptor) for use by Overlay.
func NewHUD(fntPath string) (*HUD, error) {
	font, err := bmfont.Load(fntPath)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(fntPath)
	pages := make(map[int]image.Image, len(font.Descriptor.Pages))
	for _, p := range font.Descriptor.Pages {
		f, err := os.Open(filepath.Join(dir, p.File))
		if err != nil {
			return nil, err
		}
		img, _, err := image.Decode(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		pages[int(p.ID)] = img
	}

	glyphs := make(map[rune]glyph, len(font.Descriptor.Chars))
	for _, g := range font.Descriptor.Chars {
		glyphs[rune(g.ID)] = glyph{
			page:     int(g.Page),
			x:        int(g.X),
			y:        int(g.Y),
			width:    int(g.Width),
			height:   int(g.Height),
			xoffset:  int(g.XOffset),
			yoffset:  int(g.YOffset),
			xadvance: int(g.XAdvance),
		}
	}

	return &HUD{glyphs: glyphs, pages: pages}, nil
}

// Overlay blits text onto dst at (x, y) using the bitmap-font atlas,
// glyph-by-glyph via the page image each character is drawn from.
func (h *HUD) Overlay(dst draw.Image, text string, x, y int) {
	cursor := x
	for _, r := range text {
		g, ok := h.glyphs[r]
		if !ok {
			continue
		}
		page, ok := h.pages[g.page]
		if !ok {
			continue
		}
		src := image.Rect(g.x, g.y, g.x+g.width, g.y+g.height)
		dstRect := image.Rect(cursor+g.xoffset, y+g.yoffset, cursor+g.xoffset+g.width, y+g.yoffset+g.height)
		xdraw.Draw(dst, dstRect, page, src.Min, xdraw.Over)
		cursor += g.xadvance
	}
}
