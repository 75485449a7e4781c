package engine

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/folio-dev/folio/internal/compile"
)

// frame is one laid-out page.
type frame struct {
	lines []string
}

func newFrame(lines []string) *frame {
	return &frame{lines: lines}
}

func (f *frame) Size() (float64, float64) {
	return pageWidth, pageHeight
}

// Lines returns the text content of the page.
func (f *frame) Lines() []string {
	return f.lines
}

// Rasterizer renders frames as white pages with a gray band per text line.
// A stand-in for a real glyph renderer; the output dimensions and pixel
// format match what the wire protocol expects.
type Rasterizer struct {
	Background color.RGBA
	Ink        color.RGBA
}

var _ compile.Rasterizer = (*Rasterizer)(nil)

// NewRasterizer creates a white-background rasterizer.
func NewRasterizer() *Rasterizer {
	return &Rasterizer{
		Background: color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		Ink:        color.RGBA{R: 0xd0, G: 0xd0, B: 0xd0, A: 0xff},
	}
}

const (
	lineHeight = 14.0
	pageMargin = 40.0
)

// Render rasterizes the frame at the given pixel-per-point scale into
// premultiplied RGBA.
func (r *Rasterizer) Render(fr compile.Frame, scale float64) *image.RGBA {
	w, h := fr.Size()
	bounds := image.Rect(0, 0, int(math.Ceil(w*scale)), int(math.Ceil(h*scale)))
	img := image.NewRGBA(bounds)
	draw.Draw(img, bounds, image.NewUniform(r.Background), image.Point{}, draw.Src)

	pf, ok := fr.(*frame)
	if !ok {
		return img
	}

	for i, line := range pf.Lines() {
		if line == "" {
			continue
		}
		top := (pageMargin + float64(i)*lineHeight) * scale
		bottom := top + (lineHeight-4)*scale
		if top >= float64(bounds.Dy()) {
			break
		}
		width := math.Min(float64(len(line))*7*scale, w*scale-2*pageMargin*scale)
		band := image.Rect(
			int(pageMargin*scale), int(top),
			int(pageMargin*scale+width), int(math.Min(bottom, float64(bounds.Dy()))),
		)
		draw.Draw(img, band, image.NewUniform(r.Ink), image.Point{}, draw.Src)
	}
	return img
}
