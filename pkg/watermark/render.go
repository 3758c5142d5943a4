package watermark

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"golang.org/x/image/font/opentype"
)

// Style is everything a renderer needs to draw one kind of glyph block
type Style struct {
	Text    string
	Font    *opentype.Font
	Size    float64
	Color   Color
	Opacity float64
}

// Fill returns the text color with the configured opacity applied
func (s Style) Fill() color.NRGBA {
	return color.NRGBA{
		R: s.Color.R,
		G: s.Color.G,
		B: s.Color.B,
		A: uint8(math.Round(s.Opacity * 255)),
	}
}

// Renderer rasterizes rotated text onto an output raster
type Renderer interface {
	// Name identifies the backend in config and logs
	Name() string
	// Measure returns the unrotated text block size. The height is the
	// configured size so that placement does not depend on glyph shapes.
	Measure(style Style) (width, height float64, err error)
	// Begin opens a drawing session on dst
	Begin(dst *image.RGBA, style Style) (Surface, error)
}

// Surface is a drawing session bound to one raster
type Surface interface {
	// DrawGlyph draws the text centered on (cx, cy), rotated clockwise by
	// rotation degrees. Transform state never leaks between calls.
	DrawGlyph(cx, cy, rotation float64) error
	// Finish flushes pending output into the raster
	Finish() error
}

// Renderer backend names
const (
	RendererGG = "gg"
	RendererVG = "vg"
)

// RendererByName returns the backend registered under name; empty selects gg
func RendererByName(name string) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", RendererGG:
		return GGRenderer{}, nil
	case RendererVG:
		return VGRenderer{}, nil
	default:
		return nil, &ConfigurationError{Field: "renderer", Reason: fmt.Sprintf("unknown renderer %q (supported: gg, vg)", name)}
	}
}
