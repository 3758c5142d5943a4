package watermark

import (
	"image"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
)

// GGRenderer draws directly onto the output raster through a gg context
type GGRenderer struct{}

// Name implements Renderer
func (GGRenderer) Name() string { return RendererGG }

// Measure implements Renderer
func (GGRenderer) Measure(style Style) (float64, float64, error) {
	face, err := NewFace(style.Font, style.Size)
	if err != nil {
		return 0, 0, err
	}
	defer face.Close()

	return advance(face, style.Text), style.Size, nil
}

// Begin implements Renderer
func (GGRenderer) Begin(dst *image.RGBA, style Style) (Surface, error) {
	face, err := NewFace(style.Font, style.Size)
	if err != nil {
		return nil, err
	}

	dc := gg.NewContextForRGBA(dst)
	dc.SetFontFace(face)
	dc.SetColor(style.Fill())

	m := face.Metrics()
	return &ggSurface{
		dc:       dc,
		face:     face,
		text:     style.Text,
		width:    advance(face, style.Text),
		baseline: (fixedToFloat(m.Ascent) - fixedToFloat(m.Descent)) / 2,
	}, nil
}

type ggSurface struct {
	dc       *gg.Context
	face     font.Face
	text     string
	width    float64
	baseline float64
}

func (s *ggSurface) DrawGlyph(cx, cy, rotation float64) error {
	s.dc.Push()
	defer s.dc.Pop()

	s.dc.Translate(cx, cy)
	s.dc.Rotate(gg.Radians(rotation))
	// baseline sits below the origin so ascent and descent straddle it evenly
	s.dc.DrawString(s.text, -s.width/2, s.baseline)
	return nil
}

func (s *ggSurface) Finish() error {
	return s.face.Close()
}
