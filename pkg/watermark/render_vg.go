package watermark

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/vgimg"
)

// vgDPI makes one vg point equal one output pixel
const vgDPI = 72

// VGRenderer draws through a gonum vgimg canvas onto a transparent overlay
// which is then composited over the output raster.
type VGRenderer struct{}

// Name implements Renderer
func (VGRenderer) Name() string { return RendererVG }

// Measure implements Renderer
func (VGRenderer) Measure(style Style) (float64, float64, error) {
	face := vgFace(style)
	return float64(face.Width(style.Text)), style.Size, nil
}

// Begin implements Renderer
func (VGRenderer) Begin(dst *image.RGBA, style Style) (Surface, error) {
	bounds := dst.Bounds()
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(bounds.Dx()), vg.Length(bounds.Dy())),
		vgimg.UseDPI(vgDPI),
		vgimg.UseBackgroundColor(color.Transparent),
	)
	c.SetColor(style.Fill())

	face := vgFace(style)
	ext := face.Extents()
	return &vgSurface{
		dst:      dst,
		canvas:   c,
		face:     face,
		text:     style.Text,
		width:    face.Width(style.Text),
		baseline: -(ext.Ascent - ext.Descent) / 2,
		height:   vg.Length(bounds.Dy()),
	}, nil
}

func vgFace(style Style) font.Face {
	return font.Face{
		Font: font.Font{
			Typeface: "Watermark",
			Size:     vg.Length(style.Size),
		},
		Face: style.Font,
	}
}

type vgSurface struct {
	dst      *image.RGBA
	canvas   *vgimg.Canvas
	face     font.Face
	text     string
	width    vg.Length
	baseline vg.Length
	height   vg.Length
}

// DrawGlyph maps raster coordinates (y down, clockwise angles) into the vg
// coordinate system (y up, counter-clockwise angles).
func (s *vgSurface) DrawGlyph(cx, cy, rotation float64) error {
	s.canvas.Push()
	defer s.canvas.Pop()

	s.canvas.Translate(vg.Point{X: vg.Length(cx), Y: s.height - vg.Length(cy)})
	s.canvas.Rotate(-rotation * math.Pi / 180)
	s.canvas.FillString(s.face, vg.Point{X: -s.width / 2, Y: s.baseline}, s.text)
	return nil
}

func (s *vgSurface) Finish() error {
	overlay := s.canvas.Image()
	draw.Draw(s.dst, s.dst.Bounds(), overlay, overlay.Bounds().Min, draw.Over)
	return nil
}
