package watermark

import (
	"fmt"
	"math"
)

// Extent is the axis-aligned footprint of a glyph block
type Extent struct {
	Width  float64
	Height float64
}

// RotatedExtent returns the bounding box of a textW x textH block rotated by
// rotation degrees about its center.
func RotatedExtent(textW, textH, rotation float64) Extent {
	rad := rotation * math.Pi / 180
	cos := math.Abs(math.Cos(rad))
	sin := math.Abs(math.Sin(rad))
	return Extent{
		Width:  textW*cos + textH*sin,
		Height: textW*sin + textH*cos,
	}
}

// Anchor is the top-left corner of a rotated glyph block's bounding box
type Anchor struct {
	X, Y float64
}

// Center returns the point the glyph block is drawn around
func (a Anchor) Center(ext Extent) (float64, float64) {
	return a.X + ext.Width/2, a.Y + ext.Height/2
}

// Align resolves a single axis of a named position
type Align int

const (
	AlignStart Align = iota
	AlignMiddle
	AlignEnd
)

type axes struct {
	h, v Align
}

var positionAxes = map[Position]axes{
	TopLeft:      {AlignStart, AlignStart},
	TopCenter:    {AlignMiddle, AlignStart},
	TopRight:     {AlignEnd, AlignStart},
	CenterLeft:   {AlignStart, AlignMiddle},
	Center:       {AlignMiddle, AlignMiddle},
	CenterRight:  {AlignEnd, AlignMiddle},
	BottomLeft:   {AlignStart, AlignEnd},
	BottomCenter: {AlignMiddle, AlignEnd},
	BottomRight:  {AlignEnd, AlignEnd},
}

// Axes splits p into its horizontal and vertical alignment
func (p Position) Axes() (h, v Align) {
	a, ok := positionAxes[p]
	if !ok {
		a = positionAxes[BottomRight]
	}
	return a.h, a.v
}

// ResolveAxis computes the offset along one axis. Padding does not apply to
// centered axes.
func ResolveAxis(align Align, canvas, extent, padding float64) float64 {
	switch align {
	case AlignStart:
		return padding
	case AlignEnd:
		return canvas - extent - padding
	default:
		return (canvas - extent) / 2
	}
}

// PlaceSingle returns the one anchor used when fullscreen tiling is off
func PlaceSingle(pos Position, padding, canvasW, canvasH float64, ext Extent) Anchor {
	h, v := pos.Axes()
	return Anchor{
		X: ResolveAxis(h, canvasW, ext.Width, padding),
		Y: ResolveAxis(v, canvasH, ext.Height, padding),
	}
}

// MaxTiles bounds the number of glyph blocks a fullscreen grid may hold,
// overscan ring included
const MaxTiles = 100000

// TileGrid describes the fullscreen tiling lattice. Rows and columns run over
// [-1, Rows+1) and [-1, Cols+1) so one ring of tiles overscans every edge.
type TileGrid struct {
	PitchX, PitchY float64
	Cols, Rows     int
}

// NewTileGrid computes the lattice for a canvas. A pitch below one pixel or a
// grid of more than MaxTiles blocks is a ConfigurationError.
func NewTileGrid(spacing, canvasW, canvasH float64, ext Extent) (TileGrid, error) {
	pitchX := ext.Width + spacing
	pitchY := ext.Height + spacing
	if !(pitchX >= 1) || !(pitchY >= 1) || math.IsInf(pitchX, 0) || math.IsInf(pitchY, 0) {
		return TileGrid{}, &ConfigurationError{
			Field:  "spacing",
			Reason: fmt.Sprintf("tile pitch %.3gx%.3g is below one pixel; increase size or spacing", pitchX, pitchY),
		}
	}

	cols := math.Ceil(canvasW / pitchX)
	rows := math.Ceil(canvasH / pitchY)
	if n := (cols + 2) * (rows + 2); n > MaxTiles {
		return TileGrid{}, &ConfigurationError{
			Field:  "spacing",
			Reason: fmt.Sprintf("fullscreen grid needs %.0f tiles, more than %d; increase size or spacing", n, MaxTiles),
		}
	}

	return TileGrid{
		PitchX: pitchX,
		PitchY: pitchY,
		Cols:   int(cols),
		Rows:   int(rows),
	}, nil
}

// Len returns the number of anchors including the overscan ring
func (g TileGrid) Len() int {
	if g.PitchX <= 0 || g.PitchY <= 0 {
		return 0
	}
	return (g.Cols + 2) * (g.Rows + 2)
}

// Anchors enumerates the grid row by row
func (g TileGrid) Anchors() []Anchor {
	anchors := make([]Anchor, 0, g.Len())
	if g.Len() == 0 {
		return anchors
	}
	for row := -1; row < g.Rows+1; row++ {
		for col := -1; col < g.Cols+1; col++ {
			anchors = append(anchors, Anchor{
				X: float64(col) * g.PitchX,
				Y: float64(row) * g.PitchY,
			})
		}
	}
	return anchors
}

// PlaceTiles returns the fullscreen anchor grid
func PlaceTiles(spacing, canvasW, canvasH float64, ext Extent) ([]Anchor, error) {
	g, err := NewTileGrid(spacing, canvasW, canvasH, ext)
	if err != nil {
		return nil, err
	}
	return g.Anchors(), nil
}

// Plan selects the placement strategy for cfg and returns every anchor to draw
func Plan(cfg Config, canvasW, canvasH float64, ext Extent) ([]Anchor, error) {
	if cfg.Fullscreen {
		return PlaceTiles(cfg.Spacing, canvasW, canvasH, ext)
	}
	return []Anchor{PlaceSingle(cfg.Position, cfg.Padding, canvasW, canvasH, ext)}, nil
}
