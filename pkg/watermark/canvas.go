package watermark

import (
	"image"

	"golang.org/x/image/draw"
)

// NewCanvas allocates an output raster the size of src with its origin at
// (0,0) and copies the source pixels in unmodified. An *image.RGBA source is
// copied byte for byte; other color models go through the RGBA model.
func NewCanvas(src image.Image) *image.RGBA {
	bounds := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)
	return dst
}
