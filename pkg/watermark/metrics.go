package watermark

import (
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// advance is the horizontal pen advance of text including kerning
func advance(face font.Face, text string) float64 {
	return fixedToFloat(font.MeasureString(face, text))
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
