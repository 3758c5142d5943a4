package watermark

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, encodePNG(t, img), 0644))
}

// testEngine never touches system fonts so measurements are stable
func testEngine(opts ...Option) *Engine {
	fm := NewFontManager()
	fm.SetSystemFontPaths(nil)
	return NewEngine(append([]Option{WithFontManager(fm)}, opts...)...)
}

func activeConfig(text string) Config {
	cfg := Defaults()
	cfg.Enabled = true
	cfg.Text = text
	return cfg
}

// changedPixels counts pixels of got that differ from want inside r
func changedPixels(want, got *image.RGBA, r image.Rectangle) int {
	n := 0
	r = r.Intersect(got.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if want.RGBAAt(x, y) != got.RGBAAt(x, y) {
				n++
			}
		}
	}
	return n
}
