package watermark

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var black = color.RGBA{A: 255}

func TestNewCanvas(t *testing.T) {
	src := solidImage(5, 4, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	src.Set(2, 1, color.RGBA{R: 200, A: 255})

	out := NewCanvas(src)
	assert.Equal(t, src.Bounds(), out.Bounds())
	assert.Equal(t, src.Pix, out.Pix)

	// the copy is independent of the source
	out.Set(0, 0, color.RGBA{G: 255, A: 255})
	assert.Equal(t, color.RGBA{R: 10, G: 20, B: 30, A: 255}, src.RGBAAt(0, 0))

	t.Run("origin normalized", func(t *testing.T) {
		sub := src.SubImage(image.Rect(2, 1, 5, 4))
		out := NewCanvas(sub)
		assert.Equal(t, image.Rect(0, 0, 3, 3), out.Bounds())
		assert.Equal(t, color.RGBA{R: 200, A: 255}, out.RGBAAt(0, 0))
	})
}

func TestCompositeInactiveReturnsCopy(t *testing.T) {
	src := solidImage(64, 48, color.RGBA{R: 40, G: 80, B: 120, A: 255})
	e := testEngine()

	for name, cfg := range map[string]Config{
		"disabled":   func() Config { c := activeConfig("SAMPLE"); c.Enabled = false; return c }(),
		"empty text": activeConfig(""),
	} {
		t.Run(name, func(t *testing.T) {
			out, err := e.Composite(context.Background(), src, cfg)
			require.NoError(t, err)
			assert.Equal(t, src.Bounds(), out.Bounds())
			assert.Equal(t, src.Pix, out.Pix)
		})
	}
}

func TestCompositeInvalidConfig(t *testing.T) {
	cfg := activeConfig("SAMPLE")
	cfg.Opacity = 3

	out, err := testEngine().Composite(context.Background(), solidImage(8, 8, black), cfg)
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestCompositeInactiveSkipsValidation(t *testing.T) {
	src := solidImage(16, 8, color.RGBA{R: 7, G: 8, B: 9, A: 255})

	cfg := Defaults()
	cfg.Text = "SAMPLE"
	cfg.Spacing = -5
	cfg.Size = 0

	out, err := testEngine().Composite(context.Background(), src, cfg)
	require.NoError(t, err)
	assert.Equal(t, src.Pix, out.Pix)

	layout, err := testEngine().Layout(cfg, 16, 8)
	require.NoError(t, err)
	assert.Empty(t, layout.Anchors)
}

func TestCompositeRejectsOversizedGrid(t *testing.T) {
	e := testEngine()

	cfg := activeConfig("i")
	cfg.Fullscreen = true
	cfg.Size = 1
	cfg.Spacing = 0

	_, err := e.Layout(cfg, 4000, 3000)
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "spacing", cfgErr.Field)

	out, err := e.Composite(context.Background(), solidImage(200, 100, black), cfg)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, ErrConfiguration)

	// default size and spacing fit comfortably under the limit
	cfg.Size = 24
	cfg.Spacing = 20
	layout, err := e.Layout(cfg, 4000, 3000)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(layout.Anchors), MaxTiles)
}

func TestLayoutSingleAnchor(t *testing.T) {
	e := testEngine()
	cfg := activeConfig("SAMPLE")
	cfg.Padding = 10

	layout, err := e.Layout(cfg, 800, 600)
	require.NoError(t, err)

	assert.Greater(t, layout.TextWidth, 0.0)
	assert.Equal(t, 24.0, layout.TextHeight)
	require.Len(t, layout.Anchors, 1)
	assert.InDelta(t, 800-layout.TextWidth-10, layout.Anchors[0].X, 1e-9)
	assert.InDelta(t, 600-24-10, layout.Anchors[0].Y, 1e-9)

	t.Run("inactive config has no anchors", func(t *testing.T) {
		layout, err := e.Layout(Defaults(), 800, 600)
		require.NoError(t, err)
		assert.Empty(t, layout.Anchors)
	})
}

func TestLayoutRendererAgreement(t *testing.T) {
	cfg := activeConfig("Hello, world")
	cfg.Rotation = 30

	gg, err := testEngine(WithRenderer(GGRenderer{})).Layout(cfg, 400, 300)
	require.NoError(t, err)
	vg, err := testEngine(WithRenderer(VGRenderer{})).Layout(cfg, 400, 300)
	require.NoError(t, err)

	assert.InDelta(t, gg.TextWidth, vg.TextWidth, 2)
	assert.Equal(t, gg.TextHeight, vg.TextHeight)
}

func TestCompositeDrawsAtAnchor(t *testing.T) {
	for _, r := range []Renderer{GGRenderer{}, VGRenderer{}} {
		t.Run(r.Name(), func(t *testing.T) {
			e := testEngine(WithRenderer(r))
			src := solidImage(400, 300, black)

			cfg := activeConfig("SAMPLE")
			cfg.Opacity = 1
			cfg.Padding = 10

			out, err := e.Composite(context.Background(), src, cfg)
			require.NoError(t, err)
			assert.Equal(t, src.Bounds(), out.Bounds())

			layout, err := e.Layout(cfg, 400, 300)
			require.NoError(t, err)
			a := layout.Anchors[0]
			box := image.Rect(
				int(math.Floor(a.X)), int(math.Floor(a.Y)),
				int(math.Ceil(a.X+layout.Extent.Width)), int(math.Ceil(a.Y+layout.Extent.Height)),
			)

			assert.Greater(t, changedPixels(src, out, box), 0, "nothing drawn inside the glyph box")
			assert.Equal(t, 0, changedPixels(src, out, image.Rect(0, 0, 200, 150)), "pixels changed far from the anchor")
		})
	}
}

func TestCompositeRotatedCenter(t *testing.T) {
	e := testEngine()
	src := solidImage(300, 300, black)

	cfg := activeConfig("WWWWWW")
	cfg.Opacity = 1
	cfg.Position = Center
	cfg.Rotation = 90

	out, err := e.Composite(context.Background(), src, cfg)
	require.NoError(t, err)

	// a vertical block through the middle, nothing at the left and right edges
	assert.Greater(t, changedPixels(src, out, image.Rect(135, 100, 165, 200)), 0)
	assert.Equal(t, 0, changedPixels(src, out, image.Rect(0, 0, 100, 300)))
	assert.Equal(t, 0, changedPixels(src, out, image.Rect(200, 0, 300, 300)))
}

func TestCompositeFullscreen(t *testing.T) {
	e := testEngine()
	src := solidImage(320, 240, black)

	cfg := activeConfig("TILE")
	cfg.Opacity = 1
	cfg.Fullscreen = true
	cfg.Rotation = -30
	cfg.Spacing = 10

	out, err := e.Composite(context.Background(), src, cfg)
	require.NoError(t, err)
	assert.Equal(t, src.Bounds(), out.Bounds())

	// each quadrant receives ink
	for _, q := range []image.Rectangle{
		image.Rect(0, 0, 160, 120),
		image.Rect(160, 0, 320, 120),
		image.Rect(0, 120, 160, 240),
		image.Rect(160, 120, 320, 240),
	} {
		assert.Greater(t, changedPixels(src, out, q), 0, "quadrant %v is empty", q)
	}
}

func TestCompositeOpacityZeroLeavesPixels(t *testing.T) {
	src := solidImage(120, 60, color.RGBA{R: 90, G: 90, B: 90, A: 255})
	cfg := activeConfig("GHOST")
	cfg.Opacity = 0
	cfg.Position = Center

	out, err := testEngine().Composite(context.Background(), src, cfg)
	require.NoError(t, err)
	assert.Equal(t, src.Pix, out.Pix)
}

func TestCompositeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := activeConfig("SAMPLE")
	cfg.Fullscreen = true

	out, err := testEngine().Composite(ctx, solidImage(200, 200, black), cfg)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompositeConcurrent(t *testing.T) {
	e := testEngine()
	cfg := activeConfig("SHARED")
	cfg.Fullscreen = true

	errs := make(chan error, 8)
	for i := 0; i < cap(errs); i++ {
		go func() {
			_, err := e.Composite(context.Background(), solidImage(160, 120, black), cfg)
			errs <- err
		}()
	}
	for i := 0; i < cap(errs); i++ {
		assert.NoError(t, <-errs)
	}
}

func TestRendererByName(t *testing.T) {
	r, err := RendererByName("")
	require.NoError(t, err)
	assert.Equal(t, RendererGG, r.Name())

	r, err = RendererByName("VG")
	require.NoError(t, err)
	assert.Equal(t, RendererVG, r.Name())

	_, err = RendererByName("cairo")
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestStyleFill(t *testing.T) {
	s := Style{Color: Color{R: 1, G: 2, B: 3}, Opacity: 0.5}
	assert.Equal(t, color.NRGBA{R: 1, G: 2, B: 3, A: 128}, s.Fill())
}
