package watermark

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotatedExtent(t *testing.T) {
	const w, h = 120.0, 24.0

	tests := []struct {
		name     string
		rotation float64
		want     Extent
	}{
		{"unrotated", 0, Extent{w, h}},
		{"half turn", 180, Extent{w, h}},
		{"quarter turn", 90, Extent{h, w}},
		{"negative quarter turn", -90, Extent{h, w}},
		{"full turn", 360, Extent{w, h}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RotatedExtent(w, h, tt.rotation)
			assert.InDelta(t, tt.want.Width, got.Width, 1e-9)
			assert.InDelta(t, tt.want.Height, got.Height, 1e-9)
		})
	}

	t.Run("symmetric in sign", func(t *testing.T) {
		for _, r := range []float64{15, 30, 45, 60, 135} {
			assert.InDelta(t, RotatedExtent(w, h, r).Width, RotatedExtent(w, h, -r).Width, 1e-9)
			assert.InDelta(t, RotatedExtent(w, h, r).Height, RotatedExtent(w, h, -r).Height, 1e-9)
		}
	})

	t.Run("45 degrees", func(t *testing.T) {
		got := RotatedExtent(w, h, 45)
		want := (w + h) * math.Sqrt2 / 2
		assert.InDelta(t, want, got.Width, 1e-9)
		assert.InDelta(t, want, got.Height, 1e-9)
	})
}

func TestPlaceSingle(t *testing.T) {
	const cw, ch = 800.0, 600.0
	ext := Extent{Width: 100, Height: 24}

	tests := []struct {
		pos     Position
		padding float64
		want    Anchor
	}{
		{TopLeft, 0, Anchor{0, 0}},
		{TopLeft, 10, Anchor{10, 10}},
		{TopCenter, 10, Anchor{350, 10}},
		{TopRight, 10, Anchor{690, 10}},
		{CenterLeft, 10, Anchor{10, 288}},
		{Center, 10, Anchor{350, 288}},
		{CenterRight, 10, Anchor{690, 288}},
		{BottomLeft, 10, Anchor{10, 566}},
		{BottomCenter, 10, Anchor{350, 566}},
		{BottomRight, 0, Anchor{700, 576}},
		{BottomRight, 10, Anchor{690, 566}},
	}

	for _, tt := range tests {
		t.Run(string(tt.pos), func(t *testing.T) {
			assert.Equal(t, tt.want, PlaceSingle(tt.pos, tt.padding, cw, ch, ext))
		})
	}

	t.Run("center ignores padding", func(t *testing.T) {
		assert.Equal(t, PlaceSingle(Center, 0, cw, ch, ext), PlaceSingle(Center, 50, cw, ch, ext))
	})

	t.Run("extent larger than canvas", func(t *testing.T) {
		got := PlaceSingle(BottomRight, 0, 50, 10, ext)
		assert.Equal(t, Anchor{-50, -14}, got)
	})

	t.Run("unknown position falls back to bottom-right", func(t *testing.T) {
		assert.Equal(t, PlaceSingle(BottomRight, 5, cw, ch, ext), PlaceSingle("nowhere", 5, cw, ch, ext))
	})
}

func TestAnchorCenter(t *testing.T) {
	cx, cy := Anchor{X: 10, Y: 20}.Center(Extent{Width: 30, Height: 40})
	assert.Equal(t, 25.0, cx)
	assert.Equal(t, 40.0, cy)
}

func TestTileGrid(t *testing.T) {
	ext := Extent{Width: 100, Height: 24}

	g, err := NewTileGrid(20, 800, 600, ext)
	require.NoError(t, err)
	assert.Equal(t, 120.0, g.PitchX)
	assert.Equal(t, 44.0, g.PitchY)
	assert.Equal(t, 7, g.Cols)
	assert.Equal(t, 14, g.Rows)
	assert.Equal(t, 9*16, g.Len())

	anchors := g.Anchors()
	require.Len(t, anchors, g.Len())
	assert.Equal(t, Anchor{-120, -44}, anchors[0])
	assert.Equal(t, Anchor{0, -44}, anchors[1])
	assert.Equal(t, Anchor{7 * 120, 14 * 44}, anchors[len(anchors)-1])
}

func TestPlaceTilesCoverage(t *testing.T) {
	tests := []struct {
		name     string
		w, h     float64
		spacing  float64
		rotation float64
	}{
		{"landscape", 800, 600, 20, 0},
		{"rotated", 640, 480, 40, -30},
		{"zero spacing", 300, 200, 0, 0},
		{"steep", 200, 900, 10, 80},
		{"tiny canvas", 3, 3, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext := RotatedExtent(90, 24, tt.rotation)
			anchors, err := PlaceTiles(tt.spacing, tt.w, tt.h, ext)
			require.NoError(t, err)
			require.NotEmpty(t, anchors)

			pitchX := ext.Width + tt.spacing
			pitchY := ext.Height + tt.spacing

			// every canvas point lies inside some tile cell
			for y := 0.0; y < tt.h; y += tt.h / 17 {
				for x := 0.0; x < tt.w; x += tt.w / 13 {
					covered := false
					for _, a := range anchors {
						if x >= a.X && x < a.X+pitchX && y >= a.Y && y < a.Y+pitchY {
							covered = true
							break
						}
					}
					assert.True(t, covered, "point (%.1f, %.1f) not covered", x, y)
				}
			}

			// the overscan ring starts one pitch before the origin
			assert.Equal(t, Anchor{-pitchX, -pitchY}, anchors[0])
		})
	}

	t.Run("zero spacing tiles touch", func(t *testing.T) {
		ext := Extent{Width: 50, Height: 10}
		anchors, err := PlaceTiles(0, 100, 20, ext)
		require.NoError(t, err)
		assert.Equal(t, 50.0, anchors[1].X-anchors[0].X)
	})

}

func TestTileGridLimits(t *testing.T) {
	tests := []struct {
		name    string
		spacing float64
		w, h    float64
		ext     Extent
	}{
		{"zero pitch", 0, 100, 100, Extent{}},
		{"pitch below one pixel", 1e-300, 4000, 3000, Extent{Width: 0, Height: 0.001}},
		{"sub-pixel width only", 0, 4000, 3000, Extent{Width: 0.25, Height: 1}},
		{"too many tiles", 0, 4000, 3000, Extent{Width: 2, Height: 2}},
		{"infinite spacing", math.Inf(1), 100, 100, Extent{Width: 10, Height: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewTileGrid(tt.spacing, tt.w, tt.h, tt.ext)
			assert.Equal(t, 0, g.Len())

			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, "spacing", cfgErr.Field)

			anchors, err := PlaceTiles(tt.spacing, tt.w, tt.h, tt.ext)
			assert.Nil(t, anchors)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}

	t.Run("largest allowed grid", func(t *testing.T) {
		// 998 x 98 cells plus the ring is exactly MaxTiles
		g, err := NewTileGrid(0, 998, 98, Extent{Width: 1, Height: 1})
		require.NoError(t, err)
		assert.Equal(t, MaxTiles, g.Len())
	})
}

func TestPlan(t *testing.T) {
	ext := Extent{Width: 100, Height: 24}

	cfg := activeConfig("SAMPLE")
	cfg.Padding = 10
	anchors, err := Plan(cfg, 800, 600, ext)
	require.NoError(t, err)
	require.Len(t, anchors, 1)
	assert.Equal(t, Anchor{690, 566}, anchors[0])

	// fullscreen ignores position and padding
	cfg.Fullscreen = true
	cfg.Position = TopLeft
	tiles, err := Plan(cfg, 800, 600, ext)
	require.NoError(t, err)
	g, err := NewTileGrid(cfg.Spacing, 800, 600, ext)
	require.NoError(t, err)
	assert.Equal(t, g.Len(), len(tiles))
	cfg.Padding = 0
	again, err := Plan(cfg, 800, 600, ext)
	require.NoError(t, err)
	assert.Equal(t, tiles, again)

	cfg.Spacing = 0
	_, err = Plan(cfg, 800, 600, Extent{Width: 0.5, Height: 0.5})
	assert.ErrorIs(t, err, ErrConfiguration)
}
