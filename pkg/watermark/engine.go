package watermark

import (
	"context"
	"fmt"
	"image"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/font/opentype"
)

// Engine composites watermarks. It holds no per-call state, so one Engine may
// be shared by concurrent callers working on different images.
type Engine struct {
	fonts    *FontManager
	fontPath string
	renderer Renderer
	logger   logrus.FieldLogger
}

// Option configures an Engine
type Option func(*Engine)

// WithFontManager shares a font manager (and its cache) between engines
func WithFontManager(fm *FontManager) Option {
	return func(e *Engine) { e.fonts = fm }
}

// WithFontPath selects the preferred font file
func WithFontPath(path string) Option {
	return func(e *Engine) { e.fontPath = path }
}

// WithRenderer selects the rasterization backend
func WithRenderer(r Renderer) Option {
	return func(e *Engine) { e.renderer = r }
}

// WithLogger sets the logger used for debug tracing
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an engine using the gg renderer and the embedded font
// unless options say otherwise
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		renderer: GGRenderer{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		e.logger = l
	}
	if e.fonts == nil {
		e.fonts = NewFontManager()
		e.fonts.SetLogger(e.logger)
	}
	return e
}

// Layout is the geometry of one compositing call
type Layout struct {
	TextWidth  float64
	TextHeight float64
	Extent     Extent
	Anchors    []Anchor
}

// Layout measures the text and plans every anchor for a width x height raster.
// An inactive config has no anchors and is not validated.
func (e *Engine) Layout(cfg Config, width, height int) (*Layout, error) {
	if !cfg.Active() {
		return &Layout{}, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	f, err := e.fonts.LoadFont(e.fontPath)
	if err != nil {
		return nil, fmt.Errorf("loading font: %w", err)
	}
	return e.layout(cfg, f, width, height)
}

func (e *Engine) layout(cfg Config, f *opentype.Font, width, height int) (*Layout, error) {
	textW, textH, err := e.renderer.Measure(styleFor(cfg, f))
	if err != nil {
		return nil, fmt.Errorf("measuring text: %w", err)
	}

	ext := RotatedExtent(textW, textH, cfg.Rotation)
	anchors, err := Plan(cfg, float64(width), float64(height), ext)
	if err != nil {
		return nil, err
	}
	return &Layout{
		TextWidth:  textW,
		TextHeight: textH,
		Extent:     ext,
		Anchors:    anchors,
	}, nil
}

// Composite copies src into a new raster and draws the watermark onto it.
// A disabled config or empty text returns the unmodified copy whatever its
// other fields hold. On any error no raster is returned.
func (e *Engine) Composite(ctx context.Context, src image.Image, cfg Config) (*image.RGBA, error) {
	if !cfg.Active() {
		return NewCanvas(src), nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	f, err := e.fonts.LoadFont(e.fontPath)
	if err != nil {
		return nil, fmt.Errorf("loading font: %w", err)
	}

	// planned before the copy so an oversized grid fails without raster work
	bounds := src.Bounds()
	layout, err := e.layout(cfg, f, bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, err
	}

	out := NewCanvas(src)

	e.logger.WithFields(logrus.Fields{
		"renderer":   e.renderer.Name(),
		"width":      bounds.Dx(),
		"height":     bounds.Dy(),
		"fullscreen": cfg.Fullscreen,
		"anchors":    len(layout.Anchors),
		"extent_w":   layout.Extent.Width,
		"extent_h":   layout.Extent.Height,
	}).Debug("Compositing watermark")

	surface, err := e.renderer.Begin(out, styleFor(cfg, f))
	if err != nil {
		return nil, fmt.Errorf("starting %s renderer: %w", e.renderer.Name(), err)
	}

	for _, anchor := range layout.Anchors {
		if err := ctx.Err(); err != nil {
			surface.Finish()
			return nil, err
		}
		cx, cy := anchor.Center(layout.Extent)
		if err := surface.DrawGlyph(cx, cy, cfg.Rotation); err != nil {
			surface.Finish()
			return nil, fmt.Errorf("drawing glyph at (%.1f, %.1f): %w", anchor.X, anchor.Y, err)
		}
	}

	if err := surface.Finish(); err != nil {
		return nil, fmt.Errorf("finishing %s renderer: %w", e.renderer.Name(), err)
	}

	return out, nil
}

func styleFor(cfg Config, f *opentype.Font) Style {
	return Style{
		Text:    cfg.Text,
		Font:    f,
		Size:    cfg.Size,
		Color:   cfg.Color,
		Opacity: cfg.Opacity,
	}
}
