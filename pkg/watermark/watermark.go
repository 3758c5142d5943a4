// Package watermark composites a configurable text mark onto raster images
package watermark

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// ProcessorOptions configures a Processor
type ProcessorOptions struct {
	// Quality is the encode quality in (0,1]; zero selects DefaultQuality
	Quality float64
	// Format overrides the output format for ProcessBytes; ProcessFile
	// always follows the output extension
	Format Format
	Logger logrus.FieldLogger
}

// Processor runs the decode, composite and encode pipeline for one config
type Processor struct {
	engine  *Engine
	config  Config
	options ProcessorOptions
	logger  logrus.FieldLogger
}

// Result is an encoded, watermarked image
type Result struct {
	Data        []byte
	Format      Format
	ContentType string
	Width       int
	Height      int
	Watermarked bool
}

// NewProcessor creates a new watermark processor with the given configuration
func NewProcessor(engine *Engine, config Config, options ProcessorOptions) *Processor {
	if engine == nil {
		engine = NewEngine()
	}
	logger := options.Logger
	if logger == nil {
		logger = engine.logger
	}
	return &Processor{
		engine:  engine,
		config:  config,
		options: options,
		logger:  logger,
	}
}

// Config returns the configuration applied by this processor
func (p *Processor) Config() Config {
	return p.config
}

// ProcessImage applies the watermark to an image.Image and returns the result
func (p *Processor) ProcessImage(ctx context.Context, img image.Image) (*image.RGBA, error) {
	return p.engine.Composite(ctx, img, p.config)
}

// ProcessBytes decodes data, applies the watermark and encodes the result.
// Encoding only starts once every glyph has been drawn.
func (p *Processor) ProcessBytes(ctx context.Context, data []byte) (*Result, error) {
	return p.process(ctx, data, p.options.Format)
}

func (p *Processor) process(ctx context.Context, data []byte, format Format) (*Result, error) {
	start := time.Now()

	img, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	composited, err := p.engine.Composite(ctx, img, p.config)
	if err != nil {
		return nil, fmt.Errorf("applying watermark: %w", err)
	}

	encoded, err := Encode(ctx, composited, EncodeOptions{Format: format, Quality: p.options.Quality})
	if err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}

	if format == "" {
		format = FormatJPEG
	}
	bounds := composited.Bounds()
	p.logger.WithFields(logrus.Fields{
		"width":       bounds.Dx(),
		"height":      bounds.Dy(),
		"format":      format,
		"bytes":       len(encoded),
		"watermarked": p.config.Active(),
		"duration":    time.Since(start),
	}).Debug("Processed image")

	return &Result{
		Data:        encoded,
		Format:      format,
		ContentType: format.ContentType(),
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		Watermarked: p.config.Active(),
	}, nil
}

// ProcessFile applies the watermark to a single image file. The output format
// follows the output path extension.
func (p *Processor) ProcessFile(ctx context.Context, inputPath, outputPath string) error {
	format, err := FormatFromFilename(outputPath)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading input file: %w", err)
	}

	result, err := p.process(ctx, data, format)
	if err != nil {
		return err
	}

	// Written only after a complete encode so a failure never leaves a partial file
	if err := os.WriteFile(outputPath, result.Data, 0644); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}

	return nil
}
