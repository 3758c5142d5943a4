package watermark

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// Format is an output encoding
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
)

// DefaultQuality is the encode quality used when none is given
const DefaultQuality = 0.9

// ParseFormat accepts "jpeg", "jpg" and "png" in any case
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "jpeg", "jpg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	default:
		return "", &ConfigurationError{Field: "format", Reason: fmt.Sprintf("unsupported output format %q (supported: jpeg, png)", s)}
	}
}

// FormatFromFilename picks the output format from a file extension
func FormatFromFilename(name string) (Format, error) {
	ext := filepath.Ext(name)
	if ext == "" {
		return "", &ConfigurationError{Field: "format", Reason: fmt.Sprintf("no extension on %q (supported: .jpg, .jpeg, .png)", name)}
	}
	return ParseFormat(ext)
}

// ContentType returns the MIME type of encoded output
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/jpeg"
}

// MimeType maps a filename extension to its image MIME type
func MimeType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".bmp":
		return "image/bmp"
	case ".tif", ".tiff":
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}

// EncodeOptions controls output encoding. Zero values select JPEG at
// DefaultQuality.
type EncodeOptions struct {
	Format  Format
	Quality float64
}

func (o EncodeOptions) normalize() (EncodeOptions, error) {
	if o.Format == "" {
		o.Format = FormatJPEG
	}
	if _, err := ParseFormat(string(o.Format)); err != nil {
		return o, err
	}
	if o.Quality == 0 {
		o.Quality = DefaultQuality
	}
	if math.IsNaN(o.Quality) || o.Quality <= 0 || o.Quality > 1 {
		return o, &ConfigurationError{Field: "quality", Reason: fmt.Sprintf("must be within (0,1], got %g", o.Quality)}
	}
	return o, nil
}

// jpegQuality maps (0,1] onto the encoder's 1..100 scale
func (o EncodeOptions) jpegQuality() int {
	q := int(math.Round(o.Quality * 100))
	if q < 1 {
		q = 1
	}
	if q > 100 {
		q = 100
	}
	return q
}

// Encode serializes img off the calling goroutine. It returns ctx.Err() if the
// caller gives up first; the encoder goroutine always completes into a
// buffered channel so nothing leaks.
func Encode(ctx context.Context, img image.Image, opts EncodeOptions) ([]byte, error) {
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		var err error
		switch opts.Format {
		case FormatPNG:
			err = imaging.Encode(&buf, img, imaging.PNG)
		default:
			err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(opts.jpegQuality()))
		}
		done <- result{data: buf.Bytes(), err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, &EncodingError{Format: string(opts.Format), Err: r.err}
		}
		if len(r.data) == 0 {
			return nil, &EncodingError{Format: string(opts.Format)}
		}
		return r.data, nil
	}
}

// Decode decodes a full raster, applying any EXIF orientation
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return img, nil
}
