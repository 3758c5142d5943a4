package watermark

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os"

	// registered for image.Decode
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Dimensions are the intrinsic pixel dimensions of an encoded image
type Dimensions struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

type probeResult struct {
	dims Dimensions
	err  error
}

// ProbeDimensions decodes data and reports its pixel dimensions
func ProbeDimensions(ctx context.Context, data []byte) (Dimensions, error) {
	return awaitProbe(ctx, func() (Dimensions, error) {
		return probe(bytes.NewReader(data))
	})
}

// ProbeFile decodes the file at path and reports its pixel dimensions. The file is
// closed by the probing goroutine whether the caller waits, cancels or the
// decode fails.
func ProbeFile(ctx context.Context, path string) (Dimensions, error) {
	return awaitProbe(ctx, func() (Dimensions, error) {
		f, err := os.Open(path)
		if err != nil {
			return Dimensions{}, fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()

		return probe(f)
	})
}

func awaitProbe(ctx context.Context, fn func() (Dimensions, error)) (Dimensions, error) {
	done := make(chan probeResult, 1)
	go func() {
		dims, err := fn()
		done <- probeResult{dims: dims, err: err}
	}()

	select {
	case <-ctx.Done():
		return Dimensions{}, ctx.Err()
	case r := <-done:
		return r.dims, r.err
	}
}

// probe decodes the whole image so that truncated or corrupt data is
// rejected even when its header looks plausible
func probe(r io.Reader) (Dimensions, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return Dimensions{}, &DecodeError{Err: err}
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return Dimensions{}, &DecodeError{Err: fmt.Errorf("invalid dimensions %dx%d", bounds.Dx(), bounds.Dy())}
	}
	return Dimensions{Width: bounds.Dx(), Height: bounds.Dy(), Format: format}, nil
}
