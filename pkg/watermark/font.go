package watermark

import (
	"fmt"
	"io"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// EmbeddedFontName is the cache key of the built-in Go Regular face
const EmbeddedFontName = "embedded:goregular"

// DefaultSystemFontPaths are probed when no explicit font loads
var DefaultSystemFontPaths = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
	"/System/Library/Fonts/Arial.ttf",
	"/System/Library/Fonts/Helvetica.ttc",
	"/Windows/Fonts/arial.ttf",
	"/Windows/Fonts/Arial.ttf",
	"/usr/share/fonts/TTF/arial.ttf",
	"/usr/share/fonts/TTF/DejaVuSans.ttf",
}

// FontManager handles font loading and caches parsed fonts by path
type FontManager struct {
	systemFontPaths []string
	cache           *lru.Cache[string, *opentype.Font]
	logger          logrus.FieldLogger
}

// NewFontManager creates a new font manager with default system font paths
func NewFontManager() *FontManager {
	cache, err := lru.New[string, *opentype.Font](16)
	if err != nil {
		panic(fmt.Sprintf("creating font cache: %v", err))
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &FontManager{
		systemFontPaths: append([]string(nil), DefaultSystemFontPaths...),
		cache:           cache,
		logger:          logger,
	}
}

// SetLogger sets the logger that reports fonts which could not be loaded
func (fm *FontManager) SetLogger(logger logrus.FieldLogger) {
	if logger != nil {
		fm.logger = logger
	}
}

// SetSystemFontPaths sets custom system font paths
func (fm *FontManager) SetSystemFontPaths(paths []string) {
	fm.systemFontPaths = paths
}

// LoadFont loads a font from the specified path, falling back to system fonts
// and finally to the embedded Go Regular face.
func (fm *FontManager) LoadFont(fontPath string) (*opentype.Font, error) {
	if fontPath != "" {
		f, err := fm.loadFontFromPath(fontPath)
		if err == nil {
			return f, nil
		}
		fm.logger.WithError(err).WithField("path", fontPath).Warn("Failed to load configured font, falling back")
	}

	for _, path := range fm.systemFontPaths {
		if fm.fileExists(path) {
			if f, err := fm.loadFontFromPath(path); err == nil {
				return f, nil
			}
		}
	}

	return fm.Embedded()
}

// Embedded returns the built-in Go Regular font
func (fm *FontManager) Embedded() (*opentype.Font, error) {
	if f, ok := fm.cache.Get(EmbeddedFontName); ok {
		return f, nil
	}
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing embedded font: %w", err)
	}
	fm.cache.Add(EmbeddedFontName, f)
	return f, nil
}

// loadFontFromPath loads a font from a specific file path
func (fm *FontManager) loadFontFromPath(path string) (*opentype.Font, error) {
	if f, ok := fm.cache.Get(path); ok {
		return f, nil
	}

	fontData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading font file %s: %w", path, err)
	}

	f, err := opentype.Parse(fontData)
	if err != nil {
		return nil, fmt.Errorf("parsing font file %s: %w", path, err)
	}

	fm.cache.Add(path, f)
	return f, nil
}

// fileExists checks if a file exists
func (fm *FontManager) fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// GetAvailableSystemFonts returns a list of available system fonts
func (fm *FontManager) GetAvailableSystemFonts() []string {
	var available []string
	for _, path := range fm.systemFontPaths {
		if fm.fileExists(path) {
			available = append(available, path)
		}
	}
	return available
}

// NewFace builds a face where one point equals one output pixel.
// Faces are not safe for concurrent use; build one per compositing call.
func NewFace(f *opentype.Font, size float64) (font.Face, error) {
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("creating font face: %w", err)
	}
	return face, nil
}
