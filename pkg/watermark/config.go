package watermark

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Position names one of the nine single-anchor placements
type Position string

const (
	TopLeft      Position = "top-left"
	TopCenter    Position = "top-center"
	TopRight     Position = "top-right"
	CenterLeft   Position = "center-left"
	Center       Position = "center"
	CenterRight  Position = "center-right"
	BottomLeft   Position = "bottom-left"
	BottomCenter Position = "bottom-center"
	BottomRight  Position = "bottom-right"
)

// Positions lists every valid placement in reading order
var Positions = []Position{
	TopLeft, TopCenter, TopRight,
	CenterLeft, Center, CenterRight,
	BottomLeft, BottomCenter, BottomRight,
}

// ParsePosition converts a user supplied name into a Position
func ParsePosition(s string) (Position, error) {
	p := Position(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := positionAxes[p]; !ok {
		return "", &ConfigurationError{Field: "position", Reason: fmt.Sprintf("unknown position %q", s)}
	}
	return p, nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *Position) UnmarshalText(text []byte) error {
	parsed, err := ParsePosition(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Color is an opaque RGB fill; opacity is configured separately
type Color struct {
	R, G, B uint8
}

// White is the default fill
var White = Color{R: 255, G: 255, B: 255}

// ParseColor parses "#RRGGBB" or "#RGB", with or without the leading hash
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, &ConfigurationError{Field: "color", Reason: err.Error()}
	}
	r, g, b := c.RGB255()
	return Color{R: r, G: g, B: b}, nil
}

// Hex formats the color as "#rrggbb"
func (c Color) Hex() string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}

func (c Color) String() string {
	return c.Hex()
}

// MarshalText implements encoding.TextMarshaler
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Config describes one watermark. It is treated as immutable for the
// duration of a compositing call.
type Config struct {
	Enabled    bool     `json:"enabled" mapstructure:"enabled"`
	Text       string   `json:"text" mapstructure:"text"`
	Position   Position `json:"position" mapstructure:"position"`
	Size       float64  `json:"size" mapstructure:"size"`
	Color      Color    `json:"color" mapstructure:"color"`
	Opacity    float64  `json:"opacity" mapstructure:"opacity"`
	Fullscreen bool     `json:"fullscreen" mapstructure:"fullscreen"`
	Spacing    float64  `json:"spacing" mapstructure:"spacing"`
	Rotation   float64  `json:"rotation" mapstructure:"rotation"`
	Padding    float64  `json:"padding" mapstructure:"padding"`
}

// Defaults returns the configuration used for any field a caller leaves unset
func Defaults() Config {
	return Config{
		Enabled:    false,
		Text:       "",
		Position:   BottomRight,
		Size:       24,
		Color:      White,
		Opacity:    0.7,
		Fullscreen: false,
		Spacing:    20,
		Rotation:   0,
		Padding:    0,
	}
}

// Active reports whether compositing would draw anything
func (c Config) Active() bool {
	return c.Enabled && c.Text != ""
}

// Validate rejects numeric fields the engine cannot honour
func (c Config) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"size", c.Size},
		{"opacity", c.Opacity},
		{"spacing", c.Spacing},
		{"rotation", c.Rotation},
		{"padding", c.Padding},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return &ConfigurationError{Field: f.name, Reason: "must be a finite number"}
		}
	}

	if c.Size <= 0 {
		return &ConfigurationError{Field: "size", Reason: fmt.Sprintf("must be positive, got %g", c.Size)}
	}
	if c.Opacity < 0 || c.Opacity > 1 {
		return &ConfigurationError{Field: "opacity", Reason: fmt.Sprintf("must be within [0,1], got %g", c.Opacity)}
	}
	if c.Spacing < 0 {
		return &ConfigurationError{Field: "spacing", Reason: fmt.Sprintf("must not be negative, got %g", c.Spacing)}
	}
	if c.Padding < 0 {
		return &ConfigurationError{Field: "padding", Reason: fmt.Sprintf("must not be negative, got %g", c.Padding)}
	}
	if _, ok := positionAxes[c.Position]; !ok {
		return &ConfigurationError{Field: "position", Reason: fmt.Sprintf("unknown position %q", c.Position)}
	}

	return nil
}

// PartialConfig carries the fields a stored or user supplied configuration
// actually sets. Nil fields fall back to the base configuration on Merge.
type PartialConfig struct {
	Enabled    *bool     `json:"enabled,omitempty"`
	Text       *string   `json:"text,omitempty"`
	Position   *Position `json:"position,omitempty"`
	Size       *float64  `json:"size,omitempty"`
	Color      *Color    `json:"color,omitempty"`
	Opacity    *float64  `json:"opacity,omitempty"`
	Fullscreen *bool     `json:"fullscreen,omitempty"`
	Spacing    *float64  `json:"spacing,omitempty"`
	Rotation   *float64  `json:"rotation,omitempty"`
	Padding    *float64  `json:"padding,omitempty"`
}

// Merge overrides base field-by-field with every field set in p
func Merge(base Config, p PartialConfig) Config {
	if p.Enabled != nil {
		base.Enabled = *p.Enabled
	}
	if p.Text != nil {
		base.Text = *p.Text
	}
	if p.Position != nil {
		base.Position = *p.Position
	}
	if p.Size != nil {
		base.Size = *p.Size
	}
	if p.Color != nil {
		base.Color = *p.Color
	}
	if p.Opacity != nil {
		base.Opacity = *p.Opacity
	}
	if p.Fullscreen != nil {
		base.Fullscreen = *p.Fullscreen
	}
	if p.Spacing != nil {
		base.Spacing = *p.Spacing
	}
	if p.Rotation != nil {
		base.Rotation = *p.Rotation
	}
	if p.Padding != nil {
		base.Padding = *p.Padding
	}
	return base
}

// MergeDefaults merges p over Defaults()
func MergeDefaults(p PartialConfig) Config {
	return Merge(Defaults(), p)
}

// Partial returns a PartialConfig with every field of c set
func (c Config) Partial() PartialConfig {
	return PartialConfig{
		Enabled:    &c.Enabled,
		Text:       &c.Text,
		Position:   &c.Position,
		Size:       &c.Size,
		Color:      &c.Color,
		Opacity:    &c.Opacity,
		Fullscreen: &c.Fullscreen,
		Spacing:    &c.Spacing,
		Rotation:   &c.Rotation,
		Padding:    &c.Padding,
	}
}
