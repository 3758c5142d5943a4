package watermark

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by the typed errors below via errors.Is
var (
	ErrConfiguration = errors.New("invalid watermark configuration")
	ErrDecode        = errors.New("image decode failed")
	ErrEncoding      = errors.New("image encode failed")
)

// ConfigurationError reports an invalid configuration field
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrConfiguration) succeed
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// DecodeError wraps a failure to decode image bytes or to probe their dimensions
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return ErrDecode.Error()
	}
	return fmt.Sprintf("%s: %v", ErrDecode, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrDecode) succeed
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// EncodingError reports that the encoder produced no usable output.
// The raster itself was composited successfully, so callers may retry the encode alone.
type EncodingError struct {
	Format string
	Err    error
}

func (e *EncodingError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s encoder produced no data", ErrEncoding, e.Format)
	}
	return fmt.Sprintf("%s: %s: %v", ErrEncoding, e.Format, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrEncoding) succeed
func (e *EncodingError) Is(target error) bool {
	return target == ErrEncoding
}
