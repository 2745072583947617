package checkmate

import (
	"errors"
	"fmt"
)

// Sentinel errors for filter construction.
// These errors enable reliable error classification using errors.Is().
var (
	// ErrNilSource indicates New was called without a frame source.
	ErrNilSource = errors.New("nil frame source")

	// ErrUnsupportedFormat indicates a clip that is not 8-bit integer planar.
	ErrUnsupportedFormat = errors.New("unsupported sample format")

	// ErrEmptyClip indicates a clip with no frames.
	ErrEmptyClip = errors.New("clip has no frames")

	// ErrInvalidTmax indicates a tmax outside [1, 255].
	ErrInvalidTmax = errors.New("invalid tmax")

	// ErrInvalidTthr2 indicates a negative tthr2.
	ErrInvalidTthr2 = errors.New("invalid tthr2")

	// ErrInvalidThr indicates a negative thr.
	ErrInvalidThr = errors.New("invalid thr")
)

// Frame production errors.
var (
	// ErrFrameOutOfRange indicates a requested index outside [0, NumFrames).
	ErrFrameOutOfRange = errors.New("frame index out of range")

	// ErrFilterClosed indicates GetFrame was called after Close.
	ErrFilterClosed = errors.New("filter is closed")
)

// ConfigError reports why a Filter could not be created. It unwraps to one
// of the construction sentinels above.
type ConfigError struct {
	Err     error
	Message string
}

func newConfigError(err error, message string) *ConfigError {
	return &ConfigError{Err: err, Message: message}
}

// Error returns the human-readable message.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("checkmate: %s", e.Message)
}

// Unwrap returns the underlying sentinel.
func (e *ConfigError) Unwrap() error {
	return e.Err
}
