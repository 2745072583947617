// Package limits provides centralized frame geometry limits.
// This ensures consistent validation across the Y4M reader and frame allocation.
package limits

import (
	"errors"
	"fmt"
)

const (
	// MinFrameDimension is the smallest accepted plane width or height.
	MinFrameDimension = 1

	// MaxFrameDimension is the largest accepted frame width or height.
	MaxFrameDimension = 16384

	// MaxPlaneBytes is the absolute maximum for a single plane buffer (256MB).
	// This prevents memory exhaustion from hostile stream headers.
	MaxPlaneBytes = 256 * 1024 * 1024

	// MaxPlanes is the largest plane count of any supported planar format.
	MaxPlanes = 4
)

var (
	// ErrInvalidDimensions indicates a width or height outside the accepted range.
	ErrInvalidDimensions = errors.New("invalid frame dimensions")

	// ErrFrameTooLarge indicates a plane buffer would exceed MaxPlaneBytes.
	ErrFrameTooLarge = errors.New("frame too large")

	// ErrTooManyPlanes indicates a format declares more than MaxPlanes planes.
	ErrTooManyPlanes = errors.New("too many planes")
)

// ValidateDimensions checks a frame's luma dimensions against MinFrameDimension
// and MaxFrameDimension.
func ValidateDimensions(width, height int) error {
	if width < MinFrameDimension || height < MinFrameDimension {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if width > MaxFrameDimension || height > MaxFrameDimension {
		return fmt.Errorf("%w: %dx%d exceeds limit %d", ErrInvalidDimensions, width, height, MaxFrameDimension)
	}
	return nil
}

// ValidatePlane checks that a plane of the given stride and height fits in
// MaxPlaneBytes. Returns an error with the computed size on violation.
func ValidatePlane(stride, height int) error {
	if stride < MinFrameDimension || height < MinFrameDimension {
		return fmt.Errorf("%w: stride %d height %d", ErrInvalidDimensions, stride, height)
	}
	size := int64(stride) * int64(height)
	if size > MaxPlaneBytes {
		return fmt.Errorf("%w: plane size %d exceeds limit %d", ErrFrameTooLarge, size, MaxPlaneBytes)
	}
	return nil
}

// ValidatePlaneCount checks a planar format's plane count.
func ValidatePlaneCount(numPlanes int) error {
	if numPlanes < 1 || numPlanes > MaxPlanes {
		return fmt.Errorf("%w: %d planes (limit %d)", ErrTooManyPlanes, numPlanes, MaxPlanes)
	}
	return nil
}
