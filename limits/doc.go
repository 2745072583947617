// Package limits provides centralized frame geometry constants and validation
// functions. Anything that allocates frame memory from untrusted input (a Y4M
// stream header, a command line) checks its dimensions here first so that a
// malformed header cannot request an absurd allocation.
//
// # Limit Hierarchy
//
//   - MinFrameDimension (1): a plane must have at least one row and one column.
//
//   - MaxFrameDimension (16384): the largest accepted width or height. This covers
//     16K video with headroom.
//
//   - MaxPlaneBytes (256MB): the absolute maximum size of a single plane buffer,
//     stride included.
//
//   - MaxPlanes (4): planar formats with more planes are rejected.
//
// # Validation Functions
//
//	err := limits.ValidateDimensions(width, height)
//	if err != nil {
//	    // ErrInvalidDimensions or ErrFrameTooLarge
//	}
//
//	err = limits.ValidatePlane(stride, height)
//
// # Error Types
//
// Errors wrap the package sentinels with context and can be classified with
// errors.Is:
//
//	if errors.Is(err, limits.ErrFrameTooLarge) {
//	    // reject the stream
//	}
package limits
