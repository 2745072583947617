// Package checkmate implements a spatio-temporal dot crawl reducer for 8-bit
// planar video.
//
// Dot crawl is the alternating-line colour and luma shimmer left behind by
// composite video decoding. The filter removes it by blending every pixel with
// its neighbourhood in the current frame and in the frames around it.
//
// # Getting Started
//
//	src, header, err := video.LoadY4M(in)
//	if err != nil {
//	    return err
//	}
//
//	opts := checkmate.NewOptions()
//	opts.Tthr2 = 4
//
//	filter, err := checkmate.New(src, opts)
//	if err != nil {
//	    return err // *checkmate.ConfigError
//	}
//	defer filter.Close()
//
//	for n := 0; n < filter.NumFrames(); n++ {
//	    frame, err := filter.GetFrame(ctx, n)
//	    ...
//	}
//
// # Algorithm
//
// Output frame n reads source frames n-1, n and n+1, plus n-2 and n+2 when
// Tthr2 > 0. Indices are clamped to the clip, so the first and last frames
// simply reuse themselves as neighbours.
//
// For every sample of every plane, rows 2 through height-3:
//
//  1. If the ±2 frames are in use and the sample is stable over time (the
//     previous and next samples differ by less than Tthr2, and so do the
//     current sample and the samples two frames away) the output is the
//     temporal average (p1 + 2*cur + n1) / 4.
//  2. Otherwise a spatial estimate is built from the current frame's rows two
//     lines above and below, and the previous and next frames are weighted by
//     how closely their local 3-row column sums match the current one. Weights
//     are 14-bit fixed point and the blend is normalised by a 15-bit shift.
//
// The top and bottom two rows of each plane are copied unchanged.
//
// # Concurrency
//
// Output frames are independent of each other; GetFrame may be called from
// any number of goroutines. Within one call the source frames are fetched as
// a single batch and processing waits for all of them. Planes are then filtered
// in parallel.
//
// # Errors
//
// Configuration is validated once by New, which returns a *ConfigError that
// unwraps to one of ErrUnsupportedFormat, ErrInvalidTmax, ErrInvalidTthr2,
// ErrInvalidThr, ErrEmptyClip or ErrNilSource. After that GetFrame fails only
// when the source does or ctx is cancelled.
package checkmate
