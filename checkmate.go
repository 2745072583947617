package checkmate

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/checkmate/video"
)

// Filter produces dot-crawl-reduced frames from a source clip.
//
// A Filter is safe for concurrent use: any number of GetFrame calls may run
// at once, each on its own output frame.
type Filter struct {
	id           string
	src          video.Source
	info         video.Info
	opts         Options
	kern         kernel
	stats        counters
	timeProvider TimeProvider
	closed       atomic.Bool
}

// New creates a filter over src. opts may be nil for defaults.
//
// All validation happens here. On error a *ConfigError is returned, no Filter
// is created and src is left untouched. On success the Filter owns src and
// Close closes it if it implements io.Closer.
func New(src video.Source, opts *Options) (*Filter, error) {
	if src == nil {
		return nil, newConfigError(ErrNilSource, "clip is required")
	}
	if opts == nil {
		opts = NewOptions()
	}

	info := src.Info()
	if err := checkFormat(info.Format); err != nil {
		logrus.WithFields(logrus.Fields{
			"function":        "New",
			"format":          info.Format.Name,
			"sample_type":     info.Format.SampleType.String(),
			"bits_per_sample": info.Format.BitsPerSample,
		}).Error("Unsupported input format")
		return nil, err
	}
	if err := ValidateOptions(opts); err != nil {
		return nil, err
	}
	if info.NumFrames <= 0 {
		return nil, newConfigError(ErrEmptyClip, "clip has no frames")
	}

	f := &Filter{
		id:   uuid.NewString(),
		src:  src,
		info: info,
		opts: *opts,
		kern: newKernel(opts),
	}

	logrus.WithFields(logrus.Fields{
		"function":    "New",
		"instance_id": f.id,
		"format":      info.Format.Name,
		"width":       info.Width,
		"height":      info.Height,
		"num_frames":  info.NumFrames,
		"thr":         opts.Thr,
		"tmax":        opts.Tmax,
		"tthr2":       opts.Tthr2,
	}).Info("Checkmate filter created")

	return f, nil
}

// checkFormat accepts 8-bit integer planar formats only.
func checkFormat(format video.Format) error {
	if format.SampleType != video.SampleInteger || format.BitsPerSample != 8 {
		return newConfigError(ErrUnsupportedFormat, "only 8bit integer input supported")
	}
	return nil
}

// GetFrame computes output frame n. The result is a new frame owned by the
// caller.
//
// For a valid n the computation itself cannot fail; errors come from the
// frame source or from ctx being cancelled, and no partial frame is returned.
func (f *Filter) GetFrame(ctx context.Context, n int) (*video.Frame, error) {
	if f.closed.Load() {
		return nil, ErrFilterClosed
	}
	if n < 0 || n >= f.info.NumFrames {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrFrameOutOfRange, n, f.info.NumFrames)
	}

	tp := getTimeProvider(f.timeProvider)
	start := tp.Now()

	w := WindowIndices(n, f.info.NumFrames, f.opts.Tthr2)
	frames, fetches, err := fetchWindow(ctx, f.src, w)
	if err != nil {
		return nil, fmt.Errorf("frame %d: %w", n, err)
	}
	if err := frames.validate(); err != nil {
		return nil, fmt.Errorf("frame %d: %w", n, err)
	}

	dst, counts, err := f.kern.render(ctx, frames)
	if err != nil {
		return nil, fmt.Errorf("frame %d: %w", n, err)
	}

	elapsed := tp.Since(start)
	f.stats.record(fetches, counts, elapsed)

	logrus.WithFields(logrus.Fields{
		"function":       "Filter.GetFrame",
		"instance_id":    f.id,
		"frame":          n,
		"window":         w.Indices(),
		"fast_pixels":    counts.fast,
		"blended_pixels": counts.blended,
		"elapsed":        elapsed,
	}).Debug("Frame filtered")

	return dst, nil
}

// NumFrames returns the number of frames the filter produces.
func (f *Filter) NumFrames() int {
	return f.info.NumFrames
}

// Info returns the description of the output clip, which matches the input.
func (f *Filter) Info() video.Info {
	return f.info
}

// Options returns a copy of the filter's options.
func (f *Filter) Options() Options {
	return f.opts
}

// ID returns the instance id used in log fields.
func (f *Filter) ID() string {
	return f.id
}

// Stats returns a snapshot of the filter's counters.
func (f *Filter) Stats() Stats {
	return f.stats.snapshot(f.id)
}

// SetTimeProvider replaces the clock used for processing-time statistics.
// A nil tp restores the system clock. It must not race with GetFrame.
func (f *Filter) SetTimeProvider(tp TimeProvider) {
	f.timeProvider = tp
}

// Close releases the source. Later GetFrame calls return ErrFilterClosed.
// Close is idempotent.
func (f *Filter) Close() error {
	if f.closed.Swap(true) {
		return nil
	}

	stats := f.Stats()
	logrus.WithFields(logrus.Fields{
		"function":        "Filter.Close",
		"instance_id":     f.id,
		"frames_produced": stats.FramesProduced,
		"fast_path_ratio": stats.FastPathRatio(),
		"avg_frame_time":  stats.AverageFrameTime(),
	}).Info("Closing checkmate filter")

	if c, ok := f.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
