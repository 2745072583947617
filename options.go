package checkmate

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Default option values.
const (
	DefaultThr   = 12
	DefaultTmax  = 12
	DefaultTthr2 = 0

	// MaxTmax is the largest accepted Tmax.
	MaxTmax = 255
)

// Options configures a Filter.
type Options struct {
	// Thr is the temporal deviation tolerated before a neighbour frame's
	// weight starts to decay.
	Thr int

	// Tmax controls how quickly a neighbour frame's weight decays once the
	// deviation exceeds Thr. Must be in [1, 255].
	Tmax int

	// Tthr2 enables the ±2 frame stability test. Pixels whose temporal
	// differences are all below Tthr2 take a plain temporal average.
	// 0 disables the test and the ±2 frames are never fetched.
	Tthr2 int
}

// NewOptions creates a new default Options.
func NewOptions() *Options {
	return &Options{
		Thr:   DefaultThr,
		Tmax:  DefaultTmax,
		Tthr2: DefaultTthr2,
	}
}

// UsesOuterFrames reports whether the ±2 frames take part in filtering.
func (o *Options) UsesOuterFrames() bool {
	return o.Tthr2 > 0
}

// String returns a compact representation of the options.
func (o *Options) String() string {
	return fmt.Sprintf("thr=%d tmax=%d tthr2=%d", o.Thr, o.Tmax, o.Tthr2)
}

// ValidateOptions checks opts and returns a *ConfigError describing the first
// invalid value.
func ValidateOptions(opts *Options) error {
	if opts == nil {
		return nil
	}

	var err error
	switch {
	case opts.Tmax <= 0 || opts.Tmax > MaxTmax:
		err = newConfigError(ErrInvalidTmax, "tmax value should be in range [1;255]")
	case opts.Tthr2 < 0:
		err = newConfigError(ErrInvalidTthr2, "tthr2 should be non-negative")
	case opts.Thr < 0:
		err = newConfigError(ErrInvalidThr, "thr should be non-negative")
	}

	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "ValidateOptions",
			"thr":      opts.Thr,
			"tmax":     opts.Tmax,
			"tthr2":    opts.Tthr2,
			"error":    err.Error(),
		}).Warn("Rejecting filter options")
	}
	return err
}
