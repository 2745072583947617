package video

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Source errors.
var (
	// ErrEmptyClip indicates a source with no frames.
	ErrEmptyClip = errors.New("clip has no frames")

	// ErrFrameOutOfRange indicates a frame index outside [0, NumFrames).
	ErrFrameOutOfRange = errors.New("frame index out of range")

	// ErrFormatMismatch indicates frames of one clip with different formats.
	ErrFormatMismatch = errors.New("frame format mismatch")
)

// Info describes a clip.
type Info struct {
	Format    Format
	Width     int
	Height    int
	NumFrames int
}

// Source is a random-access sequence of read-only frames.
//
// GetFrame may block until the frame is available and must be safe for
// concurrent use. Returned frames must not be modified by the caller.
type Source interface {
	Info() Info
	GetFrame(ctx context.Context, n int) (*Frame, error)
}

// MemorySource serves frames held in memory. It records how often each index
// was fetched.
type MemorySource struct {
	info    Info
	frames  []*Frame
	mu      sync.Mutex
	fetches []int
}

// NewMemorySource creates a source over frames. All frames must share the
// format of the first one; the clip dimensions are those of the first frame.
func NewMemorySource(frames ...*Frame) (*MemorySource, error) {
	if len(frames) == 0 {
		return nil, ErrEmptyClip
	}

	first := frames[0]
	for i, f := range frames[1:] {
		if f.Format != first.Format {
			return nil, fmt.Errorf("%w: frame %d is %s, frame 0 is %s", ErrFormatMismatch, i+1, f.Format.Name, first.Format.Name)
		}
	}

	logrus.WithFields(logrus.Fields{
		"function":   "NewMemorySource",
		"format":     first.Format.Name,
		"width":      first.Width,
		"height":     first.Height,
		"num_frames": len(frames),
	}).Debug("Creating in-memory frame source")

	return &MemorySource{
		info: Info{
			Format:    first.Format,
			Width:     first.Width,
			Height:    first.Height,
			NumFrames: len(frames),
		},
		frames:  frames,
		fetches: make([]int, len(frames)),
	}, nil
}

// Info returns the clip description.
func (s *MemorySource) Info() Info {
	return s.info
}

// GetFrame returns frame n.
func (s *MemorySource) GetFrame(ctx context.Context, n int) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n < 0 || n >= len(s.frames) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrFrameOutOfRange, n, len(s.frames))
	}

	s.mu.Lock()
	s.fetches[n]++
	s.mu.Unlock()

	return s.frames[n], nil
}

// Fetches returns how many times frame n has been requested.
func (s *MemorySource) Fetches(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 0 || n >= len(s.fetches) {
		return 0
	}
	return s.fetches[n]
}

// TotalFetches returns the number of GetFrame calls served.
func (s *MemorySource) TotalFetches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, c := range s.fetches {
		total += c
	}
	return total
}

// ResetFetches clears the fetch counters.
func (s *MemorySource) ResetFetches() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.fetches {
		s.fetches[i] = 0
	}
}
