package checkmate

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/opd-ai/checkmate/video"
)

// Window holds the source frame indices that feed one output frame. Every
// index is clamped to [0, NumFrames-1], so near the ends of a clip several
// slots may name the same frame.
type Window struct {
	N     int
	Prev2 int
	Prev1 int
	Cur   int
	Next1 int
	Next2 int

	// Outer is false when the ±2 frames are not part of the window. Prev2
	// and Next2 are then -1.
	Outer bool
}

// WindowIndices resolves the window for output frame n of a clip with
// numFrames frames. The ±2 frames are included only when tthr2 > 0.
func WindowIndices(n, numFrames, tthr2 int) Window {
	last := numFrames - 1
	w := Window{
		N:     n,
		Prev2: -1,
		Prev1: max(0, n-1),
		Cur:   n,
		Next1: min(n+1, last),
		Next2: -1,
		Outer: tthr2 > 0,
	}
	if w.Outer {
		w.Prev2 = max(0, n-2)
		w.Next2 = min(n+2, last)
	}
	return w
}

// Indices returns the distinct frame indices of the window in request order
// (prev2, prev1, cur, next1, next2).
func (w Window) Indices() []int {
	slots := []int{w.Prev1, w.Cur, w.Next1}
	if w.Outer {
		slots = []int{w.Prev2, w.Prev1, w.Cur, w.Next1, w.Next2}
	}

	out := make([]int, 0, len(slots))
	seen := make(map[int]bool, len(slots))
	for _, idx := range slots {
		if !seen[idx] {
			seen[idx] = true
			out = append(out, idx)
		}
	}
	return out
}

// Frames is a resolved temporal window. Prev2 and Next2 are nil when the ±2
// frames are not used.
type Frames struct {
	Prev2 *video.Frame
	Prev1 *video.Frame
	Cur   *video.Frame
	Next1 *video.Frame
	Next2 *video.Frame
}

// fetchWindow requests every frame of w from src at once and returns when all
// of them are available, or when the first fetch fails.
func fetchWindow(ctx context.Context, src video.Source, w Window) (Frames, int, error) {
	indices := w.Indices()
	fetched := make([]*video.Frame, len(indices))

	g, gctx := errgroup.WithContext(ctx)
	for i, idx := range indices {
		i, idx := i, idx
		g.Go(func() error {
			frame, err := src.GetFrame(gctx, idx)
			if err != nil {
				return fmt.Errorf("fetching frame %d: %w", idx, err)
			}
			fetched[i] = frame
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Frames{}, 0, err
	}

	byIndex := make(map[int]*video.Frame, len(indices))
	for i, idx := range indices {
		byIndex[idx] = fetched[i]
	}

	frames := Frames{
		Prev1: byIndex[w.Prev1],
		Cur:   byIndex[w.Cur],
		Next1: byIndex[w.Next1],
	}
	if w.Outer {
		frames.Prev2 = byIndex[w.Prev2]
		frames.Next2 = byIndex[w.Next2]
	}
	return frames, len(indices), nil
}

// validate checks that every present frame shares the plane layout of Cur.
func (f Frames) validate() error {
	if f.Cur == nil || f.Prev1 == nil || f.Next1 == nil {
		return fmt.Errorf("window is missing a required frame")
	}
	if (f.Prev2 == nil) != (f.Next2 == nil) {
		return fmt.Errorf("window must have both or neither of the ±2 frames")
	}
	for _, other := range []*video.Frame{f.Prev2, f.Prev1, f.Next1, f.Next2} {
		if other == nil {
			continue
		}
		if err := f.Cur.SameLayout(other); err != nil {
			return err
		}
	}
	return nil
}
