package checkmate

import (
	"sync/atomic"
	"time"
)

// Stats is a snapshot of a Filter's counters.
type Stats struct {
	InstanceID     string
	FramesProduced uint64
	SourceFetches  uint64
	FastPathPixels uint64
	BlendedPixels  uint64
	ProcessingTime time.Duration
}

// FastPathRatio returns the share of interior samples that took the temporal
// average, or 0 before any frame was produced.
func (s Stats) FastPathRatio() float64 {
	total := s.FastPathPixels + s.BlendedPixels
	if total == 0 {
		return 0
	}
	return float64(s.FastPathPixels) / float64(total)
}

// AverageFrameTime returns the mean processing time per produced frame.
func (s Stats) AverageFrameTime() time.Duration {
	if s.FramesProduced == 0 {
		return 0
	}
	return s.ProcessingTime / time.Duration(s.FramesProduced)
}

// counters are updated lock-free from concurrent GetFrame calls.
type counters struct {
	framesProduced atomic.Uint64
	sourceFetches  atomic.Uint64
	fastPixels     atomic.Uint64
	blendedPixels  atomic.Uint64
	processingNs   atomic.Int64
}

func (c *counters) record(fetches int, pc planeCounts, elapsed time.Duration) {
	c.framesProduced.Add(1)
	c.sourceFetches.Add(uint64(fetches))
	c.fastPixels.Add(uint64(pc.fast))
	c.blendedPixels.Add(uint64(pc.blended))
	c.processingNs.Add(int64(elapsed))
}

func (c *counters) snapshot(id string) Stats {
	return Stats{
		InstanceID:     id,
		FramesProduced: c.framesProduced.Load(),
		SourceFetches:  c.sourceFetches.Load(),
		FastPathPixels: c.fastPixels.Load(),
		BlendedPixels:  c.blendedPixels.Load(),
		ProcessingTime: time.Duration(c.processingNs.Load()),
	}
}
