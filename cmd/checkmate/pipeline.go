package main

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/opd-ai/checkmate"
	"github.com/opd-ai/checkmate/video"
)

// frameSink consumes output frames in index order.
type frameSink interface {
	WriteFrame(frame *video.Frame) error
}

// run filters config.input into config.output and returns the filter's
// final statistics.
func run(ctx context.Context, config *CLIConfig) (checkmate.Stats, error) {
	in, err := video.OpenFile(config.input)
	if err != nil {
		return checkmate.Stats{}, fmt.Errorf("opening input: %w", err)
	}
	defer in.Close()

	src, header, err := video.LoadY4M(in)
	if err != nil {
		return checkmate.Stats{}, fmt.Errorf("reading input: %w", err)
	}

	filter, err := checkmate.New(src, filterOptions(config))
	if err != nil {
		return checkmate.Stats{}, err
	}
	defer filter.Close()

	out, err := video.CreateFile(config.output)
	if err != nil {
		return checkmate.Stats{}, fmt.Errorf("creating output: %w", err)
	}

	writer, err := video.NewY4MWriter(out, header)
	if err != nil {
		out.Close()
		return checkmate.Stats{}, err
	}

	logrus.WithFields(logrus.Fields{
		"function":    "run",
		"input":       config.input,
		"output":      config.output,
		"frames":      filter.NumFrames(),
		"workers":     config.workers,
		"instance_id": filter.ID(),
	}).Info("Filtering clip")

	if err := filterClip(ctx, filter, writer, config.workers); err != nil {
		out.Close()
		return checkmate.Stats{}, err
	}
	if err := writer.Flush(); err != nil {
		out.Close()
		return checkmate.Stats{}, fmt.Errorf("writing output: %w", err)
	}
	if err := out.Close(); err != nil {
		return checkmate.Stats{}, fmt.Errorf("closing output: %w", err)
	}

	return filter.Stats(), nil
}

// filterClip computes every frame of filter with at most workers frames in
// flight and hands them to sink in index order. Computation may run at most
// 2*workers frames ahead of the sink.
func filterClip(ctx context.Context, filter *checkmate.Filter, sink frameSink, workers int) error {
	numFrames := filter.NumFrames()
	results := make([]chan *video.Frame, numFrames)
	for i := range results {
		results[i] = make(chan *video.Frame, 1)
	}
	ahead := make(chan struct{}, 2*workers)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		pool, pctx := errgroup.WithContext(gctx)
		pool.SetLimit(workers)

	dispatch:
		for i := 0; i < numFrames; i++ {
			select {
			case ahead <- struct{}{}:
			case <-pctx.Done():
				break dispatch
			}
			i := i
			pool.Go(func() error {
				frame, err := filter.GetFrame(pctx, i)
				if err != nil {
					return err
				}
				results[i] <- frame
				return nil
			})
		}
		return pool.Wait()
	})

	g.Go(func() error {
		for i := 0; i < numFrames; i++ {
			select {
			case frame := <-results[i]:
				if err := sink.WriteFrame(frame); err != nil {
					return fmt.Errorf("writing frame %d: %w", i, err)
				}
				<-ahead
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	return g.Wait()
}

// printStats writes a human-readable summary of stats.
func printStats(w io.Writer, stats checkmate.Stats) {
	fmt.Fprintf(w, "Instance:        %s\n", stats.InstanceID)
	fmt.Fprintf(w, "Frames:          %d\n", stats.FramesProduced)
	fmt.Fprintf(w, "Source fetches:  %d\n", stats.SourceFetches)
	fmt.Fprintf(w, "Fast path:       %d samples (%.1f%%)\n", stats.FastPathPixels, 100*stats.FastPathRatio())
	fmt.Fprintf(w, "Blended:         %d samples\n", stats.BlendedPixels)
	fmt.Fprintf(w, "Processing time: %v (%v per frame)\n", stats.ProcessingTime, stats.AverageFrameTime())
}
