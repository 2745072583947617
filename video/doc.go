// Package video provides the planar frame model and frame sources used by the
// checkmate filter.
//
// # Frames
//
// A Frame holds one Plane per colour channel. Each plane is a row-major
// grid of 8-bit samples addressed by a byte stride that may exceed the plane
// width:
//
//	frame, err := video.NewFrame(video.YUV420P8, 720, 480)
//	if err != nil {
//	    return fmt.Errorf("allocating frame: %w", err)
//	}
//	luma := frame.Planes[0]
//	row := luma.Row(10) // width samples, padding excluded
//
// Frames handed out by a Source are read-only. Filters allocate a new frame for
// their output and never write to an input frame.
//
// # Sources
//
// A Source is a random-access clip:
//
//	info := src.Info()
//	frame, err := src.GetFrame(ctx, n) // 0 <= n < info.NumFrames
//
// MemorySource keeps a whole clip in memory and is safe for concurrent
// GetFrame calls. LoadY4M builds one from a YUV4MPEG2 stream.
//
// # YUV4MPEG2
//
// Y4MReader and Y4MWriter read and write 8-bit planar YUV4MPEG2 streams in the
// 420jpeg, 420paldv, 420mpeg2, 422, 444, 444alpha and mono colour spaces.
// OpenFile and CreateFile transparently decompress and compress files whose
// name ends in ".zst".
//
// # Thread Safety
//
// Frame values are not synchronized. Concurrent readers are fine; a writer
// must own the frame exclusively, or own a disjoint set of planes or rows.
package video
