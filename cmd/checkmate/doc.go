// Package main provides the checkmate command, which removes dot crawl from
// a YUV4MPEG2 clip.
//
// The whole input clip is loaded into memory, every output frame is computed
// on a bounded pool of workers, and the frames are written back in order:
//
//	checkmate -in capture.y4m -out clean.y4m -tthr2 4
//	checkmate -in capture.y4m.zst -out - -workers 8 | ffplay -
//
// Files ending in ".zst" are decompressed on input and compressed on output.
// "-" selects standard input or output. Logs go to standard error unless
// -log-file is given.
package main
