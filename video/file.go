package video

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// zstdSuffix marks files that are transparently (de)compressed.
const zstdSuffix = ".zst"

// OpenFile opens path for reading. "-" is standard input. Files ending in
// ".zst" are decompressed on the fly.
func OpenFile(path string) (io.ReadCloser, error) {
	var f io.ReadCloser = io.NopCloser(os.Stdin)
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		f = file
	}

	if !strings.HasSuffix(path, zstdSuffix) {
		return f, nil
	}

	dec, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(1), zstd.WithDecoderLowmem(true))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	return &zstdReadCloser{dec: dec, file: f}, nil
}

// CreateFile creates path for writing. "-" is standard output. Files ending
// in ".zst" are compressed; Close flushes the compressed stream.
func CreateFile(path string) (io.WriteCloser, error) {
	var f io.WriteCloser = nopWriteCloser{os.Stdout}
	if path != "-" {
		file, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		f = file
	}

	if !strings.HasSuffix(path, zstdSuffix) {
		return f, nil
	}

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("zstd encode: %w", err)
	}
	return &zstdWriteCloser{enc: enc, file: f}, nil
}

type zstdReadCloser struct {
	dec  *zstd.Decoder
	file io.Closer
}

func (z *zstdReadCloser) Read(p []byte) (int, error) {
	return z.dec.Read(p)
}

func (z *zstdReadCloser) Close() error {
	z.dec.Close()
	return z.file.Close()
}

type zstdWriteCloser struct {
	enc  *zstd.Encoder
	file io.Closer
}

func (z *zstdWriteCloser) Write(p []byte) (int, error) {
	return z.enc.Write(p)
}

func (z *zstdWriteCloser) Close() error {
	if err := z.enc.Close(); err != nil {
		z.file.Close()
		return fmt.Errorf("zstd encode: %w", err)
	}
	return z.file.Close()
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
