package video

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/checkmate/limits"
)

const (
	y4mMagic      = "YUV4MPEG2"
	y4mFrameTag   = "FRAME"
	maxHeaderLine = 4096

	// PropY4MFrameParams holds the parameters of a FRAME line, if any.
	PropY4MFrameParams = "y4m.frame_params"
)

// Y4M errors.
var (
	// ErrBadHeader indicates a malformed stream or frame header.
	ErrBadHeader = errors.New("malformed y4m header")

	// ErrUnsupportedColorspace indicates a colour space other than the 8-bit
	// planar ones this package handles.
	ErrUnsupportedColorspace = errors.New("unsupported y4m colorspace")
)

// Y4MHeader is the parsed stream header of a YUV4MPEG2 file.
type Y4MHeader struct {
	Width      int
	Height     int
	FrameRate  string   // "num:den", empty if absent
	Interlace  string   // p, t, b or m; empty if absent
	Aspect     string   // "num:den", empty if absent
	Colorspace string   // empty means 420jpeg
	Extensions []string // X parameters, without the leading X
}

// Format returns the frame format described by the header's colour space.
func (h Y4MHeader) Format() (Format, error) {
	switch h.Colorspace {
	case "", "420jpeg", "420paldv", "420mpeg2", "420":
		return YUV420P8, nil
	case "422":
		return YUV422P8, nil
	case "444":
		return YUV444P8, nil
	case "444alpha":
		return YUVA444P8, nil
	case "mono":
		return Gray8, nil
	default:
		return Format{}, fmt.Errorf("%w: %q", ErrUnsupportedColorspace, h.Colorspace)
	}
}

// String renders the header line without the trailing newline.
func (h Y4MHeader) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s W%d H%d", y4mMagic, h.Width, h.Height)
	if h.FrameRate != "" {
		b.WriteString(" F" + h.FrameRate)
	}
	if h.Interlace != "" {
		b.WriteString(" I" + h.Interlace)
	}
	if h.Aspect != "" {
		b.WriteString(" A" + h.Aspect)
	}
	if h.Colorspace != "" {
		b.WriteString(" C" + h.Colorspace)
	}
	for _, x := range h.Extensions {
		b.WriteString(" X" + x)
	}
	return b.String()
}

// ParseY4MHeader parses a stream header line, without its trailing newline.
func ParseY4MHeader(line string) (Y4MHeader, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != y4mMagic {
		return Y4MHeader{}, fmt.Errorf("%w: missing %s signature", ErrBadHeader, y4mMagic)
	}

	var h Y4MHeader
	for _, tok := range fields[1:] {
		val := tok[1:]
		switch tok[0] {
		case 'W':
			w, err := strconv.Atoi(val)
			if err != nil {
				return Y4MHeader{}, fmt.Errorf("%w: width %q", ErrBadHeader, val)
			}
			h.Width = w
		case 'H':
			ht, err := strconv.Atoi(val)
			if err != nil {
				return Y4MHeader{}, fmt.Errorf("%w: height %q", ErrBadHeader, val)
			}
			h.Height = ht
		case 'F':
			h.FrameRate = val
		case 'I':
			h.Interlace = val
		case 'A':
			h.Aspect = val
		case 'C':
			h.Colorspace = val
		case 'X':
			h.Extensions = append(h.Extensions, val)
		default:
			// Unknown tags are ignored, as the format requires.
		}
	}

	if err := limits.ValidateDimensions(h.Width, h.Height); err != nil {
		return Y4MHeader{}, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	return h, nil
}

// Y4MReader reads frames from a YUV4MPEG2 stream.
type Y4MReader struct {
	r      *bufio.Reader
	header Y4MHeader
	format Format
	count  int
}

// NewY4MReader reads and validates the stream header.
func NewY4MReader(r io.Reader) (*Y4MReader, error) {
	br := bufio.NewReader(r)
	line, err := readHeaderLine(br)
	if err != nil {
		return nil, fmt.Errorf("reading stream header: %w", err)
	}

	header, err := ParseY4MHeader(line)
	if err != nil {
		return nil, err
	}
	format, err := header.Format()
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function":   "NewY4MReader",
		"width":      header.Width,
		"height":     header.Height,
		"colorspace": header.Colorspace,
		"format":     format.Name,
	}).Debug("Parsed y4m stream header")

	return &Y4MReader{r: br, header: header, format: format}, nil
}

// Header returns the stream header.
func (yr *Y4MReader) Header() Y4MHeader {
	return yr.header
}

// Format returns the frame format of the stream.
func (yr *Y4MReader) Format() Format {
	return yr.format
}

// ReadFrame reads the next frame. It returns io.EOF after the last frame and
// io.ErrUnexpectedEOF for a truncated frame.
func (yr *Y4MReader) ReadFrame() (*Frame, error) {
	line, err := readHeaderLine(yr.r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			if line == "" {
				return nil, io.EOF
			}
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("frame %d: %w", yr.count, err)
	}
	if !strings.HasPrefix(line, y4mFrameTag) {
		return nil, fmt.Errorf("%w: frame %d: expected %s, got %q", ErrBadHeader, yr.count, y4mFrameTag, line)
	}

	frame, err := NewFrame(yr.format, yr.header.Width, yr.header.Height)
	if err != nil {
		return nil, err
	}
	if params := strings.TrimSpace(strings.TrimPrefix(line, y4mFrameTag)); params != "" {
		frame.Props[PropY4MFrameParams] = params
	}

	for i := range frame.Planes {
		p := &frame.Planes[i]
		for y := 0; y < p.Height; y++ {
			if _, err := io.ReadFull(yr.r, p.Row(y)); err != nil {
				if errors.Is(err, io.EOF) {
					err = io.ErrUnexpectedEOF
				}
				return nil, fmt.Errorf("frame %d plane %d: %w", yr.count, i, err)
			}
		}
	}

	yr.count++
	return frame, nil
}

// LoadY4M reads a complete YUV4MPEG2 stream into a MemorySource.
func LoadY4M(r io.Reader) (*MemorySource, Y4MHeader, error) {
	yr, err := NewY4MReader(r)
	if err != nil {
		return nil, Y4MHeader{}, err
	}

	var frames []*Frame
	for {
		frame, err := yr.ReadFrame()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, Y4MHeader{}, err
		}
		frames = append(frames, frame)
	}

	src, err := NewMemorySource(frames...)
	if err != nil {
		return nil, Y4MHeader{}, err
	}
	return src, yr.Header(), nil
}

// Y4MWriter writes frames to a YUV4MPEG2 stream. The stream header is
// written before the first frame.
type Y4MWriter struct {
	w             *bufio.Writer
	header        Y4MHeader
	format        Format
	headerWritten bool
}

// NewY4MWriter creates a writer for frames matching header.
func NewY4MWriter(w io.Writer, header Y4MHeader) (*Y4MWriter, error) {
	format, err := header.Format()
	if err != nil {
		return nil, err
	}
	if err := limits.ValidateDimensions(header.Width, header.Height); err != nil {
		return nil, err
	}
	return &Y4MWriter{w: bufio.NewWriter(w), header: header, format: format}, nil
}

// WriteFrame writes one frame. The frame must match the header's format and
// dimensions.
func (yw *Y4MWriter) WriteFrame(frame *Frame) error {
	if frame.Format != yw.format || frame.Width != yw.header.Width || frame.Height != yw.header.Height {
		return fmt.Errorf("%w: frame is %s %dx%d, stream is %s %dx%d", ErrFormatMismatch,
			frame.Format.Name, frame.Width, frame.Height, yw.format.Name, yw.header.Width, yw.header.Height)
	}

	if !yw.headerWritten {
		if _, err := yw.w.WriteString(yw.header.String() + "\n"); err != nil {
			return fmt.Errorf("writing stream header: %w", err)
		}
		yw.headerWritten = true
	}

	tag := y4mFrameTag
	if params := frame.Props[PropY4MFrameParams]; params != "" {
		tag += " " + params
	}
	if _, err := yw.w.WriteString(tag + "\n"); err != nil {
		return fmt.Errorf("writing frame header: %w", err)
	}

	for i := range frame.Planes {
		p := &frame.Planes[i]
		for y := 0; y < p.Height; y++ {
			if _, err := yw.w.Write(p.Row(y)); err != nil {
				return fmt.Errorf("writing plane %d: %w", i, err)
			}
		}
	}
	return nil
}

// Flush writes any buffered data to the underlying writer.
func (yw *Y4MWriter) Flush() error {
	return yw.w.Flush()
}

func readHeaderLine(r *bufio.Reader) (string, error) {
	var buf bytes.Buffer
	for buf.Len() <= maxHeaderLine {
		b, err := r.ReadByte()
		if err != nil {
			return buf.String(), err
		}
		if b == '\n' {
			return buf.String(), nil
		}
		buf.WriteByte(b)
	}
	return "", fmt.Errorf("%w: header line exceeds %d bytes", ErrBadHeader, maxHeaderLine)
}
