package video

import (
	"errors"
	"fmt"

	"github.com/opd-ai/checkmate/limits"
)

// strideAlignment is the byte alignment of every row allocated by NewFrame.
const strideAlignment = 32

// ErrPlaneMismatch indicates that two frames do not share a plane layout.
var ErrPlaneMismatch = errors.New("plane layout mismatch")

// Plane is one colour channel of a frame.
type Plane struct {
	Data   []byte
	Stride int // bytes between the starts of consecutive rows
	Width  int // samples per row
	Height int // rows
}

// Row returns the samples of row y without stride padding.
func (p *Plane) Row(y int) []byte {
	off := y * p.Stride
	return p.Data[off : off+p.Width]
}

// At returns the sample at column x of row y.
func (p *Plane) At(x, y int) byte {
	return p.Data[y*p.Stride+x]
}

// Set writes the sample at column x of row y.
func (p *Plane) Set(x, y int, v byte) {
	p.Data[y*p.Stride+x] = v
}

// Fill sets every visible sample of the plane to v.
func (p *Plane) Fill(v byte) {
	for y := 0; y < p.Height; y++ {
		row := p.Row(y)
		for x := range row {
			row[x] = v
		}
	}
}

// Frame is a planar video frame.
type Frame struct {
	Format Format
	Width  int // luma width
	Height int // luma height
	Planes []Plane
	Props  map[string]string
}

// NewFrame allocates a zeroed frame. Row strides are padded to a 32-byte
// boundary, so Stride is generally larger than Width.
func NewFrame(format Format, width, height int) (*Frame, error) {
	if err := limits.ValidateDimensions(width, height); err != nil {
		return nil, err
	}
	if err := limits.ValidatePlaneCount(format.NumPlanes); err != nil {
		return nil, err
	}
	if format.BytesPerSample < 1 {
		return nil, fmt.Errorf("format %s: invalid bytes per sample %d", format.Name, format.BytesPerSample)
	}

	frame := &Frame{
		Format: format,
		Width:  width,
		Height: height,
		Planes: make([]Plane, format.NumPlanes),
		Props:  make(map[string]string),
	}

	for i := range frame.Planes {
		w := format.PlaneWidth(i, width)
		h := format.PlaneHeight(i, height)
		stride := alignStride(w * format.BytesPerSample)
		if err := limits.ValidatePlane(stride, h); err != nil {
			return nil, fmt.Errorf("plane %d: %w", i, err)
		}
		frame.Planes[i] = Plane{
			Data:   make([]byte, stride*h),
			Stride: stride,
			Width:  w,
			Height: h,
		}
	}

	return frame, nil
}

// NewFrameLike allocates a frame with the format and dimensions of src and a
// copy of its properties.
func NewFrameLike(src *Frame) (*Frame, error) {
	frame, err := NewFrame(src.Format, src.Width, src.Height)
	if err != nil {
		return nil, err
	}
	frame.CopyProps(src)
	return frame, nil
}

// CopyProps replaces the frame's properties with a copy of src's.
func (f *Frame) CopyProps(src *Frame) {
	f.Props = make(map[string]string, len(src.Props))
	for k, v := range src.Props {
		f.Props[k] = v
	}
}

// Clone returns a deep copy of the frame, preserving strides.
func (f *Frame) Clone() *Frame {
	clone := &Frame{
		Format: f.Format,
		Width:  f.Width,
		Height: f.Height,
		Planes: make([]Plane, len(f.Planes)),
	}
	for i, p := range f.Planes {
		clone.Planes[i] = Plane{
			Data:   append([]byte(nil), p.Data...),
			Stride: p.Stride,
			Width:  p.Width,
			Height: p.Height,
		}
	}
	clone.CopyProps(f)
	return clone
}

// SameLayout reports whether other has the same number of planes and the same
// per-plane dimensions. Strides may differ.
func (f *Frame) SameLayout(other *Frame) error {
	if len(f.Planes) != len(other.Planes) {
		return fmt.Errorf("%w: %d planes vs %d", ErrPlaneMismatch, len(f.Planes), len(other.Planes))
	}
	for i := range f.Planes {
		a, b := &f.Planes[i], &other.Planes[i]
		if a.Width != b.Width || a.Height != b.Height {
			return fmt.Errorf("%w: plane %d is %dx%d vs %dx%d", ErrPlaneMismatch, i, a.Width, a.Height, b.Width, b.Height)
		}
	}
	return nil
}

// Bitblt copies height rows of rowBytes bytes from src to dst, honouring each
// buffer's stride.
func Bitblt(dst []byte, dstStride int, src []byte, srcStride int, rowBytes, height int) {
	if height <= 0 {
		return
	}
	if dstStride == srcStride && srcStride == rowBytes {
		copy(dst[:rowBytes*height], src[:rowBytes*height])
		return
	}
	for y := 0; y < height; y++ {
		copy(dst[y*dstStride:y*dstStride+rowBytes], src[y*srcStride:y*srcStride+rowBytes])
	}
}

func alignStride(rowBytes int) int {
	return (rowBytes + strideAlignment - 1) &^ (strideAlignment - 1)
}
