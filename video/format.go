package video

import "fmt"

// SampleType describes how the samples of a plane are encoded.
type SampleType int

const (
	// SampleInteger is an unsigned integer sample.
	SampleInteger SampleType = iota
	// SampleFloat is an IEEE float sample.
	SampleFloat
)

// String returns a string representation of the sample type.
func (st SampleType) String() string {
	switch st {
	case SampleInteger:
		return "integer"
	case SampleFloat:
		return "float"
	default:
		return "unknown"
	}
}

// Format describes the plane layout of a planar video format.
//
// SubSamplingW and SubSamplingH are log2 chroma subsampling factors applied to
// every plane except the first (and except an alpha plane, which is always full
// resolution).
type Format struct {
	Name           string
	SampleType     SampleType
	BitsPerSample  int
	BytesPerSample int
	NumPlanes      int
	SubSamplingW   int
	SubSamplingH   int
	HasAlpha       bool
}

// Supported 8-bit planar formats.
var (
	Gray8     = Format{Name: "Gray8", SampleType: SampleInteger, BitsPerSample: 8, BytesPerSample: 1, NumPlanes: 1}
	YUV420P8  = Format{Name: "YUV420P8", SampleType: SampleInteger, BitsPerSample: 8, BytesPerSample: 1, NumPlanes: 3, SubSamplingW: 1, SubSamplingH: 1}
	YUV422P8  = Format{Name: "YUV422P8", SampleType: SampleInteger, BitsPerSample: 8, BytesPerSample: 1, NumPlanes: 3, SubSamplingW: 1}
	YUV444P8  = Format{Name: "YUV444P8", SampleType: SampleInteger, BitsPerSample: 8, BytesPerSample: 1, NumPlanes: 3}
	YUVA444P8 = Format{Name: "YUVA444P8", SampleType: SampleInteger, BitsPerSample: 8, BytesPerSample: 1, NumPlanes: 4, HasAlpha: true}
)

// IsChroma reports whether the plane index is a subsampled chroma plane.
func (f Format) IsChroma(plane int) bool {
	if plane == 0 {
		return false
	}
	return !(f.HasAlpha && plane == f.NumPlanes-1)
}

// PlaneWidth returns the width in samples of the given plane for a frame of
// the given luma width. Subsampled widths round up.
func (f Format) PlaneWidth(plane, width int) int {
	if !f.IsChroma(plane) {
		return width
	}
	return (width + (1 << f.SubSamplingW) - 1) >> f.SubSamplingW
}

// PlaneHeight returns the height in rows of the given plane for a frame of
// the given luma height. Subsampled heights round up.
func (f Format) PlaneHeight(plane, height int) int {
	if !f.IsChroma(plane) {
		return height
	}
	return (height + (1 << f.SubSamplingH) - 1) >> f.SubSamplingH
}

// String returns the format name with its sample description.
func (f Format) String() string {
	return fmt.Sprintf("%s(%s %d-bit, %d planes)", f.Name, f.SampleType, f.BitsPerSample, f.NumPlanes)
}
