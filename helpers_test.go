package checkmate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opd-ai/checkmate/video"
)

// pattern1 changes quickly between frames, so no sample is temporally stable.
func pattern1(n, x, y int) byte {
	return byte((x*37 + y*91 + n*53 + ((x*y)%7)*11) % 256)
}

// pattern2 changes slowly between frames, so some samples are stable.
func pattern2(n, x, y int) byte {
	return byte((x*37 + y*91 + ((x*y)%7)*11 + n*((x+y)%4)*3) % 256)
}

func newPatternFrame(t testing.TB, n, width, height int, pattern func(n, x, y int) byte) *video.Frame {
	t.Helper()
	f, err := video.NewFrame(video.Gray8, width, height)
	require.NoError(t, err)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			f.Planes[0].Set(x, y, pattern(n, x, y))
		}
	}
	return f
}

func newPatternClip(t testing.TB, count, width, height int, pattern func(n, x, y int) byte) []*video.Frame {
	t.Helper()
	frames := make([]*video.Frame, count)
	for n := range frames {
		frames[n] = newPatternFrame(t, n, width, height, pattern)
	}
	return frames
}

func newPatternSource(t testing.TB, count, width, height int, pattern func(n, x, y int) byte) *video.MemorySource {
	t.Helper()
	src, err := video.NewMemorySource(newPatternClip(t, count, width, height, pattern)...)
	require.NoError(t, err)
	return src
}

func assertPlaneRows(t *testing.T, want [][]byte, got *video.Plane) {
	t.Helper()
	require.Equal(t, len(want), got.Height)
	for y := range want {
		require.Equal(t, want[y], got.Row(y), "row %d", y)
	}
}

// golden holds 8x7 outputs computed independently from the reference
// arithmetic. Keys name the pattern, output frame and options.
var golden = map[string][][]byte{
	// pattern1, frame 2, thr=12 tmax=12 (tthr2=0 and tthr2=40 agree).
	"p1 n2 default": {
		{106, 143, 180, 217, 254, 35, 72, 109},
		{197, 245, 37, 85, 133, 181, 229, 200},
		{48, 82, 129, 214, 185, 215, 58, 60},
		{114, 180, 24, 21, 61, 57, 133, 122},
		{197, 77, 63, 115, 136, 214, 200, 208},
		{49, 141, 156, 171, 7, 22, 37, 52},
		{140, 243, 13, 39, 65, 91, 117, 143},
	},
	// pattern1, frame 0, thr=4 tmax=3.
	"p1 n0 thr=4 tmax=3": {
		{0, 37, 74, 111, 148, 185, 222, 3},
		{91, 139, 187, 235, 27, 75, 123, 94},
		{171, 236, 59, 105, 82, 152, 205, 178},
		{25, 80, 153, 154, 202, 197, 39, 30},
		{112, 182, 177, 26, 39, 105, 100, 106},
		{199, 35, 50, 65, 157, 172, 187, 202},
		{34, 137, 163, 189, 215, 241, 11, 37},
	},
	// pattern1, frame 4 (last), thr=30 tmax=200.
	"p1 n4 thr=30 tmax=200": {
		{212, 249, 30, 67, 104, 141, 178, 215},
		{47, 95, 143, 191, 239, 31, 79, 50},
		{132, 191, 2, 65, 51, 94, 148, 139},
		{216, 62, 101, 93, 182, 156, 231, 219},
		{72, 143, 135, 212, 220, 65, 73, 67},
		{155, 247, 6, 21, 113, 128, 143, 158},
		{246, 93, 119, 145, 171, 197, 223, 249},
	},
	// pattern2, frame 2, thr=12 tmax=12 tthr2=8: 12 temporal averages.
	"p2 n2 tthr2=8": {
		{0, 43, 86, 129, 148, 191, 234, 21},
		{97, 151, 205, 235, 33, 87, 141, 94},
		{193, 42, 44, 109, 96, 173, 203, 191},
		{49, 87, 163, 162, 198, 213, 33, 32},
		{108, 195, 204, 73, 22, 109, 118, 130},
		{205, 47, 68, 65, 163, 184, 205, 202},
		{46, 155, 163, 195, 227, 3, 11, 43},
	},
	// pattern2, frame 2, thr=12 tmax=12.
	"p2 n2 default": {
		{0, 43, 86, 129, 148, 191, 234, 21},
		{97, 151, 205, 235, 33, 87, 141, 94},
		{193, 42, 44, 93, 96, 173, 203, 180},
		{49, 86, 160, 162, 198, 212, 63, 32},
		{108, 159, 204, 73, 22, 93, 118, 130},
		{205, 47, 68, 65, 163, 184, 205, 202},
		{46, 155, 163, 195, 227, 3, 11, 43},
	},
	// pattern2, frame 1, thr=12 tmax=12 tthr2=8: prev2 clamps to frame 0.
	"p2 n1 tthr2=8": {
		{0, 40, 80, 120, 148, 188, 228, 12},
		{94, 145, 196, 235, 30, 81, 132, 94},
		{187, 239, 44, 106, 90, 167, 203, 188},
		{41, 87, 160, 156, 192, 213, 30, 26},
		{108, 192, 198, 41, 22, 106, 112, 109},
		{202, 41, 59, 65, 160, 178, 196, 202},
		{40, 146, 163, 192, 221, 250, 11, 40},
	},
}
