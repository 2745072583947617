package checkmate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/checkmate/video"
)

func uniformRows(width int, v byte) rows3 {
	row := make([]byte, width)
	for i := range row {
		row[i] = v
	}
	return rows3{above: row, center: row, below: row}
}

func TestKernel_Weights(t *testing.T) {
	k := newKernel(&Options{Thr: 12, Tmax: 12})
	assert.Equal(t, 682, k.tmaxMultiplier)

	tests := []struct {
		name       string
		pc, nc     int
		prev, next int
	}{
		{"identical neighbours saturate", 0, 0, weightHalf, weightHalf},
		{"within thr", 11, -11, weightHalf, weightHalf},
		{"decaying", 20, -15, 4 * 682, 9 * 682},
		{"at thr+tmax", 24, 0, 0, weightHalf},
		{"beyond thr+tmax", -300, 300, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev, next, curr := k.weights(tt.pc, tt.nc)
			assert.Equal(t, tt.prev, prev)
			assert.Equal(t, tt.next, next)
			assert.Equal(t, weightFull, prev+next+curr)
		})
	}
}

// TestKernel_WeightSum checks that the three weights always sum to 2^14 for
// every deviation and configuration.
func TestKernel_WeightSum(t *testing.T) {
	for _, opts := range []Options{{Thr: 0, Tmax: 1}, {Thr: 12, Tmax: 12}, {Thr: 100, Tmax: 255}, {Thr: 3, Tmax: 7}} {
		k := newKernel(&opts)
		for dev := -1020; dev <= 1020; dev += 3 {
			prev, next, curr := k.weights(dev, -dev/2)
			require.Equal(t, weightFull, prev+next+curr, "opts %+v dev %d", opts, dev)
			require.GreaterOrEqual(t, prev, 0)
			require.LessOrEqual(t, prev, weightHalf)
			require.LessOrEqual(t, next, weightHalf)
		}
	}
}

func TestKernel_BlendPixel_Uniform(t *testing.T) {
	k := newKernel(NewOptions())
	in := lineInput{
		prev1: uniformRows(6, 100),
		cur:   uniformRows(6, 100),
		next1: uniformRows(6, 100),
	}

	for x := 0; x < 6; x++ {
		v, fast := k.blendPixel(&in, x, 6)
		assert.Equal(t, byte(100), v, "x=%d", x)
		assert.False(t, fast)
	}
}

func TestKernel_BlendPixel_FastPath(t *testing.T) {
	k := newKernel(&Options{Thr: 12, Tmax: 12, Tthr2: 5})

	// Spatial neighbourhood is deliberately wild; the fast path must ignore it.
	cur := rows3{
		above:  []byte{0, 255, 0, 255, 0},
		center: []byte{255, 0, 101, 0, 255},
		below:  []byte{0, 255, 0, 255, 0},
	}
	in := lineInput{
		prev2: []byte{0, 0, 100, 0, 0},
		next2: []byte{0, 0, 101, 0, 0},
		prev1: rows3{above: make([]byte, 5), center: []byte{9, 9, 100, 9, 9}, below: make([]byte, 5)},
		cur:   cur,
		next1: rows3{above: make([]byte, 5), center: []byte{9, 9, 102, 9, 9}, below: make([]byte, 5)},
	}

	v, fast := k.blendPixel(&in, 2, 5)
	assert.True(t, fast)
	assert.Equal(t, byte((100+2*101+102)>>2), v)

	// |p2-cur| == tthr2 is not strictly below the threshold.
	in.prev2[2] = 96
	_, fast = k.blendPixel(&in, 2, 5)
	assert.False(t, fast)
}

func TestKernel_BlendPixel_ZeroTthr2NeverFast(t *testing.T) {
	k := newKernel(&Options{Thr: 12, Tmax: 12, Tthr2: 0})
	in := lineInput{
		prev2: []byte{50},
		next2: []byte{50},
		prev1: uniformRows(1, 50),
		cur:   uniformRows(1, 50),
		next1: uniformRows(1, 50),
	}
	v, fast := k.blendPixel(&in, 0, 1)
	assert.False(t, fast)
	assert.Equal(t, byte(50), v)
}

func TestKernel_BlendPixel_ClampsOutput(t *testing.T) {
	k := newKernel(NewOptions())

	t.Run("overshoot clamps to 255", func(t *testing.T) {
		in := lineInput{
			prev1: uniformRows(5, 0),
			cur: rows3{
				above:  []byte{0, 0, 255, 0, 0},
				center: []byte{255, 255, 255, 255, 255},
				below:  []byte{0, 0, 255, 0, 0},
			},
			next1: uniformRows(5, 0),
		}
		// Spatial value 612 at full current weight: 612*16384>>15 = 306.
		v, _ := k.blendPixel(&in, 2, 5)
		assert.Equal(t, byte(255), v)
	})

	t.Run("undershoot clamps to 0", func(t *testing.T) {
		in := lineInput{
			prev1: uniformRows(5, 255),
			cur: rows3{
				above:  []byte{255, 255, 0, 255, 255},
				center: []byte{0, 0, 0, 0, 0},
				below:  []byte{255, 255, 0, 255, 255},
			},
			next1: uniformRows(5, 255),
		}
		v, _ := k.blendPixel(&in, 2, 5)
		assert.Equal(t, byte(0), v)
	})
}

func TestKernel_BlendPixel_ColumnClamping(t *testing.T) {
	k := newKernel(NewOptions())
	// Widths 1 and 2 clamp both neighbours onto the row; nothing may index
	// outside it.
	for _, width := range []int{1, 2, 3, 4} {
		in := lineInput{
			prev1: uniformRows(width, 30),
			cur:   uniformRows(width, 30),
			next1: uniformRows(width, 30),
		}
		dst := make([]byte, width)
		assert.NotPanics(t, func() { k.processLine(dst, &in, width) })
		for _, v := range dst {
			assert.Equal(t, byte(30), v)
		}
	}
}

func TestKernel_ProcessPlane_Borders(t *testing.T) {
	k := newKernel(NewOptions())

	for _, height := range []int{1, 2, 3, 4, 5, 9} {
		cur := newPatternFrame(t, 0, 7, height, pattern1)
		prev := newPatternFrame(t, 1, 7, height, pattern1)
		next := newPatternFrame(t, 2, 7, height, pattern1)
		dst, err := video.NewFrame(video.Gray8, 7, height)
		require.NoError(t, err)

		counts := k.processPlane(&dst.Planes[0], planeWindow{
			prev1: &prev.Planes[0],
			cur:   &cur.Planes[0],
			next1: &next.Planes[0],
		})

		for y := 0; y < height; y++ {
			if y < 2 || y >= height-2 {
				assert.Equal(t, cur.Planes[0].Row(y), dst.Planes[0].Row(y), "height %d row %d", height, y)
			}
		}
		assert.Equal(t, max(height-4, 0)*7, counts.blended, "height %d", height)
		assert.Zero(t, counts.fast)
	}
}

func TestKernel_ProcessPlane_MixedStrides(t *testing.T) {
	k := newKernel(NewOptions())
	const w, h = 8, 7

	packed := func(n int) *video.Plane {
		p := &video.Plane{Data: make([]byte, w*h), Stride: w, Width: w, Height: h}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				p.Set(x, y, pattern1(n, x, y))
			}
		}
		return p
	}
	padded := func(n int) *video.Plane {
		return &newPatternFrame(t, n, w, h, pattern1).Planes[0]
	}

	dstA := &video.Plane{Data: make([]byte, 13*h), Stride: 13, Width: w, Height: h}
	k.processPlane(dstA, planeWindow{prev1: packed(1), cur: padded(2), next1: packed(3)})

	dstB := &video.Plane{Data: make([]byte, w*h), Stride: w, Width: w, Height: h}
	k.processPlane(dstB, planeWindow{prev1: padded(1), cur: packed(2), next1: padded(3)})

	for y := 0; y < h; y++ {
		assert.Equal(t, golden["p1 n2 default"][y], dstA.Row(y), "row %d", y)
		assert.Equal(t, dstA.Row(y), dstB.Row(y), "row %d", y)
	}
}

func TestProcess(t *testing.T) {
	clip := newPatternClip(t, 5, 8, 7, pattern2)
	opts := &Options{Thr: 12, Tmax: 12, Tthr2: 8}
	frames := Frames{Prev2: clip[0], Prev1: clip[1], Cur: clip[2], Next1: clip[3], Next2: clip[4]}

	out, err := Process(context.Background(), frames, opts)
	require.NoError(t, err)
	assertPlaneRows(t, golden["p2 n2 tthr2=8"], &out.Planes[0])

	// Without tthr2 the outer frames are ignored even when supplied.
	out, err = Process(context.Background(), frames, &Options{Thr: 12, Tmax: 12})
	require.NoError(t, err)
	assertPlaneRows(t, golden["p2 n2 default"], &out.Planes[0])
}

func TestProcess_Errors(t *testing.T) {
	clip := newPatternClip(t, 3, 8, 7, pattern1)
	ctx := context.Background()

	_, err := Process(ctx, Frames{Prev1: clip[0], Cur: clip[1], Next1: clip[2]}, &Options{Tmax: 0})
	assert.ErrorIs(t, err, ErrInvalidTmax)

	_, err = Process(ctx, Frames{Prev1: clip[0], Cur: clip[1]}, nil)
	assert.Error(t, err)

	small, err := video.NewFrame(video.Gray8, 8, 6)
	require.NoError(t, err)
	_, err = Process(ctx, Frames{Prev1: small, Cur: clip[1], Next1: clip[2]}, nil)
	assert.ErrorIs(t, err, video.ErrPlaneMismatch)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Process(cancelled, Frames{Prev1: clip[0], Cur: clip[1], Next1: clip[2]}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func BenchmarkKernel_ProcessPlane(b *testing.B) {
	k := newKernel(&Options{Thr: 12, Tmax: 12, Tthr2: 4})
	planes := make([]*video.Plane, 5)
	for i := range planes {
		f, err := video.NewFrame(video.Gray8, 720, 480)
		if err != nil {
			b.Fatal(err)
		}
		for y := 0; y < 480; y++ {
			for x := 0; x < 720; x++ {
				f.Planes[0].Set(x, y, pattern2(i, x, y))
			}
		}
		planes[i] = &f.Planes[0]
	}
	dst, err := video.NewFrame(video.Gray8, 720, 480)
	if err != nil {
		b.Fatal(err)
	}
	pw := planeWindow{prev2: planes[0], prev1: planes[1], cur: planes[2], next1: planes[3], next2: planes[4]}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		k.processPlane(&dst.Planes[0], pw)
	}
}
