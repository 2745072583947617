package checkmate

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/opd-ai/checkmate/video"
)

// Fixed-point weight scale. A neighbour weight is at most weightHalf; the
// three weights always sum to weightFull, and the weighted sum of
// two-sample values is normalised by blendShift (2 * weightFull).
const (
	weightHalf = 1 << 13
	weightFull = 1 << 14
	blendShift = 15
)

// kernel holds the per-instance constants of the blend.
type kernel struct {
	thr            int
	tmax           int
	tthr2          int
	tmaxMultiplier int
}

func newKernel(opts *Options) kernel {
	return kernel{
		thr:            opts.Thr,
		tmax:           opts.Tmax,
		tthr2:          opts.Tthr2,
		tmaxMultiplier: weightHalf / opts.Tmax,
	}
}

// rows3 is a row and the rows two lines above and below it.
type rows3 struct {
	above  []byte
	center []byte
	below  []byte
}

func (r *rows3) columnSum(x int) int {
	return int(r.above[x]) + 2*int(r.center[x]) + int(r.below[x])
}

// lineInput is the neighbourhood of one output row. prev2 and next2 are nil
// unless the ±2 frames are in use.
type lineInput struct {
	prev2 []byte
	next2 []byte
	prev1 rows3
	cur   rows3
	next1 rows3
}

// weights returns the fixed-point blend weights for the previous, next and
// current frame given the temporal deviations pc and nc. curr is the
// complement of the other two and is not clamped.
func (k *kernel) weights(pc, nc int) (prev, next, curr int) {
	nc = k.thr + k.tmax - absInt(nc)
	pc = k.thr + k.tmax - absInt(pc)

	next = min(clampInt(nc, 0, k.tmax+1)*k.tmaxMultiplier, weightHalf)
	prev = min(clampInt(pc, 0, k.tmax+1)*k.tmaxMultiplier, weightHalf)
	curr = weightFull - (next + prev)
	return prev, next, curr
}

// spatialValue is the vertical/horizontal reconstruction of sample x of the
// current row.
func spatialValue(cur *rows3, x, xl, xr, currentColumn int) int {
	return (-int(cur.above[xl]) - int(cur.above[xr]) +
		2*int(cur.center[xl]) + 2*int(cur.center[xr]) -
		int(cur.below[xl]) - int(cur.below[xr]) +
		2*currentColumn + 12*int(cur.center[x])) / 10
}

// blendPixel computes output sample x of a row of the given width. fast
// reports whether the stable-neighbourhood temporal average was taken.
func (k *kernel) blendPixel(in *lineInput, x, width int) (v byte, fast bool) {
	c := int(in.cur.center[x])
	p1 := int(in.prev1.center[x])
	n1 := int(in.next1.center[x])

	if in.prev2 != nil {
		p2 := int(in.prev2[x])
		n2 := int(in.next2[x])
		if absInt(p1-n1) < k.tthr2 && absInt(p2-c) < k.tthr2 && absInt(c-n2) < k.tthr2 {
			return byte((p1 + 2*c + n1) >> 2), true
		}
	}

	xl := x - 2
	if x < 2 {
		xl = 0
	}
	xr := x + 2
	if x > width-3 {
		xr = width - 1
	}

	currentColumn := in.cur.columnSum(x)
	currValue := spatialValue(&in.cur, x, xl, xr, currentColumn)

	nc := in.next1.columnSum(x) - currentColumn
	pc := in.prev1.columnSum(x) - currentColumn
	prevWeight, nextWeight, currWeight := k.weights(pc, nc)

	prevValue := c + p1
	nextValue := c + n1

	sum := currWeight*currValue + prevWeight*prevValue + nextWeight*nextValue
	return byte(clampInt(sum>>blendShift, 0, 255)), false
}

// processLine filters one row into dst and returns the number of samples that
// took the temporal-average path.
func (k *kernel) processLine(dst []byte, in *lineInput, width int) int {
	fast := 0
	for x := 0; x < width; x++ {
		v, f := k.blendPixel(in, x, width)
		dst[x] = v
		if f {
			fast++
		}
	}
	return fast
}

// planeWindow is one plane of every frame in a window. prev2 and next2 are
// nil unless the ±2 frames are in use.
type planeWindow struct {
	prev2 *video.Plane
	prev1 *video.Plane
	cur   *video.Plane
	next1 *video.Plane
	next2 *video.Plane
}

// planeCounts tallies how the samples of a plane were produced.
type planeCounts struct {
	fast    int
	blended int
}

// processPlane filters one plane into dst. The top and bottom two rows are
// copied from the current frame unchanged.
func (k *kernel) processPlane(dst *video.Plane, pw planeWindow) planeCounts {
	cur := pw.cur
	width, height := cur.Width, cur.Height

	top := min(2, height)
	video.Bitblt(dst.Data, dst.Stride, cur.Data, cur.Stride, width, top)
	bottom := max(height-2, 0)
	video.Bitblt(dst.Data[bottom*dst.Stride:], dst.Stride, cur.Data[bottom*cur.Stride:], cur.Stride, width, height-bottom)

	var counts planeCounts
	for y := 2; y < height-2; y++ {
		in := lineInput{
			prev1: rows3{pw.prev1.Row(y - 2), pw.prev1.Row(y), pw.prev1.Row(y + 2)},
			cur:   rows3{cur.Row(y - 2), cur.Row(y), cur.Row(y + 2)},
			next1: rows3{pw.next1.Row(y - 2), pw.next1.Row(y), pw.next1.Row(y + 2)},
		}
		if pw.prev2 != nil {
			in.prev2 = pw.prev2.Row(y)
			in.next2 = pw.next2.Row(y)
		}

		fast := k.processLine(dst.Row(y), &in, width)
		counts.fast += fast
		counts.blended += width - fast
	}
	return counts
}

// render allocates the output frame for frames and fills every plane. Planes
// are processed concurrently; each goroutine owns one plane of the output.
func (k *kernel) render(ctx context.Context, frames Frames) (*video.Frame, planeCounts, error) {
	dst, err := video.NewFrameLike(frames.Cur)
	if err != nil {
		return nil, planeCounts{}, err
	}

	perPlane := make([]planeCounts, len(dst.Planes))
	g, gctx := errgroup.WithContext(ctx)
	for i := range dst.Planes {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pw := planeWindow{
				prev1: &frames.Prev1.Planes[i],
				cur:   &frames.Cur.Planes[i],
				next1: &frames.Next1.Planes[i],
			}
			if frames.Prev2 != nil && k.tthr2 > 0 {
				pw.prev2 = &frames.Prev2.Planes[i]
				pw.next2 = &frames.Next2.Planes[i]
			}
			perPlane[i] = k.processPlane(&dst.Planes[i], pw)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, planeCounts{}, err
	}

	var total planeCounts
	for _, c := range perPlane {
		total.fast += c.fast
		total.blended += c.blended
	}
	return dst, total, nil
}

// Process filters a window that the caller has already resolved into a new
// frame. Prev2 and Next2 are only read when opts.Tthr2 > 0.
func Process(ctx context.Context, frames Frames, opts *Options) (*video.Frame, error) {
	if opts == nil {
		opts = NewOptions()
	}
	if err := ValidateOptions(opts); err != nil {
		return nil, err
	}
	if !opts.UsesOuterFrames() {
		frames.Prev2, frames.Next2 = nil, nil
	}
	if err := frames.validate(); err != nil {
		return nil, err
	}
	if err := checkFormat(frames.Cur.Format); err != nil {
		return nil, err
	}

	k := newKernel(opts)
	dst, _, err := k.render(ctx, frames)
	return dst, err
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v > hi {
		return hi
	}
	if v < lo {
		return lo
	}
	return v
}
