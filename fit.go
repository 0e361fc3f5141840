package spline

import (
	"cmp"
	"fmt"
	"math"
	"slices"
)

// FitOptions controls [Fit].
type FitOptions struct {
	// Tolerance is the largest vertical distance between a sample and the
	// piecewise linear interpolant of the chosen knots. Zero means 1e-2.
	Tolerance float64
	// MaxKnots limits the number of knots. Zero means 64.
	MaxKnots int
}

func (opts FitOptions) tolerance() float64 {
	if opts.Tolerance > 0 {
		return opts.Tolerance
	}
	return 1e-2
}

func (opts FitOptions) maxKnots() int {
	if opts.MaxKnots >= 2 {
		return opts.MaxKnots
	}
	return 64
}

// Fit builds a C1-continuous cubic curve through a recorded trajectory of
// (time, value) samples.
//
// Knots are picked from the samples by repeatedly splitting the interval
// whose linear interpolant deviates most from the samples, until every
// sample is within the tolerance or the knot limit is reached. Slopes at the
// knots are chosen with the monotonicity preserving Fritsch–Carlson method
// (PCHIP), so the curve does not overshoot between knots.
//
// Samples may be given in any order. NaN samples are ignored, and of several
// samples at the same time only the first is used.
func Fit(samples []Point, opts FitOptions) (*BPoly, error) {
	pts := make([]Point, 0, len(samples))
	for _, pt := range samples {
		if !pt.IsNaN() && !pt.IsInf() {
			pts = append(pts, pt)
		}
	}
	slices.SortStableFunc(pts, func(a, b Point) int { return cmp.Compare(a.X, b.X) })
	pts = slices.CompactFunc(pts, func(a, b Point) bool { return a.X == b.X })
	if len(pts) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewSamples, len(pts))
	}

	idx := selectKnots(pts, opts.tolerance(), opts.maxKnots())
	knots := make([]Point, len(idx))
	for i, j := range idx {
		knots[i] = pts[j]
	}
	slopes := pchipSlopes(knots)

	n := len(knots) - 1
	x := make([]float64, n+1)
	c := [][]float64{make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n)}
	for i, k := range knots {
		x[i] = k.X
	}
	for seg := range n {
		w := x[seg+1] - x[seg]
		y0, y1 := knots[seg].Y, knots[seg+1].Y
		c[Knot][seg] = y0
		c[FirstCP][seg] = y0 + w*slopes[seg]/3
		c[SecondCP][seg] = y1 - w*slopes[seg+1]/3
		c[3][seg] = y1
	}
	return New(Cubic, x, c)
}

// selectKnots returns the indices of the samples used as knots, always
// including the first and the last.
func selectKnots(pts []Point, tol float64, maxKnots int) []int {
	idx := []int{0, len(pts) - 1}
	for len(idx) < maxKnots {
		worst, worstAt := tol, -1
		for i := 0; i+1 < len(idx); i++ {
			a, b := pts[idx[i]], pts[idx[i+1]]
			for j := idx[i] + 1; j < idx[i+1]; j++ {
				t := (pts[j].X - a.X) / (b.X - a.X)
				if d := math.Abs(pts[j].Y - (a.Y + t*(b.Y-a.Y))); d > worst {
					worst, worstAt = d, j
				}
			}
		}
		if worstAt < 0 {
			break
		}
		pos, _ := slices.BinarySearch(idx, worstAt)
		idx = slices.Insert(idx, pos, worstAt)
	}
	return idx
}

// pchipSlopes returns the Fritsch–Carlson derivative estimates at pts.
func pchipSlopes(pts []Point) []float64 {
	n := len(pts)
	m := make([]float64, n)
	h := make([]float64, n-1)
	delta := make([]float64, n-1)
	for k := range n - 1 {
		h[k] = pts[k+1].X - pts[k].X
		delta[k] = (pts[k+1].Y - pts[k].Y) / h[k]
	}
	if n == 2 {
		m[0], m[1] = delta[0], delta[0]
		return m
	}

	for k := 1; k < n-1; k++ {
		if delta[k-1]*delta[k] <= 0 {
			continue
		}
		w1 := 2*h[k] + h[k-1]
		w2 := h[k] + 2*h[k-1]
		m[k] = (w1 + w2) / (w1/delta[k-1] + w2/delta[k])
	}
	m[0] = pchipEndSlope(h[0], h[1], delta[0], delta[1])
	m[n-1] = pchipEndSlope(h[n-2], h[n-3], delta[n-2], delta[n-3])
	return m
}

// pchipEndSlope is the shape-preserving three-point estimate at an end of
// the data.
func pchipEndSlope(h0, h1, d0, d1 float64) float64 {
	d := ((2*h0+h1)*d0 - h0*d1) / (h0 + h1)
	if math.Signbit(d) != math.Signbit(d0) || d0 == 0 {
		return 0
	}
	if math.Signbit(d0) != math.Signbit(d1) && math.Abs(d) > 3*math.Abs(d0) {
		return 3 * d0
	}
	return d
}
