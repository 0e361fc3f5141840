package spline

import (
	"fmt"
	"iter"
	"math"
	"slices"
	"sort"
)

// Degree is the polynomial degree of every segment of a curve.
type Degree int

const (
	Linear    Degree = 1
	Quadratic Degree = 2
	Cubic     Degree = 3
)

func (d Degree) String() string {
	switch d {
	case Linear:
		return "linear"
	case Quadratic:
		return "quadratic"
	case Cubic:
		return "cubic"
	default:
		return fmt.Sprintf("Degree(%d)", int(d))
	}
}

// Valid reports whether d is one of the supported degrees.
func (d Degree) Valid() bool {
	return d >= Linear && d <= Cubic
}

// Named rows of the coefficient matrix of a cubic curve.
const (
	Knot     = 0
	FirstCP  = 1
	SecondCP = 2
)

// Side selects the segment on one side of a knot.
type Side int

const (
	Left Side = iota
	Right
)

// continuityTolerance is the largest mismatch accepted between the right edge
// of one segment and the left edge of the next when reading a coefficient
// matrix.
const continuityTolerance = 1e-9

// BPoly is a piecewise polynomial in Bernstein form, describing a motion
// trajectory y(x) over the time axis x.
//
// A curve of N segments has N+1 knots at strictly increasing positions. Each
// knot carries one value shared by the segments on both sides of it, and each
// segment carries degree−1 interior control values. The control point k of a
// segment sits at the fixed position x0 + k/degree·(x1−x0); only its value is
// free.
//
// A BPoly is immutable through its exported API. Operations that change the
// shape return a new curve.
type BPoly struct {
	degree Degree
	x      []float64
	y      []float64
	// ctrl holds degree−1 values per segment, segment-major.
	ctrl []float64
}

// New builds a curve from knot positions x and a coefficient matrix c with
// degree+1 rows and len(x)−1 columns. Row 0 of column i is the value at x[i];
// row degree is the value at x[i+1] and must match row 0 of column i+1.
func New(degree Degree, x []float64, c [][]float64) (*BPoly, error) {
	if !degree.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedDegree, int(degree))
	}
	n := len(x) - 1
	if n < 1 {
		return nil, fmt.Errorf("%w: need at least two knots, got %d", ErrShape, len(x))
	}
	if len(c) != int(degree)+1 {
		return nil, fmt.Errorf("%w: %s curve needs %d rows, got %d", ErrShape, degree, degree+1, len(c))
	}
	for row, r := range c {
		if len(r) != n {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrShape, row, len(r), n)
		}
	}
	if err := checkKnots(x); err != nil {
		return nil, err
	}

	p := &BPoly{
		degree: degree,
		x:      slices.Clone(x),
		y:      make([]float64, n+1),
		ctrl:   make([]float64, n*(int(degree)-1)),
	}
	for seg := range n {
		for row := range int(degree) + 1 {
			if v := c[row][seg]; math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: coefficient (%d, %d)", ErrNonFinite, row, seg)
			}
		}
		if seg > 0 {
			prev := c[degree][seg-1]
			if math.Abs(prev-c[0][seg]) > continuityTolerance*max(1, math.Abs(prev)) {
				return nil, fmt.Errorf("%w: at knot %d (%g != %g)", ErrDiscontinuous, seg, prev, c[0][seg])
			}
		}
		p.y[seg] = c[0][seg]
		for row := 1; row < int(degree); row++ {
			p.setCoef(row, seg, c[row][seg])
		}
	}
	p.y[n] = c[degree][n-1]
	return p, nil
}

// Flat returns a constant curve of the given degree with all coefficients
// set to value.
func Flat(degree Degree, x []float64, value float64) (*BPoly, error) {
	if !degree.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedDegree, int(degree))
	}
	c := make([][]float64, degree+1)
	for row := range c {
		c[row] = make([]float64, max(len(x)-1, 0))
		for seg := range c[row] {
			c[row][seg] = value
		}
	}
	return New(degree, x, c)
}

func checkKnots(x []float64) error {
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: knot %d", ErrNonFinite, i)
		}
		if i > 0 && v <= x[i-1] {
			return fmt.Errorf("%w: x[%d]=%g, x[%d]=%g", ErrNotIncreasing, i-1, x[i-1], i, v)
		}
	}
	return nil
}

func (p *BPoly) Degree() Degree { return p.degree }

// Order returns degree+1, the number of coefficient rows.
func (p *BPoly) Order() int { return int(p.degree) + 1 }

func (p *BPoly) SegmentCount() int { return len(p.x) - 1 }

func (p *BPoly) KnotCount() int { return len(p.x) }

// Knots returns a copy of the knot positions.
func (p *BPoly) Knots() []float64 { return slices.Clone(p.x) }

// Coefficients returns a copy of the coefficient matrix, degree+1 rows by
// SegmentCount columns.
func (p *BPoly) Coefficients() [][]float64 {
	n := p.SegmentCount()
	c := make([][]float64, p.Order())
	for row := range c {
		c[row] = make([]float64, n)
		for seg := range n {
			c[row][seg] = p.coef(row, seg)
		}
	}
	return c
}

// Coefficient returns row of the coefficient matrix for segment seg.
func (p *BPoly) Coefficient(row, seg int) (float64, error) {
	if row < 0 || row > int(p.degree) || seg < 0 || seg >= p.SegmentCount() {
		return 0, fmt.Errorf("%w: coefficient (%d, %d) of %d×%d", ErrOutOfRange, row, seg, p.Order(), p.SegmentCount())
	}
	return p.coef(row, seg), nil
}

func (p *BPoly) coef(row, seg int) float64 {
	switch row {
	case 0:
		return p.y[seg]
	case int(p.degree):
		return p.y[seg+1]
	default:
		return p.ctrl[seg*(int(p.degree)-1)+row-1]
	}
}

func (p *BPoly) setCoef(row, seg int, v float64) {
	switch row {
	case 0:
		p.y[seg] = v
	case int(p.degree):
		p.y[seg+1] = v
	default:
		p.ctrl[seg*(int(p.degree)-1)+row-1] = v
	}
}

// row returns the Bernstein coefficients of one segment.
func (p *BPoly) row(seg int) []float64 {
	b := make([]float64, p.Order())
	for k := range b {
		b[k] = p.coef(k, seg)
	}
	return b
}

func (p *BPoly) width(seg int) float64 {
	return p.x[seg+1] - p.x[seg]
}

// Point returns control point k of segment seg in data space. The last knot
// is addressed as (SegmentCount(), 0).
func (p *BPoly) Point(seg, k int) (Point, error) {
	n := p.SegmentCount()
	if seg == n && k == 0 {
		return Pt(p.x[n], p.y[n]), nil
	}
	if seg < 0 || seg >= n || k < 0 || k > int(p.degree) {
		return Point{}, fmt.Errorf("%w: point (%d, %d) of %d segments", ErrOutOfRange, seg, k, n)
	}
	x := p.x[seg] + float64(k)/float64(p.degree)*p.width(seg)
	return Pt(x, p.coef(k, seg)), nil
}

// KnotPoint returns knot i in data space.
func (p *BPoly) KnotPoint(i int) (Point, error) {
	if i < 0 || i >= p.KnotCount() {
		return Point{}, fmt.Errorf("%w: knot %d of %d", ErrOutOfRange, i, p.KnotCount())
	}
	return Pt(p.x[i], p.y[i]), nil
}

// WidthRatio returns the width of segment seg+1 divided by the width of
// segment seg. The last segment has no right neighbour; callers have to
// special-case it.
func (p *BPoly) WidthRatio(seg int) (float64, error) {
	if seg < 0 || seg >= p.SegmentCount() {
		return 0, fmt.Errorf("%w: segment %d", ErrOutOfRange, seg)
	}
	if seg+1 >= p.SegmentCount() {
		return 0, fmt.Errorf("%w: segment %d is the last one", ErrDivisionByZero, seg)
	}
	return p.width(seg+1) / p.width(seg), nil
}

// Copy returns a deep copy of p.
func (p *BPoly) Copy() *BPoly {
	return &BPoly{
		degree: p.degree,
		x:      slices.Clone(p.x),
		y:      slices.Clone(p.y),
		ctrl:   slices.Clone(p.ctrl),
	}
}

// Equal reports whether p and o have the same degree, knots and
// coefficients.
func (p *BPoly) Equal(o *BPoly) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.degree == o.degree &&
		slices.Equal(p.x, o.x) &&
		slices.Equal(p.y, o.y) &&
		slices.Equal(p.ctrl, o.ctrl)
}

// Start returns the first knot position.
func (p *BPoly) Start() float64 { return p.x[0] }

// End returns the last knot position.
func (p *BPoly) End() float64 { return p.x[len(p.x)-1] }

// Duration returns the length of the curve's domain.
func (p *BPoly) Duration() float64 { return p.End() - p.Start() }

// Segment returns segment seg as a cubic Bézier in data space. Linear and
// quadratic segments are raised to cubic.
func (p *BPoly) Segment(seg int) (CubicBez, error) {
	if seg < 0 || seg >= p.SegmentCount() {
		return CubicBez{}, fmt.Errorf("%w: segment %d", ErrOutOfRange, seg)
	}
	p0 := Pt(p.x[seg], p.y[seg])
	p3 := Pt(p.x[seg+1], p.y[seg+1])
	switch p.degree {
	case Linear:
		return CubicBez{p0, p0.Lerp(p3, 1.0/3.0), p0.Lerp(p3, 2.0/3.0), p3}, nil
	case Quadratic:
		return p.quadSegment(seg).Raise(), nil
	default:
		w := p.width(seg)
		return CubicBez{
			p0,
			Pt(p0.X+w/3, p.coef(FirstCP, seg)),
			Pt(p0.X+2*w/3, p.coef(SecondCP, seg)),
			p3,
		}, nil
	}
}

func (p *BPoly) quadSegment(seg int) QuadBez {
	p0 := Pt(p.x[seg], p.y[seg])
	return QuadBez{p0, Pt(p0.X+0.5*p.width(seg), p.coef(1, seg)), Pt(p.x[seg+1], p.y[seg+1])}
}

// Segments iterates over all segments as cubic Béziers.
func (p *BPoly) Segments() iter.Seq2[int, CubicBez] {
	return func(yield func(int, CubicBez) bool) {
		for seg := range p.SegmentCount() {
			c, _ := p.Segment(seg)
			if !yield(seg, c) {
				return
			}
		}
	}
}

// BoundingBox returns the tight bounding box of the curve in data space.
func (p *BPoly) BoundingBox() Rect {
	var bbox Rect
	for seg := range p.SegmentCount() {
		var b Rect
		if p.degree == Quadratic {
			b = p.quadSegment(seg).BoundingBox()
		} else {
			c, _ := p.Segment(seg)
			b = c.BoundingBox()
		}
		if seg == 0 {
			bbox = b
		} else {
			bbox = bbox.Union(b)
		}
	}
	return bbox
}

// ControlBox returns the bounding box of all knots and control points. It
// encloses the curve and is what an editor needs to keep every handle
// visible.
func (p *BPoly) ControlBox() Rect {
	bbox := NewRectFromPoints(Pt(p.x[0], p.y[0]), Pt(p.x[0], p.y[0]))
	for seg := range p.SegmentCount() {
		for k := range p.Order() {
			pt, _ := p.Point(seg, k)
			bbox = bbox.UnionPoint(pt)
		}
	}
	return bbox
}

// locate returns the segment containing x and the local parameter t. x is
// clamped to the curve's domain. An interior knot belongs to the segment on
// its right.
func (p *BPoly) locate(x float64) (int, float64) {
	n := p.SegmentCount()
	x = min(max(x, p.x[0]), p.x[n])
	seg := sort.Search(len(p.x), func(i int) bool { return p.x[i] > x }) - 1
	seg = min(max(seg, 0), n-1)
	return seg, (x - p.x[seg]) / p.width(seg)
}

// Eval returns the curve's value at time x. Times outside the domain are
// clamped to it.
func (p *BPoly) Eval(x float64) float64 {
	seg, t := p.locate(x)
	return bernstein(p.row(seg), t)
}

// Derivative returns dy/dx at time x, clamped to the domain. At an interior
// knot the derivative of the segment to its right is returned.
func (p *BPoly) Derivative(x float64) float64 {
	seg, t := p.locate(x)
	b := p.row(seg)
	d := make([]float64, len(b)-1)
	for k := range d {
		d[k] = b[k+1] - b[k]
	}
	return float64(p.degree) * bernstein(d, t) / p.width(seg)
}

// DerivativeAtKnot returns the slope at knot i, evaluated on the segment
// to the given side of it.
func (p *BPoly) DerivativeAtKnot(i int, side Side) (float64, error) {
	switch {
	case side == Right && i >= 0 && i < p.SegmentCount():
		c, _ := p.Segment(i)
		return c.Slope(0), nil
	case side == Left && i > 0 && i <= p.SegmentCount():
		c, _ := p.Segment(i - 1)
		return c.Slope(1), nil
	default:
		return 0, fmt.Errorf("%w: knot %d has no segment on that side", ErrOutOfRange, i)
	}
}

// Sample returns n points evenly spaced over the curve's domain, including
// both ends.
func (p *BPoly) Sample(n int) []Point {
	if n < 2 {
		n = 2
	}
	out := make([]Point, n)
	for i := range out {
		x := p.Start() + p.Duration()*float64(i)/float64(n-1)
		out[i] = Pt(x, p.Eval(x))
	}
	return out
}

// Shift returns a copy of p moved by offset along the time axis.
func (p *BPoly) Shift(offset float64) *BPoly {
	q := p.Copy()
	for i := range q.x {
		q.x[i] += offset
	}
	return q
}

// RemoveKnot returns a copy of p without knot i.
//
// Removing an interior knot merges its two segments into one spanning both.
// The merged segment keeps the outer knot values and the outer tangents: its
// control offsets are rescaled by the change in width so that the slopes at
// the outer knots, and therefore C1 continuity with the neighbours, are
// unchanged. The removed knot's value and the inner control points are
// discarded. A quadratic merge keeps the left tangent only. Removing the
// first or the last knot drops the first or the last segment.
func (p *BPoly) RemoveKnot(i int) (*BPoly, error) {
	n := p.SegmentCount()
	if i < 0 || i > n {
		return nil, fmt.Errorf("%w: knot %d of %d", ErrOutOfRange, i, n+1)
	}
	if n <= 1 {
		return nil, fmt.Errorf("%w: cannot remove a knot from a single-segment curve", ErrUnsupportedDegree)
	}
	per := int(p.degree) - 1
	q := &BPoly{degree: p.degree}
	switch i {
	case 0:
		q.x = slices.Clone(p.x[1:])
		q.y = slices.Clone(p.y[1:])
		q.ctrl = slices.Clone(p.ctrl[per:])
	case n:
		q.x = slices.Clone(p.x[:n])
		q.y = slices.Clone(p.y[:n])
		q.ctrl = slices.Clone(p.ctrl[:len(p.ctrl)-per])
	default:
		left, right := i-1, i
		wl, wr := p.width(left), p.width(right)
		w := wl + wr
		q.x = slices.Delete(slices.Clone(p.x), i, i+1)
		q.y = slices.Delete(slices.Clone(p.y), i, i+1)
		merged := make([]float64, per)
		switch p.degree {
		case Cubic:
			y0, y1 := p.y[left], p.y[right+1]
			merged[0] = y0 + (p.coef(FirstCP, left)-y0)*w/wl
			merged[1] = y1 + (p.coef(SecondCP, right)-y1)*w/wr
		case Quadratic:
			y0 := p.y[left]
			merged[0] = y0 + (p.coef(1, left)-y0)*w/wl
		}
		q.ctrl = slices.Concat(p.ctrl[:left*per], merged, p.ctrl[(right+1)*per:])
	}
	return q, nil
}

// InsertKnot returns a copy of p with an additional knot at time x. The
// containing segment is split with de Casteljau's algorithm, so the shape of
// the curve does not change. Inserting at an existing knot returns an
// unchanged copy.
func (p *BPoly) InsertKnot(x float64) (*BPoly, error) {
	if math.IsNaN(x) || x < p.Start() || x > p.End() {
		return nil, fmt.Errorf("%w: %g outside [%g, %g]", ErrOutOfRange, x, p.Start(), p.End())
	}
	if _, found := slices.BinarySearch(p.x, x); found {
		return p.Copy(), nil
	}
	seg, t := p.locate(x)
	var left, right []float64
	if p.degree == Cubic {
		c, _ := p.Segment(seg)
		l, r := c.SplitAt(t)
		left = []float64{l.P0.Y, l.P1.Y, l.P2.Y, l.P3.Y}
		right = []float64{r.P0.Y, r.P1.Y, r.P2.Y, r.P3.Y}
	} else {
		left, right = deCasteljau(p.row(seg), t)
	}

	per := int(p.degree) - 1
	q := &BPoly{degree: p.degree}
	q.x = slices.Insert(slices.Clone(p.x), seg+1, x)
	q.y = slices.Insert(slices.Clone(p.y), seg+1, left[len(left)-1])
	q.ctrl = slices.Concat(
		p.ctrl[:seg*per],
		left[1:len(left)-1],
		right[1:len(right)-1],
		p.ctrl[(seg+1)*per:],
	)
	return q, nil
}

// values returns every knot and control value of p.
func (p *BPoly) values() []float64 {
	return slices.Concat(p.y, p.ctrl)
}

// bernstein evaluates the polynomial with Bernstein coefficients b at t.
func bernstein(b []float64, t float64) float64 {
	left, _ := deCasteljau(b, t)
	return left[len(left)-1]
}

// deCasteljau splits the Bernstein polynomial b at t and returns the
// coefficients of both halves. The last value of left equals the first of
// right and is the polynomial's value at t.
func deCasteljau(b []float64, t float64) (left, right []float64) {
	n := len(b)
	work := slices.Clone(b)
	left = make([]float64, n)
	right = make([]float64, n)
	for level := range n {
		left[level] = work[0]
		right[n-1-level] = work[n-1-level]
		for k := 0; k < n-1-level; k++ {
			work[k] = (1-t)*work[k] + t*work[k+1]
		}
	}
	return left, right
}
