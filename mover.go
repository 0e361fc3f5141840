package spline

import (
	"fmt"
	"math"
)

// DefaultEpsilon is the minimum distance the Mover keeps between a dragged
// knot and its neighbours.
const DefaultEpsilon = 0.1

// Mover drags knots and control points of a cubic curve while keeping it
// continuous.
//
// A Mover pairs an unchanging original curve with a working copy of the same
// shape. Every move is expressed as a delta relative to the original and
// rewrites the affected coefficients of the working copy from scratch, so
// repeating a move with the same delta is a no-op and intermediate moves of
// a gesture never accumulate rounding errors.
type Mover struct {
	orig    *BPoly
	working *BPoly

	// Epsilon is the minimum knot spacing. Zero means DefaultEpsilon.
	Epsilon float64
}

// NewMover returns a Mover that edits working relative to orig. Both curves
// must be cubic and have the same number of segments.
func NewMover(orig, working *BPoly) (*Mover, error) {
	if orig.Degree() != Cubic || working.Degree() != Cubic {
		return nil, fmt.Errorf("%w: mover needs a cubic curve, got %s", ErrUnsupportedDegree, orig.Degree())
	}
	if orig.SegmentCount() != working.SegmentCount() {
		return nil, fmt.Errorf("%w: original has %d segments, working copy %d",
			ErrShape, orig.SegmentCount(), working.SegmentCount())
	}
	return &Mover{orig: orig, working: working}, nil
}

func (m *Mover) epsilon() float64 {
	if m.Epsilon > 0 {
		return m.Epsilon
	}
	return DefaultEpsilon
}

// KnotBounds returns the interval knot i may be moved to. A neighbour
// bounds the knot both at its original position and at its position in the
// working copy, so knots moved in the same gesture never cross. The bounds
// are infinite at the ends of the curve.
func (m *Mover) KnotBounds(i int) (lo, hi float64, err error) {
	n := m.orig.SegmentCount()
	if i < 0 || i > n {
		return 0, 0, fmt.Errorf("%w: knot %d of %d", ErrOutOfRange, i, n+1)
	}
	lo, hi = math.Inf(-1), math.Inf(1)
	if i > 0 {
		lo = max(m.orig.x[i-1], m.working.x[i-1]) + m.epsilon()
	}
	if i < n {
		hi = min(m.orig.x[i+1], m.working.x[i+1]) - m.epsilon()
	}
	return lo, hi, nil
}

func checkDelta(delta Vec2) error {
	if delta.IsNaN() || delta.IsInf() {
		return fmt.Errorf("%w: delta %s", ErrNonFinite, delta)
	}
	return nil
}

// MoveKnot moves knot i by delta. The horizontal part is clipped so the knot
// stays at least Epsilon away from both neighbours. The vertical part moves
// the knot value shared by the two adjacent segments. The adjacent control
// points follow the knot: with c1 the leading control point of the next
// segment moves and the trailing control point of the previous segment is
// rebalanced to keep the slope continuous; without c1 both move freely. The
// last knot only carries the trailing control point of the last segment.
func (m *Mover) MoveKnot(i int, delta Vec2, c1 bool) error {
	n := m.orig.SegmentCount()
	lo, hi, err := m.KnotBounds(i)
	if err != nil {
		return err
	}
	if err := checkDelta(delta); err != nil {
		return err
	}

	// Neighbours closer than 2·Epsilon leave no room; the knot stays where
	// it is horizontally.
	if lo <= hi {
		m.working.x[i] = clip(m.orig.x[i]+delta.X, lo, hi)
	}
	m.working.y[i] = m.orig.y[i] + delta.Y

	switch {
	case i == n:
		return m.MoveControlPoint(n-1, SecondCP, delta, false)
	case c1:
		return m.MoveControlPoint(i, FirstCP, delta, true)
	default:
		if err := m.MoveControlPoint(i, FirstCP, delta, false); err != nil {
			return err
		}
		if i > 0 {
			return m.MoveControlPoint(i-1, SecondCP, delta, false)
		}
		return nil
	}
}

// MoveControlPoint moves control point k (FirstCP or SecondCP) of segment seg
// vertically by delta.Y. Control points never move horizontally.
//
// With c1 the coupled control point on the other side of the shared knot is
// recomputed so that the first derivative matches across the knot. The first
// control point of the curve and the last one have no coupled neighbour.
func (m *Mover) MoveControlPoint(seg, k int, delta Vec2, c1 bool) error {
	n := m.orig.SegmentCount()
	if seg < 0 || seg >= n || (k != FirstCP && k != SecondCP) {
		return fmt.Errorf("%w: control point (%d, %d) of %d segments", ErrOutOfRange, seg, k, n)
	}
	if err := checkDelta(delta); err != nil {
		return err
	}
	w := m.working
	w.setCoef(k, seg, m.orig.coef(k, seg)+delta.Y)

	leftMost := seg == 0 && k == FirstCP
	rightMost := seg == n-1 && k == SecondCP
	if leftMost || rightMost || !c1 {
		return nil
	}

	switch k {
	case FirstCP:
		y := w.y[seg]
		q, err := w.WidthRatio(seg - 1)
		if err != nil {
			return err
		}
		dy := w.coef(FirstCP, seg) - y
		w.setCoef(SecondCP, seg-1, y-dy/q)
	case SecondCP:
		y := w.y[seg+1]
		q, err := w.WidthRatio(seg)
		if err != nil {
			return err
		}
		dy := w.coef(SecondCP, seg) - y
		w.setCoef(FirstCP, seg+1, y-q*dy)
	}
	return nil
}

// PositionKnot moves knot i to pos, expressed as a delta from the knot's
// original position.
func (m *Mover) PositionKnot(i int, pos Point, c1 bool) error {
	orig, err := m.orig.KnotPoint(i)
	if err != nil {
		return err
	}
	return m.MoveKnot(i, pos.Sub(orig), c1)
}

// PositionControlPoint sets the value of control point k of segment seg to
// y, expressed as a delta from its original value.
func (m *Mover) PositionControlPoint(seg, k int, y float64, c1 bool) error {
	orig, err := m.orig.Point(seg, k)
	if err != nil {
		return err
	}
	return m.MoveControlPoint(seg, k, Vec(0, y-orig.Y), c1)
}

func clip(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
