package spline

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestCubicBezDeriv(t *testing.T) {
	// y = x^2
	c := CubicBez{
		Pt(0.0, 0.0),
		Pt(1.0/3.0, 0.0),
		Pt(2.0/3.0, 1.0/3.0),
		Pt(1.0, 1.0),
	}
	deriv := c.Differentiate()

	const n = 10
	const delta = 1e-6
	for i := range n + 1 {
		ts := float64(i) / float64(n)
		p := c.Eval(ts)
		p1 := c.Eval(ts + delta)
		dApprox := p1.Sub(p).Mul(1.0 / delta)
		d := Vec2(deriv.Eval(ts))
		e := d.Sub(dApprox)
		if l := math.Hypot(e.X, e.Y); l >= delta*2 {
			t.Errorf("got difference of %g, want at most %g", l, delta*2)
		}
		// dy/dx of x² is 2x.
		if s := c.Slope(ts); math.Abs(s-2*p.X) > 1e-9 {
			t.Errorf("got slope %g at x=%g, want %g", s, p.X, 2*p.X)
		}
	}
}

func TestCubicBezSplitAt(t *testing.T) {
	c := CubicBez{Pt(0, 0), Pt(1, 3), Pt(2, -1), Pt(3, 2)}
	for _, split := range []float64{0.25, 0.5, 0.9} {
		left, right := c.SplitAt(split)
		assertNear(t, left.End(), c.Eval(split), 1e-12)
		assertNear(t, right.Start(), c.Eval(split), 1e-12)
		const n = 8
		for i := range n + 1 {
			ts := float64(i) / n
			assertNear(t, left.Eval(ts), c.Eval(ts*split), 1e-12)
			assertNear(t, right.Eval(ts), c.Eval(split+ts*(1-split)), 1e-12)
		}
	}
}

func TestCubicBezExtrema(t *testing.T) {
	// y = x^2
	q := CubicBez{Pt(0.0, 0.0), Pt(0.0, 1.0), Pt(1.0, 1.0), Pt(1.0, 0.0)}
	extrema, n := q.Extrema()
	if n != 1 {
		t.Fatalf("got %d extrema, expected 1", n)
	}
	if want := 0.5; math.Abs(extrema[0]-want) > 1e-6 {
		t.Errorf("got extrema %v, want %v", extrema[0], want)
	}

	q = CubicBez{Pt(0.4, 0.5), Pt(0.0, 1.0), Pt(1.0, 0.0), Pt(0.5, 0.4)}
	extrema, n = q.Extrema()
	if n != 4 {
		t.Fatalf("got %d extrema, expected 4", n)
	}
}

func TestCubicBezBoundingBox(t *testing.T) {
	q := CubicBez{Pt(0.0, 0.0), Pt(0.0, 1.0), Pt(1.0, 1.0), Pt(1.0, 0.0)}
	diff(t, Rect{0, 0, 1, 0.75}, q.BoundingBox(), cmpopts.EquateApprox(0, 1e-12))
}
