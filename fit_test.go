package spline

import (
	"errors"
	"fmt"
	"math"
	"testing"
)

func checkC1(t *testing.T, p *BPoly) {
	t.Helper()
	for i := 1; i < p.SegmentCount(); i++ {
		left, _ := p.DerivativeAtKnot(i, Left)
		right, _ := p.DerivativeAtKnot(i, Right)
		if math.Abs(left-right) > 1e-9 {
			t.Errorf("slope jumps at knot %d: %g != %g", i, left, right)
		}
	}
}

func TestFitLinear(t *testing.T) {
	var samples []Point
	for i := range 21 {
		x := float64(i) / 10
		samples = append(samples, Pt(x, 3*x-1))
	}
	p, err := Fit(samples, FitOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if p.Degree() != Cubic {
		t.Errorf("got %s curve, want cubic", p.Degree())
	}
	if p.KnotCount() != 2 {
		t.Errorf("got %d knots for a straight line, want 2", p.KnotCount())
	}
	for _, pt := range samples {
		assertClose(t, p.Eval(pt.X), pt.Y, 1e-12)
	}
}

func TestFitSine(t *testing.T) {
	var samples []Point
	for i := range 201 {
		x := float64(i) / 200 * 2 * math.Pi
		samples = append(samples, Pt(x, math.Sin(x)))
	}
	for _, tol := range []float64{1e-1, 1e-2, 1e-3} {
		t.Run(fmt.Sprint(tol), func(t *testing.T) {
			p, err := Fit(samples, FitOptions{Tolerance: tol})
			if err != nil {
				t.Fatal(err)
			}
			checkC1(t, p)
			diff(t, 0.0, p.Start())
			diff(t, 2*math.Pi, p.End())
			for _, pt := range samples {
				// The knots are within tolerance of a linear
				// interpolant; the cubic does at least as well as that
				// up to the curvature of a sine.
				if d := math.Abs(p.Eval(pt.X) - pt.Y); d > 2*tol {
					t.Fatalf("sample %s off by %g", pt, d)
				}
			}
		})
	}
}

func TestFitMaxKnots(t *testing.T) {
	var samples []Point
	for i := range 100 {
		x := float64(i)
		samples = append(samples, Pt(x, math.Sin(x)))
	}
	p, err := Fit(samples, FitOptions{Tolerance: 1e-9, MaxKnots: 5})
	if err != nil {
		t.Fatal(err)
	}
	if p.KnotCount() != 5 {
		t.Errorf("got %d knots, want 5", p.KnotCount())
	}
}

func TestFitMonotone(t *testing.T) {
	// A step: the fit must not overshoot between the samples.
	samples := []Point{Pt(0, 0), Pt(1, 0), Pt(2, 0), Pt(3, 1), Pt(4, 1), Pt(5, 1)}
	p, err := Fit(samples, FitOptions{Tolerance: 1e-6})
	if err != nil {
		t.Fatal(err)
	}
	for _, pt := range p.Sample(200) {
		if pt.Y < -1e-12 || pt.Y > 1+1e-12 {
			t.Fatalf("overshoot at %s", pt)
		}
	}
}

func TestFitInputCleanup(t *testing.T) {
	samples := []Point{
		Pt(2, 4),
		Pt(math.NaN(), 1),
		Pt(0, 0),
		Pt(1, 2),
		Pt(1, 100),
	}
	p, err := Fit(samples, FitOptions{})
	if err != nil {
		t.Fatal(err)
	}
	diff(t, []float64{0, 2}, p.Knots())
	assertClose(t, p.Eval(1), 2, 1e-12)

	_, err = Fit([]Point{Pt(1, 1), Pt(1, 2)}, FitOptions{})
	if !errors.Is(err, ErrTooFewSamples) {
		t.Errorf("got %v, want ErrTooFewSamples", err)
	}
}
