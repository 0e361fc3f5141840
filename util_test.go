package spline

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func diff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Error(d)
	}
}

func assertClose(t *testing.T, got, want, epsilon float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("got %v, want %v (±%g)", got, want, epsilon)
	}
}

// threeKnots returns the cubic through (0,0), (1,0), (2,0) with every
// control value zero.
func threeKnots(t *testing.T) *BPoly {
	t.Helper()
	p, err := Flat(Cubic, []float64{0, 1, 2}, 0)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func mustNew(t *testing.T, degree Degree, x []float64, c [][]float64) *BPoly {
	t.Helper()
	p, err := New(degree, x, c)
	if err != nil {
		t.Fatal(err)
	}
	return p
}
