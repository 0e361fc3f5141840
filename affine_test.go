package spline

import (
	"math"
	"testing"
)

func assertNear(t *testing.T, p0 Point, p1 Point, epsilon float64) {
	t.Helper()
	if d := p1.Sub(p0); math.Hypot(d.X, d.Y) > epsilon {
		t.Fatalf("got %s, expected %s", p0, p1)
	}
}

func TestAffineBasic(t *testing.T) {
	const epsilon = 1e-9
	p := Pt(3, 4)

	assertNear(t, p.Transform(Scale(2, 2)), Pt(6, 8), epsilon)
	assertNear(t, p.Transform(Translate(Vec(5, 6))), Pt(8, 10), epsilon)
	assertNear(t, p.Transform(Scale(1, -1)), Pt(3, -4), epsilon)
	assertNear(t, p.Transform(Scale(2, 3).ThenTranslate(Vec(1, 1))), Pt(7, 13), epsilon)
}

func TestAffineMul(t *testing.T) {
	const epsilon = 1e-9
	a1 := Affine{1, 2, 3, 4, 5, 6}
	a2 := Affine{0.1, 1.2, 2.3, 3.4, 4.5, 5.6}

	px := Pt(1, 0)
	py := Pt(0, 1)
	pxy := Pt(1, 1)

	assertNear(t, px.Transform(a2).Transform(a1), px.Transform(a1.Mul(a2)), epsilon)
	assertNear(t, py.Transform(a2).Transform(a1), py.Transform(a1.Mul(a2)), epsilon)
	assertNear(t, pxy.Transform(a2).Transform(a1), pxy.Transform(a1.Mul(a2)), epsilon)
}

func TestAffineInvert(t *testing.T) {
	const epsilon = 1e-9
	a := Affine{0.1, 1.2, 2.3, 3.4, 4.5, 5.6}
	aInv := a.Invert()

	px := Pt(1, 0)
	py := Pt(0, 1)
	pxy := Pt(1, 1)

	assertNear(t, px.Transform(aInv).Transform(a), px, epsilon)
	assertNear(t, py.Transform(aInv).Transform(a), py, epsilon)
	assertNear(t, pxy.Transform(aInv).Transform(a), pxy, epsilon)
	assertNear(t, px.Transform(a).Transform(aInv), px, epsilon)
	assertNear(t, py.Transform(a).Transform(aInv), py, epsilon)
	assertNear(t, pxy.Transform(a).Transform(aInv), pxy, epsilon)
}

func TestMapRect(t *testing.T) {
	const epsilon = 1e-9
	from := Rect{0, -1, 2, 1}
	to := Rect{10, 10, 210, 110}
	aff := MapRect(from, to)

	// Larger values end up at the top of the image.
	assertNear(t, Pt(0, 1).Transform(aff), Pt(10, 10), epsilon)
	assertNear(t, Pt(2, -1).Transform(aff), Pt(210, 110), epsilon)
	assertNear(t, Pt(1, 0).Transform(aff), Pt(110, 60), epsilon)

	// Round trip from image space back to data space.
	assertNear(t, Pt(110, 60).Transform(aff.Invert()), Pt(1, 0), epsilon)

	// Screen deltas map to data deltas without translation.
	d := aff.Invert().TransformVec(Vec(1, 1))
	assertClose(t, d.X, 0.01, epsilon)
	assertClose(t, d.Y, -0.02, epsilon)
}

func TestMapRectDegenerate(t *testing.T) {
	aff := MapRect(Rect{0, 5, 1, 5}, Rect{0, 0, 100, 100})
	if aff.IsNaN() {
		t.Fatalf("flat data range produced %v", aff)
	}
}
