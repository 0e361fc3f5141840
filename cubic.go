package spline

import "sort"

var _ ParametricCurve = CubicBez{}

// CubicBez is one cubic Bézier segment of a curve in data space.
type CubicBez struct {
	P0 Point
	P1 Point
	P2 Point
	P3 Point
}

func (c CubicBez) BoundingBox() Rect {
	return BoundingBox(c)
}

func (c CubicBez) Eval(t float64) Point {
	mt := 1.0 - t
	a := Vec2(c.P0).Mul(mt * mt * mt)
	b := Vec2(c.P1).Mul(mt * mt * 3.0)
	cc := Vec2(c.P2).Mul(mt * 3.0)
	d := Vec2(c.P3)
	v := a.Add(b.Add(cc.Add(d.Mul(t)).Mul(t)).Mul(t))
	return Point(v)
}

// SplitAt splits the cubic at parameter t using de Casteljau. The two halves
// trace exactly the same curve as c.
func (c CubicBez) SplitAt(t float64) (CubicBez, CubicBez) {
	p01 := c.P0.Lerp(c.P1, t)
	p12 := c.P1.Lerp(c.P2, t)
	p23 := c.P2.Lerp(c.P3, t)
	p012 := p01.Lerp(p12, t)
	p123 := p12.Lerp(p23, t)
	pm := p012.Lerp(p123, t)
	return CubicBez{c.P0, p01, p012, pm}, CubicBez{pm, p123, p23, c.P3}
}

func (c CubicBez) Start() Point {
	return c.P0
}

func (c CubicBez) End() Point {
	return c.P3
}

// Differentiate returns the hodograph of c, a quadratic Bézier whose points
// are derivative vectors with respect to t.
func (c CubicBez) Differentiate() QuadBez {
	return QuadBez{
		Point(c.P1.Sub(c.P0).Mul(3)),
		Point(c.P2.Sub(c.P1).Mul(3)),
		Point(c.P3.Sub(c.P2).Mul(3)),
	}
}

// Slope returns dy/dx at parameter t. It is infinite where the segment is
// vertical.
func (c CubicBez) Slope(t float64) float64 {
	d := Vec2(c.Differentiate().Eval(t))
	return d.Y / d.X
}

func (c CubicBez) Extrema() ([MaxExtrema]float64, int) {
	// two calls to oneCoord, up to 2 roots per call, for a total of 4 possible values.
	var out [MaxExtrema]float64
	var outN int
	oneCoord := func(d0, d1, d2 float64) {
		a := d0 - 2*d1 + d2
		b := 2 * (d1 - d0)
		c := d0
		roots, n := SolveQuadratic(c, b, a)
		for _, t := range roots[:n] {
			if t > 0.0 && t < 1.0 {
				out[outN] = t
				outN++
			}
		}
	}

	d0 := c.P1.Sub(c.P0)
	d1 := c.P2.Sub(c.P1)
	d2 := c.P3.Sub(c.P2)
	oneCoord(d0.X, d1.X, d2.X)
	oneCoord(d0.Y, d1.Y, d2.Y)
	sort.Float64s(out[:outN])
	return out, outN
}
