package spline

var _ ParametricCurve = QuadBez{}

type QuadBez struct {
	P0 Point
	P1 Point
	P2 Point
}

func (q QuadBez) BoundingBox() Rect {
	return BoundingBox(q)
}

// Raise raises the order by 1.
//
// Returns a cubic Bézier segment that exactly represents this quadratic.
func (q QuadBez) Raise() CubicBez {
	return CubicBez{
		q.P0,
		q.P0.Translate(q.P1.Sub(q.P0).Mul(2.0 / 3.0)),
		q.P2.Translate(q.P1.Sub(q.P2).Mul(2.0 / 3.0)),
		q.P2,
	}
}

func (q QuadBez) Eval(t float64) Point {
	mt := 1.0 - t
	a := Vec2(q.P0).Mul(mt * mt)
	b := Vec2(q.P1).Mul(mt * 2.0)
	c := Vec2(q.P2).Mul(t)
	d := b.Add(c)
	return Point(a.Add(d.Mul(t)))
}

func (q QuadBez) Start() Point {
	return q.P0
}

func (q QuadBez) End() Point {
	return q.P2
}

func (q QuadBez) Extrema() ([MaxExtrema]float64, int) {
	// Finding the extrema of a quadratic bezier means finding the roots in the
	// quadratic's first derivative, which is a line.

	var out [MaxExtrema]float64
	var outN int
	d0 := q.P1.Sub(q.P0)
	d1 := q.P2.Sub(q.P1)
	dd := d1.Sub(d0)
	if dd.X != 0.0 {
		t := -d0.X / dd.X
		if t > 0.0 && t < 1.0 {
			out[outN] = t
			outN++
		}
	}
	if dd.Y != 0 {
		t := -d0.Y / dd.Y
		if t > 0.0 && t < 1.0 {
			out[outN] = t
			outN++
			if outN == 2 && out[0] > t {
				out[0], out[1] = out[1], out[0]
			}
		}
	}
	return out, outN
}
