package spline

import "math"

// Affine describes an affine transform via coefficients.
//
// If the coefficients are (a, b, c, d, e, f), then the resulting
// transformation represents this augmented matrix:
//
//	| a c e |
//	| b d f |
//	| 0 0 1 |
//
// (A * B) * v == A * (B * v).
type Affine struct {
	N0, N1, N2, N3, N4, N5 float64
}

// Scale creates an affine transform representing non-uniform scaling with
// different scale values for x and y
func Scale(x, y float64) Affine {
	return Affine{x, 0, 0, y, 0, 0}
}

// Translate creates an affine transform representing translation.
func Translate(v Vec2) Affine {
	return Affine{1, 0, 0, 1, v.X, v.Y}
}

func (aff Affine) Mul(o Affine) Affine {
	return Affine{
		aff.N0*o.N0 + aff.N2*o.N1,
		aff.N1*o.N0 + aff.N3*o.N1,
		aff.N0*o.N2 + aff.N2*o.N3,
		aff.N1*o.N2 + aff.N3*o.N3,
		aff.N0*o.N4 + aff.N2*o.N5 + aff.N4,
		aff.N1*o.N4 + aff.N3*o.N5 + aff.N5,
	}
}

// ThenTranslate creates aff followed by a translation of v.
//
// Equivalent to "Translate(v) * aff"
func (aff Affine) ThenTranslate(v Vec2) Affine {
	aff.N4 += v.X
	aff.N5 += v.Y
	return aff
}

// MapRect returns the transform that takes the data rectangle from onto the
// image rectangle to, flipping the y axis so that larger values end up at the
// top. Degenerate extents of from are treated as one unit wide.
func MapRect(from, to Rect) Affine {
	w, h := from.Width(), from.Height()
	if w == 0 {
		w = 1
	}
	if h == 0 {
		h = 1
	}
	// x' = to.X0 + (x - from.X0) * sx
	// y' = to.Y1 - (y - from.Y0) * sy
	return Scale(to.Width()/w, -to.Height()/h).
		Mul(Translate(Vec(-from.X0, -from.Y0))).
		ThenTranslate(Vec(to.X0, to.Y1))
}

// Determinant computes the determinant.
func (aff Affine) Determinant() float64 {
	return aff.N0*aff.N3 - aff.N1*aff.N2
}

// Invert computes the inverse transform.
//
// Produces NaN values when the determinant is zero.
func (aff Affine) Invert() Affine {
	invDet := 1 / aff.Determinant()
	return Affine{
		+invDet * aff.N3,
		-invDet * aff.N1,
		-invDet * aff.N2,
		+invDet * aff.N0,
		+invDet * (aff.N2*aff.N5 - aff.N3*aff.N4),
		+invDet * (aff.N1*aff.N4 - aff.N0*aff.N5),
	}
}

// TransformVec applies the linear part of aff to v, ignoring translation.
// Screen-space drag deltas are converted to data-space deltas this way.
func (aff Affine) TransformVec(v Vec2) Vec2 {
	return Vec2{
		X: aff.N0*v.X + aff.N2*v.Y,
		Y: aff.N1*v.X + aff.N3*v.Y,
	}
}

func (aff Affine) IsNaN() bool {
	return math.IsNaN(aff.N0) ||
		math.IsNaN(aff.N1) ||
		math.IsNaN(aff.N2) ||
		math.IsNaN(aff.N3) ||
		math.IsNaN(aff.N4) ||
		math.IsNaN(aff.N5)
}
