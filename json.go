package spline

import (
	"encoding/json"
	"fmt"
	"math"
)

// curveJSON is the wire form of a curve. Coefficients are stored row-major:
// degree+1 rows, one column per segment.
type curveJSON struct {
	Type         string      `json:"type"`
	Degree       *int        `json:"degree,omitempty"`
	Extrapolate  bool        `json:"extrapolate"`
	Axis         int         `json:"axis"`
	Knots        []float64   `json:"knots"`
	Coefficients [][]float64 `json:"coefficients"`
}

const (
	typeBPoly = "BPoly"
	typePPoly = "PPoly"
)

func (p *BPoly) MarshalJSON() ([]byte, error) {
	d := int(p.degree)
	return json.Marshal(curveJSON{
		Type:         typeBPoly,
		Degree:       &d,
		Knots:        p.x,
		Coefficients: p.Coefficients(),
	})
}

// UnmarshalJSON decodes a curve. Curves stored in power basis ("PPoly") are
// converted to Bernstein form.
func (p *BPoly) UnmarshalJSON(data []byte) error {
	var v curveJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	degree := Degree(len(v.Coefficients) - 1)
	if v.Degree != nil && Degree(*v.Degree) != degree {
		return fmt.Errorf("%w: declared degree %d but %d coefficient rows", ErrShape, *v.Degree, len(v.Coefficients))
	}

	var (
		q   *BPoly
		err error
	)
	switch v.Type {
	case typeBPoly, "":
		q, err = New(degree, v.Knots, v.Coefficients)
	case typePPoly:
		q, err = FromPowerBasis(v.Knots, v.Coefficients)
	default:
		return fmt.Errorf("unknown curve type %q", v.Type)
	}
	if err != nil {
		return err
	}
	*p = *q
	return nil
}

// FromPowerBasis converts a piecewise polynomial in power basis to Bernstein
// form. c[m][i] is the coefficient of (x−x[i])^(k−m) on segment i, with k the
// degree, highest power first. Zero-width segments from duplicate knots are
// dropped.
func FromPowerBasis(x []float64, c [][]float64) (*BPoly, error) {
	k := len(c) - 1
	if !Degree(k).Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedDegree, k)
	}
	var (
		knots  []float64
		bernst = make([][]float64, k+1)
	)
	for seg := 0; seg+1 < len(x); seg++ {
		for m := range c {
			if seg >= len(c[m]) {
				return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrShape, m, len(c[m]), len(x)-1)
			}
		}
		w := x[seg+1] - x[seg]
		if w == 0 {
			continue
		}
		if len(knots) == 0 {
			knots = append(knots, x[seg])
		}
		knots = append(knots, x[seg+1])

		// Coefficients of t^j with t = (x−x0)/w.
		a := make([]float64, k+1)
		for j := range a {
			a[j] = c[k-j][seg] * math.Pow(w, float64(j))
		}
		for i := range k + 1 {
			var b float64
			for j := 0; j <= i; j++ {
				b += binomial(i, j) / binomial(k, j) * a[j]
			}
			bernst[i] = append(bernst[i], b)
		}
	}
	if len(knots) < 2 {
		return nil, fmt.Errorf("%w: no segment of positive width", ErrShape)
	}
	return New(Degree(k), knots, bernst)
}

func binomial(n, k int) float64 {
	r := 1.0
	for i := 1; i <= k; i++ {
		r = r * float64(n-k+i) / float64(i)
	}
	return r
}
