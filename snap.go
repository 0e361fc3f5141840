package spline

import "math"

// DefaultSnapThreshold is the distance within which a dragged value is
// attracted to an existing coefficient value.
const DefaultSnapThreshold = 0.001

// SnapToValue returns the grid value closest to value if it lies within
// threshold, and value otherwise. Grid values equal to value are not
// candidates.
func SnapToValue(value float64, grid []float64, threshold float64) float64 {
	ret := value
	dist := math.Inf(1)
	for _, g := range grid {
		if g == value {
			continue
		}
		if d := math.Abs(value - g); d < threshold && d < dist {
			dist = d
			ret = g
		}
	}
	return ret
}
