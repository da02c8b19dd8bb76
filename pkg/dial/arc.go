package dial

import (
	"math"
)

// DefaultArcSamples is the number of steps used for the daylight wedge when
// the caller asks for none.
const DefaultArcSamples = 50

// BuildArc samples the daylight wedge from the sunrise angle clockwise to the
// sunset angle. It returns samples+1 angles in [0, 360); the first is rise
// and the last is set.
//
// When set < rise the wedge crosses the 0°/360° seam. The steps are then
// split between rise→360 and 0→set, each side getting at least one, and the
// seam sample is emitted once so that walking the result never steps
// backwards modulo 360.
func BuildArc(rise, set float64, samples int) []float64 {
	if samples < 1 {
		samples = DefaultArcSamples
	}
	rise, set = Normalize(rise), Normalize(set)

	if set >= rise {
		return interpolate(make([]float64, 0, samples+1), rise, set, samples, true)
	}

	samples = max(samples, 2)
	before := samples / 2
	after := samples - before
	arc := make([]float64, 0, samples+1)
	arc = interpolate(arc, rise, 360, before, true)
	return interpolate(arc, 0, set, after, false)
}

// interpolate appends n steps from lo to hi, ending exactly on hi. The lo
// sample is included only if withStart is set.
func interpolate(arc []float64, lo, hi float64, n int, withStart bool) []float64 {
	first := 1
	if withStart {
		first = 0
	}
	for i := first; i <= n; i++ {
		a := hi
		if i < n {
			a = lo + (hi-lo)*float64(i)/float64(n)
		}
		arc = append(arc, Normalize(a))
	}
	return arc
}

// Point is a position in screen coordinates, y growing downwards.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PointAt projects a dial angle onto a circle of radius r around (cx, cy).
func PointAt(angle, cx, cy, r float64) Point {
	rad := angle * math.Pi / 180
	return Point{
		X: cx + r*math.Cos(rad),
		Y: cy + r*math.Sin(rad),
	}
}

// Points projects every angle with PointAt.
func Points(angles []float64, cx, cy, r float64) []Point {
	pts := make([]Point, len(angles))
	for i, a := range angles {
		pts[i] = PointAt(a, cx, cy, r)
	}
	return pts
}
