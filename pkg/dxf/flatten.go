package dxf

import (
	"fmt"
	"math"

	"dxflaser/pkg/cfg"
	"dxflaser/pkg/geometry"
)

// appendBulgeArc appends the arc described by a polyline bulge value,
// flattened into chords, to dst. The arc runs from p1 to p2; p1 is assumed to
// be in dst already, p2 is appended last. A positive bulge sweeps
// counter-clockwise.
func appendBulgeArc(dst []geometry.Point, p1, p2 geometry.Point, bulge float64) []geometry.Point {
	theta := 4 * math.Atan(bulge)
	chord := p1.Distance(p2)
	if chord < 1e-12 || math.Abs(theta) < 1e-12 {
		return append(dst, p2)
	}

	radius := chord / (2 * math.Sin(math.Abs(theta)/2))

	// Center sits on the chord's left perpendicular for a CCW bulge, at the
	// signed apothem distance. Bulges above 1 (major arcs) flip the sign via
	// the tangent.
	mid := geometry.Point{X: (p1.X + p2.X) / 2, Y: (p1.Y + p2.Y) / 2}
	d := (chord / 2) / math.Tan(theta/2)
	perp := geometry.Point{X: -(p2.Y - p1.Y) / chord, Y: (p2.X - p1.X) / chord}
	center := geometry.Point{X: mid.X + perp.X*d, Y: mid.Y + perp.Y*d}

	start := math.Atan2(p1.Y-center.Y, p1.X-center.X)
	step := maxChordStep(radius)
	n := int(math.Ceil(math.Abs(theta) / step))
	if n < 1 {
		n = 1
	}
	for i := 1; i < n; i++ {
		a := start + theta*float64(i)/float64(n)
		dst = append(dst, geometry.Point{
			X: center.X + radius*math.Cos(a),
			Y: center.Y + radius*math.Sin(a),
		})
	}
	return append(dst, p2)
}

// maxChordStep returns the largest angular step, in radians, whose chord
// deviates from a circle of the given radius by no more than ChordTolerance.
func maxChordStep(radius float64) float64 {
	if radius <= cfg.ChordTolerance {
		return math.Pi / 2
	}
	return 2 * math.Acos(1-cfg.ChordTolerance/radius)
}

// flattenParametric samples a parametric curve into a chain of points by
// recursive subdivision: an interval splits while its midpoint strays from
// the chord by more than ChordTolerance. Both endpoints are included.
func flattenParametric(eval func(t float64) geometry.Point, t0, t1 float64) []geometry.Point {
	out := []geometry.Point{eval(t0)}
	out = subdivide(out, eval, t0, t1, 0)
	return out
}

func subdivide(dst []geometry.Point, eval func(t float64) geometry.Point, t0, t1 float64, depth int) []geometry.Point {
	a := eval(t0)
	b := eval(t1)
	tm := (t0 + t1) / 2
	m := eval(tm)

	if depth >= 24 || chordDeviation(a, b, m) <= cfg.ChordTolerance {
		return append(dst, b)
	}
	dst = subdivide(dst, eval, t0, tm, depth+1)
	return subdivide(dst, eval, tm, t1, depth+1)
}

// chordDeviation is the distance from m to the segment a-b.
func chordDeviation(a, b, m geometry.Point) float64 {
	ab := b.Minus(a)
	length := ab.Magnitude()
	if length < 1e-12 {
		return m.Distance(a)
	}
	return math.Abs(ab.CrossProductZ(m.Minus(a))) / length
}

// ellipsePoint evaluates the DXF ellipse parameterization: center plus the
// major-axis vector scaled by cos(t) plus its left perpendicular scaled by
// ratio*sin(t).
func ellipsePoint(center, major geometry.Point, ratio, t float64) geometry.Point {
	cos, sin := math.Cos(t), math.Sin(t)
	return geometry.Point{
		X: center.X + major.X*cos - major.Y*ratio*sin,
		Y: center.Y + major.Y*cos + major.X*ratio*sin,
	}
}

// splinePoint evaluates a B-spline by de Boor's algorithm at parameter t.
// knots must be non-decreasing with len(knots) == len(ctrl) + degree + 1.
func splinePoint(degree int, knots []float64, ctrl []geometry.Point, t float64) geometry.Point {
	n := len(ctrl)

	// Clamp into the valid domain, then locate the knot span.
	lo, hi := knots[degree], knots[n]
	if t < lo {
		t = lo
	}
	if t > hi {
		t = hi
	}
	k := degree
	for k < n-1 && t >= knots[k+1] {
		k++
	}

	d := make([]geometry.Point, degree+1)
	copy(d, ctrl[k-degree:k+1])
	for r := 1; r <= degree; r++ {
		for j := degree; j >= r; j-- {
			i := k - degree + j
			denom := knots[i+degree-r+1] - knots[i]
			alpha := 0.0
			if denom > 1e-12 {
				alpha = (t - knots[i]) / denom
			}
			d[j] = geometry.Point{
				X: (1-alpha)*d[j-1].X + alpha*d[j].X,
				Y: (1-alpha)*d[j-1].Y + alpha*d[j].Y,
			}
		}
	}
	return d[degree]
}

// flattenSpline converts a B-spline to a point chain. Fit points, when that
// is all the file provides, are connected directly. Missing or short knot
// vectors fall back to a clamped uniform one.
func flattenSpline(degree int, knots []float64, ctrl, fit []geometry.Point) ([]geometry.Point, error) {
	if len(ctrl) == 0 {
		if len(fit) >= 2 {
			return fit, nil
		}
		return nil, fmt.Errorf("spline has no control or fit points")
	}
	if degree < 1 {
		degree = 3
	}
	if degree >= len(ctrl) {
		degree = len(ctrl) - 1
	}
	if degree < 1 {
		return nil, fmt.Errorf("spline has too few control points (%d)", len(ctrl))
	}
	if len(knots) != len(ctrl)+degree+1 {
		knots = clampedUniformKnots(degree, len(ctrl))
	}
	eval := func(t float64) geometry.Point {
		return splinePoint(degree, knots, ctrl, t)
	}
	pts := flattenParametric(eval, knots[degree], knots[len(ctrl)])
	if len(pts) < 2 {
		return nil, fmt.Errorf("spline flattened to a single point")
	}
	return pts, nil
}

func clampedUniformKnots(degree, nCtrl int) []float64 {
	knots := make([]float64, nCtrl+degree+1)
	interior := nCtrl - degree
	for i := range knots {
		switch {
		case i <= degree:
			knots[i] = 0
		case i >= nCtrl:
			knots[i] = float64(interior)
		default:
			knots[i] = float64(i - degree)
		}
	}
	return knots
}
