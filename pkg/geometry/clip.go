package geometry

import (
	"math"
)

// parallelEps is the determinant magnitude below which two segments are
// treated as parallel (no intersection).
const parallelEps = 1e-10

// touchEps collapses clipped segments shorter than this to "not visible":
// a segment grazing the rectangle at a single point has nothing to cut.
const touchEps = 1e-9

// SegmentIntersection returns the intersection point of two segments, if any.
// Parallel segments never intersect, including the collinear-overlap case.
func SegmentIntersection(s, t LineSegment) (Point, bool) {
	x1, y1, x2, y2 := s.A.X, s.A.Y, s.B.X, s.B.Y
	x3, y3, x4, y4 := t.A.X, t.A.Y, t.B.X, t.B.Y

	denom := (x1-x2)*(y3-y4) - (y1-y2)*(x3-x4)
	if math.Abs(denom) < parallelEps {
		return Point{}, false
	}

	u := ((x1-x3)*(y3-y4) - (y1-y3)*(x3-x4)) / denom
	v := -((x1-x2)*(y1-y3) - (y1-y2)*(x1-x3)) / denom
	if u < 0 || u > 1 || v < 0 || v > 1 {
		return Point{}, false
	}

	return Point{
		X: x1 + u*(x2-x1),
		Y: y1 + u*(y2-y1),
	}, true
}

func ccw(a, b, c Point) bool {
	return (c.Y-a.Y)*(b.X-a.X) > (b.Y-a.Y)*(c.X-a.X)
}

// SegmentsCross reports whether two segments properly cross each other.
func SegmentsCross(s, t LineSegment) bool {
	return ccw(s.A, t.A, t.B) != ccw(s.B, t.A, t.B) &&
		ccw(s.A, s.B, t.A) != ccw(s.A, s.B, t.B)
}

// CrossesBoundary reports whether the segment crosses any edge of the
// rectangle.
func (r Rect) CrossesBoundary(s LineSegment) bool {
	for _, edge := range r.Edges() {
		if SegmentsCross(s, edge) {
			return true
		}
	}
	return false
}

// boundaryIntersectionNearest intersects the segment with all four edges and
// returns the intersection nearest to target, the original (unclipped) endpoint
// being replaced, so the visible remainder approximates the true overlap.
func (r Rect) boundaryIntersectionNearest(s LineSegment, target Point) (Point, bool) {
	best := Point{}
	bestDist := math.Inf(1)
	found := false
	for _, edge := range r.Edges() {
		p, ok := SegmentIntersection(s, edge)
		if !ok {
			continue
		}
		d := p.Distance(target)
		if d < bestDist {
			best = p
			bestDist = d
			found = true
		}
	}
	return best, found
}

// ClipSegment clips the segment to the rectangle. The second return value is
// false when no part of the segment is visible. Clipping is total: degenerate
// results (a single grazing point, parallel near-misses) report "not visible"
// rather than failing.
func (r Rect) ClipSegment(s LineSegment) (LineSegment, bool) {
	aIn := r.Contains(s.A)
	bIn := r.Contains(s.B)

	if aIn && bIn {
		return s, true
	}

	if !aIn && !bIn && !r.CrossesBoundary(s) {
		return LineSegment{}, false
	}

	out := s
	if !aIn {
		p, ok := r.boundaryIntersectionNearest(s, s.A)
		if !ok {
			return LineSegment{}, false
		}
		out.A = p
	}
	if !bIn {
		p, ok := r.boundaryIntersectionNearest(s, s.B)
		if !ok {
			return LineSegment{}, false
		}
		out.B = p
	}

	if out.Length() < touchEps {
		return LineSegment{}, false
	}
	return out, true
}
