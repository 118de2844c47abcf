package geometry

import (
	"math"
)

type Point struct {
	X float64
	Y float64
}

type Vector2 = Point

type LineSegment struct {
	A Point
	B Point
}

// Rect is an axis-aligned rectangle. The workspace is a Rect anchored at the
// origin, but nothing here assumes Min is zero.
type Rect struct {
	Min Point
	Max Point
}

type Circle struct {
	Center Point
	Radius float64
}

// Arc is a circular arc swept counter-clockwise from StartDeg to EndDeg.
// EndDeg is always numerically greater than StartDeg (wrapped by +360 when
// the raw data crosses zero).
type Arc struct {
	Center   Point
	Radius   float64
	StartDeg float64
	EndDeg   float64
}

func (a Vector2) Minus(b Vector2) Vector2 {
	return Vector2{
		X: a.X - b.X,
		Y: a.Y - b.Y,
	}
}

func (a Vector2) Add(b Vector2) Vector2 {
	return Vector2{
		X: a.X + b.X,
		Y: a.Y + b.Y,
	}
}

func (v Vector2) Magnitude() float64 {
	return math.Hypot(v.X, v.Y)
}

func (a Vector2) CrossProductZ(b Vector2) float64 {
	return a.X*b.Y - a.Y*b.X
}

// Distance returns the distance between two points.
func (p Point) Distance(other Point) float64 {
	return math.Hypot(p.X-other.X, p.Y-other.Y)
}

// Scale returns the point scaled by the given factor f.
func (p Point) Scale(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f}
}

func (s LineSegment) Length() float64 {
	return s.A.Distance(s.B)
}

// Contains reports whether p lies inside the rectangle, boundary included.
func (r Rect) Contains(p Point) bool {
	return r.Min.X <= p.X && p.X <= r.Max.X && r.Min.Y <= p.Y && p.Y <= r.Max.Y
}

// Edges returns the four boundary segments: bottom, top, left, right.
func (r Rect) Edges() [4]LineSegment {
	return [4]LineSegment{
		{A: Point{X: r.Min.X, Y: r.Min.Y}, B: Point{X: r.Max.X, Y: r.Min.Y}},
		{A: Point{X: r.Min.X, Y: r.Max.Y}, B: Point{X: r.Max.X, Y: r.Max.Y}},
		{A: Point{X: r.Min.X, Y: r.Min.Y}, B: Point{X: r.Min.X, Y: r.Max.Y}},
		{A: Point{X: r.Max.X, Y: r.Min.Y}, B: Point{X: r.Max.X, Y: r.Max.Y}},
	}
}

// OverlapsRect reports whether the two rectangles share any area or boundary.
func (r Rect) OverlapsRect(other Rect) bool {
	return r.Min.X <= other.Max.X && r.Max.X >= other.Min.X &&
		r.Min.Y <= other.Max.Y && r.Max.Y >= other.Min.Y
}

// Bounds returns the bounding square of the circle.
func (c Circle) Bounds() Rect {
	return Rect{
		Min: Point{X: c.Center.X - c.Radius, Y: c.Center.Y - c.Radius},
		Max: Point{X: c.Center.X + c.Radius, Y: c.Center.Y + c.Radius},
	}
}

// PointAt returns the point on the circle at the given angle in degrees,
// measured counter-clockwise from the positive X axis.
func (c Circle) PointAt(deg float64) Point {
	rad := deg * math.Pi / 180
	return Point{
		X: c.Center.X + c.Radius*math.Cos(rad),
		Y: c.Center.Y + c.Radius*math.Sin(rad),
	}
}

func (a Arc) Circle() Circle {
	return Circle{Center: a.Center, Radius: a.Radius}
}

// SpanDeg returns the swept angle in degrees, always positive.
func (a Arc) SpanDeg() float64 {
	return a.EndDeg - a.StartDeg
}

func (a Arc) Start() Point {
	return a.Circle().PointAt(a.StartDeg)
}

func (a Arc) End() Point {
	return a.Circle().PointAt(a.EndDeg)
}

// NormalizeSpanDeg wraps endDeg forward so the counter-clockwise sweep from
// startDeg is numerically increasing. A zero-span input becomes a full turn.
func NormalizeSpanDeg(startDeg, endDeg float64) (float64, float64) {
	for endDeg <= startDeg {
		endDeg += 360
	}
	return startDeg, endDeg
}
