// Package entity defines the normalized geometry model shared by the whole
// pipeline. Entities are immutable once built: transformations return new
// values and never touch the original coordinates.
package entity

import (
	"fmt"

	"dxflaser/pkg/geometry"
)

// Kind is the closed set of primitive kinds the pipeline understands.
type Kind int

const (
	Line Kind = iota
	Circle
	Arc
	Polyline
	// NonCuttableMarker is a placeholder for un-explodable text. It marks a
	// location but never participates in routing or emission.
	NonCuttableMarker
)

func (k Kind) String() string {
	switch k {
	case Line:
		return "line"
	case Circle:
		return "circle"
	case Arc:
		return "arc"
	case Polyline:
		return "polyline"
	case NonCuttableMarker:
		return "marker"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// AngleSpan is a counter-clockwise sweep in degrees. End is always
// numerically greater than Start.
type AngleSpan struct {
	Start float64
	End   float64
}

// Entity is one normalized geometric primitive with a stable id.
//
// Points holds exactly 2 points for a Line, exactly 1 (the center) for a
// Circle or Arc, at least 2 for a Polyline, and exactly 1 for a marker.
// Radius is set and strictly positive for Circle and Arc. Span is set for
// Arc only.
type Entity struct {
	ID     int
	Kind   Kind
	Points []geometry.Point
	Radius float64
	Span   AngleSpan
	Note   string // marker annotation (original text content), informational only
}

// minLength rejects degenerate segments at the boundary so downstream code
// may assume non-zero lengths and radii.
const minLength = 1e-9

func NewLine(id int, a, b geometry.Point) (Entity, error) {
	if a.Distance(b) < minLength {
		return Entity{}, fmt.Errorf("line %d: zero length at (%g, %g)", id, a.X, a.Y)
	}
	return Entity{ID: id, Kind: Line, Points: []geometry.Point{a, b}}, nil
}

func NewCircle(id int, center geometry.Point, radius float64) (Entity, error) {
	if radius < minLength {
		return Entity{}, fmt.Errorf("circle %d: radius %g is not positive", id, radius)
	}
	return Entity{ID: id, Kind: Circle, Points: []geometry.Point{center}, Radius: radius}, nil
}

func NewArc(id int, center geometry.Point, radius, startDeg, endDeg float64) (Entity, error) {
	if radius < minLength {
		return Entity{}, fmt.Errorf("arc %d: radius %g is not positive", id, radius)
	}
	start, end := geometry.NormalizeSpanDeg(startDeg, endDeg)
	return Entity{
		ID:     id,
		Kind:   Arc,
		Points: []geometry.Point{center},
		Radius: radius,
		Span:   AngleSpan{Start: start, End: end},
	}, nil
}

func NewPolyline(id int, points []geometry.Point) (Entity, error) {
	if len(points) < 2 {
		return Entity{}, fmt.Errorf("polyline %d: needs at least 2 points, got %d", id, len(points))
	}
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += points[i-1].Distance(points[i])
	}
	if total < minLength {
		return Entity{}, fmt.Errorf("polyline %d: zero length", id)
	}
	pts := make([]geometry.Point, len(points))
	copy(pts, points)
	return Entity{ID: id, Kind: Polyline, Points: pts}, nil
}

func NewMarker(id int, at geometry.Point, note string) Entity {
	return Entity{ID: id, Kind: NonCuttableMarker, Points: []geometry.Point{at}, Note: note}
}

// Cuttable reports whether the entity produces motion at all.
func (e Entity) Cuttable() bool {
	return e.Kind != NonCuttableMarker
}

// Arc2 returns the geometric arc for an Arc entity.
func (e Entity) Arc2() geometry.Arc {
	return geometry.Arc{
		Center:   e.Points[0],
		Radius:   e.Radius,
		StartDeg: e.Span.Start,
		EndDeg:   e.Span.End,
	}
}

// Circle2 returns the geometric circle for a Circle or Arc entity.
func (e Entity) Circle2() geometry.Circle {
	return geometry.Circle{Center: e.Points[0], Radius: e.Radius}
}

// Entry returns the point where cutting this entity begins.
// A circle always starts at its 0-degree point; an arc at its start angle.
func (e Entity) Entry() geometry.Point {
	switch e.Kind {
	case Circle:
		return e.Circle2().PointAt(0)
	case Arc:
		return e.Arc2().Start()
	default:
		return e.Points[0]
	}
}

// Exit returns the point where cutting this entity ends. A circle exits
// where it entered.
func (e Entity) Exit() geometry.Point {
	switch e.Kind {
	case Circle:
		return e.Circle2().PointAt(0)
	case Arc:
		return e.Arc2().End()
	default:
		return e.Points[len(e.Points)-1]
	}
}

// Reversible reports whether the cut direction may be flipped. Arcs and
// circles are never reversed: their rotation direction is part of the
// recorded geometry, not a scheduling choice.
func (e Entity) Reversible() bool {
	return e.Kind == Line || e.Kind == Polyline
}

// Reversed returns a copy with the point order flipped. Calling it on a
// non-reversible entity returns the entity unchanged.
func (e Entity) Reversed() Entity {
	if !e.Reversible() {
		return e
	}
	pts := make([]geometry.Point, len(e.Points))
	for i, p := range e.Points {
		pts[len(pts)-1-i] = p
	}
	out := e
	out.Points = pts
	return out
}

// Translated returns a copy shifted by (dx, dy). Radius and angles are
// unaffected by translation.
func (e Entity) Translated(dx, dy float64) Entity {
	pts := make([]geometry.Point, len(e.Points))
	for i, p := range e.Points {
		pts[i] = geometry.Point{X: p.X + dx, Y: p.Y + dy}
	}
	out := e
	out.Points = pts
	return out
}

// Translated shifts every entity by (dx, dy), producing working coordinates
// from the originals. Because the originals are never mutated, applying
// offsets (a,b) then (c,d) to the same source equals one (a+c, b+d) call.
func Translated(entities []Entity, dx, dy float64) []Entity {
	out := make([]Entity, len(entities))
	for i, e := range entities {
		out[i] = e.Translated(dx, dy)
	}
	return out
}
