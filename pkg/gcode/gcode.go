package gcode

import (
	"math"

	"dxflaser/pkg/cfg"
	"dxflaser/pkg/entity"
	"dxflaser/pkg/geometry"
	"dxflaser/pkg/route"
)

// Compile builds the cutting program for the entities marked for engraving.
//
// Entities are shifted by the offset into working coordinates, ordered to
// shorten travel (unless disabled), clipped to the workspace and emitted
// between the configured header and footer. The inputs are never modified.
// An empty selection compiles to a program with no motion, not an error.
func Compile(ents []entity.Entity, sel *entity.Selection, offset geometry.Point, config Config) (string, Stats) {
	var stats Stats
	for _, e := range ents {
		if e.Cuttable() && sel.State(e.ID) == entity.Remove {
			stats.Removed++
		}
	}

	working := entity.Translated(ents, offset.X, offset.Y)
	engraved := sel.Engraved(working)

	start := geometry.Point{}
	var ordered route.Route
	if config.OptimizeRoute {
		ordered, stats.TravelBefore, stats.TravelAfter = route.Optimize(engraved, start)
	} else {
		ordered = route.ExtractionOrder(engraved)
		stats.TravelBefore = route.Travel(ordered, start)
		stats.TravelAfter = stats.TravelBefore
	}

	em := newEmitter(config)
	em.raw(config.Header)

	ws := config.Workspace()
	for _, step := range ordered {
		em.beginEntity(step.Entity)
		switch step.Entity.Kind {
		case entity.Line:
			emitLine(em, ws, step.Entity)
		case entity.Polyline:
			emitPolyline(em, ws, step.Entity)
		case entity.Circle:
			emitCircle(em, ws, step.Entity)
		case entity.Arc:
			emitArc(em, ws, step.Entity)
		}
		if em.wrote {
			stats.Engraved++
			if config.RaiseBetweenPaths {
				em.raise()
			}
		} else {
			stats.ClippedOut++
			em.setPosition(step.Entity.Exit())
		}
	}

	em.raw(config.Footer)
	return em.String(), stats
}

func emitLine(em *emitter, ws geometry.Rect, e entity.Entity) {
	seg, visible := ws.ClipSegment(geometry.LineSegment{A: e.Points[0], B: e.Points[1]})
	if !visible {
		return
	}
	em.rapidTo(seg.A)
	em.cutTo(seg.B)
}

func emitPolyline(em *emitter, ws geometry.Rect, e entity.Entity) {
	for i := 0; i < len(e.Points)-1; i++ {
		seg, visible := ws.ClipSegment(geometry.LineSegment{A: e.Points[i], B: e.Points[i+1]})
		if !visible {
			continue
		}
		em.rapidTo(seg.A)
		em.cutTo(seg.B)
	}
}

// emitCircle cuts a circle as two half turns when it fits entirely in the
// workspace. A circle that pokes outside is walked as equal chords, keeping
// only the chords whose both endpoints are reachable.
func emitCircle(em *emitter, ws geometry.Rect, e entity.Entity) {
	c := e.Circle2()
	b := c.Bounds()

	if ws.Contains(b.Min) && ws.Contains(b.Max) {
		entry := c.PointAt(0)
		opposite := c.PointAt(180)
		em.rapidTo(entry)
		em.arcTo(opposite, -c.Radius, 0)
		em.arcTo(entry, c.Radius, 0)
		return
	}
	if !ws.OverlapsRect(b) {
		return
	}

	n := cfg.CircleClipChords
	prev := c.PointAt(0)
	prevIn := ws.Contains(prev)
	for k := 1; k <= n; k++ {
		p := c.PointAt(float64(k) * 360 / float64(n))
		in := ws.Contains(p)
		if prevIn && in {
			em.rapidTo(prev)
			em.cutTo(p)
		}
		prev, prevIn = p, in
	}
}

// emitArc cuts a fully reachable arc as one counter-clockwise move. An arc
// crossing the boundary is walked in small angular steps, keeping the steps
// whose both endpoints are reachable; steps stay arcs, not chords, so the
// visible parts keep their curvature.
func emitArc(em *emitter, ws geometry.Rect, e entity.Entity) {
	a := e.Arc2()
	c := a.Circle()

	inside := func(deg float64) bool {
		return ws.Contains(c.PointAt(deg))
	}

	// Sampling catches arcs whose endpoints are outside but whose middle
	// bulges into the workspace.
	anyIn := inside(a.EndDeg)
	for deg := a.StartDeg; !anyIn && deg < a.EndDeg; deg += cfg.ArcProbeStepDegrees {
		anyIn = inside(deg)
	}
	if !anyIn {
		return
	}

	if inside(a.StartDeg) && inside(a.EndDeg) {
		from := a.Start()
		em.rapidTo(from)
		em.arcTo(a.End(), c.Center.X-from.X, c.Center.Y-from.Y)
		return
	}

	steps := int(math.Ceil(a.SpanDeg() / cfg.ArcSegmentMaxDegrees))
	for k := 0; k < steps; k++ {
		d0 := a.StartDeg + a.SpanDeg()*float64(k)/float64(steps)
		d1 := a.StartDeg + a.SpanDeg()*float64(k+1)/float64(steps)
		if !inside(d0) || !inside(d1) {
			continue
		}
		from := c.PointAt(d0)
		em.rapidTo(from)
		em.arcTo(c.PointAt(d1), c.Center.X-from.X, c.Center.Y-from.Y)
	}
}
