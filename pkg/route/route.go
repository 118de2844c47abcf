// Package route orders entities to reduce the travel the laser head spends
// moving between cuts. Ordering is a pure scheduling step: it may flip the
// direction of lines and polylines but never alters geometry, and arcs and
// circles keep their recorded rotation.
package route

import (
	"dxflaser/pkg/entity"
	"dxflaser/pkg/geometry"
)

// Step is one scheduled cut. Entity already reflects the travel direction:
// a reversed line carries its points in reversed order.
type Step struct {
	Entity   entity.Entity
	Reversed bool
}

type Route []Step

// ExtractionOrder schedules the entities exactly as extracted, never
// reversing anything.
func ExtractionOrder(ents []entity.Entity) Route {
	r := make(Route, len(ents))
	for i, e := range ents {
		r[i] = Step{Entity: e}
	}
	return r
}

// Travel returns the total pen-up distance of a route from the given start
// point: the sum of the gaps between each exit and the next entry.
func Travel(r Route, start geometry.Point) float64 {
	total := 0.0
	cur := start
	for _, s := range r {
		total += cur.Distance(s.Entity.Entry())
		cur = s.Entity.Exit()
	}
	return total
}

// Optimize schedules the entities greedily: from the current position, cut
// the entity whose nearest approach point is closest, reversing lines and
// polylines when their far end is closer. Returns the route together with
// the travel of the extraction order and of the returned route.
//
// The result never travels farther than the extraction order: when greedy
// selection loses (it can, on adversarial layouts), the extraction order is
// returned instead.
func Optimize(ents []entity.Entity, start geometry.Point) (Route, float64, float64) {
	original := ExtractionOrder(ents)
	before := Travel(original, start)
	if len(ents) < 2 {
		return original, before, before
	}

	idx := newPointIndex(ents, start)
	greedy := make(Route, 0, len(ents))
	cur := start
	for !idx.empty() {
		e, ok := idx.nearest(cur)
		if !ok {
			break
		}
		idx.remove(e)

		step := Step{Entity: e}
		if e.Reversible() && cur.Distance(e.Exit()) < cur.Distance(e.Entry()) {
			step = Step{Entity: e.Reversed(), Reversed: true}
		}
		cur = step.Entity.Exit()
		greedy = append(greedy, step)
	}

	after := Travel(greedy, start)
	if len(greedy) < len(ents) || after >= before {
		return original, before, before
	}
	return greedy, before, after
}
