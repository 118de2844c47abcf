package route

import (
	"math"

	"github.com/asim/quadtree"

	"dxflaser/pkg/entity"
	"dxflaser/pkg/geometry"
)

var zeroPoint = quadtree.NewPoint(0, 0, nil)

const tieEps = 1e-9

// pointIndex maps approach points to the entities reachable through them.
// An entity's entry point is always indexed; its exit point too when the
// cut direction may be flipped. Several entities can share one point.
type pointIndex struct {
	tree  *quadtree.QuadTree
	byID  map[int]entity.Entity
	halfW float64
	halfH float64
}

func newPointIndex(ents []entity.Entity, start geometry.Point) *pointIndex {
	minX, minY := start.X, start.Y
	maxX, maxY := start.X, start.Y
	for _, e := range ents {
		for _, p := range approachPoints(e) {
			minX = math.Min(minX, p.X)
			minY = math.Min(minY, p.Y)
			maxX = math.Max(maxX, p.X)
			maxY = math.Max(maxY, p.Y)
		}
	}

	midX := (maxX + minX) / 2
	midY := (maxY + minY) / 2
	// Margin keeps boundary points from being dropped.
	halfW := maxX - midX + 10
	halfH := maxY - midY + 10

	aabb := quadtree.NewAABB(
		quadtree.NewPoint(midX, midY, nil),
		quadtree.NewPoint(halfW, halfH, nil))
	idx := &pointIndex{
		tree:  quadtree.New(aabb, 0, nil),
		byID:  map[int]entity.Entity{},
		halfW: halfW,
		halfH: halfH,
	}
	for _, e := range ents {
		idx.add(e)
	}
	return idx
}

// approachPoints returns the points at which cutting the entity may begin.
func approachPoints(e entity.Entity) []geometry.Point {
	entry := e.Entry()
	pts := []geometry.Point{entry}
	if e.Reversible() {
		if exit := e.Exit(); exit != entry {
			pts = append(pts, exit)
		}
	}
	return pts
}

func (idx *pointIndex) add(e entity.Entity) {
	idx.byID[e.ID] = e
	for _, p := range approachPoints(e) {
		idx.addOne(p, e.ID)
	}
}

func (idx *pointIndex) addOne(p geometry.Point, id int) {
	at := quadtree.NewPoint(p.X, p.Y, nil)
	points := idx.tree.KNearest(quadtree.NewAABB(at, zeroPoint), 1, nil)
	if len(points) > 0 {
		px, py := points[0].Coordinates()
		if px == p.X && py == p.Y {
			ids := points[0].Data().(map[int]struct{})
			ids[id] = struct{}{}
			return
		}
	}
	ids := map[int]struct{}{id: {}}
	idx.tree.Insert(quadtree.NewPoint(p.X, p.Y, ids))
}

func (idx *pointIndex) remove(e entity.Entity) {
	for _, p := range approachPoints(e) {
		at := quadtree.NewPoint(p.X, p.Y, nil)
		points := idx.tree.KNearest(quadtree.NewAABB(at, zeroPoint), 1, nil)
		if len(points) == 0 {
			continue
		}
		px, py := points[0].Coordinates()
		if px != p.X || py != p.Y {
			continue
		}
		ids := points[0].Data().(map[int]struct{})
		delete(ids, e.ID)
		if len(ids) == 0 {
			idx.tree.Remove(points[0])
		}
	}
	delete(idx.byID, e.ID)
}

func (idx *pointIndex) empty() bool {
	return len(idx.byID) == 0
}

// approachDistance is the shortest travel from a point to the entity,
// considering both cut directions when reversal is allowed.
func approachDistance(from geometry.Point, e entity.Entity) float64 {
	d := from.Distance(e.Entry())
	if e.Reversible() {
		d = math.Min(d, from.Distance(e.Exit()))
	}
	return d
}

// nearest returns the remaining entity with the smallest approach distance
// from the given point. Ties are broken by the lowest id so ordering does
// not depend on tree iteration order.
func (idx *pointIndex) nearest(from geometry.Point) (entity.Entity, bool) {
	if idx.empty() {
		return entity.Entity{}, false
	}

	aabb := quadtree.NewAABB(
		quadtree.NewPoint(from.X, from.Y, nil),
		quadtree.NewPoint(idx.halfW*2, idx.halfH*2, nil))
	points := idx.tree.KNearest(aabb, 16, nil)

	candidates := map[int]struct{}{}
	for _, pt := range points {
		for id := range pt.Data().(map[int]struct{}) {
			candidates[id] = struct{}{}
		}
	}
	if len(candidates) == 0 {
		// Degenerate tree states fall back to a scan.
		for id := range idx.byID {
			candidates[id] = struct{}{}
		}
	}

	best := math.Inf(1)
	for id := range candidates {
		if d := approachDistance(from, idx.byID[id]); d < best {
			best = d
		}
	}

	// Widen to everything at the best distance so equidistant entities are
	// all considered, then take the lowest id.
	near := idx.tree.Search(quadtree.NewAABB(
		quadtree.NewPoint(from.X, from.Y, nil),
		quadtree.NewPoint(best+tieEps, best+tieEps, nil)))
	for _, pt := range near {
		for id := range pt.Data().(map[int]struct{}) {
			candidates[id] = struct{}{}
		}
	}

	bestID := -1
	for id := range candidates {
		if approachDistance(from, idx.byID[id]) > best+tieEps {
			continue
		}
		if bestID < 0 || id < bestID {
			bestID = id
		}
	}
	return idx.byID[bestID], true
}
