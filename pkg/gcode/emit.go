package gcode

import (
	"fmt"
	"math"
	"strings"

	"dxflaser/pkg/entity"
	"dxflaser/pkg/geometry"
)

// posEps is the position tolerance below which a repositioning move is
// redundant and suppressed.
const posEps = 1e-6

// emitter writes motion commands and tracks the head position. The entity
// comment is held back until the entity's first command so fully clipped
// entities leave no trace in the program.
type emitter struct {
	b   strings.Builder
	cfg Config

	cur      geometry.Point
	curKnown bool

	pending string
	wrote   bool
}

func newEmitter(cfg Config) *emitter {
	return &emitter{cfg: cfg}
}

func (em *emitter) raw(text string) {
	em.b.WriteString(text)
	if !strings.HasSuffix(text, "\n") {
		em.b.WriteByte('\n')
	}
}

func (em *emitter) beginEntity(e entity.Entity) {
	em.pending = fmt.Sprintf("; %s %d", e.Kind, e.ID)
	em.wrote = false
}

func (em *emitter) line(format string, args ...interface{}) {
	if em.pending != "" {
		em.b.WriteString(em.pending)
		em.b.WriteByte('\n')
		em.pending = ""
	}
	fmt.Fprintf(&em.b, format, args...)
	em.b.WriteByte('\n')
	em.wrote = true
}

// at reports whether the head is already at p.
func (em *emitter) at(p geometry.Point) bool {
	return em.curKnown && em.cur.Distance(p) < posEps
}

// coord snaps values below the output resolution to zero, so clipping
// residue like -1.8e-15 never prints as "-0.000".
func coord(v float64) float64 {
	if math.Abs(v) < 0.0005 {
		return 0
	}
	return v
}

// rapidTo repositions the head with the laser idle, carrying the cutting
// height so the next move starts in focus. Suppressed when already there.
func (em *emitter) rapidTo(p geometry.Point) {
	if em.at(p) {
		return
	}
	em.line("G0 X%.3f Y%.3f Z%g", coord(p.X), coord(p.Y), em.cfg.CuttingZ)
	em.cur = p
	em.curKnown = true
}

// cutTo emits a straight cutting move. Every cutting command restates the
// feed and power so the program stays valid under line-level resumption.
func (em *emitter) cutTo(p geometry.Point) {
	em.line("G1 X%.3f Y%.3f F%g S%g", coord(p.X), coord(p.Y), em.cfg.FeedRate, em.cfg.LaserPower)
	em.cur = p
	em.curKnown = true
}

// arcTo emits a counter-clockwise cutting arc to p around the center at
// offset (i, j) from the current position.
func (em *emitter) arcTo(p geometry.Point, i, j float64) {
	em.line("G3 X%.3f Y%.3f I%.3f J%.3f F%g S%g",
		coord(p.X), coord(p.Y), coord(i), coord(j), em.cfg.FeedRate, em.cfg.LaserPower)
	em.cur = p
	em.curKnown = true
}

// setPosition records the head position without emitting a move. Used when
// an entity is skipped entirely, so travel bookkeeping matches the route
// optimizer's view of the schedule.
func (em *emitter) setPosition(p geometry.Point) {
	em.cur = p
	em.curKnown = true
}

// raise lifts the head between entities.
func (em *emitter) raise() {
	em.line("G0 Z%g", em.cfg.RaiseZ)
}

func (em *emitter) String() string {
	return em.b.String()
}
