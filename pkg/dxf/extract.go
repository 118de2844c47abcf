package dxf

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/rpaloschi/dxf-go/document"
	"github.com/rpaloschi/dxf-go/entities"

	"dxflaser/pkg/entity"
	"dxflaser/pkg/geometry"
)

// Extraction is the result of reading one DXF drawing. Entities carry
// millimeter coordinates and sequential ids. Warnings list everything that
// was skipped or guessed; extraction itself never fails on a bad entity.
type Extraction struct {
	Entities []entity.Entity
	Units    UnitInfo
	Warnings []string
}

// Extract reads a DXF drawing and returns its cuttable geometry normalized
// to millimeters.
//
// The document parser handles LINE, CIRCLE and POLYLINE. A second pass over
// the raw tag stream picks up ARC, LWPOLYLINE, ELLIPSE, SPLINE, TEXT, MTEXT
// and block INSERTs, which the document parser does not expose. The two
// passes cover disjoint entity types, so nothing is extracted twice.
func Extract(r io.Reader) (*Extraction, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading dxf: %w", err)
	}

	tags, tagWarnings := readAllTags(bytes.NewReader(data))

	x := &extractor{ex: &Extraction{}}
	x.ex.Warnings = append(x.ex.Warnings, tagWarnings...)
	x.ex.Units = resolveUnits(tags)
	if x.ex.Units.Heuristic {
		x.warnf("no usable $INSUNITS header, guessing %s from drawing extents", x.ex.Units.Name)
	}
	x.factor = x.ex.Units.Factor

	doc, err := document.DxfDocumentFromStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing dxf: %w", err)
	}
	for _, e := range doc.Entities.Entities {
		switch v := e.(type) {
		case *entities.Line:
			x.addLine(x.mm(pointOf(v.Start.X, v.Start.Y)), x.mm(pointOf(v.End.X, v.End.Y)))
		case *entities.Circle:
			x.addCircle(x.mm(pointOf(v.Center.X, v.Center.Y)), v.Radius*x.factor)
		case *entities.Polyline:
			pts := make([]geometry.Point, 0, len(v.Vertices))
			for _, vert := range v.Vertices {
				pts = append(pts, x.mm(pointOf(vert.Location.X, vert.Location.Y)))
			}
			x.addPolyline(pts)
		}
	}

	x.parseTagEntities(tags)

	return x.ex, nil
}

type extractor struct {
	factor float64
	ex     *Extraction
}

func (x *extractor) warnf(format string, args ...interface{}) {
	x.ex.Warnings = append(x.ex.Warnings, fmt.Sprintf(format, args...))
}

func (x *extractor) mm(p geometry.Point) geometry.Point {
	return p.Scale(x.factor)
}

func (x *extractor) nextID() int {
	return len(x.ex.Entities)
}

func pointOf(xc, yc float64) geometry.Point {
	return geometry.Point{X: xc, Y: yc}
}

func (x *extractor) addLine(a, b geometry.Point) {
	e, err := entity.NewLine(x.nextID(), a, b)
	if err != nil {
		x.warnf("skipping %v", err)
		return
	}
	x.ex.Entities = append(x.ex.Entities, e)
}

func (x *extractor) addCircle(center geometry.Point, radius float64) {
	e, err := entity.NewCircle(x.nextID(), center, radius)
	if err != nil {
		x.warnf("skipping %v", err)
		return
	}
	x.ex.Entities = append(x.ex.Entities, e)
}

func (x *extractor) addArc(center geometry.Point, radius, startDeg, endDeg float64) {
	e, err := entity.NewArc(x.nextID(), center, radius, startDeg, endDeg)
	if err != nil {
		x.warnf("skipping %v", err)
		return
	}
	x.ex.Entities = append(x.ex.Entities, e)
}

func (x *extractor) addPolyline(pts []geometry.Point) {
	e, err := entity.NewPolyline(x.nextID(), pts)
	if err != nil {
		x.warnf("skipping %v", err)
		return
	}
	x.ex.Entities = append(x.ex.Entities, e)
}

func (x *extractor) addMarker(at geometry.Point, note string) {
	x.ex.Entities = append(x.ex.Entities, entity.NewMarker(x.nextID(), at, note))
}

func readAllTags(r io.Reader) ([]Tag, []string) {
	s := NewScanner(r)
	var tags []Tag
	for {
		t, ok := s.Next()
		if !ok {
			break
		}
		tags = append(tags, t)
	}
	var warnings []string
	if n, first := s.Skipped(); n > 0 {
		warnings = append(warnings, fmt.Sprintf("ignored %d malformed tag pairs, first: %v", n, first))
	}
	if err := s.Err(); err != nil {
		warnings = append(warnings, fmt.Sprintf("tag stream truncated, arcs and block inserts may be incomplete: %v", err))
	}
	return tags, warnings
}

// sectionRange returns the half-open tag index range of a named SECTION body,
// or (-1, -1) when the section is absent.
func sectionRange(tags []Tag, name string) (int, int) {
	for i := 0; i+1 < len(tags); i++ {
		if tags[i].Code != 0 || tags[i].Value != "SECTION" {
			continue
		}
		if tags[i+1].Code != 2 || !strings.EqualFold(tags[i+1].Value, name) {
			continue
		}
		for j := i + 2; j < len(tags); j++ {
			if tags[j].Code == 0 && tags[j].Value == "ENDSEC" {
				return i + 2, j
			}
		}
		return i + 2, len(tags)
	}
	return -1, -1
}

// resolveUnits finds the drawing unit: the $INSUNITS header value when it
// names a known unit, otherwise a guess from the largest coordinate seen.
func resolveUnits(tags []Tag) UnitInfo {
	lo, hi := sectionRange(tags, "HEADER")
	for i := lo; i >= 0 && i < hi-1; i++ {
		if tags[i].Code != 9 || tags[i].Value != "$INSUNITS" {
			continue
		}
		if tags[i+1].Code != 70 {
			continue
		}
		code, err := tags[i+1].Int()
		if err != nil {
			break
		}
		if u, ok := declaredUnit(code); ok {
			return u
		}
		break
	}
	return guessUnit(maxAbsCoord(tags))
}

// maxAbsCoord scans the BLOCKS and ENTITIES sections for the largest absolute
// X or Y coordinate, in drawing units. Unparsable values are ignored.
func maxAbsCoord(tags []Tag) float64 {
	max := 0.0
	scan := func(lo, hi int) {
		for i := lo; i >= 0 && i < hi; i++ {
			switch tags[i].Code {
			case 10, 20, 11, 21:
				if f, err := tags[i].Float(); err == nil {
					if a := math.Abs(f); a > max {
						max = a
					}
				}
			}
		}
	}
	scan(sectionRange(tags, "BLOCKS"))
	scan(sectionRange(tags, "ENTITIES"))
	return max
}

// primitive is a parsed tag-stream entity in millimeters, not yet assigned
// an id. Block definitions hold primitives so INSERT can transform them.
type primitive struct {
	kind     entity.Kind
	pts      []geometry.Point
	radius   float64
	startDeg float64
	endDeg   float64
	note     string
}

func (x *extractor) addPrimitive(p primitive) {
	switch p.kind {
	case entity.Line:
		x.addLine(p.pts[0], p.pts[1])
	case entity.Circle:
		x.addCircle(p.pts[0], p.radius)
	case entity.Arc:
		x.addArc(p.pts[0], p.radius, p.startDeg, p.endDeg)
	case entity.Polyline:
		x.addPolyline(p.pts)
	case entity.NonCuttableMarker:
		x.addMarker(p.pts[0], p.note)
	}
}

// block is one BLOCK definition: primitives in block-local millimeters plus
// the base point INSERT coordinates are relative to.
type block struct {
	base       geometry.Point
	primitives []primitive
}

func (x *extractor) parseTagEntities(tags []Tag) {
	blocks := x.parseBlocks(tags)

	lo, hi := sectionRange(tags, "ENTITIES")
	for i := lo; i >= 0 && i < hi; {
		if tags[i].Code != 0 {
			i++
			continue
		}
		kind := tags[i].Value
		var (
			p    primitive
			next int
			err  error
		)
		switch kind {
		case "ARC":
			p, next, err = x.parseArc(tags, i+1, hi)
		case "LWPOLYLINE":
			p, next, err = x.parseLWPolyline(tags, i+1, hi)
		case "ELLIPSE":
			p, next, err = x.parseEllipse(tags, i+1, hi)
		case "SPLINE":
			p, next, err = x.parseSpline(tags, i+1, hi)
		case "TEXT", "MTEXT":
			p, next, err = x.parseText(tags, i+1, hi)
		case "INSERT":
			next = x.parseInsert(tags, i+1, hi, blocks)
			i = next
			continue
		default:
			i++
			continue
		}
		if err != nil {
			x.warnf("skipping %s: %v", strings.ToLower(kind), err)
		} else {
			x.addPrimitive(p)
		}
		i = next
	}
}

func (x *extractor) parseBlocks(tags []Tag) map[string]block {
	blocks := map[string]block{}
	lo, hi := sectionRange(tags, "BLOCKS")
	for i := lo; i >= 0 && i < hi; {
		if tags[i].Code != 0 || tags[i].Value != "BLOCK" {
			i++
			continue
		}
		var b block
		name := ""
		i++
		for i < hi && tags[i].Code != 0 {
			switch tags[i].Code {
			case 2:
				name = tags[i].Value
			case 10:
				if f, err := tags[i].Float(); err == nil {
					b.base.X = f * x.factor
				}
			case 20:
				if f, err := tags[i].Float(); err == nil {
					b.base.Y = f * x.factor
				}
			}
			i++
		}
		for i < hi && !(tags[i].Code == 0 && tags[i].Value == "ENDBLK") {
			if tags[i].Code != 0 {
				i++
				continue
			}
			kind := tags[i].Value
			var (
				p    primitive
				next int
				err  error
			)
			switch kind {
			case "LINE":
				p, next, err = x.parseLineTags(tags, i+1, hi)
			case "CIRCLE":
				p, next, err = x.parseCircleTags(tags, i+1, hi)
			case "ARC":
				p, next, err = x.parseArc(tags, i+1, hi)
			case "LWPOLYLINE":
				p, next, err = x.parseLWPolyline(tags, i+1, hi)
			default:
				i++
				continue
			}
			if err != nil {
				x.warnf("skipping %s in block %q: %v", strings.ToLower(kind), name, err)
			} else {
				b.primitives = append(b.primitives, p)
			}
			i = next
		}
		if name != "" && !strings.HasPrefix(name, "*") {
			blocks[name] = b
		}
	}
	return blocks
}

// fields collects the group values of one entity record, advancing to the
// next code 0 tag. Repeating coordinate codes are appended in order.
type fields struct {
	scalar map[int]float64
	text   map[int]string
	xs     []float64 // code 10
	ys     []float64 // code 20
	fxs    []float64 // code 11
	fys    []float64 // code 21
	knots  []float64 // code 40, splines only
	bulges map[int]float64
}

// collectOpts selects per-entity handling of ambiguous group codes: 40
// repeats for spline knots, and 42 is a per-vertex bulge only on lwpolylines.
type collectOpts struct {
	repeat40 bool
	bulge42  bool
}

func (x *extractor) collect(tags []Tag, i, hi int, opts collectOpts) (fields, int, error) {
	f := fields{scalar: map[int]float64{}, text: map[int]string{}, bulges: map[int]float64{}}
	var firstErr error
	for ; i < hi && tags[i].Code != 0; i++ {
		t := tags[i]
		switch t.Code {
		case 1, 2, 3, 7:
			f.text[t.Code] = t.Value
			continue
		case 10, 20, 11, 21, 40, 41, 42, 50, 51, 70, 71:
			// Geometry and flag codes, parsed below.
		default:
			// Handles, owners, subclass markers, layers and the rest of the
			// record. CAD writers always emit these; they carry no geometry.
			continue
		}
		v, err := t.Float()
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		switch t.Code {
		case 10:
			f.xs = append(f.xs, v)
		case 20:
			f.ys = append(f.ys, v)
		case 11:
			f.fxs = append(f.fxs, v)
		case 21:
			f.fys = append(f.fys, v)
		case 42:
			if opts.bulge42 && len(f.xs) > 0 {
				f.bulges[len(f.xs)-1] = v
			} else {
				f.scalar[42] = v
			}
		case 40:
			if opts.repeat40 {
				f.knots = append(f.knots, v)
			} else {
				f.scalar[40] = v
			}
		default:
			f.scalar[t.Code] = v
		}
	}
	return f, i, firstErr
}

func (f fields) points() []geometry.Point {
	n := len(f.xs)
	if len(f.ys) < n {
		n = len(f.ys)
	}
	pts := make([]geometry.Point, n)
	for i := 0; i < n; i++ {
		pts[i] = geometry.Point{X: f.xs[i], Y: f.ys[i]}
	}
	return pts
}

func (f fields) fitPoints() []geometry.Point {
	n := len(f.fxs)
	if len(f.fys) < n {
		n = len(f.fys)
	}
	pts := make([]geometry.Point, n)
	for i := 0; i < n; i++ {
		pts[i] = geometry.Point{X: f.fxs[i], Y: f.fys[i]}
	}
	return pts
}

func (x *extractor) parseLineTags(tags []Tag, i, hi int) (primitive, int, error) {
	f, next, err := x.collect(tags, i, hi, collectOpts{})
	if err != nil {
		return primitive{}, next, err
	}
	if len(f.xs) < 1 || len(f.ys) < 1 || len(f.fxs) < 1 || len(f.fys) < 1 {
		return primitive{}, next, fmt.Errorf("missing endpoint")
	}
	return primitive{
		kind: entity.Line,
		pts: []geometry.Point{
			x.mm(geometry.Point{X: f.xs[0], Y: f.ys[0]}),
			x.mm(geometry.Point{X: f.fxs[0], Y: f.fys[0]}),
		},
	}, next, nil
}

func (x *extractor) parseCircleTags(tags []Tag, i, hi int) (primitive, int, error) {
	f, next, err := x.collect(tags, i, hi, collectOpts{})
	if err != nil {
		return primitive{}, next, err
	}
	if len(f.xs) < 1 || len(f.ys) < 1 {
		return primitive{}, next, fmt.Errorf("missing center")
	}
	return primitive{
		kind:   entity.Circle,
		pts:    []geometry.Point{x.mm(geometry.Point{X: f.xs[0], Y: f.ys[0]})},
		radius: f.scalar[40] * x.factor,
	}, next, nil
}

func (x *extractor) parseArc(tags []Tag, i, hi int) (primitive, int, error) {
	f, next, err := x.collect(tags, i, hi, collectOpts{})
	if err != nil {
		return primitive{}, next, err
	}
	if len(f.xs) < 1 || len(f.ys) < 1 {
		return primitive{}, next, fmt.Errorf("missing center")
	}
	return primitive{
		kind:     entity.Arc,
		pts:      []geometry.Point{x.mm(geometry.Point{X: f.xs[0], Y: f.ys[0]})},
		radius:   f.scalar[40] * x.factor,
		startDeg: f.scalar[50],
		endDeg:   f.scalar[51],
	}, next, nil
}

func (x *extractor) parseLWPolyline(tags []Tag, i, hi int) (primitive, int, error) {
	f, next, err := x.collect(tags, i, hi, collectOpts{bulge42: true})
	if err != nil {
		return primitive{}, next, err
	}
	raw := f.points()
	if len(raw) < 2 {
		return primitive{}, next, fmt.Errorf("%d vertices", len(raw))
	}
	closed := int(f.scalar[70])&1 != 0

	pts := make([]geometry.Point, len(raw))
	for j, p := range raw {
		pts[j] = x.mm(p)
	}

	chain := []geometry.Point{pts[0]}
	for j := 0; j < len(pts)-1; j++ {
		if b := f.bulges[j]; b != 0 {
			chain = appendBulgeArc(chain, pts[j], pts[j+1], b)
		} else {
			chain = append(chain, pts[j+1])
		}
	}
	if closed {
		if b := f.bulges[len(pts)-1]; b != 0 {
			chain = appendBulgeArc(chain, pts[len(pts)-1], pts[0], b)
		} else {
			chain = append(chain, pts[0])
		}
	}
	return primitive{kind: entity.Polyline, pts: chain}, next, nil
}

func (x *extractor) parseEllipse(tags []Tag, i, hi int) (primitive, int, error) {
	f, next, err := x.collect(tags, i, hi, collectOpts{})
	if err != nil {
		return primitive{}, next, err
	}
	if len(f.xs) < 1 || len(f.ys) < 1 || len(f.fxs) < 1 || len(f.fys) < 1 {
		return primitive{}, next, fmt.Errorf("missing center or major axis")
	}
	center := x.mm(geometry.Point{X: f.xs[0], Y: f.ys[0]})
	major := x.mm(geometry.Point{X: f.fxs[0], Y: f.fys[0]})
	ratio := f.scalar[40]
	if ratio <= 0 || major.Magnitude() < 1e-12 {
		return primitive{}, next, fmt.Errorf("degenerate axes")
	}
	t0 := f.scalar[41]
	t1, hasEnd := f.scalar[42]
	if !hasEnd {
		t1 = 2 * math.Pi
	}
	for t1 <= t0 {
		t1 += 2 * math.Pi
	}
	pts := flattenParametric(func(t float64) geometry.Point {
		return ellipsePoint(center, major, ratio, t)
	}, t0, t1)
	return primitive{kind: entity.Polyline, pts: pts}, next, nil
}

func (x *extractor) parseSpline(tags []Tag, i, hi int) (primitive, int, error) {
	f, next, err := x.collect(tags, i, hi, collectOpts{repeat40: true})
	if err != nil {
		return primitive{}, next, err
	}
	ctrl := f.points()
	for j := range ctrl {
		ctrl[j] = x.mm(ctrl[j])
	}
	fit := f.fitPoints()
	for j := range fit {
		fit[j] = x.mm(fit[j])
	}
	pts, err := flattenSpline(int(f.scalar[71]), f.knots, ctrl, fit)
	if err != nil {
		return primitive{}, next, err
	}
	return primitive{kind: entity.Polyline, pts: pts}, next, nil
}

func (x *extractor) parseText(tags []Tag, i, hi int) (primitive, int, error) {
	f, next, err := x.collect(tags, i, hi, collectOpts{})
	if err != nil {
		return primitive{}, next, err
	}
	if len(f.xs) < 1 || len(f.ys) < 1 {
		return primitive{}, next, fmt.Errorf("missing insertion point")
	}
	note := f.text[1]
	if note == "" {
		note = f.text[3]
	}
	return primitive{
		kind: entity.NonCuttableMarker,
		pts:  []geometry.Point{x.mm(geometry.Point{X: f.xs[0], Y: f.ys[0]})},
		note: note,
	}, next, nil
}

// insertXform maps block-local points to drawing space: translate to the
// block base, scale, rotate, then translate to the insertion point.
type insertXform struct {
	base     geometry.Point
	pos      geometry.Point
	sx, sy   float64
	cos, sin float64
}

func (t insertXform) point(p geometry.Point) geometry.Point {
	px := (p.X - t.base.X) * t.sx
	py := (p.Y - t.base.Y) * t.sy
	return geometry.Point{
		X: t.pos.X + px*t.cos - py*t.sin,
		Y: t.pos.Y + px*t.sin + py*t.cos,
	}
}

func (x *extractor) parseInsert(tags []Tag, i, hi int, blocks map[string]block) int {
	f, next, err := x.collect(tags, i, hi, collectOpts{})
	if err != nil {
		x.warnf("skipping insert: %v", err)
		return next
	}
	name := f.text[2]
	b, ok := blocks[name]
	if !ok {
		x.warnf("skipping insert of unknown block %q", name)
		return next
	}

	xf := insertXform{base: b.base, sx: 1, sy: 1, cos: 1}
	if len(f.xs) > 0 && len(f.ys) > 0 {
		xf.pos = x.mm(geometry.Point{X: f.xs[0], Y: f.ys[0]})
	}
	if v, found := f.scalar[41]; found && v != 0 {
		xf.sx = v
	}
	if v, found := f.scalar[42]; found && v != 0 {
		xf.sy = v
	}
	if v, found := f.scalar[50]; found {
		rad := v * math.Pi / 180
		xf.cos, xf.sin = math.Cos(rad), math.Sin(rad)
	}

	for _, p := range b.primitives {
		out := p
		out.pts = make([]geometry.Point, len(p.pts))
		for j, pt := range p.pts {
			out.pts[j] = xf.point(pt)
		}
		// Radii follow the X scale. Arc angles are kept as recorded.
		out.radius = p.radius * math.Abs(xf.sx)
		x.addPrimitive(out)
	}
	return next
}
