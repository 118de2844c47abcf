package dxf

import (
	"math"
	"testing"

	"dxflaser/pkg/entity"
	"dxflaser/pkg/geometry"
)

func newTestExtractor(factor float64) *extractor {
	return &extractor{factor: factor, ex: &Extraction{}}
}

func TestParseTagEntitiesArc(t *testing.T) {
	tags := entitiesTags(
		Tag{Code: 0, Value: "ARC"},
		Tag{Code: 10, Value: "5"}, Tag{Code: 20, Value: "6"},
		Tag{Code: 40, Value: "2.5"},
		Tag{Code: 50, Value: "350"}, Tag{Code: 51, Value: "10"},
	)
	x := newTestExtractor(1)
	x.parseTagEntities(tags)

	if len(x.ex.Entities) != 1 {
		t.Fatalf("got %d entities, warnings %v", len(x.ex.Entities), x.ex.Warnings)
	}
	a := x.ex.Entities[0]
	if a.Kind != entity.Arc || a.Radius != 2.5 {
		t.Fatalf("entity = %+v", a)
	}
	if a.Points[0] != (geometry.Point{X: 5, Y: 6}) {
		t.Errorf("center = %v", a.Points[0])
	}
	if a.Span.Start != 350 || a.Span.End != 370 {
		t.Errorf("span = %v", a.Span)
	}
}

func TestParseTagEntitiesArcFullRecord(t *testing.T) {
	// The bookkeeping codes every CAD writer emits: handle, owner,
	// subclass markers, layer, color, lineweight.
	tags := entitiesTags(
		Tag{Code: 0, Value: "ARC"},
		Tag{Code: 5, Value: "2F"},
		Tag{Code: 330, Value: "1F"},
		Tag{Code: 100, Value: "AcDbEntity"},
		Tag{Code: 8, Value: "CUT-OUTLINE"},
		Tag{Code: 62, Value: "256"},
		Tag{Code: 370, Value: "-1"},
		Tag{Code: 100, Value: "AcDbCircle"},
		Tag{Code: 10, Value: "5"}, Tag{Code: 20, Value: "6"},
		Tag{Code: 40, Value: "2.5"},
		Tag{Code: 100, Value: "AcDbArc"},
		Tag{Code: 50, Value: "0"}, Tag{Code: 51, Value: "90"},
	)
	x := newTestExtractor(1)
	x.parseTagEntities(tags)

	if len(x.ex.Warnings) != 0 {
		t.Fatalf("warnings: %v", x.ex.Warnings)
	}
	if len(x.ex.Entities) != 1 {
		t.Fatalf("got %d entities", len(x.ex.Entities))
	}
	a := x.ex.Entities[0]
	if a.Kind != entity.Arc || a.Radius != 2.5 {
		t.Fatalf("entity = %+v", a)
	}
	if a.Points[0] != (geometry.Point{X: 5, Y: 6}) {
		t.Errorf("center = %v", a.Points[0])
	}
}

func TestParseTagEntitiesArcScalesWithUnits(t *testing.T) {
	tags := entitiesTags(
		Tag{Code: 0, Value: "ARC"},
		Tag{Code: 10, Value: "1"}, Tag{Code: 20, Value: "2"},
		Tag{Code: 40, Value: "0.5"},
		Tag{Code: 50, Value: "0"}, Tag{Code: 51, Value: "90"},
	)
	x := newTestExtractor(25.4)
	x.parseTagEntities(tags)

	if len(x.ex.Entities) != 1 {
		t.Fatalf("got %d entities", len(x.ex.Entities))
	}
	a := x.ex.Entities[0]
	if math.Abs(a.Radius-12.7) > 1e-9 {
		t.Errorf("radius = %g", a.Radius)
	}
	if math.Abs(a.Points[0].X-25.4) > 1e-9 || math.Abs(a.Points[0].Y-50.8) > 1e-9 {
		t.Errorf("center = %v", a.Points[0])
	}
	if a.Span.Start != 0 || a.Span.End != 90 {
		t.Errorf("angles must not scale: %v", a.Span)
	}
}

func TestParseTagEntitiesClosedLWPolyline(t *testing.T) {
	tags := entitiesTags(
		Tag{Code: 0, Value: "LWPOLYLINE"},
		Tag{Code: 90, Value: "4"},
		Tag{Code: 70, Value: "1"},
		Tag{Code: 10, Value: "0"}, Tag{Code: 20, Value: "0"},
		Tag{Code: 10, Value: "10"}, Tag{Code: 20, Value: "0"},
		Tag{Code: 10, Value: "10"}, Tag{Code: 20, Value: "10"},
		Tag{Code: 10, Value: "0"}, Tag{Code: 20, Value: "10"},
	)
	x := newTestExtractor(1)
	x.parseTagEntities(tags)

	if len(x.ex.Entities) != 1 {
		t.Fatalf("got %d entities, warnings %v", len(x.ex.Entities), x.ex.Warnings)
	}
	p := x.ex.Entities[0]
	if p.Kind != entity.Polyline {
		t.Fatalf("kind = %v", p.Kind)
	}
	if len(p.Points) != 5 {
		t.Fatalf("closed square has %d points", len(p.Points))
	}
	if p.Points[0] != p.Points[4] {
		t.Error("closed polyline does not end at its start")
	}
}

func TestParseTagEntitiesLWPolylineBulge(t *testing.T) {
	tags := entitiesTags(
		Tag{Code: 0, Value: "LWPOLYLINE"},
		Tag{Code: 90, Value: "2"},
		Tag{Code: 10, Value: "0"}, Tag{Code: 20, Value: "0"},
		Tag{Code: 42, Value: "1"},
		Tag{Code: 10, Value: "2"}, Tag{Code: 20, Value: "0"},
	)
	x := newTestExtractor(1)
	x.parseTagEntities(tags)

	if len(x.ex.Entities) != 1 {
		t.Fatalf("got %d entities, warnings %v", len(x.ex.Entities), x.ex.Warnings)
	}
	p := x.ex.Entities[0]
	if len(p.Points) <= 2 {
		t.Fatalf("bulge not flattened, %d points", len(p.Points))
	}
	center := geometry.Point{X: 1, Y: 0}
	for _, pt := range p.Points {
		if math.Abs(pt.Distance(center)-1) > 1e-9 {
			t.Errorf("point %v off the bulge arc", pt)
		}
	}
}

func TestParseTagEntitiesEllipse(t *testing.T) {
	tags := entitiesTags(
		Tag{Code: 0, Value: "ELLIPSE"},
		Tag{Code: 10, Value: "0"}, Tag{Code: 20, Value: "0"},
		Tag{Code: 11, Value: "10"}, Tag{Code: 21, Value: "0"},
		Tag{Code: 40, Value: "0.5"},
	)
	x := newTestExtractor(1)
	x.parseTagEntities(tags)

	if len(x.ex.Entities) != 1 {
		t.Fatalf("got %d entities, warnings %v", len(x.ex.Entities), x.ex.Warnings)
	}
	p := x.ex.Entities[0]
	if p.Kind != entity.Polyline {
		t.Fatalf("kind = %v", p.Kind)
	}
	// Full ellipse: x^2/100 + y^2/25 = 1 for every flattened point.
	for _, pt := range p.Points {
		v := pt.X*pt.X/100 + pt.Y*pt.Y/25
		if math.Abs(v-1) > 1e-9 {
			t.Errorf("point %v off the ellipse", pt)
		}
	}
	if p.Points[0].Distance(p.Points[len(p.Points)-1]) > 1e-9 {
		t.Error("full ellipse is not closed")
	}
}

func TestParseTagEntitiesTextBecomesMarker(t *testing.T) {
	tags := entitiesTags(
		Tag{Code: 0, Value: "TEXT"},
		Tag{Code: 10, Value: "30"}, Tag{Code: 20, Value: "40"},
		Tag{Code: 1, Value: "DO NOT CUT"},
	)
	x := newTestExtractor(1)
	x.parseTagEntities(tags)

	if len(x.ex.Entities) != 1 {
		t.Fatalf("got %d entities", len(x.ex.Entities))
	}
	m := x.ex.Entities[0]
	if m.Kind != entity.NonCuttableMarker || m.Note != "DO NOT CUT" {
		t.Fatalf("marker = %+v", m)
	}
	if m.Cuttable() {
		t.Error("marker reported cuttable")
	}
}

func TestParseTagEntitiesInsertTransform(t *testing.T) {
	tags := []Tag{
		{Code: 0, Value: "SECTION"}, {Code: 2, Value: "BLOCKS"},
		{Code: 0, Value: "BLOCK"},
		{Code: 2, Value: "PART"},
		{Code: 10, Value: "0"}, {Code: 20, Value: "0"},
		{Code: 0, Value: "LINE"},
		{Code: 10, Value: "0"}, {Code: 20, Value: "0"},
		{Code: 11, Value: "10"}, {Code: 21, Value: "0"},
		{Code: 0, Value: "ENDBLK"},
		{Code: 0, Value: "ENDSEC"},
		{Code: 0, Value: "SECTION"}, {Code: 2, Value: "ENTITIES"},
		{Code: 0, Value: "INSERT"},
		{Code: 2, Value: "PART"},
		{Code: 10, Value: "100"}, {Code: 20, Value: "50"},
		{Code: 41, Value: "2"}, {Code: 42, Value: "2"},
		{Code: 50, Value: "90"},
		{Code: 0, Value: "ENDSEC"},
	}
	x := newTestExtractor(1)
	x.parseTagEntities(tags)

	if len(x.ex.Entities) != 1 {
		t.Fatalf("got %d entities, warnings %v", len(x.ex.Entities), x.ex.Warnings)
	}
	l := x.ex.Entities[0]
	if l.Kind != entity.Line {
		t.Fatalf("kind = %v", l.Kind)
	}
	// (10,0) scaled x2 to (20,0), rotated 90 CCW to (0,20), moved to (100,70).
	if l.Points[0].Distance(geometry.Point{X: 100, Y: 50}) > 1e-9 {
		t.Errorf("start = %v", l.Points[0])
	}
	if l.Points[1].Distance(geometry.Point{X: 100, Y: 70}) > 1e-9 {
		t.Errorf("end = %v", l.Points[1])
	}
}

func TestParseTagEntitiesUnknownInsertWarns(t *testing.T) {
	tags := entitiesTags(
		Tag{Code: 0, Value: "INSERT"},
		Tag{Code: 2, Value: "MISSING"},
		Tag{Code: 10, Value: "0"}, Tag{Code: 20, Value: "0"},
	)
	x := newTestExtractor(1)
	x.parseTagEntities(tags)

	if len(x.ex.Entities) != 0 {
		t.Fatalf("got %d entities", len(x.ex.Entities))
	}
	if len(x.ex.Warnings) == 0 {
		t.Error("unknown block insert produced no warning")
	}
}

func TestParseTagEntitiesMalformedSkipsAndWarns(t *testing.T) {
	tags := entitiesTags(
		Tag{Code: 0, Value: "ARC"},
		Tag{Code: 10, Value: "not-a-number"}, Tag{Code: 20, Value: "0"},
		Tag{Code: 40, Value: "1"},
		Tag{Code: 50, Value: "0"}, Tag{Code: 51, Value: "90"},
		Tag{Code: 0, Value: "ARC"},
		Tag{Code: 10, Value: "5"}, Tag{Code: 20, Value: "5"},
		Tag{Code: 40, Value: "1"},
		Tag{Code: 50, Value: "0"}, Tag{Code: 51, Value: "90"},
	)
	x := newTestExtractor(1)
	x.parseTagEntities(tags)

	if len(x.ex.Entities) != 1 {
		t.Fatalf("got %d entities, want the good arc only", len(x.ex.Entities))
	}
	if len(x.ex.Warnings) == 0 {
		t.Error("malformed arc produced no warning")
	}
}
