package dxf

import (
	"testing"
)

func headerTags(insunits string) []Tag {
	return []Tag{
		{Code: 0, Value: "SECTION"},
		{Code: 2, Value: "HEADER"},
		{Code: 9, Value: "$INSUNITS"},
		{Code: 70, Value: insunits},
		{Code: 0, Value: "ENDSEC"},
	}
}

func entitiesTags(body ...Tag) []Tag {
	tags := []Tag{
		{Code: 0, Value: "SECTION"},
		{Code: 2, Value: "ENTITIES"},
	}
	tags = append(tags, body...)
	return append(tags, Tag{Code: 0, Value: "ENDSEC"})
}

func TestResolveUnitsDeclared(t *testing.T) {
	tests := []struct {
		insunits   string
		wantName   string
		wantFactor float64
	}{
		{"1", "inches", 25.4},
		{"4", "millimeters", 1.0},
		{"5", "centimeters", 10.0},
		{"6", "meters", 1000.0},
	}
	for _, test := range tests {
		u := resolveUnits(headerTags(test.insunits))
		if u.Heuristic {
			t.Errorf("insunits %s: declared unit reported as guess", test.insunits)
		}
		if u.Name != test.wantName || u.Factor != test.wantFactor {
			t.Errorf("insunits %s: got %s x%g, want %s x%g",
				test.insunits, u.Name, u.Factor, test.wantName, test.wantFactor)
		}
	}
}

func TestResolveUnitsHeuristic(t *testing.T) {
	tests := []struct {
		name       string
		coord      string
		wantName   string
		wantFactor float64
	}{
		{"tiny extents read as inches", "4.0", "inches", 25.4},
		{"small extents read as meters", "8.0", "meters", 1000.0},
		{"normal extents read as millimeters", "250.0", "millimeters", 1.0},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tags := entitiesTags(
				Tag{Code: 0, Value: "LINE"},
				Tag{Code: 10, Value: "0"}, Tag{Code: 20, Value: "0"},
				Tag{Code: 11, Value: test.coord}, Tag{Code: 21, Value: "1"},
			)
			u := resolveUnits(tags)
			if !u.Heuristic {
				t.Error("guess not flagged as heuristic")
			}
			if u.Name != test.wantName || u.Factor != test.wantFactor {
				t.Errorf("got %s x%g, want %s x%g", u.Name, u.Factor, test.wantName, test.wantFactor)
			}
		})
	}
}

func TestResolveUnitsEmptyDrawingUnscaled(t *testing.T) {
	u := resolveUnits(entitiesTags())
	if !u.Heuristic || u.Factor != 1.0 {
		t.Errorf("got %+v, want unscaled millimeter guess", u)
	}
}

func TestResolveUnitsUnknownCodeFallsBack(t *testing.T) {
	tags := append(headerTags("99"), entitiesTags(
		Tag{Code: 0, Value: "LINE"},
		Tag{Code: 10, Value: "0"}, Tag{Code: 20, Value: "0"},
		Tag{Code: 11, Value: "300"}, Tag{Code: 21, Value: "200"},
	)...)
	u := resolveUnits(tags)
	if !u.Heuristic || u.Factor != 1.0 {
		t.Errorf("got %+v, want millimeter guess", u)
	}
}
