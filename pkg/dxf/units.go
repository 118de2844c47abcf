package dxf

import (
	"fmt"

	"dxflaser/pkg/cfg"
)

// UnitInfo records how raw drawing coordinates were converted to millimeters.
type UnitInfo struct {
	Name      string
	Factor    float64 // millimeters per drawing unit
	Heuristic bool    // true when guessed from extents instead of declared
}

// insUnits maps the DXF $INSUNITS header value to a millimeter factor.
// Values not listed here are treated as undeclared.
var insUnits = map[int]UnitInfo{
	1:  {Name: "inches", Factor: 25.4},
	2:  {Name: "feet", Factor: 304.8},
	4:  {Name: "millimeters", Factor: 1.0},
	5:  {Name: "centimeters", Factor: 10.0},
	6:  {Name: "meters", Factor: 1000.0},
	8:  {Name: "microinches", Factor: 0.0000254},
	9:  {Name: "mils", Factor: 0.0254},
	10: {Name: "yards", Factor: 914.4},
	11: {Name: "angstroms", Factor: 1e-7},
	12: {Name: "nanometers", Factor: 1e-6},
	13: {Name: "microns", Factor: 1e-3},
	14: {Name: "decimeters", Factor: 100.0},
}

// declaredUnit resolves an $INSUNITS value, if it names a known unit.
func declaredUnit(code int) (UnitInfo, bool) {
	u, ok := insUnits[code]
	return u, ok
}

// guessUnit picks a unit from the largest absolute coordinate in the drawing.
// Tiny extents usually mean the drawing was authored in inches, extents up to
// ten usually mean meters, anything else is taken as millimeters already.
// A drawing with no coordinates at all stays unscaled.
func guessUnit(maxAbsCoord float64) UnitInfo {
	switch {
	case maxAbsCoord <= 0:
		return UnitInfo{Name: "millimeters", Factor: 1.0, Heuristic: true}
	case maxAbsCoord <= cfg.UnitHeuristicInchMax:
		return UnitInfo{Name: "inches", Factor: 25.4, Heuristic: true}
	case maxAbsCoord <= cfg.UnitHeuristicMeterMax:
		return UnitInfo{Name: "meters", Factor: 1000.0, Heuristic: true}
	default:
		return UnitInfo{Name: "millimeters", Factor: 1.0, Heuristic: true}
	}
}

func (u UnitInfo) String() string {
	if u.Heuristic {
		return fmt.Sprintf("%s (guessed, x%g)", u.Name, u.Factor)
	}
	return fmt.Sprintf("%s (declared, x%g)", u.Name, u.Factor)
}
