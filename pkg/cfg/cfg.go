package cfg

// ChordTolerance is the maximum chord deviation, in mm, allowed when flattening
// curved primitives (ellipses, splines, bulge segments) into polylines. The
// machine accuracy is well below this, so tightening it only inflates the
// program size.
var ChordTolerance = 0.1

// ArcProbeStepDegrees is the angular step used when sampling an arc to decide
// whether any part of it reaches into the workspace.
var ArcProbeStepDegrees = 2.0

// ArcSegmentMaxDegrees is the largest angular span emitted as a single chord
// when a partially visible arc has to be walked piecewise.
var ArcSegmentMaxDegrees = 10.0

// CircleClipChords is the number of equal chords a partially visible circle is
// subdivided into before per-chord visibility testing.
var CircleClipChords = 8

// Unit-detection heuristic breakpoints, applied to the largest absolute
// coordinate found in a drawing with no declared unit. Best-effort guesses,
// not guarantees; see pkg/dxf.
var (
	UnitHeuristicInchMax  = 5.0  // extents this small usually mean inches
	UnitHeuristicMeterMax = 10.0 // slightly larger extents usually mean meters
)
