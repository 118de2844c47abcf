// Package gcode turns selected entities into a laser cutting program:
// ordering the cuts, clipping them to the machine workspace, and emitting
// the motion commands.
package gcode

import (
	"fmt"

	"dxflaser/pkg/geometry"
)

// DefaultHeader and DefaultFooter frame the program for a GRBL-style laser:
// metric absolute motion, laser armed at zero power, and a parking move at
// the end.
const (
	DefaultHeader = "G21 ; Set units to millimeters\n" +
		"G90 ; Absolute positioning\n" +
		"G54 ; Use work coordinate system\n" +
		"G0 X0, Y0, Z-3 ; Go to zero position\n" +
		"M4 S0 ; laser on at zero power\n"

	DefaultFooter = "G0 Z-3 ; Raise Z\n" +
		"M5 ; Turn off laser\n" +
		"G0 X0 Y375 ; Send to unload position\n"
)

// Config holds the machine and program parameters for one compilation.
type Config struct {
	FeedRate   float64 // cutting feed, mm/min
	LaserPower float64 // spindle word on cutting moves

	// Workspace extents in millimeters. The reachable area is
	// [0, MaxWorkspaceX] x [0, MaxWorkspaceY]; geometry outside is clipped.
	MaxWorkspaceX float64
	MaxWorkspaceY float64

	CuttingZ float64 // Z carried on repositioning moves
	RaiseZ   float64 // Z for the optional raise between entities

	Header string
	Footer string

	OptimizeRoute     bool
	RaiseBetweenPaths bool
}

func DefaultConfig() Config {
	return Config{
		FeedRate:      1500,
		LaserPower:    1000,
		MaxWorkspaceX: 794,
		MaxWorkspaceY: 394,
		CuttingZ:      -30,
		RaiseZ:        -5,
		Header:        DefaultHeader,
		Footer:        DefaultFooter,
		OptimizeRoute: true,
	}
}

func (c Config) Validate() error {
	if c.FeedRate <= 0 {
		return fmt.Errorf("feed rate %g must be positive", c.FeedRate)
	}
	if c.LaserPower < 0 {
		return fmt.Errorf("laser power %g must not be negative", c.LaserPower)
	}
	if c.MaxWorkspaceX <= 0 || c.MaxWorkspaceY <= 0 {
		return fmt.Errorf("workspace %gx%g must be positive", c.MaxWorkspaceX, c.MaxWorkspaceY)
	}
	return nil
}

// Workspace returns the reachable rectangle, anchored at the origin.
func (c Config) Workspace() geometry.Rect {
	return geometry.Rect{Max: geometry.Point{X: c.MaxWorkspaceX, Y: c.MaxWorkspaceY}}
}

// Stats summarizes one compilation.
type Stats struct {
	Engraved     int // entities that produced cutting moves
	Removed      int // entities excluded by the selection
	ClippedOut   int // selected entities entirely outside the workspace
	TravelBefore float64
	TravelAfter  float64
}
