package geometry

import (
	"math"
	"testing"
)

func TestNormalizeSpanDeg(t *testing.T) {
	tests := []struct {
		name       string
		start, end float64
		wantEnd    float64
	}{
		{"already increasing", 10, 80, 80},
		{"wraps through zero", 350, 10, 370},
		{"zero span is a full turn", 90, 90, 450},
		{"negative end", 270, -30, 330},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			start, end := NormalizeSpanDeg(test.start, test.end)
			if start != test.start {
				t.Errorf("start changed: %g", start)
			}
			if end != test.wantEnd {
				t.Errorf("end = %g, want %g", end, test.wantEnd)
			}
			if end <= start {
				t.Errorf("span not increasing: %g..%g", start, end)
			}
		})
	}
}

func TestRectContainsBoundary(t *testing.T) {
	r := Rect{Max: Point{X: 100, Y: 50}}
	for _, p := range []Point{{0, 0}, {100, 50}, {0, 25}, {100, 0}, {50, 50}} {
		if !r.Contains(p) {
			t.Errorf("boundary point %v reported outside", p)
		}
	}
	for _, p := range []Point{{-0.001, 0}, {100.001, 50}, {50, 50.001}} {
		if r.Contains(p) {
			t.Errorf("outside point %v reported inside", p)
		}
	}
}

func TestCirclePointAt(t *testing.T) {
	c := Circle{Center: Point{X: 10, Y: 20}, Radius: 5}
	p := c.PointAt(0)
	if math.Abs(p.X-15) > 1e-9 || math.Abs(p.Y-20) > 1e-9 {
		t.Errorf("PointAt(0) = %v", p)
	}
	p = c.PointAt(90)
	if math.Abs(p.X-10) > 1e-9 || math.Abs(p.Y-25) > 1e-9 {
		t.Errorf("PointAt(90) = %v", p)
	}
}
