package entity

import (
	"testing"

	"dxflaser/pkg/geometry"
)

func TestSelectionRemoveWins(t *testing.T) {
	s := NewSelection()

	s.SetEngrave(1)
	if s.State(1) != Engrave {
		t.Fatalf("state = %v", s.State(1))
	}

	s.SetRemove(1)
	if s.State(1) != Remove {
		t.Fatalf("remove did not override engrave: %v", s.State(1))
	}

	// A removal sticks until Reset.
	s.SetEngrave(1)
	if s.State(1) != Remove {
		t.Fatalf("engrave overrode remove: %v", s.State(1))
	}

	s.Reset()
	if s.State(1) != Unmarked {
		t.Fatalf("reset did not clear: %v", s.State(1))
	}
	s.SetEngrave(1)
	if s.State(1) != Engrave {
		t.Fatalf("engrave after reset: %v", s.State(1))
	}
}

func TestSelectionEngravedFilter(t *testing.T) {
	line, _ := NewLine(0, geometry.Point{}, geometry.Point{X: 1, Y: 0})
	circle, _ := NewCircle(1, geometry.Point{}, 2)
	marker := NewMarker(2, geometry.Point{}, "label")
	ents := []Entity{line, circle, marker}

	s := NewSelection()
	s.SetEngrave(0)
	s.SetEngrave(1)
	s.SetEngrave(2) // markers never engrave
	s.SetRemove(1)

	got := s.Engraved(ents)
	if len(got) != 1 || got[0].ID != 0 {
		t.Fatalf("engraved = %v", got)
	}

	if s.Empty() {
		t.Error("selection with an engraved entity reported empty")
	}
	s.Reset()
	if !s.Empty() {
		t.Error("reset selection not empty")
	}
}

func TestSelectionUnknownIDIsUnmarked(t *testing.T) {
	s := NewSelection()
	if s.State(42) != Unmarked {
		t.Errorf("state = %v", s.State(42))
	}
	if !s.Empty() {
		t.Error("fresh selection not empty")
	}
}
