package entity

// Mark is the user-facing classification of a single entity.
type Mark int

const (
	Unmarked Mark = iota
	Engrave
	Remove
)

func (m Mark) String() string {
	switch m {
	case Engrave:
		return "engrave"
	case Remove:
		return "remove"
	}
	return "unmarked"
}

// Selection records per-entity marks by id. The zero value is unusable; use
// NewSelection. A removal sticks: marking a removed entity for engraving is a
// no-op until Reset, so an entity can never be in both states at once.
type Selection struct {
	marks map[int]Mark
}

func NewSelection() *Selection {
	return &Selection{marks: map[int]Mark{}}
}

// SetEngrave marks the entity for output. Ignored if the entity is removed.
func (s *Selection) SetEngrave(id int) {
	if s.marks[id] == Remove {
		return
	}
	s.marks[id] = Engrave
}

// SetRemove excludes the entity from output, overriding any engrave mark.
func (s *Selection) SetRemove(id int) {
	s.marks[id] = Remove
}

// Reset clears every mark.
func (s *Selection) Reset() {
	s.marks = map[int]Mark{}
}

// State returns the current mark for an id. Unknown ids are Unmarked.
func (s *Selection) State(id int) Mark {
	return s.marks[id]
}

// Empty reports whether nothing is marked for engraving.
func (s *Selection) Empty() bool {
	for _, m := range s.marks {
		if m == Engrave {
			return false
		}
	}
	return true
}

// Engraved filters the entities down to those marked Engrave, in input order.
// Markers are never engraved regardless of their mark.
func (s *Selection) Engraved(entities []Entity) []Entity {
	var out []Entity
	for _, e := range entities {
		if !e.Cuttable() {
			continue
		}
		if s.marks[e.ID] == Engrave {
			out = append(out, e)
		}
	}
	return out
}
