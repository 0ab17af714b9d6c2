// Package lifecycle applies task status changes: it gates completion on
// subtasks and materializes the next occurrence of recurring tasks.
package lifecycle

import (
	"errors"
	"fmt"

	"github.com/tgienger/cadence/internal/models"
)

var (
	// ErrUnknownStatus is returned for a status id missing from the catalog
	ErrUnknownStatus = errors.New("unknown status")
	// ErrStatusSet is returned by NewStatusSet for a malformed catalog
	ErrStatusSet = errors.New("invalid status set")
)

// StatusDef describes one status a task can be in
type StatusDef struct {
	ID       models.Status
	Label    string
	Terminal bool
}

// StatusSet is the ordered catalog of statuses. Exactly one entry is
// terminal; Initial is the status new occurrences start in.
type StatusSet struct {
	defs    []StatusDef
	byID    map[models.Status]StatusDef
	initial models.Status
	term    models.Status
}

// DefaultStatuses returns todo, in-progress, blocked and completed
func DefaultStatuses() StatusSet {
	s, _ := NewStatusSet([]StatusDef{
		{ID: models.StatusTodo, Label: "To Do"},
		{ID: models.StatusInProgress, Label: "In Progress"},
		{ID: models.StatusBlocked, Label: "Blocked"},
		{ID: models.StatusCompleted, Label: "Completed", Terminal: true},
	}, models.StatusTodo)
	return s
}

// NewStatusSet validates defs and returns the catalog. initial must name a
// non-terminal status.
func NewStatusSet(defs []StatusDef, initial models.Status) (StatusSet, error) {
	s := StatusSet{byID: make(map[models.Status]StatusDef, len(defs))}
	for _, d := range defs {
		if d.ID == "" {
			return StatusSet{}, fmt.Errorf("%w: empty status id", ErrStatusSet)
		}
		if _, dup := s.byID[d.ID]; dup {
			return StatusSet{}, fmt.Errorf("%w: duplicate status %q", ErrStatusSet, d.ID)
		}
		if d.Label == "" {
			d.Label = string(d.ID)
		}
		if d.Terminal {
			if s.term != "" {
				return StatusSet{}, fmt.Errorf("%w: both %q and %q are terminal", ErrStatusSet, s.term, d.ID)
			}
			s.term = d.ID
		}
		s.defs = append(s.defs, d)
		s.byID[d.ID] = d
	}
	if s.term == "" {
		return StatusSet{}, fmt.Errorf("%w: no terminal status", ErrStatusSet)
	}
	def, ok := s.byID[initial]
	if !ok || def.Terminal {
		return StatusSet{}, fmt.Errorf("%w: initial status %q must be a known non-terminal status", ErrStatusSet, initial)
	}
	s.initial = initial
	return s, nil
}

// Known reports whether id is in the catalog
func (s StatusSet) Known(id models.Status) bool {
	_, ok := s.byID[id]
	return ok
}

// IsTerminal reports whether id is the completed status
func (s StatusSet) IsTerminal(id models.Status) bool {
	return id == s.term
}

func (s StatusSet) Initial() models.Status  { return s.initial }
func (s StatusSet) Terminal() models.Status { return s.term }

// Label returns the display label, or the id for unknown statuses
func (s StatusSet) Label(id models.Status) string {
	if d, ok := s.byID[id]; ok {
		return d.Label
	}
	return string(id)
}

// All returns the statuses in display order
func (s StatusSet) All() []StatusDef {
	return append([]StatusDef(nil), s.defs...)
}

// Next returns the status after id in display order, wrapping around
func (s StatusSet) Next(id models.Status) models.Status {
	for i, d := range s.defs {
		if d.ID == id {
			return s.defs[(i+1)%len(s.defs)].ID
		}
	}
	return s.initial
}
