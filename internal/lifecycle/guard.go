package lifecycle

import (
	"fmt"

	"github.com/tgienger/cadence/internal/models"
)

// Decision is the outcome of a guard evaluation
type Decision int

const (
	// Proceed means the transition can be applied now.
	Proceed Decision = iota
	// HoldForConfirmation means completion is blocked by open subtasks
	// until the caller confirms.
	HoldForConfirmation
)

func (d Decision) String() string {
	switch d {
	case Proceed:
		return "proceed"
	case HoldForConfirmation:
		return "hold"
	}
	return fmt.Sprintf("Decision(%d)", int(d))
}

// Verdict is what the guard decided and why
type Verdict struct {
	Decision Decision
	// OpenSubtasks is the number of incomplete subtasks that caused a hold.
	OpenSubtasks int
}

// Guard decides whether a status transition may proceed. It is a pure
// function of the task and the requested status.
type Guard struct {
	Statuses StatusSet
}

// Evaluate checks a transition of t to next. Only a move from a
// non-terminal status into the terminal one looks at subtasks.
func (g Guard) Evaluate(t models.Task, next models.Status) (Verdict, error) {
	if !g.Statuses.Known(next) {
		return Verdict{}, fmt.Errorf("%w: %q", ErrUnknownStatus, next)
	}
	if g.Statuses.IsTerminal(t.Status) || !g.Statuses.IsTerminal(next) {
		return Verdict{Decision: Proceed}, nil
	}
	if open := t.IncompleteSubtasks(); open > 0 {
		return Verdict{Decision: HoldForConfirmation, OpenSubtasks: open}, nil
	}
	return Verdict{Decision: Proceed}, nil
}
