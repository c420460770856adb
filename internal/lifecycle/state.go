// Package lifecycle holds the reservation approval states and the table of
// legal transitions between them. It has no knowledge of persistence.
package lifecycle

import (
	"errors"
	"fmt"
)

// State is the stable code of a reservation lifecycle state.
type State string

const (
	Pending   State = "PENDING"
	Confirmed State = "CONFIRMED"
	Rejected  State = "REJECTED"
	Canceled  State = "CANCELED"
	Completed State = "COMPLETED"
)

var transitions = map[State][]State{
	Pending:   {Confirmed, Rejected, Canceled},
	Confirmed: {Canceled, Completed},
	Rejected:  nil,
	Canceled:  nil,
	Completed: nil,
}

// States lists every known state in lifecycle order.
func States() []State {
	return []State{Pending, Confirmed, Rejected, Canceled, Completed}
}

// ActiveStates are the states that hold a claim on a room and a teacher.
func ActiveStates() []State {
	return []State{Pending, Confirmed}
}

// Known reports whether s is part of the catalog.
func (s State) Known() bool {
	_, ok := transitions[s]
	return ok
}

// Active reports whether a reservation in s still claims its room and teacher.
func (s State) Active() bool {
	return s == Pending || s == Confirmed
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s.Known() && len(transitions[s]) == 0
}

// CanTransition reports whether moving from s to target is legal.
func (s State) CanTransition(target State) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Transition validates the move from s to target.
func Transition(from, to State) error {
	if !from.CanTransition(to) {
		return &TransitionError{From: from, To: to}
	}
	return nil
}

// ErrInvalidTransition is matched by every *TransitionError.
var ErrInvalidTransition = errors.New("lifecycle: invalid transition")

// TransitionError reports an illegal lifecycle move.
type TransitionError struct {
	From State
	To   State
}

func (e *TransitionError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
