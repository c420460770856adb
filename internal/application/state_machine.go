package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/reservation-scheduler/internal/lifecycle"
)

// StateMachine applies lifecycle transitions to reservations. It validates
// and returns the transitioned value; persisting it is the caller's job.
type StateMachine struct {
	states StateCatalog
	people PersonDirectory
	now    func() time.Time
}

// NewStateMachine wires the state catalog and the person directory used to
// resolve actors.
func NewStateMachine(states StateCatalog, people PersonDirectory, now func() time.Time) *StateMachine {
	return &StateMachine{states: states, people: people, now: nowOr(now)}
}

// InitialState returns the state new reservations start in.
func (m *StateMachine) InitialState(ctx context.Context) (lifecycle.State, error) {
	if m.states == nil {
		return "", errors.New("state catalog not configured")
	}
	state, err := m.states.InitialState(ctx)
	if err != nil {
		return "", fmt.Errorf("load initial state: %w", err)
	}
	if !state.Code.Known() {
		return "", fmt.Errorf("state catalog returned unknown initial state %q", state.Code)
	}
	return state.Code, nil
}

// Approve confirms a pending reservation on behalf of an active person.
func (m *StateMachine) Approve(ctx context.Context, r Reservation, approverID string) (Reservation, error) {
	if err := lifecycle.Transition(r.StateCode, lifecycle.Confirmed); err != nil {
		return Reservation{}, err
	}
	if err := m.ensureActor(ctx, "approved_by", approverID); err != nil {
		return Reservation{}, err
	}
	r.StateCode = lifecycle.Confirmed
	r.ApprovedBy = approverID
	return r, nil
}

// Reject turns a pending reservation down.
func (m *StateMachine) Reject(ctx context.Context, r Reservation, rejecterID, reason string) (Reservation, error) {
	if err := lifecycle.Transition(r.StateCode, lifecycle.Rejected); err != nil {
		return Reservation{}, err
	}
	if err := m.ensureActor(ctx, "rejected_by", rejecterID); err != nil {
		return Reservation{}, err
	}
	r.StateCode = lifecycle.Rejected
	r.RejectedBy = rejecterID
	r.RejectReason = strings.TrimSpace(reason)
	return r, nil
}

// Cancel withdraws a pending or confirmed reservation.
func (m *StateMachine) Cancel(ctx context.Context, r Reservation, cancelerID, reason string) (Reservation, error) {
	if err := lifecycle.Transition(r.StateCode, lifecycle.Canceled); err != nil {
		return Reservation{}, err
	}
	if err := m.ensureActor(ctx, "canceled_by", cancelerID); err != nil {
		return Reservation{}, err
	}
	r.StateCode = lifecycle.Canceled
	r.CanceledBy = cancelerID
	r.CancelReason = strings.TrimSpace(reason)
	return r, nil
}

// Complete closes a confirmed reservation once its end time has passed.
func (m *StateMachine) Complete(ctx context.Context, r Reservation) (Reservation, error) {
	if err := lifecycle.Transition(r.StateCode, lifecycle.Completed); err != nil {
		return Reservation{}, err
	}
	if m.now().Before(r.EndTime) {
		return Reservation{}, newValidationError("end_time", "not yet finished")
	}
	r.StateCode = lifecycle.Completed
	return r, nil
}

func (m *StateMachine) ensureActor(ctx context.Context, field, id string) error {
	if strings.TrimSpace(id) == "" {
		return newValidationError(field, "required")
	}
	if m.people == nil {
		return errors.New("person directory not configured")
	}
	person, err := m.people.FindPerson(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return &NotFoundError{Entity: "person", ID: id}
		}
		return fmt.Errorf("find person: %w", err)
	}
	if !person.Active {
		return &InactiveEntityError{Entity: "person", ID: id}
	}
	return nil
}
