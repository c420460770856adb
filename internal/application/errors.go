package application

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/example/reservation-scheduler/internal/lifecycle"
	"github.com/example/reservation-scheduler/internal/scheduler"
)

var (
	// ErrUnauthorized is returned when the acting principal lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrInactiveEntity is returned when a referenced entity exists but is disabled.
	ErrInactiveEntity = errors.New("application: inactive entity")
	// ErrConflict is returned when a room or teacher is already claimed.
	ErrConflict = errors.New("application: scheduling conflict")
	// ErrInvalidTransition is returned for illegal lifecycle moves.
	ErrInvalidTransition = lifecycle.ErrInvalidTransition
	// ErrImmutableRecord is returned when deleting a reservation that already ended.
	ErrImmutableRecord = errors.New("application: immutable historical record")
	// ErrOutsideOperatingHours is returned when a reservation falls outside the room's daily window.
	ErrOutsideOperatingHours = errors.New("application: outside operating hours")
)

// NotFoundError reports a missing entity by kind and identifier.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return ""
	}
	return e.Entity + " not found"
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// InactiveEntityError reports a referenced entity that exists but is disabled.
type InactiveEntityError struct {
	Entity string
	ID     string
}

func (e *InactiveEntityError) Error() string {
	if e == nil {
		return ""
	}
	return e.Entity + " inactive"
}

func (e *InactiveEntityError) Is(target error) bool { return target == ErrInactiveEntity }

// ConflictKind names the resource a conflict was found on.
type ConflictKind = scheduler.ConflictKind

const (
	ConflictRoom    = scheduler.ConflictRoom
	ConflictTeacher = scheduler.ConflictTeacher
)

// ConflictError lists the existing reservations that block a write.
type ConflictError struct {
	Kind      ConflictKind
	Conflicts []Reservation
}

func (e *ConflictError) Error() string {
	if e == nil {
		return ""
	}
	ids := make([]string, 0, len(e.Conflicts))
	for _, r := range e.Conflicts {
		ids = append(ids, r.ID)
	}
	if len(ids) == 0 {
		return strings.ToLower(string(e.Kind)) + " conflict"
	}
	return fmt.Sprintf("%s conflict with %s", strings.ToLower(string(e.Kind)), strings.Join(ids, ", "))
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// InvalidTransitionError reports an illegal lifecycle move.
type InvalidTransitionError = lifecycle.TransitionError

// ImmutableHistoricalRecordError reports an attempt to delete a reservation
// whose end time has already passed.
type ImmutableHistoricalRecordError struct {
	ID      string
	EndTime time.Time
}

func (e *ImmutableHistoricalRecordError) Error() string {
	if e == nil {
		return ""
	}
	return "reservation already ended"
}

func (e *ImmutableHistoricalRecordError) Is(target error) bool { return target == ErrImmutableRecord }

// OutsideOperatingHoursError reports a reservation that does not fit the
// room's daily window.
type OutsideOperatingHoursError struct {
	RoomID string
	Start  time.Time
	End    time.Time
	Window DailyWindow
}

func (e *OutsideOperatingHoursError) Error() string {
	if e == nil {
		return ""
	}
	return "outside operating hours " + e.Window.String()
}

func (e *OutsideOperatingHoursError) Is(target error) bool { return target == ErrOutsideOperatingHours }

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

func newValidationError(field, reason string) *ValidationError {
	v := &ValidationError{}
	v.add(field, reason)
	return v
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+v.FieldErrors[field])
	}
	return strings.Join(parts, "; ")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}

// isDomainError reports whether err is one of the typed business errors, as
// opposed to an infrastructure failure.
func isDomainError(err error) bool {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return true
	}
	for _, sentinel := range []error{
		ErrNotFound,
		ErrInactiveEntity,
		ErrConflict,
		ErrInvalidTransition,
		ErrImmutableRecord,
		ErrOutsideOperatingHours,
		ErrUnauthorized,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
