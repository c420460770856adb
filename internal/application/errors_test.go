package application

import (
	"errors"
	"fmt"
	"testing"

	"github.com/example/reservation-scheduler/internal/lifecycle"
)

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	var err *ValidationError
	if err.Error() != "" {
		t.Fatalf("expected empty string for nil error, got %q", err.Error())
	}

	empty := &ValidationError{}
	if got := empty.Error(); got != "validation failed" {
		t.Fatalf("expected generic message for empty error, got %q", got)
	}

	withFields := &ValidationError{FieldErrors: map[string]string{"teacher_id": "not a qualified teacher", "end_time": "required"}}
	if got := withFields.Error(); got != "end_time: required; teacher_id: not a qualified teacher" {
		t.Fatalf("unexpected message for populated error: %q", got)
	}
}

func TestValidationError_HasErrors(t *testing.T) {
	t.Parallel()

	if err := (&ValidationError{}).HasErrors(); err {
		t.Fatalf("expected HasErrors to report false for empty error")
	}

	if err := (&ValidationError{FieldErrors: map[string]string{"field": "bad"}}).HasErrors(); !err {
		t.Fatalf("expected HasErrors to report true when fields are present")
	}
}

func TestValidationError_AddAndMerge(t *testing.T) {
	t.Parallel()

	base := &ValidationError{}
	base.add("first", "value")
	if got := base.FieldErrors["first"]; got != "value" {
		t.Fatalf("expected add to populate map, got %q", got)
	}

	other := &ValidationError{FieldErrors: map[string]string{"second": "another"}}
	base.merge(other)
	if got := base.FieldErrors["second"]; got != "another" {
		t.Fatalf("expected merge to copy field, got %q", got)
	}

	base.merge(nil)
	if len(base.FieldErrors) != 2 {
		t.Fatalf("expected merge with nil to leave fields unchanged")
	}
}

func TestTypedErrors_MatchSentinels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		sentinel error
		message  string
		kind     string
	}{
		{name: "not found", err: &NotFoundError{Entity: "room", ID: "r1"}, sentinel: ErrNotFound, message: "room not found", kind: "not_found"},
		{name: "inactive", err: &InactiveEntityError{Entity: "room", ID: "r1"}, sentinel: ErrInactiveEntity, message: "room inactive", kind: "inactive_entity"},
		{name: "conflict", err: &ConflictError{Kind: ConflictRoom, Conflicts: []Reservation{{ID: "a"}}}, sentinel: ErrConflict, message: "room conflict with a", kind: "conflict"},
		{name: "transition", err: lifecycle.Transition(lifecycle.Rejected, lifecycle.Confirmed), sentinel: ErrInvalidTransition, message: "invalid transition from REJECTED to CONFIRMED", kind: "invalid_transition"},
		{name: "immutable", err: &ImmutableHistoricalRecordError{ID: "a"}, sentinel: ErrImmutableRecord, message: "reservation already ended", kind: "immutable_record"},
		{name: "hours", err: &OutsideOperatingHoursError{Window: DefaultDailyWindow()}, sentinel: ErrOutsideOperatingHours, message: "outside operating hours 08:00-22:00", kind: "outside_operating_hours"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			wrapped := fmt.Errorf("wrapped: %w", tc.err)
			if !errors.Is(wrapped, tc.sentinel) {
				t.Fatalf("expected %v to match %v", tc.err, tc.sentinel)
			}
			if tc.err.Error() != tc.message {
				t.Fatalf("unexpected message %q", tc.err.Error())
			}
			if got := ErrorKind(wrapped); got != tc.kind {
				t.Fatalf("ErrorKind() = %q, want %q", got, tc.kind)
			}
			if !isDomainError(wrapped) {
				t.Fatalf("expected %v to be a domain error", tc.err)
			}
		})
	}

	if isDomainError(errors.New("disk full")) {
		t.Fatal("infrastructure errors must not be treated as domain errors")
	}
	if ErrorKind(errors.New("disk full")) != "unexpected" {
		t.Fatal("expected unexpected kind for infrastructure errors")
	}
}
