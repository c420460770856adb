package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/reservation-scheduler/internal/lifecycle"
	"github.com/example/reservation-scheduler/internal/recurrence"
)

// leakyStore ignores every filter, so the detector has to do the overlap
// and state checks itself.
type leakyStore struct {
	*reservationStoreStub
}

func (l leakyStore) Search(ctx context.Context, filter ReservationFilter) ([]Reservation, error) {
	return l.reservationStoreStub.Search(ctx, ReservationFilter{RoomID: filter.RoomID, TeacherID: filter.TeacherID})
}

func TestConflictDetector_ReappliesFilters(t *testing.T) {
	t.Parallel()

	store := newReservationStoreStub(nil,
		reservationFixture("hit", "room-a", "teacher-x", at(3, 8, 0), at(3, 10, 0), lifecycle.Pending),
		reservationFixture("adjacent", "room-a", "teacher-x", at(3, 10, 0), at(3, 11, 0), lifecycle.Pending),
		reservationFixture("canceled", "room-a", "teacher-x", at(3, 8, 0), at(3, 10, 0), lifecycle.Canceled),
		reservationFixture("self", "room-a", "teacher-x", at(3, 9, 0), at(3, 10, 0), lifecycle.Confirmed),
	)
	detector := NewConflictDetector(leakyStore{store}, nil)

	got, err := detector.DetectRoomConflicts(context.Background(), "room-a", at(3, 9, 0), at(3, 10, 0), "self")
	if err != nil {
		t.Fatalf("DetectRoomConflicts returned error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "hit" {
		t.Fatalf("expected only hit, got %+v", got)
	}
}

func TestConflictDetector_DetectRecurrentConflicts(t *testing.T) {
	t.Parallel()

	store := newReservationStoreStub(nil,
		reservationFixture("room-block", "room-a", "teacher-y", at(3, 8, 30), at(3, 9, 30), lifecycle.Confirmed),
		reservationFixture("teacher-block", "room-b", "teacher-x", at(5, 8, 0), at(5, 8, 15), lifecycle.Pending),
	)
	detector := NewConflictDetector(store, recurrence.NewEngine(time.UTC))

	occurrences, err := recurrence.NewEngine(time.UTC).Expand(at(1, 8, 0), at(1, 9, 0), recurrence.Rule{
		Frequency:      recurrence.FrequencyDaily,
		Interval:       1,
		MaxOccurrences: 7,
	})
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}

	got, err := detector.DetectRecurrentConflicts(context.Background(), occurrences, "room-a", "teacher-x")
	if err != nil {
		t.Fatalf("DetectRecurrentConflicts returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected two conflicts, got %+v", got)
	}
	if got[0].OccurrenceIndex != 2 || got[0].Kind != ConflictRoom || got[0].Reservation.ID != "room-block" {
		t.Fatalf("unexpected first conflict: %+v", got[0])
	}
	if got[1].OccurrenceIndex != 4 || got[1].Kind != ConflictTeacher || !got[1].Start.Equal(at(5, 8, 0)) {
		t.Fatalf("unexpected second conflict: %+v", got[1])
	}
}

func TestConflictDetector_DetectAllValidates(t *testing.T) {
	t.Parallel()

	detector := NewConflictDetector(newReservationStoreStub(nil), nil)
	_, err := detector.DetectAll(context.Background(), ConflictQuery{StartTime: at(3, 9, 0), EndTime: at(3, 8, 0)})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if vErr.FieldErrors["time"] == "" || vErr.FieldErrors["room_id"] == "" {
		t.Fatalf("expected interval and target errors, got %v", vErr.FieldErrors)
	}
}

func TestBatchConflicts(t *testing.T) {
	t.Parallel()

	accepted := []Reservation{
		reservationFixture("a", "room-a", "teacher-x", at(3, 8, 0), at(3, 10, 0), lifecycle.Pending),
		reservationFixture("b", "room-b", "teacher-y", at(3, 8, 0), at(3, 10, 0), lifecycle.Pending),
		reservationFixture("c", "room-a", "teacher-z", at(3, 8, 0), at(3, 10, 0), lifecycle.Canceled),
	}
	candidate := reservationFixture("d", "room-a", "teacher-y", at(3, 9, 0), at(3, 11, 0), lifecycle.Pending)

	rooms := batchConflicts(accepted, candidate, ConflictRoom)
	if len(rooms) != 1 || rooms[0].ID != "a" {
		t.Fatalf("unexpected room conflicts: %+v", rooms)
	}
	teachers := batchConflicts(accepted, candidate, ConflictTeacher)
	if len(teachers) != 1 || teachers[0].ID != "b" {
		t.Fatalf("unexpected teacher conflicts: %+v", teachers)
	}
	if got := batchConflicts(nil, candidate, ConflictRoom); got != nil {
		t.Fatalf("expected nil for empty batch")
	}
}

func TestBatchConflicts_IgnoresMissingIDs(t *testing.T) {
	t.Parallel()

	accepted := []Reservation{
		reservationFixture("", "room-a", "teacher-x", at(3, 8, 0), at(3, 9, 0), lifecycle.Pending),
		reservationFixture("", "room-b", "teacher-y", at(3, 8, 0), at(3, 9, 0), lifecycle.Pending),
	}
	candidate := reservationFixture("", "room-b", "teacher-z", at(3, 8, 30), at(3, 9, 30), lifecycle.Pending)

	rooms := batchConflicts(accepted, candidate, ConflictRoom)
	if len(rooms) != 1 || rooms[0].RoomID != "room-b" || rooms[0].TeacherID != "teacher-y" {
		t.Fatalf("expected the room-b booking, got %+v", rooms)
	}
}

func TestNewReservationScheduler_DefaultIDsAreUnique(t *testing.T) {
	t.Parallel()

	s := NewReservationScheduler(SchedulerConfig{})
	first, second := s.idGenerator(), s.idGenerator()
	if first == "" || first == second {
		t.Fatalf("expected distinct generated ids, got %q and %q", first, second)
	}
}
