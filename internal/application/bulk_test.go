package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/example/reservation-scheduler/internal/lifecycle"
	"github.com/example/reservation-scheduler/internal/persistence"
	"github.com/example/reservation-scheduler/internal/recurrence"
)

func recurrenceRuleMWF(until time.Time) recurrence.Rule {
	return recurrence.Rule{
		Frequency:  recurrence.FrequencyWeekly,
		Interval:   1,
		DaysOfWeek: []time.Weekday{time.Monday, time.Wednesday, time.Friday},
		Until:      &until,
	}
}

func TestCreateBulkReservations_BestEffort(t *testing.T) {
	t.Parallel()

	h := newSchedulerHarness()
	result, err := h.scheduler.CreateBulkReservations(context.Background(), []ReservationInput{
		newInput("room-a", "teacher-x", at(3, 8, 0), at(3, 9, 0)),
		newInput("room-closed", "teacher-x", at(3, 10, 0), at(3, 11, 0)),
		newInput("room-b", "teacher-y", at(3, 8, 0), at(3, 9, 0)),
	})
	if err != nil {
		t.Fatalf("CreateBulkReservations returned error: %v", err)
	}
	if result.Requested != 3 || result.CreatedCount != 2 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if len(result.Errors) != 1 || result.Errors[0].Index != 1 || result.Errors[0].Reason != "room inactive" {
		t.Fatalf("unexpected item errors: %+v", result.Errors)
	}
	if !errors.Is(result.Errors[0].Err, ErrInactiveEntity) {
		t.Fatalf("expected typed item error, got %v", result.Errors[0].Err)
	}
	if h.store.createBulkCalls != 1 || len(h.store.lastBulk) != 2 {
		t.Fatalf("expected a single store call with two items, got %d calls", h.store.createBulkCalls)
	}
	if len(h.audit.types()) != 2 {
		t.Fatalf("expected one audit event per created reservation")
	}
}

func TestCreateBulkReservations_ChecksEarlierItemsInBatch(t *testing.T) {
	t.Parallel()

	h := newSchedulerHarness()
	result, err := h.scheduler.CreateBulkReservations(context.Background(), []ReservationInput{
		newInput("room-a", "teacher-x", at(3, 8, 0), at(3, 10, 0)),
		newInput("room-a", "teacher-y", at(3, 9, 0), at(3, 11, 0)),
		newInput("room-b", "teacher-x", at(3, 9, 30), at(3, 10, 30)),
		newInput("room-a", "teacher-y", at(3, 10, 0), at(3, 11, 0)),
	})
	if err != nil {
		t.Fatalf("CreateBulkReservations returned error: %v", err)
	}
	if result.CreatedCount != 2 {
		t.Fatalf("expected 2 created, got %+v", result)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("expected 2 item errors, got %+v", result.Errors)
	}

	var roomConflict, teacherConflict *ConflictError
	if !errors.As(result.Errors[0].Err, &roomConflict) || result.Errors[0].Index != 1 || roomConflict.Kind != ConflictRoom {
		t.Fatalf("expected item 1 to hit a room conflict, got %+v", result.Errors[0])
	}
	if !errors.As(result.Errors[1].Err, &teacherConflict) || result.Errors[1].Index != 2 || teacherConflict.Kind != ConflictTeacher {
		t.Fatalf("expected item 2 to hit a teacher conflict, got %+v", result.Errors[1])
	}
	if roomConflict.Conflicts[0].ID != result.Created[0].ID {
		t.Fatalf("expected the conflict to name the earlier batch item")
	}
}

func TestCreateBulkReservations_LocksUnionOfKeys(t *testing.T) {
	t.Parallel()

	h := newSchedulerHarness()
	_, err := h.scheduler.CreateBulkReservations(context.Background(), []ReservationInput{
		newInput("room-a", "teacher-x", at(3, 8, 0), at(3, 9, 0)),
		newInput("room-a", "teacher-y", at(3, 9, 0), at(3, 10, 0)),
	})
	if err != nil {
		t.Fatalf("CreateBulkReservations returned error: %v", err)
	}
	if len(h.locker.acquired) != 1 {
		t.Fatalf("expected a single lock acquisition, got %d", len(h.locker.acquired))
	}
	want := []string{RoomLockKey("room-a"), TeacherLockKey("teacher-x"), TeacherLockKey("teacher-y")}
	got := h.locker.acquired[0]
	if len(got) != len(want) {
		t.Fatalf("unexpected keys: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected keys: %v", got)
		}
	}
}

func TestCreateBulkReservations_AllItemsRejected(t *testing.T) {
	t.Parallel()

	h := newSchedulerHarness()
	result, err := h.scheduler.CreateBulkReservations(context.Background(), []ReservationInput{
		newInput("room-closed", "teacher-x", at(3, 8, 0), at(3, 9, 0)),
		newInput("room-a", "teacher-x", at(3, 9, 0), at(3, 8, 0)),
	})
	if err != nil {
		t.Fatalf("CreateBulkReservations returned error: %v", err)
	}
	if result.CreatedCount != 0 || len(result.Errors) != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if h.store.createBulkCalls != 0 {
		t.Fatalf("expected no store call when nothing is valid")
	}
}

func TestCreateBulkReservations_InfrastructureFailureAborts(t *testing.T) {
	t.Parallel()

	h := newSchedulerHarness()
	boom := errors.New("database is locked")
	h.catalog.err = boom

	_, err := h.scheduler.CreateBulkReservations(context.Background(), []ReservationInput{
		newInput("room-a", "teacher-x", at(3, 8, 0), at(3, 9, 0)),
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected infrastructure error to abort the batch, got %v", err)
	}
}

func TestCreateBulkReservations_StoreOverlapBecomesConflict(t *testing.T) {
	t.Parallel()

	h := newSchedulerHarness()
	h.store.createBulkErr = &persistence.RowError{ID: "res-2", Err: persistence.ErrTeacherOverlap}

	_, err := h.scheduler.CreateBulkReservations(context.Background(), []ReservationInput{
		newInput("room-a", "teacher-x", at(3, 8, 0), at(3, 9, 0)),
		newInput("room-b", "teacher-y", at(3, 8, 0), at(3, 9, 0)),
	})
	var conflict *ConflictError
	if !errors.As(err, &conflict) || conflict.Kind != ConflictTeacher {
		t.Fatalf("expected teacher ConflictError, got %v", err)
	}
}

func TestCreateRecurringReservation_Daily(t *testing.T) {
	t.Parallel()

	h := newSchedulerHarness()
	until := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	result, err := h.scheduler.CreateRecurringReservation(context.Background(), RecurringReservationInput{
		ReservationInput: newInput("room-a", "teacher-x", at(1, 8, 0), at(1, 9, 0)),
		Recurrence:       recurrence.Rule{Frequency: recurrence.FrequencyDaily, Interval: 2, Until: &until},
	})
	if err != nil {
		t.Fatalf("CreateRecurringReservation returned error: %v", err)
	}
	if result.CreatedCount != 5 || len(result.Errors) != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	for i, day := range []int{1, 3, 5, 7, 9} {
		r := result.Created[i]
		if !r.StartTime.Equal(at(day, 8, 0)) || !r.EndTime.Equal(at(day, 9, 0)) {
			t.Fatalf("occurrence %d: unexpected interval %v-%v", i, r.StartTime, r.EndTime)
		}
		if r.StateCode != lifecycle.Pending {
			t.Fatalf("occurrence %d: expected PENDING, got %s", i, r.StateCode)
		}
	}
}

func TestCreateRecurringReservation_WeeklyWithExistingConflict(t *testing.T) {
	t.Parallel()

	blocker := reservationFixture("blocker", "room-a", "teacher-y",
		time.Date(2025, 3, 7, 18, 30, 0, 0, time.UTC), time.Date(2025, 3, 7, 19, 30, 0, 0, time.UTC), lifecycle.Confirmed)
	h := newSchedulerHarness(blocker)

	until := time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)
	result, err := h.scheduler.CreateRecurringReservation(context.Background(), RecurringReservationInput{
		ReservationInput: newInput("room-a", "teacher-x",
			time.Date(2025, 3, 3, 18, 0, 0, 0, time.UTC), time.Date(2025, 3, 3, 19, 0, 0, 0, time.UTC)),
		Recurrence: recurrenceRuleMWF(until),
	})
	if err != nil {
		t.Fatalf("CreateRecurringReservation returned error: %v", err)
	}
	if result.Requested != 6 || result.CreatedCount != 5 {
		t.Fatalf("expected 5 of 6 occurrences created, got %+v", result)
	}
	if len(result.Errors) != 1 || result.Errors[0].Index != 2 || result.Errors[0].Reason != "room conflict with blocker" {
		t.Fatalf("unexpected item errors: %+v", result.Errors)
	}
}

func TestCreateRecurringReservation_InvalidRule(t *testing.T) {
	t.Parallel()

	h := newSchedulerHarness()
	_, err := h.scheduler.CreateRecurringReservation(context.Background(), RecurringReservationInput{
		ReservationInput: newInput("room-a", "teacher-x", at(1, 8, 0), at(1, 9, 0)),
		Recurrence:       recurrence.Rule{Frequency: "YEARLY", Interval: 1},
	})
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.FieldErrors["recurrence.type"] == "" {
		t.Fatalf("expected recurrence validation error, got %v", err)
	}

	_, err = h.scheduler.CreateRecurringReservation(context.Background(), RecurringReservationInput{
		ReservationInput: newInput("room-a", "teacher-x", at(1, 8, 0), at(1, 9, 0)),
		Recurrence:       recurrence.Rule{Frequency: recurrence.FrequencyDaily, Interval: 0},
	})
	if !errors.As(err, &vErr) || vErr.FieldErrors["recurrence.interval"] == "" {
		t.Fatalf("expected interval validation error, got %v", err)
	}
}

func TestCreateRecurringReservation_CapsOccurrences(t *testing.T) {
	t.Parallel()

	h := newSchedulerHarness()
	result, err := h.scheduler.CreateRecurringReservation(context.Background(), RecurringReservationInput{
		ReservationInput: newInput("room-a", "teacher-x", at(1, 8, 0), at(1, 9, 0)),
		Recurrence:       recurrence.Rule{Frequency: recurrence.FrequencyDaily, Interval: 1, MaxOccurrences: 500},
	})
	if err != nil {
		t.Fatalf("CreateRecurringReservation returned error: %v", err)
	}
	if result.Requested != recurrence.MaxOccurrences || result.CreatedCount != recurrence.MaxOccurrences {
		t.Fatalf("expected %d occurrences, got %+v", recurrence.MaxOccurrences, result)
	}
}

func TestDeleteBulkReservations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	seed := func() []Reservation {
		return []Reservation{
			reservationFixture("a", "room-a", "teacher-x", at(3, 8, 0), at(3, 9, 0), lifecycle.Pending),
			reservationFixture("b", "room-a", "teacher-x", at(3, 10, 0), at(3, 11, 0), lifecycle.Confirmed),
			reservationFixture("old", "room-a", "teacher-x", testBase.Add(-2*time.Hour), testBase.Add(-time.Hour), lifecycle.Completed),
		}
	}

	t.Run("deletes all", func(t *testing.T) {
		t.Parallel()
		h := newSchedulerHarness(seed()...)
		result, err := h.scheduler.DeleteBulkReservations(ctx, []string{"a", "b", "a"})
		if err != nil {
			t.Fatalf("DeleteBulkReservations returned error: %v", err)
		}
		if result.DeletedCount != 2 {
			t.Fatalf("expected duplicates to collapse, got %+v", result)
		}
		if _, ok := h.store.get("a"); ok {
			t.Fatalf("expected a to be deleted")
		}
	})

	t.Run("missing id aborts everything", func(t *testing.T) {
		t.Parallel()
		h := newSchedulerHarness(seed()...)
		_, err := h.scheduler.DeleteBulkReservations(ctx, []string{"a", "missing", "b"})
		var nf *NotFoundError
		if !errors.As(err, &nf) || nf.ID != "missing" {
			t.Fatalf("expected not found for missing, got %v", err)
		}
		if h.store.deleteBulkCalls != 0 {
			t.Fatalf("expected no deletions to be attempted")
		}
		if _, ok := h.store.get("a"); !ok {
			t.Fatalf("expected a to survive")
		}
	})

	t.Run("historical id aborts everything", func(t *testing.T) {
		t.Parallel()
		h := newSchedulerHarness(seed()...)
		_, err := h.scheduler.DeleteBulkReservations(ctx, []string{"a", "old"})
		if !errors.Is(err, ErrImmutableRecord) {
			t.Fatalf("expected immutable record error, got %v", err)
		}
		if h.store.deleteBulkCalls != 0 {
			t.Fatalf("expected no deletions to be attempted")
		}
	})

	t.Run("late disappearance fails the batch", func(t *testing.T) {
		t.Parallel()
		h := newSchedulerHarness(seed()...)
		h.store.deleteBulkErr = fmt.Errorf("delete reservations: %w", &persistence.RowError{ID: "b", Err: persistence.ErrNotFound})
		_, err := h.scheduler.DeleteBulkReservations(ctx, []string{"a", "b"})
		var nf *NotFoundError
		if !errors.As(err, &nf) || nf.ID != "b" {
			t.Fatalf("expected late not found for b, got %v", err)
		}
		if len(h.audit.types()) != 0 {
			t.Fatalf("expected no audit events for a failed batch")
		}
	})

	t.Run("empty request", func(t *testing.T) {
		t.Parallel()
		h := newSchedulerHarness(seed()...)
		var vErr *ValidationError
		if _, err := h.scheduler.DeleteBulkReservations(ctx, nil); !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}
