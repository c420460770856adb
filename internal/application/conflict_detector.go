package application

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/example/reservation-scheduler/internal/lifecycle"
	"github.com/example/reservation-scheduler/internal/recurrence"
	"github.com/example/reservation-scheduler/internal/scheduler"
)

// ConflictDetector finds active reservations that collide with a candidate
// interval. It only reads from the store.
type ConflictDetector struct {
	reservations ReservationStore
	engine       *recurrence.Engine
}

// NewConflictDetector builds a detector over the store. A nil engine expands
// recurrences in UTC.
func NewConflictDetector(reservations ReservationStore, engine *recurrence.Engine) *ConflictDetector {
	if engine == nil {
		engine = recurrence.NewEngine(nil)
	}
	return &ConflictDetector{reservations: reservations, engine: engine}
}

// DetectRoomConflicts lists active reservations on roomID overlapping [start, end).
func (d *ConflictDetector) DetectRoomConflicts(ctx context.Context, roomID string, start, end time.Time, excludeID string) ([]Reservation, error) {
	return d.detect(ctx, ReservationFilter{RoomID: roomID}, start, end, excludeID)
}

// DetectTeacherConflicts lists active reservations of teacherID, in any room,
// overlapping [start, end).
func (d *ConflictDetector) DetectTeacherConflicts(ctx context.Context, teacherID string, start, end time.Time, excludeID string) ([]Reservation, error) {
	return d.detect(ctx, ReservationFilter{TeacherID: teacherID}, start, end, excludeID)
}

// DetectRecurrentConflicts runs both checks for every occurrence and tags
// each hit with the occurrence that triggered it.
func (d *ConflictDetector) DetectRecurrentConflicts(ctx context.Context, occurrences []recurrence.Occurrence, roomID, teacherID string) ([]RecurrentConflict, error) {
	var out []RecurrentConflict
	for _, occ := range occurrences {
		found, err := d.detectBoth(ctx, roomID, teacherID, occ.Start, occ.End, "")
		if err != nil {
			return nil, err
		}
		for _, c := range found {
			out = append(out, RecurrentConflict{
				OccurrenceIndex: occ.Index,
				Start:           occ.Start,
				End:             occ.End,
				Kind:            c.Kind,
				Reservation:     c.Reservation,
			})
		}
	}
	return out, nil
}

// DetectAll reports conflicts for the query's own interval and, when a
// recurrence is attached, for every expanded occurrence.
func (d *ConflictDetector) DetectAll(ctx context.Context, query ConflictQuery) (ConflictReport, error) {
	vErr := &ValidationError{}
	validateInterval(query.StartTime, query.EndTime, vErr)
	if query.RoomID == "" && query.TeacherID == "" {
		vErr.add("room_id", "room or teacher is required")
	}
	if vErr.HasErrors() {
		return ConflictReport{}, vErr
	}

	punctual, err := d.detectBoth(ctx, query.RoomID, query.TeacherID, query.StartTime, query.EndTime, query.ExcludeID)
	if err != nil {
		return ConflictReport{}, err
	}
	report := ConflictReport{Punctual: punctual}

	if query.Recurrence != nil {
		occurrences, err := d.engine.Expand(query.StartTime, query.EndTime, *query.Recurrence)
		if err != nil {
			return ConflictReport{}, recurrenceValidationError(err)
		}
		report.Recurrent, err = d.DetectRecurrentConflicts(ctx, occurrences, query.RoomID, query.TeacherID)
		if err != nil {
			return ConflictReport{}, err
		}
	}

	report.Total = len(report.Punctual) + len(report.Recurrent)
	return report, nil
}

func (d *ConflictDetector) detectBoth(ctx context.Context, roomID, teacherID string, start, end time.Time, excludeID string) ([]ReservationConflict, error) {
	var out []ReservationConflict
	if roomID != "" {
		rooms, err := d.DetectRoomConflicts(ctx, roomID, start, end, excludeID)
		if err != nil {
			return nil, err
		}
		for _, r := range rooms {
			out = append(out, ReservationConflict{Kind: ConflictRoom, Reservation: r})
		}
	}
	if teacherID != "" {
		teachers, err := d.DetectTeacherConflicts(ctx, teacherID, start, end, excludeID)
		if err != nil {
			return nil, err
		}
		for _, r := range teachers {
			out = append(out, ReservationConflict{Kind: ConflictTeacher, Reservation: r})
		}
	}
	return out, nil
}

// detect narrows the query in the store, then re-applies the overlap and
// state tests so the result never depends on the store's filtering.
func (d *ConflictDetector) detect(ctx context.Context, filter ReservationFilter, start, end time.Time, excludeID string) ([]Reservation, error) {
	if d == nil || d.reservations == nil {
		return nil, fmt.Errorf("reservation store not configured")
	}
	filter.States = lifecycle.ActiveStates()
	filter.From = &start
	filter.To = &end
	filter.ExcludeID = excludeID

	candidates, err := d.reservations.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search reservations: %w", err)
	}

	var out []Reservation
	for _, r := range candidates {
		if !r.Active() || (excludeID != "" && r.ID == excludeID) {
			continue
		}
		if scheduler.Overlaps(start, end, r.StartTime, r.EndTime) {
			out = append(out, r)
		}
	}
	return out, nil
}

// batchConflicts checks a candidate against reservations accepted earlier in
// the same batch and not yet persisted, keeping hits of the given kind.
// Bookings are keyed by position so results never depend on generated ids.
func batchConflicts(accepted []Reservation, candidate Reservation, kind ConflictKind) []Reservation {
	if len(accepted) == 0 {
		return nil
	}
	bookings := make([]scheduler.Booking, 0, len(accepted))
	for i, r := range accepted {
		if !r.Active() {
			continue
		}
		b := toBooking(r)
		b.ID = strconv.Itoa(i)
		bookings = append(bookings, b)
	}

	target := toBooking(candidate)
	target.ID = ""
	var out []Reservation
	for _, c := range scheduler.DetectConflicts(bookings, target) {
		if c.Kind != kind {
			continue
		}
		i, _ := strconv.Atoi(c.Booking.ID)
		out = append(out, accepted[i])
	}
	return out
}

func toBooking(r Reservation) scheduler.Booking {
	return scheduler.Booking{ID: r.ID, RoomID: r.RoomID, TeacherID: r.TeacherID, Start: r.StartTime, End: r.EndTime}
}
