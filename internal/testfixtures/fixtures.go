package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/reservation-scheduler/internal/application"
	"github.com/example/reservation-scheduler/internal/lifecycle"
	"github.com/example/reservation-scheduler/internal/persistence"
)

var (
	reservationCounter uint64
	roomCounter        uint64
	personCounter      uint64
	activityCounter    uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Room fixtures -----------------------------

// RoomFixture is a deterministic room catalog entry.
type RoomFixture struct {
	ID     string
	Name   string
	Active bool
}

// RoomOption configures the generated room fixture.
type RoomOption func(*RoomFixture)

// NewRoomFixture returns an active room with a unique ID and name.
func NewRoomFixture(opts ...RoomOption) RoomFixture {
	idx := atomic.AddUint64(&roomCounter, 1)
	fixture := RoomFixture{
		ID:     fmt.Sprintf("room-%03d", idx),
		Name:   fmt.Sprintf("Room %03d", idx),
		Active: true,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRoomID overrides the generated room ID.
func WithRoomID(id string) RoomOption {
	return func(f *RoomFixture) { f.ID = id }
}

// WithRoomName overrides the generated room name.
func WithRoomName(name string) RoomOption {
	return func(f *RoomFixture) { f.Name = name }
}

// WithRoomInactive marks the room as closed for booking.
func WithRoomInactive() RoomOption {
	return func(f *RoomFixture) { f.Active = false }
}

// Persistence converts the fixture to its stored shape.
func (f RoomFixture) Persistence() persistence.Room {
	return persistence.Room{ID: f.ID, Name: f.Name, Active: f.Active}
}

// ---------------------------- Person fixtures ----------------------------

// PersonFixture is a deterministic directory entry. New people teach by default.
type PersonFixture struct {
	ID          string
	DisplayName string
	Active      bool
	Teaching    bool
}

// PersonOption configures the generated person fixture.
type PersonOption func(*PersonFixture)

// NewPersonFixture returns an active teacher with a unique ID.
func NewPersonFixture(opts ...PersonOption) PersonFixture {
	idx := atomic.AddUint64(&personCounter, 1)
	fixture := PersonFixture{
		ID:          fmt.Sprintf("person-%03d", idx),
		DisplayName: fmt.Sprintf("Person %03d", idx),
		Active:      true,
		Teaching:    true,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithPersonID overrides the generated person ID.
func WithPersonID(id string) PersonOption {
	return func(f *PersonFixture) { f.ID = id }
}

// WithPersonInactive marks the person as no longer active.
func WithPersonInactive() PersonOption {
	return func(f *PersonFixture) { f.Active = false }
}

// WithoutTeaching removes the teaching capability.
func WithoutTeaching() PersonOption {
	return func(f *PersonFixture) { f.Teaching = false }
}

// Persistence converts the fixture to its stored shape.
func (f PersonFixture) Persistence() persistence.Person {
	return persistence.Person{ID: f.ID, DisplayName: f.DisplayName, Active: f.Active, Teaching: f.Teaching}
}

// --------------------------- Activity fixtures ---------------------------

// ActivityFixture is a deterministic activity catalog entry.
type ActivityFixture struct {
	ID     string
	Name   string
	Active bool
}

// ActivityOption configures the generated activity fixture.
type ActivityOption func(*ActivityFixture)

// NewActivityFixture returns an active activity with a unique ID.
func NewActivityFixture(opts ...ActivityOption) ActivityFixture {
	idx := atomic.AddUint64(&activityCounter, 1)
	fixture := ActivityFixture{
		ID:     fmt.Sprintf("activity-%03d", idx),
		Name:   fmt.Sprintf("Activity %03d", idx),
		Active: true,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithActivityID overrides the generated activity ID.
func WithActivityID(id string) ActivityOption {
	return func(f *ActivityFixture) { f.ID = id }
}

// WithActivityInactive marks the activity as retired.
func WithActivityInactive() ActivityOption {
	return func(f *ActivityFixture) { f.Active = false }
}

// Persistence converts the fixture to its stored shape.
func (f ActivityFixture) Persistence() persistence.Activity {
	return persistence.Activity{ID: f.ID, Name: f.Name, Active: f.Active}
}

// -------------------------- Reservation fixtures --------------------------

// ReservationFixture is a deterministic reservation that can be materialised
// for application or persistence tests.
type ReservationFixture struct {
	ID           string
	RoomID       string
	TeacherID    string
	ActivityID   string
	StartTime    time.Time
	EndTime      time.Time
	StateCode    lifecycle.State
	ApprovedBy   string
	Observations string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ReservationOption configures the generated reservation fixture.
type ReservationOption func(*ReservationFixture)

// NewReservationFixture returns a pending one hour reservation. Each call
// starts a day after the previous one so fixtures never overlap by accident.
func NewReservationFixture(opts ...ReservationOption) ReservationFixture {
	idx := atomic.AddUint64(&reservationCounter, 1)
	start := referenceTime.Add(time.Duration(idx) * 24 * time.Hour).Truncate(time.Hour)
	fixture := ReservationFixture{
		ID:        fmt.Sprintf("reservation-%03d", idx),
		RoomID:    "room-001",
		TeacherID: "person-001",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		StateCode: lifecycle.Pending,
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithReservationID overrides the generated reservation ID.
func WithReservationID(id string) ReservationOption {
	return func(f *ReservationFixture) { f.ID = id }
}

// WithReservationRoom sets the booked room.
func WithReservationRoom(roomID string) ReservationOption {
	return func(f *ReservationFixture) { f.RoomID = roomID }
}

// WithReservationTeacher sets the teacher holding the reservation.
func WithReservationTeacher(teacherID string) ReservationOption {
	return func(f *ReservationFixture) { f.TeacherID = teacherID }
}

// WithReservationActivity links the reservation to an activity.
func WithReservationActivity(activityID string) ReservationOption {
	return func(f *ReservationFixture) { f.ActivityID = activityID }
}

// WithReservationWindow sets the booked interval.
func WithReservationWindow(start, end time.Time) ReservationOption {
	return func(f *ReservationFixture) {
		f.StartTime = start
		f.EndTime = end
	}
}

// WithReservationState sets the lifecycle state.
func WithReservationState(state lifecycle.State) ReservationOption {
	return func(f *ReservationFixture) { f.StateCode = state }
}

// WithReservationApprover records who approved the reservation.
func WithReservationApprover(personID string) ReservationOption {
	return func(f *ReservationFixture) { f.ApprovedBy = personID }
}

// WithReservationObservations sets free-form notes.
func WithReservationObservations(text string) ReservationOption {
	return func(f *ReservationFixture) { f.Observations = text }
}

// Application converts the fixture to the application model.
func (f ReservationFixture) Application() application.Reservation {
	return application.Reservation{
		ID:           f.ID,
		RoomID:       f.RoomID,
		TeacherID:    f.TeacherID,
		ActivityID:   f.ActivityID,
		StartTime:    f.StartTime,
		EndTime:      f.EndTime,
		StateCode:    f.StateCode,
		ApprovedBy:   f.ApprovedBy,
		Observations: f.Observations,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Input returns the caller supplied fields of the fixture.
func (f ReservationFixture) Input() application.ReservationInput {
	return application.ReservationInput{
		RoomID:       f.RoomID,
		TeacherID:    f.TeacherID,
		ActivityID:   f.ActivityID,
		StartTime:    f.StartTime,
		EndTime:      f.EndTime,
		Observations: f.Observations,
	}
}

// Persistence converts the fixture to its stored shape.
func (f ReservationFixture) Persistence() persistence.Reservation {
	return persistence.Reservation{
		ID:           f.ID,
		RoomID:       f.RoomID,
		TeacherID:    f.TeacherID,
		ActivityID:   optional(f.ActivityID),
		StartTime:    f.StartTime,
		EndTime:      f.EndTime,
		StateCode:    string(f.StateCode),
		ApprovedBy:   optional(f.ApprovedBy),
		Observations: optional(f.Observations),
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
