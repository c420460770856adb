package persistence

import (
	"context"
	"time"
)

// ReservationRepository stores reservations. Implementations must refuse an
// active reservation that overlaps another active one on the same room or
// teacher, reporting ErrRoomOverlap or ErrTeacherOverlap.
type ReservationRepository interface {
	CreateReservation(ctx context.Context, reservation Reservation) error
	UpdateReservation(ctx context.Context, reservation Reservation) error
	DeleteReservation(ctx context.Context, id string) error
	GetReservation(ctx context.Context, id string) (Reservation, error)
	// ListByRoom, ListByTeacher and ListByActivity order by start time. A
	// non-nil endingAfter drops reservations that ended at or before it.
	ListByRoom(ctx context.Context, roomID string, endingAfter *time.Time) ([]Reservation, error)
	ListByTeacher(ctx context.Context, teacherID string, endingAfter *time.Time) ([]Reservation, error)
	ListByActivity(ctx context.Context, activityID string, endingAfter *time.Time) ([]Reservation, error)
	// CreateReservations inserts every row or none.
	CreateReservations(ctx context.Context, reservations []Reservation) error
	// DeleteReservations deletes every id or none; a missing id yields a
	// *RowError wrapping ErrNotFound.
	DeleteReservations(ctx context.Context, ids []string) error
	SearchReservations(ctx context.Context, filter ReservationFilter) ([]Reservation, error)
	ReservationStatistics(ctx context.Context, filter ReservationFilter) (ReservationStatistics, error)
	// UpcomingReservations lists active reservations starting after now.
	UpcomingReservations(ctx context.Context, now time.Time, limit int) ([]Reservation, error)
	// CurrentReservations lists active reservations in progress at now.
	CurrentReservations(ctx context.Context, now time.Time) ([]Reservation, error)
}

// CatalogRepository reads the catalogs a reservation refers to.
type CatalogRepository interface {
	GetRoom(ctx context.Context, id string) (Room, error)
	GetPerson(ctx context.Context, id string) (Person, error)
	GetActivity(ctx context.Context, id string) (Activity, error)
	UpsertRoom(ctx context.Context, room Room) error
	UpsertPerson(ctx context.Context, person Person) error
	UpsertActivity(ctx context.Context, activity Activity) error
}

// StateRepository reads the lifecycle state catalog.
type StateRepository interface {
	GetInitialState(ctx context.Context) (ReservationState, error)
	GetState(ctx context.Context, code string) (ReservationState, error)
	ListStates(ctx context.Context) ([]ReservationState, error)
}
