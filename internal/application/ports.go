package application

import (
	"context"
	"time"

	"github.com/example/reservation-scheduler/internal/lifecycle"
)

// ReservationStore captures the persistence interactions needed by the scheduler.
// Create, Update and CreateBulk must reject overlapping active reservations
// on their own, independently of the scheduler's checks.
type ReservationStore interface {
	Create(ctx context.Context, reservation Reservation) (Reservation, error)
	Update(ctx context.Context, reservation Reservation) (Reservation, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (Reservation, error)
	FindByRoom(ctx context.Context, roomID string, includePast bool) ([]Reservation, error)
	FindByTeacher(ctx context.Context, teacherID string, includePast bool) ([]Reservation, error)
	FindByActivity(ctx context.Context, activityID string, includePast bool) ([]Reservation, error)
	CreateBulk(ctx context.Context, reservations []Reservation) ([]Reservation, error)
	DeleteBulk(ctx context.Context, ids []string) error
	Search(ctx context.Context, filter ReservationFilter) ([]Reservation, error)
	Statistics(ctx context.Context, filter ReservationFilter) (ReservationStatistics, error)
	Upcoming(ctx context.Context, limit int) ([]Reservation, error)
	Current(ctx context.Context) ([]Reservation, error)
}

// RoomCatalog exposes room lookup operations.
type RoomCatalog interface {
	FindRoom(ctx context.Context, id string) (Room, error)
}

// TeacherDirectory exposes teacher lookup operations.
type TeacherDirectory interface {
	FindTeacher(ctx context.Context, id string) (Teacher, error)
	HasTeachingCapability(ctx context.Context, id string) (bool, error)
}

// ActivityCatalog exposes activity lookup operations.
type ActivityCatalog interface {
	FindActivity(ctx context.Context, id string) (Activity, error)
}

// PersonDirectory resolves the people who approve, reject or cancel reservations.
type PersonDirectory interface {
	FindPerson(ctx context.Context, id string) (Person, error)
}

// StateCatalog exposes the lifecycle state catalog.
type StateCatalog interface {
	InitialState(ctx context.Context) (ReservationState, error)
	FindByCode(ctx context.Context, code lifecycle.State) (ReservationState, error)
}

// Locker serializes check-then-write sequences on the given keys. The
// returned release function must be called exactly once.
type Locker interface {
	Acquire(ctx context.Context, keys ...string) (release func(), err error)
}

// AuditRecorder receives informational reservation events.
type AuditRecorder interface {
	Record(ctx context.Context, event AuditEvent) error
}

type noopLocker struct{}

func (noopLocker) Acquire(context.Context, ...string) (func(), error) { return func() {}, nil }

type noopAudit struct{}

func (noopAudit) Record(context.Context, AuditEvent) error { return nil }

// RoomLockKey and TeacherLockKey name the lock guarding a resource's calendar.
func RoomLockKey(roomID string) string { return "reservation:room:" + roomID }

func TeacherLockKey(teacherID string) string { return "reservation:teacher:" + teacherID }

func lockKeysFor(reservations ...Reservation) []string {
	seen := make(map[string]struct{}, 2*len(reservations))
	keys := make([]string, 0, 2*len(reservations))
	add := func(key string) {
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	for _, r := range reservations {
		if r.RoomID != "" {
			add(RoomLockKey(r.RoomID))
		}
		if r.TeacherID != "" {
			add(TeacherLockKey(r.TeacherID))
		}
	}
	return keys
}

func nowOr(now func() time.Time) func() time.Time {
	if now == nil {
		return time.Now
	}
	return now
}
