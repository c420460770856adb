package scheduler

import "time"

// Booking is the minimal view of a reservation needed to reason about overlaps.
type Booking struct {
	ID        string
	RoomID    string
	TeacherID string
	Start     time.Time
	End       time.Time
}

// ConflictKind describes which shared resource is double-booked.
type ConflictKind string

const (
	// ConflictRoom indicates the room is already claimed for an overlapping interval.
	ConflictRoom ConflictKind = "ROOM"
	// ConflictTeacher indicates the teacher is already claimed for an overlapping interval.
	ConflictTeacher ConflictKind = "TEACHER"
)

// Conflict pairs an existing booking with the resource it collides on.
type Conflict struct {
	Kind    ConflictKind
	Booking Booking
}

// DetectConflicts identifies the existing bookings that collide with the
// candidate, either on its room or on its teacher. The candidate itself is
// ignored when its ID appears in existing. Room conflicts are listed before
// teacher conflicts, each in the order of existing.
func DetectConflicts(existing []Booking, candidate Booking) []Conflict {
	var rooms, teachers []Conflict
	for _, other := range existing {
		if candidate.ID != "" && other.ID == candidate.ID {
			continue
		}
		if !Overlaps(candidate.Start, candidate.End, other.Start, other.End) {
			continue
		}
		if candidate.RoomID != "" && other.RoomID == candidate.RoomID {
			rooms = append(rooms, Conflict{Kind: ConflictRoom, Booking: other})
		}
		if candidate.TeacherID != "" && other.TeacherID == candidate.TeacherID {
			teachers = append(teachers, Conflict{Kind: ConflictTeacher, Booking: other})
		}
	}
	return append(rooms, teachers...)
}
