package application

import (
	"time"

	"github.com/example/reservation-scheduler/internal/lifecycle"
	"github.com/example/reservation-scheduler/internal/recurrence"
)

// Principal represents the authenticated person invoking a service method.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// Reservation is a booking of a room by a teacher for [StartTime, EndTime).
type Reservation struct {
	ID           string
	RoomID       string
	TeacherID    string
	ActivityID   string
	StartTime    time.Time
	EndTime      time.Time
	StateCode    lifecycle.State
	ApprovedBy   string
	RejectedBy   string
	CanceledBy   string
	RejectReason string
	CancelReason string
	Observations string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Active reports whether the reservation still claims its room and teacher.
func (r Reservation) Active() bool {
	return r.StateCode.Active()
}

// ReservationInput captures caller provided reservation fields. StateCode is
// optional; the catalog's initial state is used when it is empty.
type ReservationInput struct {
	RoomID       string
	TeacherID    string
	ActivityID   string
	StartTime    time.Time
	EndTime      time.Time
	StateCode    lifecycle.State
	Observations string
}

// ReservationPatch lists the fields an update may change. Nil leaves the
// stored value untouched; an empty ActivityID clears the link.
type ReservationPatch struct {
	RoomID       *string
	TeacherID    *string
	ActivityID   *string
	StartTime    *time.Time
	EndTime      *time.Time
	Observations *string
}

// RecurringReservationInput is an anchor reservation plus the rule that repeats it.
type RecurringReservationInput struct {
	ReservationInput
	Recurrence recurrence.Rule
}

// BulkItemError records why one item of a batch was skipped.
type BulkItemError struct {
	Index  int
	Reason string
	Err    error
}

// BulkCreateResult summarizes a best-effort batch.
type BulkCreateResult struct {
	Requested    int
	CreatedCount int
	Created      []Reservation
	Errors       []BulkItemError
}

// BulkDeleteResult summarizes an all-or-nothing deletion.
type BulkDeleteResult struct {
	DeletedCount int
	IDs          []string
}

// ReservationConflict is one existing reservation blocking a candidate.
type ReservationConflict struct {
	Kind        ConflictKind
	Reservation Reservation
}

// RecurrentConflict is a conflict found for one expanded occurrence.
type RecurrentConflict struct {
	OccurrenceIndex int
	Start           time.Time
	End             time.Time
	Kind            ConflictKind
	Reservation     Reservation
}

// ConflictReport aggregates conflicts for a candidate and its recurrences.
type ConflictReport struct {
	Punctual  []ReservationConflict
	Recurrent []RecurrentConflict
	Total     int
}

// ConflictQuery describes a prospective reservation for diagnostics.
type ConflictQuery struct {
	RoomID     string
	TeacherID  string
	StartTime  time.Time
	EndTime    time.Time
	ExcludeID  string
	Recurrence *recurrence.Rule
}

// ReservationFilter narrows reservation searches. Zero values do not filter.
type ReservationFilter struct {
	RoomID     string
	TeacherID  string
	ActivityID string
	States     []lifecycle.State
	From       *time.Time
	To         *time.Time
	EndsBy     *time.Time
	ExcludeID  string
	Limit      int
	Offset     int
}

// ReservationStatistics aggregates reservations matching a filter.
type ReservationStatistics struct {
	Total         int
	ByState       map[lifecycle.State]int
	BookedMinutes int64
}

// Room is the narrow catalog view validation needs.
type Room struct {
	ID     string
	Active bool
}

// Teacher is the narrow directory view validation needs.
type Teacher struct {
	ID     string
	Active bool
}

// Activity is the narrow catalog view validation needs.
type Activity struct {
	ID     string
	Active bool
}

// Person is anyone who can act on a reservation, such as an approver.
type Person struct {
	ID     string
	Active bool
}

// ReservationState is a lifecycle state catalog entry.
type ReservationState struct {
	Code    lifecycle.State
	Name    string
	Initial bool
}

// AuditEventType names a reservation event.
type AuditEventType string

const (
	AuditReservationCreated   AuditEventType = "reservation.created"
	AuditReservationUpdated   AuditEventType = "reservation.updated"
	AuditReservationDeleted   AuditEventType = "reservation.deleted"
	AuditReservationApproved  AuditEventType = "reservation.approved"
	AuditReservationRejected  AuditEventType = "reservation.rejected"
	AuditReservationCanceled  AuditEventType = "reservation.canceled"
	AuditReservationCompleted AuditEventType = "reservation.completed"
)

// AuditEvent is an informational record of a reservation change.
type AuditEvent struct {
	ID          string
	Type        AuditEventType
	ActorID     string
	OccurredAt  time.Time
	Reservation Reservation
}
