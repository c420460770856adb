package persistence

import "time"

// Reservation is the stored shape of a reservation row. Nullable references
// use pointers; the active flag is never stored.
type Reservation struct {
	ID           string
	RoomID       string
	TeacherID    string
	ActivityID   *string
	StartTime    time.Time
	EndTime      time.Time
	StateCode    string
	ApprovedBy   *string
	RejectedBy   *string
	CanceledBy   *string
	RejectReason *string
	CancelReason *string
	Observations *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Room is a bookable room catalog entry.
type Room struct {
	ID     string
	Name   string
	Active bool
}

// Person is a directory entry. Teaching marks people who hold an active
// teaching role.
type Person struct {
	ID          string
	DisplayName string
	Active      bool
	Teaching    bool
}

// Activity is an optional catalog entry a reservation can be linked to.
type Activity struct {
	ID     string
	Name   string
	Active bool
}

// ReservationState is an entry of the lifecycle state catalog.
type ReservationState struct {
	Code    string
	Name    string
	Initial bool
}

// ReservationFilter narrows reservation queries. Zero values do not filter.
type ReservationFilter struct {
	RoomID     string
	TeacherID  string
	ActivityID string
	StateCodes []string
	// From and To select reservations overlapping [From, To).
	From *time.Time
	To   *time.Time
	// EndsBy selects reservations whose end is at or before the instant.
	EndsBy    *time.Time
	ExcludeID string
	Limit     int
	Offset    int
}

// ReservationStatistics aggregates reservations matching a filter.
type ReservationStatistics struct {
	Total         int
	ByState       map[string]int
	BookedMinutes int64
}
