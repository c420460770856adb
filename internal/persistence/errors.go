package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrForeignKeyViolation is returned when a referenced row does not exist.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")
	// ErrConstraintViolation is returned when a CHECK constraint rejects a row.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrRoomOverlap is returned when the store refuses a second active
	// reservation on a room for an overlapping interval.
	ErrRoomOverlap = errors.New("persistence: room reservation overlap")
	// ErrTeacherOverlap is the teacher counterpart of ErrRoomOverlap.
	ErrTeacherOverlap = errors.New("persistence: teacher reservation overlap")
)

// RowError ties a persistence sentinel to the row that triggered it.
type RowError struct {
	ID  string
	Err error
}

func (e *RowError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return e.Err.Error() + ": " + e.ID
}

func (e *RowError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
