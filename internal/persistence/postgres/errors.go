package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/example/reservation-scheduler/internal/persistence"
)

// SQLSTATE codes mapped to persistence sentinels.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeNotNullViolation    = "23502"
	codeExclusionViolation  = "23P01"
)

// Exclusion constraint names from the schema.
const (
	roomOverlapConstraint    = "reservations_room_overlap"
	teacherOverlapConstraint = "reservations_teacher_overlap"
)

// mapError translates pgx and lib/pq errors into persistence sentinels,
// keeping the driver error in the chain.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return persistence.ErrNotFound
	}

	code, constraint, ok := sqlState(err)
	if !ok {
		return err
	}

	var sentinel error
	switch code {
	case codeExclusionViolation:
		switch constraint {
		case roomOverlapConstraint:
			sentinel = persistence.ErrRoomOverlap
		case teacherOverlapConstraint:
			sentinel = persistence.ErrTeacherOverlap
		default:
			sentinel = persistence.ErrConstraintViolation
		}
	case codeUniqueViolation:
		sentinel = persistence.ErrDuplicate
	case codeForeignKeyViolation:
		sentinel = persistence.ErrForeignKeyViolation
	case codeCheckViolation, codeNotNullViolation:
		sentinel = persistence.ErrConstraintViolation
	default:
		return err
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}

func sqlState(err error) (code, constraint string, ok bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName, true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint, true
	}
	return "", "", false
}
