package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/reservation-scheduler/internal/persistence"
)

const reservationColumns = `id, room_id, teacher_id, activity_id, start_at, end_at, state_code,
	approved_by, rejected_by, canceled_by, reject_reason, cancel_reason, observations,
	created_at, updated_at`

// activeStateList must match the states named in the overlap triggers.
const activeStateList = `('PENDING', 'CONFIRMED')`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type rowScanner interface {
	Scan(dest ...any) error
}

// CreateReservation inserts a reservation.
func (s *Storage) CreateReservation(ctx context.Context, reservation persistence.Reservation) error {
	return s.mapper.MapError(insertReservation(ctx, s.pool.DB(), reservation))
}

// UpdateReservation replaces every mutable column of an existing reservation.
func (s *Storage) UpdateReservation(ctx context.Context, reservation persistence.Reservation) error {
	result, err := s.pool.DB().ExecContext(ctx, `
		UPDATE reservations SET
			room_id = ?, teacher_id = ?, activity_id = ?, start_at = ?, end_at = ?, state_code = ?,
			approved_by = ?, rejected_by = ?, canceled_by = ?, reject_reason = ?, cancel_reason = ?,
			observations = ?, updated_at = ?
		WHERE id = ?`,
		reservation.RoomID,
		reservation.TeacherID,
		nullString(reservation.ActivityID),
		formatTime(reservation.StartTime),
		formatTime(reservation.EndTime),
		reservation.StateCode,
		nullString(reservation.ApprovedBy),
		nullString(reservation.RejectedBy),
		nullString(reservation.CanceledBy),
		nullString(reservation.RejectReason),
		nullString(reservation.CancelReason),
		nullString(reservation.Observations),
		formatTime(reservation.UpdatedAt),
		reservation.ID,
	)
	if err != nil {
		return s.mapper.MapError(err)
	}
	return requireAffected(result)
}

// DeleteReservation removes a reservation by ID.
func (s *Storage) DeleteReservation(ctx context.Context, id string) error {
	return s.mapper.MapError(deleteReservation(ctx, s.pool.DB(), id))
}

// GetReservation loads a reservation by ID.
func (s *Storage) GetReservation(ctx context.Context, id string) (persistence.Reservation, error) {
	row := s.pool.DB().QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id)
	reservation, err := scanReservation(row)
	if err != nil {
		return persistence.Reservation{}, s.mapper.MapError(err)
	}
	return reservation, nil
}

// ListByRoom lists the reservations of a room ordered by start time.
func (s *Storage) ListByRoom(ctx context.Context, roomID string, endingAfter *time.Time) ([]persistence.Reservation, error) {
	return s.listBy(ctx, "room_id", roomID, endingAfter)
}

// ListByTeacher lists the reservations of a teacher ordered by start time.
func (s *Storage) ListByTeacher(ctx context.Context, teacherID string, endingAfter *time.Time) ([]persistence.Reservation, error) {
	return s.listBy(ctx, "teacher_id", teacherID, endingAfter)
}

// ListByActivity lists the reservations linked to an activity ordered by start time.
func (s *Storage) ListByActivity(ctx context.Context, activityID string, endingAfter *time.Time) ([]persistence.Reservation, error) {
	return s.listBy(ctx, "activity_id", activityID, endingAfter)
}

func (s *Storage) listBy(ctx context.Context, column, value string, endingAfter *time.Time) ([]persistence.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE ` + column + ` = ?`
	args := []any{value}
	if endingAfter != nil {
		query += ` AND end_at > ?`
		args = append(args, formatTime(*endingAfter))
	}
	query += ` ORDER BY start_at, id`
	return s.queryReservations(ctx, query, args...)
}

// CreateReservations inserts every reservation in a single transaction.
func (s *Storage) CreateReservations(ctx context.Context, reservations []persistence.Reservation) error {
	return s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, reservation := range reservations {
			if err := insertReservation(ctx, tx, reservation); err != nil {
				return &persistence.RowError{ID: reservation.ID, Err: s.mapper.MapError(err)}
			}
		}
		return nil
	})
}

// DeleteReservations deletes every id in a single transaction.
func (s *Storage) DeleteReservations(ctx context.Context, ids []string) error {
	return s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, id := range ids {
			if err := deleteReservation(ctx, tx, id); err != nil {
				return &persistence.RowError{ID: id, Err: s.mapper.MapError(err)}
			}
		}
		return nil
	})
}

// SearchReservations returns reservations matching filter ordered by start time.
func (s *Storage) SearchReservations(ctx context.Context, filter persistence.ReservationFilter) ([]persistence.Reservation, error) {
	where, args := buildFilter(filter)
	query := `SELECT ` + reservationColumns + ` FROM reservations` + where + ` ORDER BY start_at, id`
	switch {
	case filter.Limit > 0:
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, max(filter.Offset, 0))
	case filter.Offset > 0:
		query += ` LIMIT -1 OFFSET ?`
		args = append(args, filter.Offset)
	}
	return s.queryReservations(ctx, query, args...)
}

// ReservationStatistics aggregates reservations matching filter. Paging
// fields are ignored.
func (s *Storage) ReservationStatistics(ctx context.Context, filter persistence.ReservationFilter) (persistence.ReservationStatistics, error) {
	filter.Limit, filter.Offset = 0, 0
	where, args := buildFilter(filter)
	rows, err := s.pool.DB().QueryContext(ctx, `SELECT state_code, start_at, end_at FROM reservations`+where, args...)
	if err != nil {
		return persistence.ReservationStatistics{}, s.mapper.MapError(err)
	}
	defer rows.Close()

	stats := persistence.ReservationStatistics{ByState: make(map[string]int)}
	for rows.Next() {
		var state, startRaw, endRaw string
		if err := rows.Scan(&state, &startRaw, &endRaw); err != nil {
			return persistence.ReservationStatistics{}, err
		}
		start, err := parseTime(startRaw)
		if err != nil {
			return persistence.ReservationStatistics{}, err
		}
		end, err := parseTime(endRaw)
		if err != nil {
			return persistence.ReservationStatistics{}, err
		}
		stats.Total++
		stats.ByState[state]++
		stats.BookedMinutes += int64(end.Sub(start) / time.Minute)
	}
	if err := rows.Err(); err != nil {
		return persistence.ReservationStatistics{}, s.mapper.MapError(err)
	}
	return stats, nil
}

// UpcomingReservations lists active reservations starting after now.
func (s *Storage) UpcomingReservations(ctx context.Context, now time.Time, limit int) ([]persistence.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
		WHERE state_code IN ` + activeStateList + ` AND start_at > ?
		ORDER BY start_at, id`
	args := []any{formatTime(now)}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.queryReservations(ctx, query, args...)
}

// CurrentReservations lists active reservations in progress at now.
func (s *Storage) CurrentReservations(ctx context.Context, now time.Time) ([]persistence.Reservation, error) {
	at := formatTime(now)
	return s.queryReservations(ctx, `SELECT `+reservationColumns+` FROM reservations
		WHERE state_code IN `+activeStateList+` AND start_at <= ? AND end_at > ?
		ORDER BY start_at, id`, at, at)
}

func (s *Storage) queryReservations(ctx context.Context, query string, args ...any) ([]persistence.Reservation, error) {
	rows, err := s.pool.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.mapper.MapError(err)
	}
	defer rows.Close()

	var reservations []persistence.Reservation
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, reservation)
	}
	if err := rows.Err(); err != nil {
		return nil, s.mapper.MapError(err)
	}
	return reservations, nil
}

func buildFilter(filter persistence.ReservationFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if filter.RoomID != "" {
		clauses = append(clauses, "room_id = ?")
		args = append(args, filter.RoomID)
	}
	if filter.TeacherID != "" {
		clauses = append(clauses, "teacher_id = ?")
		args = append(args, filter.TeacherID)
	}
	if filter.ActivityID != "" {
		clauses = append(clauses, "activity_id = ?")
		args = append(args, filter.ActivityID)
	}
	if len(filter.StateCodes) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(filter.StateCodes)), ", ")
		clauses = append(clauses, "state_code IN ("+placeholders+")")
		for _, code := range filter.StateCodes {
			args = append(args, code)
		}
	}
	if filter.From != nil {
		clauses = append(clauses, "end_at > ?")
		args = append(args, formatTime(*filter.From))
	}
	if filter.To != nil {
		clauses = append(clauses, "start_at < ?")
		args = append(args, formatTime(*filter.To))
	}
	if filter.EndsBy != nil {
		clauses = append(clauses, "end_at <= ?")
		args = append(args, formatTime(*filter.EndsBy))
	}
	if filter.ExcludeID != "" {
		clauses = append(clauses, "id <> ?")
		args = append(args, filter.ExcludeID)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func insertReservation(ctx context.Context, db execer, reservation persistence.Reservation) error {
	_, err := db.ExecContext(ctx, `INSERT INTO reservations (`+reservationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		reservation.ID,
		reservation.RoomID,
		reservation.TeacherID,
		nullString(reservation.ActivityID),
		formatTime(reservation.StartTime),
		formatTime(reservation.EndTime),
		reservation.StateCode,
		nullString(reservation.ApprovedBy),
		nullString(reservation.RejectedBy),
		nullString(reservation.CanceledBy),
		nullString(reservation.RejectReason),
		nullString(reservation.CancelReason),
		nullString(reservation.Observations),
		formatTime(reservation.CreatedAt),
		formatTime(reservation.UpdatedAt),
	)
	return err
}

func deleteReservation(ctx context.Context, db execer, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func scanReservation(row rowScanner) (persistence.Reservation, error) {
	var (
		r                                      persistence.Reservation
		activityID, approvedBy, rejectedBy     sql.NullString
		canceledBy, rejectReason, cancelReason sql.NullString
		observations                           sql.NullString
		startRaw, endRaw, createdRaw, updRaw   string
	)
	err := row.Scan(
		&r.ID, &r.RoomID, &r.TeacherID, &activityID, &startRaw, &endRaw, &r.StateCode,
		&approvedBy, &rejectedBy, &canceledBy, &rejectReason, &cancelReason, &observations,
		&createdRaw, &updRaw,
	)
	if err != nil {
		return persistence.Reservation{}, err
	}

	for _, field := range []struct {
		raw string
		dst *time.Time
	}{
		{startRaw, &r.StartTime},
		{endRaw, &r.EndTime},
		{createdRaw, &r.CreatedAt},
		{updRaw, &r.UpdatedAt},
	} {
		parsed, err := parseTime(field.raw)
		if err != nil {
			return persistence.Reservation{}, err
		}
		*field.dst = parsed
	}

	r.ActivityID = stringPtr(activityID)
	r.ApprovedBy = stringPtr(approvedBy)
	r.RejectedBy = stringPtr(rejectedBy)
	r.CanceledBy = stringPtr(canceledBy)
	r.RejectReason = stringPtr(rejectReason)
	r.CancelReason = stringPtr(cancelReason)
	r.Observations = stringPtr(observations)
	return r, nil
}
