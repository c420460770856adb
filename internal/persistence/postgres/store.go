package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/reservation-scheduler/internal/persistence"
)

var activeStates = []string{"PENDING", "CONFIRMED"}

// CreateReservation inserts a reservation.
func (s *Store) CreateReservation(ctx context.Context, reservation persistence.Reservation) error {
	row := newReservationRow(reservation)
	return mapError(s.db.WithContext(ctx).Create(&row).Error)
}

// UpdateReservation replaces every mutable column of an existing reservation.
func (s *Store) UpdateReservation(ctx context.Context, reservation persistence.Reservation) error {
	row := newReservationRow(reservation)
	result := s.db.WithContext(ctx).
		Model(&reservationRow{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"room_id":       row.RoomID,
			"teacher_id":    row.TeacherID,
			"activity_id":   row.ActivityID,
			"start_at":      row.StartAt,
			"end_at":        row.EndAt,
			"state_code":    row.StateCode,
			"approved_by":   row.ApprovedBy,
			"rejected_by":   row.RejectedBy,
			"canceled_by":   row.CanceledBy,
			"reject_reason": row.RejectReason,
			"cancel_reason": row.CancelReason,
			"observations":  row.Observations,
			"updated_at":    row.UpdatedAt,
		})
	if result.Error != nil {
		return mapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// DeleteReservation removes a reservation by ID.
func (s *Store) DeleteReservation(ctx context.Context, id string) error {
	return deleteReservation(s.db.WithContext(ctx), id)
}

// GetReservation loads a reservation by ID.
func (s *Store) GetReservation(ctx context.Context, id string) (persistence.Reservation, error) {
	var row reservationRow
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return persistence.Reservation{}, mapError(err)
	}
	return row.model(), nil
}

// ListByRoom lists the reservations of a room ordered by start time.
func (s *Store) ListByRoom(ctx context.Context, roomID string, endingAfter *time.Time) ([]persistence.Reservation, error) {
	return s.listBy(ctx, "room_id", roomID, endingAfter)
}

// ListByTeacher lists the reservations of a teacher ordered by start time.
func (s *Store) ListByTeacher(ctx context.Context, teacherID string, endingAfter *time.Time) ([]persistence.Reservation, error) {
	return s.listBy(ctx, "teacher_id", teacherID, endingAfter)
}

// ListByActivity lists the reservations linked to an activity ordered by start time.
func (s *Store) ListByActivity(ctx context.Context, activityID string, endingAfter *time.Time) ([]persistence.Reservation, error) {
	return s.listBy(ctx, "activity_id", activityID, endingAfter)
}

func (s *Store) listBy(ctx context.Context, column, value string, endingAfter *time.Time) ([]persistence.Reservation, error) {
	query := s.db.WithContext(ctx).Where(column+" = ?", value)
	if endingAfter != nil {
		query = query.Where("end_at > ?", endingAfter.UTC())
	}
	return findReservations(query)
}

// CreateReservations inserts every reservation in a single transaction.
func (s *Store) CreateReservations(ctx context.Context, reservations []persistence.Reservation) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, reservation := range reservations {
			row := newReservationRow(reservation)
			if err := tx.Create(&row).Error; err != nil {
				return &persistence.RowError{ID: reservation.ID, Err: mapError(err)}
			}
		}
		return nil
	})
}

// DeleteReservations deletes every id in a single transaction.
func (s *Store) DeleteReservations(ctx context.Context, ids []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range ids {
			if err := deleteReservation(tx, id); err != nil {
				return &persistence.RowError{ID: id, Err: err}
			}
		}
		return nil
	})
}

// SearchReservations returns reservations matching filter ordered by start time.
func (s *Store) SearchReservations(ctx context.Context, filter persistence.ReservationFilter) ([]persistence.Reservation, error) {
	query := applyFilter(s.db.WithContext(ctx), filter)
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	return findReservations(query)
}

// ReservationStatistics aggregates reservations matching filter. Paging
// fields are ignored.
func (s *Store) ReservationStatistics(ctx context.Context, filter persistence.ReservationFilter) (persistence.ReservationStatistics, error) {
	var rows []struct {
		StateCode string
		Total     int
		Minutes   int64
	}
	err := applyFilter(s.db.WithContext(ctx).Model(&reservationRow{}), filter).
		Select("state_code, COUNT(*) AS total, COALESCE(SUM(FLOOR(EXTRACT(EPOCH FROM end_at - start_at) / 60)), 0)::bigint AS minutes").
		Group("state_code").
		Scan(&rows).Error
	if err != nil {
		return persistence.ReservationStatistics{}, mapError(err)
	}

	stats := persistence.ReservationStatistics{ByState: make(map[string]int, len(rows))}
	for _, row := range rows {
		stats.Total += row.Total
		stats.ByState[row.StateCode] = row.Total
		stats.BookedMinutes += row.Minutes
	}
	return stats, nil
}

// UpcomingReservations lists active reservations starting after now.
func (s *Store) UpcomingReservations(ctx context.Context, now time.Time, limit int) ([]persistence.Reservation, error) {
	query := s.db.WithContext(ctx).
		Where("state_code IN ?", activeStates).
		Where("start_at > ?", now.UTC())
	if limit > 0 {
		query = query.Limit(limit)
	}
	return findReservations(query)
}

// CurrentReservations lists active reservations in progress at now.
func (s *Store) CurrentReservations(ctx context.Context, now time.Time) ([]persistence.Reservation, error) {
	at := now.UTC()
	return findReservations(s.db.WithContext(ctx).
		Where("state_code IN ?", activeStates).
		Where("start_at <= ? AND end_at > ?", at, at))
}

func applyFilter(query *gorm.DB, filter persistence.ReservationFilter) *gorm.DB {
	if filter.RoomID != "" {
		query = query.Where("room_id = ?", filter.RoomID)
	}
	if filter.TeacherID != "" {
		query = query.Where("teacher_id = ?", filter.TeacherID)
	}
	if filter.ActivityID != "" {
		query = query.Where("activity_id = ?", filter.ActivityID)
	}
	if len(filter.StateCodes) > 0 {
		query = query.Where("state_code IN ?", filter.StateCodes)
	}
	if filter.From != nil {
		query = query.Where("end_at > ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("start_at < ?", filter.To.UTC())
	}
	if filter.EndsBy != nil {
		query = query.Where("end_at <= ?", filter.EndsBy.UTC())
	}
	if filter.ExcludeID != "" {
		query = query.Where("id <> ?", filter.ExcludeID)
	}
	return query
}

func findReservations(query *gorm.DB) ([]persistence.Reservation, error) {
	var rows []reservationRow
	if err := query.Order("start_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, mapError(err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	reservations := make([]persistence.Reservation, 0, len(rows))
	for _, row := range rows {
		reservations = append(reservations, row.model())
	}
	return reservations, nil
}

func deleteReservation(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&reservationRow{})
	if result.Error != nil {
		return mapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetRoom loads a room by ID.
func (s *Store) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	var row roomRow
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return persistence.Room{}, mapError(err)
	}
	return persistence.Room{ID: row.ID, Name: row.Name, Active: row.Active}, nil
}

// GetPerson loads a person by ID.
func (s *Store) GetPerson(ctx context.Context, id string) (persistence.Person, error) {
	var row personRow
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return persistence.Person{}, mapError(err)
	}
	return persistence.Person{ID: row.ID, DisplayName: row.DisplayName, Active: row.Active, Teaching: row.Teaching}, nil
}

// GetActivity loads an activity by ID.
func (s *Store) GetActivity(ctx context.Context, id string) (persistence.Activity, error) {
	var row activityRow
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return persistence.Activity{}, mapError(err)
	}
	return persistence.Activity{ID: row.ID, Name: row.Name, Active: row.Active}, nil
}

// UpsertRoom inserts a room or replaces the one with the same ID.
func (s *Store) UpsertRoom(ctx context.Context, room persistence.Room) error {
	row := roomRow{ID: room.ID, Name: room.Name, Active: room.Active}
	return s.upsert(ctx, &row, "name", "active")
}

// UpsertPerson inserts a person or replaces the one with the same ID.
func (s *Store) UpsertPerson(ctx context.Context, person persistence.Person) error {
	row := personRow{ID: person.ID, DisplayName: person.DisplayName, Active: person.Active, Teaching: person.Teaching}
	return s.upsert(ctx, &row, "display_name", "active", "teaching")
}

// UpsertActivity inserts an activity or replaces the one with the same ID.
func (s *Store) UpsertActivity(ctx context.Context, activity persistence.Activity) error {
	row := activityRow{ID: activity.ID, Name: activity.Name, Active: activity.Active}
	return s.upsert(ctx, &row, "name", "active")
}

func (s *Store) upsert(ctx context.Context, row any, columns ...string) error {
	return mapError(s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(row).Error)
}

// GetInitialState returns the state new reservations start in.
func (s *Store) GetInitialState(ctx context.Context) (persistence.ReservationState, error) {
	var row stateRow
	if err := s.db.WithContext(ctx).Where("initial").First(&row).Error; err != nil {
		return persistence.ReservationState{}, mapError(err)
	}
	return row.model(), nil
}

// GetState loads a state by code.
func (s *Store) GetState(ctx context.Context, code string) (persistence.ReservationState, error) {
	var row stateRow
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(&row).Error; err != nil {
		return persistence.ReservationState{}, mapError(err)
	}
	return row.model(), nil
}

// ListStates returns the state catalog ordered by code.
func (s *Store) ListStates(ctx context.Context) ([]persistence.ReservationState, error) {
	var rows []stateRow
	if err := s.db.WithContext(ctx).Order("code ASC").Find(&rows).Error; err != nil {
		return nil, mapError(err)
	}
	states := make([]persistence.ReservationState, 0, len(rows))
	for _, row := range rows {
		states = append(states, row.model())
	}
	return states, nil
}
