package sqlite

import (
	"context"

	"github.com/example/reservation-scheduler/internal/persistence"
)

// GetRoom loads a room by ID.
func (s *Storage) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	var (
		room   persistence.Room
		active int
	)
	err := s.pool.DB().QueryRowContext(ctx, `SELECT id, name, active FROM rooms WHERE id = ?`, id).
		Scan(&room.ID, &room.Name, &active)
	if err != nil {
		return persistence.Room{}, s.mapper.MapError(err)
	}
	room.Active = active == 1
	return room, nil
}

// GetPerson loads a person by ID.
func (s *Storage) GetPerson(ctx context.Context, id string) (persistence.Person, error) {
	var (
		person           persistence.Person
		active, teaching int
	)
	err := s.pool.DB().QueryRowContext(ctx, `SELECT id, display_name, active, teaching FROM people WHERE id = ?`, id).
		Scan(&person.ID, &person.DisplayName, &active, &teaching)
	if err != nil {
		return persistence.Person{}, s.mapper.MapError(err)
	}
	person.Active = active == 1
	person.Teaching = teaching == 1
	return person, nil
}

// GetActivity loads an activity by ID.
func (s *Storage) GetActivity(ctx context.Context, id string) (persistence.Activity, error) {
	var (
		activity persistence.Activity
		active   int
	)
	err := s.pool.DB().QueryRowContext(ctx, `SELECT id, name, active FROM activities WHERE id = ?`, id).
		Scan(&activity.ID, &activity.Name, &active)
	if err != nil {
		return persistence.Activity{}, s.mapper.MapError(err)
	}
	activity.Active = active == 1
	return activity, nil
}

// UpsertRoom inserts a room or replaces the one with the same ID.
func (s *Storage) UpsertRoom(ctx context.Context, room persistence.Room) error {
	_, err := s.pool.DB().ExecContext(ctx, `
		INSERT INTO rooms (id, name, active) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, active = excluded.active`,
		room.ID, room.Name, boolInt(room.Active))
	return s.mapper.MapError(err)
}

// UpsertPerson inserts a person or replaces the one with the same ID.
func (s *Storage) UpsertPerson(ctx context.Context, person persistence.Person) error {
	_, err := s.pool.DB().ExecContext(ctx, `
		INSERT INTO people (id, display_name, active, teaching) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			display_name = excluded.display_name,
			active = excluded.active,
			teaching = excluded.teaching`,
		person.ID, person.DisplayName, boolInt(person.Active), boolInt(person.Teaching))
	return s.mapper.MapError(err)
}

// UpsertActivity inserts an activity or replaces the one with the same ID.
func (s *Storage) UpsertActivity(ctx context.Context, activity persistence.Activity) error {
	_, err := s.pool.DB().ExecContext(ctx, `
		INSERT INTO activities (id, name, active) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, active = excluded.active`,
		activity.ID, activity.Name, boolInt(activity.Active))
	return s.mapper.MapError(err)
}

// GetInitialState returns the state new reservations start in.
func (s *Storage) GetInitialState(ctx context.Context) (persistence.ReservationState, error) {
	return s.scanState(ctx, `SELECT code, name, initial FROM reservation_states WHERE initial = 1`)
}

// GetState loads a state by code.
func (s *Storage) GetState(ctx context.Context, code string) (persistence.ReservationState, error) {
	return s.scanState(ctx, `SELECT code, name, initial FROM reservation_states WHERE code = ?`, code)
}

// ListStates returns the state catalog ordered by code.
func (s *Storage) ListStates(ctx context.Context) ([]persistence.ReservationState, error) {
	rows, err := s.pool.DB().QueryContext(ctx, `SELECT code, name, initial FROM reservation_states ORDER BY code`)
	if err != nil {
		return nil, s.mapper.MapError(err)
	}
	defer rows.Close()

	var states []persistence.ReservationState
	for rows.Next() {
		var (
			state   persistence.ReservationState
			initial int
		)
		if err := rows.Scan(&state.Code, &state.Name, &initial); err != nil {
			return nil, err
		}
		state.Initial = initial == 1
		states = append(states, state)
	}
	return states, s.mapper.MapError(rows.Err())
}

func (s *Storage) scanState(ctx context.Context, query string, args ...any) (persistence.ReservationState, error) {
	var (
		state   persistence.ReservationState
		initial int
	)
	if err := s.pool.DB().QueryRowContext(ctx, query, args...).Scan(&state.Code, &state.Name, &initial); err != nil {
		return persistence.ReservationState{}, s.mapper.MapError(err)
	}
	state.Initial = initial == 1
	return state, nil
}
