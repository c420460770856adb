package main

import (
	"context"
	"time"

	"github.com/example/reservation-scheduler/internal/application"
	"github.com/example/reservation-scheduler/internal/lifecycle"
	"github.com/example/reservation-scheduler/internal/persistence"
)

type reservationStoreAdapter struct {
	repo persistence.ReservationRepository
	now  func() time.Time
}

func newReservationStoreAdapter(repo persistence.ReservationRepository, now func() time.Time) *reservationStoreAdapter {
	if now == nil {
		now = time.Now
	}
	return &reservationStoreAdapter{repo: repo, now: now}
}

func (a *reservationStoreAdapter) Create(ctx context.Context, reservation application.Reservation) (application.Reservation, error) {
	if err := a.repo.CreateReservation(ctx, toPersistenceReservation(reservation)); err != nil {
		return application.Reservation{}, err
	}
	return a.FindByID(ctx, reservation.ID)
}

func (a *reservationStoreAdapter) Update(ctx context.Context, reservation application.Reservation) (application.Reservation, error) {
	if err := a.repo.UpdateReservation(ctx, toPersistenceReservation(reservation)); err != nil {
		return application.Reservation{}, err
	}
	return a.FindByID(ctx, reservation.ID)
}

func (a *reservationStoreAdapter) Delete(ctx context.Context, id string) error {
	return a.repo.DeleteReservation(ctx, id)
}

func (a *reservationStoreAdapter) FindByID(ctx context.Context, id string) (application.Reservation, error) {
	stored, err := a.repo.GetReservation(ctx, id)
	if err != nil {
		return application.Reservation{}, err
	}
	return toApplicationReservation(stored), nil
}

func (a *reservationStoreAdapter) FindByRoom(ctx context.Context, roomID string, includePast bool) ([]application.Reservation, error) {
	return toApplicationReservations(a.repo.ListByRoom(ctx, roomID, a.endingAfter(includePast)))
}

func (a *reservationStoreAdapter) FindByTeacher(ctx context.Context, teacherID string, includePast bool) ([]application.Reservation, error) {
	return toApplicationReservations(a.repo.ListByTeacher(ctx, teacherID, a.endingAfter(includePast)))
}

func (a *reservationStoreAdapter) FindByActivity(ctx context.Context, activityID string, includePast bool) ([]application.Reservation, error) {
	return toApplicationReservations(a.repo.ListByActivity(ctx, activityID, a.endingAfter(includePast)))
}

// CreateBulk returns the inputs as stored; the batch is written in one
// transaction so there is nothing else to read back.
func (a *reservationStoreAdapter) CreateBulk(ctx context.Context, reservations []application.Reservation) ([]application.Reservation, error) {
	rows := make([]persistence.Reservation, 0, len(reservations))
	for _, r := range reservations {
		rows = append(rows, toPersistenceReservation(r))
	}
	if err := a.repo.CreateReservations(ctx, rows); err != nil {
		return nil, err
	}
	return reservations, nil
}

func (a *reservationStoreAdapter) DeleteBulk(ctx context.Context, ids []string) error {
	return a.repo.DeleteReservations(ctx, ids)
}

func (a *reservationStoreAdapter) Search(ctx context.Context, filter application.ReservationFilter) ([]application.Reservation, error) {
	return toApplicationReservations(a.repo.SearchReservations(ctx, toPersistenceFilter(filter)))
}

func (a *reservationStoreAdapter) Statistics(ctx context.Context, filter application.ReservationFilter) (application.ReservationStatistics, error) {
	stats, err := a.repo.ReservationStatistics(ctx, toPersistenceFilter(filter))
	if err != nil {
		return application.ReservationStatistics{}, err
	}
	byState := make(map[lifecycle.State]int, len(stats.ByState))
	for code, count := range stats.ByState {
		byState[lifecycle.State(code)] = count
	}
	return application.ReservationStatistics{Total: stats.Total, ByState: byState, BookedMinutes: stats.BookedMinutes}, nil
}

func (a *reservationStoreAdapter) Upcoming(ctx context.Context, limit int) ([]application.Reservation, error) {
	return toApplicationReservations(a.repo.UpcomingReservations(ctx, a.now(), limit))
}

func (a *reservationStoreAdapter) Current(ctx context.Context) ([]application.Reservation, error) {
	return toApplicationReservations(a.repo.CurrentReservations(ctx, a.now()))
}

// endingAfter turns includePast=false into a cutoff at the current instant.
func (a *reservationStoreAdapter) endingAfter(includePast bool) *time.Time {
	if includePast {
		return nil
	}
	now := a.now()
	return &now
}

type catalogAdapter struct {
	repo persistence.CatalogRepository
}

func newCatalogAdapter(repo persistence.CatalogRepository) *catalogAdapter {
	return &catalogAdapter{repo: repo}
}

func (a *catalogAdapter) FindRoom(ctx context.Context, id string) (application.Room, error) {
	room, err := a.repo.GetRoom(ctx, id)
	if err != nil {
		return application.Room{}, err
	}
	return application.Room{ID: room.ID, Active: room.Active}, nil
}

func (a *catalogAdapter) FindTeacher(ctx context.Context, id string) (application.Teacher, error) {
	person, err := a.repo.GetPerson(ctx, id)
	if err != nil {
		return application.Teacher{}, err
	}
	return application.Teacher{ID: person.ID, Active: person.Active}, nil
}

func (a *catalogAdapter) HasTeachingCapability(ctx context.Context, id string) (bool, error) {
	person, err := a.repo.GetPerson(ctx, id)
	if err != nil {
		return false, err
	}
	return person.Teaching, nil
}

func (a *catalogAdapter) FindActivity(ctx context.Context, id string) (application.Activity, error) {
	activity, err := a.repo.GetActivity(ctx, id)
	if err != nil {
		return application.Activity{}, err
	}
	return application.Activity{ID: activity.ID, Active: activity.Active}, nil
}

func (a *catalogAdapter) FindPerson(ctx context.Context, id string) (application.Person, error) {
	person, err := a.repo.GetPerson(ctx, id)
	if err != nil {
		return application.Person{}, err
	}
	return application.Person{ID: person.ID, Active: person.Active}, nil
}

func (a *catalogAdapter) SaveRoom(ctx context.Context, room application.RoomInput) error {
	return a.repo.UpsertRoom(ctx, persistence.Room{ID: room.ID, Name: room.Name, Active: room.Active})
}

func (a *catalogAdapter) SavePerson(ctx context.Context, person application.PersonInput) error {
	return a.repo.UpsertPerson(ctx, persistence.Person{
		ID:          person.ID,
		DisplayName: person.DisplayName,
		Active:      person.Active,
		Teaching:    person.Teaching,
	})
}

func (a *catalogAdapter) SaveActivity(ctx context.Context, activity application.ActivityInput) error {
	return a.repo.UpsertActivity(ctx, persistence.Activity{ID: activity.ID, Name: activity.Name, Active: activity.Active})
}

type stateCatalogAdapter struct {
	repo persistence.StateRepository
}

func newStateCatalogAdapter(repo persistence.StateRepository) *stateCatalogAdapter {
	return &stateCatalogAdapter{repo: repo}
}

func (a *stateCatalogAdapter) InitialState(ctx context.Context) (application.ReservationState, error) {
	state, err := a.repo.GetInitialState(ctx)
	if err != nil {
		return application.ReservationState{}, err
	}
	return toApplicationState(state), nil
}

func (a *stateCatalogAdapter) FindByCode(ctx context.Context, code lifecycle.State) (application.ReservationState, error) {
	state, err := a.repo.GetState(ctx, string(code))
	if err != nil {
		return application.ReservationState{}, err
	}
	return toApplicationState(state), nil
}

func toApplicationState(state persistence.ReservationState) application.ReservationState {
	return application.ReservationState{Code: lifecycle.State(state.Code), Name: state.Name, Initial: state.Initial}
}

func toPersistenceReservation(r application.Reservation) persistence.Reservation {
	return persistence.Reservation{
		ID:           r.ID,
		RoomID:       r.RoomID,
		TeacherID:    r.TeacherID,
		ActivityID:   optional(r.ActivityID),
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		StateCode:    string(r.StateCode),
		ApprovedBy:   optional(r.ApprovedBy),
		RejectedBy:   optional(r.RejectedBy),
		CanceledBy:   optional(r.CanceledBy),
		RejectReason: optional(r.RejectReason),
		CancelReason: optional(r.CancelReason),
		Observations: optional(r.Observations),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func toApplicationReservation(r persistence.Reservation) application.Reservation {
	return application.Reservation{
		ID:           r.ID,
		RoomID:       r.RoomID,
		TeacherID:    r.TeacherID,
		ActivityID:   deref(r.ActivityID),
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		StateCode:    lifecycle.State(r.StateCode),
		ApprovedBy:   deref(r.ApprovedBy),
		RejectedBy:   deref(r.RejectedBy),
		CanceledBy:   deref(r.CanceledBy),
		RejectReason: deref(r.RejectReason),
		CancelReason: deref(r.CancelReason),
		Observations: deref(r.Observations),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func toApplicationReservations(rows []persistence.Reservation, err error) ([]application.Reservation, error) {
	if err != nil {
		return nil, err
	}
	out := make([]application.Reservation, 0, len(rows))
	for _, row := range rows {
		out = append(out, toApplicationReservation(row))
	}
	return out, nil
}

func toPersistenceFilter(filter application.ReservationFilter) persistence.ReservationFilter {
	codes := make([]string, 0, len(filter.States))
	for _, state := range filter.States {
		codes = append(codes, string(state))
	}
	return persistence.ReservationFilter{
		RoomID:     filter.RoomID,
		TeacherID:  filter.TeacherID,
		ActivityID: filter.ActivityID,
		StateCodes: codes,
		From:       filter.From,
		To:         filter.To,
		EndsBy:     filter.EndsBy,
		ExcludeID:  filter.ExcludeID,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
