package application

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/example/reservation-scheduler/internal/lifecycle"
	"github.com/example/reservation-scheduler/internal/persistence"
)

var testBase = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

func at(day, hour, minute int) time.Time {
	return time.Date(2025, time.January, day, hour, minute, 0, 0, time.UTC)
}

// reservationStoreStub is an in-memory ReservationStore. Write errors can be
// injected per method; without them it enforces nothing beyond ID existence.
type reservationStoreStub struct {
	mu    sync.Mutex
	items map[string]Reservation
	now   func() time.Time

	createErr     error
	updateErr     error
	createBulkErr error
	deleteBulkErr error
	searchErr     error

	createCalls     int
	createBulkCalls int
	deleteBulkCalls int
	lastBulk        []Reservation
}

func newReservationStoreStub(now func() time.Time, seed ...Reservation) *reservationStoreStub {
	s := &reservationStoreStub{items: make(map[string]Reservation), now: nowOr(now)}
	for _, r := range seed {
		s.items[r.ID] = r
	}
	return s
}

func (s *reservationStoreStub) Create(ctx context.Context, r Reservation) (Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++
	if s.createErr != nil {
		return Reservation{}, s.createErr
	}
	s.items[r.ID] = r
	return r, nil
}

func (s *reservationStoreStub) Update(ctx context.Context, r Reservation) (Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return Reservation{}, s.updateErr
	}
	if _, ok := s.items[r.ID]; !ok {
		return Reservation{}, persistence.ErrNotFound
	}
	s.items[r.ID] = r
	return r, nil
}

func (s *reservationStoreStub) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *reservationStoreStub) FindByID(ctx context.Context, id string) (Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.items[id]
	if !ok {
		return Reservation{}, persistence.ErrNotFound
	}
	return r, nil
}

func (s *reservationStoreStub) FindByRoom(ctx context.Context, roomID string, includePast bool) ([]Reservation, error) {
	return s.list(func(r Reservation) bool { return r.RoomID == roomID }, includePast), nil
}

func (s *reservationStoreStub) FindByTeacher(ctx context.Context, teacherID string, includePast bool) ([]Reservation, error) {
	return s.list(func(r Reservation) bool { return r.TeacherID == teacherID }, includePast), nil
}

func (s *reservationStoreStub) FindByActivity(ctx context.Context, activityID string, includePast bool) ([]Reservation, error) {
	return s.list(func(r Reservation) bool { return r.ActivityID == activityID }, includePast), nil
}

func (s *reservationStoreStub) CreateBulk(ctx context.Context, batch []Reservation) ([]Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createBulkCalls++
	s.lastBulk = append([]Reservation(nil), batch...)
	if s.createBulkErr != nil {
		return nil, s.createBulkErr
	}
	for _, r := range batch {
		s.items[r.ID] = r
	}
	return append([]Reservation(nil), batch...), nil
}

func (s *reservationStoreStub) DeleteBulk(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteBulkCalls++
	if s.deleteBulkErr != nil {
		return s.deleteBulkErr
	}
	for _, id := range ids {
		if _, ok := s.items[id]; !ok {
			return &persistence.RowError{ID: id, Err: persistence.ErrNotFound}
		}
	}
	for _, id := range ids {
		delete(s.items, id)
	}
	return nil
}

func (s *reservationStoreStub) Search(ctx context.Context, filter ReservationFilter) ([]Reservation, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	out := s.list(func(r Reservation) bool { return matchesFilter(r, filter) }, true)
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *reservationStoreStub) Statistics(ctx context.Context, filter ReservationFilter) (ReservationStatistics, error) {
	matched, _ := s.Search(ctx, ReservationFilter{
		RoomID: filter.RoomID, TeacherID: filter.TeacherID, ActivityID: filter.ActivityID,
		States: filter.States, From: filter.From, To: filter.To,
	})
	stats := ReservationStatistics{ByState: make(map[lifecycle.State]int)}
	for _, r := range matched {
		stats.Total++
		stats.ByState[r.StateCode]++
		stats.BookedMinutes += int64(r.EndTime.Sub(r.StartTime) / time.Minute)
	}
	return stats, nil
}

func (s *reservationStoreStub) Upcoming(ctx context.Context, limit int) ([]Reservation, error) {
	now := s.now()
	out := s.list(func(r Reservation) bool { return r.Active() && r.StartTime.After(now) }, true)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *reservationStoreStub) Current(ctx context.Context) ([]Reservation, error) {
	now := s.now()
	return s.list(func(r Reservation) bool {
		return r.Active() && !r.StartTime.After(now) && r.EndTime.After(now)
	}, true), nil
}

func (s *reservationStoreStub) list(keep func(Reservation) bool, includePast bool) []Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	var out []Reservation
	for _, r := range s.items {
		if !includePast && !r.EndTime.After(now) {
			continue
		}
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}

func (s *reservationStoreStub) get(id string) (Reservation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.items[id]
	return r, ok
}

func matchesFilter(r Reservation, f ReservationFilter) bool {
	if f.RoomID != "" && r.RoomID != f.RoomID {
		return false
	}
	if f.TeacherID != "" && r.TeacherID != f.TeacherID {
		return false
	}
	if f.ActivityID != "" && r.ActivityID != f.ActivityID {
		return false
	}
	if f.ExcludeID != "" && r.ID == f.ExcludeID {
		return false
	}
	if len(f.States) > 0 {
		found := false
		for _, st := range f.States {
			if r.StateCode == st {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.From != nil && !r.EndTime.After(*f.From) {
		return false
	}
	if f.To != nil && !r.StartTime.Before(*f.To) {
		return false
	}
	if f.EndsBy != nil && r.EndTime.After(*f.EndsBy) {
		return false
	}
	return true
}

type catalogStub struct {
	rooms      map[string]Room
	teachers   map[string]Teacher
	qualified  map[string]bool
	activities map[string]Activity
	people     map[string]Person
	err        error
}

func newCatalogStub() *catalogStub {
	return &catalogStub{
		rooms: map[string]Room{
			"room-a":      {ID: "room-a", Active: true},
			"room-b":      {ID: "room-b", Active: true},
			"room-closed": {ID: "room-closed", Active: false},
		},
		teachers: map[string]Teacher{
			"teacher-x":       {ID: "teacher-x", Active: true},
			"teacher-y":       {ID: "teacher-y", Active: true},
			"teacher-retired": {ID: "teacher-retired", Active: false},
			"student-z":       {ID: "student-z", Active: true},
		},
		qualified: map[string]bool{"teacher-x": true, "teacher-y": true, "teacher-retired": true},
		activities: map[string]Activity{
			"activity-1":   {ID: "activity-1", Active: true},
			"activity-old": {ID: "activity-old", Active: false},
		},
		people: map[string]Person{
			"admin-1":    {ID: "admin-1", Active: true},
			"admin-gone": {ID: "admin-gone", Active: false},
		},
	}
}

func (c *catalogStub) FindRoom(ctx context.Context, id string) (Room, error) {
	if c.err != nil {
		return Room{}, c.err
	}
	room, ok := c.rooms[id]
	if !ok {
		return Room{}, persistence.ErrNotFound
	}
	return room, nil
}

func (c *catalogStub) FindTeacher(ctx context.Context, id string) (Teacher, error) {
	if c.err != nil {
		return Teacher{}, c.err
	}
	teacher, ok := c.teachers[id]
	if !ok {
		return Teacher{}, persistence.ErrNotFound
	}
	return teacher, nil
}

func (c *catalogStub) HasTeachingCapability(ctx context.Context, id string) (bool, error) {
	return c.qualified[id], nil
}

func (c *catalogStub) FindActivity(ctx context.Context, id string) (Activity, error) {
	activity, ok := c.activities[id]
	if !ok {
		return Activity{}, persistence.ErrNotFound
	}
	return activity, nil
}

func (c *catalogStub) FindPerson(ctx context.Context, id string) (Person, error) {
	person, ok := c.people[id]
	if !ok {
		return Person{}, persistence.ErrNotFound
	}
	return person, nil
}

type auditStub struct {
	mu     sync.Mutex
	events []AuditEvent
	err    error
}

func (a *auditStub) Record(ctx context.Context, event AuditEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, event)
	return a.err
}

func (a *auditStub) types() []AuditEventType {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]AuditEventType, 0, len(a.events))
	for _, e := range a.events {
		out = append(out, e.Type)
	}
	return out
}

type lockerStub struct {
	mu       sync.Mutex
	acquired [][]string
	released int
	err      error
}

func (l *lockerStub) Acquire(ctx context.Context, keys ...string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	l.acquired = append(l.acquired, append([]string(nil), keys...))
	return func() {
		l.mu.Lock()
		l.released++
		l.mu.Unlock()
	}, nil
}

type schedulerHarness struct {
	scheduler *ReservationScheduler
	store     *reservationStoreStub
	catalog   *catalogStub
	states    *stateCatalogStub
	audit     *auditStub
	locker    *lockerStub
	now       time.Time
}

func newSchedulerHarness(seed ...Reservation) *schedulerHarness {
	h := &schedulerHarness{
		catalog: newCatalogStub(),
		states:  newStateCatalogStub(),
		audit:   &auditStub{},
		locker:  &lockerStub{},
		now:     testBase,
	}
	nowFn := func() time.Time { return h.now }
	h.store = newReservationStoreStub(nowFn, seed...)

	counter := 0
	hours := DefaultOperatingHours()
	hours.Default = DailyWindow{Open: 0, Close: 24 * time.Hour}
	h.scheduler = NewReservationScheduler(SchedulerConfig{
		Reservations: h.store,
		Rooms:        h.catalog,
		Teachers:     h.catalog,
		Activities:   h.catalog,
		People:       h.catalog,
		States:       h.states,
		Locker:       h.locker,
		Audit:        h.audit,
		Hours:        hours,
		IDGenerator: func() string {
			counter++
			return fmt.Sprintf("res-%d", counter)
		},
		Now: nowFn,
	})
	return h
}

func reservationFixture(id, room, teacher string, start, end time.Time, state lifecycle.State) Reservation {
	return Reservation{
		ID:        id,
		RoomID:    room,
		TeacherID: teacher,
		StartTime: start,
		EndTime:   end,
		StateCode: state,
		CreatedAt: testBase,
		UpdatedAt: testBase,
	}
}

func newInput(room, teacher string, start, end time.Time) ReservationInput {
	return ReservationInput{RoomID: room, TeacherID: teacher, StartTime: start, EndTime: end}
}
