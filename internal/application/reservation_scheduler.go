package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/reservation-scheduler/internal/lifecycle"
	"github.com/example/reservation-scheduler/internal/persistence"
	"github.com/example/reservation-scheduler/internal/recurrence"
)

const (
	defaultUpcomingLimit = 10
	maxUpcomingLimit     = 100
	defaultSweepLimit    = 100
)

// SchedulerConfig wires the collaborators of a ReservationScheduler. Locker,
// Audit, Engine, IDGenerator, Now and Logger are optional.
type SchedulerConfig struct {
	Reservations  ReservationStore
	Rooms         RoomCatalog
	Teachers      TeacherDirectory
	Activities    ActivityCatalog
	People        PersonDirectory
	States        StateCatalog
	StateCacheTTL time.Duration
	Locker        Locker
	Audit         AuditRecorder
	Hours         OperatingHours
	Engine        *recurrence.Engine
	IDGenerator   func() string
	Now           func() time.Time
	Logger        *zap.Logger
}

// ReservationScheduler orchestrates catalog validation, conflict detection,
// recurrence expansion and lifecycle transitions for reservations.
type ReservationScheduler struct {
	reservations ReservationStore
	rooms        RoomCatalog
	teachers     TeacherDirectory
	activities   ActivityCatalog
	states       *CachedStateCatalog
	detector     *ConflictDetector
	machine      *StateMachine
	engine       *recurrence.Engine
	locker       Locker
	audit        AuditRecorder
	hours        OperatingHours
	idGenerator  func() string
	now          func() time.Time
	logger       *zap.Logger
}

// NewReservationScheduler wires dependencies for reservation operations.
func NewReservationScheduler(cfg SchedulerConfig) *ReservationScheduler {
	now := nowOr(cfg.Now)
	idGenerator := cfg.IDGenerator
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	engine := cfg.Engine
	if engine == nil {
		engine = recurrence.NewEngine(cfg.Hours.Location)
	}
	var locker Locker = noopLocker{}
	if cfg.Locker != nil {
		locker = cfg.Locker
	}
	var audit AuditRecorder = noopAudit{}
	if cfg.Audit != nil {
		audit = cfg.Audit
	}

	states, ok := cfg.States.(*CachedStateCatalog)
	if !ok && cfg.States != nil {
		states = NewCachedStateCatalog(cfg.States, cfg.StateCacheTTL, now)
	}

	var machineStates StateCatalog
	if states != nil {
		machineStates = states
	}

	return &ReservationScheduler{
		reservations: cfg.Reservations,
		rooms:        cfg.Rooms,
		teachers:     cfg.Teachers,
		activities:   cfg.Activities,
		states:       states,
		detector:     NewConflictDetector(cfg.Reservations, engine),
		machine:      NewStateMachine(machineStates, cfg.People, now),
		engine:       engine,
		locker:       locker,
		audit:        audit,
		hours:        cfg.Hours,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(cfg.Logger),
	}
}

func (s *ReservationScheduler) loggerWith(ctx context.Context, operation string, fields ...zap.Field) *zap.Logger {
	return serviceLogger(ctx, s.logger, "ReservationScheduler", operation, fields...)
}

// Detector exposes the conflict detector the scheduler checks against.
func (s *ReservationScheduler) Detector() *ConflictDetector {
	return s.detector
}

// InvalidateStateCache forgets cached state catalog lookups, for use after
// the catalog changes.
func (s *ReservationScheduler) InvalidateStateCache() {
	s.states.Invalidate()
}

// CreateReservation validates the request, checks for conflicts and persists
// a new reservation in the catalog's initial state.
func (s *ReservationScheduler) CreateReservation(ctx context.Context, input ReservationInput) (reservation Reservation, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationScheduler is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateReservation",
		zap.String("room_id", input.RoomID),
		zap.String("teacher_id", input.TeacherID),
	)
	defer func() {
		if err != nil {
			logger.Error("failed to create reservation", zap.Error(err), zap.String("error_kind", ErrorKind(err)))
			return
		}
		logger.Info("reservation created", zap.String("reservation_id", reservation.ID))
	}()

	if s.reservations == nil {
		err = fmt.Errorf("reservation store not configured")
		return
	}

	candidate, err := s.prepare(ctx, input)
	if err != nil {
		return
	}

	release, err := s.lock(ctx, candidate)
	if err != nil {
		return
	}
	defer release()

	if err = s.checkConflicts(ctx, candidate, nil); err != nil {
		return
	}

	persisted, err := s.reservations.Create(ctx, candidate)
	if err != nil {
		err = s.mapWriteError(ctx, candidate, err)
		return
	}

	s.record(ctx, AuditReservationCreated, "", persisted)
	reservation = persisted
	return
}

// UpdateReservation applies patch to an existing reservation. Only changed
// references are re-validated; a new room, teacher or interval re-runs both
// conflict checks against everything except the reservation itself.
func (s *ReservationScheduler) UpdateReservation(ctx context.Context, id string, patch ReservationPatch) (reservation Reservation, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationScheduler is nil")
		return
	}

	logger := s.loggerWith(ctx, "UpdateReservation", zap.String("reservation_id", id))
	defer func() {
		if err != nil {
			logger.Error("failed to update reservation", zap.Error(err), zap.String("error_kind", ErrorKind(err)))
			return
		}
		logger.Info("reservation updated")
	}()

	existing, err := s.load(ctx, id)
	if err != nil {
		return
	}

	updated := existing
	if patch.RoomID != nil {
		updated.RoomID = strings.TrimSpace(*patch.RoomID)
	}
	if patch.TeacherID != nil {
		updated.TeacherID = strings.TrimSpace(*patch.TeacherID)
	}
	if patch.ActivityID != nil {
		updated.ActivityID = strings.TrimSpace(*patch.ActivityID)
	}
	if patch.StartTime != nil {
		updated.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		updated.EndTime = *patch.EndTime
	}
	if patch.Observations != nil {
		updated.Observations = *patch.Observations
	}

	roomChanged := updated.RoomID != existing.RoomID
	teacherChanged := updated.TeacherID != existing.TeacherID
	activityChanged := updated.ActivityID != existing.ActivityID
	timeChanged := !updated.StartTime.Equal(existing.StartTime) || !updated.EndTime.Equal(existing.EndTime)

	vErr := &ValidationError{}
	validateReferences(updated.RoomID, updated.TeacherID, vErr)
	validateInterval(updated.StartTime, updated.EndTime, vErr)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if roomChanged {
		if err = s.ensureRoomActive(ctx, updated.RoomID); err != nil {
			return
		}
	}
	if teacherChanged {
		if err = s.ensureTeacherQualified(ctx, updated.TeacherID); err != nil {
			return
		}
	}
	if activityChanged && updated.ActivityID != "" {
		if err = s.ensureActivityActive(ctx, updated.ActivityID); err != nil {
			return
		}
	}
	if roomChanged || timeChanged {
		if err = s.hours.Validate(updated.RoomID, updated.StartTime, updated.EndTime); err != nil {
			return
		}
	}

	updated.UpdatedAt = s.now()

	if roomChanged || teacherChanged || timeChanged {
		var release func()
		release, err = s.lock(ctx, updated)
		if err != nil {
			return
		}
		defer release()

		if err = s.checkConflicts(ctx, updated, nil); err != nil {
			return
		}
	}

	persisted, err := s.reservations.Update(ctx, updated)
	if err != nil {
		err = s.mapWriteError(ctx, updated, err)
		return
	}

	s.record(ctx, AuditReservationUpdated, "", persisted)
	reservation = persisted
	return
}

// DeleteReservation removes a reservation that has not ended yet.
func (s *ReservationScheduler) DeleteReservation(ctx context.Context, id string) (err error) {
	if s == nil {
		return fmt.Errorf("ReservationScheduler is nil")
	}

	logger := s.loggerWith(ctx, "DeleteReservation", zap.String("reservation_id", id))
	defer func() {
		if err != nil {
			logger.Error("failed to delete reservation", zap.Error(err), zap.String("error_kind", ErrorKind(err)))
			return
		}
		logger.Info("reservation deleted")
	}()

	existing, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err = s.ensureNotHistorical(existing); err != nil {
		return err
	}

	if err = s.reservations.Delete(ctx, existing.ID); err != nil {
		if isNotFound(err) {
			return &NotFoundError{Entity: "reservation", ID: existing.ID}
		}
		return fmt.Errorf("delete reservation: %w", err)
	}

	s.record(ctx, AuditReservationDeleted, "", existing)
	return nil
}

// Approve confirms a pending reservation.
func (s *ReservationScheduler) Approve(ctx context.Context, id, approverID string) (Reservation, error) {
	return s.transition(ctx, "Approve", id, approverID, AuditReservationApproved, func(r Reservation) (Reservation, error) {
		return s.machine.Approve(ctx, r, approverID)
	})
}

// Reject turns down a pending reservation.
func (s *ReservationScheduler) Reject(ctx context.Context, id, rejecterID, reason string) (Reservation, error) {
	return s.transition(ctx, "Reject", id, rejecterID, AuditReservationRejected, func(r Reservation) (Reservation, error) {
		return s.machine.Reject(ctx, r, rejecterID, reason)
	})
}

// Cancel withdraws a pending or confirmed reservation.
func (s *ReservationScheduler) Cancel(ctx context.Context, id, cancelerID, reason string) (Reservation, error) {
	return s.transition(ctx, "Cancel", id, cancelerID, AuditReservationCanceled, func(r Reservation) (Reservation, error) {
		return s.machine.Cancel(ctx, r, cancelerID, reason)
	})
}

// Complete closes a confirmed reservation whose end time has passed.
func (s *ReservationScheduler) Complete(ctx context.Context, id string) (Reservation, error) {
	return s.transition(ctx, "Complete", id, "", AuditReservationCompleted, func(r Reservation) (Reservation, error) {
		return s.machine.Complete(ctx, r)
	})
}

func (s *ReservationScheduler) transition(ctx context.Context, operation, id, actorID string, event AuditEventType, apply func(Reservation) (Reservation, error)) (reservation Reservation, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationScheduler is nil")
		return
	}

	logger := s.loggerWith(ctx, operation, zap.String("reservation_id", id), zap.String("actor_id", actorID))
	defer func() {
		if err != nil {
			logger.Error("failed to transition reservation", zap.Error(err), zap.String("error_kind", ErrorKind(err)))
			return
		}
		logger.Info("reservation transitioned", zap.String("state", string(reservation.StateCode)))
	}()

	existing, err := s.load(ctx, id)
	if err != nil {
		return
	}

	next, err := apply(existing)
	if err != nil {
		return
	}
	next.UpdatedAt = s.now()

	persisted, err := s.reservations.Update(ctx, next)
	if err != nil {
		err = s.mapWriteError(ctx, next, err)
		return
	}

	s.record(ctx, event, actorID, persisted)
	reservation = persisted
	return
}

// CompleteFinished completes up to limit confirmed reservations whose end
// time has passed and reports how many were completed. Reservations that
// cannot be completed are skipped.
func (s *ReservationScheduler) CompleteFinished(ctx context.Context, limit int) (completed int, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationScheduler is nil")
		return
	}
	if limit <= 0 {
		limit = defaultSweepLimit
	}

	logger := s.loggerWith(ctx, "CompleteFinished", zap.Int("limit", limit))
	defer func() {
		if err != nil {
			logger.Error("completion sweep failed", zap.Error(err), zap.Int("completed", completed))
			return
		}
		logger.Info("completion sweep finished", zap.Int("completed", completed))
	}()

	now := s.now()
	due, err := s.reservations.Search(ctx, ReservationFilter{
		States: []lifecycle.State{lifecycle.Confirmed},
		EndsBy: &now,
		Limit:  limit,
	})
	if err != nil {
		err = fmt.Errorf("search finished reservations: %w", err)
		return
	}

	for _, r := range due {
		next, cErr := s.machine.Complete(ctx, r)
		var done Reservation
		if cErr == nil {
			next.UpdatedAt = now
			done, cErr = s.reservations.Update(ctx, next)
			if cErr != nil {
				cErr = s.mapWriteError(ctx, next, cErr)
			}
		}
		if cErr != nil {
			if isDomainError(cErr) {
				logger.Warn("skipping reservation", zap.String("reservation_id", r.ID), zap.Error(cErr))
				continue
			}
			err = cErr
			return
		}
		completed++
		s.record(ctx, AuditReservationCompleted, "", done)
	}
	return
}

// ValidateOperatingHours checks the interval against the room's daily window.
func (s *ReservationScheduler) ValidateOperatingHours(roomID string, start, end time.Time) error {
	return s.hours.Validate(roomID, start, end)
}

// DetectAll reports the conflicts a prospective reservation would run into.
func (s *ReservationScheduler) DetectAll(ctx context.Context, query ConflictQuery) (ConflictReport, error) {
	return s.detector.DetectAll(ctx, query)
}

// GetReservation loads a single reservation.
func (s *ReservationScheduler) GetReservation(ctx context.Context, id string) (Reservation, error) {
	return s.load(ctx, id)
}

// ListByRoom lists a room's reservations ordered by start time.
func (s *ReservationScheduler) ListByRoom(ctx context.Context, roomID string, includePast bool) ([]Reservation, error) {
	return s.reservations.FindByRoom(ctx, roomID, includePast)
}

// ListByTeacher lists a teacher's reservations ordered by start time.
func (s *ReservationScheduler) ListByTeacher(ctx context.Context, teacherID string, includePast bool) ([]Reservation, error) {
	return s.reservations.FindByTeacher(ctx, teacherID, includePast)
}

// ListByActivity lists an activity's reservations ordered by start time.
func (s *ReservationScheduler) ListByActivity(ctx context.Context, activityID string, includePast bool) ([]Reservation, error) {
	return s.reservations.FindByActivity(ctx, activityID, includePast)
}

// Search lists reservations matching filter.
func (s *ReservationScheduler) Search(ctx context.Context, filter ReservationFilter) ([]Reservation, error) {
	for _, state := range filter.States {
		if !state.Known() {
			return nil, newValidationError("state", fmt.Sprintf("unknown state %q", state))
		}
	}
	return s.reservations.Search(ctx, filter)
}

// Statistics aggregates reservations matching filter.
func (s *ReservationScheduler) Statistics(ctx context.Context, filter ReservationFilter) (ReservationStatistics, error) {
	return s.reservations.Statistics(ctx, filter)
}

// Upcoming lists the next active reservations. limit defaults to 10 and is
// capped at 100.
func (s *ReservationScheduler) Upcoming(ctx context.Context, limit int) ([]Reservation, error) {
	if limit <= 0 {
		limit = defaultUpcomingLimit
	}
	if limit > maxUpcomingLimit {
		limit = maxUpcomingLimit
	}
	return s.reservations.Upcoming(ctx, limit)
}

// Current lists active reservations in progress.
func (s *ReservationScheduler) Current(ctx context.Context) ([]Reservation, error) {
	return s.reservations.Current(ctx)
}

// prepare runs every single-item check that does not involve other
// reservations and returns the reservation ready to be conflict checked.
func (s *ReservationScheduler) prepare(ctx context.Context, input ReservationInput) (Reservation, error) {
	input.RoomID = strings.TrimSpace(input.RoomID)
	input.TeacherID = strings.TrimSpace(input.TeacherID)
	input.ActivityID = strings.TrimSpace(input.ActivityID)

	vErr := &ValidationError{}
	validateReferences(input.RoomID, input.TeacherID, vErr)
	validateInterval(input.StartTime, input.EndTime, vErr)
	if vErr.HasErrors() {
		return Reservation{}, vErr
	}

	if err := s.ensureRoomActive(ctx, input.RoomID); err != nil {
		return Reservation{}, err
	}
	if err := s.ensureTeacherQualified(ctx, input.TeacherID); err != nil {
		return Reservation{}, err
	}
	if input.ActivityID != "" {
		if err := s.ensureActivityActive(ctx, input.ActivityID); err != nil {
			return Reservation{}, err
		}
	}
	if err := s.hours.Validate(input.RoomID, input.StartTime, input.EndTime); err != nil {
		return Reservation{}, err
	}

	state, err := s.resolveState(ctx, input.StateCode)
	if err != nil {
		return Reservation{}, err
	}

	now := s.now()
	return Reservation{
		ID:           s.idGenerator(),
		RoomID:       input.RoomID,
		TeacherID:    input.TeacherID,
		ActivityID:   input.ActivityID,
		StartTime:    input.StartTime,
		EndTime:      input.EndTime,
		StateCode:    state,
		Observations: input.Observations,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// resolveState returns the initial state. A caller may name it explicitly,
// but every other code is refused: reservations only leave the initial
// state through the lifecycle transitions.
func (s *ReservationScheduler) resolveState(ctx context.Context, code lifecycle.State) (lifecycle.State, error) {
	initial, err := s.machine.InitialState(ctx)
	if err != nil {
		return "", err
	}
	switch {
	case code == "" || code == initial:
		return initial, nil
	case !code.Known():
		return "", newValidationError("state_code", "unknown state")
	default:
		return "", newValidationError("state_code", fmt.Sprintf("must be %s", initial))
	}
}

// checkConflicts fails with a ConflictError when an active candidate collides
// with a stored reservation or one accepted earlier in the same batch. Room
// conflicts are reported before teacher conflicts.
func (s *ReservationScheduler) checkConflicts(ctx context.Context, candidate Reservation, accepted []Reservation) error {
	if !candidate.Active() {
		return nil
	}

	rooms, err := s.detector.DetectRoomConflicts(ctx, candidate.RoomID, candidate.StartTime, candidate.EndTime, candidate.ID)
	if err != nil {
		return err
	}
	rooms = append(rooms, batchConflicts(accepted, candidate, ConflictRoom)...)
	if len(rooms) > 0 {
		return &ConflictError{Kind: ConflictRoom, Conflicts: rooms}
	}

	teachers, err := s.detector.DetectTeacherConflicts(ctx, candidate.TeacherID, candidate.StartTime, candidate.EndTime, candidate.ID)
	if err != nil {
		return err
	}
	teachers = append(teachers, batchConflicts(accepted, candidate, ConflictTeacher)...)
	if len(teachers) > 0 {
		return &ConflictError{Kind: ConflictTeacher, Conflicts: teachers}
	}
	return nil
}

// mapWriteError turns store failures into domain errors. An overlap the store
// caught after the advisory check passed is reported exactly like a
// pre-check conflict. If listing the conflicting reservations fails too, the
// ConflictError is joined with that failure so neither is lost.
func (s *ReservationScheduler) mapWriteError(ctx context.Context, candidate Reservation, err error) error {
	switch {
	case errors.Is(err, persistence.ErrRoomOverlap):
		conflicts, dErr := s.detector.DetectRoomConflicts(ctx, candidate.RoomID, candidate.StartTime, candidate.EndTime, candidate.ID)
		return s.overlapError(ctx, ConflictRoom, conflicts, dErr)
	case errors.Is(err, persistence.ErrTeacherOverlap):
		conflicts, dErr := s.detector.DetectTeacherConflicts(ctx, candidate.TeacherID, candidate.StartTime, candidate.EndTime, candidate.ID)
		return s.overlapError(ctx, ConflictTeacher, conflicts, dErr)
	case isNotFound(err):
		return &NotFoundError{Entity: "reservation", ID: candidate.ID}
	case errors.Is(err, persistence.ErrForeignKeyViolation):
		return newValidationError("reference", "referenced entity does not exist")
	case errors.Is(err, persistence.ErrConstraintViolation):
		return newValidationError("time", "start must be before end")
	case errors.Is(err, persistence.ErrDuplicate):
		return newValidationError("id", "already exists")
	default:
		return fmt.Errorf("store reservation: %w", err)
	}
}

func (s *ReservationScheduler) load(ctx context.Context, id string) (Reservation, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Reservation{}, newValidationError("id", "required")
	}
	if s.reservations == nil {
		return Reservation{}, fmt.Errorf("reservation store not configured")
	}
	r, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return Reservation{}, &NotFoundError{Entity: "reservation", ID: id}
		}
		return Reservation{}, fmt.Errorf("find reservation: %w", err)
	}
	return r, nil
}

func (s *ReservationScheduler) overlapError(ctx context.Context, kind ConflictKind, conflicts []Reservation, detectErr error) error {
	conflict := &ConflictError{Kind: kind, Conflicts: conflicts}
	if detectErr == nil {
		return conflict
	}
	s.loggerWith(ctx, "mapWriteError", zap.String("conflict_kind", string(kind))).
		Warn("failed to list conflicts after store overlap", zap.Error(detectErr))
	return errors.Join(conflict, fmt.Errorf("list conflicts: %w", detectErr))
}

func (s *ReservationScheduler) ensureNotHistorical(r Reservation) error {
	if !r.EndTime.After(s.now()) {
		return &ImmutableHistoricalRecordError{ID: r.ID, EndTime: r.EndTime}
	}
	return nil
}

func (s *ReservationScheduler) ensureRoomActive(ctx context.Context, id string) error {
	if s.rooms == nil {
		return fmt.Errorf("room catalog not configured")
	}
	room, err := s.rooms.FindRoom(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return &NotFoundError{Entity: "room", ID: id}
		}
		return fmt.Errorf("find room: %w", err)
	}
	if !room.Active {
		return &InactiveEntityError{Entity: "room", ID: id}
	}
	return nil
}

func (s *ReservationScheduler) ensureTeacherQualified(ctx context.Context, id string) error {
	if s.teachers == nil {
		return fmt.Errorf("teacher directory not configured")
	}
	teacher, err := s.teachers.FindTeacher(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return &NotFoundError{Entity: "teacher", ID: id}
		}
		return fmt.Errorf("find teacher: %w", err)
	}
	if !teacher.Active {
		return &InactiveEntityError{Entity: "teacher", ID: id}
	}
	qualified, err := s.teachers.HasTeachingCapability(ctx, id)
	if err != nil {
		return fmt.Errorf("check teaching capability: %w", err)
	}
	if !qualified {
		return newValidationError("teacher_id", "not a qualified teacher")
	}
	return nil
}

func (s *ReservationScheduler) ensureActivityActive(ctx context.Context, id string) error {
	if s.activities == nil {
		return fmt.Errorf("activity catalog not configured")
	}
	activity, err := s.activities.FindActivity(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return &NotFoundError{Entity: "activity", ID: id}
		}
		return fmt.Errorf("find activity: %w", err)
	}
	if !activity.Active {
		return &InactiveEntityError{Entity: "activity", ID: id}
	}
	return nil
}

func (s *ReservationScheduler) lock(ctx context.Context, reservations ...Reservation) (func(), error) {
	release, err := s.locker.Acquire(ctx, lockKeysFor(reservations...)...)
	if err != nil {
		return func() {}, fmt.Errorf("acquire reservation lock: %w", err)
	}
	return release, nil
}

// record forwards an audit event. Audit failures never fail the operation.
func (s *ReservationScheduler) record(ctx context.Context, eventType AuditEventType, actorID string, r Reservation) {
	event := AuditEvent{Type: eventType, ActorID: actorID, OccurredAt: s.now(), Reservation: r}
	if err := s.audit.Record(ctx, event); err != nil {
		s.loggerWith(ctx, "record").Warn("failed to record audit event",
			zap.String("event", string(eventType)),
			zap.String("reservation_id", r.ID),
			zap.Error(err),
		)
	}
}

func validateReferences(roomID, teacherID string, vErr *ValidationError) {
	if roomID == "" {
		vErr.add("room_id", "required")
	}
	if teacherID == "" {
		vErr.add("teacher_id", "required")
	}
}

func validateInterval(start, end time.Time, vErr *ValidationError) {
	if start.IsZero() {
		vErr.add("start_time", "required")
	}
	if end.IsZero() {
		vErr.add("end_time", "required")
	}
	if !start.IsZero() && !end.IsZero() && !start.Before(end) {
		vErr.add("time", "start must be before end")
	}
}

func recurrenceValidationError(err error) error {
	switch {
	case errors.Is(err, recurrence.ErrInvalidFrequency):
		return newValidationError("recurrence.type", "unknown recurrence type")
	case errors.Is(err, recurrence.ErrInvalidInterval):
		return newValidationError("recurrence.interval", "must be positive")
	case errors.Is(err, recurrence.ErrInvalidWeekday):
		return newValidationError("recurrence.days_of_week", "invalid weekday")
	case errors.Is(err, recurrence.ErrInvalidMaxOccurrences):
		return newValidationError("recurrence.max_occurrences", "must not be negative")
	case errors.Is(err, recurrence.ErrInvalidDuration):
		return newValidationError("time", "start must be before end")
	default:
		return fmt.Errorf("expand recurrence: %w", err)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound)
}
