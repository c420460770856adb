package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/example/reservation-scheduler/internal/persistence"
)

// CreateBulkReservations validates items in input order and persists the
// ones that pass in a single store call. A failing item is recorded by index
// and skipped; later items are checked against earlier accepted ones.
// Infrastructure failures abort the whole batch.
func (s *ReservationScheduler) CreateBulkReservations(ctx context.Context, items []ReservationInput) (result BulkCreateResult, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationScheduler is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateBulkReservations", zap.Int("requested", len(items)))
	defer func() {
		if err != nil {
			logger.Error("bulk create failed", zap.Error(err), zap.String("error_kind", ErrorKind(err)))
			return
		}
		logger.Info("bulk create finished",
			zap.Int("created", result.CreatedCount),
			zap.Int("rejected", len(result.Errors)),
		)
	}()

	result.Requested = len(items)
	if len(items) == 0 {
		return
	}
	if s.reservations == nil {
		err = fmt.Errorf("reservation store not configured")
		return
	}

	prepared := make([]Reservation, len(items))
	ok := make([]bool, len(items))
	for i, item := range items {
		candidate, pErr := s.prepare(ctx, item)
		if pErr != nil {
			if !isDomainError(pErr) {
				err = pErr
				return
			}
			result.Errors = append(result.Errors, BulkItemError{Index: i, Reason: pErr.Error(), Err: pErr})
			continue
		}
		prepared[i] = candidate
		ok[i] = true
	}

	var lockable []Reservation
	for i := range prepared {
		if ok[i] {
			lockable = append(lockable, prepared[i])
		}
	}
	if len(lockable) == 0 {
		sortItemErrors(result.Errors)
		return
	}

	release, err := s.lock(ctx, lockable...)
	if err != nil {
		return
	}
	defer release()

	var accepted []Reservation
	for i := range prepared {
		if !ok[i] {
			continue
		}
		if cErr := s.checkConflicts(ctx, prepared[i], accepted); cErr != nil {
			if !isDomainError(cErr) {
				err = cErr
				return
			}
			result.Errors = append(result.Errors, BulkItemError{Index: i, Reason: cErr.Error(), Err: cErr})
			continue
		}
		accepted = append(accepted, prepared[i])
	}
	sortItemErrors(result.Errors)

	if len(accepted) == 0 {
		return
	}

	persisted, err := s.reservations.CreateBulk(ctx, accepted)
	if err != nil {
		err = s.mapBulkWriteError(ctx, accepted, err)
		return
	}

	for _, r := range persisted {
		s.record(ctx, AuditReservationCreated, "", r)
	}
	result.Created = persisted
	result.CreatedCount = len(persisted)
	return
}

// CreateRecurringReservation expands the recurrence and creates one
// reservation per occurrence with best-effort batch semantics.
func (s *ReservationScheduler) CreateRecurringReservation(ctx context.Context, input RecurringReservationInput) (BulkCreateResult, error) {
	if s == nil {
		return BulkCreateResult{}, fmt.Errorf("ReservationScheduler is nil")
	}

	vErr := &ValidationError{}
	validateInterval(input.StartTime, input.EndTime, vErr)
	if vErr.HasErrors() {
		return BulkCreateResult{}, vErr
	}

	occurrences, err := s.engine.Expand(input.StartTime, input.EndTime, input.Recurrence)
	if err != nil {
		return BulkCreateResult{}, recurrenceValidationError(err)
	}

	s.loggerWith(ctx, "CreateRecurringReservation",
		zap.String("frequency", string(input.Recurrence.Frequency)),
		zap.Int("occurrences", len(occurrences)),
	).Debug("recurrence expanded")

	items := make([]ReservationInput, 0, len(occurrences))
	for _, occ := range occurrences {
		item := input.ReservationInput
		item.StartTime = occ.Start
		item.EndTime = occ.End
		items = append(items, item)
	}
	return s.CreateBulkReservations(ctx, items)
}

// DeleteBulkReservations deletes every id or none of them. Each id must name
// an existing reservation that has not ended yet; a reservation that
// disappears between validation and deletion fails the whole batch.
func (s *ReservationScheduler) DeleteBulkReservations(ctx context.Context, ids []string) (result BulkDeleteResult, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationScheduler is nil")
		return
	}

	logger := s.loggerWith(ctx, "DeleteBulkReservations", zap.Int("requested", len(ids)))
	defer func() {
		if err != nil {
			logger.Error("bulk delete rejected", zap.Error(err), zap.String("error_kind", ErrorKind(err)))
			return
		}
		logger.Info("bulk delete finished", zap.Int("deleted", result.DeletedCount))
	}()

	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			err = newValidationError("ids", "must not contain empty identifiers")
			return
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		err = newValidationError("ids", "required")
		return
	}

	targets := make([]Reservation, 0, len(unique))
	for _, id := range unique {
		r, lErr := s.load(ctx, id)
		if lErr != nil {
			err = lErr
			return
		}
		if err = s.ensureNotHistorical(r); err != nil {
			return
		}
		targets = append(targets, r)
	}

	if err = s.reservations.DeleteBulk(ctx, unique); err != nil {
		var rowErr *persistence.RowError
		if errors.As(err, &rowErr) && isNotFound(rowErr) {
			err = &NotFoundError{Entity: "reservation", ID: rowErr.ID}
			return
		}
		if isNotFound(err) {
			err = &NotFoundError{Entity: "reservation"}
			return
		}
		err = fmt.Errorf("delete reservations: %w", err)
		return
	}

	for _, r := range targets {
		s.record(ctx, AuditReservationDeleted, "", r)
	}
	result.DeletedCount = len(unique)
	result.IDs = unique
	return
}

// mapBulkWriteError resolves a storage overlap raised by CreateBulk. The
// store reports the offending row when it can; otherwise the batch is
// searched for the first item the store now sees as conflicting.
func (s *ReservationScheduler) mapBulkWriteError(ctx context.Context, batch []Reservation, err error) error {
	var rowErr *persistence.RowError
	if errors.As(err, &rowErr) {
		for _, r := range batch {
			if r.ID == rowErr.ID {
				return s.mapWriteError(ctx, r, err)
			}
		}
	}
	if len(batch) > 0 && (errors.Is(err, persistence.ErrRoomOverlap) || errors.Is(err, persistence.ErrTeacherOverlap)) {
		for _, r := range batch {
			if cErr := s.checkConflicts(ctx, r, nil); cErr != nil && isDomainError(cErr) {
				return cErr
			}
		}
		return s.mapWriteError(ctx, batch[0], err)
	}
	return s.mapWriteError(ctx, Reservation{}, err)
}

func sortItemErrors(errs []BulkItemError) {
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].Index < errs[j].Index })
}
