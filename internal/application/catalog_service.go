package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/reservation-scheduler/internal/persistence"
)

// RoomInput describes a room registered in the catalog.
type RoomInput struct {
	ID     string
	Name   string
	Active bool
}

// PersonInput describes a person who may teach or act on reservations.
// Teaching grants the capability required to hold a reservation.
type PersonInput struct {
	ID          string
	DisplayName string
	Active      bool
	Teaching    bool
}

// ActivityInput describes an activity reservations can be linked to.
type ActivityInput struct {
	ID     string
	Name   string
	Active bool
}

// CatalogWriter persists catalog entries, inserting or replacing by ID.
type CatalogWriter interface {
	SaveRoom(ctx context.Context, room RoomInput) error
	SavePerson(ctx context.Context, person PersonInput) error
	SaveActivity(ctx context.Context, activity ActivityInput) error
}

// CatalogService lets administrators maintain the rooms, people and
// activities reservations refer to. Deactivating an entry does not touch
// existing reservations; it only blocks new ones.
type CatalogService struct {
	writer      CatalogWriter
	idGenerator func() string
	logger      *zap.Logger
}

// NewCatalogService wires the catalog writer.
func NewCatalogService(writer CatalogWriter, idGenerator func() string, logger *zap.Logger) *CatalogService {
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	return &CatalogService{writer: writer, idGenerator: idGenerator, logger: defaultLogger(logger)}
}

// SaveRoom registers or replaces a room.
func (s *CatalogService) SaveRoom(ctx context.Context, principal Principal, input RoomInput) (room RoomInput, err error) {
	input.ID = s.idOrNew(input.ID)
	input.Name = strings.TrimSpace(input.Name)

	err = s.save(ctx, principal, "SaveRoom", input.ID, func() error {
		if input.Name == "" {
			return newValidationError("name", "required")
		}
		return s.writer.SaveRoom(ctx, input)
	})
	if err != nil {
		return RoomInput{}, err
	}
	return input, nil
}

// SavePerson registers or replaces a person.
func (s *CatalogService) SavePerson(ctx context.Context, principal Principal, input PersonInput) (PersonInput, error) {
	input.ID = s.idOrNew(input.ID)
	input.DisplayName = strings.TrimSpace(input.DisplayName)

	err := s.save(ctx, principal, "SavePerson", input.ID, func() error {
		if input.DisplayName == "" {
			return newValidationError("display_name", "required")
		}
		return s.writer.SavePerson(ctx, input)
	})
	if err != nil {
		return PersonInput{}, err
	}
	return input, nil
}

// SaveActivity registers or replaces an activity.
func (s *CatalogService) SaveActivity(ctx context.Context, principal Principal, input ActivityInput) (ActivityInput, error) {
	input.ID = s.idOrNew(input.ID)
	input.Name = strings.TrimSpace(input.Name)

	err := s.save(ctx, principal, "SaveActivity", input.ID, func() error {
		if input.Name == "" {
			return newValidationError("name", "required")
		}
		return s.writer.SaveActivity(ctx, input)
	})
	if err != nil {
		return ActivityInput{}, err
	}
	return input, nil
}

func (s *CatalogService) save(ctx context.Context, principal Principal, operation, id string, write func() error) (err error) {
	if s == nil {
		return fmt.Errorf("CatalogService is nil")
	}

	logger := serviceLogger(ctx, s.logger, "CatalogService", operation,
		zap.String("principal_id", principal.UserID),
		zap.String("entity_id", id),
	)
	defer func() {
		if err != nil {
			logger.Error("failed to save catalog entry", zap.Error(err), zap.String("error_kind", ErrorKind(err)))
			return
		}
		logger.Info("catalog entry saved")
	}()

	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if s.writer == nil {
		return fmt.Errorf("catalog writer not configured")
	}
	return mapCatalogError(write())
}

func (s *CatalogService) idOrNew(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return s.idGenerator()
}

func mapCatalogError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrDuplicate):
		return newValidationError("name", "already taken")
	case errors.Is(err, persistence.ErrConstraintViolation):
		return newValidationError("id", "invalid")
	default:
		return err
	}
}
