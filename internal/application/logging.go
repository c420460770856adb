package application

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/example/reservation-scheduler/internal/logging"
)

func defaultLogger(logger *zap.Logger) *zap.Logger {
	if logger != nil {
		return logger
	}
	return zap.NewNop()
}

func serviceLogger(ctx context.Context, base *zap.Logger, serviceName, operation string, fields ...zap.Field) *zap.Logger {
	logger := logging.Or(ctx, base)

	pairs := []zap.Field{zap.String("service", serviceName)}
	if operation != "" {
		pairs = append(pairs, zap.String("operation", operation))
	}
	if len(fields) > 0 {
		pairs = append(pairs, fields...)
	}
	return logger.With(pairs...)
}

// ErrorKind maps sentinel and validation errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInactiveEntity):
		return "inactive_entity"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrImmutableRecord):
		return "immutable_record"
	case errors.Is(err, ErrOutsideOperatingHours):
		return "outside_operating_hours"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}

	return "unexpected"
}
