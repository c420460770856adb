// Package audit delivers reservation events to logs and to a message broker.
package audit

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/example/reservation-scheduler/internal/application"
)

// Message is the wire shape of an audit event.
type Message struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	ActorID       string    `json:"actor_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
	ReservationID string    `json:"reservation_id"`
	RoomID        string    `json:"room_id"`
	TeacherID     string    `json:"teacher_id"`
	ActivityID    string    `json:"activity_id,omitempty"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	StateCode     string    `json:"state_code"`
}

// NewMessage flattens an event. The id is kept as given.
func NewMessage(event application.AuditEvent) Message {
	r := event.Reservation
	return Message{
		ID:            event.ID,
		Type:          string(event.Type),
		ActorID:       event.ActorID,
		OccurredAt:    event.OccurredAt.UTC(),
		ReservationID: r.ID,
		RoomID:        r.RoomID,
		TeacherID:     r.TeacherID,
		ActivityID:    r.ActivityID,
		StartTime:     r.StartTime.UTC(),
		EndTime:       r.EndTime.UTC(),
		StateCode:     string(r.StateCode),
	}
}

// LogRecorder writes every event to a zap logger.
type LogRecorder struct {
	logger *zap.Logger
}

// NewLogRecorder builds a recorder on logger.
func NewLogRecorder(logger *zap.Logger) *LogRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogRecorder{logger: logger.With(zap.String("component", "audit"))}
}

// Record logs the event at Info.
func (r *LogRecorder) Record(_ context.Context, event application.AuditEvent) error {
	r.logger.Info("reservation event",
		zap.String("event", string(event.Type)),
		zap.String("actor_id", event.ActorID),
		zap.String("reservation_id", event.Reservation.ID),
		zap.String("room_id", event.Reservation.RoomID),
		zap.String("teacher_id", event.Reservation.TeacherID),
		zap.String("state", string(event.Reservation.StateCode)),
		zap.Time("occurred_at", event.OccurredAt),
	)
	return nil
}

// Multi forwards each event to every recorder and joins their errors.
type Multi []application.AuditRecorder

// Record delivers event to every recorder even when one fails.
func (m Multi) Record(ctx context.Context, event application.AuditEvent) error {
	var errs []error
	for _, recorder := range m {
		if recorder == nil {
			continue
		}
		if err := recorder.Record(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
