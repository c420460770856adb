package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/reservation-scheduler/internal/application"
	"github.com/example/reservation-scheduler/internal/lifecycle"
)

const calendarProductID = "-//reservation-scheduler//calendar//EN"

type calendarSource interface {
	ListByRoom(ctx context.Context, roomID string, includePast bool) ([]application.Reservation, error)
	ListByTeacher(ctx context.Context, teacherID string, includePast bool) ([]application.Reservation, error)
}

// CalendarHandler exports reservations as iCalendar feeds. Rejected and
// canceled reservations are left out.
type CalendarHandler struct {
	source    calendarSource
	responder responder
	logger    *zap.Logger
	now       func() time.Time
}

func NewCalendarHandler(source calendarSource, logger *zap.Logger) *CalendarHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarHandler{source: source, responder: newResponder(logger), logger: logger, now: time.Now}
}

func (h *CalendarHandler) Room(c *gin.Context) {
	h.serve(c, "Room", "Room "+c.Param("id"), h.source.ListByRoom)
}

func (h *CalendarHandler) Teacher(c *gin.Context) {
	h.serve(c, "Teacher", "Teacher "+c.Param("id"), h.source.ListByTeacher)
}

func (h *CalendarHandler) serve(c *gin.Context, operation, name string, list func(ctx context.Context, id string, includePast bool) ([]application.Reservation, error)) {
	reservations, err := list(c.Request.Context(), c.Param("id"), true)
	if err != nil {
		handlerLogger(c.Request.Context(), h.logger, "CalendarHandler", operation, zap.String("entity_id", c.Param("id"))).
			Warn("calendar export failed", zap.Error(err), zap.String("error_kind", application.ErrorKind(err)))
		h.responder.handleServiceError(c, err)
		return
	}

	body := buildCalendar(name, reservations, h.now())
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", c.Param("id")+".ics"))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}

func buildCalendar(name string, reservations []application.Reservation, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetXWRCalName(name)

	for _, r := range reservations {
		status, ok := eventStatus(r.StateCode)
		if !ok {
			continue
		}
		event := cal.AddEvent(r.ID)
		event.SetDtStampTime(stamp.UTC())
		event.SetStartAt(r.StartTime.UTC())
		event.SetEndAt(r.EndTime.UTC())
		event.SetSummary(summary(r))
		event.SetLocation(r.RoomID)
		event.SetStatus(status)
		if r.Observations != "" {
			event.SetDescription(r.Observations)
		}
		if !r.CreatedAt.IsZero() {
			event.SetCreatedTime(r.CreatedAt.UTC())
		}
		if !r.UpdatedAt.IsZero() {
			event.SetModifiedAt(r.UpdatedAt.UTC())
		}
	}
	return cal.Serialize()
}

func eventStatus(state lifecycle.State) (ics.ObjectStatus, bool) {
	switch state {
	case lifecycle.Pending:
		return ics.ObjectStatusTentative, true
	case lifecycle.Confirmed, lifecycle.Completed:
		return ics.ObjectStatusConfirmed, true
	default:
		return "", false
	}
}

func summary(r application.Reservation) string {
	if r.ActivityID != "" {
		return fmt.Sprintf("%s (%s)", r.ActivityID, r.TeacherID)
	}
	return "Reservation " + r.TeacherID
}
