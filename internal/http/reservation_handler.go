package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/reservation-scheduler/internal/application"
)

const defaultUpcomingLimit = 10

type reservationService interface {
	CreateReservation(ctx context.Context, input application.ReservationInput) (application.Reservation, error)
	GetReservation(ctx context.Context, id string) (application.Reservation, error)
	UpdateReservation(ctx context.Context, id string, patch application.ReservationPatch) (application.Reservation, error)
	DeleteReservation(ctx context.Context, id string) error
	Approve(ctx context.Context, id, approverID string) (application.Reservation, error)
	Reject(ctx context.Context, id, rejecterID, reason string) (application.Reservation, error)
	Cancel(ctx context.Context, id, cancelerID, reason string) (application.Reservation, error)
	Complete(ctx context.Context, id string) (application.Reservation, error)
	CreateBulkReservations(ctx context.Context, items []application.ReservationInput) (application.BulkCreateResult, error)
	CreateRecurringReservation(ctx context.Context, input application.RecurringReservationInput) (application.BulkCreateResult, error)
	DeleteBulkReservations(ctx context.Context, ids []string) (application.BulkDeleteResult, error)
	DetectAll(ctx context.Context, query application.ConflictQuery) (application.ConflictReport, error)
	Search(ctx context.Context, filter application.ReservationFilter) ([]application.Reservation, error)
	Statistics(ctx context.Context, filter application.ReservationFilter) (application.ReservationStatistics, error)
	Upcoming(ctx context.Context, limit int) ([]application.Reservation, error)
	Current(ctx context.Context) ([]application.Reservation, error)
	ListByRoom(ctx context.Context, roomID string, includePast bool) ([]application.Reservation, error)
	ListByTeacher(ctx context.Context, teacherID string, includePast bool) ([]application.Reservation, error)
	ListByActivity(ctx context.Context, activityID string, includePast bool) ([]application.Reservation, error)
}

// ReservationHandler serves the reservation endpoints.
type ReservationHandler struct {
	service   reservationService
	responder responder
	logger    *zap.Logger
}

// NewReservationHandler wires the handler to the scheduler.
func NewReservationHandler(service reservationService, logger *zap.Logger) *ReservationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReservationHandler{service: service, responder: newResponder(logger), logger: logger}
}

func (h *ReservationHandler) log(c *gin.Context, operation string, fields ...zap.Field) *zap.Logger {
	principal := principalFrom(c)
	fields = append(fields, zap.String("principal_id", principal.UserID))
	return handlerLogger(c.Request.Context(), h.logger, "ReservationHandler", operation, fields...)
}

func (h *ReservationHandler) Create(c *gin.Context) {
	var req reservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.writeBindError(c, err)
		return
	}

	reservation, err := h.service.CreateReservation(c.Request.Context(), req.toInput())
	if err != nil {
		h.fail(c, "Create", err)
		return
	}

	h.log(c, "Create", zap.String("reservation_id", reservation.ID)).Info("reservation created")
	h.responder.writeJSON(c, http.StatusCreated, reservationResponse{Reservation: toReservationDTO(reservation)})
}

func (h *ReservationHandler) Get(c *gin.Context) {
	reservation, err := h.service.GetReservation(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "Get", err)
		return
	}
	h.responder.writeJSON(c, http.StatusOK, reservationResponse{Reservation: toReservationDTO(reservation)})
}

func (h *ReservationHandler) Update(c *gin.Context) {
	var req reservationPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.writeBindError(c, err)
		return
	}

	reservation, err := h.service.UpdateReservation(c.Request.Context(), c.Param("id"), req.toPatch())
	if err != nil {
		h.fail(c, "Update", err)
		return
	}

	h.log(c, "Update", zap.String("reservation_id", reservation.ID)).Info("reservation updated")
	h.responder.writeJSON(c, http.StatusOK, reservationResponse{Reservation: toReservationDTO(reservation)})
}

func (h *ReservationHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.DeleteReservation(c.Request.Context(), id); err != nil {
		h.fail(c, "Delete", err)
		return
	}

	h.log(c, "Delete", zap.String("reservation_id", id)).Info("reservation deleted")
	h.responder.writeJSON(c, http.StatusNoContent, nil)
}

func (h *ReservationHandler) Approve(c *gin.Context) {
	h.transition(c, "Approve", func(ctx context.Context, id, actorID, _ string) (application.Reservation, error) {
		return h.service.Approve(ctx, id, actorID)
	})
}

func (h *ReservationHandler) Reject(c *gin.Context) {
	h.transition(c, "Reject", h.service.Reject)
}

func (h *ReservationHandler) Cancel(c *gin.Context) {
	h.transition(c, "Cancel", h.service.Cancel)
}

func (h *ReservationHandler) Complete(c *gin.Context) {
	h.transition(c, "Complete", func(ctx context.Context, id, _, _ string) (application.Reservation, error) {
		return h.service.Complete(ctx, id)
	})
}

// transition runs a lifecycle move with the authenticated principal as actor.
func (h *ReservationHandler) transition(c *gin.Context, operation string, apply func(ctx context.Context, id, actorID, reason string) (application.Reservation, error)) {
	var req transitionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			h.responder.writeBindError(c, err)
			return
		}
	}

	principal := principalFrom(c)
	reservation, err := apply(c.Request.Context(), c.Param("id"), principal.UserID, strings.TrimSpace(req.Reason))
	if err != nil {
		h.fail(c, operation, err)
		return
	}

	h.log(c, operation, zap.String("reservation_id", reservation.ID), zap.String("state", string(reservation.StateCode))).Info("reservation transitioned")
	h.responder.writeJSON(c, http.StatusOK, reservationResponse{Reservation: toReservationDTO(reservation)})
}

func (h *ReservationHandler) CreateBulk(c *gin.Context) {
	var req bulkCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.writeBindError(c, err)
		return
	}

	items := make([]application.ReservationInput, 0, len(req.Reservations))
	for _, item := range req.Reservations {
		items = append(items, item.toInput())
	}

	result, err := h.service.CreateBulkReservations(c.Request.Context(), items)
	if err != nil {
		h.fail(c, "CreateBulk", err)
		return
	}

	h.log(c, "CreateBulk", zap.Int("requested", result.Requested), zap.Int("created", result.CreatedCount)).Info("bulk reservations processed")
	h.responder.writeJSON(c, bulkStatus(result), toBulkCreateResponse(result))
}

func (h *ReservationHandler) CreateRecurring(c *gin.Context) {
	var req recurringReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.writeBindError(c, err)
		return
	}

	rule, err := req.Recurrence.toRule()
	if err != nil {
		h.fail(c, "CreateRecurring", err)
		return
	}

	result, err := h.service.CreateRecurringReservation(c.Request.Context(), application.RecurringReservationInput{
		ReservationInput: req.toInput(),
		Recurrence:       rule,
	})
	if err != nil {
		h.fail(c, "CreateRecurring", err)
		return
	}

	h.log(c, "CreateRecurring", zap.Int("requested", result.Requested), zap.Int("created", result.CreatedCount)).Info("recurring reservations processed")
	h.responder.writeJSON(c, bulkStatus(result), toBulkCreateResponse(result))
}

func (h *ReservationHandler) DeleteBulk(c *gin.Context) {
	var req bulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.writeBindError(c, err)
		return
	}

	result, err := h.service.DeleteBulkReservations(c.Request.Context(), req.IDs)
	if err != nil {
		h.fail(c, "DeleteBulk", err)
		return
	}

	h.log(c, "DeleteBulk", zap.Int("deleted", result.DeletedCount)).Info("bulk reservations deleted")
	h.responder.writeJSON(c, http.StatusOK, bulkDeleteResponse{DeletedCount: result.DeletedCount, IDs: result.IDs})
}

func (h *ReservationHandler) DetectConflicts(c *gin.Context) {
	var req conflictQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.writeBindError(c, err)
		return
	}

	query, err := req.toQuery()
	if err != nil {
		h.fail(c, "DetectConflicts", err)
		return
	}

	report, err := h.service.DetectAll(c.Request.Context(), query)
	if err != nil {
		h.fail(c, "DetectConflicts", err)
		return
	}
	h.responder.writeJSON(c, http.StatusOK, toConflictReportResponse(report))
}

func (h *ReservationHandler) Search(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	reservations, err := h.service.Search(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, "Search", err)
		return
	}
	h.responder.writeJSON(c, http.StatusOK, listReservationsResponse{Reservations: toReservationDTOs(reservations)})
}

func (h *ReservationHandler) Statistics(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	stats, err := h.service.Statistics(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, "Statistics", err)
		return
	}
	h.responder.writeJSON(c, http.StatusOK, toStatisticsResponse(stats))
}

func (h *ReservationHandler) Upcoming(c *gin.Context) {
	limit := defaultUpcomingLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.responder.writeError(c, http.StatusBadRequest, errInvalidQuery)
			return
		}
		limit = parsed
	}

	reservations, err := h.service.Upcoming(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, "Upcoming", err)
		return
	}
	h.responder.writeJSON(c, http.StatusOK, listReservationsResponse{Reservations: toReservationDTOs(reservations)})
}

func (h *ReservationHandler) Current(c *gin.Context) {
	reservations, err := h.service.Current(c.Request.Context())
	if err != nil {
		h.fail(c, "Current", err)
		return
	}
	h.responder.writeJSON(c, http.StatusOK, listReservationsResponse{Reservations: toReservationDTOs(reservations)})
}

func (h *ReservationHandler) ListByRoom(c *gin.Context) {
	h.listBy(c, "ListByRoom", h.service.ListByRoom)
}

func (h *ReservationHandler) ListByTeacher(c *gin.Context) {
	h.listBy(c, "ListByTeacher", h.service.ListByTeacher)
}

func (h *ReservationHandler) ListByActivity(c *gin.Context) {
	h.listBy(c, "ListByActivity", h.service.ListByActivity)
}

func (h *ReservationHandler) listBy(c *gin.Context, operation string, list func(ctx context.Context, id string, includePast bool) ([]application.Reservation, error)) {
	includePast, ok := h.includePast(c)
	if !ok {
		return
	}

	reservations, err := list(c.Request.Context(), c.Param("id"), includePast)
	if err != nil {
		h.fail(c, operation, err)
		return
	}
	h.responder.writeJSON(c, http.StatusOK, listReservationsResponse{Reservations: toReservationDTOs(reservations)})
}

func (h *ReservationHandler) includePast(c *gin.Context) (bool, bool) {
	raw := c.Query("include_past")
	if raw == "" {
		return false, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		h.responder.writeError(c, http.StatusBadRequest, errInvalidQuery)
		return false, false
	}
	return v, true
}

func (h *ReservationHandler) bindFilter(c *gin.Context) (application.ReservationFilter, bool) {
	var query searchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.responder.writeBindError(c, err)
		return application.ReservationFilter{}, false
	}
	filter, err := query.toFilter()
	if err != nil {
		h.responder.writeError(c, http.StatusBadRequest, err)
		return application.ReservationFilter{}, false
	}
	return filter, true
}

func (h *ReservationHandler) fail(c *gin.Context, operation string, err error) {
	h.log(c, operation, zap.String("reservation_id", c.Param("id"))).
		Warn("reservation request failed", zap.Error(err), zap.String("error_kind", application.ErrorKind(err)))
	h.responder.handleServiceError(c, err)
}

// bulkStatus is 201 when anything was created and 200 when every item was
// skipped.
func bulkStatus(result application.BulkCreateResult) int {
	if result.CreatedCount > 0 {
		return http.StatusCreated
	}
	return http.StatusOK
}
