package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/reservation-scheduler/internal/application"
)

type catalogService interface {
	SaveRoom(ctx context.Context, principal application.Principal, input application.RoomInput) (application.RoomInput, error)
	SavePerson(ctx context.Context, principal application.Principal, input application.PersonInput) (application.PersonInput, error)
	SaveActivity(ctx context.Context, principal application.Principal, input application.ActivityInput) (application.ActivityInput, error)
}

// CatalogHandler lets administrators register rooms, people and activities.
// POST assigns a new id; PUT inserts or replaces the entry under the path id.
type CatalogHandler struct {
	service   catalogService
	responder responder
	logger    *zap.Logger
}

func NewCatalogHandler(service catalogService, logger *zap.Logger) *CatalogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogHandler{service: service, responder: newResponder(logger), logger: logger}
}

type roomRequest struct {
	Name   string `json:"name" binding:"required"`
	Active *bool  `json:"active"`
}

type roomDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

type personRequest struct {
	DisplayName string `json:"display_name" binding:"required"`
	Active      *bool  `json:"active"`
	Teaching    *bool  `json:"teaching"`
}

type personDTO struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Active      bool   `json:"active"`
	Teaching    bool   `json:"teaching"`
}

type activityRequest struct {
	Name   string `json:"name" binding:"required"`
	Active *bool  `json:"active"`
}

type activityDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

func (h *CatalogHandler) SaveRoom(c *gin.Context) {
	var req roomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.writeBindError(c, err)
		return
	}

	room, err := h.service.SaveRoom(c.Request.Context(), principalFrom(c), application.RoomInput{
		ID:     c.Param("id"),
		Name:   req.Name,
		Active: boolOr(req.Active, true),
	})
	if err != nil {
		h.fail(c, "SaveRoom", err)
		return
	}
	h.responder.writeJSON(c, h.status(c), roomDTO{ID: room.ID, Name: room.Name, Active: room.Active})
}

func (h *CatalogHandler) SavePerson(c *gin.Context) {
	var req personRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.writeBindError(c, err)
		return
	}

	person, err := h.service.SavePerson(c.Request.Context(), principalFrom(c), application.PersonInput{
		ID:          c.Param("id"),
		DisplayName: req.DisplayName,
		Active:      boolOr(req.Active, true),
		Teaching:    boolOr(req.Teaching, true),
	})
	if err != nil {
		h.fail(c, "SavePerson", err)
		return
	}
	h.responder.writeJSON(c, h.status(c), personDTO{
		ID:          person.ID,
		DisplayName: person.DisplayName,
		Active:      person.Active,
		Teaching:    person.Teaching,
	})
}

func (h *CatalogHandler) SaveActivity(c *gin.Context) {
	var req activityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.writeBindError(c, err)
		return
	}

	activity, err := h.service.SaveActivity(c.Request.Context(), principalFrom(c), application.ActivityInput{
		ID:     c.Param("id"),
		Name:   req.Name,
		Active: boolOr(req.Active, true),
	})
	if err != nil {
		h.fail(c, "SaveActivity", err)
		return
	}
	h.responder.writeJSON(c, h.status(c), activityDTO{ID: activity.ID, Name: activity.Name, Active: activity.Active})
}

func (h *CatalogHandler) status(c *gin.Context) int {
	if strings.TrimSpace(c.Param("id")) == "" {
		return http.StatusCreated
	}
	return http.StatusOK
}

func (h *CatalogHandler) fail(c *gin.Context, operation string, err error) {
	handlerLogger(c.Request.Context(), h.logger, "CatalogHandler", operation,
		zap.String("principal_id", principalFrom(c).UserID),
		zap.String("entity_id", c.Param("id")),
	).Warn("catalog request failed", zap.Error(err), zap.String("error_kind", application.ErrorKind(err)))
	h.responder.handleServiceError(c, err)
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
