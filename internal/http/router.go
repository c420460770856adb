package http

import (
	"context"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Reservations *ReservationHandler
	Catalog      *CatalogHandler
	Calendars    *CalendarHandler
	Tokens       TokenVerifier
	Logger       *zap.Logger
	// Health reports readiness of backing stores; nil means always healthy.
	Health func(ctx context.Context) error
}

var registerJSONNames sync.Once

// NewRouter builds the gin engine. Everything under /api/v1 requires a
// bearer token; approvals, rejections, completions and catalog writes
// require an administrator.
func NewRouter(cfg RouterConfig) *gin.Engine {
	useJSONFieldNames()

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(logger))

	r.GET("/healthz", func(c *gin.Context) {
		if cfg.Health != nil {
			if err := cfg.Health(c.Request.Context()); err != nil {
				logger.Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	if cfg.Tokens != nil {
		api.Use(RequireAuth(cfg.Tokens, logger))
	}
	admin := RequireAdmin(logger)

	if h := cfg.Reservations; h != nil {
		reservations := api.Group("/reservations")
		{
			reservations.POST("", h.Create)
			reservations.GET("", h.Search)
			reservations.GET("/statistics", h.Statistics)
			reservations.GET("/upcoming", h.Upcoming)
			reservations.GET("/current", h.Current)
			reservations.POST("/conflicts", h.DetectConflicts)
			reservations.POST("/bulk", h.CreateBulk)
			reservations.POST("/bulk-delete", h.DeleteBulk)
			reservations.POST("/recurring", h.CreateRecurring)
			reservations.GET("/:id", h.Get)
			reservations.PUT("/:id", h.Update)
			reservations.DELETE("/:id", h.Delete)
			reservations.POST("/:id/approve", admin, h.Approve)
			reservations.POST("/:id/reject", admin, h.Reject)
			reservations.POST("/:id/cancel", h.Cancel)
			reservations.POST("/:id/complete", admin, h.Complete)
		}

		api.GET("/rooms/:id/reservations", h.ListByRoom)
		api.GET("/teachers/:id/reservations", h.ListByTeacher)
		api.GET("/activities/:id/reservations", h.ListByActivity)
	}

	if h := cfg.Calendars; h != nil {
		api.GET("/rooms/:id/calendar.ics", h.Room)
		api.GET("/teachers/:id/calendar.ics", h.Teacher)
	}

	if h := cfg.Catalog; h != nil {
		api.POST("/rooms", admin, h.SaveRoom)
		api.PUT("/rooms/:id", admin, h.SaveRoom)
		api.POST("/people", admin, h.SavePerson)
		api.PUT("/people/:id", admin, h.SavePerson)
		api.POST("/activities", admin, h.SaveActivity)
		api.PUT("/activities/:id", admin, h.SaveActivity)
	}

	return r
}

// useJSONFieldNames makes validator report json field names instead of Go
// struct field names.
func useJSONFieldNames() {
	registerJSONNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return field.Name
		})
	})
}
