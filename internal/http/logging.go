package http

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/reservation-scheduler/internal/logging"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDMaxLen = 64
)

// RequestLogger attaches a request scoped zap logger to the request context
// and logs one line per completed request.
func RequestLogger(base *zap.Logger) gin.HandlerFunc {
	if base == nil {
		base = zap.NewNop()
	}

	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > requestIDMaxLen {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)

		logger := base.With(
			zap.String("request_id", id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		withRequestContext(c, logging.ContextWithLogger(c.Request.Context(), logger))

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		switch {
		case status >= 500:
			logger.Error("request failed", fields...)
		case status >= 400:
			logger.Warn("request rejected", fields...)
		default:
			logger.Info("request completed", fields...)
		}
	}
}

func handlerLogger(ctx context.Context, fallback *zap.Logger, handlerName, operation string, fields ...zap.Field) *zap.Logger {
	logger := logging.Or(ctx, fallback)
	base := []zap.Field{zap.String("handler", handlerName)}
	if operation != "" {
		base = append(base, zap.String("operation", operation))
	}
	return logger.With(append(base, fields...)...)
}
