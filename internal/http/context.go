package http

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/example/reservation-scheduler/internal/application"
)

type contextKey string

const principalContextKey contextKey = "principal"

// ContextWithPrincipal returns a derived context containing the authenticated principal.
func ContextWithPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the authenticated principal from context if available.
func PrincipalFromContext(ctx context.Context) (application.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(application.Principal)
	return principal, ok
}

func principalFrom(c *gin.Context) application.Principal {
	principal, _ := PrincipalFromContext(c.Request.Context())
	return principal
}

func withRequestContext(c *gin.Context, ctx context.Context) {
	c.Request = c.Request.WithContext(ctx)
}
