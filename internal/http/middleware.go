package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/reservation-scheduler/internal/application"
)

// Claims are the bearer token claims. The subject is the person id.
type Claims struct {
	Admin bool `json:"admin,omitempty"`
	jwtv5.RegisteredClaims
}

// TokenAuthority signs and verifies HS256 bearer tokens.
type TokenAuthority struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTokenAuthority builds an authority for secret and issuer.
func NewTokenAuthority(secret, issuer string) *TokenAuthority {
	return &TokenAuthority{secret: []byte(secret), issuer: issuer, now: time.Now}
}

// Issue signs a token for principal valid for ttl.
func (a *TokenAuthority) Issue(principal application.Principal, ttl time.Duration) (string, error) {
	now := a.now()
	claims := Claims{
		Admin: principal.IsAdmin,
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   principal.UserID,
			Issuer:    a.issuer,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString(a.secret)
}

// Verify parses token and returns its principal.
func (a *TokenAuthority) Verify(token string) (application.Principal, error) {
	parsed, err := jwtv5.ParseWithClaims(token, &Claims{}, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwtv5.WithIssuer(a.issuer), jwtv5.WithTimeFunc(a.now), jwtv5.WithExpirationRequired())
	if err != nil {
		return application.Principal{}, fmt.Errorf("%w: %v", application.ErrUnauthorized, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || strings.TrimSpace(claims.Subject) == "" {
		return application.Principal{}, application.ErrUnauthorized
	}
	return application.Principal{UserID: claims.Subject, IsAdmin: claims.Admin}, nil
}

// TokenVerifier resolves a bearer token to a principal.
type TokenVerifier interface {
	Verify(token string) (application.Principal, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// principal on the request context.
func RequireAuth(verifier TokenVerifier, logger *zap.Logger) gin.HandlerFunc {
	responder := newResponder(logger)

	return func(c *gin.Context) {
		token := extractBearerToken(c.GetHeader("Authorization"))
		if token == "" {
			responder.writeError(c, http.StatusUnauthorized, errMissingToken)
			return
		}

		principal, err := verifier.Verify(token)
		if err != nil {
			if !errors.Is(err, application.ErrUnauthorized) {
				responder.loggerFor(c).Error("token verification failed", zap.Error(err))
			}
			responder.writeError(c, http.StatusUnauthorized, errInvalidToken)
			return
		}

		withRequestContext(c, ContextWithPrincipal(c.Request.Context(), principal))
		c.Next()
	}
}

// RequireAdmin only lets administrators through. It must run after RequireAuth.
func RequireAdmin(logger *zap.Logger) gin.HandlerFunc {
	responder := newResponder(logger)

	return func(c *gin.Context) {
		principal, ok := PrincipalFromContext(c.Request.Context())
		if !ok {
			responder.writeError(c, http.StatusUnauthorized, errMissingToken)
			return
		}
		if !principal.IsAdmin {
			responder.writeError(c, http.StatusForbidden, errForbidden)
			return
		}
		c.Next()
	}
}

func extractBearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
