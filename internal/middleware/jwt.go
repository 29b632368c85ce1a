package middleware // middleware provides shared request processing for handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ozgekaya/student-info-api/internal/auth"
)

// identityKey is the single context slot the authenticated identity
// lives under. Handlers never read raw claims.
const identityKey = "identity"

// JWTAuth returns an Echo middleware that validates a Bearer access
// token and stores the resulting auth.Identity in the request context.
// The provided secret must match the one used when issuing tokens.
// This middleware wraps every protected route; handlers read the caller
// back with CurrentIdentity.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false, "message": "missing bearer token",
				})
			}
			raw := strings.TrimPrefix(header, "Bearer ")
			id, err := auth.ParseToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false, "message": "invalid or expired token",
				})
			}
			c.Set(identityKey, id)
			return next(c)
		}
	}
}

// CurrentIdentity returns the identity stored by JWTAuth. The boolean
// is false on routes that skipped authentication.
func CurrentIdentity(c echo.Context) (auth.Identity, bool) {
	id, ok := c.Get(identityKey).(auth.Identity)
	return id, ok
}
