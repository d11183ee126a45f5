// Package middleware provides shared request processing for the HTTP
// layer: session resolution, role gating, rate limiting and metrics.
package middleware

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/spaps/rental-backend/internal/apperr"
	"github.com/spaps/rental-backend/internal/model"
)

// identityKey is the echo context key the resolved identity sits under.
const identityKey = "identity"

// Authenticator resolves a session token to the account it belongs to.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (model.User, error)
}

// Session returns middleware that reads the session cookie, resolves it
// through auth and stores the identity in the request context. A missing
// or unredeemable cookie aborts the request with 401.
func Session(cookieName string, auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				return apperr.Unauthorized("unauthorized")
			}
			user, err := auth.Authenticate(c.Request().Context(), cookie.Value)
			if err != nil {
				return err
			}
			c.Set(identityKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the identity stored by Session. The boolean is
// false on routes Session does not wrap.
func CurrentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get(identityKey).(model.User)
	return u, ok
}
