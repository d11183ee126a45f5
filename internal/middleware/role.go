package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/spaps/rental-backend/internal/apperr"
	"github.com/spaps/rental-backend/internal/model"
)

// RequireRole returns middleware that enforces that the authenticated
// caller carries one of the given roles. It must run after Session; an
// absent identity fails closed with 403.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok || !allowed[user.Role] {
				return apperr.Forbidden("forbidden")
			}
			return next(c)
		}
	}
}
