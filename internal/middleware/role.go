package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/access"
	"github.com/iliyamo/hotel-reservation/internal/model"
)

// RequireRole lets the request through when the actor's kind is granted
// any of kinds by the role hierarchy.  It must run after Authenticate.
func RequireRole(kinds ...model.ActorKind) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := Actor(c)
			if !ok || !access.Authorize(actor.Kind, kinds...) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
