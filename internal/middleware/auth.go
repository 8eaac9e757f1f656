package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/utils"
)

// SessionResolver looks up the principal occupying a session slot.
type SessionResolver interface {
	Resolve(ctx context.Context, sid string, subject model.OwnerRef) (model.OwnerRef, error)
}

// BearerToken extracts the raw token from an Authorization header.
func BearerToken(c echo.Context) (string, bool) {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	return raw, raw != ""
}

// Authenticate validates the Bearer access token and requires its session
// slot to still hold the token's subject.  The actor and the session id
// are stored in the context for the rest of the chain.
func Authenticate(sessions SessionResolver, secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := BearerToken(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			subject, _ := claims.Actor()
			actor, err := sessions.Resolve(c.Request().Context(), claims.SessionID, subject)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "session expired"})
			}
			SetIdentity(c, actor, claims.SessionID)
			return next(c)
		}
	}
}
