package middleware

// identity.go holds the context keys shared by the middleware chain and
// the handlers.  Authenticate stores the resolved actor and the session
// slot id; everything downstream reads them through these helpers.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

const (
	ctxActor     = "actor"
	ctxSessionID = "session_id"
)

// Actor returns the principal resolved for this request.
func Actor(c echo.Context) (model.OwnerRef, bool) {
	ref, ok := c.Get(ctxActor).(model.OwnerRef)
	if !ok || ref.IsZero() {
		return model.OwnerRef{}, false
	}
	return ref, true
}

// SessionID returns the session slot bound to the request, or "".
func SessionID(c echo.Context) string {
	s, _ := c.Get(ctxSessionID).(string)
	return s
}

// userID is the rate limiter's view of the caller: "<kind>:<id>" or
// "guest".
func userID(c echo.Context) string {
	if ref, ok := Actor(c); ok {
		return ref.String()
	}
	return "guest"
}

// SetIdentity binds an actor and its session slot to the request.
func SetIdentity(c echo.Context, actor model.OwnerRef, sid string) {
	c.Set(ctxActor, actor)
	c.Set(ctxSessionID, sid)
}

func clearIdentity(c echo.Context) {
	c.Set(ctxActor, nil)
	c.Set(ctxSessionID, "")
}
