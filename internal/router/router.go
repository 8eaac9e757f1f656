// Package router mounts the handlers on Echo, one group per role.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/handler"
	"github.com/iliyamo/hotel-reservation/internal/middleware"
	"github.com/iliyamo/hotel-reservation/internal/model"
)

// Handlers bundles every handler the API serves.
type Handlers struct {
	Auth          *handler.AuthHandler
	Floors        *handler.FloorHandler
	Rooms         *handler.RoomHandler
	Reservations  *handler.ReservationHandler
	Bans          *handler.BanHandler
	Managers      *handler.StaffHandler
	Receptionists *handler.StaffHandler
	Clients       *handler.ClientHandler
}

// Guards are the middlewares protecting authenticated routes.  Cache
// wraps the public reference endpoints.
type Guards struct {
	Authenticate echo.MiddlewareFunc
	BanGate      echo.MiddlewareFunc
	Cache        echo.MiddlewareFunc
}

// Register mounts every route.
func Register(e *echo.Echo, h Handlers, g Guards) {
	RegisterPublic(e, h, g)
	signedIn := e.Group("/v1", g.Authenticate, g.BanGate)
	signedIn.POST("/auth/logout", h.Auth.Logout)
	signedIn.GET("/me", h.Auth.Me)

	RegisterClient(signedIn, h)
	RegisterStaff(signedIn, h)
	RegisterManager(signedIn, h)
}

// RegisterPublic registers the routes that need no session.
func RegisterPublic(e *echo.Echo, h Handlers, g Guards) {
	e.GET("/healthz", handler.Health)

	auth := e.Group("/v1/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)

	e.GET("/v1/countries", h.Clients.Countries, g.Cache)
	e.GET(middleware.BanNoticePath, h.Bans.Notice)
}

// RegisterClient registers the booking routes of signed-in clients.
func RegisterClient(v1 *echo.Group, h Handlers) {
	g := v1.Group("/client", middleware.RequireRole(model.KindClient))
	g.GET("/rooms", h.Rooms.Available)
	g.GET("/reservations", h.Reservations.ListOwn)
	g.POST("/reservations", h.Reservations.ClientCreate)
	g.PUT("/reservations/:id", h.Reservations.ClientUpdate)
	g.DELETE("/reservations/:id", h.Reservations.ClientDelete)
	g.POST("/reservations/:id/checkout", h.Reservations.Checkout)

	v1.GET("/payments/success", h.Reservations.PaymentSuccess, middleware.RequireRole(model.KindClient))
}
