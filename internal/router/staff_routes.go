package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/middleware"
	"github.com/iliyamo/hotel-reservation/internal/model"
)

// RegisterStaff registers the front-desk routes (receptionist and up).
func RegisterStaff(v1 *echo.Group, h Handlers) {
	g := v1.Group("/staff", middleware.RequireRole(model.KindReceptionist))
	g.GET("/reservations", h.Reservations.ListAll)
	g.GET("/reservations/:id", h.Reservations.Get)
	g.POST("/reservations", h.Reservations.StaffCreate)
	g.PUT("/reservations/:id", h.Reservations.StaffUpdate)
	g.DELETE("/reservations/:id", h.Reservations.StaffDelete)
	g.POST("/reservations/:id/approve", h.Reservations.Approve)

	g.GET("/clients", h.Clients.List)
	g.POST("/clients", h.Clients.Create)
}

// RegisterManager registers property and account administration (manager
// and up).  Admin-only mutations are refused by the services.
func RegisterManager(v1 *echo.Group, h Handlers) {
	g := v1.Group("", middleware.RequireRole(model.KindManager))

	g.GET("/floors", h.Floors.List)
	g.GET("/floors/options", h.Floors.Options)
	g.POST("/floors", h.Floors.Create)
	g.PUT("/floors/:id", h.Floors.Update)
	g.DELETE("/floors/:id", h.Floors.Delete)

	g.GET("/rooms", h.Rooms.List)
	g.GET("/rooms/:id", h.Rooms.Get)
	g.POST("/rooms", h.Rooms.Create)
	g.PUT("/rooms/:id", h.Rooms.Update)
	g.DELETE("/rooms/:id", h.Rooms.Delete)

	g.GET("/bans", h.Bans.List)
	g.GET("/bans/targets/:kind", h.Bans.Targets)
	g.POST("/bans", h.Bans.Create)
	g.DELETE("/bans/:id", h.Bans.Revoke)

	staff(g, "/managers", h.Managers)
	staff(g, "/receptionists", h.Receptionists)
}

type staffRoutes interface {
	List(c echo.Context) error
	Get(c echo.Context) error
	Create(c echo.Context) error
	Update(c echo.Context) error
	Delete(c echo.Context) error
}

func staff(g *echo.Group, prefix string, h staffRoutes) {
	g.GET(prefix, h.List)
	g.GET(prefix+"/:id", h.Get)
	g.POST(prefix, h.Create)
	g.PUT(prefix+"/:id", h.Update)
	g.DELETE(prefix+"/:id", h.Delete)
}
