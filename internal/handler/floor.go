package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/service"
)

// FloorHandler serves floor management to managers and admins.
type FloorHandler struct {
	Floors *service.FloorService
}

// NewFloorHandler returns a FloorHandler.
func NewFloorHandler(floors *service.FloorService) *FloorHandler {
	return &FloorHandler{Floors: floors}
}

// List answers GET /v1/floors?search=&manager=&page=.
func (h *FloorHandler) List(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	out, err := h.Floors.List(c.Request().Context(), actor, service.FloorQuery{
		Search:    c.QueryParam("search"),
		ManagerID: queryID(c, "manager"),
		Page:      pageOf(c),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// Options lists the floors a room can be attached to.
func (h *FloorHandler) Options(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	floors, err := h.Floors.Options(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"data": floors})
}

// Create handles POST /v1/floors; the floor number is assigned by the store.
func (h *FloorHandler) Create(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	var in service.FloorInput
	if err := bind(c, &in); err != nil {
		return err
	}
	f, err := h.Floors.Create(c.Request().Context(), actor, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, f)
}

// Update handles PUT /v1/floors/:id.
func (h *FloorHandler) Update(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in service.FloorInput
	if err := bind(c, &in); err != nil {
		return err
	}
	f, err := h.Floors.Update(c.Request().Context(), actor, id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, f)
}

// Delete handles DELETE /v1/floors/:id.
func (h *FloorHandler) Delete(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Floors.Delete(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
