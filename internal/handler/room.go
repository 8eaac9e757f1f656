package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/service"
)

// RoomHandler serves room management and the client room list.
type RoomHandler struct {
	Rooms *service.RoomService
}

// NewRoomHandler returns a RoomHandler.
func NewRoomHandler(rooms *service.RoomService) *RoomHandler {
	return &RoomHandler{Rooms: rooms}
}

// List answers GET /v1/rooms?search=&floor=&manager=&page=.
func (h *RoomHandler) List(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	out, err := h.Rooms.List(c.Request().Context(), actor, service.RoomQuery{
		Search:    c.QueryParam("search"),
		FloorID:   queryID(c, "floor"),
		ManagerID: queryID(c, "manager"),
		Page:      pageOf(c),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// Available is the client view of rooms open for booking.
func (h *RoomHandler) Available(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	out, err := h.Rooms.Available(c.Request().Context(), actor, pageOf(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /v1/rooms/:id.
func (h *RoomHandler) Get(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	rm, err := h.Rooms.Get(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rm)
}

// Create handles POST /v1/rooms.
func (h *RoomHandler) Create(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	var in service.RoomInput
	if err := bind(c, &in); err != nil {
		return err
	}
	rm, err := h.Rooms.Create(c.Request().Context(), actor, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, rm)
}

// Update handles PUT /v1/rooms/:id.  The room number is kept.
func (h *RoomHandler) Update(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in service.RoomInput
	if err := bind(c, &in); err != nil {
		return err
	}
	rm, err := h.Rooms.Update(c.Request().Context(), actor, id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rm)
}

// Delete handles DELETE /v1/rooms/:id.
func (h *RoomHandler) Delete(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Rooms.Delete(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
