package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/service"
)

// ClientHandler serves client accounts to staff.
type ClientHandler struct {
	Clients *service.ClientService
}

// NewClientHandler returns a ClientHandler.
func NewClientHandler(clients *service.ClientService) *ClientHandler {
	return &ClientHandler{Clients: clients}
}

// List handles GET /v1/staff/clients with search and paging.
func (h *ClientHandler) List(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	out, err := h.Clients.List(c.Request().Context(), actor, c.QueryParam("search"), pageOf(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// Create registers a client on behalf of the signed-in staff member.
func (h *ClientHandler) Create(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	var req clientReq
	if err := bind(c, &req); err != nil {
		return err
	}
	image, err := formImage(c)
	if err != nil {
		return err
	}
	client, err := h.Clients.CreateByStaff(c.Request().Context(), actor, req.input(image))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, client)
}

// Countries handles GET /v1/countries.
func (h *ClientHandler) Countries(c echo.Context) error {
	names, err := h.Clients.Countries(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"data": names})
}
