package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/service"
)

// BanHandler serves ban administration and the public ban notice.
type BanHandler struct {
	Bans      *service.BanService
	Countdown int
}

// NewBanHandler returns a BanHandler; countdown seeds the notice page.
func NewBanHandler(bans *service.BanService, countdown int) *BanHandler {
	return &BanHandler{Bans: bans, Countdown: countdown}
}

// List handles GET /v1/bans.
func (h *BanHandler) List(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	out, err := h.Bans.List(c.Request().Context(), actor, c.QueryParam("search"), pageOf(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// Create handles POST /v1/bans and bans a principal the caller outranks.
func (h *BanHandler) Create(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	var in service.BanInput
	if err := bind(c, &in); err != nil {
		return err
	}
	b, err := h.Bans.Create(c.Request().Context(), actor, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, b)
}

// Revoke handles DELETE /v1/bans/:id.
func (h *BanHandler) Revoke(c echo.Context) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}
	if err := h.Bans.Revoke(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Targets lists the accounts of one kind the caller may ban.
func (h *BanHandler) Targets(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	out, err := h.Bans.Targets(c.Request().Context(), actor, c.Param("kind"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out})
}

// Notice is where banned browsers land after their session was ended.
func (h *BanHandler) Notice(c echo.Context) error {
	countdown := h.Countdown
	if n, err := strconv.Atoi(c.QueryParam("countdown")); err == nil && n >= 0 {
		countdown = n
	}
	next := c.QueryParam("next")
	if next == "" || next[0] != '/' || (len(next) > 1 && next[1] == '/') {
		next = "/login"
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":           c.QueryParam("message"),
		"redirect_to":       next,
		"countdown_seconds": countdown,
	})
}
