package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/service"
)

// ReservationHandler serves both the client and the staff reservation
// routes, plus checkout.
type ReservationHandler struct {
	Reservations *service.ReservationService
	Payments     *service.PaymentService
}

// NewReservationHandler wires the client and staff reservation endpoints.
func NewReservationHandler(res *service.ReservationService, pay *service.PaymentService) *ReservationHandler {
	return &ReservationHandler{Reservations: res, Payments: pay}
}

// ----- client -----

// ListOwn handles GET /v1/client/reservations and lists the caller's bookings.
func (h *ReservationHandler) ListOwn(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	out, err := h.Reservations.ListOwn(c.Request().Context(), actor, pageOf(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// ClientCreate handles POST /v1/client/reservations.  The booking waits for approval.
func (h *ReservationHandler) ClientCreate(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	var in service.ReservationInput
	if err := bind(c, &in); err != nil {
		return err
	}
	res, err := h.Reservations.CreateForClient(c.Request().Context(), actor, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, res)
}

// ClientUpdate handles PUT /v1/client/reservations/:id.
func (h *ReservationHandler) ClientUpdate(c echo.Context) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}
	var in service.ReservationInput
	if err := bind(c, &in); err != nil {
		return err
	}
	res, err := h.Reservations.UpdateForClient(c.Request().Context(), actor, id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// ClientDelete handles DELETE /v1/client/reservations/:id.
func (h *ReservationHandler) ClientDelete(c echo.Context) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}
	if err := h.Reservations.CancelForClient(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Checkout starts a hosted payment for the caller's reservation.
func (h *ReservationHandler) Checkout(c echo.Context) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}
	url, err := h.Payments.Checkout(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"redirect_url": url})
}

// PaymentSuccess records the gateway session id on the reservation.
func (h *ReservationHandler) PaymentSuccess(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id := queryID(c, "reservation_id")
	if id == 0 {
		return &service.ValidationError{Field: "reservation_id", Message: "is required"}
	}
	res, err := h.Payments.Success(c.Request().Context(), actor, id, c.QueryParam("session_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "paid", "reservation_id": res.ID})
}

// ----- staff -----

// ListAll answers GET /v1/staff/reservations?search=&page=.
func (h *ReservationHandler) ListAll(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	out, err := h.Reservations.ListAll(c.Request().Context(), actor, c.QueryParam("search"), pageOf(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /v1/staff/reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}
	res, err := h.Reservations.Get(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// StaffCreate handles POST /v1/staff/reservations and books for a client.
func (h *ReservationHandler) StaffCreate(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	var in service.ReservationInput
	if err := bind(c, &in); err != nil {
		return err
	}
	res, err := h.Reservations.CreateForStaff(c.Request().Context(), actor, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, res)
}

// StaffUpdate handles PUT /v1/staff/reservations/:id.
func (h *ReservationHandler) StaffUpdate(c echo.Context) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}
	var in service.ReservationInput
	if err := bind(c, &in); err != nil {
		return err
	}
	res, err := h.Reservations.UpdateForStaff(c.Request().Context(), actor, id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// StaffDelete handles DELETE /v1/staff/reservations/:id.
func (h *ReservationHandler) StaffDelete(c echo.Context) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}
	if err := h.Reservations.CancelForStaff(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Approve handles POST /v1/staff/reservations/:id/approve.
func (h *ReservationHandler) Approve(c echo.Context) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}
	res, err := h.Reservations.Approve(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}
