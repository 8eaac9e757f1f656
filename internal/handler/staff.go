package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/service"
)

// StaffHandler administers one staff kind; the router mounts one for
// managers and one for receptionists.
type StaffHandler struct {
	Staff *service.StaffService
}

// NewStaffHandler returns a handler for the staff kind behind staff.
func NewStaffHandler(staff *service.StaffService) *StaffHandler {
	return &StaffHandler{Staff: staff}
}

type staffReq struct {
	Name       string `json:"name" form:"name"`
	Email      string `json:"email" form:"email"`
	Password   string `json:"password" form:"password"`
	NationalID string `json:"national_id" form:"national_id"`
}

// readStaff binds the JSON or multipart payload, image included.
func readStaff(c echo.Context) (service.StaffInput, error) {
	var req staffReq
	if err := bind(c, &req); err != nil {
		return service.StaffInput{}, err
	}
	image, err := formImage(c)
	if err != nil {
		return service.StaffInput{}, err
	}
	return service.StaffInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		NationalID: req.NationalID,
		Image:      image,
	}, nil
}

// List handles GET on the staff collection.
func (h *StaffHandler) List(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	out, err := h.Staff.List(c.Request().Context(), actor, c.QueryParam("search"), pageOf(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET on one staff account.
func (h *StaffHandler) Get(c echo.Context) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}
	st, err := h.Staff.Get(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, st)
}

// Create handles POST on the staff collection; the body may be multipart with an image.
func (h *StaffHandler) Create(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	in, err := readStaff(c)
	if err != nil {
		return err
	}
	st, err := h.Staff.Create(c.Request().Context(), actor, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, st)
}

// Update handles PUT on one staff account.
func (h *StaffHandler) Update(c echo.Context) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}
	in, err := readStaff(c)
	if err != nil {
		return err
	}
	st, err := h.Staff.Update(c.Request().Context(), actor, id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, st)
}

// Delete handles DELETE on one staff account.
func (h *StaffHandler) Delete(c echo.Context) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}
	if err := h.Staff.Delete(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
