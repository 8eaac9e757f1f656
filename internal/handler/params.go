package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/middleware"
	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/service"
)

// maxImageBytes caps avatar uploads.
const maxImageBytes = 5 << 20

var errBadBody = fmt.Errorf("invalid body: %w", service.ErrValidation)

func actorOf(c echo.Context) (model.OwnerRef, error) {
	actor, ok := middleware.Actor(c)
	if !ok {
		return model.OwnerRef{}, service.ErrUnauthenticated
	}
	return actor, nil
}

func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, &service.ValidationError{Field: name, Message: "must be a positive integer"}
	}
	return id, nil
}

func queryID(c echo.Context, name string) uint64 {
	id, _ := strconv.ParseUint(c.QueryParam(name), 10, 64)
	return id
}

// pageOf reads ?page, defaulting to the first page.
func pageOf(c echo.Context) int {
	p, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || p < 1 {
		return 1
	}
	return p
}

func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return errBadBody
	}
	return nil
}

// formImage returns the uploaded "image" file, or nil when none was sent.
func formImage(c echo.Context) ([]byte, error) {
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, errBadBody
	}
	if fh.Size > maxImageBytes {
		return nil, &service.ValidationError{Field: "image", Message: "must be at most 5 MB"}
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxImageBytes))
}

func actorAndID(c echo.Context) (model.OwnerRef, uint64, error) {
	actor, err := actorOf(c)
	if err != nil {
		return model.OwnerRef{}, 0, err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return model.OwnerRef{}, 0, err
	}
	return actor, id, nil
}
