package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/service"
)

// Validator plugs the service validator into c.Validate.
type Validator struct{}

// Validate implements echo.Validator.
func (Validator) Validate(i interface{}) error { return service.Check(i) }

// NewErrorHandler returns the Echo error handler translating service
// errors into {"error": ...} responses.  Unexpected errors are logged and
// answered with 500; their text is included only when debug is set.
func NewErrorHandler(debug bool, log *zap.SugaredLogger) echo.HTTPErrorHandler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		if rerr := respondError(c, err, debug, log); rerr != nil {
			log.Errorw("write error response", "error", rerr)
		}
	}
}

func respondError(c echo.Context, err error, debug bool, log *zap.SugaredLogger) error {
	var (
		verr   *service.ValidationError
		banned *service.BannedError
		herr   *echo.HTTPError
	)
	switch {
	case errors.As(err, &verr):
		body := echo.Map{"error": verr.Error()}
		if verr.Field != "" {
			body["field"] = verr.Field
		}
		return c.JSON(http.StatusBadRequest, body)
	case errors.As(err, &banned):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "banned", "message": banned.Error()})
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.As(err, &herr):
		msg := http.StatusText(herr.Code)
		if s, ok := herr.Message.(string); ok {
			msg = s
		}
		return c.JSON(herr.Code, echo.Map{"error": msg})
	}

	log.Errorw("unhandled error", "method", c.Request().Method, "path", c.Path(), "error", err)
	body := echo.Map{"error": "internal error"}
	if debug {
		body["detail"] = err.Error()
	}
	return c.JSON(http.StatusInternalServerError, body)
}
