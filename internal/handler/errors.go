package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/spaps/rental-backend/internal/apperr"
)

// ErrorHandler is the single translation point from flow errors to HTTP
// responses. Internal errors are logged with their cause; the client only
// ever sees the public message.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var ae *apperr.Error
	if errors.As(err, &ae) {
		if ae.Kind == apperr.KindInternal {
			log.Printf("http: %s %s: %v", c.Request().Method, c.Request().URL.Path, ae.Unwrap())
		}
		_ = c.JSON(ae.Status(), echo.Map{"error": ae.Message})
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		_ = c.JSON(he.Code, echo.Map{"error": fmt.Sprint(he.Message)})
		return
	}

	log.Printf("http: %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
}
