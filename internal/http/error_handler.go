package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"authproxy/internal/http/middleware"
)

const (
	jsonKeyError = "error"

	msgGenericUnauthorized = "Unauthorized: could not authorize request"
)

// ErrorHandler converts anything that escapes the pipeline into a terminal
// JSON response. Echo HTTP errors keep their status; everything else is
// downgraded to a generic 401 so internal details never leak to callers.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusUnauthorized
	message := msgGenericUnauthorized

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		message = fmt.Sprintf("%v", httpErr.Message)
	}

	requestID := middleware.GetRequestID(c)
	if code >= http.StatusInternalServerError {
		c.Logger().Errorf("request %s failed: %v", requestID, err)
	} else {
		c.Logger().Warnf("request %s rejected with %d: %v", requestID, code, err)
	}

	if err := c.JSON(code, map[string]string{jsonKeyError: message}); err != nil {
		c.Logger().Error(err)
	}
}
