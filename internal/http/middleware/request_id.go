package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// RequestIDHeader carries the request id, inbound, outbound to the
	// backend, and on the response.
	RequestIDHeader = "X-Request-ID"

	requestIDContextKey = "request_id"
)

// RequestID accepts a caller-supplied request id or generates one, and
// makes it available to the rest of the pipeline.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			c.Set(requestIDContextKey, requestID)
			c.Response().Header().Set(RequestIDHeader, requestID)

			return next(c)
		}
	}
}

// GetRequestID returns the request id stored by RequestID, or "".
func GetRequestID(c echo.Context) string {
	if requestID, ok := c.Get(requestIDContextKey).(string); ok {
		return requestID
	}
	return ""
}
