package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chiefduck/ratewatch/internal/auth"
)

// ErrorResponse is the dashboard API error body (message only).
type ErrorResponse struct {
	Message string `json:"message"`
}

// HTTPErrorHandler renders every dashboard API error as ErrorResponse.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	msg := err.Error()
	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(status)
		}
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, ErrorResponse{Message: msg})
}

func requireUserID(c echo.Context) (string, error) {
	return auth.UserIDFromContext(c)
}
