package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "pinvent/internal/errors"
)

// MessageResponse is the body of endpoints that only confirm an action.
type MessageResponse struct {
	Message string `json:"message"`
}

// SuccessResponse is a confirmation carrying an explicit success flag.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// fail converts a service error to an echo HTTP error. The original error is
// kept as the internal cause so the error handler can log it.
func fail(err error) error {
	mapped := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(mapped.StatusCode, mapped.ToErrorResponse()).SetInternal(err)
}

func badRequest(message string) error {
	return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{Error: message, Code: "BAD_REQUEST"})
}

func tooManyRequests(c echo.Context, retryAfter time.Duration, message string) error {
	if retryAfter > 0 {
		c.Response().Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
	}
	return fail(apperrors.TooManyRequests(message))
}
