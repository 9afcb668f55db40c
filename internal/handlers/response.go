package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hackerforce/platform/internal/model"
)

// APIResponse is the envelope every endpoint answers with.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func sendSuccess(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, APIResponse{Success: true, Message: message, Data: data})
}

func sendError(c echo.Context, status int, message string) error {
	return c.JSON(status, APIResponse{Success: false, Message: message})
}

// statusForError maps domain errors onto HTTP statuses. Anything unmapped is
// an infrastructure failure and answers 500 with a generic message so store
// internals never leak to callers.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrorWeakPassword),
		errors.Is(err, model.ErrorPasswordTooSimilar),
		errors.Is(err, model.ErrorInvalidResetToken),
		errors.Is(err, model.ErrorCourseNotStarted):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, model.ErrorInvalidCredentials),
		errors.Is(err, model.ErrorAccountDeactivated):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, model.ErrorSubscriptionRequired):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, model.ErrorUserNotFound),
		errors.Is(err, model.ErrorCourseNotFound),
		errors.Is(err, model.ErrorSubscriptionNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, model.ErrorConflict):
		return http.StatusConflict, err.Error()
	case errors.Is(err, model.ErrorAccountLocked),
		errors.Is(err, model.ErrorTooManyAttempts):
		return http.StatusLocked, err.Error()
	case errors.Is(err, model.ErrorRateLimited):
		return http.StatusTooManyRequests, err.Error()
	}
	return http.StatusInternalServerError, "internal server error"
}

func fail(c echo.Context, err error) error {
	status, message := statusForError(err)
	if status == http.StatusInternalServerError {
		c.Logger().Errorf("request failed: %+v", err)
	}
	return sendError(c, status, message)
}
