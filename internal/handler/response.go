package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/merraine/merraine-api/internal/pearch"
	"github.com/merraine/merraine-api/internal/repository"
	"github.com/merraine/merraine-api/internal/service"
)

// APIResponse describes the standard envelope returned by the API.
type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Success sends a successful response using the shared envelope format.
func Success(c echo.Context, status int, message string, data any) error {
	if status == 0 {
		status = http.StatusOK
	}
	payload := APIResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	}
	return c.JSON(status, payload)
}

// Error sends an error response using the shared envelope format.
func Error(c echo.Context, status int, message string) error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	payload := APIResponse{
		Status:  "error",
		Message: message,
	}
	return c.JSON(status, payload)
}

// statusFor maps service, repository and vendor errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case service.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrSearchNotFound),
		errors.Is(err, repository.ErrSavedNotFound),
		errors.Is(err, repository.ErrCandidateNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNoDatabase):
		return http.StatusServiceUnavailable
	case errors.Is(err, pearch.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, pearch.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, pearch.ErrUnauthorized):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Fail writes err through the envelope with the mapped status.
func Fail(c echo.Context, err error) error {
	status := statusFor(err)
	message := err.Error()
	switch {
	case errors.Is(err, pearch.ErrNotConfigured):
		message = "API key not configured"
	case errors.Is(err, repository.ErrSearchNotFound):
		message = "search not found"
	case errors.Is(err, repository.ErrSavedNotFound):
		message = "saved candidate not found"
	case errors.Is(err, repository.ErrCandidateNotFound):
		message = "candidate not found"
	}
	return Error(c, status, message)
}
