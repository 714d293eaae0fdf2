package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/merraine/merraine-api/internal/service"
)

// CreditsHandler reports the vendor balance and the credit ledger.
type CreditsHandler struct {
	creditsService *service.CreditsService
}

// NewCreditsHandler constructs a CreditsHandler.
func NewCreditsHandler(creditsService *service.CreditsService) *CreditsHandler {
	return &CreditsHandler{creditsService: creditsService}
}

// Balance handles GET /api/credits/balance. It never fails; an unknown
// balance is reported as null.
func (h *CreditsHandler) Balance(c echo.Context) error {
	return Success(c, http.StatusOK, "ok", h.creditsService.Balance(c.Request().Context()))
}

// History handles GET /api/credits/history?limit=….
func (h *CreditsHandler) History(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			return Error(c, http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = v
	}

	history, err := h.creditsService.History(c.Request().Context(), limit)
	if err != nil {
		return Fail(c, err)
	}
	return Success(c, http.StatusOK, "ok", history)
}
