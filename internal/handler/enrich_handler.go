package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/merraine/merraine-api/internal/pearch"
	"github.com/merraine/merraine-api/internal/service"
)

// EnrichHandler reveals contact details for a single profile.
type EnrichHandler struct {
	enrichService *service.EnrichService
}

// NewEnrichHandler wires a new EnrichHandler instance.
func NewEnrichHandler(enrichService *service.EnrichService) *EnrichHandler {
	return &EnrichHandler{enrichService: enrichService}
}

// Enrich handles GET /api/enrich?id=…. Flags are enabled only by the literal "true".
func (h *EnrichHandler) Enrich(c echo.Context) error {
	id := c.QueryParam("id")
	if id == "" {
		return Error(c, http.StatusBadRequest, "profile id is required")
	}

	result, err := h.enrichService.Enrich(c.Request().Context(), pearch.EnrichParams{
		ID:            id,
		HighFreshness: c.QueryParam("high_freshness") == "true",
		RevealEmails:  c.QueryParam("reveal_emails") == "true",
		RevealPhones:  c.QueryParam("reveal_phones") == "true",
		WithProfile:   c.QueryParam("with_profile") == "true",
	})
	if err != nil {
		return Fail(c, err)
	}
	return Success(c, http.StatusOK, "ok", result)
}
