package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/merraine/merraine-api/internal/dto"
	"github.com/merraine/merraine-api/internal/service"
)

// SavedHandler manages bookmarked candidates.
type SavedHandler struct {
	savedService *service.SavedService
}

// NewSavedHandler constructs a SavedHandler.
func NewSavedHandler(savedService *service.SavedService) *SavedHandler {
	return &SavedHandler{savedService: savedService}
}

// List handles GET /api/saved.
func (h *SavedHandler) List(c echo.Context) error {
	saved, err := h.savedService.List(c.Request().Context())
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to fetch saved candidates")
	}
	return Success(c, http.StatusOK, "ok", saved)
}

// Save handles POST /api/saved.
func (h *SavedHandler) Save(c echo.Context) error {
	var req dto.SaveCandidateRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	saved, err := h.savedService.Save(c.Request().Context(), req.CandidateID, req.Notes, req.Profile)
	if err != nil {
		return Fail(c, err)
	}
	return Success(c, http.StatusCreated, "candidate saved", saved)
}

// UpdateNotes handles PATCH /api/saved/:candidate_id.
func (h *SavedHandler) UpdateNotes(c echo.Context) error {
	var req dto.UpdateNotesRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	saved, err := h.savedService.UpdateNotes(c.Request().Context(), c.Param("candidate_id"), req.Notes)
	if err != nil {
		return Fail(c, err)
	}
	return Success(c, http.StatusOK, "notes updated", saved)
}

// Remove handles DELETE /api/saved/:candidate_id.
func (h *SavedHandler) Remove(c echo.Context) error {
	candidateID := c.Param("candidate_id")
	if err := h.savedService.Remove(c.Request().Context(), candidateID); err != nil {
		return Fail(c, err)
	}
	return Success(c, http.StatusOK, "candidate removed", map[string]any{"candidate_id": candidateID})
}
