package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/merraine/merraine-api/internal/dto"
	"github.com/merraine/merraine-api/internal/service"
)

// SearchesHandler manages saved searches.
type SearchesHandler struct {
	searchesService *service.SearchesService
}

// NewSearchesHandler constructs a SearchesHandler.
func NewSearchesHandler(searchesService *service.SearchesService) *SearchesHandler {
	return &SearchesHandler{searchesService: searchesService}
}

// List handles GET /api/searches.
func (h *SearchesHandler) List(c echo.Context) error {
	searches, err := h.searchesService.List(c.Request().Context())
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to fetch searches")
	}
	return Success(c, http.StatusOK, "ok", searches)
}

// Create handles POST /api/searches.
func (h *SearchesHandler) Create(c echo.Context) error {
	var req service.SaveSearchInput
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	search, err := h.searchesService.Save(c.Request().Context(), req)
	if err != nil {
		return Fail(c, err)
	}
	return Success(c, http.StatusCreated, "search saved", search)
}

// Get handles GET /api/searches/:id.
func (h *SearchesHandler) Get(c echo.Context) error {
	id, ok := searchID(c)
	if !ok {
		return Error(c, http.StatusBadRequest, "invalid search id")
	}

	search, err := h.searchesService.Get(c.Request().Context(), id)
	if err != nil {
		return Fail(c, err)
	}
	return Success(c, http.StatusOK, "ok", search)
}

// Rename handles PATCH /api/searches/:id.
func (h *SearchesHandler) Rename(c echo.Context) error {
	id, ok := searchID(c)
	if !ok {
		return Error(c, http.StatusBadRequest, "invalid search id")
	}
	var req dto.RenameSearchRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	search, err := h.searchesService.Rename(c.Request().Context(), id, req.Name)
	if err != nil {
		return Fail(c, err)
	}
	return Success(c, http.StatusOK, "search renamed", search)
}

// Delete handles DELETE /api/searches/:id.
func (h *SearchesHandler) Delete(c echo.Context) error {
	id, ok := searchID(c)
	if !ok {
		return Error(c, http.StatusBadRequest, "invalid search id")
	}

	if err := h.searchesService.Delete(c.Request().Context(), id); err != nil {
		return Fail(c, err)
	}
	return Success(c, http.StatusOK, "search deleted", map[string]any{"id": id})
}

// AddCandidates handles POST /api/searches/:id/candidates.
func (h *SearchesHandler) AddCandidates(c echo.Context) error {
	id, ok := searchID(c)
	if !ok {
		return Error(c, http.StatusBadRequest, "invalid search id")
	}
	var req dto.AddCandidatesRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	total, err := h.searchesService.AddCandidates(c.Request().Context(), id, req.Profiles)
	if err != nil {
		return Fail(c, err)
	}
	return Success(c, http.StatusOK, "candidates added", dto.AddCandidatesResponse{TotalResults: total})
}

func searchID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
