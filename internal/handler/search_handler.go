package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/merraine/merraine-api/internal/dto"
	"github.com/merraine/merraine-api/internal/service"
)

// SearchHandler exposes candidate search endpoints.
type SearchHandler struct {
	searchService *service.SearchService
}

// NewSearchHandler constructs a SearchHandler.
func NewSearchHandler(searchService *service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// Search handles POST /api/search requests.
func (h *SearchHandler) Search(c echo.Context) error {
	var req dto.SearchRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	outcome, err := h.searchService.Search(c.Request().Context(), req.SearchParams, service.SearchOptions{
		Sort:    req.Sort,
		GroupBy: req.GroupByTier,
	})
	if err != nil {
		return Fail(c, err)
	}
	return Success(c, http.StatusOK, "ok", outcome)
}

// Similar handles POST /api/search/similar requests.
func (h *SearchHandler) Similar(c echo.Context) error {
	var req dto.SimilarRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	similar := service.BuildSimilarQuery(req.Profile)
	resp := dto.SimilarResponse{
		Query:      similar.Query,
		Location:   similar.Location,
		SearchPath: similar.SearchPath(),
	}
	if req.Run {
		outcome, err := h.searchService.Search(c.Request().Context(), similar.Params(req.Search), service.SearchOptions{})
		if err != nil {
			return Fail(c, err)
		}
		resp.Results = outcome
	}
	return Success(c, http.StatusOK, "ok", resp)
}
