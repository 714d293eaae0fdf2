package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/merraine/merraine-api/internal/pearch"
	"github.com/merraine/merraine-api/internal/service"
)

// JobsHandler proxies the vendor job index.
type JobsHandler struct {
	jobsService *service.JobsService
}

// NewJobsHandler constructs a JobsHandler.
func NewJobsHandler(jobsService *service.JobsService) *JobsHandler {
	return &JobsHandler{jobsService: jobsService}
}

// List handles GET /api/jobs?limit=….
func (h *JobsHandler) List(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return Error(c, http.StatusBadRequest, "limit must be a non-negative integer")
		}
		limit = v
	}

	jobs, err := h.jobsService.List(c.Request().Context(), limit)
	if err != nil {
		return Fail(c, err)
	}
	return Success(c, http.StatusOK, "ok", jobs)
}

// Upsert handles POST /api/jobs with a JSON array of jobs.
func (h *JobsHandler) Upsert(c echo.Context) error {
	var jobs []pearch.Job
	if err := c.Bind(&jobs); err != nil {
		return Error(c, http.StatusBadRequest, "jobs array is required")
	}

	result, err := h.jobsService.Upsert(c.Request().Context(), jobs)
	if err != nil {
		return Fail(c, err)
	}
	return Success(c, http.StatusOK, "jobs upserted", result)
}

// Delete handles DELETE /api/jobs with a JSON array of job ids.
func (h *JobsHandler) Delete(c echo.Context) error {
	var ids []string
	if err := c.Bind(&ids); err != nil {
		return Error(c, http.StatusBadRequest, "job ids array is required")
	}

	result, err := h.jobsService.Delete(c.Request().Context(), ids)
	if err != nil {
		return Fail(c, err)
	}
	return Success(c, http.StatusOK, "jobs deleted", result)
}

// Match handles POST /api/match with a profile object.
func (h *JobsHandler) Match(c echo.Context) error {
	var profile map[string]any
	if err := c.Bind(&profile); err != nil {
		return Error(c, http.StatusBadRequest, "profile data is required")
	}

	matches, err := h.jobsService.Match(c.Request().Context(), profile)
	if err != nil {
		return Fail(c, err)
	}
	return Success(c, http.StatusOK, "ok", matches)
}
