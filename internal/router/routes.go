package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/merraine/merraine-api/internal/auth"
	"github.com/merraine/merraine-api/internal/config"
	"github.com/merraine/merraine-api/internal/handler"
	middlewarepkg "github.com/merraine/merraine-api/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router. Searches and Saved
// are nil when no database is configured; their routes are then not mounted.
type Handlers struct {
	Auth     *handler.AuthHandler
	Search   *handler.SearchHandler
	Enrich   *handler.EnrichHandler
	Jobs     *handler.JobsHandler
	Searches *handler.SearchesHandler
	Saved    *handler.SavedHandler
	Credits  *handler.CreditsHandler
	// HasDatabase mounts change-password and the credit history.
	HasDatabase bool
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})

	api := e.Group("/api")
	api.POST("/auth/login", handlers.Auth.Login)

	secured := api.Group("")
	secured.Use(middlewarepkg.JWT(jwtManager))

	secured.POST("/auth/logout", handlers.Auth.Logout)
	if handlers.HasDatabase {
		secured.POST("/auth/change-password", handlers.Auth.ChangePassword)
	}

	searchLimit := middlewarepkg.RateLimit(cfg.RateLimitSearch, "too many requests, please wait before searching again")
	secured.POST("/search", handlers.Search.Search, searchLimit)
	secured.POST("/search/similar", handlers.Search.Similar, searchLimit)
	secured.GET("/enrich", handlers.Enrich.Enrich,
		middlewarepkg.RateLimit(cfg.RateLimitEnrich, "too many requests, please wait before enriching profiles again"))

	secured.GET("/jobs", handlers.Jobs.List)
	secured.POST("/jobs", handlers.Jobs.Upsert)
	secured.DELETE("/jobs", handlers.Jobs.Delete)
	secured.POST("/match", handlers.Jobs.Match)

	secured.GET("/credits/balance", handlers.Credits.Balance)
	if handlers.HasDatabase {
		secured.GET("/credits/history", handlers.Credits.History)
	}

	if handlers.Searches != nil {
		searches := secured.Group("/searches")
		searches.GET("", handlers.Searches.List)
		searches.POST("", handlers.Searches.Create)
		searches.GET("/:id", handlers.Searches.Get)
		searches.PATCH("/:id", handlers.Searches.Rename)
		searches.DELETE("/:id", handlers.Searches.Delete)
		searches.POST("/:id/candidates", handlers.Searches.AddCandidates)
	}

	if handlers.Saved != nil {
		saved := secured.Group("/saved")
		saved.GET("", handlers.Saved.List)
		saved.POST("", handlers.Saved.Save)
		saved.PATCH("/:candidate_id", handlers.Saved.UpdateNotes)
		saved.DELETE("/:candidate_id", handlers.Saved.Remove)
	}
}
