package dto

import (
	"github.com/merraine/merraine-api/internal/entity"
	"github.com/merraine/merraine-api/internal/pearch"
	"github.com/merraine/merraine-api/internal/service/tiering"
)

// SearchRequest is the vendor search body plus presentation options.
type SearchRequest struct {
	pearch.SearchParams
	Sort        *tiering.SortConfig `json:"sort,omitempty"`
	GroupByTier bool                `json:"group_by_tier,omitempty"`
}

// SimilarRequest asks for candidates resembling profile. When Run is set the
// built query is searched with Search as the base parameters.
type SimilarRequest struct {
	Profile entity.Profile      `json:"profile"`
	Run     bool                `json:"run,omitempty"`
	Search  pearch.SearchParams `json:"search"`
}

// SimilarResponse echoes the built query and, when run, the search outcome.
type SimilarResponse struct {
	Query      string `json:"query"`
	Location   string `json:"location,omitempty"`
	SearchPath string `json:"search_path"`
	Results    any    `json:"results,omitempty"`
}
