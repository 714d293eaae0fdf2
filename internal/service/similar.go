package service

import (
	"net/url"
	"strings"

	"github.com/merraine/merraine-api/internal/entity"
	"github.com/merraine/merraine-api/internal/pearch"
)

const (
	similarSkillLimit = 5
	similarFallback   = "Similar professional"
)

// SimilarQuery is the search that finds profiles like a given one.
type SimilarQuery struct {
	Query    string `json:"query"`
	Location string `json:"location"`
}

// BuildSimilarQuery derives a query from the headline and the top skills.
func BuildSimilarQuery(profile entity.Profile) SimilarQuery {
	headline := strings.TrimSpace(profile.Headline)
	skills := profile.Skills
	if len(skills) > similarSkillLimit {
		skills = skills[:similarSkillLimit]
	}
	skillList := strings.Join(skills, ", ")

	var query string
	switch {
	case headline != "" && len(skills) > 0:
		query = headline + " with " + skillList + " experience"
	case headline != "":
		query = headline
	case len(skills) > 0:
		query = "Professional with " + skillList + " skills"
	}
	query = strings.TrimSpace(query)
	if query == "" {
		query = similarFallback
	}

	return SimilarQuery{Query: query, Location: strings.TrimSpace(profile.Location)}
}

// Params turns the query into search parameters, filtering on the location
// when one is known.
func (q SimilarQuery) Params(base pearch.SearchParams) pearch.SearchParams {
	params := base
	params.Query = q.Query
	params.ThreadID = ""
	if q.Location != "" {
		filters := pearch.CustomFilters{}
		if base.CustomFilters != nil {
			filters = *base.CustomFilters
		}
		filters.Locations = []string{q.Location}
		params.CustomFilters = &filters
	}
	return params
}

// SearchPath is the UI link that pre-fills the search form.
func (q SimilarQuery) SearchPath() string {
	values := url.Values{}
	values.Set("q", q.Query)
	if q.Location != "" {
		values.Set("location", q.Location)
	}
	return "/search?" + values.Encode()
}
