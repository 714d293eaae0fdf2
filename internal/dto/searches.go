package dto

import "github.com/merraine/merraine-api/internal/entity"

// RenameSearchRequest changes a saved search name.
type RenameSearchRequest struct {
	Name string `json:"name"`
}

// AddCandidatesRequest appends profiles to a saved search.
type AddCandidatesRequest struct {
	Profiles []entity.Profile `json:"profiles"`
}

// AddCandidatesResponse reports the new result count.
type AddCandidatesResponse struct {
	TotalResults int `json:"total_results"`
}

// SaveCandidateRequest bookmarks a candidate. Profile is stored first when
// the candidate only exists in a live search result.
type SaveCandidateRequest struct {
	CandidateID string          `json:"candidate_id"`
	Notes       string          `json:"notes"`
	Profile     *entity.Profile `json:"profile,omitempty"`
}

// UpdateNotesRequest replaces the notes on a saved candidate.
type UpdateNotesRequest struct {
	Notes string `json:"notes"`
}
