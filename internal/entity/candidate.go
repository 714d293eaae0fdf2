package entity

import (
	"encoding/json"
	"time"
)

// Candidate is a profile persisted once per vendor id.
type Candidate struct {
	ID                int64           `json:"id"`
	PearchID          string          `json:"pearch_id"`
	Profile           Profile         `json:"profile"`
	IsEnriched        bool            `json:"is_enriched"`
	EnrichedAt        *time.Time      `json:"enriched_at,omitempty"`
	EnrichmentOptions json.RawMessage `json:"enrichment_options,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// SavedCandidate is a candidate bookmarked by the user.
type SavedCandidate struct {
	Profile
	SavedID     int64     `json:"saved_id"`
	CandidateID int64     `json:"candidate_id"`
	Notes       string    `json:"notes"`
	SavedAt     time.Time `json:"saved_at"`
}
