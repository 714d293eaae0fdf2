package entity

import (
	"encoding/json"
	"time"
)

// Search is a saved search together with the options it was run with.
type Search struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Query        string          `json:"query"`
	Location     *string         `json:"location,omitempty"`
	Options      json.RawMessage `json:"options,omitempty"`
	ThreadID     *string         `json:"thread_id,omitempty"`
	TotalResults int             `json:"total_results"`
	CreditsUsed  int             `json:"credits_used"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// SearchWithCandidates is a saved search with its linked profiles in position order.
type SearchWithCandidates struct {
	Search
	Candidates []Profile `json:"candidates"`
}
