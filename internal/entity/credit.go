package entity

import "time"

// Ledger operations.
const (
	OperationSearch      = "search"
	OperationEnrich      = "enrich"
	OperationSearchSaved = "search_saved"
	OperationJobsUpsert  = "jobs_upsert"
	OperationBalanceSync = "balance_sync"
)

// CreditTransaction is one append-only ledger entry.
type CreditTransaction struct {
	ID          int64     `json:"id"`
	Operation   string    `json:"operation"`
	Credits     int       `json:"credits"`
	Details     *string   `json:"details,omitempty"`
	SearchID    *int64    `json:"search_id,omitempty"`
	CandidateID *int64    `json:"candidate_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
