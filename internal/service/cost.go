package service

import "github.com/merraine/merraine-api/internal/pearch"

// DefaultSearchLimit is the result count assumed when a search omits limit.
const DefaultSearchLimit = 10

// Per-profile credit prices.
const (
	costFast          = 1
	costPro           = 5
	costInsights      = 1
	costScoring       = 1
	costHighFreshness = 2
	costRevealEmails  = 2
	costRevealPhones  = 14
	costEnrichBase    = 1
)

// SearchCost estimates the credits a search consumes for limit profiles.
// A non-positive limit prices DefaultSearchLimit profiles.
func SearchCost(params pearch.SearchParams, limit int) int {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	perProfile := costFast
	if params.Type == "pro" {
		perProfile = costPro
	}
	if params.Insights {
		perProfile += costInsights
	}
	if params.ProfileScoring {
		perProfile += costScoring
	}
	if params.HighFreshness {
		perProfile += costHighFreshness
	}
	if params.RevealEmails {
		perProfile += costRevealEmails
	}
	if params.RevealPhones {
		perProfile += costRevealPhones
	}
	return perProfile * limit
}

// EnrichCost estimates the credits one profile enrichment consumes.
func EnrichCost(params pearch.EnrichParams) int {
	cost := costEnrichBase
	if params.HighFreshness {
		cost += costHighFreshness
	}
	if params.RevealEmails {
		cost += costRevealEmails
	}
	if params.RevealPhones {
		cost += costRevealPhones
	}
	return cost
}
