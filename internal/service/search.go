package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/merraine/merraine-api/internal/cache"
	"github.com/merraine/merraine-api/internal/entity"
	"github.com/merraine/merraine-api/internal/logger"
	"github.com/merraine/merraine-api/internal/pearch"
	"github.com/merraine/merraine-api/internal/repository"
	"github.com/merraine/merraine-api/internal/service/tiering"
)

const logQueryLimit = 100

// SearchOptions are presentation settings applied after the vendor call.
type SearchOptions struct {
	Sort    *tiering.SortConfig
	GroupBy bool
}

// SearchOutcome is the response of one search request.
type SearchOutcome struct {
	Profiles      []entity.Profile `json:"profiles"`
	ThreadID      string           `json:"thread_id,omitempty"`
	TotalCount    *int             `json:"total_count,omitempty"`
	CreditsUsed   *int             `json:"credits_used,omitempty"`
	EstimatedCost int              `json:"estimated_cost"`
	TierCounts    tiering.Counts   `json:"tier_counts"`
	VariedScores  bool             `json:"varied_scores"`
	Tiers         *tiering.Groups  `json:"tiers,omitempty"`
	Partial       bool             `json:"partial,omitempty"`
	Cached        bool             `json:"cached"`
}

// SearchService runs batched vendor searches with caching and ledger entries.
type SearchService struct {
	collector *Collector
	cache     *cache.Cache
	credits   *CreditsService
	logger    *zap.Logger
}

// NewSearchService wires the service. cache and credits may be nil.
func NewSearchService(collector *Collector, c *cache.Cache, credits *CreditsService, log *zap.Logger) *SearchService {
	return &SearchService{collector: collector, cache: c, credits: credits, logger: logger.OrNop(log)}
}

// Search validates params, serves a cached response when one exists and
// otherwise collects profiles from the vendor.
func (s *SearchService) Search(ctx context.Context, params pearch.SearchParams, opts SearchOptions) (*SearchOutcome, error) {
	params.Query = strings.TrimSpace(params.Query)
	if params.Query == "" {
		return nil, invalid("query is required")
	}
	if params.Type != "" && params.Type != "fast" && params.Type != "pro" {
		return nil, invalid("type must be fast or pro")
	}
	if opts.Sort != nil && !opts.Sort.Valid() {
		return nil, invalid("sort column must be name, score or location and direction asc or desc")
	}
	if params.Limit <= 0 {
		params.Limit = DefaultSearchLimit
	}

	estimated := SearchCost(params, params.Limit)
	log := s.logger.With(
		zap.String(logger.FieldOperation, "search"),
		zap.String(logger.FieldRequestID, pearch.RequestIDFromContext(ctx)),
		zap.String("query", logger.TruncateForLog(params.Query, logQueryLimit)),
	)

	key, keyErr := cache.Key(cache.NamespaceSearch, params)
	if keyErr == nil {
		var cached SearchOutcome
		if s.cache.Lookup(ctx, key, &cached) {
			log.Debug("search served from cache")
			cached.Cached = true
			return present(&cached, opts), nil
		}
	}

	log.Info("search requested",
		zap.String("type", params.Type),
		zap.Int("limit", params.Limit),
		zap.Int("estimated_cost", estimated),
	)

	batch, err := s.collector.CollectProfiles(ctx, params)
	if err != nil {
		log.Error("search failed", zap.Error(err))
		return nil, err
	}

	outcome := &SearchOutcome{
		Profiles:      batch.Profiles,
		ThreadID:      batch.ThreadID,
		TotalCount:    batch.TotalCount,
		CreditsUsed:   batch.CreditsUsed,
		EstimatedCost: estimated,
		Partial:       batch.Partial,
	}

	spent := estimated
	if batch.CreditsUsed != nil {
		spent = *batch.CreditsUsed
	}
	log.Info("search completed",
		zap.Int("profiles", len(batch.Profiles)),
		zap.Int("calls", batch.Calls),
		zap.Int("credits_used", spent),
	)

	if keyErr == nil && !batch.Partial {
		s.cache.Store(ctx, key, outcome)
	}
	s.credits.Record(ctx, repository.LogCreditInput{
		Operation: entity.OperationSearch,
		Credits:   spent,
		Details:   logger.TruncateForLog(params.Query, logQueryLimit),
	})

	return present(outcome, opts), nil
}

// present fills the derived fields and applies sorting and grouping.
func present(outcome *SearchOutcome, opts SearchOptions) *SearchOutcome {
	if outcome.Profiles == nil {
		outcome.Profiles = []entity.Profile{}
	}
	if opts.Sort != nil {
		outcome.Profiles = tiering.SortProfiles(outcome.Profiles, *opts.Sort)
	}
	// Grouping the sorted slice keeps each tier in the requested order.
	groups := tiering.GroupByTier(outcome.Profiles)
	outcome.TierCounts = tiering.TierCounts(groups)
	outcome.VariedScores = tiering.HasVariedScores(outcome.Profiles)
	if opts.GroupBy {
		outcome.Tiers = &groups
	} else {
		outcome.Tiers = nil
	}
	return outcome
}
