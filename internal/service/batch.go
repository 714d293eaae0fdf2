package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/merraine/merraine-api/internal/entity"
	"github.com/merraine/merraine-api/internal/logger"
	"github.com/merraine/merraine-api/internal/pearch"
	"github.com/merraine/merraine-api/internal/service/tiering"
)

// DefaultMaxPerCall is the vendor's per-request result cap.
const DefaultMaxPerCall = 20

// Searcher issues a single vendor search call.
type Searcher interface {
	Search(ctx context.Context, params pearch.SearchParams) (*pearch.SearchResponse, error)
}

// BatchResult is the merged outcome of one or more vendor calls.
type BatchResult struct {
	Profiles    []entity.Profile
	ThreadID    string
	TotalCount  *int
	CreditsUsed *int
	Calls       int
	// Partial is set when a later call failed and earlier pages were kept.
	Partial bool
}

// Collector runs the batching loop over a Searcher.
type Collector struct {
	searcher   Searcher
	normalizer *Normalizer
	maxPerCall int
	logger     *zap.Logger
}

// NewCollector builds a collector. A non-positive maxPerCall uses DefaultMaxPerCall.
func NewCollector(searcher Searcher, normalizer *Normalizer, maxPerCall int, log *zap.Logger) *Collector {
	if maxPerCall <= 0 {
		maxPerCall = DefaultMaxPerCall
	}
	if normalizer == nil {
		normalizer = NewNormalizer(nil)
	}
	return &Collector{searcher: searcher, normalizer: normalizer, maxPerCall: maxPerCall, logger: logger.OrNop(log)}
}

// CollectProfiles calls the vendor sequentially, carrying thread_id forward,
// until the requested count is reached, a page comes back short, no thread_id
// is returned, or ceil(requested/maxPerCall) calls were made. Profiles are
// merged by id keeping the higher score and capped at the requested count.
func (c *Collector) CollectProfiles(ctx context.Context, params pearch.SearchParams) (*BatchResult, error) {
	requested := params.Limit
	if requested <= 0 {
		requested = DefaultSearchLimit
	}
	maxCalls := (requested + c.maxPerCall - 1) / c.maxPerCall

	log := c.logger.With(
		zap.String("query", logger.TruncateForLog(params.Query, 100)),
		zap.Int("requested", requested),
	)

	result := &BatchResult{}
	var collected []entity.Profile
	threadID := params.ThreadID

	for result.Calls < maxCalls {
		ask := min(c.maxPerCall, requested-len(collected))
		call := params
		call.Limit = ask
		call.ThreadID = threadID

		resp, err := c.searcher.Search(ctx, call)
		if err != nil {
			if result.Calls == 0 || ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil, err
			}
			log.Warn("search batch failed, returning collected profiles", zap.Int("call", result.Calls+1), zap.Error(err))
			result.Partial = true
			break
		}
		result.Calls++

		page := c.normalizer.Results(resp.SearchResults)
		collected = tiering.Deduplicate(append(collected, page...))

		if resp.CreditsUsed != nil {
			sum := *resp.CreditsUsed
			if result.CreditsUsed != nil {
				sum += *result.CreditsUsed
			}
			result.CreditsUsed = &sum
		}
		result.TotalCount = resp.TotalCount
		threadID = resp.ThreadID
		result.ThreadID = resp.ThreadID

		log.Debug("search batch received",
			zap.Int("call", result.Calls),
			zap.Int("asked", ask),
			zap.Int("returned", len(resp.SearchResults)),
			zap.Int("collected", len(collected)),
		)

		if len(collected) >= requested || len(resp.SearchResults) < ask || threadID == "" {
			break
		}
	}

	if len(collected) > requested {
		collected = collected[:requested]
	}
	if collected == nil {
		collected = []entity.Profile{}
	}
	result.Profiles = collected
	return result, nil
}
