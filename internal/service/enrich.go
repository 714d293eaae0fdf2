package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/merraine/merraine-api/internal/cache"
	"github.com/merraine/merraine-api/internal/entity"
	"github.com/merraine/merraine-api/internal/logger"
	"github.com/merraine/merraine-api/internal/pearch"
	"github.com/merraine/merraine-api/internal/repository"
)

// Enricher reveals a single vendor profile.
type Enricher interface {
	EnrichProfile(ctx context.Context, params pearch.EnrichParams) (map[string]any, error)
}

// EnrichService proxies profile enrichment and keeps revealed contacts on the
// stored candidate. candidates, cache and credits may be nil.
type EnrichService struct {
	vendor     Enricher
	candidates repository.CandidatesRepository
	normalizer *Normalizer
	cache      *cache.Cache
	credits    *CreditsService
	logger     *zap.Logger
}

// NewEnrichService wires the service.
func NewEnrichService(vendor Enricher, candidates repository.CandidatesRepository, normalizer *Normalizer, c *cache.Cache, credits *CreditsService, log *zap.Logger) *EnrichService {
	if normalizer == nil {
		normalizer = NewNormalizer(nil)
	}
	return &EnrichService{
		vendor:     vendor,
		candidates: candidates,
		normalizer: normalizer,
		cache:      c,
		credits:    credits,
		logger:     logger.OrNop(log),
	}
}

// Enrich returns the vendor payload extended with estimated_cost. Repeated
// requests with the same flags are served from cache and not charged again.
func (s *EnrichService) Enrich(ctx context.Context, params pearch.EnrichParams) (map[string]any, error) {
	params.ID = strings.TrimSpace(params.ID)
	if params.ID == "" {
		return nil, invalid("profile id is required")
	}

	estimated := EnrichCost(params)
	log := s.logger.With(
		zap.String(logger.FieldOperation, "enrich"),
		zap.String(logger.FieldRequestID, pearch.RequestIDFromContext(ctx)),
		zap.String("profile_id", logger.TruncateForLog(params.ID, 20)),
	)

	key, keyErr := cache.Key(cache.NamespaceEnrich, params)
	if keyErr == nil {
		var cached map[string]any
		if s.cache.Lookup(ctx, key, &cached) && cached != nil {
			log.Debug("enrichment served from cache")
			cached["cached"] = true
			return cached, nil
		}
	}

	log.Info("enrich requested",
		zap.Bool("high_freshness", params.HighFreshness),
		zap.Bool("reveal_emails", params.RevealEmails),
		zap.Bool("reveal_phones", params.RevealPhones),
		zap.Int("estimated_cost", estimated),
	)

	result, err := s.vendor.EnrichProfile(ctx, params)
	if err != nil {
		log.Error("enrich failed", zap.Error(err))
		return nil, err
	}
	if result == nil {
		result = map[string]any{}
	}

	candidateID := s.storeContacts(ctx, log, params, result)

	spent := estimated
	if used := floatValue(result["credits_used"]); used != nil {
		spent = int(math.Round(*used))
	}
	s.credits.Record(ctx, repository.LogCreditInput{
		Operation:   entity.OperationEnrich,
		Credits:     spent,
		Details:     params.ID,
		CandidateID: candidateID,
	})

	result["estimated_cost"] = estimated
	if keyErr == nil {
		s.cache.Store(ctx, key, result)
	}
	result["cached"] = false
	return result, nil
}

// storeContacts writes revealed contacts to the candidate row. A candidate not
// seen before is created from the returned profile when there is one. Failures
// are logged and never fail the request.
func (s *EnrichService) storeContacts(ctx context.Context, log *zap.Logger, params pearch.EnrichParams, result map[string]any) *int64 {
	if s.candidates == nil {
		return nil
	}
	email, phone := s.normalizer.Contact(result)
	flags := map[string]bool{
		"high_freshness": params.HighFreshness,
		"reveal_emails":  params.RevealEmails,
		"reveal_phones":  params.RevealPhones,
		"with_profile":   params.WithProfile,
	}

	candidate, err := s.candidates.MarkEnriched(ctx, params.ID, email, phone, flags)
	if errors.Is(err, repository.ErrCandidateNotFound) {
		raw, ok := result["profile"].(map[string]any)
		if !ok {
			log.Debug("enriched profile is not stored, skipping contact write")
			return nil
		}
		profile := s.normalizer.Profile(raw, map[string]any{"docid": params.ID})
		profile.ID = params.ID
		if _, err = s.candidates.Upsert(ctx, profile); err == nil {
			candidate, err = s.candidates.MarkEnriched(ctx, params.ID, email, phone, flags)
		}
	}
	if err != nil {
		log.Warn("enrichment write failed", zap.Error(err))
		return nil
	}
	return &candidate.ID
}
