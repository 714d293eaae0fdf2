package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/merraine/merraine-api/internal/entity"
	"github.com/merraine/merraine-api/internal/logger"
	"github.com/merraine/merraine-api/internal/repository"
)

// SaveSearchInput is a search the user wants to keep, with its results.
type SaveSearchInput struct {
	Name        string           `json:"name"`
	Query       string           `json:"query"`
	Location    string           `json:"location"`
	Options     map[string]any   `json:"options"`
	ThreadID    string           `json:"thread_id"`
	CreditsUsed int              `json:"credits_used"`
	Profiles    []entity.Profile `json:"profiles"`
}

// SearchesService manages saved searches.
type SearchesService struct {
	repo    repository.SearchesRepository
	credits *CreditsService
	logger  *zap.Logger
}

// NewSearchesService wires the service. credits may be nil.
func NewSearchesService(repo repository.SearchesRepository, credits *CreditsService, log *zap.Logger) *SearchesService {
	return &SearchesService{repo: repo, credits: credits, logger: logger.OrNop(log)}
}

// List returns saved searches, newest first.
func (s *SearchesService) List(ctx context.Context) ([]entity.Search, error) {
	return s.repo.List(ctx)
}

// Get returns a saved search with its candidates.
func (s *SearchesService) Get(ctx context.Context, id int64) (*entity.SearchWithCandidates, error) {
	return s.repo.Get(ctx, id)
}

// Save stores the search, links its profiles and records the credits it cost.
func (s *SearchesService) Save(ctx context.Context, input SaveSearchInput) (*entity.Search, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Query = strings.TrimSpace(input.Query)
	if input.Name == "" || input.Query == "" {
		return nil, invalid("name and query are required")
	}
	if input.CreditsUsed < 0 {
		return nil, invalid("credits_used must not be negative")
	}

	search, err := s.repo.Create(ctx, repository.CreateSearchInput{
		Name:        input.Name,
		Query:       input.Query,
		Location:    strings.TrimSpace(input.Location),
		Options:     input.Options,
		ThreadID:    input.ThreadID,
		CreditsUsed: input.CreditsUsed,
	})
	if err != nil {
		return nil, err
	}

	if len(input.Profiles) > 0 {
		total, err := s.repo.AddCandidates(ctx, search.ID, input.Profiles)
		if err != nil {
			return nil, err
		}
		search.TotalResults = total
	}

	if input.CreditsUsed > 0 {
		searchID := search.ID
		s.credits.Record(ctx, repository.LogCreditInput{
			Operation: entity.OperationSearchSaved,
			Credits:   input.CreditsUsed,
			Details:   logger.TruncateForLog(input.Query, logQueryLimit),
			SearchID:  &searchID,
		})
	}

	s.logger.Info("search saved",
		zap.Int64("search_id", search.ID),
		zap.Int("candidates", search.TotalResults),
	)
	return search, nil
}

// AddCandidates appends more profiles to a saved search and returns the new total.
func (s *SearchesService) AddCandidates(ctx context.Context, id int64, profiles []entity.Profile) (int, error) {
	if len(profiles) == 0 {
		return 0, invalid("profiles array is required")
	}
	return s.repo.AddCandidates(ctx, id, profiles)
}

// Rename changes the display name.
func (s *SearchesService) Rename(ctx context.Context, id int64, name string) (*entity.Search, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name is required")
	}
	return s.repo.Rename(ctx, id, name)
}

// Delete removes a saved search.
func (s *SearchesService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
