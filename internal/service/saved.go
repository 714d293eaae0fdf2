package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/merraine/merraine-api/internal/entity"
	"github.com/merraine/merraine-api/internal/logger"
	"github.com/merraine/merraine-api/internal/repository"
)

// SavedService manages bookmarked candidates.
type SavedService struct {
	saved      repository.SavedRepository
	candidates repository.CandidatesRepository
	logger     *zap.Logger
}

// NewSavedService wires the service.
func NewSavedService(saved repository.SavedRepository, candidates repository.CandidatesRepository, log *zap.Logger) *SavedService {
	return &SavedService{saved: saved, candidates: candidates, logger: logger.OrNop(log)}
}

// Save bookmarks a candidate. When profile is given it is stored first, so
// candidates that only exist in a live search result can be saved.
func (s *SavedService) Save(ctx context.Context, pearchID, notes string, profile *entity.Profile) (*entity.SavedCandidate, error) {
	pearchID = strings.TrimSpace(pearchID)
	if pearchID == "" && profile != nil {
		pearchID = strings.TrimSpace(profile.ID)
	}
	if pearchID == "" {
		return nil, invalid("candidate id is required")
	}

	if profile != nil {
		p := *profile
		p.ID = pearchID
		if _, err := s.candidates.Upsert(ctx, p); err != nil {
			return nil, err
		}
	}

	saved, err := s.saved.Save(ctx, pearchID, notes)
	if err != nil {
		return nil, err
	}
	s.logger.Info("candidate saved", zap.String("candidate", pearchID))
	return saved, nil
}

// List returns saved candidates, most recent first.
func (s *SavedService) List(ctx context.Context) ([]entity.SavedCandidate, error) {
	return s.saved.List(ctx)
}

// UpdateNotes replaces the notes on a saved candidate.
func (s *SavedService) UpdateNotes(ctx context.Context, pearchID, notes string) (*entity.SavedCandidate, error) {
	return s.saved.UpdateNotes(ctx, strings.TrimSpace(pearchID), notes)
}

// Remove drops the bookmark.
func (s *SavedService) Remove(ctx context.Context, pearchID string) error {
	return s.saved.Remove(ctx, strings.TrimSpace(pearchID))
}
