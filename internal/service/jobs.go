package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/merraine/merraine-api/internal/entity"
	"github.com/merraine/merraine-api/internal/logger"
	"github.com/merraine/merraine-api/internal/pearch"
	"github.com/merraine/merraine-api/internal/repository"
)

// JobsClient is the vendor job index.
type JobsClient interface {
	UpsertJobs(ctx context.Context, jobs []pearch.Job) (map[string]any, error)
	ListJobs(ctx context.Context, limit int) (*pearch.JobList, error)
	DeleteJobs(ctx context.Context, jobIDs []string) (map[string]any, error)
	FindMatchingJobs(ctx context.Context, profile map[string]any) (*pearch.MatchResponse, error)
}

// JobsService proxies job postings and profile matching.
type JobsService struct {
	vendor  JobsClient
	credits *CreditsService
	logger  *zap.Logger
}

// NewJobsService wires the service. credits may be nil.
func NewJobsService(vendor JobsClient, credits *CreditsService, log *zap.Logger) *JobsService {
	return &JobsService{vendor: vendor, credits: credits, logger: logger.OrNop(log)}
}

// List returns indexed jobs. A non-positive limit uses the vendor default.
func (s *JobsService) List(ctx context.Context, limit int) (*pearch.JobList, error) {
	jobs, err := s.vendor.ListJobs(ctx, limit)
	if err != nil {
		return nil, err
	}
	if jobs.Jobs == nil {
		jobs.Jobs = []pearch.Job{}
	}
	return jobs, nil
}

// Upsert indexes jobs; each costs one credit.
func (s *JobsService) Upsert(ctx context.Context, jobs []pearch.Job) (map[string]any, error) {
	if len(jobs) == 0 {
		return nil, invalid("jobs array is required")
	}
	for i := range jobs {
		jobs[i].JobID = strings.TrimSpace(jobs[i].JobID)
		if jobs[i].JobID == "" || strings.TrimSpace(jobs[i].JobDescription) == "" {
			return nil, invalid("each job must have job_id and job_description")
		}
	}

	result, err := s.vendor.UpsertJobs(ctx, jobs)
	if err != nil {
		s.logger.Error("upsert jobs failed", zap.Int("jobs", len(jobs)), zap.Error(err))
		return nil, err
	}
	if result == nil {
		result = map[string]any{}
	}
	result["credits_used"] = len(jobs)

	s.credits.Record(ctx, repository.LogCreditInput{
		Operation: entity.OperationJobsUpsert,
		Credits:   len(jobs),
	})
	s.logger.Info("jobs upserted", zap.Int("jobs", len(jobs)))
	return result, nil
}

// Delete removes jobs by id.
func (s *JobsService) Delete(ctx context.Context, jobIDs []string) (map[string]any, error) {
	ids := make([]string, 0, len(jobIDs))
	for _, id := range jobIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, invalid("job ids array is required")
	}

	result, err := s.vendor.DeleteJobs(ctx, ids)
	if err != nil {
		s.logger.Error("delete jobs failed", zap.Int("jobs", len(ids)), zap.Error(err))
		return nil, err
	}
	if result == nil {
		result = map[string]any{}
	}
	return result, nil
}

// Match finds indexed jobs that fit a profile.
func (s *JobsService) Match(ctx context.Context, profile map[string]any) (*pearch.MatchResponse, error) {
	if len(profile) == 0 {
		return nil, invalid("profile is required")
	}
	matches, err := s.vendor.FindMatchingJobs(ctx, profile)
	if err != nil {
		s.logger.Error("match jobs failed", zap.Error(err))
		return nil, err
	}
	if matches.Jobs == nil {
		matches.Jobs = []pearch.MatchedJob{}
	}
	return matches, nil
}
