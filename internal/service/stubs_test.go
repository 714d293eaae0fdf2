package service

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/merraine/merraine-api/internal/entity"
	"github.com/merraine/merraine-api/internal/pearch"
	"github.com/merraine/merraine-api/internal/repository"
)

var errNotStubbed = errors.New("not stubbed")

type stubSettings struct {
	values map[string]string
	getErr error
	setErr error
}

func (s *stubSettings) Get(ctx context.Context, key string) (string, bool, error) {
	if s.getErr != nil {
		return "", false, s.getErr
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *stubSettings) Set(ctx context.Context, key, value string) error {
	if s.setErr != nil {
		return s.setErr
	}
	if s.values == nil {
		s.values = map[string]string{}
	}
	s.values[key] = value
	return nil
}

type stubCreditsRepo struct {
	logged      []repository.LogCreditInput
	logErr      error
	balances    []int
	saveErr     error
	lastBalance *int
	lastErr     error
	history     []entity.CreditTransaction
	total       int
}

func (s *stubCreditsRepo) Log(ctx context.Context, input repository.LogCreditInput) (*entity.CreditTransaction, error) {
	if s.logErr != nil {
		return nil, s.logErr
	}
	s.logged = append(s.logged, input)
	return &entity.CreditTransaction{ID: int64(len(s.logged)), Operation: input.Operation, Credits: input.Credits}, nil
}

func (s *stubCreditsRepo) History(ctx context.Context, limit int) ([]entity.CreditTransaction, error) {
	return s.history, nil
}

func (s *stubCreditsRepo) TotalUsed(ctx context.Context) (int, error) {
	return s.total, nil
}

func (s *stubCreditsRepo) SaveBalance(ctx context.Context, balance int) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.balances = append(s.balances, balance)
	return nil
}

func (s *stubCreditsRepo) LastKnownBalance(ctx context.Context) (*int, error) {
	return s.lastBalance, s.lastErr
}

type stubVendor struct {
	configured bool
	user       func(ctx context.Context) (map[string]any, error)
	enrich     func(ctx context.Context, params pearch.EnrichParams) (map[string]any, error)
	upsertJobs func(ctx context.Context, jobs []pearch.Job) (map[string]any, error)
	listJobs   func(ctx context.Context, limit int) (*pearch.JobList, error)
	deleteJobs func(ctx context.Context, ids []string) (map[string]any, error)
	match      func(ctx context.Context, profile map[string]any) (*pearch.MatchResponse, error)
}

func (s *stubVendor) Configured() bool { return s.configured }

func (s *stubVendor) User(ctx context.Context) (map[string]any, error) {
	if s.user != nil {
		return s.user(ctx)
	}
	return nil, errNotStubbed
}

func (s *stubVendor) EnrichProfile(ctx context.Context, params pearch.EnrichParams) (map[string]any, error) {
	if s.enrich != nil {
		return s.enrich(ctx, params)
	}
	return nil, errNotStubbed
}

func (s *stubVendor) UpsertJobs(ctx context.Context, jobs []pearch.Job) (map[string]any, error) {
	if s.upsertJobs != nil {
		return s.upsertJobs(ctx, jobs)
	}
	return nil, errNotStubbed
}

func (s *stubVendor) ListJobs(ctx context.Context, limit int) (*pearch.JobList, error) {
	if s.listJobs != nil {
		return s.listJobs(ctx, limit)
	}
	return nil, errNotStubbed
}

func (s *stubVendor) DeleteJobs(ctx context.Context, ids []string) (map[string]any, error) {
	if s.deleteJobs != nil {
		return s.deleteJobs(ctx, ids)
	}
	return nil, errNotStubbed
}

func (s *stubVendor) FindMatchingJobs(ctx context.Context, profile map[string]any) (*pearch.MatchResponse, error) {
	if s.match != nil {
		return s.match(ctx, profile)
	}
	return nil, errNotStubbed
}

type stubCandidatesRepo struct {
	upserted    []entity.Profile
	upsertErr   error
	known       map[string]bool
	markedEmail string
	markedPhone string
	markedOpts  map[string]bool
	markErr     error
}

func (s *stubCandidatesRepo) Upsert(ctx context.Context, profile entity.Profile) (int64, error) {
	if s.upsertErr != nil {
		return 0, s.upsertErr
	}
	s.upserted = append(s.upserted, profile)
	if s.known == nil {
		s.known = map[string]bool{}
	}
	s.known[profile.ID] = true
	return int64(len(s.upserted)), nil
}

func (s *stubCandidatesRepo) FindByPearchID(ctx context.Context, pearchID string) (*entity.Candidate, error) {
	if !s.known[pearchID] {
		return nil, repository.ErrCandidateNotFound
	}
	return &entity.Candidate{ID: 1, PearchID: pearchID}, nil
}

func (s *stubCandidatesRepo) MarkEnriched(ctx context.Context, pearchID, email, phone string, options map[string]bool) (*entity.Candidate, error) {
	if s.markErr != nil {
		return nil, s.markErr
	}
	if !s.known[pearchID] {
		return nil, repository.ErrCandidateNotFound
	}
	s.markedEmail, s.markedPhone, s.markedOpts = email, phone, options
	return &entity.Candidate{ID: 77, PearchID: pearchID, IsEnriched: true}, nil
}

type stubSearchesRepo struct {
	created   []repository.CreateSearchInput
	added     map[int64][]entity.Profile
	addErr    error
	renamed   string
	deleteErr error
}

func (s *stubSearchesRepo) Create(ctx context.Context, input repository.CreateSearchInput) (*entity.Search, error) {
	s.created = append(s.created, input)
	return &entity.Search{ID: int64(len(s.created)), Name: input.Name, Query: input.Query, CreditsUsed: input.CreditsUsed}, nil
}

func (s *stubSearchesRepo) List(ctx context.Context) ([]entity.Search, error) {
	return []entity.Search{}, nil
}

func (s *stubSearchesRepo) Get(ctx context.Context, id int64) (*entity.SearchWithCandidates, error) {
	if _, ok := s.added[id]; !ok {
		return nil, repository.ErrSearchNotFound
	}
	return &entity.SearchWithCandidates{Search: entity.Search{ID: id}, Candidates: s.added[id]}, nil
}

func (s *stubSearchesRepo) Rename(ctx context.Context, id int64, name string) (*entity.Search, error) {
	s.renamed = name
	return &entity.Search{ID: id, Name: name}, nil
}

func (s *stubSearchesRepo) Delete(ctx context.Context, id int64) error {
	return s.deleteErr
}

func (s *stubSearchesRepo) AddCandidates(ctx context.Context, searchID int64, profiles []entity.Profile) (int, error) {
	if s.addErr != nil {
		return 0, s.addErr
	}
	if s.added == nil {
		s.added = map[int64][]entity.Profile{}
	}
	s.added[searchID] = append(s.added[searchID], profiles...)
	return len(s.added[searchID]), nil
}

type stubSavedRepo struct {
	saved map[string]string
}

func (s *stubSavedRepo) Save(ctx context.Context, pearchID, notes string) (*entity.SavedCandidate, error) {
	if s.saved == nil {
		s.saved = map[string]string{}
	}
	s.saved[pearchID] = notes
	return &entity.SavedCandidate{Profile: entity.Profile{ID: pearchID}, Notes: notes}, nil
}

func (s *stubSavedRepo) List(ctx context.Context) ([]entity.SavedCandidate, error) {
	return []entity.SavedCandidate{}, nil
}

func (s *stubSavedRepo) UpdateNotes(ctx context.Context, pearchID, notes string) (*entity.SavedCandidate, error) {
	if _, ok := s.saved[pearchID]; !ok {
		return nil, repository.ErrSavedNotFound
	}
	s.saved[pearchID] = notes
	return &entity.SavedCandidate{Profile: entity.Profile{ID: pearchID}, Notes: notes}, nil
}

func (s *stubSavedRepo) Remove(ctx context.Context, pearchID string) error {
	if _, ok := s.saved[pearchID]; !ok {
		return repository.ErrSavedNotFound
	}
	delete(s.saved, pearchID)
	return nil
}

type memoryRedis struct {
	values map[string]string
}

func newMemoryRedis() *memoryRedis {
	return &memoryRedis{values: map[string]string{}}
}

func (m *memoryRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memoryRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.values[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}
