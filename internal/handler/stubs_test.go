package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/merraine/merraine-api/internal/entity"
	"github.com/merraine/merraine-api/internal/pearch"
	"github.com/merraine/merraine-api/internal/repository"
)

var errNotImplemented = errors.New("not implemented")

// newContext builds an echo context for a request carrying body as JSON.
// A string body is sent verbatim.
func newContext(t *testing.T, method, target string, body any) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

// decodeData unmarshals the envelope and its data field into dest.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) APIResponse {
	t.Helper()
	var envelope struct {
		APIResponse
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
	if dest != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, dest); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return envelope.APIResponse
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
}

type stubSettings struct {
	values map[string]string
	getErr error
}

func (s *stubSettings) Get(ctx context.Context, key string) (string, bool, error) {
	if s.getErr != nil {
		return "", false, s.getErr
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *stubSettings) Set(ctx context.Context, key, value string) error {
	if s.values == nil {
		s.values = map[string]string{}
	}
	s.values[key] = value
	return nil
}

type stubVendor struct {
	configured bool
	search     func(ctx context.Context, params pearch.SearchParams) (*pearch.SearchResponse, error)
	enrich     func(ctx context.Context, params pearch.EnrichParams) (map[string]any, error)
	upsertJobs func(ctx context.Context, jobs []pearch.Job) (map[string]any, error)
	listJobs   func(ctx context.Context, limit int) (*pearch.JobList, error)
	deleteJobs func(ctx context.Context, ids []string) (map[string]any, error)
	match      func(ctx context.Context, profile map[string]any) (*pearch.MatchResponse, error)
	user       func(ctx context.Context) (map[string]any, error)
}

func (s *stubVendor) Configured() bool { return s.configured }

func (s *stubVendor) Search(ctx context.Context, params pearch.SearchParams) (*pearch.SearchResponse, error) {
	if s.search != nil {
		return s.search(ctx, params)
	}
	return nil, errNotImplemented
}

func (s *stubVendor) EnrichProfile(ctx context.Context, params pearch.EnrichParams) (map[string]any, error) {
	if s.enrich != nil {
		return s.enrich(ctx, params)
	}
	return nil, errNotImplemented
}

func (s *stubVendor) UpsertJobs(ctx context.Context, jobs []pearch.Job) (map[string]any, error) {
	if s.upsertJobs != nil {
		return s.upsertJobs(ctx, jobs)
	}
	return nil, errNotImplemented
}

func (s *stubVendor) ListJobs(ctx context.Context, limit int) (*pearch.JobList, error) {
	if s.listJobs != nil {
		return s.listJobs(ctx, limit)
	}
	return nil, errNotImplemented
}

func (s *stubVendor) DeleteJobs(ctx context.Context, ids []string) (map[string]any, error) {
	if s.deleteJobs != nil {
		return s.deleteJobs(ctx, ids)
	}
	return nil, errNotImplemented
}

func (s *stubVendor) FindMatchingJobs(ctx context.Context, profile map[string]any) (*pearch.MatchResponse, error) {
	if s.match != nil {
		return s.match(ctx, profile)
	}
	return nil, errNotImplemented
}

func (s *stubVendor) User(ctx context.Context) (map[string]any, error) {
	if s.user != nil {
		return s.user(ctx)
	}
	return nil, errNotImplemented
}

type stubCreditsRepo struct {
	logged      []repository.LogCreditInput
	lastBalance *int
	history     []entity.CreditTransaction
	total       int
	gotLimit    int
}

func (s *stubCreditsRepo) Log(ctx context.Context, input repository.LogCreditInput) (*entity.CreditTransaction, error) {
	s.logged = append(s.logged, input)
	return &entity.CreditTransaction{ID: int64(len(s.logged))}, nil
}

func (s *stubCreditsRepo) History(ctx context.Context, limit int) ([]entity.CreditTransaction, error) {
	s.gotLimit = limit
	return s.history, nil
}

func (s *stubCreditsRepo) TotalUsed(ctx context.Context) (int, error) { return s.total, nil }

func (s *stubCreditsRepo) SaveBalance(ctx context.Context, balance int) error { return nil }

func (s *stubCreditsRepo) LastKnownBalance(ctx context.Context) (*int, error) {
	return s.lastBalance, nil
}

type stubSearchesRepo struct {
	searches map[int64]*entity.SearchWithCandidates
	nextID   int64
}

func newStubSearchesRepo() *stubSearchesRepo {
	return &stubSearchesRepo{searches: map[int64]*entity.SearchWithCandidates{}}
}

func (s *stubSearchesRepo) Create(ctx context.Context, input repository.CreateSearchInput) (*entity.Search, error) {
	s.nextID++
	search := entity.Search{ID: s.nextID, Name: input.Name, Query: input.Query, CreditsUsed: input.CreditsUsed}
	s.searches[search.ID] = &entity.SearchWithCandidates{Search: search, Candidates: []entity.Profile{}}
	return &search, nil
}

func (s *stubSearchesRepo) List(ctx context.Context) ([]entity.Search, error) {
	out := []entity.Search{}
	for id := s.nextID; id > 0; id-- {
		if found, ok := s.searches[id]; ok {
			out = append(out, found.Search)
		}
	}
	return out, nil
}

func (s *stubSearchesRepo) Get(ctx context.Context, id int64) (*entity.SearchWithCandidates, error) {
	found, ok := s.searches[id]
	if !ok {
		return nil, repository.ErrSearchNotFound
	}
	return found, nil
}

func (s *stubSearchesRepo) Rename(ctx context.Context, id int64, name string) (*entity.Search, error) {
	found, ok := s.searches[id]
	if !ok {
		return nil, repository.ErrSearchNotFound
	}
	found.Name = name
	return &found.Search, nil
}

func (s *stubSearchesRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := s.searches[id]; !ok {
		return repository.ErrSearchNotFound
	}
	delete(s.searches, id)
	return nil
}

func (s *stubSearchesRepo) AddCandidates(ctx context.Context, searchID int64, profiles []entity.Profile) (int, error) {
	found, ok := s.searches[searchID]
	if !ok {
		return 0, repository.ErrSearchNotFound
	}
	found.Candidates = append(found.Candidates, profiles...)
	found.TotalResults = len(found.Candidates)
	return found.TotalResults, nil
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
	out := []entity.SavedCandidate{}
	for id, notes := range s.saved {
		out = append(out, entity.SavedCandidate{Profile: entity.Profile{ID: id}, Notes: notes})
	}
	return out, nil
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

type stubCandidatesRepo struct {
	upserted []entity.Profile
}

func (s *stubCandidatesRepo) Upsert(ctx context.Context, profile entity.Profile) (int64, error) {
	s.upserted = append(s.upserted, profile)
	return int64(len(s.upserted)), nil
}

func (s *stubCandidatesRepo) FindByPearchID(ctx context.Context, pearchID string) (*entity.Candidate, error) {
	return nil, repository.ErrCandidateNotFound
}

func (s *stubCandidatesRepo) MarkEnriched(ctx context.Context, pearchID, email, phone string, options map[string]bool) (*entity.Candidate, error) {
	return nil, repository.ErrCandidateNotFound
}
