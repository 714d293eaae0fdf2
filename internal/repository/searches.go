package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/merraine/merraine-api/internal/entity"
)

// ErrSearchNotFound is returned when no saved search has the given id.
var ErrSearchNotFound = errors.New("search not found")

// CreateSearchInput carries the fields of a new saved search.
type CreateSearchInput struct {
	Name        string
	Query       string
	Location    string
	Options     map[string]any
	ThreadID    string
	CreditsUsed int
}

// SearchesRepository persists saved searches and their candidate links.
type SearchesRepository interface {
	Create(ctx context.Context, input CreateSearchInput) (*entity.Search, error)
	List(ctx context.Context) ([]entity.Search, error)
	Get(ctx context.Context, id int64) (*entity.SearchWithCandidates, error)
	Rename(ctx context.Context, id int64, name string) (*entity.Search, error)
	Delete(ctx context.Context, id int64) error
	AddCandidates(ctx context.Context, searchID int64, profiles []entity.Profile) (int, error)
}

// PGXSearchesRepository implements SearchesRepository using pgx.
type PGXSearchesRepository struct {
	pool pgxPool
}

// NewPGXSearchesRepository wires a pgx backed repository.
func NewPGXSearchesRepository(pool *pgxpool.Pool) *PGXSearchesRepository {
	return &PGXSearchesRepository{pool: pool}
}

const searchColumns = `id, name, query, location, options, thread_id, total_results, credits_used, created_at, updated_at`

// Create inserts a search with zero linked results.
func (r *PGXSearchesRepository) Create(ctx context.Context, input CreateSearchInput) (*entity.Search, error) {
	options, err := jsonOrNil(input.Options)
	if err != nil {
		return nil, fmt.Errorf("encode search options: %w", err)
	}
	if options == nil {
		options = []byte("{}")
	}

	row := r.pool.QueryRow(ctx, `
        INSERT INTO searches (name, query, location, options, thread_id, credits_used, total_results)
        VALUES ($1, $2, $3, $4, $5, $6, 0)
        RETURNING `+searchColumns,
		input.Name, input.Query, stringOrNil(input.Location), options, stringOrNil(input.ThreadID), input.CreditsUsed)

	search, err := scanSearch(row)
	if err != nil {
		return nil, fmt.Errorf("insert search: %w", err)
	}
	return search, nil
}

// List returns every saved search, newest first, without options.
func (r *PGXSearchesRepository) List(ctx context.Context) ([]entity.Search, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id, name, query, location, total_results, credits_used, created_at, updated_at
        FROM searches
        ORDER BY created_at DESC
    `)
	if err != nil {
		return nil, fmt.Errorf("list searches: %w", err)
	}
	defer rows.Close()

	searches := []entity.Search{}
	for rows.Next() {
		var s entity.Search
		if err := rows.Scan(&s.ID, &s.Name, &s.Query, &s.Location, &s.TotalResults, &s.CreditsUsed, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan search row: %w", err)
		}
		searches = append(searches, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate searches: %w", err)
	}
	return searches, nil
}

// Get loads a search and its candidates in position order. The link score
// replaces the stored candidate score.
func (r *PGXSearchesRepository) Get(ctx context.Context, id int64) (*entity.SearchWithCandidates, error) {
	search, err := scanSearch(r.pool.QueryRow(ctx, `SELECT `+searchColumns+` FROM searches WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSearchNotFound
		}
		return nil, fmt.Errorf("query search: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
        SELECT `+candidateColumns+`, sc.score
        FROM search_candidates sc
        JOIN candidates c ON c.id = sc.candidate_id
        WHERE sc.search_id = $1
        ORDER BY sc.position
    `, id)
	if err != nil {
		return nil, fmt.Errorf("query search candidates: %w", err)
	}
	defer rows.Close()

	out := &entity.SearchWithCandidates{Search: *search, Candidates: []entity.Profile{}}
	for rows.Next() {
		var rec candidateRecord
		var linkScore *float64
		if err := rows.Scan(append(rec.targets(), &linkScore)...); err != nil {
			return nil, fmt.Errorf("scan search candidate: %w", err)
		}
		profile := rec.profile()
		profile.Score = linkScore
		out.Candidates = append(out.Candidates, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search candidates: %w", err)
	}
	return out, nil
}

// Rename updates the search name.
func (r *PGXSearchesRepository) Rename(ctx context.Context, id int64, name string) (*entity.Search, error) {
	row := r.pool.QueryRow(ctx, `
        UPDATE searches SET name = $2, updated_at = NOW()
        WHERE id = $1
        RETURNING `+searchColumns, id, name)

	search, err := scanSearch(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSearchNotFound
		}
		return nil, fmt.Errorf("rename search: %w", err)
	}
	return search, nil
}

// Delete removes the search; links cascade, candidates stay.
func (r *PGXSearchesRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM searches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete search: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSearchNotFound
	}
	return nil
}

// AddCandidates upserts the profiles, links them after the current last
// position, skips links that already exist and refreshes total_results.
// The search row is locked for the whole transaction.
// Profiles without an id are skipped. It returns the new total.
func (r *PGXSearchesRepository) AddCandidates(ctx context.Context, searchID int64, profiles []entity.Profile) (int, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("start add candidates tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var lockedID int64
	if err := tx.QueryRow(ctx, `SELECT id FROM searches WHERE id = $1 FOR UPDATE`, searchID).Scan(&lockedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrSearchNotFound
		}
		return 0, fmt.Errorf("lock search: %w", err)
	}

	var position int
	if err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(position), 0) FROM search_candidates WHERE search_id = $1`, searchID).Scan(&position); err != nil {
		return 0, fmt.Errorf("query max position: %w", err)
	}

	for _, profile := range profiles {
		if profile.ID == "" {
			continue
		}
		candidateID, err := upsertCandidate(ctx, tx, profile)
		if err != nil {
			return 0, err
		}
		position++
		if _, err := tx.Exec(ctx, `
            INSERT INTO search_candidates (search_id, candidate_id, score, position)
            VALUES ($1, $2, $3, $4)
            ON CONFLICT (search_id, candidate_id) DO NOTHING
        `, searchID, candidateID, floatOrNil(profile.Score), position); err != nil {
			return 0, fmt.Errorf("link candidate %q: %w", profile.ID, err)
		}
	}

	var total int
	if err := tx.QueryRow(ctx, `
        UPDATE searches
        SET total_results = (SELECT COUNT(*) FROM search_candidates WHERE search_id = $1), updated_at = NOW()
        WHERE id = $1
        RETURNING total_results
    `, searchID).Scan(&total); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrSearchNotFound
		}
		return 0, fmt.Errorf("update search total: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit add candidates tx: %w", err)
	}
	return total, nil
}

func scanSearch(row pgx.Row) (*entity.Search, error) {
	var s entity.Search
	var options []byte
	if err := row.Scan(&s.ID, &s.Name, &s.Query, &s.Location, &options, &s.ThreadID, &s.TotalResults, &s.CreditsUsed, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	if len(options) > 0 {
		s.Options = json.RawMessage(options)
	}
	return &s, nil
}
