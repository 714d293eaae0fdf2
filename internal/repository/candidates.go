package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/merraine/merraine-api/internal/entity"
)

// ErrCandidateNotFound is returned when no candidate has the given vendor id.
var ErrCandidateNotFound = errors.New("candidate not found")

// CandidatesRepository persists profiles keyed by their vendor id.
type CandidatesRepository interface {
	Upsert(ctx context.Context, profile entity.Profile) (int64, error)
	FindByPearchID(ctx context.Context, pearchID string) (*entity.Candidate, error)
	MarkEnriched(ctx context.Context, pearchID, email, phone string, options map[string]bool) (*entity.Candidate, error)
}

// PGXCandidatesRepository implements CandidatesRepository using pgx.
type PGXCandidatesRepository struct {
	pool pgxPool
}

// NewPGXCandidatesRepository wires a pgx backed repository.
func NewPGXCandidatesRepository(pool *pgxpool.Pool) *PGXCandidatesRepository {
	return &PGXCandidatesRepository{pool: pool}
}

const candidateColumns = `c.id, c.pearch_id, c.name, c.headline, c.location, c.summary, c.experience, c.education,
    c.skills, c.email, c.phone, c.linkedin_url, c.picture_url, c.score, c.insights,
    c.is_enriched, c.enriched_at, c.enrichment_options, c.created_at, c.updated_at`

const upsertCandidateSQL = `
        INSERT INTO candidates (pearch_id, name, headline, location, summary, experience, education, skills,
            email, phone, linkedin_url, picture_url, score, insights)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        ON CONFLICT (pearch_id) DO UPDATE SET
            name = EXCLUDED.name,
            headline = EXCLUDED.headline,
            location = EXCLUDED.location,
            summary = EXCLUDED.summary,
            experience = EXCLUDED.experience,
            education = EXCLUDED.education,
            skills = EXCLUDED.skills,
            email = COALESCE(EXCLUDED.email, candidates.email),
            phone = COALESCE(EXCLUDED.phone, candidates.phone),
            linkedin_url = EXCLUDED.linkedin_url,
            picture_url = EXCLUDED.picture_url,
            score = EXCLUDED.score,
            insights = EXCLUDED.insights,
            updated_at = NOW()
        RETURNING id
    `

// Upsert inserts the profile or refreshes the existing row. Contacts revealed
// by an earlier enrichment are kept when the new profile has none.
func (r *PGXCandidatesRepository) Upsert(ctx context.Context, profile entity.Profile) (int64, error) {
	return upsertCandidate(ctx, r.pool, profile)
}

func upsertCandidate(ctx context.Context, q queryer, profile entity.Profile) (int64, error) {
	if profile.ID == "" {
		return 0, fmt.Errorf("profile must have an id")
	}
	experience, err := jsonOrNil(profile.Experience)
	if err != nil {
		return 0, fmt.Errorf("encode experience: %w", err)
	}
	education, err := jsonOrNil(profile.Education)
	if err != nil {
		return 0, fmt.Errorf("encode education: %w", err)
	}
	var skills any
	if len(profile.Skills) > 0 {
		skills = profile.Skills
	}

	var id int64
	err = q.QueryRow(ctx, upsertCandidateSQL,
		profile.ID,
		stringOrNil(profile.Name),
		stringOrNil(profile.Headline),
		stringOrNil(profile.Location),
		stringOrNil(profile.Summary),
		experience,
		education,
		skills,
		stringOrNil(profile.Email),
		stringOrNil(profile.Phone),
		stringOrNil(profile.LinkedInURL),
		stringOrNil(profile.PictureURL),
		floatOrNil(profile.Score),
		stringOrNil(profile.Insights),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert candidate %q: %w", profile.ID, err)
	}
	return id, nil
}

// FindByPearchID loads a candidate by vendor id.
func (r *PGXCandidatesRepository) FindByPearchID(ctx context.Context, pearchID string) (*entity.Candidate, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+candidateColumns+` FROM candidates c WHERE c.pearch_id = $1`, pearchID)
	candidate, err := scanCandidate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCandidateNotFound
		}
		return nil, fmt.Errorf("query candidate by pearch id: %w", err)
	}
	return candidate, nil
}

// MarkEnriched stores revealed contacts and the options used to reveal them.
// Empty contacts leave the stored value unchanged.
func (r *PGXCandidatesRepository) MarkEnriched(ctx context.Context, pearchID, email, phone string, options map[string]bool) (*entity.Candidate, error) {
	opts, err := jsonOrNil(options)
	if err != nil {
		return nil, fmt.Errorf("encode enrichment options: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
        UPDATE candidates c SET
            email = COALESCE($2, c.email),
            phone = COALESCE($3, c.phone),
            is_enriched = TRUE,
            enriched_at = NOW(),
            enrichment_options = $4,
            updated_at = NOW()
        WHERE c.pearch_id = $1
        RETURNING `+candidateColumns, pearchID, stringOrNil(email), stringOrNil(phone), opts)

	candidate, err := scanCandidate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCandidateNotFound
		}
		return nil, fmt.Errorf("mark candidate enriched: %w", err)
	}
	return candidate, nil
}

// candidateRecord mirrors the nullable candidate columns.
type candidateRecord struct {
	id                int64
	pearchID          string
	name              *string
	headline          *string
	location          *string
	summary           *string
	experience        []byte
	education         []byte
	skills            []string
	email             *string
	phone             *string
	linkedinURL       *string
	pictureURL        *string
	score             *float64
	insights          *string
	isEnriched        bool
	enrichedAt        *time.Time
	enrichmentOptions []byte
	createdAt         time.Time
	updatedAt         time.Time
}

func (c *candidateRecord) targets() []any {
	return []any{
		&c.id, &c.pearchID, &c.name, &c.headline, &c.location, &c.summary, &c.experience, &c.education,
		&c.skills, &c.email, &c.phone, &c.linkedinURL, &c.pictureURL, &c.score, &c.insights,
		&c.isEnriched, &c.enrichedAt, &c.enrichmentOptions, &c.createdAt, &c.updatedAt,
	}
}

func (c *candidateRecord) profile() entity.Profile {
	p := entity.Profile{
		ID:          c.pearchID,
		Name:        deref(c.name),
		Headline:    deref(c.headline),
		Location:    deref(c.location),
		Summary:     deref(c.summary),
		Skills:      c.skills,
		Email:       deref(c.email),
		Phone:       deref(c.phone),
		LinkedInURL: deref(c.linkedinURL),
		PictureURL:  deref(c.pictureURL),
		Score:       c.score,
		Insights:    deref(c.insights),
		Experience:  []entity.Experience{},
		Education:   []entity.Education{},
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if len(c.experience) > 0 {
		_ = json.Unmarshal(c.experience, &p.Experience)
	}
	if len(c.education) > 0 {
		_ = json.Unmarshal(c.education, &p.Education)
	}
	return p
}

func (c *candidateRecord) entity() *entity.Candidate {
	out := &entity.Candidate{
		ID:         c.id,
		PearchID:   c.pearchID,
		Profile:    c.profile(),
		IsEnriched: c.isEnriched,
		EnrichedAt: c.enrichedAt,
		CreatedAt:  c.createdAt,
		UpdatedAt:  c.updatedAt,
	}
	if len(c.enrichmentOptions) > 0 {
		out.EnrichmentOptions = json.RawMessage(c.enrichmentOptions)
	}
	return out
}

func scanCandidate(row pgx.Row) (*entity.Candidate, error) {
	var rec candidateRecord
	if err := row.Scan(rec.targets()...); err != nil {
		return nil, err
	}
	return rec.entity(), nil
}
