package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/merraine/merraine-api/internal/entity"
)

// ErrSavedNotFound is returned when the candidate is not in the saved list.
var ErrSavedNotFound = errors.New("saved candidate not found")

// SavedRepository manages bookmarked candidates, addressed by vendor id.
type SavedRepository interface {
	Save(ctx context.Context, pearchID, notes string) (*entity.SavedCandidate, error)
	List(ctx context.Context) ([]entity.SavedCandidate, error)
	UpdateNotes(ctx context.Context, pearchID, notes string) (*entity.SavedCandidate, error)
	Remove(ctx context.Context, pearchID string) error
}

// PGXSavedRepository implements SavedRepository using pgx.
type PGXSavedRepository struct {
	pool pgxPool
}

// NewPGXSavedRepository wires a pgx backed repository.
func NewPGXSavedRepository(pool *pgxpool.Pool) *PGXSavedRepository {
	return &PGXSavedRepository{pool: pool}
}

const savedSelect = `SELECT ` + candidateColumns + `, s.id, s.notes, s.saved_at
        FROM saved_candidates s
        JOIN candidates c ON c.id = s.candidate_id`

// Save bookmarks an existing candidate. Saving twice keeps the first entry and
// its notes. ErrCandidateNotFound is returned for unknown vendor ids.
func (r *PGXSavedRepository) Save(ctx context.Context, pearchID, notes string) (*entity.SavedCandidate, error) {
	if _, err := r.pool.Exec(ctx, `
        INSERT INTO saved_candidates (candidate_id, notes)
        SELECT id, $2 FROM candidates WHERE pearch_id = $1
        ON CONFLICT (candidate_id) DO NOTHING
    `, pearchID, notes); err != nil {
		return nil, fmt.Errorf("insert saved candidate: %w", err)
	}

	saved, err := scanSaved(r.pool.QueryRow(ctx, savedSelect+` WHERE c.pearch_id = $1`, pearchID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCandidateNotFound
		}
		return nil, fmt.Errorf("query saved candidate: %w", err)
	}
	return saved, nil
}

// List returns saved candidates, most recently saved first.
func (r *PGXSavedRepository) List(ctx context.Context) ([]entity.SavedCandidate, error) {
	rows, err := r.pool.Query(ctx, savedSelect+` ORDER BY s.saved_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list saved candidates: %w", err)
	}
	defer rows.Close()

	out := []entity.SavedCandidate{}
	for rows.Next() {
		saved, err := scanSaved(rows)
		if err != nil {
			return nil, fmt.Errorf("scan saved candidate: %w", err)
		}
		out = append(out, *saved)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate saved candidates: %w", err)
	}
	return out, nil
}

// UpdateNotes replaces the notes of a saved candidate.
func (r *PGXSavedRepository) UpdateNotes(ctx context.Context, pearchID, notes string) (*entity.SavedCandidate, error) {
	tag, err := r.pool.Exec(ctx, `
        UPDATE saved_candidates s SET notes = $2
        FROM candidates c
        WHERE c.id = s.candidate_id AND c.pearch_id = $1
    `, pearchID, notes)
	if err != nil {
		return nil, fmt.Errorf("update saved notes: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrSavedNotFound
	}

	saved, err := scanSaved(r.pool.QueryRow(ctx, savedSelect+` WHERE c.pearch_id = $1`, pearchID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSavedNotFound
		}
		return nil, fmt.Errorf("query saved candidate: %w", err)
	}
	return saved, nil
}

// Remove drops the bookmark; the candidate row stays.
func (r *PGXSavedRepository) Remove(ctx context.Context, pearchID string) error {
	tag, err := r.pool.Exec(ctx, `
        DELETE FROM saved_candidates s
        USING candidates c
        WHERE c.id = s.candidate_id AND c.pearch_id = $1
    `, pearchID)
	if err != nil {
		return fmt.Errorf("delete saved candidate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSavedNotFound
	}
	return nil
}

func scanSaved(row pgx.Row) (*entity.SavedCandidate, error) {
	var rec candidateRecord
	var savedID int64
	var notes string
	var savedAt time.Time
	if err := row.Scan(append(rec.targets(), &savedID, &notes, &savedAt)...); err != nil {
		return nil, err
	}
	return &entity.SavedCandidate{
		Profile:     rec.profile(),
		SavedID:     savedID,
		CandidateID: rec.id,
		Notes:       notes,
		SavedAt:     savedAt,
	}, nil
}
