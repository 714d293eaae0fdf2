package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/merraine/merraine-api/internal/entity"
)

func fillSearch(dest []any, id int64, name string) {
	now := time.Now()
	*dest[0].(*int64) = id
	*dest[1].(*string) = name
	*dest[2].(*string) = "golang engineers"
	*dest[3].(**string) = strPtr("Berlin")
	*dest[4].(*[]byte) = []byte(`{"type":"pro"}`)
	*dest[6].(*int) = 3
	*dest[7].(*int) = 15
	*dest[8].(*time.Time) = now
	*dest[9].(*time.Time) = now
}

func TestPGXSearchesRepository_Create(t *testing.T) {
	var gotArgs []any
	repo := &PGXSearchesRepository{pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			gotArgs = args
			return &stubRow{scan: func(dest ...any) error {
				fillSearch(dest, 1, "Backend hires")
				return nil
			}}
		},
	}}

	search, err := repo.Create(context.Background(), CreateSearchInput{Name: "Backend hires", Query: "golang engineers"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if search.ID != 1 || string(search.Options) != `{"type":"pro"}` {
		t.Fatalf("unexpected search: %+v", search)
	}
	if string(gotArgs[3].([]byte)) != "{}" {
		t.Fatalf("expected empty options object, got %s", gotArgs[3])
	}
	if gotArgs[2] != nil || gotArgs[4] != nil {
		t.Fatalf("expected NULL location and thread id, got %v %v", gotArgs[2], gotArgs[4])
	}
}

func TestPGXSearchesRepository_List(t *testing.T) {
	repo := &PGXSearchesRepository{pool: &stubPool{
		queryFunc: func(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
			return &stubRows{scans: []func(dest ...any) error{
				func(dest ...any) error {
					*dest[0].(*int64) = 2
					*dest[1].(*string) = "second"
					return nil
				},
				func(dest ...any) error {
					*dest[0].(*int64) = 1
					*dest[1].(*string) = "first"
					return nil
				},
			}}, nil
		},
	}}

	searches, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(searches) != 2 || searches[0].Name != "second" {
		t.Fatalf("unexpected searches: %+v", searches)
	}

	repo.pool = &stubPool{
		queryFunc: func(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
			return &stubRows{}, nil
		},
	}
	searches, err = repo.List(context.Background())
	if err != nil || searches == nil || len(searches) != 0 {
		t.Fatalf("expected empty non-nil list, got %v %v", searches, err)
	}
}

func TestPGXSearchesRepository_Get(t *testing.T) {
	linkScore := 0.9
	repo := &PGXSearchesRepository{pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			return &stubRow{scan: func(dest ...any) error {
				fillSearch(dest, 5, "saved")
				return nil
			}}
		},
		queryFunc: func(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
			if !strings.Contains(query, "ORDER BY sc.position") {
				t.Fatalf("expected position ordering, got %s", query)
			}
			return &stubRows{scans: []func(dest ...any) error{
				func(dest ...any) error {
					if len(dest) != 21 {
						t.Fatalf("expected 21 scan targets, got %d", len(dest))
					}
					fillCandidate(dest, 11, "doc-11")
					*dest[20].(**float64) = &linkScore
					return nil
				},
			}}, nil
		},
	}}

	out, err := repo.Get(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ID != 5 || len(out.Candidates) != 1 {
		t.Fatalf("unexpected search: %+v", out)
	}
	if out.Candidates[0].Score == nil || *out.Candidates[0].Score != 0.9 {
		t.Fatalf("expected link score, got %v", out.Candidates[0].Score)
	}

	repo.pool = &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			return &stubRow{scan: func(dest ...any) error { return pgx.ErrNoRows }}
		},
	}
	if _, err := repo.Get(context.Background(), 99); !errors.Is(err, ErrSearchNotFound) {
		t.Fatalf("expected ErrSearchNotFound, got %v", err)
	}
}

func TestPGXSearchesRepository_RenameAndDelete(t *testing.T) {
	repo := &PGXSearchesRepository{pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			return &stubRow{scan: func(dest ...any) error {
				fillSearch(dest, 3, args[1].(string))
				return nil
			}}
		},
		execFunc: func(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("DELETE 1"), nil
		},
	}}

	search, err := repo.Rename(context.Background(), 3, "renamed")
	if err != nil || search.Name != "renamed" {
		t.Fatalf("unexpected rename result: %+v %v", search, err)
	}
	if err := repo.Delete(context.Background(), 3); err != nil {
		t.Fatalf("unexpected delete error: %v", err)
	}

	repo.pool = &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			return &stubRow{scan: func(dest ...any) error { return pgx.ErrNoRows }}
		},
		execFunc: func(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("DELETE 0"), nil
		},
	}
	if _, err := repo.Rename(context.Background(), 4, "x"); !errors.Is(err, ErrSearchNotFound) {
		t.Fatalf("expected ErrSearchNotFound on rename, got %v", err)
	}
	if err := repo.Delete(context.Background(), 4); !errors.Is(err, ErrSearchNotFound) {
		t.Fatalf("expected ErrSearchNotFound on delete, got %v", err)
	}
}

func TestPGXSearchesRepository_AddCandidates(t *testing.T) {
	var positions []int
	nextCandidateID := int64(100)
	tx := &stubTx{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			switch {
			case strings.Contains(query, "FOR UPDATE"):
				return &stubRow{scan: func(dest ...any) error {
					*dest[0].(*int64) = 1
					return nil
				}}
			case strings.Contains(query, "MAX(position)"):
				return &stubRow{scan: func(dest ...any) error {
					*dest[0].(*int) = 4
					return nil
				}}
			case strings.Contains(query, "INSERT INTO candidates"):
				return &stubRow{scan: func(dest ...any) error {
					nextCandidateID++
					*dest[0].(*int64) = nextCandidateID
					return nil
				}}
			case strings.Contains(query, "UPDATE searches"):
				return &stubRow{scan: func(dest ...any) error {
					*dest[0].(*int) = 6
					return nil
				}}
			}
			t.Fatalf("unexpected query %s", query)
			return nil
		},
		execFunc: func(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
			if !strings.Contains(query, "ON CONFLICT (search_id, candidate_id) DO NOTHING") {
				t.Fatalf("expected idempotent link insert, got %s", query)
			}
			positions = append(positions, args[3].(int))
			return pgconn.NewCommandTag("INSERT 0 1"), nil
		},
	}
	repo := &PGXSearchesRepository{pool: &stubPool{
		beginTxFunc: func(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) { return tx, nil },
	}}

	total, err := repo.AddCandidates(context.Background(), 1, []entity.Profile{
		{ID: "a", Name: "A"},
		{Name: "missing id"},
		{ID: "b", Name: "B"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 6 {
		t.Fatalf("expected total 6, got %d", total)
	}
	if len(positions) != 2 || positions[0] != 5 || positions[1] != 6 {
		t.Fatalf("expected positions [5 6], got %v", positions)
	}
	if !tx.committed {
		t.Fatalf("expected commit")
	}
}

func TestPGXSearchesRepository_AddCandidatesRollsBack(t *testing.T) {
	tx := &stubTx{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			switch {
			case strings.Contains(query, "FOR UPDATE"):
				return &stubRow{scan: func(dest ...any) error {
					*dest[0].(*int64) = 1
					return nil
				}}
			case strings.Contains(query, "MAX(position)"):
				return &stubRow{scan: func(dest ...any) error {
					*dest[0].(*int) = 0
					return nil
				}}
			}
			return &stubRow{scan: func(dest ...any) error { return errors.New("boom") }}
		},
	}
	repo := &PGXSearchesRepository{pool: &stubPool{
		beginTxFunc: func(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) { return tx, nil },
	}}

	if _, err := repo.AddCandidates(context.Background(), 1, []entity.Profile{{ID: "a"}}); err == nil {
		t.Fatalf("expected error")
	}
	if tx.committed || !tx.rolledBack {
		t.Fatalf("expected rollback without commit")
	}
}

func TestPGXSearchesRepository_AddCandidatesMissingSearch(t *testing.T) {
	var linked bool
	tx := &stubTx{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			if !strings.Contains(query, "FOR UPDATE") {
				t.Fatalf("expected the search lock before any other query, got %s", query)
			}
			return &stubRow{scan: func(dest ...any) error { return pgx.ErrNoRows }}
		},
		execFunc: func(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
			linked = true
			return pgconn.NewCommandTag("INSERT 0 1"), nil
		},
	}
	repo := &PGXSearchesRepository{pool: &stubPool{
		beginTxFunc: func(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) { return tx, nil },
	}}

	_, err := repo.AddCandidates(context.Background(), 404, []entity.Profile{{ID: "a"}})
	if !errors.Is(err, ErrSearchNotFound) {
		t.Fatalf("expected ErrSearchNotFound, got %v", err)
	}
	if linked {
		t.Fatalf("expected no candidate links for a missing search")
	}
	if tx.committed || !tx.rolledBack {
		t.Fatalf("expected rollback without commit")
	}
}
