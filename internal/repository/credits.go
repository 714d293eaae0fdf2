package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/merraine/merraine-api/internal/entity"
)

// DefaultHistoryLimit bounds History when no limit is given.
const DefaultHistoryLimit = 50

// LogCreditInput describes one ledger entry.
type LogCreditInput struct {
	Operation   string
	Credits     int
	Details     string
	SearchID    *int64
	CandidateID *int64
}

// CreditsRepository is the append-only credit ledger plus the balance snapshot.
type CreditsRepository interface {
	Log(ctx context.Context, input LogCreditInput) (*entity.CreditTransaction, error)
	History(ctx context.Context, limit int) ([]entity.CreditTransaction, error)
	TotalUsed(ctx context.Context) (int, error)
	SaveBalance(ctx context.Context, balance int) error
	LastKnownBalance(ctx context.Context) (*int, error)
}

// PGXCreditsRepository implements CreditsRepository using pgx.
type PGXCreditsRepository struct {
	pool pgxPool
}

// NewPGXCreditsRepository wires a pgx backed repository.
func NewPGXCreditsRepository(pool *pgxpool.Pool) *PGXCreditsRepository {
	return &PGXCreditsRepository{pool: pool}
}

const creditColumns = `id, operation, credits, details, search_id, candidate_id, created_at`

// Log appends a ledger entry.
func (r *PGXCreditsRepository) Log(ctx context.Context, input LogCreditInput) (*entity.CreditTransaction, error) {
	row := r.pool.QueryRow(ctx, `
        INSERT INTO credit_transactions (operation, credits, details, search_id, candidate_id)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING `+creditColumns,
		input.Operation, input.Credits, stringOrNil(input.Details), int64OrNil(input.SearchID), int64OrNil(input.CandidateID))

	var tx entity.CreditTransaction
	if err := row.Scan(creditTargets(&tx)...); err != nil {
		return nil, fmt.Errorf("insert credit transaction: %w", err)
	}
	return &tx, nil
}

// History returns the newest ledger entries first.
func (r *PGXCreditsRepository) History(ctx context.Context, limit int) ([]entity.CreditTransaction, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	rows, err := r.pool.Query(ctx, `
        SELECT `+creditColumns+`
        FROM credit_transactions
        ORDER BY created_at DESC, id DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("list credit transactions: %w", err)
	}
	defer rows.Close()

	out := []entity.CreditTransaction{}
	for rows.Next() {
		var tx entity.CreditTransaction
		if err := rows.Scan(creditTargets(&tx)...); err != nil {
			return nil, fmt.Errorf("scan credit transaction: %w", err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credit transactions: %w", err)
	}
	return out, nil
}

// TotalUsed sums spent credits. Balance snapshots are not spending.
func (r *PGXCreditsRepository) TotalUsed(ctx context.Context) (int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `
        SELECT COALESCE(SUM(credits), 0)::int
        FROM credit_transactions
        WHERE operation <> $1
    `, entity.OperationBalanceSync).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum credits used: %w", err)
	}
	return total, nil
}

// SaveBalance replaces the stored balance snapshot.
func (r *PGXCreditsRepository) SaveBalance(ctx context.Context, balance int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("start balance tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM credit_transactions WHERE operation = $1`, entity.OperationBalanceSync); err != nil {
		return fmt.Errorf("clear balance snapshot: %w", err)
	}
	if _, err := tx.Exec(ctx, `
        INSERT INTO credit_transactions (operation, credits, details)
        VALUES ($1, $2, $3)
    `, entity.OperationBalanceSync, balance, fmt.Sprintf("Pearch balance: %d", balance)); err != nil {
		return fmt.Errorf("insert balance snapshot: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit balance tx: %w", err)
	}
	return nil
}

// LastKnownBalance returns the latest snapshot, or nil when none was stored.
func (r *PGXCreditsRepository) LastKnownBalance(ctx context.Context) (*int, error) {
	var balance int
	err := r.pool.QueryRow(ctx, `
        SELECT credits FROM credit_transactions
        WHERE operation = $1
        ORDER BY created_at DESC
        LIMIT 1
    `, entity.OperationBalanceSync).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query last balance: %w", err)
	}
	return &balance, nil
}

func creditTargets(tx *entity.CreditTransaction) []any {
	return []any{&tx.ID, &tx.Operation, &tx.Credits, &tx.Details, &tx.SearchID, &tx.CandidateID, &tx.CreatedAt}
}
