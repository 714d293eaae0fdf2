package service

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/merraine/merraine-api/internal/entity"
	"github.com/merraine/merraine-api/internal/logger"
	"github.com/merraine/merraine-api/internal/repository"
)

const (
	BalanceSourceLive   = "live"
	BalanceSourceCached = "cached"
)

// balanceKeys are the vendor user fields that may carry the balance, in order.
var balanceKeys = []string{"credits_remaining", "credit_balance", "remaining_credits", "credits"}

// BalanceClient reads the vendor account.
type BalanceClient interface {
	Configured() bool
	User(ctx context.Context) (map[string]any, error)
}

// Balance is the remaining vendor credit count. CreditsRemaining is nil when
// neither the vendor nor a stored snapshot could provide it.
type Balance struct {
	CreditsRemaining *int   `json:"credits_remaining"`
	Source           string `json:"source,omitempty"`
}

// History is the ledger view.
type History struct {
	Transactions []entity.CreditTransaction `json:"transactions"`
	TotalUsed    int                        `json:"total_used"`
}

// CreditsService owns the credit ledger and the vendor balance. The repository
// may be nil, in which case ledger writes are skipped.
type CreditsService struct {
	repo   repository.CreditsRepository
	vendor BalanceClient
	logger *zap.Logger
}

// NewCreditsService builds the service.
func NewCreditsService(repo repository.CreditsRepository, vendor BalanceClient, log *zap.Logger) *CreditsService {
	return &CreditsService{repo: repo, vendor: vendor, logger: logger.OrNop(log)}
}

// Record appends a ledger entry. Failures are logged and swallowed.
func (s *CreditsService) Record(ctx context.Context, input repository.LogCreditInput) {
	if s == nil || s.repo == nil {
		return
	}
	if _, err := s.repo.Log(ctx, input); err != nil {
		s.logger.Warn("credit ledger write failed",
			zap.String("operation", input.Operation),
			zap.Int("credits", input.Credits),
			zap.Error(err),
		)
	}
}

// Balance returns the live vendor balance, storing it as the latest snapshot,
// and falls back to the stored snapshot when the vendor cannot answer.
func (s *CreditsService) Balance(ctx context.Context) Balance {
	if live, err := s.liveBalance(ctx); err == nil {
		if s.repo != nil {
			if err := s.repo.SaveBalance(ctx, live); err != nil {
				s.logger.Warn("balance snapshot write failed", zap.Error(err))
			}
		}
		return Balance{CreditsRemaining: &live, Source: BalanceSourceLive}
	} else if !errors.Is(err, errNoBalance) {
		s.logger.Warn("live balance unavailable", zap.Error(err))
	}

	if s.repo == nil {
		return Balance{}
	}
	cached, err := s.repo.LastKnownBalance(ctx)
	if err != nil {
		s.logger.Warn("read balance snapshot failed", zap.Error(err))
		return Balance{}
	}
	return Balance{CreditsRemaining: cached, Source: BalanceSourceCached}
}

// SyncBalance stores the live balance as the latest snapshot.
func (s *CreditsService) SyncBalance(ctx context.Context) (int, error) {
	if s.repo == nil {
		return 0, ErrNoDatabase
	}
	live, err := s.liveBalance(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.repo.SaveBalance(ctx, live); err != nil {
		return 0, err
	}
	return live, nil
}

// History returns the newest ledger entries and the total spent.
func (s *CreditsService) History(ctx context.Context, limit int) (*History, error) {
	if s.repo == nil {
		return nil, ErrNoDatabase
	}
	txs, err := s.repo.History(ctx, limit)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.TotalUsed(ctx)
	if err != nil {
		return nil, err
	}
	return &History{Transactions: txs, TotalUsed: total}, nil
}

var errNoBalance = errors.New("vendor balance unavailable")

func (s *CreditsService) liveBalance(ctx context.Context) (int, error) {
	if s.vendor == nil || !s.vendor.Configured() {
		return 0, errNoBalance
	}
	user, err := s.vendor.User(ctx)
	if err != nil {
		return 0, err
	}
	balance, ok := extractBalance(user)
	if !ok {
		return 0, errNoBalance
	}
	return balance, nil
}

func extractBalance(user map[string]any) (int, bool) {
	for _, key := range balanceKeys {
		if f := floatValue(user[key]); f != nil {
			return int(math.Round(*f)), true
		}
		if raw, ok := user[key].(string); ok {
			if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
				return int(math.Round(f)), true
			}
		}
	}
	return 0, false
}
