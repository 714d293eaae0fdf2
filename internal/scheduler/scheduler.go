// Package scheduler runs the periodic vendor balance sync.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const jobTimeout = 30 * time.Second

// BalanceSyncer stores the live vendor balance.
type BalanceSyncer interface {
	SyncBalance(ctx context.Context) (int, error)
}

// Scheduler wraps robfig/cron.
type Scheduler struct {
	cron   *cron.Cron
	syncer BalanceSyncer
	spec   string
	logger *zap.Logger
}

// New creates a scheduler firing on spec, e.g. "@every 15m".
func New(spec string, syncer BalanceSyncer, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	cl := cronLogger{log: log.Sugar()}
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		syncer: syncer,
		spec:   spec,
		logger: log,
	}
}

// Start registers the job, starts the cron loop and runs one sync right away.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("schedule balance sync %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("spec", s.spec))

	go s.RunOnce(ctx)
	return nil
}

// Stop halts the cron loop and waits for a running job.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// RunOnce performs one balance sync. Errors are logged.
func (s *Scheduler) RunOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	jobCtx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	balance, err := s.syncer.SyncBalance(jobCtx)
	if err != nil {
		s.logger.Warn("balance sync failed", zap.Error(err))
		return
	}
	s.logger.Info("balance synced", zap.Int("credits_remaining", balance))
}

type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
