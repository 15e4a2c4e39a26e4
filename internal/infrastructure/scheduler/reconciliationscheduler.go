package scheduler

import (
	"context"
	"sync"
	"time"

	membershipUsecases "guildpass/internal/application/membership/usecases"
	"guildpass/internal/shared/logger"
)

// ReconciliationScheduler periodically re-derives every linked member's
// subscription state from the payment provider. One pass runs at a time; a
// tick that fires while the previous pass is still working is skipped by the
// ticker semantics.
type ReconciliationScheduler struct {
	reconciliationUC *membershipUsecases.RunReconciliationUseCase
	logger           logger.Interface
	stopChan         chan struct{}
	stopOnce         sync.Once
	wg               sync.WaitGroup
	interval         time.Duration
}

// NewReconciliationScheduler creates a new ReconciliationScheduler
func NewReconciliationScheduler(
	reconciliationUC *membershipUsecases.RunReconciliationUseCase,
	interval time.Duration,
	logger logger.Interface,
) *ReconciliationScheduler {
	return &ReconciliationScheduler{
		reconciliationUC: reconciliationUC,
		logger:           logger,
		stopChan:         make(chan struct{}),
		interval:         interval,
	}
}

// Start starts the scheduler
func (s *ReconciliationScheduler) Start(ctx context.Context) {
	s.logger.Infow("starting reconciliation scheduler", "interval", s.interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runLoop(ctx)
	}()
}

// Stop stops the scheduler gracefully
func (s *ReconciliationScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Infow("stopping reconciliation scheduler")
		close(s.stopChan)
		s.wg.Wait()
		s.logger.Infow("reconciliation scheduler stopped")
	})
}

func (s *ReconciliationScheduler) runLoop(ctx context.Context) {
	// Run immediately on startup so a restarted worker catches up right away
	s.runReconciliation(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Infow("reconciliation scheduler stopped due to context cancellation")
			return
		case <-s.stopChan:
			s.logger.Infow("reconciliation scheduler stopped")
			return
		case <-ticker.C:
			s.runReconciliation(ctx)
		}
	}
}

func (s *ReconciliationScheduler) runReconciliation(ctx context.Context) {
	s.logger.Debugw("reconciliation pass started")

	startTime := time.Now()

	summary, err := s.reconciliationUC.Execute(ctx)
	if err != nil {
		s.logger.Errorw("reconciliation pass failed",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	if summary.Changed > 0 || summary.Failed > 0 {
		s.logger.Infow("reconciliation pass completed",
			"total", summary.Total,
			"changed", summary.Changed,
			"failed", summary.Failed,
			"duration", time.Since(startTime),
		)
	} else {
		s.logger.Debugw("reconciliation pass found no changes",
			"total", summary.Total,
			"duration", time.Since(startTime),
		)
	}
}
