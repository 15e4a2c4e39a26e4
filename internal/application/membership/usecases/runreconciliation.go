package usecases

import (
	"context"
	"fmt"

	"guildpass/internal/domain/member"
	"guildpass/internal/shared/logger"
)

// ReconciliationSummary counts what one reconciliation run did.
type ReconciliationSummary struct {
	Total   int
	Changed int
	Failed  int
}

// RunReconciliationUseCase iterates every linked member and re-derives its
// subscription state from the payment provider. Members are processed
// sequentially, one at a time; each member's failure is isolated so the run
// always covers the whole population.
type RunReconciliationUseCase struct {
	memberRepo member.Repository
	syncUC     *SyncMemberSubscriptionsUseCase
	logger     logger.Interface
}

// NewRunReconciliationUseCase creates a new RunReconciliationUseCase.
func NewRunReconciliationUseCase(
	memberRepo member.Repository,
	syncUC *SyncMemberSubscriptionsUseCase,
	logger logger.Interface,
) *RunReconciliationUseCase {
	return &RunReconciliationUseCase{
		memberRepo: memberRepo,
		syncUC:     syncUC,
		logger:     logger,
	}
}

// Execute runs one full reconciliation pass.
func (uc *RunReconciliationUseCase) Execute(ctx context.Context) (*ReconciliationSummary, error) {
	members, err := uc.memberRepo.ListLinked(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list linked members: %w", err)
	}

	summary := &ReconciliationSummary{Total: len(members)}

	for _, m := range members {
		result, err := uc.syncUC.Execute(ctx, m)
		if err != nil {
			summary.Failed++
			uc.logger.Errorw("member reconciliation failed",
				"error", err,
				"member_sid", m.SID(),
			)
			continue
		}
		if result.Changed {
			summary.Changed++
		}
	}

	uc.logger.Infow("reconciliation run completed",
		"total", summary.Total,
		"changed", summary.Changed,
		"failed", summary.Failed,
	)

	return summary, nil
}
