package usecases

import (
	"context"
	"fmt"

	"guildpass/internal/domain/platform"
	"guildpass/internal/domain/shared/events"
	"guildpass/internal/shared/logger"
)

// CreatePlatformSubscriptionUseCase records a paid platform subscription and
// mints its coupon code. The coupon-generated event is published only after
// the aggregate was persisted, so a failed insert never leaks a coupon email.
type CreatePlatformSubscriptionUseCase struct {
	platformRepo platform.Repository
	publisher    events.Publisher
	logger       logger.Interface
}

// NewCreatePlatformSubscriptionUseCase creates a new CreatePlatformSubscriptionUseCase.
func NewCreatePlatformSubscriptionUseCase(
	platformRepo platform.Repository,
	publisher events.Publisher,
	logger logger.Interface,
) *CreatePlatformSubscriptionUseCase {
	return &CreatePlatformSubscriptionUseCase{
		platformRepo: platformRepo,
		publisher:    publisher,
		logger:       logger,
	}
}

// Execute creates the pending platform subscription for a checkout of a
// platform plan.
func (uc *CreatePlatformSubscriptionUseCase) Execute(ctx context.Context, customerEmail string, subscription platform.SubscriptionInfo) (*platform.PendingPlatformSubscription, error) {
	pending, err := platform.NewPendingPlatformSubscription(customerEmail, subscription)
	if err != nil {
		return nil, fmt.Errorf("failed to create platform subscription: %w", err)
	}

	if err := uc.platformRepo.Create(ctx, pending); err != nil {
		return nil, fmt.Errorf("failed to save platform subscription: %w", err)
	}

	if err := uc.publisher.PublishAll(pending.DomainEvents()); err != nil {
		// The subscription is saved; the coupon is recoverable through
		// support, so event delivery failure is logged, not returned.
		uc.logger.Errorw("failed to publish coupon generated event",
			"error", err,
			"platform_sub_sid", pending.SID(),
		)
	}
	pending.ClearEvents()

	uc.logger.Infow("platform subscription created",
		"platform_sub_sid", pending.SID(),
		"plan_id", subscription.PlanID,
	)

	return pending, nil
}
