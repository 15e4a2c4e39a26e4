package usecases

import (
	"context"
	"fmt"

	"guildpass/internal/domain/platform"
	"guildpass/internal/shared/logger"
)

// RedeemCouponResult carries the subscription activated by a redemption.
type RedeemCouponResult struct {
	PlatformSubSID string
	CustomerEmail  string
	Subscription   platform.SubscriptionInfo
}

// RedeemCouponUseCase burns a coupon code exactly once.
type RedeemCouponUseCase struct {
	platformRepo platform.Repository
	logger       logger.Interface
}

// NewRedeemCouponUseCase creates a new RedeemCouponUseCase.
func NewRedeemCouponUseCase(platformRepo platform.Repository, logger logger.Interface) *RedeemCouponUseCase {
	return &RedeemCouponUseCase{platformRepo: platformRepo, logger: logger}
}

// Execute looks the coupon up and marks it redeemed. A second redemption of
// the same code fails with ErrAlreadyRedeemed.
func (uc *RedeemCouponUseCase) Execute(ctx context.Context, couponCode string) (*RedeemCouponResult, error) {
	if !platform.IsValidCouponCode(couponCode) {
		return nil, platform.ErrCouponNotFound
	}

	pending, err := uc.platformRepo.GetByCouponCode(ctx, couponCode)
	if err != nil {
		return nil, err
	}

	if pending.IsRedeemed() {
		return nil, platform.ErrAlreadyRedeemed
	}

	pending.MarkAsRedeemed()
	if err := uc.platformRepo.Update(ctx, pending); err != nil {
		return nil, fmt.Errorf("failed to update platform subscription: %w", err)
	}

	uc.logger.Infow("coupon redeemed",
		"platform_sub_sid", pending.SID(),
		"plan_id", pending.Subscription().PlanID,
	)

	return &RedeemCouponResult{
		PlatformSubSID: pending.SID(),
		CustomerEmail:  pending.CustomerEmail(),
		Subscription:   pending.Subscription(),
	}, nil
}
