package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	platformUsecases "guildpass/internal/application/platform/usecases"
	"guildpass/internal/domain/platform"
	"guildpass/internal/shared/logger"
	"guildpass/internal/shared/utils"
)

// PlatformHandler exposes coupon redemption.
type PlatformHandler struct {
	redeemUC *platformUsecases.RedeemCouponUseCase
	logger   logger.Interface
}

// NewPlatformHandler creates a new PlatformHandler
func NewPlatformHandler(redeemUC *platformUsecases.RedeemCouponUseCase, logger logger.Interface) *PlatformHandler {
	return &PlatformHandler{redeemUC: redeemUC, logger: logger}
}

// RedeemCouponRequest represents the request to redeem a coupon code
type RedeemCouponRequest struct {
	CouponCode string `json:"coupon_code" binding:"required"`
}

// RedeemCouponResponse represents the activated subscription
type RedeemCouponResponse struct {
	PlatformSubSID string    `json:"platform_sub_sid"`
	PlanID         string    `json:"plan_id"`
	Status         string    `json:"status"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// RedeemCoupon burns a coupon code.
// POST /platform/coupons/redeem
func (h *PlatformHandler) RedeemCoupon(c *gin.Context) {
	var req RedeemCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "coupon_code is required")
		return
	}

	result, err := h.redeemUC.Execute(c.Request.Context(), req.CouponCode)
	if err != nil {
		switch {
		case errors.Is(err, platform.ErrCouponNotFound):
			utils.ErrorResponse(c, http.StatusNotFound, "coupon not found")
		case errors.Is(err, platform.ErrAlreadyRedeemed):
			utils.ErrorResponse(c, http.StatusConflict, "coupon already redeemed")
		default:
			h.logger.Errorw("coupon redemption failed", "error", err)
			utils.ErrorResponse(c, http.StatusInternalServerError, "failed to redeem coupon")
		}
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "coupon redeemed", RedeemCouponResponse{
		PlatformSubSID: result.PlatformSubSID,
		PlanID:         result.Subscription.PlanID,
		Status:         result.Subscription.Status,
		ExpiresAt:      result.Subscription.ExpiresAt,
	})
}
