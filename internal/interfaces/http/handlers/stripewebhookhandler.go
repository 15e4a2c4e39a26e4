package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	membershipUsecases "guildpass/internal/application/membership/usecases"
	platformUsecases "guildpass/internal/application/platform/usecases"
	"guildpass/internal/domain/member"
	"guildpass/internal/domain/platform"
	"guildpass/internal/shared/logger"
	"guildpass/internal/shared/utils"
)

const webhookBodyLimit = 1024 * 1024 // 1 MiB

// CustomerEmailLookup resolves a Stripe customer ID to an email address.
type CustomerEmailLookup interface {
	GetCustomerEmail(ctx context.Context, customerID string) (string, error)
}

// StripeWebhookHandler ingests Stripe events. New tenant subscriptions start
// the linking flow; new platform-plan subscriptions mint a coupon. Everything
// else, cancellations included, is left to the reconciliation pass.
type StripeWebhookHandler struct {
	webhookSecret        string
	createLinkingTokenUC *membershipUsecases.CreateLinkingTokenUseCase
	createPlatformSubUC  *platformUsecases.CreatePlatformSubscriptionUseCase
	customerEmails       CustomerEmailLookup
	logger               logger.Interface
}

// NewStripeWebhookHandler creates a new StripeWebhookHandler
func NewStripeWebhookHandler(
	webhookSecret string,
	createLinkingTokenUC *membershipUsecases.CreateLinkingTokenUseCase,
	createPlatformSubUC *platformUsecases.CreatePlatformSubscriptionUseCase,
	customerEmails CustomerEmailLookup,
	logger logger.Interface,
) *StripeWebhookHandler {
	return &StripeWebhookHandler{
		webhookSecret:        webhookSecret,
		createLinkingTokenUC: createLinkingTokenUC,
		createPlatformSubUC:  createPlatformSubUC,
		customerEmails:       customerEmails,
		logger:               logger,
	}
}

// HandleWebhook verifies the Stripe signature and dispatches the event.
// Returns 200 for event types we deliberately ignore so Stripe stops
// retrying them.
func (h *StripeWebhookHandler) HandleWebhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, webhookBodyLimit)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "failed to read request body")
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		h.logger.Warnw("stripe webhook signature verification failed", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid signature")
		return
	}

	switch event.Type {
	case "customer.subscription.created":
		h.handleSubscriptionCreated(c, event)
	default:
		h.logger.Debugw("stripe event ignored", "type", event.Type)
		utils.SuccessResponse(c, http.StatusOK, "", gin.H{"received": true})
	}
}

func (h *StripeWebhookHandler) handleSubscriptionCreated(c *gin.Context, event stripe.Event) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		h.logger.Errorw("failed to unmarshal subscription event", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "malformed event payload")
		return
	}

	status := string(sub.Status)
	if status != member.StatusActive && status != member.StatusTrialing {
		h.logger.Debugw("subscription event with inactive status ignored",
			"subscription_id", sub.ID,
			"status", status,
		)
		utils.SuccessResponse(c, http.StatusOK, "", gin.H{"received": true})
		return
	}

	if sub.Customer == nil || sub.Items == nil || len(sub.Items.Data) == 0 {
		h.logger.Warnw("subscription event missing customer or items", "subscription_id", sub.ID)
		utils.SuccessResponse(c, http.StatusOK, "", gin.H{"received": true})
		return
	}

	email, err := h.customerEmails.GetCustomerEmail(c.Request.Context(), sub.Customer.ID)
	if err != nil {
		h.logger.Errorw("failed to resolve customer email",
			"subscription_id", sub.ID,
			"error", err,
		)
		// 500 makes Stripe retry the delivery.
		utils.ErrorResponse(c, http.StatusInternalServerError, "failed to resolve customer")
		return
	}

	item := sub.Items.Data[0]

	if sub.Metadata["platform_plan"] == "true" {
		h.handlePlatformSubscription(c, &sub, item, email)
		return
	}

	tenantID := sub.Metadata["tenant_id"]
	if tenantID == "" {
		h.logger.Warnw("subscription without tenant_id metadata ignored", "subscription_id", sub.ID)
		utils.SuccessResponse(c, http.StatusOK, "", gin.H{"received": true})
		return
	}

	token, err := h.createLinkingTokenUC.Execute(c.Request.Context(), tenantID, sub.ID, email, item.Price.ID)
	if err != nil {
		h.logger.Errorw("failed to create linking token",
			"subscription_id", sub.ID,
			"tenant_id", tenantID,
			"error", err,
		)
		utils.ErrorResponse(c, http.StatusInternalServerError, "failed to process subscription")
		return
	}

	h.logger.Infow("linking token issued for new subscription",
		"subscription_id", sub.ID,
		"tenant_id", tenantID,
		"token_sid", token.SID(),
	)
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"received": true})
}

func (h *StripeWebhookHandler) handlePlatformSubscription(c *gin.Context, sub *stripe.Subscription, item *stripe.SubscriptionItem, email string) {
	pending, err := h.createPlatformSubUC.Execute(c.Request.Context(), email, platform.SubscriptionInfo{
		SubscriptionID: sub.ID,
		PlanID:         item.Price.ID,
		Status:         string(sub.Status),
		ExpiresAt:      time.Unix(item.CurrentPeriodEnd, 0),
	})
	if err != nil {
		h.logger.Errorw("failed to create platform subscription",
			"subscription_id", sub.ID,
			"error", err,
		)
		utils.ErrorResponse(c, http.StatusInternalServerError, "failed to process subscription")
		return
	}

	h.logger.Infow("platform subscription recorded",
		"subscription_id", sub.ID,
		"platform_sub_sid", pending.SID(),
	)
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"received": true})
}
