package usecases

import (
	"context"
	"fmt"

	"guildpass/internal/domain/linking"
	"guildpass/internal/shared/logger"
)

// CreateLinkingTokenUseCase handles a newly observed paid subscription from
// the webhook path: it mints a single-use linking token and emails the
// linking URL to the customer.
type CreateLinkingTokenUseCase struct {
	linkingRepo linking.Repository
	notifier    LinkingNotifier
	linkBaseURL string
	logger      logger.Interface
}

// NewCreateLinkingTokenUseCase creates a new CreateLinkingTokenUseCase.
// linkBaseURL is the public URL prefix the token is appended to.
func NewCreateLinkingTokenUseCase(
	linkingRepo linking.Repository,
	notifier LinkingNotifier,
	linkBaseURL string,
	logger logger.Interface,
) *CreateLinkingTokenUseCase {
	return &CreateLinkingTokenUseCase{
		linkingRepo: linkingRepo,
		notifier:    notifier,
		linkBaseURL: linkBaseURL,
		logger:      logger,
	}
}

// Execute mints and persists the token. Email delivery is best-effort: a
// send failure is logged and does not fail the operation, since the token
// stays redeemable through support channels.
func (uc *CreateLinkingTokenUseCase) Execute(ctx context.Context, tenantID, stripeSubscriptionID, customerEmail, stripePriceID string) (*linking.AccountLinkingToken, error) {
	token, err := linking.NewAccountLinkingToken(tenantID, stripeSubscriptionID, customerEmail, stripePriceID)
	if err != nil {
		return nil, fmt.Errorf("failed to create linking token: %w", err)
	}

	if err := uc.linkingRepo.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to persist linking token: %w", err)
	}

	linkURL := fmt.Sprintf("%s/link/%s", uc.linkBaseURL, token.Token())
	if err := uc.notifier.SendLinkingEmail(ctx, customerEmail, linkURL); err != nil {
		uc.logger.Errorw("failed to send linking email",
			"error", err,
			"tenant_id", tenantID,
			"subscription_id", stripeSubscriptionID,
		)
	}

	uc.logger.Infow("linking token created",
		"tenant_id", tenantID,
		"subscription_id", stripeSubscriptionID,
		"token_sid", token.SID(),
		"expires_at", token.ExpiresAt(),
	)

	return token, nil
}
