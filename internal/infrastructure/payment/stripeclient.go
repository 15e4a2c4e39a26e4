package payment

import (
	"context"
	"fmt"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/customer"
	stripesub "github.com/stripe/stripe-go/v82/subscription"

	"guildpass/internal/domain/member"
	"guildpass/internal/shared/logger"
)

// StripeClient resolves a customer's active subscriptions by email. It is the
// ground truth the reconciliation pass diffs against.
type StripeClient struct {
	logger logger.Interface
}

// NewStripeClient creates a new StripeClient. The API key is process-global
// in the Stripe SDK, so it is set once here.
func NewStripeClient(apiKey string, logger logger.Interface) *StripeClient {
	stripe.Key = apiKey
	return &StripeClient{logger: logger}
}

// GetCustomerEmail resolves the email behind a Stripe customer ID. Webhook
// payloads carry only the customer ID.
func (c *StripeClient) GetCustomerEmail(ctx context.Context, customerID string) (string, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx

	cust, err := customer.Get(customerID, params)
	if err != nil {
		return "", fmt.Errorf("failed to get customer %s: %w", customerID, err)
	}
	if cust.Email == "" {
		return "", fmt.Errorf("customer %s has no email", customerID)
	}
	return cust.Email, nil
}

// GetActiveSubscriptions returns every active or trialing subscription for
// the customer identified by email. An email with no Stripe customer behind
// it yields an empty slice, not an error; the same goes for a customer whose
// subscriptions were all cancelled.
func (c *StripeClient) GetActiveSubscriptions(ctx context.Context, customerEmail string) ([]member.Subscription, error) {
	customerParams := &stripe.CustomerListParams{
		Email: stripe.String(customerEmail),
	}
	customerParams.Context = ctx

	var subscriptions []member.Subscription

	custIter := customer.List(customerParams)
	for custIter.Next() {
		cust := custIter.Customer()

		subParams := &stripe.SubscriptionListParams{
			Customer: stripe.String(cust.ID),
		}
		subParams.Context = ctx

		subIter := stripesub.List(subParams)
		for subIter.Next() {
			s := subIter.Subscription()
			status := string(s.Status)
			if status != member.StatusActive && status != member.StatusTrialing {
				continue
			}
			if s.Items == nil || len(s.Items.Data) == 0 {
				c.logger.Warnw("subscription without items skipped",
					"subscription_id", s.ID,
				)
				continue
			}
			subscriptions = append(subscriptions, member.Subscription{
				ID:      s.ID,
				PriceID: s.Items.Data[0].Price.ID,
				Status:  status,
			})
		}
		if err := subIter.Err(); err != nil {
			return nil, fmt.Errorf("failed to list subscriptions for customer %s: %w", cust.ID, err)
		}
	}
	if err := custIter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	return subscriptions, nil
}
