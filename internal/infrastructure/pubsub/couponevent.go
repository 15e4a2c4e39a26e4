package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"guildpass/internal/shared/logger"
)

// CouponEmailEvent is the cross-instance message asking the worker to deliver
// a coupon email. The API instance that handled the checkout publishes it;
// whichever worker instance is subscribed sends the mail.
type CouponEmailEvent struct {
	PlatformSubSID string `json:"platform_sub_sid"`
	CustomerEmail  string `json:"customer_email"`
	CouponCode     string `json:"coupon_code"`
	PlanID         string `json:"plan_id"`
	Timestamp      int64  `json:"timestamp"`
}

// CouponEventHandler is a callback function for handling coupon events
type CouponEventHandler func(ctx context.Context, event CouponEmailEvent)

// CouponEventPublisher defines the interface for publishing coupon events
type CouponEventPublisher interface {
	PublishCouponGenerated(ctx context.Context, platformSubSID, customerEmail, couponCode, planID string) error
}

// CouponEventSubscriber defines the interface for subscribing to coupon events
type CouponEventSubscriber interface {
	Subscribe(ctx context.Context, handler CouponEventHandler) error
}

const couponGeneratedChannel = "guildpass:platform:coupon_generated"

// RedisCouponEventBus implements both CouponEventPublisher and
// CouponEventSubscriber using Redis Pub/Sub.
type RedisCouponEventBus struct {
	client *redis.Client
	logger logger.Interface
}

// NewRedisCouponEventBus creates a new Redis-based coupon event bus
func NewRedisCouponEventBus(client *redis.Client, logger logger.Interface) *RedisCouponEventBus {
	return &RedisCouponEventBus{
		client: client,
		logger: logger,
	}
}

// PublishCouponGenerated publishes a coupon generated event
func (b *RedisCouponEventBus) PublishCouponGenerated(ctx context.Context, platformSubSID, customerEmail, couponCode, planID string) error {
	event := CouponEmailEvent{
		PlatformSubSID: platformSubSID,
		CustomerEmail:  customerEmail,
		CouponCode:     couponCode,
		PlanID:         planID,
		Timestamp:      time.Now().Unix(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.client.Publish(ctx, couponGeneratedChannel, data).Err(); err != nil {
		b.logger.Errorw("failed to publish coupon generated event",
			"platform_sub_sid", event.PlatformSubSID,
			"error", err,
		)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debugw("coupon generated event published",
		"platform_sub_sid", event.PlatformSubSID,
		"plan_id", event.PlanID,
	)
	return nil
}

// Subscribe subscribes to coupon events and calls the handler for each event
func (b *RedisCouponEventBus) Subscribe(ctx context.Context, handler CouponEventHandler) error {
	pubsub := b.client.Subscribe(ctx, couponGeneratedChannel)
	defer pubsub.Close()

	// Wait for subscription confirmation
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}

	b.logger.Infow("subscribed to coupon generated events",
		"channel", couponGeneratedChannel,
	)

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			b.logger.Infow("coupon event subscriber stopped", "reason", ctx.Err())
			return ctx.Err()

		case msg, ok := <-ch:
			if !ok {
				b.logger.Warnw("coupon event channel closed")
				return nil
			}

			var event CouponEmailEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.logger.Warnw("failed to unmarshal coupon event",
					"payload", msg.Payload,
					"error", err,
				)
				continue
			}

			// Handle event in background goroutine to avoid blocking the event loop
			go handler(ctx, event)
		}
	}
}
