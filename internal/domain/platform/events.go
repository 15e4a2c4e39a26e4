package platform

import (
	"time"

	"guildpass/internal/domain/shared/events"
)

// EventTypeCouponGenerated is raised once when a pending platform
// subscription is created, to trigger asynchronous coupon email delivery.
const EventTypeCouponGenerated = "platform.coupon_generated"

type CouponGeneratedEvent struct {
	events.BaseEvent
	CustomerEmail string `json:"customer_email"`
	CouponCode    string `json:"coupon_code"`
	PlanID        string `json:"plan_id"`
}

func newCouponGeneratedEvent(aggregateSID, customerEmail, couponCode, planID string) CouponGeneratedEvent {
	return CouponGeneratedEvent{
		BaseEvent: events.BaseEvent{
			ID:   aggregateSID,
			Type: EventTypeCouponGenerated,
			At:   time.Now(),
		},
		CustomerEmail: customerEmail,
		CouponCode:    couponCode,
		PlanID:        planID,
	}
}
