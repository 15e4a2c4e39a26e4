package platform

import (
	"fmt"
	"time"

	"guildpass/internal/domain/shared/events"
	"guildpass/internal/shared/id"
)

// SubscriptionInfo is the platform subscription snapshot carried by the
// pending aggregate.
type SubscriptionInfo struct {
	SubscriptionID string
	PlanID         string
	Status         string
	ExpiresAt      time.Time
}

// PendingPlatformSubscription gates platform-level access behind an emailed
// coupon code. Created unredeemed, transitions to redeemed exactly once.
// Independent of Member: a customer may hold both simultaneously and the
// aggregates are never merged.
type PendingPlatformSubscription struct {
	dbID          uint
	sid           string
	customerEmail string
	subscription  SubscriptionInfo
	couponCode    string
	redeemed      bool
	createdAt     time.Time
	updatedAt     time.Time
	version       int

	// recordedEvents buffers domain events until the application layer
	// drains them after persistence succeeds.
	recordedEvents []events.DomainEvent
}

// NewPendingPlatformSubscription creates an unredeemed platform subscription
// and records the coupon-generated event for asynchronous email delivery.
// The coupon code is generated once here and never changes.
func NewPendingPlatformSubscription(customerEmail string, subscription SubscriptionInfo) (*PendingPlatformSubscription, error) {
	if customerEmail == "" {
		return nil, fmt.Errorf("customer email is required")
	}
	if subscription.SubscriptionID == "" {
		return nil, fmt.Errorf("subscription ID is required")
	}
	if subscription.PlanID == "" {
		return nil, fmt.Errorf("plan ID is required")
	}

	couponCode, err := GenerateCouponCode()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	p := &PendingPlatformSubscription{
		sid:           id.MustGenerateWithPrefix(id.PrefixPlatformSub, id.DefaultLength),
		customerEmail: customerEmail,
		subscription:  subscription,
		couponCode:    couponCode,
		createdAt:     now,
		updatedAt:     now,
		version:       1,
	}
	p.recordEvent(newCouponGeneratedEvent(p.sid, customerEmail, couponCode, subscription.PlanID))

	return p, nil
}

// ReconstructPendingPlatformSubscription rebuilds the aggregate from
// persistence. No events are recorded on reconstruction.
func ReconstructPendingPlatformSubscription(
	dbID uint,
	sid, customerEmail string,
	subscription SubscriptionInfo,
	couponCode string,
	redeemed bool,
	createdAt, updatedAt time.Time,
	version int,
) (*PendingPlatformSubscription, error) {
	if dbID == 0 {
		return nil, fmt.Errorf("platform subscription ID cannot be zero")
	}
	if couponCode == "" {
		return nil, fmt.Errorf("coupon code is required")
	}

	return &PendingPlatformSubscription{
		dbID:          dbID,
		sid:           sid,
		customerEmail: customerEmail,
		subscription:  subscription,
		couponCode:    couponCode,
		redeemed:      redeemed,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
		version:       version,
	}, nil
}

func (p *PendingPlatformSubscription) ID() uint {
	return p.dbID
}

func (p *PendingPlatformSubscription) SID() string {
	return p.sid
}

func (p *PendingPlatformSubscription) CustomerEmail() string {
	return p.customerEmail
}

func (p *PendingPlatformSubscription) Subscription() SubscriptionInfo {
	return p.subscription
}

func (p *PendingPlatformSubscription) CouponCode() string {
	return p.couponCode
}

func (p *PendingPlatformSubscription) IsRedeemed() bool {
	return p.redeemed
}

func (p *PendingPlatformSubscription) CreatedAt() time.Time {
	return p.createdAt
}

func (p *PendingPlatformSubscription) UpdatedAt() time.Time {
	return p.updatedAt
}

func (p *PendingPlatformSubscription) Version() int {
	return p.version
}

// SetID sets the database ID (only for persistence layer use)
func (p *PendingPlatformSubscription) SetID(dbID uint) error {
	if p.dbID != 0 {
		return fmt.Errorf("platform subscription ID is already set")
	}
	if dbID == 0 {
		return fmt.Errorf("platform subscription ID cannot be zero")
	}
	p.dbID = dbID
	return nil
}

// MarkAsRedeemed flips the one-way redeemed flag. Callers must check
// IsRedeemed first and surface ErrAlreadyRedeemed; the aggregate itself does
// not guard the repeat call.
func (p *PendingPlatformSubscription) MarkAsRedeemed() {
	p.redeemed = true
	p.updatedAt = time.Now()
	p.version++
}

// DomainEvents returns the buffered events recorded since creation or the
// last ClearEvents call.
func (p *PendingPlatformSubscription) DomainEvents() []events.DomainEvent {
	out := make([]events.DomainEvent, len(p.recordedEvents))
	copy(out, p.recordedEvents)
	return out
}

// ClearEvents empties the event buffer. Call after the events were handed to
// the dispatcher.
func (p *PendingPlatformSubscription) ClearEvents() {
	p.recordedEvents = nil
}

func (p *PendingPlatformSubscription) recordEvent(e events.DomainEvent) {
	p.recordedEvents = append(p.recordedEvents, e)
}
