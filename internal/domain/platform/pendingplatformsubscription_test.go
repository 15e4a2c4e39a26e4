package platform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPending(t *testing.T) *PendingPlatformSubscription {
	t.Helper()
	p, err := NewPendingPlatformSubscription("customer@example.com", SubscriptionInfo{
		SubscriptionID: "sub_1",
		PlanID:         "plan_pro",
		Status:         "active",
		ExpiresAt:      time.Now().AddDate(0, 1, 0),
	})
	require.NoError(t, err)
	return p
}

func TestNewPendingPlatformSubscription(t *testing.T) {
	p := newPending(t)

	assert.False(t, p.IsRedeemed())
	assert.True(t, IsValidCouponCode(p.CouponCode()))
	assert.NotEmpty(t, p.SID())
	assert.Equal(t, 1, p.Version())
}

func TestNewPendingPlatformSubscription_RecordsCouponEvent(t *testing.T) {
	p := newPending(t)

	recorded := p.DomainEvents()
	require.Len(t, recorded, 1)

	event, ok := recorded[0].(CouponGeneratedEvent)
	require.True(t, ok)
	assert.Equal(t, EventTypeCouponGenerated, event.EventType())
	assert.Equal(t, p.SID(), event.AggregateID())
	assert.Equal(t, p.CouponCode(), event.CouponCode)
	assert.Equal(t, "customer@example.com", event.CustomerEmail)
	assert.Equal(t, "plan_pro", event.PlanID)
}

func TestClearEvents(t *testing.T) {
	p := newPending(t)

	p.ClearEvents()

	assert.Empty(t, p.DomainEvents())
}

func TestMarkAsRedeemed(t *testing.T) {
	p := newPending(t)
	code := p.CouponCode()

	p.MarkAsRedeemed()

	assert.True(t, p.IsRedeemed())
	assert.Equal(t, code, p.CouponCode(), "coupon code never changes")
	assert.Equal(t, 2, p.Version())
}

func TestNewPendingPlatformSubscription_RequiredFields(t *testing.T) {
	_, err := NewPendingPlatformSubscription("", SubscriptionInfo{SubscriptionID: "sub_1", PlanID: "plan_pro"})
	assert.Error(t, err)

	_, err = NewPendingPlatformSubscription("a@b.c", SubscriptionInfo{PlanID: "plan_pro"})
	assert.Error(t, err)

	_, err = NewPendingPlatformSubscription("a@b.c", SubscriptionInfo{SubscriptionID: "sub_1"})
	assert.Error(t, err)
}

func TestReconstruct_DoesNotRecordEvents(t *testing.T) {
	now := time.Now()

	p, err := ReconstructPendingPlatformSubscription(1, "pps_x", "a@b.c",
		SubscriptionInfo{SubscriptionID: "sub_1", PlanID: "plan_pro", Status: "active", ExpiresAt: now},
		"AB12-CD34-EF56", true, now, now, 2)

	require.NoError(t, err)
	assert.True(t, p.IsRedeemed())
	assert.Empty(t, p.DomainEvents())
}

func TestGenerateCouponCode_Format(t *testing.T) {
	code, err := GenerateCouponCode()
	require.NoError(t, err)
	assert.True(t, IsValidCouponCode(code), "got %q", code)
}

func TestGenerateCouponCode_NoCollisionsInPractice(t *testing.T) {
	const n = 1000

	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		code, err := GenerateCouponCode()
		require.NoError(t, err)
		_, dup := seen[code]
		require.False(t, dup, "duplicate coupon code %q after %d generations", code, i)
		seen[code] = struct{}{}
	}
}
