package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guildpass/internal/application/platform/testutil"
	"guildpass/internal/domain/platform"
	"guildpass/internal/shared/logger"
)

type nopLogger struct{}

func newNopLogger() logger.Interface { return nopLogger{} }

func (nopLogger) Debugw(msg string, keysAndValues ...any) {}
func (nopLogger) Infow(msg string, keysAndValues ...any)  {}
func (nopLogger) Warnw(msg string, keysAndValues ...any)  {}
func (nopLogger) Errorw(msg string, keysAndValues ...any) {}
func (nopLogger) Fatalw(msg string, keysAndValues ...any) {}
func (l nopLogger) With(args ...any) logger.Interface     { return l }
func (l nopLogger) Named(name string) logger.Interface    { return l }

func testSubscriptionInfo() platform.SubscriptionInfo {
	return platform.SubscriptionInfo{
		SubscriptionID: "sub_p1",
		PlanID:         "plan_pro",
		Status:         "active",
		ExpiresAt:      time.Now().Add(30 * 24 * time.Hour),
	}
}

func TestCreatePlatformSubscription_PersistsAndPublishes(t *testing.T) {
	repo := testutil.NewMockPlatformRepository()
	publisher := testutil.NewMockEventPublisher()
	uc := NewCreatePlatformSubscriptionUseCase(repo, publisher, newNopLogger())

	pending, err := uc.Execute(context.Background(), "customer@example.com", testSubscriptionInfo())

	require.NoError(t, err)
	assert.True(t, platform.IsValidCouponCode(pending.CouponCode()))
	assert.False(t, pending.IsRedeemed())
	assert.Empty(t, pending.DomainEvents(), "events are drained after publishing")

	require.Len(t, publisher.Published, 1)
	event, ok := publisher.Published[0].(platform.CouponGeneratedEvent)
	require.True(t, ok)
	assert.Equal(t, platform.EventTypeCouponGenerated, event.EventType())
	assert.Equal(t, "customer@example.com", event.CustomerEmail)
	assert.Equal(t, pending.CouponCode(), event.CouponCode)
	assert.Equal(t, "plan_pro", event.PlanID)

	stored, err := repo.GetByCouponCode(context.Background(), pending.CouponCode())
	require.NoError(t, err)
	assert.Equal(t, pending.SID(), stored.SID())
}

func TestCreatePlatformSubscription_NoEventOnFailedInsert(t *testing.T) {
	repo := testutil.NewMockPlatformRepository()
	repo.CreateError = errors.New("db down")
	publisher := testutil.NewMockEventPublisher()
	uc := NewCreatePlatformSubscriptionUseCase(repo, publisher, newNopLogger())

	_, err := uc.Execute(context.Background(), "customer@example.com", testSubscriptionInfo())

	assert.Error(t, err)
	assert.Empty(t, publisher.Published, "no coupon email for an unsaved subscription")
}

func TestCreatePlatformSubscription_PublishFailureIsNotFatal(t *testing.T) {
	repo := testutil.NewMockPlatformRepository()
	publisher := testutil.NewMockEventPublisher()
	publisher.PublishError = errors.New("redis unreachable")
	uc := NewCreatePlatformSubscriptionUseCase(repo, publisher, newNopLogger())

	pending, err := uc.Execute(context.Background(), "customer@example.com", testSubscriptionInfo())

	require.NoError(t, err, "the subscription is saved even when the event bus is down")
	_, err = repo.GetByCouponCode(context.Background(), pending.CouponCode())
	assert.NoError(t, err)
}
