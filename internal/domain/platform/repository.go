package platform

import "context"

type Repository interface {
	Create(ctx context.Context, p *PendingPlatformSubscription) error
	GetByCouponCode(ctx context.Context, couponCode string) (*PendingPlatformSubscription, error)
	GetByCustomerEmail(ctx context.Context, customerEmail string) ([]*PendingPlatformSubscription, error)
	Update(ctx context.Context, p *PendingPlatformSubscription) error
}
