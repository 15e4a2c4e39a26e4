package platform

import "errors"

var (
	ErrCouponNotFound  = errors.New("coupon code not found")
	ErrAlreadyRedeemed = errors.New("coupon code already redeemed")
)
