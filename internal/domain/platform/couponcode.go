package platform

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"
)

// couponGroups and couponGroupBytes define the XXXX-XXXX-XXXX coupon format:
// three groups of two random bytes, hex encoded and upper-cased.
const (
	couponGroups     = 3
	couponGroupBytes = 2
)

var couponCodePattern = regexp.MustCompile(`^[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{4}$`)

// GenerateCouponCode returns a human-formatted random coupon code. The
// repository's unique index is the uniqueness boundary; the generator itself
// does not re-check for collisions.
func GenerateCouponCode() (string, error) {
	groups := make([]string, 0, couponGroups)
	for i := 0; i < couponGroups; i++ {
		raw := make([]byte, couponGroupBytes)
		if _, err := rand.Read(raw); err != nil {
			return "", fmt.Errorf("failed to generate coupon code: %w", err)
		}
		groups = append(groups, strings.ToUpper(fmt.Sprintf("%x", raw)))
	}
	return strings.Join(groups, "-"), nil
}

// IsValidCouponCode reports whether a string matches the coupon format.
func IsValidCouponCode(code string) bool {
	return couponCodePattern.MatchString(code)
}
