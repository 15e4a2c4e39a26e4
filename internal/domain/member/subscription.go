package member

import "sort"

// Subscription statuses the engine treats as granting access. Everything else
// coming back from the payment provider is treated as absent.
const (
	StatusActive   = "active"
	StatusTrialing = "trialing"
)

// Subscription is the member's view of one payment-provider subscription.
type Subscription struct {
	ID      string
	PriceID string
	Status  string
}

// IsActive reports whether the subscription grants access.
func (s Subscription) IsActive() bool {
	return s.Status == StatusActive || s.Status == StatusTrialing
}

// SubscriptionIDs returns the sorted subscription IDs of a set. Sorting makes
// the set comparison in reconciliation independent of provider ordering.
func SubscriptionIDs(subs []Subscription) []string {
	ids := make([]string, 0, len(subs))
	for _, s := range subs {
		ids = append(ids, s.ID)
	}
	sort.Strings(ids)
	return ids
}

// SameSubscriptionIDs compares two subscription sets by ID only.
func SameSubscriptionIDs(a, b []Subscription) bool {
	aIDs := SubscriptionIDs(a)
	bIDs := SubscriptionIDs(b)
	if len(aIDs) != len(bIDs) {
		return false
	}
	for i := range aIDs {
		if aIDs[i] != bIDs[i] {
			return false
		}
	}
	return true
}

// CancelledSubscriptions returns the members of stored whose IDs are absent
// from current.
func CancelledSubscriptions(stored, current []Subscription) []Subscription {
	currentIDs := make(map[string]struct{}, len(current))
	for _, s := range current {
		currentIDs[s.ID] = struct{}{}
	}

	var cancelled []Subscription
	for _, s := range stored {
		if _, ok := currentIDs[s.ID]; !ok {
			cancelled = append(cancelled, s)
		}
	}
	return cancelled
}
