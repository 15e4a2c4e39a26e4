package member

import (
	"guildpass/internal/domain/mapping"
)

// DesiredRolesByGuild computes the roles a customer should hold: the union,
// over every mapping row and every active subscription whose price appears in
// that row, of the roles the price grants. Guilds that end up with no roles
// are omitted. Role sets are deduplicated; order is not significant.
func DesiredRolesByGuild(subscriptions []Subscription, mappings []*mapping.TenantPriceToRoleMapping) map[string][]string {
	return rolesByGuild(subscriptions, mappings, true)
}

// RolesToRemoveByGuild accumulates, per guild, the roles mapped from the
// prices of cancelled subscriptions. Used by the removal-only sync pass;
// status is ignored because a cancelled subscription no longer reports one
// worth trusting.
func RolesToRemoveByGuild(cancelled []Subscription, mappings []*mapping.TenantPriceToRoleMapping) map[string][]string {
	return rolesByGuild(cancelled, mappings, false)
}

func rolesByGuild(subscriptions []Subscription, mappings []*mapping.TenantPriceToRoleMapping, activeOnly bool) map[string][]string {
	result := make(map[string][]string)

	for _, m := range mappings {
		seen := make(map[string]struct{})
		var roles []string
		for _, sub := range subscriptions {
			if activeOnly && !sub.IsActive() {
				continue
			}
			for _, role := range m.RolesForPrice(sub.PriceID) {
				if _, ok := seen[role]; ok {
					continue
				}
				seen[role] = struct{}{}
				roles = append(roles, role)
			}
		}
		if len(roles) > 0 {
			result[m.GuildID()] = roles
		}
	}

	return result
}
