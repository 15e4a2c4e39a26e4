package mapping

import (
	"fmt"
	"time"
)

// TenantPriceToRoleMapping is the per-tenant, per-guild table translating a
// billing price ID into the Discord role IDs it grants. A tenant owns at most
// one mapping row per guild; the same price may appear in mappings for
// several guilds.
type TenantPriceToRoleMapping struct {
	id           uint
	tenantID     string
	guildID      string
	rolesByPrice map[string][]string
	createdAt    time.Time
	updatedAt    time.Time
}

// NewTenantPriceToRoleMapping creates a mapping row for a (tenant, guild) pair.
func NewTenantPriceToRoleMapping(tenantID, guildID string, rolesByPrice map[string][]string) (*TenantPriceToRoleMapping, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if guildID == "" {
		return nil, fmt.Errorf("guild ID is required")
	}

	now := time.Now()
	m := &TenantPriceToRoleMapping{
		tenantID:     tenantID,
		guildID:      guildID,
		rolesByPrice: copyRoles(rolesByPrice),
		createdAt:    now,
		updatedAt:    now,
	}
	return m, nil
}

// ReconstructTenantPriceToRoleMapping rebuilds a mapping from persistence.
func ReconstructTenantPriceToRoleMapping(
	id uint,
	tenantID, guildID string,
	rolesByPrice map[string][]string,
	createdAt, updatedAt time.Time,
) (*TenantPriceToRoleMapping, error) {
	if id == 0 {
		return nil, fmt.Errorf("mapping ID cannot be zero")
	}
	if tenantID == "" {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if guildID == "" {
		return nil, fmt.Errorf("guild ID is required")
	}

	return &TenantPriceToRoleMapping{
		id:           id,
		tenantID:     tenantID,
		guildID:      guildID,
		rolesByPrice: copyRoles(rolesByPrice),
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}, nil
}

func (m *TenantPriceToRoleMapping) ID() uint {
	return m.id
}

func (m *TenantPriceToRoleMapping) TenantID() string {
	return m.tenantID
}

func (m *TenantPriceToRoleMapping) GuildID() string {
	return m.guildID
}

// RolesByPrice returns a copy of the full price to role table.
func (m *TenantPriceToRoleMapping) RolesByPrice() map[string][]string {
	return copyRoles(m.rolesByPrice)
}

func (m *TenantPriceToRoleMapping) CreatedAt() time.Time {
	return m.createdAt
}

func (m *TenantPriceToRoleMapping) UpdatedAt() time.Time {
	return m.updatedAt
}

// SetID sets the mapping ID (only for persistence layer use)
func (m *TenantPriceToRoleMapping) SetID(id uint) error {
	if m.id != 0 {
		return fmt.Errorf("mapping ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("mapping ID cannot be zero")
	}
	m.id = id
	return nil
}

// RolesForPrice returns the deduplicated role IDs granted by a price in this
// guild. An unmapped price yields an empty slice, not an error.
func (m *TenantPriceToRoleMapping) RolesForPrice(priceID string) []string {
	roles, ok := m.rolesByPrice[priceID]
	if !ok {
		return []string{}
	}
	return dedupRoles(roles)
}

// SetRolesForPrice replaces the role list for a price. An empty role list
// removes the price from the table.
func (m *TenantPriceToRoleMapping) SetRolesForPrice(priceID string, roleIDs []string) error {
	if priceID == "" {
		return fmt.Errorf("price ID is required")
	}

	if len(roleIDs) == 0 {
		delete(m.rolesByPrice, priceID)
	} else {
		m.rolesByPrice[priceID] = dedupRoles(roleIDs)
	}
	m.updatedAt = time.Now()
	return nil
}

func copyRoles(src map[string][]string) map[string][]string {
	dst := make(map[string][]string, len(src))
	for price, roles := range src {
		dst[price] = dedupRoles(roles)
	}
	return dst
}

// dedupRoles removes duplicate role IDs, preserving first-seen order so
// Discord calls never repeat a role.
func dedupRoles(roles []string) []string {
	seen := make(map[string]struct{}, len(roles))
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
