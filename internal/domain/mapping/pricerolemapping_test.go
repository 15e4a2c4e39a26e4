package mapping

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMapping(t *testing.T, roles map[string][]string) *TenantPriceToRoleMapping {
	t.Helper()
	m, err := NewTenantPriceToRoleMapping("tnt_1", "guild_1", roles)
	require.NoError(t, err)
	require.NotNil(t, m)
	return m
}

func TestNewTenantPriceToRoleMapping_ValidInput(t *testing.T) {
	m := newMapping(t, map[string][]string{
		"price_a": {"role_1", "role_2"},
	})

	assert.Equal(t, "tnt_1", m.TenantID())
	assert.Equal(t, "guild_1", m.GuildID())
	assert.Equal(t, []string{"role_1", "role_2"}, m.RolesForPrice("price_a"))
}

func TestNewTenantPriceToRoleMapping_MissingTenant(t *testing.T) {
	m, err := NewTenantPriceToRoleMapping("", "guild_1", nil)
	assert.Error(t, err)
	assert.Nil(t, m)
}

func TestNewTenantPriceToRoleMapping_MissingGuild(t *testing.T) {
	m, err := NewTenantPriceToRoleMapping("tnt_1", "", nil)
	assert.Error(t, err)
	assert.Nil(t, m)
}

func TestRolesForPrice_UnmappedPriceReturnsEmpty(t *testing.T) {
	m := newMapping(t, map[string][]string{"price_a": {"role_1"}})

	roles := m.RolesForPrice("price_unknown")

	assert.NotNil(t, roles)
	assert.Empty(t, roles)
}

func TestRolesForPrice_DeduplicatesRoles(t *testing.T) {
	m := newMapping(t, map[string][]string{
		"price_a": {"role_1", "role_2", "role_1", "role_2"},
	})

	assert.Equal(t, []string{"role_1", "role_2"}, m.RolesForPrice("price_a"))
}

func TestSetRolesForPrice_ReplacesList(t *testing.T) {
	m := newMapping(t, map[string][]string{"price_a": {"role_1"}})

	require.NoError(t, m.SetRolesForPrice("price_a", []string{"role_3"}))

	assert.Equal(t, []string{"role_3"}, m.RolesForPrice("price_a"))
}

func TestSetRolesForPrice_EmptyListRemovesPrice(t *testing.T) {
	m := newMapping(t, map[string][]string{"price_a": {"role_1"}})

	require.NoError(t, m.SetRolesForPrice("price_a", nil))

	assert.Empty(t, m.RolesForPrice("price_a"))
	assert.NotContains(t, m.RolesByPrice(), "price_a")
}

func TestSetRolesForPrice_EmptyPriceID(t *testing.T) {
	m := newMapping(t, nil)
	assert.Error(t, m.SetRolesForPrice("", []string{"role_1"}))
}

func TestRolesByPrice_ReturnsCopy(t *testing.T) {
	m := newMapping(t, map[string][]string{"price_a": {"role_1"}})

	table := m.RolesByPrice()
	table["price_a"] = []string{"tampered"}

	assert.Equal(t, []string{"role_1"}, m.RolesForPrice("price_a"))
}

func TestReconstructTenantPriceToRoleMapping(t *testing.T) {
	now := time.Now()

	m, err := ReconstructTenantPriceToRoleMapping(7, "tnt_1", "guild_1",
		map[string][]string{"price_a": {"role_1"}}, now, now)

	require.NoError(t, err)
	assert.Equal(t, uint(7), m.ID())
	assert.Equal(t, []string{"role_1"}, m.RolesForPrice("price_a"))
}

func TestReconstructTenantPriceToRoleMapping_ZeroID(t *testing.T) {
	_, err := ReconstructTenantPriceToRoleMapping(0, "tnt_1", "guild_1", nil, time.Now(), time.Now())
	assert.Error(t, err)
}
