package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guildpass/internal/application/membership/testutil"
	"guildpass/internal/domain/mapping"
	"guildpass/internal/domain/member"
)

func futureExpiry() time.Time {
	return time.Now().Add(24 * time.Hour)
}

type syncFixture struct {
	memberRepo  *testutil.MockMemberRepository
	mappingRepo *testutil.MockMappingRepository
	payment     *testutil.MockPaymentLookup
	guilds      *testutil.MockGuildProvider
	uc          *SyncMemberSubscriptionsUseCase
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()
	f := &syncFixture{
		memberRepo:  testutil.NewMockMemberRepository(),
		mappingRepo: testutil.NewMockMappingRepository(),
		payment:     testutil.NewMockPaymentLookup(),
		guilds:      testutil.NewMockGuildProvider(),
	}
	f.uc = NewSyncMemberSubscriptionsUseCase(
		f.memberRepo, f.mappingRepo, f.payment, f.guilds,
		testutil.NewMockLogger(),
	)
	return f
}

func (f *syncFixture) seedLinkedMember(t *testing.T, subs []member.Subscription, guildMemberships map[string][]string) *member.Member {
	t.Helper()
	m, err := member.NewLinkedMember("tnt_1", "customer@example.com", "discord_42", subs, guildMemberships)
	require.NoError(t, err)
	f.memberRepo.AddMember(m)
	return m
}

func (f *syncFixture) seedMapping(t *testing.T, guildID string, roles map[string][]string) {
	t.Helper()
	row, err := mapping.NewTenantPriceToRoleMapping("tnt_1", guildID, roles)
	require.NoError(t, err)
	f.mappingRepo.AddMapping(row)
}

func TestSyncMemberSubscriptions_UnchangedSetIsNoOp(t *testing.T) {
	f := newSyncFixture(t)
	subs := []member.Subscription{
		{ID: "sub_1", PriceID: "price_a", Status: member.StatusActive},
	}
	m := f.seedLinkedMember(t, subs, map[string][]string{"guild_g": {"role_1"}})
	f.payment.SetSubscriptions("customer@example.com", subs)

	result, err := f.uc.Execute(context.Background(), m)

	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.Zero(t, f.guilds.TotalCalls())
	assert.Zero(t, f.memberRepo.UpdateCalls, "unchanged member is not persisted")
}

func TestSyncMemberSubscriptions_PartialCancellationRevokesOnlyLostRoles(t *testing.T) {
	f := newSyncFixture(t)
	m := f.seedLinkedMember(t,
		[]member.Subscription{
			{ID: "sub_1", PriceID: "price_a", Status: member.StatusActive},
			{ID: "sub_2", PriceID: "price_b", Status: member.StatusActive},
		},
		map[string][]string{"guild_g": {"role_1", "role_2"}},
	)
	f.seedMapping(t, "guild_g", map[string][]string{
		"price_a": {"role_1"},
		"price_b": {"role_2"},
	})
	// sub_1 was cancelled upstream.
	f.payment.SetSubscriptions("customer@example.com", []member.Subscription{
		{ID: "sub_2", PriceID: "price_b", Status: member.StatusActive},
	})

	result, err := f.uc.Execute(context.Background(), m)

	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, map[string][]string{"guild_g": {"role_1"}}, result.RemovedRolesByGuild)

	require.Len(t, f.guilds.RevokeCalls, 1)
	call := f.guilds.RevokeCalls[0]
	assert.Equal(t, "guild_g", call.GuildID)
	assert.Equal(t, "discord_42", call.UserID)
	assert.Equal(t, []string{"role_1"}, call.RoleIDs, "role_2 must survive the revocation")
	assert.Empty(t, f.guilds.GrantCalls)

	stored, err := f.memberRepo.GetByID(context.Background(), m.ID())
	require.NoError(t, err)
	assert.Equal(t, []string{"sub_2"}, stored.SubscriptionIDs())
	assert.Equal(t, []string{"role_2"}, stored.GuildMemberships()["guild_g"])
}

func TestSyncMemberSubscriptions_SecondRunIsIdempotent(t *testing.T) {
	f := newSyncFixture(t)
	m := f.seedLinkedMember(t,
		[]member.Subscription{{ID: "sub_1", PriceID: "price_a", Status: member.StatusActive}},
		map[string][]string{"guild_g": {"role_1"}},
	)
	f.seedMapping(t, "guild_g", map[string][]string{"price_a": {"role_1"}})
	f.payment.SetSubscriptions("customer@example.com", nil)

	first, err := f.uc.Execute(context.Background(), m)
	require.NoError(t, err)
	require.True(t, first.Changed)
	require.Len(t, f.guilds.RevokeCalls, 1)

	stored, err := f.memberRepo.GetByID(context.Background(), m.ID())
	require.NoError(t, err)

	second, err := f.uc.Execute(context.Background(), stored)
	require.NoError(t, err)
	assert.False(t, second.Changed)
	assert.Len(t, f.guilds.RevokeCalls, 1, "second pass makes no further Discord calls")
}

func TestSyncMemberSubscriptions_RevokeFailureDoesNotAbort(t *testing.T) {
	f := newSyncFixture(t)
	m := f.seedLinkedMember(t,
		[]member.Subscription{{ID: "sub_1", PriceID: "price_a", Status: member.StatusActive}},
		map[string][]string{
			"guild_bad": {"role_1"},
			"guild_ok":  {"role_2"},
		},
	)
	f.seedMapping(t, "guild_bad", map[string][]string{"price_a": {"role_1"}})
	f.seedMapping(t, "guild_ok", map[string][]string{"price_a": {"role_2"}})
	f.guilds.RevokeErrors["guild_bad"] = errors.New("missing permission")
	f.payment.SetSubscriptions("customer@example.com", nil)

	result, err := f.uc.Execute(context.Background(), m)

	require.NoError(t, err, "a single failing guild must not fail the sync")
	assert.True(t, result.Changed)
	assert.Len(t, f.guilds.RevokeCalls, 2)

	// The failed guild keeps its believed roles so the next pass retries it.
	stored, err := f.memberRepo.GetByID(context.Background(), m.ID())
	require.NoError(t, err)
	assert.Equal(t, []string{"role_1"}, stored.GuildMemberships()["guild_bad"])
	assert.NotContains(t, stored.GuildMemberships(), "guild_ok")
}

func TestSyncMemberSubscriptions_UnlinkedMemberRejected(t *testing.T) {
	f := newSyncFixture(t)
	pending, err := member.NewPendingMember("tnt_1", "customer@example.com",
		[]member.Subscription{{ID: "sub_1", PriceID: "price_a", Status: member.StatusActive}},
		"tok", futureExpiry())
	require.NoError(t, err)

	_, err = f.uc.Execute(context.Background(), pending)

	assert.Error(t, err)
	assert.Zero(t, f.payment.Calls)
}

func TestSyncMemberSubscriptions_PaymentFailurePropagates(t *testing.T) {
	f := newSyncFixture(t)
	m := f.seedLinkedMember(t,
		[]member.Subscription{{ID: "sub_1", PriceID: "price_a", Status: member.StatusActive}},
		nil,
	)
	f.payment.LookupError = errors.New("stripe unavailable")

	_, err := f.uc.Execute(context.Background(), m)

	assert.Error(t, err)
	assert.Zero(t, f.guilds.TotalCalls())
}
