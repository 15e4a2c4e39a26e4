package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guildpass/internal/application/membership/testutil"
	"guildpass/internal/domain/linking"
	"guildpass/internal/domain/mapping"
	"guildpass/internal/domain/member"
)

type linkFixture struct {
	linkingRepo *testutil.MockLinkingTokenRepository
	memberRepo  *testutil.MockMemberRepository
	mappingRepo *testutil.MockMappingRepository
	payment     *testutil.MockPaymentLookup
	guilds      *testutil.MockGuildProvider
	uc          *LinkSubscriptionUseCase
}

func newLinkFixture(t *testing.T) *linkFixture {
	t.Helper()
	f := &linkFixture{
		linkingRepo: testutil.NewMockLinkingTokenRepository(),
		memberRepo:  testutil.NewMockMemberRepository(),
		mappingRepo: testutil.NewMockMappingRepository(),
		payment:     testutil.NewMockPaymentLookup(),
		guilds:      testutil.NewMockGuildProvider(),
	}
	f.uc = NewLinkSubscriptionUseCase(
		f.linkingRepo, f.memberRepo, f.mappingRepo, f.payment, f.guilds,
		testutil.NewMockLogger(),
	)
	return f
}

func (f *linkFixture) seedToken(t *testing.T) *linking.AccountLinkingToken {
	t.Helper()
	token, err := linking.NewAccountLinkingToken("tnt_1", "sub_1", "customer@example.com", "price_a")
	require.NoError(t, err)
	require.NoError(t, f.linkingRepo.Create(context.Background(), token))
	return token
}

func (f *linkFixture) seedMapping(t *testing.T, guildID string, roles map[string][]string) {
	t.Helper()
	row, err := mapping.NewTenantPriceToRoleMapping("tnt_1", guildID, roles)
	require.NoError(t, err)
	f.mappingRepo.AddMapping(row)
}

func TestLinkSubscription_HappyPath(t *testing.T) {
	f := newLinkFixture(t)
	token := f.seedToken(t)
	f.seedMapping(t, "guild_g", map[string][]string{"price_a": {"role_1", "role_2"}})
	f.payment.SetSubscriptions("customer@example.com", []member.Subscription{
		{ID: "sub_1", PriceID: "price_a", Status: member.StatusActive},
	})

	result, err := f.uc.Execute(context.Background(), token.Token(), "discord_42", "oauth_tok")

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"role_1", "role_2"}, result.DesiredRolesByGuild["guild_g"])
	assert.Equal(t, []string{"guild_g"}, result.GuildsJoined)
	assert.Empty(t, result.FailedGuilds)

	require.Len(t, f.guilds.AddCalls, 1)
	require.Len(t, f.guilds.GrantCalls, 1)
	assert.Equal(t, "discord_42", f.guilds.GrantCalls[0].UserID)
	assert.ElementsMatch(t, []string{"role_1", "role_2"}, f.guilds.GrantCalls[0].RoleIDs)

	// Member was created already-linked with the desired belief.
	m, err := f.memberRepo.GetByTenantAndEmail(context.Background(), "tnt_1", "customer@example.com")
	require.NoError(t, err)
	assert.True(t, m.IsLinked())
	assert.Equal(t, []string{"sub_1"}, m.SubscriptionIDs())
	assert.ElementsMatch(t, []string{"role_1", "role_2"}, m.GuildMemberships()["guild_g"])

	// Token was persisted as linked.
	stored, err := f.linkingRepo.GetByToken(context.Background(), token.Token())
	require.NoError(t, err)
	assert.True(t, stored.IsLinked())
}

func TestLinkSubscription_SecondCallFailsAlreadyLinked(t *testing.T) {
	f := newLinkFixture(t)
	token := f.seedToken(t)
	f.payment.SetSubscriptions("customer@example.com", nil)

	_, err := f.uc.Execute(context.Background(), token.Token(), "discord_42", "oauth_tok")
	require.NoError(t, err)

	_, err = f.uc.Execute(context.Background(), token.Token(), "discord_42", "oauth_tok")
	assert.ErrorIs(t, err, linking.ErrAlreadyLinked)
}

func TestLinkSubscription_ExpiredToken(t *testing.T) {
	f := newLinkFixture(t)

	created := time.Now().Add(-8 * 24 * time.Hour)
	expired, err := linking.ReconstructAccountLinkingToken(
		1, "lt_exp", "tnt_1", "sub_1", "customer@example.com", "price_a",
		"ff00ff00ff00ff00", created.Add(linking.TokenTTL), created, nil, nil, 1,
	)
	require.NoError(t, err)
	require.NoError(t, f.linkingRepo.Create(context.Background(), expired))

	_, err = f.uc.Execute(context.Background(), expired.Token(), "discord_42", "oauth_tok")

	assert.ErrorIs(t, err, linking.ErrTokenExpired)
	assert.Zero(t, f.guilds.TotalCalls())
}

func TestLinkSubscription_UnknownToken(t *testing.T) {
	f := newLinkFixture(t)

	_, err := f.uc.Execute(context.Background(), "no-such-token", "discord_42", "oauth_tok")

	assert.ErrorIs(t, err, linking.ErrTokenNotFound)
}

func TestLinkSubscription_NoRolesMappedIsNoOp(t *testing.T) {
	f := newLinkFixture(t)
	token := f.seedToken(t)
	f.seedMapping(t, "guild_g", map[string][]string{"price_other": {"role_9"}})
	f.payment.SetSubscriptions("customer@example.com", []member.Subscription{
		{ID: "sub_1", PriceID: "price_a", Status: member.StatusActive},
	})

	result, err := f.uc.Execute(context.Background(), token.Token(), "discord_42", "oauth_tok")

	require.NoError(t, err)
	assert.Empty(t, result.DesiredRolesByGuild)
	assert.Zero(t, f.guilds.TotalCalls(), "no guild-membership-provider calls for unmapped prices")

	// Member and token state are persisted regardless.
	m, err := f.memberRepo.GetByTenantAndEmail(context.Background(), "tnt_1", "customer@example.com")
	require.NoError(t, err)
	assert.True(t, m.IsLinked())

	stored, err := f.linkingRepo.GetByToken(context.Background(), token.Token())
	require.NoError(t, err)
	assert.True(t, stored.IsLinked())
}

func TestLinkSubscription_PerGuildFailureIsolation(t *testing.T) {
	f := newLinkFixture(t)
	token := f.seedToken(t)
	f.seedMapping(t, "guild_ok", map[string][]string{"price_a": {"role_1"}})
	f.seedMapping(t, "guild_bad", map[string][]string{"price_a": {"role_2"}})
	f.guilds.AddErrors["guild_bad"] = errors.New("missing permission")
	f.payment.SetSubscriptions("customer@example.com", []member.Subscription{
		{ID: "sub_1", PriceID: "price_a", Status: member.StatusActive},
	})

	result, err := f.uc.Execute(context.Background(), token.Token(), "discord_42", "oauth_tok")

	require.NoError(t, err, "one failing guild must not fail the operation")
	assert.Equal(t, []string{"guild_bad"}, result.FailedGuilds)

	var grantedGuilds []string
	for _, call := range f.guilds.GrantCalls {
		grantedGuilds = append(grantedGuilds, call.GuildID)
	}
	assert.Equal(t, []string{"guild_ok"}, grantedGuilds, "failing guild is skipped, others proceed")

	// Belief is still overwritten with the full desired set.
	m, err := f.memberRepo.GetByTenantAndEmail(context.Background(), "tnt_1", "customer@example.com")
	require.NoError(t, err)
	assert.Contains(t, m.GuildMemberships(), "guild_bad")
}

func TestLinkSubscription_GrantFailureIsRecorded(t *testing.T) {
	f := newLinkFixture(t)
	token := f.seedToken(t)
	f.seedMapping(t, "guild_g", map[string][]string{"price_a": {"role_1"}})
	f.guilds.GrantErrors["guild_g"] = errors.New("unknown role")
	f.payment.SetSubscriptions("customer@example.com", []member.Subscription{
		{ID: "sub_1", PriceID: "price_a", Status: member.StatusActive},
	})

	result, err := f.uc.Execute(context.Background(), token.Token(), "discord_42", "oauth_tok")

	require.NoError(t, err)
	assert.Equal(t, []string{"guild_g"}, result.FailedGuilds)
}

func TestLinkSubscription_UpgradesPendingMember(t *testing.T) {
	f := newLinkFixture(t)
	token := f.seedToken(t)

	pending, err := member.NewPendingMember("tnt_1", "customer@example.com",
		[]member.Subscription{{ID: "sub_1", PriceID: "price_a", Status: member.StatusActive}},
		token.Token(), token.ExpiresAt())
	require.NoError(t, err)
	f.memberRepo.AddMember(pending)

	f.seedMapping(t, "guild_g", map[string][]string{"price_a": {"role_1"}})
	f.payment.SetSubscriptions("customer@example.com", []member.Subscription{
		{ID: "sub_1", PriceID: "price_a", Status: member.StatusActive},
	})

	result, err := f.uc.Execute(context.Background(), token.Token(), "discord_42", "oauth_tok")

	require.NoError(t, err)
	assert.Equal(t, pending.SID(), result.MemberSID, "existing member is upgraded, not replaced")

	m, err := f.memberRepo.GetByID(context.Background(), pending.ID())
	require.NoError(t, err)
	assert.True(t, m.IsLinked())
	assert.Nil(t, m.LinkingToken())
}

func TestLinkSubscription_PaymentProviderFailure(t *testing.T) {
	f := newLinkFixture(t)
	token := f.seedToken(t)
	f.payment.LookupError = errors.New("stripe unavailable")

	_, err := f.uc.Execute(context.Background(), token.Token(), "discord_42", "oauth_tok")

	assert.Error(t, err)
	assert.Zero(t, f.guilds.TotalCalls())

	// Token must stay unredeemed so the customer can retry.
	stored, err := f.linkingRepo.GetByToken(context.Background(), token.Token())
	require.NoError(t, err)
	assert.False(t, stored.IsLinked())
}
