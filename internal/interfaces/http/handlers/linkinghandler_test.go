package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	membershipTestutil "guildpass/internal/application/membership/testutil"
	membershipUsecases "guildpass/internal/application/membership/usecases"
	"guildpass/internal/domain/linking"
	"guildpass/internal/domain/mapping"
	"guildpass/internal/domain/member"
	"guildpass/internal/infrastructure/auth"
	"guildpass/internal/infrastructure/cache"
	"guildpass/internal/interfaces/http/handlers/testutil"
)

type mockOAuth struct {
	authURL     string
	verifier    string
	accessToken string
	userInfo    *auth.DiscordUserInfo

	exchangeErr error
}

func (m *mockOAuth) GetAuthURL(state string) (string, string, error) {
	return m.authURL + "?state=" + state, m.verifier, nil
}

func (m *mockOAuth) ExchangeCode(ctx context.Context, code, codeVerifier string) (string, error) {
	if m.exchangeErr != nil {
		return "", m.exchangeErr
	}
	return m.accessToken, nil
}

func (m *mockOAuth) GetUserInfo(ctx context.Context, accessToken string) (*auth.DiscordUserInfo, error) {
	return m.userInfo, nil
}

// mockStateStore is a one-time-use state map, like the Redis GETDEL store.
type mockStateStore struct {
	states map[string]*cache.LinkingStateInfo
}

func newMockStateStore() *mockStateStore {
	return &mockStateStore{states: make(map[string]*cache.LinkingStateInfo)}
}

func (m *mockStateStore) Set(ctx context.Context, state, linkingToken, codeVerifier string) error {
	m.states[state] = &cache.LinkingStateInfo{LinkingToken: linkingToken, CodeVerifier: codeVerifier}
	return nil
}

func (m *mockStateStore) VerifyAndGet(ctx context.Context, state string) (*cache.LinkingStateInfo, error) {
	info, ok := m.states[state]
	if !ok {
		return nil, errors.New("state not found or expired")
	}
	delete(m.states, state)
	return info, nil
}

type linkingHandlerFixture struct {
	oauth       *mockOAuth
	stateStore  *mockStateStore
	linkingRepo *membershipTestutil.MockLinkingTokenRepository
	payment     *membershipTestutil.MockPaymentLookup
	handler     *LinkingHandler
}

func newLinkingHandlerFixture(t *testing.T) *linkingHandlerFixture {
	t.Helper()

	f := &linkingHandlerFixture{
		oauth: &mockOAuth{
			authURL:     "https://discord.com/oauth2/authorize",
			verifier:    "verifier-1",
			accessToken: "access-token-1",
			userInfo:    &auth.DiscordUserInfo{ID: "discord_42", Username: "tester"},
		},
		stateStore:  newMockStateStore(),
		linkingRepo: membershipTestutil.NewMockLinkingTokenRepository(),
		payment:     membershipTestutil.NewMockPaymentLookup(),
	}

	mappingRepo := membershipTestutil.NewMockMappingRepository()
	row, err := mapping.NewTenantPriceToRoleMapping("tnt_1", "guild_1",
		map[string][]string{"price_gold": {"role_1"}})
	require.NoError(t, err)
	mappingRepo.AddMapping(row)

	log := testutil.NewMockLogger()
	linkUC := membershipUsecases.NewLinkSubscriptionUseCase(
		f.linkingRepo, membershipTestutil.NewMockMemberRepository(), mappingRepo,
		f.payment, membershipTestutil.NewMockGuildProvider(), log,
	)
	f.handler = NewLinkingHandler(f.oauth, f.stateStore, linkUC, log)
	return f
}

func (f *linkingHandlerFixture) seedToken(t *testing.T) *linking.AccountLinkingToken {
	t.Helper()
	token, err := linking.NewAccountLinkingToken("tnt_1", "sub_1", "customer@example.com", "price_gold")
	require.NoError(t, err)
	require.NoError(t, f.linkingRepo.Create(context.Background(), token))
	f.payment.SetSubscriptions("customer@example.com", []member.Subscription{
		{ID: "sub_1", PriceID: "price_gold", Status: member.StatusActive},
	})
	return token
}

func TestLinkingHandler_StartLink_RedirectsToDiscord(t *testing.T) {
	f := newLinkingHandlerFixture(t)
	token := f.seedToken(t)

	c, w := testutil.NewTestContext(http.MethodGet, "/link/"+token.Token(), nil)
	testutil.SetURLParam(c, "token", token.Token())

	f.handler.StartLink(c)

	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "https://discord.com/oauth2/authorize")

	require.Len(t, f.stateStore.states, 1)
	for _, info := range f.stateStore.states {
		assert.Equal(t, token.Token(), info.LinkingToken)
		assert.Equal(t, "verifier-1", info.CodeVerifier)
	}
}

func TestLinkingHandler_Callback_LinksAccount(t *testing.T) {
	f := newLinkingHandlerFixture(t)
	token := f.seedToken(t)
	require.NoError(t, f.stateStore.Set(context.Background(), "state-1", token.Token(), "verifier-1"))

	c, w := testutil.NewTestContext(http.MethodGet, "/link/callback", nil)
	testutil.SetQueryParams(c, map[string]string{"code": "code-1", "state": "state-1"})

	f.handler.Callback(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.True(t, resp.Success)

	var data LinkResultResponse
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, []string{"role_1"}, data.RolesByGuild["guild_1"])
	assert.Empty(t, data.FailedGuilds)

	assert.Empty(t, f.stateStore.states, "state is single use")
}

func TestLinkingHandler_Callback_UnknownState(t *testing.T) {
	f := newLinkingHandlerFixture(t)

	c, w := testutil.NewTestContext(http.MethodGet, "/link/callback", nil)
	testutil.SetQueryParams(c, map[string]string{"code": "code-1", "state": "state-unknown"})

	f.handler.Callback(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLinkingHandler_Callback_MissingParams(t *testing.T) {
	f := newLinkingHandlerFixture(t)

	c, w := testutil.NewTestContext(http.MethodGet, "/link/callback", nil)
	testutil.SetQueryParams(c, map[string]string{"code": "code-1"})

	f.handler.Callback(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLinkingHandler_Callback_TokenAlreadyUsed(t *testing.T) {
	f := newLinkingHandlerFixture(t)
	token := f.seedToken(t)

	require.NoError(t, f.stateStore.Set(context.Background(), "state-1", token.Token(), "verifier-1"))
	c, w := testutil.NewTestContext(http.MethodGet, "/link/callback", nil)
	testutil.SetQueryParams(c, map[string]string{"code": "code-1", "state": "state-1"})
	f.handler.Callback(c)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, f.stateStore.Set(context.Background(), "state-2", token.Token(), "verifier-1"))
	c, w = testutil.NewTestContext(http.MethodGet, "/link/callback", nil)
	testutil.SetQueryParams(c, map[string]string{"code": "code-2", "state": "state-2"})
	f.handler.Callback(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}
