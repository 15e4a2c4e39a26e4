package linking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newToken(t *testing.T) *AccountLinkingToken {
	t.Helper()
	token, err := NewAccountLinkingToken("tnt_1", "sub_123", "customer@example.com", "price_a")
	require.NoError(t, err)
	require.NotNil(t, token)
	return token
}

// reconstructToken builds a token whose clock fields the test controls.
func reconstructToken(t *testing.T, createdAt time.Time, discordUserID *string, linkedAt *time.Time) *AccountLinkingToken {
	t.Helper()
	token, err := ReconstructAccountLinkingToken(
		1, "lt_test12345", "tnt_1", "sub_123", "customer@example.com", "price_a",
		"aabbccddeeff00112233445566778899aabbccddeeff00112233445566778899",
		createdAt.Add(TokenTTL), createdAt,
		discordUserID, linkedAt,
		1,
	)
	require.NoError(t, err)
	return token
}

func TestNewAccountLinkingToken_GeneratesToken(t *testing.T) {
	token := newToken(t)

	assert.Len(t, token.Token(), 64, "32 random bytes hex encoded")
	assert.NotEmpty(t, token.SID())
	assert.False(t, token.IsLinked())
	assert.False(t, token.IsExpired())
	assert.Equal(t, 1, token.Version())
	assert.WithinDuration(t, token.CreatedAt().Add(TokenTTL), token.ExpiresAt(), time.Second)
}

func TestNewAccountLinkingToken_TokensAreUnique(t *testing.T) {
	a := newToken(t)
	b := newToken(t)
	assert.NotEqual(t, a.Token(), b.Token())
}

func TestNewAccountLinkingToken_RequiredFields(t *testing.T) {
	tests := []struct {
		name                                string
		tenantID, subID, email, priceID     string
	}{
		{"missing tenant", "", "sub_1", "a@b.c", "price_a"},
		{"missing subscription", "tnt_1", "", "a@b.c", "price_a"},
		{"missing email", "tnt_1", "sub_1", "", "price_a"},
		{"missing price", "tnt_1", "sub_1", "a@b.c", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := NewAccountLinkingToken(tt.tenantID, tt.subID, tt.email, tt.priceID)
			assert.Error(t, err)
			assert.Nil(t, token)
		})
	}
}

func TestLinkToDiscordUser_Succeeds(t *testing.T) {
	token := newToken(t)

	linked, err := token.LinkToDiscordUser("discord_42")

	require.NoError(t, err)
	assert.True(t, linked.IsLinked())
	assert.Equal(t, "discord_42", *linked.DiscordUserID())
	assert.NotNil(t, linked.LinkedAt())
	assert.Equal(t, token.Version()+1, linked.Version())
}

func TestLinkToDiscordUser_DoesNotMutateReceiver(t *testing.T) {
	token := newToken(t)

	_, err := token.LinkToDiscordUser("discord_42")

	require.NoError(t, err)
	assert.False(t, token.IsLinked(), "original value must stay unlinked")
	assert.Nil(t, token.DiscordUserID())
	assert.Equal(t, 1, token.Version())
}

func TestLinkToDiscordUser_AlreadyLinked(t *testing.T) {
	token := newToken(t)

	linked, err := token.LinkToDiscordUser("discord_42")
	require.NoError(t, err)

	again, err := linked.LinkToDiscordUser("discord_43")
	assert.ErrorIs(t, err, ErrAlreadyLinked)
	assert.Nil(t, again)
}

func TestLinkToDiscordUser_ExpiryWindow(t *testing.T) {
	// Created 8 days ago: past the 7-day window.
	expired := reconstructToken(t, time.Now().Add(-8*24*time.Hour), nil, nil)
	assert.True(t, expired.IsExpired())

	linked, err := expired.LinkToDiscordUser("discord_42")
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.Nil(t, linked)

	// Created 6 days ago: still inside the window.
	fresh := reconstructToken(t, time.Now().Add(-6*24*time.Hour), nil, nil)
	assert.False(t, fresh.IsExpired())

	linked, err = fresh.LinkToDiscordUser("discord_42")
	require.NoError(t, err)
	assert.True(t, linked.IsLinked())
}

func TestLinkToDiscordUser_EmptyUserID(t *testing.T) {
	token := newToken(t)
	_, err := token.LinkToDiscordUser("")
	assert.Error(t, err)
}

func TestReconstructAccountLinkingToken_LinkStateConsistency(t *testing.T) {
	userID := "discord_42"
	now := time.Now()

	_, err := ReconstructAccountLinkingToken(
		1, "lt_x", "tnt_1", "sub_1", "a@b.c", "price_a", "deadbeef",
		now.Add(TokenTTL), now, &userID, nil, 1,
	)
	assert.Error(t, err, "discord user without linkedAt must be rejected")

	_, err = ReconstructAccountLinkingToken(
		1, "lt_x", "tnt_1", "sub_1", "a@b.c", "price_a", "deadbeef",
		now.Add(TokenTTL), now, nil, &now, 1,
	)
	assert.Error(t, err, "linkedAt without discord user must be rejected")
}

func TestIsLinkedInvariant(t *testing.T) {
	userID := "discord_42"
	now := time.Now()

	linked := reconstructToken(t, now, &userID, &now)
	assert.True(t, linked.IsLinked())

	pending := reconstructToken(t, now, nil, nil)
	assert.False(t, pending.IsLinked())
}
