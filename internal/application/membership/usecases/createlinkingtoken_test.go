package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guildpass/internal/application/membership/testutil"
)

func TestCreateLinkingToken_PersistsAndEmails(t *testing.T) {
	linkingRepo := testutil.NewMockLinkingTokenRepository()
	notifier := testutil.NewMockLinkingNotifier()
	uc := NewCreateLinkingTokenUseCase(linkingRepo, notifier, "https://link.example.com", testutil.NewMockLogger())

	token, err := uc.Execute(context.Background(), "tnt_1", "sub_1", "customer@example.com", "price_a")

	require.NoError(t, err)
	assert.NotEmpty(t, token.Token())
	assert.False(t, token.IsLinked())

	stored, err := linkingRepo.GetByToken(context.Background(), token.Token())
	require.NoError(t, err)
	assert.Equal(t, "customer@example.com", stored.CustomerEmail())
	assert.Equal(t, "price_a", stored.StripePriceID())

	require.Equal(t, []string{"customer@example.com"}, notifier.SentTo)
	require.Len(t, notifier.SentURLs, 1)
	assert.Equal(t, "https://link.example.com/link/"+token.Token(), notifier.SentURLs[0])
}

func TestCreateLinkingToken_EmailFailureIsNotFatal(t *testing.T) {
	linkingRepo := testutil.NewMockLinkingTokenRepository()
	notifier := testutil.NewMockLinkingNotifier()
	notifier.SendError = errors.New("smtp unreachable")
	uc := NewCreateLinkingTokenUseCase(linkingRepo, notifier, "https://link.example.com", testutil.NewMockLogger())

	token, err := uc.Execute(context.Background(), "tnt_1", "sub_1", "customer@example.com", "price_a")

	require.NoError(t, err, "email delivery is best-effort")
	_, err = linkingRepo.GetByToken(context.Background(), token.Token())
	assert.NoError(t, err, "token is persisted regardless of email outcome")
}

func TestCreateLinkingToken_RepositoryFailure(t *testing.T) {
	linkingRepo := testutil.NewMockLinkingTokenRepository()
	linkingRepo.CreateError = errors.New("db down")
	notifier := testutil.NewMockLinkingNotifier()
	uc := NewCreateLinkingTokenUseCase(linkingRepo, notifier, "https://link.example.com", testutil.NewMockLogger())

	_, err := uc.Execute(context.Background(), "tnt_1", "sub_1", "customer@example.com", "price_a")

	assert.Error(t, err)
	assert.Empty(t, notifier.SentTo, "no email when the token was not persisted")
}
