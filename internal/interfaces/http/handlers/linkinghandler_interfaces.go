package handlers

import (
	"context"

	"guildpass/internal/infrastructure/auth"
	"guildpass/internal/infrastructure/cache"
)

// DiscordOAuthService drives the authorization-code flow.
type DiscordOAuthService interface {
	GetAuthURL(state string) (authURL, codeVerifier string, err error)
	ExchangeCode(ctx context.Context, code, codeVerifier string) (accessToken string, err error)
	GetUserInfo(ctx context.Context, accessToken string) (*auth.DiscordUserInfo, error)
}

// LinkingStateStore persists OAuth flow context between redirect and
// callback.
type LinkingStateStore interface {
	Set(ctx context.Context, state, linkingToken, codeVerifier string) error
	VerifyAndGet(ctx context.Context, state string) (*cache.LinkingStateInfo, error)
}
