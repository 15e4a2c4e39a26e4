package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
)

// discordEndpoint is Discord's OAuth2 endpoint. golang.org/x/oauth2 ships no
// preset for Discord.
var discordEndpoint = oauth2.Endpoint{
	AuthURL:  "https://discord.com/oauth2/authorize",
	TokenURL: "https://discord.com/api/oauth2/token",
}

type DiscordOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// DiscordUserInfo is the subset of the Discord identity the linking flow
// needs.
type DiscordUserInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// DiscordOAuthClient drives the authorization-code flow that resolves a
// customer's Discord identity. The guilds.join scope lets the bot add the
// user to guilds with the returned access token.
type DiscordOAuthClient struct {
	config *oauth2.Config
}

func NewDiscordOAuthClient(cfg DiscordOAuthConfig) *DiscordOAuthClient {
	return &DiscordOAuthClient{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"identify", "guilds.join"},
			Endpoint:     discordEndpoint,
		},
	}
}

func (c *DiscordOAuthClient) GetAuthURL(state string) (string, string, error) {
	codeVerifier, codeChallenge, err := generatePKCEParams()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate PKCE parameters: %w", err)
	}

	authURL := c.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)

	return authURL, codeVerifier, nil
}

func (c *DiscordOAuthClient) ExchangeCode(ctx context.Context, code string, codeVerifier string) (string, error) {
	token, err := c.config.Exchange(ctx, code, oauth2.SetAuthURLParam("code_verifier", codeVerifier))
	if err != nil {
		return "", fmt.Errorf("failed to exchange code: %w", err)
	}
	return token.AccessToken, nil
}

func (c *DiscordOAuthClient) GetUserInfo(ctx context.Context, accessToken string) (*DiscordUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", "https://discord.com/api/users/@me", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to get user info: status %d, body: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var userInfo DiscordUserInfo
	if err := json.Unmarshal(body, &userInfo); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user info: %w", err)
	}
	if userInfo.ID == "" {
		return nil, fmt.Errorf("discord user info missing id")
	}

	return &userInfo, nil
}
