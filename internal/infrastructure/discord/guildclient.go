package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"guildpass/internal/shared/logger"
)

var (
	ErrGuildNotFound     = errors.New("guild not found")
	ErrMemberNotInGuild  = errors.New("member not in guild")
	ErrRoleNotFound      = errors.New("role not found")
	ErrMissingPermission = errors.New("bot is missing permission")
)

// GuildClient performs guild membership and role operations with the tenant
// bot token. Role changes require the bot's highest role to sit above every
// managed role in the guild's role hierarchy.
type GuildClient struct {
	session *discordgo.Session
	logger  logger.Interface
}

// NewGuildClient creates a GuildClient from a bot token. The session is used
// purely as a REST client; no gateway connection is opened.
func NewGuildClient(botToken string, logger logger.Interface) (*GuildClient, error) {
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	return &GuildClient{
		session: session,
		logger:  logger,
	}, nil
}

// AddUserToGuild joins the user to the guild using their OAuth access token
// carrying the guilds.join scope. Returns false when the user was already a
// member.
func (c *GuildClient) AddUserToGuild(ctx context.Context, guildID, userID, userAccessToken string) (bool, error) {
	_, err := c.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err == nil {
		return false, nil
	}
	if !isUnknownMember(err) {
		return false, translateError(err, guildID)
	}

	err = c.session.GuildMemberAdd(guildID, userID, &discordgo.GuildMemberAddParams{
		AccessToken: userAccessToken,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return false, translateError(err, guildID)
	}

	c.logger.Infow("user added to guild", "guild_id", guildID, "user_id", userID)
	return true, nil
}

// GrantRoles assigns each role to the user. Roles are applied one by one;
// the first failure aborts and is returned.
func (c *GuildClient) GrantRoles(ctx context.Context, guildID, userID string, roleIDs []string) error {
	for _, roleID := range roleIDs {
		if err := c.session.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx)); err != nil {
			return fmt.Errorf("failed to grant role %s: %w", roleID, translateError(err, guildID))
		}
	}

	c.logger.Infow("roles granted", "guild_id", guildID, "user_id", userID, "role_count", len(roleIDs))
	return nil
}

// RevokeRoles removes each role from the user. A role or member that is
// already gone counts as success so retries converge.
func (c *GuildClient) RevokeRoles(ctx context.Context, guildID, userID string, roleIDs []string) error {
	for _, roleID := range roleIDs {
		err := c.session.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx))
		if err == nil {
			continue
		}
		translated := translateError(err, guildID)
		if errors.Is(translated, ErrMemberNotInGuild) || errors.Is(translated, ErrRoleNotFound) {
			c.logger.Debugw("role already absent", "guild_id", guildID, "user_id", userID, "role_id", roleID)
			continue
		}
		return fmt.Errorf("failed to revoke role %s: %w", roleID, translated)
	}

	c.logger.Infow("roles revoked", "guild_id", guildID, "user_id", userID, "role_count", len(roleIDs))
	return nil
}

func isUnknownMember(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil {
		return restErr.Message.Code == discordgo.ErrCodeUnknownMember
	}
	return false
}

func translateError(err error, guildID string) error {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Message == nil {
		return err
	}

	switch restErr.Message.Code {
	case discordgo.ErrCodeUnknownGuild:
		return fmt.Errorf("guild %s: %w", guildID, ErrGuildNotFound)
	case discordgo.ErrCodeUnknownMember:
		return fmt.Errorf("guild %s: %w", guildID, ErrMemberNotInGuild)
	case discordgo.ErrCodeUnknownRole:
		return fmt.Errorf("guild %s: %w", guildID, ErrRoleNotFound)
	case discordgo.ErrCodeMissingPermissions, discordgo.ErrCodeMissingAccess:
		return fmt.Errorf("guild %s: %w", guildID, ErrMissingPermission)
	default:
		return err
	}
}
