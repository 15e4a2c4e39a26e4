package usecases

import (
	"context"
	"errors"
	"fmt"

	"guildpass/internal/domain/linking"
	"guildpass/internal/domain/mapping"
	"guildpass/internal/domain/member"
	"guildpass/internal/shared/logger"
)

// LinkSubscriptionResult reports what the linking pass did.
type LinkSubscriptionResult struct {
	MemberSID           string
	DesiredRolesByGuild map[string][]string
	GuildsJoined        []string
	FailedGuilds        []string
}

// LinkSubscriptionUseCase completes a linking token against a Discord
// identity: it computes the desired role set from the customer's active
// subscriptions, applies it guild by guild, and persists the member and the
// redeemed token. Role application is best-effort per guild; a failure in one
// guild never rolls back the others or the persistence step.
type LinkSubscriptionUseCase struct {
	linkingRepo linking.Repository
	memberRepo  member.Repository
	mappingRepo mapping.Repository
	payment     PaymentSubscriptionsLookup
	guilds      GuildMembershipProvider
	logger      logger.Interface
}

// NewLinkSubscriptionUseCase creates a new LinkSubscriptionUseCase.
func NewLinkSubscriptionUseCase(
	linkingRepo linking.Repository,
	memberRepo member.Repository,
	mappingRepo mapping.Repository,
	payment PaymentSubscriptionsLookup,
	guilds GuildMembershipProvider,
	logger logger.Interface,
) *LinkSubscriptionUseCase {
	return &LinkSubscriptionUseCase{
		linkingRepo: linkingRepo,
		memberRepo:  memberRepo,
		mappingRepo: mappingRepo,
		payment:     payment,
		guilds:      guilds,
		logger:      logger,
	}
}

// Execute redeems the token for discordUserID. discordAccessToken is the
// customer's OAuth token carrying the guilds.join scope.
func (uc *LinkSubscriptionUseCase) Execute(ctx context.Context, token, discordUserID, discordAccessToken string) (*LinkSubscriptionResult, error) {
	rec, err := uc.linkingRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	// Domain guards: fails with ErrTokenExpired / ErrAlreadyLinked.
	linked, err := rec.LinkToDiscordUser(discordUserID)
	if err != nil {
		return nil, err
	}

	subs, err := uc.payment.GetActiveSubscriptions(ctx, rec.CustomerEmail())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active subscriptions: %w", err)
	}
	if len(subs) == 0 {
		uc.logger.Infow("no active subscriptions at link time",
			"tenant_id", rec.TenantID(),
			"token_sid", rec.SID(),
		)
	}

	mappings, err := uc.mappingRepo.ListByTenant(ctx, rec.TenantID())
	if err != nil {
		return nil, fmt.Errorf("failed to load price mappings: %w", err)
	}

	desired := member.DesiredRolesByGuild(subs, mappings)
	if len(desired) == 0 {
		uc.logger.Infow("no roles to assign",
			"tenant_id", rec.TenantID(),
			"token_sid", rec.SID(),
			"subscription_count", len(subs),
		)
	}

	result := &LinkSubscriptionResult{
		DesiredRolesByGuild: desired,
	}

	for guildID, roleIDs := range desired {
		wasAdded, err := uc.guilds.AddUserToGuild(ctx, guildID, discordUserID, discordAccessToken)
		if err != nil {
			uc.logger.Errorw("failed to add user to guild",
				"error", err,
				"guild_id", guildID,
				"discord_user_id", discordUserID,
			)
			result.FailedGuilds = append(result.FailedGuilds, guildID)
			continue
		}
		if wasAdded {
			result.GuildsJoined = append(result.GuildsJoined, guildID)
		}

		if err := uc.guilds.GrantRoles(ctx, guildID, discordUserID, roleIDs); err != nil {
			uc.logger.Errorw("failed to grant roles",
				"error", err,
				"guild_id", guildID,
				"discord_user_id", discordUserID,
				"role_ids", roleIDs,
			)
			result.FailedGuilds = append(result.FailedGuilds, guildID)
		}
	}

	m, err := uc.upsertMember(ctx, rec, discordUserID, subs, desired)
	if err != nil {
		return nil, err
	}
	result.MemberSID = m.SID()

	if err := uc.linkingRepo.Update(ctx, linked); err != nil {
		// A concurrent redeem of the same token surfaces here through the
		// repository's version check.
		if errors.Is(err, linking.ErrConcurrentModification) {
			return nil, linking.ErrAlreadyLinked
		}
		return nil, fmt.Errorf("failed to persist linked token: %w", err)
	}

	uc.logger.Infow("subscription linked to discord user",
		"tenant_id", rec.TenantID(),
		"member_sid", m.SID(),
		"discord_user_id", discordUserID,
		"guild_count", len(desired),
		"failed_guilds", len(result.FailedGuilds),
	)

	return result, nil
}

// upsertMember creates or updates the member record and overwrites its
// guild-membership belief with the desired set.
func (uc *LinkSubscriptionUseCase) upsertMember(
	ctx context.Context,
	rec *linking.AccountLinkingToken,
	discordUserID string,
	subs []member.Subscription,
	desired map[string][]string,
) (*member.Member, error) {
	m, err := uc.memberRepo.GetByTenantAndEmail(ctx, rec.TenantID(), rec.CustomerEmail())
	if err != nil {
		if !errors.Is(err, member.ErrMemberNotFound) {
			return nil, fmt.Errorf("failed to load member: %w", err)
		}

		m, err = member.NewLinkedMember(rec.TenantID(), rec.CustomerEmail(), discordUserID, subs, desired)
		if err != nil {
			return nil, fmt.Errorf("failed to create member: %w", err)
		}
		if err := uc.memberRepo.Create(ctx, m); err != nil {
			return nil, fmt.Errorf("failed to persist member: %w", err)
		}
		return m, nil
	}

	if m.IsPending() {
		if err := m.LinkToDiscord(discordUserID); err != nil {
			return nil, err
		}
	}
	m.UpdateSubscriptions(subs)
	m.UpdateGuildMemberships(desired)

	if err := uc.memberRepo.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}
	return m, nil
}
