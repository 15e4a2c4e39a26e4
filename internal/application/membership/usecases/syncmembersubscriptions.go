package usecases

import (
	"context"
	"fmt"

	"guildpass/internal/domain/mapping"
	"guildpass/internal/domain/member"
	"guildpass/internal/shared/logger"
)

// SyncResult reports what one member's reconciliation did.
type SyncResult struct {
	Changed             bool
	RemovedRolesByGuild map[string][]string
}

// SyncMemberSubscriptionsUseCase reconciles one linked member against the
// payment provider. The pass is removal-only: roles mapped from cancelled
// subscriptions are revoked, roles for surviving subscriptions are never
// recomputed or re-granted. Net-new roles only arrive through the linking
// path. A price mapped after linking therefore does not grant retroactively;
// that matches the product behavior and is documented as a known limitation.
type SyncMemberSubscriptionsUseCase struct {
	memberRepo  member.Repository
	mappingRepo mapping.Repository
	payment     PaymentSubscriptionsLookup
	guilds      GuildMembershipProvider
	logger      logger.Interface
}

// NewSyncMemberSubscriptionsUseCase creates a new SyncMemberSubscriptionsUseCase.
func NewSyncMemberSubscriptionsUseCase(
	memberRepo member.Repository,
	mappingRepo mapping.Repository,
	payment PaymentSubscriptionsLookup,
	guilds GuildMembershipProvider,
	logger logger.Interface,
) *SyncMemberSubscriptionsUseCase {
	return &SyncMemberSubscriptionsUseCase{
		memberRepo:  memberRepo,
		mappingRepo: mappingRepo,
		payment:     payment,
		guilds:      guilds,
		logger:      logger,
	}
}

// Execute reconciles a single linked member. Safe to run repeatedly: when the
// subscription id set is unchanged it returns without touching Discord.
func (uc *SyncMemberSubscriptionsUseCase) Execute(ctx context.Context, m *member.Member) (*SyncResult, error) {
	if !m.IsLinked() {
		return nil, fmt.Errorf("member %s is not linked", m.SID())
	}

	current, err := uc.payment.GetActiveSubscriptions(ctx, m.CustomerEmail())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active subscriptions: %w", err)
	}

	stored := m.Subscriptions()

	// The cheap sorted-id comparison is what makes the job safe to run
	// frequently; a full role re-diff is never needed here.
	if member.SameSubscriptionIDs(stored, current) {
		return &SyncResult{Changed: false}, nil
	}

	cancelled := member.CancelledSubscriptions(stored, current)

	mappings, err := uc.mappingRepo.ListByTenant(ctx, m.TenantID())
	if err != nil {
		return nil, fmt.Errorf("failed to load price mappings: %w", err)
	}

	toRemove := member.RolesToRemoveByGuild(cancelled, mappings)
	removed := make(map[string][]string, len(toRemove))

	discordUserID := *m.DiscordUserID()
	for guildID, roleIDs := range toRemove {
		if err := uc.guilds.RevokeRoles(ctx, guildID, discordUserID, roleIDs); err != nil {
			uc.logger.Errorw("failed to revoke roles",
				"error", err,
				"member_sid", m.SID(),
				"guild_id", guildID,
				"role_ids", roleIDs,
			)
			continue
		}
		m.RemoveGuildRoles(guildID, roleIDs)
		removed[guildID] = roleIDs
	}

	m.UpdateSubscriptions(current)
	if err := uc.memberRepo.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	uc.logger.Infow("member subscriptions synced",
		"member_sid", m.SID(),
		"cancelled_count", len(cancelled),
		"guilds_touched", len(removed),
	)

	return &SyncResult{Changed: true, RemovedRolesByGuild: removed}, nil
}
