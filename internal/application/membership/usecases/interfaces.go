package usecases

import (
	"context"

	"guildpass/internal/domain/member"
)

// PaymentSubscriptionsLookup answers which subscriptions currently grant
// access for a customer email. Implementations must return only
// active-equivalent subscriptions (active or trialing); everything else is
// treated as absent.
type PaymentSubscriptionsLookup interface {
	GetActiveSubscriptions(ctx context.Context, customerEmail string) ([]member.Subscription, error)
}

// GuildMembershipProvider is the narrow Discord surface the engine drives.
// Implementations raise distinguishable errors for unknown guild, unknown
// user, unknown role and missing permission.
type GuildMembershipProvider interface {
	// AddUserToGuild joins the user to the guild using the OAuth-granted
	// guilds.join permission. Returns false when the user was already a
	// member.
	AddUserToGuild(ctx context.Context, guildID, userID, userAccessToken string) (bool, error)
	GrantRoles(ctx context.Context, guildID, userID string, roleIDs []string) error
	RevokeRoles(ctx context.Context, guildID, userID string, roleIDs []string) error
}

// LinkingNotifier delivers the linking URL to the paying customer.
type LinkingNotifier interface {
	SendLinkingEmail(ctx context.Context, customerEmail, linkURL string) error
}
