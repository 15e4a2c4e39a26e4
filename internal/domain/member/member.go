package member

import (
	"fmt"
	"time"

	"guildpass/internal/shared/id"
)

// Member is the durable record of a tenant's customer. It starts pending
// (subscription known, Discord identity not) and transitions forward to
// linked; there is no unlink. guildMemberships is the system's belief of the
// roles it granted externally, used only to compute diffs. Discord is not
// queried for ground truth.
type Member struct {
	dbID                  uint
	sid                   string
	tenantID              string
	customerEmail         string
	subscriptions         []Subscription
	guildMemberships      map[string][]string
	discordUserID         *string
	linkingToken          *string
	linkingTokenExpiresAt *time.Time
	linkedAt              *time.Time
	createdAt             time.Time
	updatedAt             time.Time
	version               int
	loadedVersion         int
}

// NewPendingMember creates a member from the webhook path, before any Discord
// identity is known. The linking token context travels with the member until
// the link completes.
func NewPendingMember(tenantID, customerEmail string, subscriptions []Subscription, linkingToken string, linkingTokenExpiresAt time.Time) (*Member, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if customerEmail == "" {
		return nil, fmt.Errorf("customer email is required")
	}
	if linkingToken == "" {
		return nil, fmt.Errorf("linking token is required for a pending member")
	}

	now := time.Now()
	return &Member{
		sid:                   id.MustGenerateWithPrefix(id.PrefixMember, id.DefaultLength),
		tenantID:              tenantID,
		customerEmail:         customerEmail,
		subscriptions:         copySubscriptions(subscriptions),
		guildMemberships:      map[string][]string{},
		linkingToken:          &linkingToken,
		linkingTokenExpiresAt: &linkingTokenExpiresAt,
		createdAt:             now,
		updatedAt:             now,
		version:               1,
	}, nil
}

// NewLinkedMember creates a member from an interactive flow that already
// resolved the Discord identity.
func NewLinkedMember(tenantID, customerEmail, discordUserID string, subscriptions []Subscription, guildMemberships map[string][]string) (*Member, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if customerEmail == "" {
		return nil, fmt.Errorf("customer email is required")
	}
	if discordUserID == "" {
		return nil, fmt.Errorf("discord user ID is required")
	}

	now := time.Now()
	return &Member{
		sid:              id.MustGenerateWithPrefix(id.PrefixMember, id.DefaultLength),
		tenantID:         tenantID,
		customerEmail:    customerEmail,
		subscriptions:    copySubscriptions(subscriptions),
		guildMemberships: copyGuildMemberships(guildMemberships),
		discordUserID:    &discordUserID,
		linkedAt:         &now,
		createdAt:        now,
		updatedAt:        now,
		version:          1,
	}, nil
}

// MemberReconstructParams carries every persisted field of a member.
type MemberReconstructParams struct {
	ID                    uint
	SID                   string
	TenantID              string
	CustomerEmail         string
	Subscriptions         []Subscription
	GuildMemberships      map[string][]string
	DiscordUserID         *string
	LinkingToken          *string
	LinkingTokenExpiresAt *time.Time
	LinkedAt              *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
	Version               int
}

// ReconstructMember rebuilds a member from persistence.
func ReconstructMember(p MemberReconstructParams) (*Member, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("member ID cannot be zero")
	}
	if p.TenantID == "" {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if p.CustomerEmail == "" {
		return nil, fmt.Errorf("customer email is required")
	}
	if p.DiscordUserID != nil && p.LinkedAt == nil {
		return nil, fmt.Errorf("linked member must carry a linked at timestamp")
	}
	if p.DiscordUserID == nil && p.LinkingToken == nil {
		return nil, fmt.Errorf("pending member must carry a linking token")
	}

	return &Member{
		dbID:                  p.ID,
		sid:                   p.SID,
		tenantID:              p.TenantID,
		customerEmail:         p.CustomerEmail,
		subscriptions:         copySubscriptions(p.Subscriptions),
		guildMemberships:      copyGuildMemberships(p.GuildMemberships),
		discordUserID:         p.DiscordUserID,
		linkingToken:          p.LinkingToken,
		linkingTokenExpiresAt: p.LinkingTokenExpiresAt,
		linkedAt:              p.LinkedAt,
		createdAt:             p.CreatedAt,
		updatedAt:             p.UpdatedAt,
		version:               p.Version,
		loadedVersion:         p.Version,
	}, nil
}

func (m *Member) ID() uint {
	return m.dbID
}

func (m *Member) SID() string {
	return m.sid
}

func (m *Member) TenantID() string {
	return m.tenantID
}

func (m *Member) CustomerEmail() string {
	return m.customerEmail
}

// Subscriptions returns a copy of the stored subscription set.
func (m *Member) Subscriptions() []Subscription {
	return copySubscriptions(m.subscriptions)
}

// GuildMemberships returns a copy of the believed per-guild role grants.
func (m *Member) GuildMemberships() map[string][]string {
	return copyGuildMemberships(m.guildMemberships)
}

func (m *Member) DiscordUserID() *string {
	return m.discordUserID
}

func (m *Member) LinkingToken() *string {
	return m.linkingToken
}

func (m *Member) LinkingTokenExpiresAt() *time.Time {
	return m.linkingTokenExpiresAt
}

func (m *Member) LinkedAt() *time.Time {
	return m.linkedAt
}

func (m *Member) CreatedAt() time.Time {
	return m.createdAt
}

func (m *Member) UpdatedAt() time.Time {
	return m.updatedAt
}

// BaseVersion returns the version the aggregate was loaded with. A save
// compares it against the stored row so concurrent writers of the same
// member cannot clobber each other.
func (m *Member) BaseVersion() int {
	return m.loadedVersion
}

// Version returns the aggregate version for optimistic locking
func (m *Member) Version() int {
	return m.version
}

// SetID sets the member ID (only for persistence layer use)
func (m *Member) SetID(dbID uint) error {
	if m.dbID != 0 {
		return fmt.Errorf("member ID is already set")
	}
	if dbID == 0 {
		return fmt.Errorf("member ID cannot be zero")
	}
	m.dbID = dbID
	return nil
}

// IsPending reports whether the Discord identity is still unknown.
func (m *Member) IsPending() bool {
	return m.discordUserID == nil
}

// IsLinked reports whether the member completed Discord linking.
func (m *Member) IsLinked() bool {
	return m.discordUserID != nil && m.linkedAt != nil
}

// SubscriptionIDs returns the sorted IDs of the stored subscription set.
func (m *Member) SubscriptionIDs() []string {
	return SubscriptionIDs(m.subscriptions)
}

// LinkToDiscord transitions a pending member to linked. The linking token
// context is cleared on transition; a linked member never carries one. Expiry
// of the token is the caller's concern, since the token owns the clock.
func (m *Member) LinkToDiscord(discordUserID string) error {
	if discordUserID == "" {
		return fmt.Errorf("discord user ID is required")
	}
	if m.IsLinked() {
		return ErrAlreadyLinked
	}

	now := time.Now()
	m.discordUserID = &discordUserID
	m.linkedAt = &now
	m.linkingToken = nil
	m.linkingTokenExpiresAt = nil
	m.updatedAt = now
	m.version++
	return nil
}

// UpdateSubscriptions overwrites the stored subscription set.
func (m *Member) UpdateSubscriptions(subscriptions []Subscription) {
	m.subscriptions = copySubscriptions(subscriptions)
	m.updatedAt = time.Now()
	m.version++
}

// UpdateGuildMemberships overwrites the believed per-guild role grants.
func (m *Member) UpdateGuildMemberships(guildMemberships map[string][]string) {
	m.guildMemberships = copyGuildMemberships(guildMemberships)
	m.updatedAt = time.Now()
	m.version++
}

// RemoveGuildRoles drops roles from the belief for one guild, pruning the
// guild entry when nothing remains.
func (m *Member) RemoveGuildRoles(guildID string, roleIDs []string) {
	current, ok := m.guildMemberships[guildID]
	if !ok {
		return
	}

	remove := make(map[string]struct{}, len(roleIDs))
	for _, r := range roleIDs {
		remove[r] = struct{}{}
	}

	kept := make([]string, 0, len(current))
	for _, r := range current {
		if _, drop := remove[r]; !drop {
			kept = append(kept, r)
		}
	}

	if len(kept) == 0 {
		delete(m.guildMemberships, guildID)
	} else {
		m.guildMemberships[guildID] = kept
	}
	m.updatedAt = time.Now()
	m.version++
}

func copySubscriptions(subs []Subscription) []Subscription {
	out := make([]Subscription, len(subs))
	copy(out, subs)
	return out
}

func copyGuildMemberships(src map[string][]string) map[string][]string {
	dst := make(map[string][]string, len(src))
	for guild, roles := range src {
		cp := make([]string, len(roles))
		copy(cp, roles)
		dst[guild] = cp
	}
	return dst
}
