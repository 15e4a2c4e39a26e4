package linking

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"guildpass/internal/shared/id"
)

// TokenTTL is how long a linking token stays redeemable after creation.
const TokenTTL = 7 * 24 * time.Hour

// tokenBytes is the entropy of the raw linking token before hex encoding.
const tokenBytes = 32

// AccountLinkingToken binds a paid subscription to a Discord identity that is
// not known yet. The type is immutable: every state transition returns a new
// instance, which lets the repository reject a concurrent double-link through
// a version check instead of silently overwriting.
type AccountLinkingToken struct {
	dbID                 uint
	sid                  string
	tenantID             string
	stripeSubscriptionID string
	customerEmail        string
	stripePriceID        string
	token                string
	expiresAt            time.Time
	createdAt            time.Time
	discordUserID        *string
	linkedAt             *time.Time
	version              int
}

// NewAccountLinkingToken creates a single-use token for a newly observed paid
// subscription. The token value is 32 bytes of crypto/rand, hex encoded.
func NewAccountLinkingToken(tenantID, stripeSubscriptionID, customerEmail, stripePriceID string) (*AccountLinkingToken, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if stripeSubscriptionID == "" {
		return nil, fmt.Errorf("stripe subscription ID is required")
	}
	if customerEmail == "" {
		return nil, fmt.Errorf("customer email is required")
	}
	if stripePriceID == "" {
		return nil, fmt.Errorf("stripe price ID is required")
	}

	raw := make([]byte, tokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("failed to generate linking token: %w", err)
	}

	now := time.Now()
	return &AccountLinkingToken{
		sid:                  id.MustGenerateWithPrefix(id.PrefixLinkingToken, id.DefaultLength),
		tenantID:             tenantID,
		stripeSubscriptionID: stripeSubscriptionID,
		customerEmail:        customerEmail,
		stripePriceID:        stripePriceID,
		token:                hex.EncodeToString(raw),
		expiresAt:            now.Add(TokenTTL),
		createdAt:            now,
		version:              1,
	}, nil
}

// ReconstructAccountLinkingToken rebuilds a token from persistence.
func ReconstructAccountLinkingToken(
	dbID uint,
	sid, tenantID, stripeSubscriptionID, customerEmail, stripePriceID, token string,
	expiresAt, createdAt time.Time,
	discordUserID *string,
	linkedAt *time.Time,
	version int,
) (*AccountLinkingToken, error) {
	if dbID == 0 {
		return nil, fmt.Errorf("linking token ID cannot be zero")
	}
	if token == "" {
		return nil, fmt.Errorf("linking token value is required")
	}
	if (discordUserID == nil) != (linkedAt == nil) {
		return nil, fmt.Errorf("discord user ID and linked at must be set together")
	}

	return &AccountLinkingToken{
		dbID:                 dbID,
		sid:                  sid,
		tenantID:             tenantID,
		stripeSubscriptionID: stripeSubscriptionID,
		customerEmail:        customerEmail,
		stripePriceID:        stripePriceID,
		token:                token,
		expiresAt:            expiresAt,
		createdAt:            createdAt,
		discordUserID:        discordUserID,
		linkedAt:             linkedAt,
		version:              version,
	}, nil
}

func (t *AccountLinkingToken) ID() uint {
	return t.dbID
}

func (t *AccountLinkingToken) SID() string {
	return t.sid
}

func (t *AccountLinkingToken) TenantID() string {
	return t.tenantID
}

func (t *AccountLinkingToken) StripeSubscriptionID() string {
	return t.stripeSubscriptionID
}

func (t *AccountLinkingToken) CustomerEmail() string {
	return t.customerEmail
}

func (t *AccountLinkingToken) StripePriceID() string {
	return t.stripePriceID
}

// Token returns the opaque single-use token value.
func (t *AccountLinkingToken) Token() string {
	return t.token
}

func (t *AccountLinkingToken) ExpiresAt() time.Time {
	return t.expiresAt
}

func (t *AccountLinkingToken) CreatedAt() time.Time {
	return t.createdAt
}

func (t *AccountLinkingToken) DiscordUserID() *string {
	return t.discordUserID
}

func (t *AccountLinkingToken) LinkedAt() *time.Time {
	return t.linkedAt
}

// Version returns the aggregate version for optimistic locking
func (t *AccountLinkingToken) Version() int {
	return t.version
}

// SetID sets the database ID (only for persistence layer use)
func (t *AccountLinkingToken) SetID(dbID uint) error {
	if t.dbID != 0 {
		return fmt.Errorf("linking token ID is already set")
	}
	if dbID == 0 {
		return fmt.Errorf("linking token ID cannot be zero")
	}
	t.dbID = dbID
	return nil
}

// IsLinked reports whether the token was already redeemed.
func (t *AccountLinkingToken) IsLinked() bool {
	return t.discordUserID != nil && t.linkedAt != nil
}

// IsExpired checks the lazy, time-based terminal state. Expired tokens are
// never deleted, only refused.
func (t *AccountLinkingToken) IsExpired() bool {
	return time.Now().After(t.expiresAt)
}

// LinkToDiscordUser redeems the token for a Discord identity. Returns a new
// instance; the receiver is never mutated.
func (t *AccountLinkingToken) LinkToDiscordUser(discordUserID string) (*AccountLinkingToken, error) {
	if discordUserID == "" {
		return nil, fmt.Errorf("discord user ID is required")
	}
	if t.IsExpired() {
		return nil, ErrTokenExpired
	}
	if t.IsLinked() {
		return nil, ErrAlreadyLinked
	}

	now := time.Now()
	linked := *t
	linked.discordUserID = &discordUserID
	linked.linkedAt = &now
	linked.version++
	return &linked, nil
}
