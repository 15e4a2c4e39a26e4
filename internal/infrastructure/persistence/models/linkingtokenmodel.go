package models

import (
	"time"

	"gorm.io/gorm"

	"guildpass/internal/shared/constants"
)

// LinkingTokenModel represents the database persistence model for account
// linking tokens. This is the anti-corruption layer between domain and
// database.
type LinkingTokenModel struct {
	ID                   uint   `gorm:"primarykey"`
	SID                  string `gorm:"uniqueIndex;not null;size:50;comment:Stripe-style ID: lt_xxx"`
	TenantID             string `gorm:"not null;size:50;index:idx_tenant_token"`
	StripeSubscriptionID string `gorm:"not null;size:100"`
	CustomerEmail        string `gorm:"not null;size:255;index:idx_token_email"`
	StripePriceID        string `gorm:"not null;size:100"`
	Token                string `gorm:"uniqueIndex;not null;size:64"`
	ExpiresAt            time.Time
	DiscordUserID        *string `gorm:"size:32"`
	LinkedAt             *time.Time
	Version              int `gorm:"not null;default:1"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// TableName specifies the table name for GORM
func (LinkingTokenModel) TableName() string {
	return constants.TableLinkingTokens
}

// BeforeCreate hook for GORM
func (m *LinkingTokenModel) BeforeCreate(tx *gorm.DB) error {
	if m.Version == 0 {
		m.Version = 1
	}
	return nil
}
