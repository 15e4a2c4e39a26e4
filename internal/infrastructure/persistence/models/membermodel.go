package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"guildpass/internal/shared/constants"
)

// MemberModel represents the database persistence model for members.
// Subscriptions and GuildMemberships are stored as JSON documents; they are
// always read and written whole with the aggregate, never queried into.
type MemberModel struct {
	ID                    uint           `gorm:"primarykey"`
	SID                   string         `gorm:"uniqueIndex;not null;size:50;comment:Stripe-style ID: mem_xxx"`
	TenantID              string         `gorm:"not null;size:50;uniqueIndex:idx_tenant_email,priority:1"`
	CustomerEmail         string         `gorm:"not null;size:255;uniqueIndex:idx_tenant_email,priority:2"`
	Subscriptions         datatypes.JSON `gorm:"not null"`
	GuildMemberships      datatypes.JSON `gorm:"not null"`
	DiscordUserID         *string        `gorm:"size:32;index:idx_discord_user"`
	LinkingToken          *string        `gorm:"size:64"`
	LinkingTokenExpiresAt *time.Time
	LinkedAt              *time.Time `gorm:"index:idx_linked_at"`
	Version               int        `gorm:"not null;default:1"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// TableName specifies the table name for GORM
func (MemberModel) TableName() string {
	return constants.TableMembers
}

// BeforeCreate hook for GORM
func (m *MemberModel) BeforeCreate(tx *gorm.DB) error {
	if m.Version == 0 {
		m.Version = 1
	}
	return nil
}
