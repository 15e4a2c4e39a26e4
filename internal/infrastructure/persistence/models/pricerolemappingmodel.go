package models

import (
	"time"

	"gorm.io/datatypes"

	"guildpass/internal/shared/constants"
)

// PriceRoleMappingModel represents the database persistence model for
// tenant price-to-role mappings. One row per tenant+guild pair.
type PriceRoleMappingModel struct {
	ID           uint           `gorm:"primarykey"`
	TenantID     string         `gorm:"not null;size:50;uniqueIndex:idx_tenant_guild,priority:1"`
	GuildID      string         `gorm:"not null;size:32;uniqueIndex:idx_tenant_guild,priority:2"`
	RolesByPrice datatypes.JSON `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName specifies the table name for GORM
func (PriceRoleMappingModel) TableName() string {
	return constants.TablePriceRoleMappings
}
