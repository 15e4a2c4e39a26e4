package migration

import (
	"fmt"

	"gorm.io/gorm"

	"guildpass/internal/infrastructure/persistence/models"
	"guildpass/internal/shared/logger"
)

// AutoMigrateModels lists every persistence model in schema order.
func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.LinkingTokenModel{},
		&models.MemberModel{},
		&models.PriceRoleMappingModel{},
		&models.PlatformSubscriptionModel{},
	}
}

// Run applies the schema for all persistence models.
func Run(db *gorm.DB) error {
	if err := db.AutoMigrate(AutoMigrateModels()...); err != nil {
		return fmt.Errorf("failed to run auto migration: %w", err)
	}
	logger.Info("database schema migrated", "models", len(AutoMigrateModels()))
	return nil
}
