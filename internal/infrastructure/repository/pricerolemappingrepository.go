package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"guildpass/internal/domain/mapping"
	"guildpass/internal/infrastructure/persistence/mappers"
	"guildpass/internal/infrastructure/persistence/models"
	"guildpass/internal/shared/db"
	"guildpass/internal/shared/logger"
)

type PriceRoleMappingRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.PriceRoleMappingMapper
	logger logger.Interface
}

func NewPriceRoleMappingRepository(
	db *gorm.DB,
	logger logger.Interface,
) mapping.Repository {
	return &PriceRoleMappingRepositoryImpl{
		db:     db,
		mapper: mappers.NewPriceRoleMappingMapper(),
		logger: logger,
	}
}

func (r *PriceRoleMappingRepositoryImpl) GetByTenantAndGuild(ctx context.Context, tenantID, guildID string) (*mapping.TenantPriceToRoleMapping, error) {
	var model models.PriceRoleMappingModel

	tx := db.GetTxFromContext(ctx, r.db)
	err := tx.WithContext(ctx).
		Where("tenant_id = ? AND guild_id = ?", tenantID, guildID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, mapping.ErrMappingNotFound
		}
		r.logger.Errorw("failed to get price role mapping", "tenant_id", tenantID, "guild_id", guildID, "error", err)
		return nil, fmt.Errorf("failed to get price role mapping: %w", err)
	}

	entity, err := r.mapper.ToEntity(&model)
	if err != nil {
		r.logger.Errorw("failed to map price role mapping model to entity", "id", model.ID, "error", err)
		return nil, fmt.Errorf("failed to map price role mapping: %w", err)
	}

	return entity, nil
}

func (r *PriceRoleMappingRepositoryImpl) ListByTenant(ctx context.Context, tenantID string) ([]*mapping.TenantPriceToRoleMapping, error) {
	var modelList []*models.PriceRoleMappingModel

	tx := db.GetTxFromContext(ctx, r.db)
	err := tx.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("guild_id ASC").
		Find(&modelList).Error
	if err != nil {
		r.logger.Errorw("failed to list price role mappings", "tenant_id", tenantID, "error", err)
		return nil, fmt.Errorf("failed to list price role mappings: %w", err)
	}

	entities, err := r.mapper.ToEntities(modelList)
	if err != nil {
		r.logger.Errorw("failed to map price role mapping models to entities", "error", err)
		return nil, fmt.Errorf("failed to map price role mappings: %w", err)
	}

	return entities, nil
}

// Save upserts on the tenant+guild unique key so tenants can replace their
// mapping wholesale.
func (r *PriceRoleMappingRepositoryImpl) Save(ctx context.Context, m *mapping.TenantPriceToRoleMapping) error {
	model, err := r.mapper.ToModel(m)
	if err != nil {
		r.logger.Errorw("failed to map price role mapping entity to model", "error", err)
		return fmt.Errorf("failed to map price role mapping entity: %w", err)
	}

	tx := db.GetTxFromContext(ctx, r.db)
	err = tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "guild_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"roles_by_price", "updated_at"}),
		}).
		Create(model).Error
	if err != nil {
		r.logger.Errorw("failed to save price role mapping", "tenant_id", model.TenantID, "guild_id", model.GuildID, "error", err)
		return fmt.Errorf("failed to save price role mapping: %w", err)
	}

	if m.ID() == 0 && model.ID != 0 {
		if err := m.SetID(model.ID); err != nil {
			return fmt.Errorf("failed to set price role mapping ID: %w", err)
		}
	}

	r.logger.Infow("price role mapping saved", "tenant_id", model.TenantID, "guild_id", model.GuildID)
	return nil
}
