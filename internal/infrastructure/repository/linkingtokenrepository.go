package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"guildpass/internal/domain/linking"
	"guildpass/internal/infrastructure/persistence/mappers"
	"guildpass/internal/infrastructure/persistence/models"
	"guildpass/internal/shared/db"
	"guildpass/internal/shared/logger"
)

type LinkingTokenRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.LinkingTokenMapper
	logger logger.Interface
}

func NewLinkingTokenRepository(
	db *gorm.DB,
	logger logger.Interface,
) linking.Repository {
	return &LinkingTokenRepositoryImpl{
		db:     db,
		mapper: mappers.NewLinkingTokenMapper(),
		logger: logger,
	}
}

func (r *LinkingTokenRepositoryImpl) Create(ctx context.Context, token *linking.AccountLinkingToken) error {
	model, err := r.mapper.ToModel(token)
	if err != nil {
		r.logger.Errorw("failed to map linking token entity to model", "error", err)
		return fmt.Errorf("failed to map linking token entity: %w", err)
	}

	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create linking token in database", "error", err)
		return fmt.Errorf("failed to create linking token: %w", err)
	}

	if err := token.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set linking token ID: %w", err)
	}

	r.logger.Infow("linking token created", "id", model.ID, "sid", model.SID, "tenant_id", model.TenantID)
	return nil
}

func (r *LinkingTokenRepositoryImpl) GetByToken(ctx context.Context, token string) (*linking.AccountLinkingToken, error) {
	var model models.LinkingTokenModel

	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.WithContext(ctx).Where("token = ?", token).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, linking.ErrTokenNotFound
		}
		r.logger.Errorw("failed to get linking token", "error", err)
		return nil, fmt.Errorf("failed to get linking token: %w", err)
	}

	entity, err := r.mapper.ToEntity(&model)
	if err != nil {
		r.logger.Errorw("failed to map linking token model to entity", "id", model.ID, "error", err)
		return nil, fmt.Errorf("failed to map linking token: %w", err)
	}

	return entity, nil
}

// Update writes the redeemed token with a compare-and-swap on the version
// column. Losing the race surfaces as ErrConcurrentModification.
func (r *LinkingTokenRepositoryImpl) Update(ctx context.Context, token *linking.AccountLinkingToken) error {
	model, err := r.mapper.ToModel(token)
	if err != nil {
		r.logger.Errorw("failed to map linking token entity to model", "error", err)
		return fmt.Errorf("failed to map linking token entity: %w", err)
	}

	tx := db.GetTxFromContext(ctx, r.db)
	result := tx.WithContext(ctx).
		Model(&models.LinkingTokenModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version-1).
		Updates(map[string]any{
			"discord_user_id": model.DiscordUserID,
			"linked_at":       model.LinkedAt,
			"version":         model.Version,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update linking token", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update linking token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return linking.ErrConcurrentModification
	}

	r.logger.Infow("linking token updated", "id", model.ID, "version", model.Version)
	return nil
}
