package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"guildpass/internal/domain/platform"
	"guildpass/internal/infrastructure/persistence/mappers"
	"guildpass/internal/infrastructure/persistence/models"
	"guildpass/internal/shared/db"
	"guildpass/internal/shared/logger"
)

type PlatformSubscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.PlatformSubscriptionMapper
	logger logger.Interface
}

func NewPlatformSubscriptionRepository(
	db *gorm.DB,
	logger logger.Interface,
) platform.Repository {
	return &PlatformSubscriptionRepositoryImpl{
		db:     db,
		mapper: mappers.NewPlatformSubscriptionMapper(),
		logger: logger,
	}
}

func (r *PlatformSubscriptionRepositoryImpl) Create(ctx context.Context, p *platform.PendingPlatformSubscription) error {
	model, err := r.mapper.ToModel(p)
	if err != nil {
		r.logger.Errorw("failed to map platform subscription entity to model", "error", err)
		return fmt.Errorf("failed to map platform subscription entity: %w", err)
	}

	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create platform subscription in database", "error", err)
		return fmt.Errorf("failed to create platform subscription: %w", err)
	}

	if err := p.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set platform subscription ID: %w", err)
	}

	r.logger.Infow("platform subscription created", "id", model.ID, "sid", model.SID)
	return nil
}

func (r *PlatformSubscriptionRepositoryImpl) GetByCouponCode(ctx context.Context, couponCode string) (*platform.PendingPlatformSubscription, error) {
	var model models.PlatformSubscriptionModel

	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.WithContext(ctx).Where("coupon_code = ?", couponCode).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platform.ErrCouponNotFound
		}
		r.logger.Errorw("failed to get platform subscription by coupon", "error", err)
		return nil, fmt.Errorf("failed to get platform subscription: %w", err)
	}

	entity, err := r.mapper.ToEntity(&model)
	if err != nil {
		r.logger.Errorw("failed to map platform subscription model to entity", "id", model.ID, "error", err)
		return nil, fmt.Errorf("failed to map platform subscription: %w", err)
	}

	return entity, nil
}

func (r *PlatformSubscriptionRepositoryImpl) GetByCustomerEmail(ctx context.Context, customerEmail string) ([]*platform.PendingPlatformSubscription, error) {
	var modelList []*models.PlatformSubscriptionModel

	tx := db.GetTxFromContext(ctx, r.db)
	err := tx.WithContext(ctx).
		Where("customer_email = ?", customerEmail).
		Order("created_at DESC").
		Find(&modelList).Error
	if err != nil {
		r.logger.Errorw("failed to list platform subscriptions by email", "error", err)
		return nil, fmt.Errorf("failed to list platform subscriptions: %w", err)
	}

	entities, err := r.mapper.ToEntities(modelList)
	if err != nil {
		r.logger.Errorw("failed to map platform subscription models to entities", "error", err)
		return nil, fmt.Errorf("failed to map platform subscriptions: %w", err)
	}

	return entities, nil
}

func (r *PlatformSubscriptionRepositoryImpl) Update(ctx context.Context, p *platform.PendingPlatformSubscription) error {
	model, err := r.mapper.ToModel(p)
	if err != nil {
		r.logger.Errorw("failed to map platform subscription entity to model", "error", err)
		return fmt.Errorf("failed to map platform subscription entity: %w", err)
	}

	tx := db.GetTxFromContext(ctx, r.db)
	result := tx.WithContext(ctx).
		Model(&models.PlatformSubscriptionModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version-1).
		Updates(map[string]any{
			"redeemed": model.Redeemed,
			"version":  model.Version,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update platform subscription", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update platform subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// Another redemption raced us to the version bump.
		return platform.ErrAlreadyRedeemed
	}

	r.logger.Infow("platform subscription updated", "id", model.ID, "redeemed", model.Redeemed)
	return nil
}
