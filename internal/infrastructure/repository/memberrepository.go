package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"guildpass/internal/domain/member"
	"guildpass/internal/infrastructure/persistence/mappers"
	"guildpass/internal/infrastructure/persistence/models"
	"guildpass/internal/shared/db"
	"guildpass/internal/shared/logger"
)

type MemberRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.MemberMapper
	logger logger.Interface
}

func NewMemberRepository(
	db *gorm.DB,
	logger logger.Interface,
) member.Repository {
	return &MemberRepositoryImpl{
		db:     db,
		mapper: mappers.NewMemberMapper(),
		logger: logger,
	}
}

func (r *MemberRepositoryImpl) Create(ctx context.Context, m *member.Member) error {
	model, err := r.mapper.ToModel(m)
	if err != nil {
		r.logger.Errorw("failed to map member entity to model", "error", err)
		return fmt.Errorf("failed to map member entity: %w", err)
	}

	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create member in database", "error", err)
		return fmt.Errorf("failed to create member: %w", err)
	}

	if err := m.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set member ID: %w", err)
	}

	r.logger.Infow("member created", "id", model.ID, "sid", model.SID, "tenant_id", model.TenantID)
	return nil
}

func (r *MemberRepositoryImpl) GetByID(ctx context.Context, id uint) (*member.Member, error) {
	var model models.MemberModel

	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, member.ErrMemberNotFound
		}
		r.logger.Errorw("failed to get member by ID", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return r.toEntity(&model)
}

func (r *MemberRepositoryImpl) GetByTenantAndEmail(ctx context.Context, tenantID, customerEmail string) (*member.Member, error) {
	var model models.MemberModel

	tx := db.GetTxFromContext(ctx, r.db)
	err := tx.WithContext(ctx).
		Where("tenant_id = ? AND customer_email = ?", tenantID, customerEmail).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, member.ErrMemberNotFound
		}
		r.logger.Errorw("failed to get member by tenant and email", "tenant_id", tenantID, "error", err)
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return r.toEntity(&model)
}

func (r *MemberRepositoryImpl) ListLinked(ctx context.Context) ([]*member.Member, error) {
	var modelList []*models.MemberModel

	tx := db.GetTxFromContext(ctx, r.db)
	err := tx.WithContext(ctx).
		Where("discord_user_id IS NOT NULL").
		Order("id ASC").
		Find(&modelList).Error
	if err != nil {
		r.logger.Errorw("failed to list linked members", "error", err)
		return nil, fmt.Errorf("failed to list linked members: %w", err)
	}

	entities, err := r.mapper.ToEntities(modelList)
	if err != nil {
		r.logger.Errorw("failed to map member models to entities", "error", err)
		return nil, fmt.Errorf("failed to map members: %w", err)
	}

	return entities, nil
}

func (r *MemberRepositoryImpl) Update(ctx context.Context, m *member.Member) error {
	model, err := r.mapper.ToModel(m)
	if err != nil {
		r.logger.Errorw("failed to map member entity to model", "error", err)
		return fmt.Errorf("failed to map member entity: %w", err)
	}

	// Optimistic lock on the version column: a concurrent reconciliation of
	// the same member loses the race instead of clobbering the newer state.
	tx := db.GetTxFromContext(ctx, r.db)
	result := tx.WithContext(ctx).
		Model(&models.MemberModel{}).
		Where("id = ? AND version = ?", model.ID, m.BaseVersion()).
		Updates(map[string]any{
			"subscriptions":            model.Subscriptions,
			"guild_memberships":        model.GuildMemberships,
			"discord_user_id":          model.DiscordUserID,
			"linking_token":            model.LinkingToken,
			"linking_token_expires_at": model.LinkingTokenExpiresAt,
			"linked_at":                model.LinkedAt,
			"version":                  model.Version,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update member", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update member: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return member.ErrConcurrentModification
	}

	return nil
}

func (r *MemberRepositoryImpl) toEntity(model *models.MemberModel) (*member.Member, error) {
	entity, err := r.mapper.ToEntity(model)
	if err != nil {
		r.logger.Errorw("failed to map member model to entity", "id", model.ID, "error", err)
		return nil, fmt.Errorf("failed to map member: %w", err)
	}
	return entity, nil
}
