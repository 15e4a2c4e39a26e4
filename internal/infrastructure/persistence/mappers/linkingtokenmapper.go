package mappers

import (
	"fmt"

	"guildpass/internal/domain/linking"
	"guildpass/internal/infrastructure/persistence/models"
)

type LinkingTokenMapper interface {
	ToEntity(model *models.LinkingTokenModel) (*linking.AccountLinkingToken, error)
	ToModel(entity *linking.AccountLinkingToken) (*models.LinkingTokenModel, error)
}

type LinkingTokenMapperImpl struct{}

func NewLinkingTokenMapper() LinkingTokenMapper {
	return &LinkingTokenMapperImpl{}
}

func (m *LinkingTokenMapperImpl) ToEntity(model *models.LinkingTokenModel) (*linking.AccountLinkingToken, error) {
	if model == nil {
		return nil, nil
	}

	entity, err := linking.ReconstructAccountLinkingToken(
		model.ID,
		model.SID,
		model.TenantID,
		model.StripeSubscriptionID,
		model.CustomerEmail,
		model.StripePriceID,
		model.Token,
		model.ExpiresAt,
		model.CreatedAt,
		model.DiscordUserID,
		model.LinkedAt,
		model.Version,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct linking token entity: %w", err)
	}

	return entity, nil
}

func (m *LinkingTokenMapperImpl) ToModel(entity *linking.AccountLinkingToken) (*models.LinkingTokenModel, error) {
	if entity == nil {
		return nil, nil
	}

	return &models.LinkingTokenModel{
		ID:                   entity.ID(),
		SID:                  entity.SID(),
		TenantID:             entity.TenantID(),
		StripeSubscriptionID: entity.StripeSubscriptionID(),
		CustomerEmail:        entity.CustomerEmail(),
		StripePriceID:        entity.StripePriceID(),
		Token:                entity.Token(),
		ExpiresAt:            entity.ExpiresAt(),
		DiscordUserID:        entity.DiscordUserID(),
		LinkedAt:             entity.LinkedAt(),
		Version:              entity.Version(),
		CreatedAt:            entity.CreatedAt(),
	}, nil
}
