package mappers

import (
	"fmt"

	"guildpass/internal/domain/platform"
	"guildpass/internal/infrastructure/persistence/models"
)

type PlatformSubscriptionMapper interface {
	ToEntity(model *models.PlatformSubscriptionModel) (*platform.PendingPlatformSubscription, error)
	ToModel(entity *platform.PendingPlatformSubscription) (*models.PlatformSubscriptionModel, error)
	ToEntities(models []*models.PlatformSubscriptionModel) ([]*platform.PendingPlatformSubscription, error)
}

type PlatformSubscriptionMapperImpl struct{}

func NewPlatformSubscriptionMapper() PlatformSubscriptionMapper {
	return &PlatformSubscriptionMapperImpl{}
}

func (m *PlatformSubscriptionMapperImpl) ToEntity(model *models.PlatformSubscriptionModel) (*platform.PendingPlatformSubscription, error) {
	if model == nil {
		return nil, nil
	}

	entity, err := platform.ReconstructPendingPlatformSubscription(
		model.ID,
		model.SID,
		model.CustomerEmail,
		platform.SubscriptionInfo{
			SubscriptionID: model.SubscriptionID,
			PlanID:         model.PlanID,
			Status:         model.Status,
			ExpiresAt:      model.ExpiresAt,
		},
		model.CouponCode,
		model.Redeemed,
		model.CreatedAt,
		model.UpdatedAt,
		model.Version,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct platform subscription entity: %w", err)
	}

	return entity, nil
}

func (m *PlatformSubscriptionMapperImpl) ToModel(entity *platform.PendingPlatformSubscription) (*models.PlatformSubscriptionModel, error) {
	if entity == nil {
		return nil, nil
	}

	sub := entity.Subscription()
	return &models.PlatformSubscriptionModel{
		ID:             entity.ID(),
		SID:            entity.SID(),
		CustomerEmail:  entity.CustomerEmail(),
		SubscriptionID: sub.SubscriptionID,
		PlanID:         sub.PlanID,
		Status:         sub.Status,
		ExpiresAt:      sub.ExpiresAt,
		CouponCode:     entity.CouponCode(),
		Redeemed:       entity.IsRedeemed(),
		Version:        entity.Version(),
		CreatedAt:      entity.CreatedAt(),
	}, nil
}

func (m *PlatformSubscriptionMapperImpl) ToEntities(modelList []*models.PlatformSubscriptionModel) ([]*platform.PendingPlatformSubscription, error) {
	if modelList == nil {
		return nil, nil
	}

	entities := make([]*platform.PendingPlatformSubscription, 0, len(modelList))
	for _, model := range modelList {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}

	return entities, nil
}
