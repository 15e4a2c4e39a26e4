package mappers

import (
	"encoding/json"
	"fmt"

	"guildpass/internal/domain/mapping"
	"guildpass/internal/infrastructure/persistence/models"
)

type PriceRoleMappingMapper interface {
	ToEntity(model *models.PriceRoleMappingModel) (*mapping.TenantPriceToRoleMapping, error)
	ToModel(entity *mapping.TenantPriceToRoleMapping) (*models.PriceRoleMappingModel, error)
	ToEntities(models []*models.PriceRoleMappingModel) ([]*mapping.TenantPriceToRoleMapping, error)
}

type PriceRoleMappingMapperImpl struct{}

func NewPriceRoleMappingMapper() PriceRoleMappingMapper {
	return &PriceRoleMappingMapperImpl{}
}

func (m *PriceRoleMappingMapperImpl) ToEntity(model *models.PriceRoleMappingModel) (*mapping.TenantPriceToRoleMapping, error) {
	if model == nil {
		return nil, nil
	}

	var rolesByPrice map[string][]string
	if model.RolesByPrice != nil {
		if err := json.Unmarshal(model.RolesByPrice, &rolesByPrice); err != nil {
			return nil, fmt.Errorf("failed to unmarshal roles by price: %w", err)
		}
	}

	entity, err := mapping.ReconstructTenantPriceToRoleMapping(
		model.ID,
		model.TenantID,
		model.GuildID,
		rolesByPrice,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct mapping entity: %w", err)
	}

	return entity, nil
}

func (m *PriceRoleMappingMapperImpl) ToModel(entity *mapping.TenantPriceToRoleMapping) (*models.PriceRoleMappingModel, error) {
	if entity == nil {
		return nil, nil
	}

	rolesByPrice, err := json.Marshal(entity.RolesByPrice())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal roles by price: %w", err)
	}

	return &models.PriceRoleMappingModel{
		ID:           entity.ID(),
		TenantID:     entity.TenantID(),
		GuildID:      entity.GuildID(),
		RolesByPrice: rolesByPrice,
		CreatedAt:    entity.CreatedAt(),
	}, nil
}

func (m *PriceRoleMappingMapperImpl) ToEntities(modelList []*models.PriceRoleMappingModel) ([]*mapping.TenantPriceToRoleMapping, error) {
	if modelList == nil {
		return nil, nil
	}

	entities := make([]*mapping.TenantPriceToRoleMapping, 0, len(modelList))
	for _, model := range modelList {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}

	return entities, nil
}
