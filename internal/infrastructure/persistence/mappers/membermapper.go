package mappers

import (
	"encoding/json"
	"fmt"

	"guildpass/internal/domain/member"
	"guildpass/internal/infrastructure/persistence/models"
)

type MemberMapper interface {
	ToEntity(model *models.MemberModel) (*member.Member, error)
	ToModel(entity *member.Member) (*models.MemberModel, error)
	ToEntities(models []*models.MemberModel) ([]*member.Member, error)
}

type MemberMapperImpl struct{}

func NewMemberMapper() MemberMapper {
	return &MemberMapperImpl{}
}

func (m *MemberMapperImpl) ToEntity(model *models.MemberModel) (*member.Member, error) {
	if model == nil {
		return nil, nil
	}

	var subscriptions []member.Subscription
	if model.Subscriptions != nil {
		if err := json.Unmarshal(model.Subscriptions, &subscriptions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal subscriptions: %w", err)
		}
	}

	var guildMemberships map[string][]string
	if model.GuildMemberships != nil {
		if err := json.Unmarshal(model.GuildMemberships, &guildMemberships); err != nil {
			return nil, fmt.Errorf("failed to unmarshal guild memberships: %w", err)
		}
	}
	if guildMemberships == nil {
		guildMemberships = make(map[string][]string)
	}

	entity, err := member.ReconstructMember(member.MemberReconstructParams{
		ID:                    model.ID,
		SID:                   model.SID,
		TenantID:              model.TenantID,
		CustomerEmail:         model.CustomerEmail,
		Subscriptions:         subscriptions,
		GuildMemberships:      guildMemberships,
		DiscordUserID:         model.DiscordUserID,
		LinkingToken:          model.LinkingToken,
		LinkingTokenExpiresAt: model.LinkingTokenExpiresAt,
		LinkedAt:              model.LinkedAt,
		CreatedAt:             model.CreatedAt,
		UpdatedAt:             model.UpdatedAt,
		Version:               model.Version,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct member entity: %w", err)
	}

	return entity, nil
}

func (m *MemberMapperImpl) ToModel(entity *member.Member) (*models.MemberModel, error) {
	if entity == nil {
		return nil, nil
	}

	subscriptions, err := json.Marshal(entity.Subscriptions())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal subscriptions: %w", err)
	}

	guildMemberships, err := json.Marshal(entity.GuildMemberships())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal guild memberships: %w", err)
	}

	return &models.MemberModel{
		ID:                    entity.ID(),
		SID:                   entity.SID(),
		TenantID:              entity.TenantID(),
		CustomerEmail:         entity.CustomerEmail(),
		Subscriptions:         subscriptions,
		GuildMemberships:      guildMemberships,
		DiscordUserID:         entity.DiscordUserID(),
		LinkingToken:          entity.LinkingToken(),
		LinkingTokenExpiresAt: entity.LinkingTokenExpiresAt(),
		LinkedAt:              entity.LinkedAt(),
		Version:               entity.Version(),
		CreatedAt:             entity.CreatedAt(),
	}, nil
}

func (m *MemberMapperImpl) ToEntities(modelList []*models.MemberModel) ([]*member.Member, error) {
	if modelList == nil {
		return nil, nil
	}

	entities := make([]*member.Member, 0, len(modelList))
	for _, model := range modelList {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}

	return entities, nil
}
