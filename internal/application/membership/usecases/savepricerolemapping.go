package usecases

import (
	"context"
	"errors"
	"fmt"

	"guildpass/internal/domain/mapping"
	"guildpass/internal/shared/logger"
)

// SavePriceRoleMappingUseCase lets a tenant install or replace the price to
// role mapping for one guild. The whole document is replaced; partial edits
// go through reading the current mapping first.
type SavePriceRoleMappingUseCase struct {
	mappingRepo mapping.Repository
	logger      logger.Interface
}

// NewSavePriceRoleMappingUseCase creates a new SavePriceRoleMappingUseCase.
func NewSavePriceRoleMappingUseCase(mappingRepo mapping.Repository, logger logger.Interface) *SavePriceRoleMappingUseCase {
	return &SavePriceRoleMappingUseCase{mappingRepo: mappingRepo, logger: logger}
}

// Execute upserts the tenant's mapping for the guild.
func (uc *SavePriceRoleMappingUseCase) Execute(ctx context.Context, tenantID, guildID string, rolesByPrice map[string][]string) (*mapping.TenantPriceToRoleMapping, error) {
	existing, err := uc.mappingRepo.GetByTenantAndGuild(ctx, tenantID, guildID)
	switch {
	case err == nil:
		for priceID, roleIDs := range rolesByPrice {
			if err := existing.SetRolesForPrice(priceID, roleIDs); err != nil {
				return nil, fmt.Errorf("failed to set roles for price %s: %w", priceID, err)
			}
		}
		if err := uc.mappingRepo.Save(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to save mapping: %w", err)
		}
		return existing, nil

	case errors.Is(err, mapping.ErrMappingNotFound):
		created, err := mapping.NewTenantPriceToRoleMapping(tenantID, guildID, rolesByPrice)
		if err != nil {
			return nil, fmt.Errorf("failed to create mapping: %w", err)
		}
		if err := uc.mappingRepo.Save(ctx, created); err != nil {
			return nil, fmt.Errorf("failed to save mapping: %w", err)
		}
		uc.logger.Infow("price role mapping created", "tenant_id", tenantID, "guild_id", guildID)
		return created, nil

	default:
		return nil, fmt.Errorf("failed to load mapping: %w", err)
	}
}
