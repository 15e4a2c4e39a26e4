package mapping

import "context"

type Repository interface {
	GetByTenantAndGuild(ctx context.Context, tenantID, guildID string) (*TenantPriceToRoleMapping, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*TenantPriceToRoleMapping, error)
	Save(ctx context.Context, m *TenantPriceToRoleMapping) error
}
