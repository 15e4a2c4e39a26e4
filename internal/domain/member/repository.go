package member

import "context"

type Repository interface {
	Create(ctx context.Context, m *Member) error
	GetByID(ctx context.Context, id uint) (*Member, error)
	GetByTenantAndEmail(ctx context.Context, tenantID, customerEmail string) (*Member, error)
	ListLinked(ctx context.Context) ([]*Member, error)
	Update(ctx context.Context, m *Member) error
}
