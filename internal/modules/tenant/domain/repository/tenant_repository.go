package repository

import (
	"context"

	"ChatDesk/internal/modules/tenant/domain/entity"
)

// TenantRepository 查询不到时返回 (nil, nil)
type TenantRepository interface {
	GetByAPIKey(ctx context.Context, apiKey string) (*entity.Tenant, error)
	GetByID(ctx context.Context, id string) (*entity.Tenant, error)
	Create(ctx context.Context, tenant *entity.Tenant) error
	Update(ctx context.Context, tenant *entity.Tenant) error
}
