package persistence

import (
	"context"
	"errors"

	"ChatDesk/internal/modules/tenant/domain/entity"
	"ChatDesk/internal/modules/tenant/domain/repository"

	"gorm.io/gorm"
)

type tenantRepositoryImpl struct {
	db *gorm.DB
}

func NewTenantRepository(db *gorm.DB) repository.TenantRepository {
	return &tenantRepositoryImpl{db: db}
}

func (r *tenantRepositoryImpl) GetByAPIKey(ctx context.Context, apiKey string) (*entity.Tenant, error) {
	return r.first(ctx, "api_key = ?", apiKey)
}

func (r *tenantRepositoryImpl) GetByID(ctx context.Context, id string) (*entity.Tenant, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *tenantRepositoryImpl) first(ctx context.Context, cond string, arg string) (*entity.Tenant, error) {
	var t entity.Tenant
	err := r.db.WithContext(ctx).Where(cond, arg).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tenantRepositoryImpl) Create(ctx context.Context, tenant *entity.Tenant) error {
	return r.db.WithContext(ctx).Create(tenant).Error
}

func (r *tenantRepositoryImpl) Update(ctx context.Context, tenant *entity.Tenant) error {
	return r.db.WithContext(ctx).
		Model(tenant).
		Select("name", "system_prompt", "chat_config", "widget_config", "updated_at").
		Updates(tenant).Error
}
