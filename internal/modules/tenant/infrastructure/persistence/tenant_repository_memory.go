package persistence

import (
	"context"
	"fmt"
	"sync"

	"ChatDesk/internal/modules/tenant/domain/entity"
)

// MemoryTenantRepository 未配置 MySQL 时使用
type MemoryTenantRepository struct {
	mu      sync.RWMutex
	tenants map[string]entity.Tenant
}

func NewMemoryTenantRepository() *MemoryTenantRepository {
	return &MemoryTenantRepository{tenants: make(map[string]entity.Tenant)}
}

func (r *MemoryTenantRepository) GetByAPIKey(_ context.Context, apiKey string) (*entity.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.tenants {
		if t.ApiKey == apiKey {
			cp := t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MemoryTenantRepository) GetByID(_ context.Context, id string) (*entity.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tenants[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *MemoryTenantRepository) Create(_ context.Context, tenant *entity.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tenants[tenant.Id]; ok {
		return fmt.Errorf("tenant %s already exists", tenant.Id)
	}
	for _, t := range r.tenants {
		if t.ApiKey == tenant.ApiKey {
			return fmt.Errorf("duplicate api key")
		}
	}
	r.tenants[tenant.Id] = *tenant
	return nil
}

func (r *MemoryTenantRepository) Update(_ context.Context, tenant *entity.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.tenants[tenant.Id]
	if !ok {
		return nil
	}
	cur.Name = tenant.Name
	cur.SystemPrompt = tenant.SystemPrompt
	cur.ChatConfig = tenant.ChatConfig
	cur.WidgetConfig = tenant.WidgetConfig
	cur.UpdatedAt = tenant.UpdatedAt
	r.tenants[tenant.Id] = cur
	return nil
}
