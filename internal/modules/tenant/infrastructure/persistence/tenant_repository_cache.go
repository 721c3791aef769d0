package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"ChatDesk/internal/modules/tenant/domain/entity"
	"ChatDesk/internal/modules/tenant/domain/repository"
	"ChatDesk/pkg/zlog"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	tenantKeyByID  = "chatdesk:tenant:id:"
	tenantKeyByKey = "chatdesk:tenant:key:"
)

// cachedTenantRepository 每条消息都要解析租户，用 Redis 缓存整行。
// 缓存读写失败只记日志，回落到底层仓储。
type cachedTenantRepository struct {
	inner  repository.TenantRepository
	client *goredis.Client
	ttl    time.Duration
}

// NewCachedTenantRepository client 为 nil 时直接返回 inner
func NewCachedTenantRepository(inner repository.TenantRepository, client *goredis.Client, ttl time.Duration) repository.TenantRepository {
	if client == nil {
		return inner
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &cachedTenantRepository{inner: inner, client: client, ttl: ttl}
}

func (r *cachedTenantRepository) GetByAPIKey(ctx context.Context, apiKey string) (*entity.Tenant, error) {
	if t := r.load(ctx, tenantKeyByKey+apiKey); t != nil {
		return t, nil
	}
	t, err := r.inner.GetByAPIKey(ctx, apiKey)
	if err != nil || t == nil {
		return t, err
	}
	r.store(ctx, t)
	return t, nil
}

func (r *cachedTenantRepository) GetByID(ctx context.Context, id string) (*entity.Tenant, error) {
	if t := r.load(ctx, tenantKeyByID+id); t != nil {
		return t, nil
	}
	t, err := r.inner.GetByID(ctx, id)
	if err != nil || t == nil {
		return t, err
	}
	r.store(ctx, t)
	return t, nil
}

func (r *cachedTenantRepository) Create(ctx context.Context, tenant *entity.Tenant) error {
	return r.inner.Create(ctx, tenant)
}

func (r *cachedTenantRepository) Update(ctx context.Context, tenant *entity.Tenant) error {
	if err := r.inner.Update(ctx, tenant); err != nil {
		return err
	}
	keys := []string{tenantKeyByID + tenant.Id}
	if tenant.ApiKey != "" {
		keys = append(keys, tenantKeyByKey+tenant.ApiKey)
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		zlog.Warn("tenant cache evict failed", zap.String("tenant_id", tenant.Id), zap.Error(err))
	}
	return nil
}

func (r *cachedTenantRepository) load(ctx context.Context, key string) *entity.Tenant {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			zlog.Warn("tenant cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil
	}
	var t entity.Tenant
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil
	}
	return &t
}

func (r *cachedTenantRepository) store(ctx context.Context, t *entity.Tenant) {
	raw, err := json.Marshal(t)
	if err != nil {
		return
	}
	pipe := r.client.Pipeline()
	pipe.Set(ctx, tenantKeyByID+t.Id, raw, r.ttl)
	pipe.Set(ctx, tenantKeyByKey+t.ApiKey, raw, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		zlog.Warn("tenant cache write failed", zap.String("tenant_id", t.Id), zap.Error(err))
	}
}
