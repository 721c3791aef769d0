package apikey

import (
	"errors"
	"strings"

	tenantService "ChatDesk/internal/modules/tenant/application/service"
	tenantEntity "ChatDesk/internal/modules/tenant/domain/entity"
	"ChatDesk/pkg/back"
	"ChatDesk/pkg/xerr"

	"github.com/gin-gonic/gin"
)

const (
	HeaderAPIKey = "X-API-Key"
	CtxTenant    = "tenant"
	CtxTenantID  = "tenant_id"
)

// Auth 按 X-API-Key（或 ?apiKey=）解析租户，并校验挂件配置的来源白名单。
// 没有 Origin 头的请求来自服务端渠道适配器，不做来源校验。
func Auth(resolver tenantService.TenantResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(HeaderAPIKey))
		if key == "" {
			key = strings.TrimSpace(c.Query("apiKey"))
		}
		if key == "" {
			back.Error(c, xerr.Unauthorized, "missing api key")
			c.Abort()
			return
		}

		tenant, err := resolver.Resolve(c.Request.Context(), key)
		if err != nil {
			if errors.Is(err, xerr.ErrTenantNotFound) {
				back.Error(c, xerr.Unauthorized, "invalid api key")
			} else {
				back.Result(c, nil, err)
			}
			c.Abort()
			return
		}

		if origin := c.GetHeader("Origin"); origin != "" && !tenant.WidgetConfig.AllowsOrigin(origin) {
			back.Error(c, xerr.ErrOriginForbidden.Code, xerr.ErrOriginForbidden.Message)
			c.Abort()
			return
		}

		c.Set(CtxTenant, tenant)
		c.Set(CtxTenantID, tenant.Id)
		c.Next()
	}
}

// TenantFrom 取出中间件写入的租户
func TenantFrom(c *gin.Context) *tenantEntity.Tenant {
	v, ok := c.Get(CtxTenant)
	if !ok {
		return nil
	}
	t, _ := v.(*tenantEntity.Tenant)
	return t
}
