package jwt

import (
	"strings"

	"ChatDesk/pkg/back"
	"ChatDesk/pkg/util/myjwt"
	"ChatDesk/pkg/xerr"

	"github.com/gin-gonic/gin"
)

const (
	CtxTenantID  = "tenant_id"
	CtxAgentName = "agent_name"
)

// Auth 校验运营后台 Bearer 令牌，WebSocket 握手时允许 ?token= 传参
func Auth(signer *myjwt.Signer) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
			tokenString = strings.TrimPrefix(h, "Bearer ")
		} else if q := c.Query("token"); q != "" {
			tokenString = q
		}
		if tokenString == "" {
			back.Error(c, xerr.Unauthorized, "missing or invalid authorization header")
			c.Abort()
			return
		}

		claims, err := signer.ParseToken(tokenString)
		if err != nil {
			back.Error(c, xerr.Unauthorized, "invalid token")
			c.Abort()
			return
		}

		c.Set(CtxTenantID, claims.TenantId)
		c.Set(CtxAgentName, claims.AgentName)
		c.Next()
	}
}
