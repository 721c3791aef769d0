package http

import (
	"strings"

	"ChatDesk/internal/app"
	"ChatDesk/internal/middleware/apikey"
	jwtMiddleware "ChatDesk/internal/middleware/jwt"
	aiHandler "ChatDesk/internal/modules/ai/interface/http"
	chatHandler "ChatDesk/internal/modules/chat/interface/http"
	tenantHandler "ChatDesk/internal/modules/tenant/interface/http"
	"ChatDesk/pkg/metrics"
	"ChatDesk/pkg/ssl"

	cors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewEngine 注册 widget、坐席、公共三组路由
func NewEngine(a *app.App) *gin.Engine {
	conf := a.Conf
	ge := gin.New()
	ge.Use(gin.Logger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	if origins := splitOrigins(conf.MainConfig.CorsOrigins); len(origins) > 0 {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-API-Key"}
	ge.Use(cors.New(corsConfig))
	ge.Use(ssl.TlsHandler(conf.MainConfig.Host, conf.MainConfig.Port, conf.MainConfig.EnableTLS))
	ge.Use(metrics.GinMiddleware())

	widgetH := chatHandler.NewWidgetHandler(a.Router, a.Messages, a.Sessions, a.Tenants)
	sessionH := chatHandler.NewSessionHandler(a.Sessions, a.Messages)
	wsH := chatHandler.NewWsHandler(a.Hub)
	tenantH := tenantHandler.NewTenantHandler(a.Tenants)
	knowledgeH := aiHandler.NewKnowledgeHandler(a.Knowledge, a.AsyncIngest)

	ge.POST("/tenants", tenantH.Create)
	ge.GET("/metrics", metrics.Handler())

	widget := ge.Group("/widget")
	widget.Use(apikey.Auth(a.Tenants))
	widget.POST("/message", widgetH.SendMessage)
	widget.GET("/messages", widgetH.GetMessages)
	widget.GET("/config", widgetH.GetConfig)
	widget.POST("/requestAgent", widgetH.RequestAgent)

	authed := ge.Group("/")
	authed.Use(jwtMiddleware.Auth(a.Signer))
	authed.GET("/ws", wsH.Connect)

	authed.GET("/sessions", sessionH.ListSessions)
	authed.GET("/sessions/:id/messages", sessionH.GetMessages)
	authed.POST("/sessions/:id/accept", sessionH.AcceptAgent)
	authed.POST("/sessions/:id/requestAgent", sessionH.RequestAgent())
	authed.POST("/sessions/:id/reject", sessionH.RejectAgent())
	authed.POST("/sessions/:id/end", sessionH.EndAgentChat())
	authed.POST("/sessions/:id/read", sessionH.MarkAsRead())
	authed.POST("/sessions/:id/clear", sessionH.Clear())
	authed.POST("/sessions/:id/restrict", sessionH.Restrict())
	authed.POST("/sessions/:id/unrestrict", sessionH.Unrestrict())
	authed.POST("/sessions/:id/block", sessionH.Block())
	authed.POST("/sessions/:id/unblock", sessionH.Unblock())
	authed.POST("/sessions/:id/reply", sessionH.Reply)
	authed.POST("/sessions/:id/rename", sessionH.Rename)
	authed.DELETE("/sessions/:id", sessionH.Delete())

	authed.GET("/tenant/settings", tenantH.GetSettings)
	authed.PUT("/tenant/settings", tenantH.UpdateSettings)

	authed.POST("/knowledge", knowledgeH.Add)
	authed.POST("/knowledge/async", knowledgeH.Enqueue)
	authed.POST("/knowledge/query", knowledgeH.Query)
	authed.GET("/knowledge/sources", knowledgeH.ListSources)
	authed.GET("/knowledge/chunks", knowledgeH.ListChunks)
	authed.DELETE("/knowledge/sources", knowledgeH.DeleteSource)

	return ge
}

func splitOrigins(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, o := range raw {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
