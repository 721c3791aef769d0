package handler

import (
	"net/http"

	"ChatDesk/internal/middleware/jwt"
	"ChatDesk/pkg/ws"
	"ChatDesk/pkg/zlog"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WsHandler 运营后台实时通道，只下行推送会话事件
type WsHandler struct {
	hub *ws.Hub
}

func NewWsHandler(hub *ws.Hub) *WsHandler {
	return &WsHandler{hub: hub}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 浏览器原生 WebSocket 无法带 Authorization 头，令牌走 ?token=，由 jwt 中间件校验
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Connect GET /ws?token=
func (h *WsHandler) Connect(c *gin.Context) {
	tenantID := c.GetString(jwt.CtxTenantID)
	if tenantID == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zlog.Warn("ws upgrade failed", zap.Error(err))
		return
	}

	client := ws.NewClient(tenantID, conn)
	h.hub.Register(client)
	zlog.Info("operator connected",
		zap.String("tenant_id", tenantID),
		zap.String("agent", c.GetString(jwt.CtxAgentName)),
		zap.Int("online", h.hub.Count(tenantID)),
	)

	go client.WritePump()
	client.ReadPump(func() {
		h.hub.Unregister(client)
		zlog.Info("operator disconnected", zap.String("tenant_id", tenantID))
	})
}
