package handler

import (
	"strings"
	"time"

	"ChatDesk/internal/middleware/apikey"
	chatRequest "ChatDesk/internal/modules/chat/application/dto/request"
	chatService "ChatDesk/internal/modules/chat/application/service"
	chatEntity "ChatDesk/internal/modules/chat/domain/entity"
	tenantService "ChatDesk/internal/modules/tenant/application/service"
	"ChatDesk/pkg/back"
	"ChatDesk/pkg/xerr"
	"ChatDesk/pkg/zlog"

	"github.com/gin-gonic/gin"
)

// WidgetHandler 挂件与渠道 webhook 的入口，租户已由 apikey 中间件解析
type WidgetHandler struct {
	router   chatService.RouterService
	messages chatService.MessageService
	sessions chatService.SessionService
	tenants  tenantService.TenantService
}

func NewWidgetHandler(
	router chatService.RouterService,
	messages chatService.MessageService,
	sessions chatService.SessionService,
	tenants tenantService.TenantService,
) *WidgetHandler {
	return &WidgetHandler{router: router, messages: messages, sessions: sessions, tenants: tenants}
}

func validChannel(channel string) bool {
	switch channel {
	case chatEntity.ChannelWidget, chatEntity.ChannelMessenger, chatEntity.ChannelWhatsApp:
		return true
	}
	return false
}

// SendMessage POST /widget/message
func (h *WidgetHandler) SendMessage(c *gin.Context) {
	var req chatRequest.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zlog.Warn(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		back.Result(c, nil, xerr.ErrEmptyMessage)
		return
	}
	channel := chatService.NormalizeChannel(req.Channel)
	if !validChannel(channel) {
		back.Error(c, xerr.BadRequest, "unsupported channel")
		return
	}

	data, err := h.router.ProcessMessage(c.Request.Context(), chatService.InboundMessage{
		TenantKey:   c.GetString(apikey.CtxTenantID),
		Text:        req.Message,
		SenderId:    req.SenderId,
		Channel:     channel,
		DisplayName: req.DisplayName,
		AvatarUrl:   req.AvatarUrl,
	})
	back.Result(c, data, err)
}

// GetMessages GET /widget/messages?sessionId=&after=
func (h *WidgetHandler) GetMessages(c *gin.Context) {
	var req chatRequest.GetMessageListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	var after time.Time
	if req.After != "" {
		t, err := time.Parse(time.RFC3339Nano, req.After)
		if err != nil {
			back.Error(c, xerr.BadRequest, "after must be RFC3339")
			return
		}
		after = t
	}
	data, err := h.messages.GetMessagesSince(c.Request.Context(), c.GetString(apikey.CtxTenantID), req.SessionId, after, req.Limit)
	back.Result(c, data, err)
}

// GetConfig GET /widget/config
func (h *WidgetHandler) GetConfig(c *gin.Context) {
	data, err := h.tenants.GetWidgetConfig(c.Request.Context(), c.GetString(apikey.CtxTenantID))
	back.Result(c, data, err)
}

// RequestAgent POST /widget/requestAgent
func (h *WidgetHandler) RequestAgent(c *gin.Context) {
	var req chatRequest.WidgetRequestAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	sessionID, err := h.sessions.RequestAgentForSender(c.Request.Context(), c.GetString(apikey.CtxTenantID), req.Channel, req.SenderId)
	back.Result(c, gin.H{"sessionId": sessionID}, err)
}
