package handler

import (
	"context"

	"ChatDesk/internal/middleware/jwt"
	chatRequest "ChatDesk/internal/modules/chat/application/dto/request"
	"ChatDesk/internal/modules/chat/application/service"
	"ChatDesk/pkg/back"
	"ChatDesk/pkg/xerr"
	"ChatDesk/pkg/zlog"

	"github.com/gin-gonic/gin"
)

// SessionHandler 运营后台的会话接口，租户取自 JWT
type SessionHandler struct {
	svc      service.SessionService
	messages service.MessageService
}

func NewSessionHandler(svc service.SessionService, messages service.MessageService) *SessionHandler {
	return &SessionHandler{svc: svc, messages: messages}
}

func (h *SessionHandler) ListSessions(c *gin.Context) {
	var req chatRequest.ListSessionsRequest
	_ = c.ShouldBindQuery(&req)
	data, err := h.svc.ListSessions(c.Request.Context(), c.GetString(jwt.CtxTenantID), req.Status)
	back.Result(c, data, err)
}

func (h *SessionHandler) GetMessages(c *gin.Context) {
	data, err := h.messages.GetMessages(c.Request.Context(), c.GetString(jwt.CtxTenantID), c.Param("id"))
	back.Result(c, data, err)
}

// simple 只需要会话 ID 的操作
func (h *SessionHandler) simple(op func(ctx context.Context, tenantID, sessionID string) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := op(c.Request.Context(), c.GetString(jwt.CtxTenantID), c.Param("id"))
		back.Result(c, nil, err)
	}
}

func (h *SessionHandler) RequestAgent() gin.HandlerFunc { return h.simple(h.svc.RequestAgent) }
func (h *SessionHandler) RejectAgent() gin.HandlerFunc  { return h.simple(h.svc.RejectAgent) }
func (h *SessionHandler) EndAgentChat() gin.HandlerFunc { return h.simple(h.svc.EndAgentChat) }
func (h *SessionHandler) MarkAsRead() gin.HandlerFunc   { return h.simple(h.svc.MarkAsRead) }
func (h *SessionHandler) Clear() gin.HandlerFunc        { return h.simple(h.svc.ClearConversation) }
func (h *SessionHandler) Delete() gin.HandlerFunc       { return h.simple(h.svc.DeleteSession) }
func (h *SessionHandler) Block() gin.HandlerFunc        { return h.simple(h.svc.BlockUser) }
func (h *SessionHandler) Unblock() gin.HandlerFunc      { return h.simple(h.svc.UnblockUser) }
func (h *SessionHandler) Restrict() gin.HandlerFunc     { return h.simple(h.svc.RestrictSession) }
func (h *SessionHandler) Unrestrict() gin.HandlerFunc   { return h.simple(h.svc.UnrestrictSession) }

// AcceptAgent 未传 agentName 时使用令牌里的坐席名
func (h *SessionHandler) AcceptAgent(c *gin.Context) {
	var req chatRequest.AcceptAgentRequest
	_ = c.ShouldBindJSON(&req)
	name := req.AgentName
	if name == "" {
		name = c.GetString(jwt.CtxAgentName)
	}
	err := h.svc.AcceptAgent(c.Request.Context(), c.GetString(jwt.CtxTenantID), c.Param("id"), name)
	back.Result(c, nil, err)
}

func (h *SessionHandler) Reply(c *gin.Context) {
	var req chatRequest.AgentMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zlog.Warn(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.SendAgentMessage(c.Request.Context(), c.GetString(jwt.CtxTenantID), c.Param("id"), c.GetString(jwt.CtxAgentName), req.Content)
	back.Result(c, data, err)
}

func (h *SessionHandler) Rename(c *gin.Context) {
	var req chatRequest.RenameEndUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	err := h.svc.RenameEndUser(c.Request.Context(), c.GetString(jwt.CtxTenantID), c.Param("id"), req.Name)
	back.Result(c, nil, err)
}
