package http

import (
	"ChatDesk/internal/middleware/jwt"
	aiRequest "ChatDesk/internal/modules/ai/application/dto/request"
	"ChatDesk/internal/modules/ai/application/dto/respond"
	"ChatDesk/internal/modules/ai/application/service"
	"ChatDesk/pkg/back"
	"ChatDesk/pkg/xerr"
	"ChatDesk/pkg/zlog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// KnowledgeHandler 租户知识库接口，租户取自 JWT
type KnowledgeHandler struct {
	svc   service.KnowledgeService
	async service.AsyncIngestService
}

func NewKnowledgeHandler(svc service.KnowledgeService, async service.AsyncIngestService) *KnowledgeHandler {
	return &KnowledgeHandler{svc: svc, async: async}
}

// Add POST /knowledge
func (h *KnowledgeHandler) Add(c *gin.Context) {
	var req aiRequest.AddKnowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zlog.Warn(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	chunk, err := h.svc.AddKnowledge(c.Request.Context(), c.GetString(jwt.CtxTenantID), req.Content, req.Source)
	if err != nil {
		zlog.Warn("add knowledge failed", zap.String("tenant_id", c.GetString(jwt.CtxTenantID)), zap.Error(err))
		back.Result(c, nil, err)
		return
	}
	back.Success(c, respond.AddKnowledgeRespond{Chunk: service.ToChunkItem(chunk)})
}

// Enqueue POST /knowledge/async
func (h *KnowledgeHandler) Enqueue(c *gin.Context) {
	var req aiRequest.AddKnowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	id, err := h.async.EnqueueKnowledge(c.Request.Context(), c.GetString(jwt.CtxTenantID), req.Content, req.Source)
	if err != nil {
		back.Result(c, nil, err)
		return
	}
	back.Success(c, respond.EnqueueKnowledgeRespond{EventId: id})
}

// Query POST /knowledge/query
func (h *KnowledgeHandler) Query(c *gin.Context) {
	var req aiRequest.QueryKnowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	chunks, err := h.svc.QueryKnowledge(c.Request.Context(), c.GetString(jwt.CtxTenantID), req.Query, req.TopK)
	if err != nil {
		back.Result(c, nil, err)
		return
	}
	if chunks == nil {
		chunks = []string{}
	}
	back.Success(c, respond.QueryKnowledgeRespond{Chunks: chunks})
}

// ListSources GET /knowledge/sources
func (h *KnowledgeHandler) ListSources(c *gin.Context) {
	data, err := h.svc.ListSources(c.Request.Context(), c.GetString(jwt.CtxTenantID))
	back.Result(c, data, err)
}

// ListChunks GET /knowledge/chunks?source=
func (h *KnowledgeHandler) ListChunks(c *gin.Context) {
	data, err := h.svc.ListChunks(c.Request.Context(), c.GetString(jwt.CtxTenantID), c.Query("source"))
	back.Result(c, data, err)
}

// DeleteSource DELETE /knowledge/sources?source=
func (h *KnowledgeHandler) DeleteSource(c *gin.Context) {
	var req aiRequest.DeleteKnowledgeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	n, err := h.svc.DeleteKnowledgeBySource(c.Request.Context(), c.GetString(jwt.CtxTenantID), req.Source)
	if err != nil {
		back.Result(c, nil, err)
		return
	}
	back.Success(c, respond.DeleteKnowledgeRespond{Deleted: n})
}
