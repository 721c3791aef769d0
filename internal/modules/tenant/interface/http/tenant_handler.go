package handler

import (
	"ChatDesk/internal/middleware/jwt"
	"ChatDesk/internal/modules/tenant/application/dto/request"
	"ChatDesk/internal/modules/tenant/application/service"
	"ChatDesk/pkg/back"
	"ChatDesk/pkg/xerr"
	"ChatDesk/pkg/zlog"

	"github.com/gin-gonic/gin"
)

type TenantHandler struct {
	svc service.TenantService
}

func NewTenantHandler(svc service.TenantService) *TenantHandler {
	return &TenantHandler{svc: svc}
}

// Create POST /tenants
func (h *TenantHandler) Create(c *gin.Context) {
	var req request.CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zlog.Warn(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.Create(c.Request.Context(), req)
	back.Result(c, data, err)
}

// GetSettings GET /tenant/settings
func (h *TenantHandler) GetSettings(c *gin.Context) {
	data, err := h.svc.GetSettings(c.Request.Context(), c.GetString(jwt.CtxTenantID))
	back.Result(c, data, err)
}

// UpdateSettings PUT /tenant/settings
func (h *TenantHandler) UpdateSettings(c *gin.Context) {
	var req request.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zlog.Warn(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.UpdateSettings(c.Request.Context(), c.GetString(jwt.CtxTenantID), req)
	back.Result(c, data, err)
}
