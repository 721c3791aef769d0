package apikey_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ChatDesk/internal/middleware/apikey"
	"ChatDesk/internal/modules/tenant/domain/entity"
	"ChatDesk/pkg/back"
	"ChatDesk/pkg/xerr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver map[string]*entity.Tenant

func (s stubResolver) Resolve(_ context.Context, key string) (*entity.Tenant, error) {
	if t, ok := s[key]; ok {
		return t, nil
	}
	return nil, xerr.ErrTenantNotFound
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	resolver := stubResolver{
		"cdk_open":   {Id: "T1"},
		"cdk_locked": {Id: "T2", WidgetConfig: entity.WidgetConfig{AllowedOrigins: []string{"https://shop.example"}}},
	}
	r.GET("/widget/config", apikey.Auth(resolver), func(c *gin.Context) {
		back.Success(c, c.GetString(apikey.CtxTenantID))
	})
	return r
}

func call(t *testing.T, r *gin.Engine, key, origin string) back.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/widget/config", nil)
	if key != "" {
		req.Header.Set(apikey.HeaderAPIKey, key)
	}
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var resp back.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestAuth_ResolvesTenant(t *testing.T) {
	resp := call(t, newEngine(), "cdk_open", "https://anything.example")
	assert.Equal(t, xerr.OK, resp.Code)
	assert.Equal(t, "T1", resp.Data)
}

func TestAuth_MissingOrUnknownKey(t *testing.T) {
	r := newEngine()
	assert.Equal(t, xerr.Unauthorized, call(t, r, "", "").Code)
	assert.Equal(t, xerr.Unauthorized, call(t, r, "cdk_nope", "").Code)
}

func TestAuth_OriginAllowList(t *testing.T) {
	r := newEngine()
	assert.Equal(t, xerr.OK, call(t, r, "cdk_locked", "https://shop.example").Code)
	assert.Equal(t, xerr.Forbidden, call(t, r, "cdk_locked", "https://evil.example").Code)
	// 服务端调用不带 Origin
	assert.Equal(t, xerr.OK, call(t, r, "cdk_locked", "").Code)
}
