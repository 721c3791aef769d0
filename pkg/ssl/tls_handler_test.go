package ssl

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newEngine(enableTLS bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TlsHandler("example.com", 8443, enableTLS))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func TestTlsHandler_HeadersWithoutRedirect(t *testing.T) {
	w := httptest.NewRecorder()
	newEngine(false).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestTlsHandler_RedirectsPlainHTTP(t *testing.T) {
	w := httptest.NewRecorder()
	newEngine(true).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://example.com/ping", nil))

	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "https://example.com:8443/ping", w.Header().Get("Location"))
	assert.NotContains(t, w.Body.String(), "pong")
}
