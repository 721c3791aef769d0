package ssl

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
)

// TlsHandler 统一安全响应头；enableTLS 时把明文请求重定向到 https
func TlsHandler(host string, port int, enableTLS bool) gin.HandlerFunc {
	secureMiddleware := secure.New(secure.Options{
		SSLRedirect:        enableTLS,
		SSLHost:            host + ":" + strconv.Itoa(port),
		FrameDeny:          false,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	})
	return func(c *gin.Context) {
		// Process 出错时已写入重定向响应
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}
		c.Next()
	}
}
