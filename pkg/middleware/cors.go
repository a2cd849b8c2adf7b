package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	// defaultAllowMethods はプリフライトでメソッドが指定されなかった場合に許可するメソッド。
	defaultAllowMethods = "GET, POST, OPTIONS"
	// defaultAllowHeaders はプリフライトでヘッダーが指定されなかった場合に許可するヘッダー。
	defaultAllowHeaders = "Authorization, Content-Type"
)

// CORS は指定されたオリジンからのクロスオリジンリクエストを許可するGinミドルウェアを返す。
// 許可リストに "*" を含めると全てのオリジンを許可する。
// 許可したオリジンにはプリフライトで要求されたメソッドとヘッダーをそのまま許可する。
func CORS(allowedOrigins []string) gin.HandlerFunc {
	originsSet := make(map[string]struct{}, len(allowedOrigins))
	allowAll := false
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
			continue
		}
		originsSet[o] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		_, allowed := originsSet[origin]
		if origin != "" && (allowed || allowAll) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")

			methods := c.GetHeader("Access-Control-Request-Method")
			if methods == "" {
				methods = defaultAllowMethods
			}
			headers := c.GetHeader("Access-Control-Request-Headers")
			if headers == "" {
				headers = defaultAllowHeaders
			}
			c.Header("Access-Control-Allow-Methods", methods)
			c.Header("Access-Control-Allow-Headers", headers)
			c.Header("Access-Control-Max-Age", "86400")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
