package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/nao1215/webex-gateway/pkg/problem"
)

// Recovery はパニックからの回復を行うGinミドルウェアを返す。
// パニック発生時にログを出力し、500のProblemレスポンスを返す。
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Str("request_id", c.GetString(problem.ContextKeyRequestID)).
					Interface("panic", r).
					Msg("[PANIC] ハンドラでパニックが発生しました")
				problem.Write(c, problem.New(http.StatusInternalServerError, "内部サーバーエラーが発生しました"))
			}
		}()
		c.Next()
	}
}
