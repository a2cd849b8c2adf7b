package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/nao1215/webex-gateway/pkg/problem"
)

// Faults はハンドラがc.Errorで積んだエラーを500のProblemレスポンスに変換するGinミドルウェアを返す。
// エラーの内容はログにのみ出力し、呼び出し元には返さない。
func Faults() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		for _, e := range c.Errors {
			log.Error().
				Err(e.Err).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Str("request_id", c.GetString(problem.ContextKeyRequestID)).
				Str("client_id", GetClientID(c)).
				Msg("リクエストの処理に失敗しました")
		}
		if c.Writer.Written() {
			return
		}
		problem.Write(c, problem.New(http.StatusInternalServerError, "内部サーバーエラーが発生しました"))
	}
}
