package gateway

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/nao1215/webex-gateway/internal/config"
	"github.com/nao1215/webex-gateway/internal/metrics"
	"github.com/nao1215/webex-gateway/pkg/middleware"
	"github.com/nao1215/webex-gateway/pkg/problem"
	"github.com/nao1215/webex-gateway/pkg/webex"
)

// Server はゲートウェイのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// core は3つのゲートウェイ操作の実装。
	core *Core
	// jwtSecret は呼び出し元認証用の秘密鍵。空の場合は認証しない。
	jwtSecret string
}

// NewServer は設定から新しいゲートウェイサーバーを生成する。
// アクセストークンが設定されていない場合はエラーを返す。
func NewServer(cfg *config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定が不正です: %w", err)
	}
	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}

	client := webex.New(
		cfg.Webex.BaseURL,
		cfg.Webex.AccessToken.Token(),
		webex.WithObserver(metrics.ObserveUpstream),
	)

	return newServer(cfg.Server, NewCore(client)), nil
}

// newServer はCoreを受け取ってルーティングを組み立てる。
func newServer(cfg config.ServerConfig, core *Core) *Server {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(metrics.Middleware())
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	s := &Server{
		router:    router,
		port:      cfg.Port,
		core:      core,
		jwtSecret: cfg.JWTSecret,
	}
	s.setupRoutes()

	return s
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// Handler はルーターをhttp.Handlerとして返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	api.Use(middleware.Faults())
	if s.jwtSecret != "" {
		api.Use(middleware.JWTAuth(s.jwtSecret))
	}
	{
		// 会議
		api.POST("/meetings", s.handleCreateMeeting())
		api.POST("/meetings/join", s.handleJoinMeeting())

		// ゲスト
		api.POST("/guests/token", s.handleIssueGuestToken())
	}

	// メトリクス
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "gateway"})
	})
}

// handleCreateMeeting は会議作成を処理するハンドラを返す。
func (s *Server) handleCreateMeeting() gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := s.core.CreateMeeting(c.Request.Context())
		s.respond(c, res, err)
	}
}

// handleJoinMeeting はゲストとしての会議参加を処理するハンドラを返す。
func (s *Server) handleJoinMeeting() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req JoinRequest
		if !bindJSON(c, &req) {
			return
		}
		res, err := s.core.JoinMeeting(c.Request.Context(), req)
		s.respond(c, res, err)
	}
}

// handleIssueGuestToken はゲストトークンの発行を処理するハンドラを返す。
func (s *Server) handleIssueGuestToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GuestTokenRequest
		if !bindJSON(c, &req) {
			return
		}
		res, err := s.core.IssueGuestToken(c.Request.Context(), req)
		s.respond(c, res, err)
	}
}

// bindJSON はリクエストボディをobjにデコードする。空のボディは {} として扱う。
// JSONが不正な場合は400のProblemを書き込んでfalseを返す。
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		problem.Write(c, problem.New(http.StatusBadRequest, "リクエストボディのJSONが不正です"))
		return false
	}
	return true
}

// respond はCoreの結果を呼び出し元へのレスポンスに変換する。
// 上流のボディは成功時も失敗時も一切加工しない。
func (s *Server) respond(c *gin.Context, res *webex.Result, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		problem.Write(c, problem.Validation(verr.Error(), verr.Fields))
	case err != nil:
		// 通信エラーはFaultsミドルウェアが500として返す
		_ = c.Error(err)
		c.Abort()
	case !res.OK():
		log.Warn().
			Str("path", c.FullPath()).
			Int("upstream_status", res.StatusCode).
			Str("request_id", c.GetString(problem.ContextKeyRequestID)).
			Msg("上流プラットフォームがエラーを返しました")
		problem.Write(c, problem.FromUpstream(res.StatusCode, res.Body))
	default:
		contentType := res.ContentType
		if contentType == "" {
			contentType = "application/json"
		}
		c.Data(res.StatusCode, contentType, res.Body)
	}
}
