package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/webex-gateway/internal/config"
	"github.com/nao1215/webex-gateway/pkg/middleware"
	"github.com/nao1215/webex-gateway/pkg/problem"
	"github.com/nao1215/webex-gateway/pkg/webex"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	// testAccessToken はテスト用のWebexアクセストークン。
	testAccessToken = "test-webex-access-token"
	// testJWTSecret はテスト用のJWT署名秘密鍵。
	testJWTSecret = "test-secret-key"
	// testOrigin はテスト用に許可するオリジン。
	testOrigin = "http://localhost:4200"
)

// backendRequest はモック上流が受け取ったリクエスト。
type backendRequest struct {
	Path          string
	Authorization string
	Body          []byte
}

// mockBackend はWebex APIを模したテストサーバー。
type mockBackend struct {
	*httptest.Server

	mu       sync.Mutex
	requests []backendRequest
}

// received は受信したリクエストのコピーを返す。
func (b *mockBackend) received() []backendRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]backendRequest(nil), b.requests...)
}

// newMockBackend はstatus/bodyで応答するモック上流を生成する。
func newMockBackend(t *testing.T, status int, body string) *mockBackend {
	t.Helper()

	b := &mockBackend{}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqBody, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.requests = append(b.requests, backendRequest{
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			Body:          reqBody,
		})
		b.mu.Unlock()

		w.Header().Set("Content-Type", "application/json;charset=UTF-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(b.Close)

	return b
}

// newTestServer はモック上流に接続するテスト用ゲートウェイサーバーを生成する。
func newTestServer(t *testing.T, baseURL string, jwtSecret string) *Server {
	t.Helper()

	client := webex.New(baseURL+"/v1", testAccessToken)
	return newServer(config.ServerConfig{
		Port:           "0",
		AllowedOrigins: []string{testOrigin},
		JWTSecret:      jwtSecret,
	}, NewCore(client))
}

// post はボディ付きのPOSTリクエストを送る。
func post(s *Server, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(http.MethodPost, path, r)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// decodeProblem はレスポンスをProblemとしてデコードする。
func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) problem.Problem {
	t.Helper()

	assert.Equal(t, problem.ContentType, w.Header().Get("Content-Type"))
	var p problem.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p), "body = %s", w.Body.String())
	return p
}

// TestNewServer はNewServer関数を検証する。
func TestNewServer(t *testing.T) {
	t.Parallel()

	t.Run("アクセストークンが無い場合はエラーになること", func(t *testing.T) {
		t.Parallel()

		s, err := NewServer(&config.Config{})
		require.ErrorIs(t, err, config.ErrMissingCredential)
		assert.Nil(t, s)
	})

	t.Run("アクセストークンがあればサーバーが生成されること", func(t *testing.T) {
		t.Parallel()

		s, err := NewServer(&config.Config{
			Webex:  config.WebexConfig{AccessToken: "token"},
			Server: config.ServerConfig{Port: "8080"},
		})
		require.NoError(t, err)
		require.NotNil(t, s)
		assert.NotNil(t, s.Handler())
	})
}

// TestHandleCreateMeeting は会議作成ハンドラのテスト。
func TestHandleCreateMeeting(t *testing.T) {
	t.Parallel()

	t.Run("上流のレスポンスがそのまま返ること", func(t *testing.T) {
		t.Parallel()

		const upstreamBody = `{"id":"870f51ff287b41be84648412901e0402","meetingNumber":"123456789","password":"BgJep@43"}`
		backend := newMockBackend(t, http.StatusOK, upstreamBody)
		s := newTestServer(t, backend.URL, "")

		w := post(s, "/api/meetings", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, upstreamBody, w.Body.String())
		assert.Equal(t, "application/json;charset=UTF-8", w.Header().Get("Content-Type"))

		reqs := backend.received()
		require.Len(t, reqs, 1)
		assert.Equal(t, "/v1/meetings", reqs[0].Path)
		assert.Equal(t, "Bearer "+testAccessToken, reqs[0].Authorization)

		var payload webex.CreateMeetingRequest
		require.NoError(t, json.Unmarshal(reqs[0].Body, &payload))
		assert.True(t, strings.HasPrefix(payload.Title, "G2G Meeting "))
		assert.True(t, payload.EnabledJoinBeforeHost)
	})

	t.Run("上流のエラーボディがdetailにそのまま入ること", func(t *testing.T) {
		t.Parallel()

		backend := newMockBackend(t, http.StatusBadRequest, `{"error":"bad"}`)
		s := newTestServer(t, backend.URL, "")

		w := post(s, "/api/meetings", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		p := decodeProblem(t, w)
		assert.Equal(t, `{"error":"bad"}`, p.Detail)
		assert.Equal(t, http.StatusBadRequest, p.UpstreamStatus)
		assert.Equal(t, w.Header().Get(middleware.HeaderRequestID), p.TraceID)
	})

	t.Run("上流のエラーボディが空でもdetailが空文字列で返ること", func(t *testing.T) {
		t.Parallel()

		backend := newMockBackend(t, http.StatusServiceUnavailable, "")
		s := newTestServer(t, backend.URL, "")

		w := post(s, "/api/meetings", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		var raw map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
		detail, ok := raw["detail"]
		require.True(t, ok, "detailキーが出力されること: %s", w.Body.String())
		assert.Equal(t, "", detail)
		assert.EqualValues(t, http.StatusServiceUnavailable, raw["upstreamStatus"])
	})

	t.Run("上流に接続できない場合は500のProblemが返ること", func(t *testing.T) {
		t.Parallel()

		backend := newMockBackend(t, http.StatusOK, `{}`)
		baseURL := backend.URL
		backend.Close()
		s := newTestServer(t, baseURL, "")

		w := post(s, "/api/meetings", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		p := decodeProblem(t, w)
		assert.Equal(t, "内部サーバーエラーが発生しました", p.Detail)
		assert.Zero(t, p.UpstreamStatus)
	})
}

// TestHandleJoinMeeting は会議参加ハンドラのテスト。
func TestHandleJoinMeeting(t *testing.T) {
	t.Parallel()

	badRequests := []struct {
		name       string
		body       string
		wantFields []string
	}{
		{name: "ボディが空の場合", body: "", wantFields: []string{"meetingId", "password"}},
		{name: "空のオブジェクトの場合", body: `{}`, wantFields: []string{"meetingId", "password"}},
		{name: "passwordが無い場合", body: `{"meetingId":"x"}`, wantFields: []string{"password"}},
		{name: "meetingIdが空文字列の場合", body: `{"meetingId":"","password":"p"}`, wantFields: []string{"meetingId"}},
		{name: "JSONが不正な場合", body: `{"meetingId":`},
		{name: "値が文字列でない場合", body: `{"meetingId":1,"password":"p"}`},
	}
	for _, tt := range badRequests {
		t.Run(tt.name+"は400を返し上流を呼ばないこと", func(t *testing.T) {
			t.Parallel()

			backend := newMockBackend(t, http.StatusOK, `{}`)
			s := newTestServer(t, backend.URL, "")

			w := post(s, "/api/meetings/join", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			p := decodeProblem(t, w)
			assert.Equal(t, tt.wantFields, p.MissingFields)
			assert.Empty(t, backend.received(), "上流が呼ばれてはならない")
		})
	}

	t.Run("ゲスト識別情報を付けて上流に転送すること", func(t *testing.T) {
		t.Parallel()

		const upstreamBody = `{"joinLink":"https://example.webex.com/join/abc"}`
		backend := newMockBackend(t, http.StatusOK, upstreamBody)
		s := newTestServer(t, backend.URL, "")

		w := post(s, "/api/meetings/join", `{"meetingId":"m1","password":"p1"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, upstreamBody, w.Body.String())

		reqs := backend.received()
		require.Len(t, reqs, 1)
		assert.Equal(t, "/v1/meetings/join", reqs[0].Path)

		var payload map[string]any
		require.NoError(t, json.Unmarshal(reqs[0].Body, &payload))
		assert.Equal(t, "m1", payload["meetingId"])
		assert.Equal(t, "p1", payload["password"])
		assert.Equal(t, false, payload["joinDirectly"])
		assert.Regexp(t, emailRegexp, payload["email"])
		assert.Regexp(t, displayNameRegexp, payload["displayName"])
	})

	t.Run("上流のエラーはdetailにそのまま入ること", func(t *testing.T) {
		t.Parallel()

		const upstreamBody = `{"message":"Password is incorrect.","trackingId":"ROUTER_123"}`
		backend := newMockBackend(t, http.StatusForbidden, upstreamBody)
		s := newTestServer(t, backend.URL, "")

		w := post(s, "/api/meetings/join", `{"meetingId":"m1","password":"wrong"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		p := decodeProblem(t, w)
		assert.Equal(t, upstreamBody, p.Detail)
		assert.Equal(t, http.StatusForbidden, p.UpstreamStatus)
	})
}

// TestHandleIssueGuestToken はゲストトークン発行ハンドラのテスト。
func TestHandleIssueGuestToken(t *testing.T) {
	t.Parallel()

	t.Run("ボディが空の場合は既定値で発行すること", func(t *testing.T) {
		t.Parallel()

		const upstreamBody = `{"accessToken":"eyJ...","expiresIn":3600}`
		backend := newMockBackend(t, http.StatusOK, upstreamBody)
		s := newTestServer(t, backend.URL, "")

		w := post(s, "/api/guests/token", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, upstreamBody, w.Body.String())

		reqs := backend.received()
		require.Len(t, reqs, 1)
		assert.Equal(t, "/v1/guests/token", reqs[0].Path)

		var payload webex.GuestTokenRequest
		require.NoError(t, json.Unmarshal(reqs[0].Body, &payload))
		assert.Regexp(t, subjectRegexp, payload.Subject)
		assert.Equal(t, "Anonymous Guest", payload.DisplayName)
	})

	t.Run("指定した値が完全にそのまま送られること", func(t *testing.T) {
		t.Parallel()

		backend := newMockBackend(t, http.StatusOK, `{}`)
		s := newTestServer(t, backend.URL, "")

		w := post(s, "/api/guests/token", `{"subject":"s1","displayName":"d1"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		reqs := backend.received()
		require.Len(t, reqs, 1)
		assert.JSONEq(t, `{"subject":"s1","displayName":"d1"}`, string(reqs[0].Body))
	})

	t.Run("上流のエラーはdetailにそのまま入ること", func(t *testing.T) {
		t.Parallel()

		backend := newMockBackend(t, http.StatusUnauthorized, `{"message":"The request requires a valid access token set in the Authorization request header."}`)
		s := newTestServer(t, backend.URL, "")

		w := post(s, "/api/guests/token", `{}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		p := decodeProblem(t, w)
		assert.Equal(t, `{"message":"The request requires a valid access token set in the Authorization request header."}`, p.Detail)
	})
}

// TestCallerAuthentication はJWT秘密鍵を設定した場合の呼び出し元認証を検証する。
func TestCallerAuthentication(t *testing.T) {
	t.Parallel()

	t.Run("トークンが無い場合は401を返し上流を呼ばないこと", func(t *testing.T) {
		t.Parallel()

		backend := newMockBackend(t, http.StatusOK, `{}`)
		s := newTestServer(t, backend.URL, testJWTSecret)

		w := post(s, "/api/meetings", "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, backend.received())
	})

	t.Run("有効なトークンがあれば転送されること", func(t *testing.T) {
		t.Parallel()

		backend := newMockBackend(t, http.StatusOK, `{"id":"m"}`)
		s := newTestServer(t, backend.URL, testJWTSecret)

		token, err := middleware.GenerateJWT(testJWTSecret, "spa-frontend", time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/api/meetings", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		reqs := backend.received()
		require.Len(t, reqs, 1)
		assert.Equal(t, "Bearer "+testAccessToken, reqs[0].Authorization, "呼び出し元のトークンではなくWebexのトークンが送られること")
	})

	t.Run("秘密鍵が無い場合は認証しないこと", func(t *testing.T) {
		t.Parallel()

		backend := newMockBackend(t, http.StatusOK, `{}`)
		s := newTestServer(t, backend.URL, "")

		w := post(s, "/api/meetings", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

// TestAmbientRoutes はヘルスチェック・メトリクス・CORSを検証する。
func TestAmbientRoutes(t *testing.T) {
	t.Parallel()

	t.Run("ヘルスチェックが200を返すこと", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, "http://127.0.0.1:1", testJWTSecret)

		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok","service":"gateway"}`, w.Body.String())
	})

	t.Run("メトリクスが公開されること", func(t *testing.T) {
		t.Parallel()

		backend := newMockBackend(t, http.StatusOK, `{}`)
		s := newTestServer(t, backend.URL, "")
		post(s, "/api/guests/token", "")

		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "gateway_http_requests_total")
	})

	t.Run("許可オリジンからのプリフライトに204を返すこと", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, "http://127.0.0.1:1", testJWTSecret)

		req := httptest.NewRequest(http.MethodOptions, "/api/meetings/join", nil)
		req.Header.Set("Origin", testOrigin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "content-type")
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, testOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "content-type", w.Header().Get("Access-Control-Allow-Headers"))
	})
}
