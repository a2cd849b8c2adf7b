package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/nao1215/webex-gateway/pkg/problem"
)

// Issuer はゲートウェイが発行するJWTのiss。
const Issuer = "webex-gateway"

// contextKeyClientID は認証済みクライアントIDをGinコンテキストに格納するキー。
const contextKeyClientID = "client_id"

// JWTClaims はゲートウェイ呼び出し元のJWTクレーム。
type JWTClaims struct {
	jwt.RegisteredClaims
	// ClientID は呼び出し元アプリケーションの識別子。
	ClientID string `json:"client_id"`
}

// GenerateJWT は呼び出し元クライアント用のJWTトークンを生成する。
// 有効期限はttl後。
func GenerateJWT(secret, clientID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    Issuer,
			Subject:   clientID,
		},
		ClientID: clientID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("JWTトークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// JWTAuth はJWTトークンを検証するGinミドルウェアを返す。
// HS256以外のアルゴリズムで署名されたトークンは拒否する。
// 検証に成功した場合、コンテキストに "client_id" を設定する。
func JWTAuth(secret string) gin.HandlerFunc {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
	)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			problem.Write(c, problem.New(http.StatusUnauthorized, "Authorizationヘッダーが必要です"))
			return
		}

		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			problem.Write(c, problem.New(http.StatusUnauthorized, "Bearer トークン形式が不正です"))
			return
		}

		claims := &JWTClaims{}
		token, err := parser.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			problem.Write(c, problem.New(http.StatusUnauthorized, "トークンが無効です"))
			return
		}

		c.Set(contextKeyClientID, claims.ClientID)
		c.Next()
	}
}

// GetClientID はGinコンテキストから認証済みクライアントIDを取得する。
// JWTAuthミドルウェアが適用されていない場合は空文字列を返す。
func GetClientID(c *gin.Context) string {
	clientID, _ := c.Get(contextKeyClientID)
	if id, ok := clientID.(string); ok {
		return id
	}
	return ""
}
