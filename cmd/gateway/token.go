package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/webex-gateway/internal/config"
	"github.com/nao1215/webex-gateway/pkg/middleware"
)

// defaultTokenTTL は発行するJWTの既定の有効期間。
const defaultTokenTTL = 24 * time.Hour

// errInvalidTTL は有効期間が正の値でないことを表す。
var errInvalidTTL = errors.New("有効期間は正の値で指定してください")

// newTokenCmd は呼び出し元認証用のJWTを発行するサブコマンドを生成する。
// トークンはGATEWAY_JWT_SECRETで署名され、ゲートウェイの/api/*で受け付けられる。
func newTokenCmd(configFile *string) *cobra.Command {
	var (
		clientID string
		ttl      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "呼び出し元認証用のJWTを発行する",
		Long: `GATEWAY_JWT_SECRETで署名したHS256のJWTを標準出力に書き出す。
秘密鍵を持てないSPAのために、配信側のバックエンドやデプロイ時にトークンを発行する用途を想定している。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Read(*configFile)
			if err != nil {
				return fmt.Errorf("設定の読み込みに失敗: %w", err)
			}
			token, err := issueCallerToken(cfg.Server, clientID, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&clientID, "client-id", "", "トークンに載せる呼び出し元の識別子")
	cmd.Flags().DurationVar(&ttl, "ttl", defaultTokenTTL, "トークンの有効期間")
	_ = cmd.MarkFlagRequired("client-id")

	return cmd
}

// issueCallerToken はサーバー設定の秘密鍵でJWTを発行する。
func issueCallerToken(cfg config.ServerConfig, clientID string, ttl time.Duration) (string, error) {
	if cfg.JWTSecret == "" {
		return "", config.ErrMissingJWTSecret
	}
	if ttl <= 0 {
		return "", fmt.Errorf("%w: %s", errInvalidTTL, ttl)
	}
	return middleware.GenerateJWT(cfg.JWTSecret, clientID, ttl)
}
