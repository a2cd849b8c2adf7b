package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nao1215/webex-gateway/internal/config"
	"github.com/nao1215/webex-gateway/internal/gateway"
)

// newRootCmd はゲートウェイを起動するルートコマンドを生成する。
func newRootCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "gateway",
		Short: "Webex guest-meeting gateway",
		Long: `SPAからの会議作成・会議参加・ゲストトークン発行をWebex REST APIへ中継するHTTPサーバーを起動する。
Webexのアクセストークン（WEBEX_ACCESS_TOKEN）が必須。`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return serve(configFile)
		},
	}
	cmd.PersistentFlags().StringVar(&configFile, "config", os.Getenv("CONFIG_FILE"),
		"設定ファイルのパス（既定は ./config.yaml または /etc/webex-gateway/config.yaml）")

	cmd.AddCommand(newTokenCmd(&configFile))
	return cmd
}

// serve は設定を読み込んでゲートウェイを起動する。
func serve(configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("設定の読み込みに失敗: %w", err)
	}
	cfg.Log.ConfigureZerolog()

	server, err := gateway.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("Gatewayサーバーの初期化に失敗: %w", err)
	}

	log.Info().
		Str("port", cfg.Server.Port).
		Str("webex_base_url", cfg.Webex.BaseURL).
		Stringer("webex_access_token", cfg.Webex.AccessToken).
		Strs("allowed_origins", cfg.Server.AllowedOrigins).
		Bool("caller_auth", cfg.Server.JWTSecret != "").
		Msg("Gatewayサービスを起動します")
	return server.Run()
}
