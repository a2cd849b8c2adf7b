// Webexゲートウェイのエントリポイント。
// SPAからの会議作成・会議参加・ゲストトークン発行をWebex REST APIへ中継する。
// Webexのアクセストークンはこのプロセスだけが保持し、ブラウザには渡さない。
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := newRootCmd().Execute(); err != nil {
		log.Fatal().Err(err).Msg("Gatewayサービスの実行に失敗")
	}
}
