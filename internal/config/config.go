// Package config はゲートウェイの設定を読み込む。
//
// 設定ファイル（config.yaml、任意）と環境変数から値を読み込み、環境変数を優先する。
// Webexのアクセストークンは必須で、未設定の場合は起動を中止する。
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/nao1215/webex-gateway/pkg/webex"
)

// ErrMissingCredential はWebexのアクセストークンが設定されていないことを表す。
var ErrMissingCredential = errors.New("webex.access_token（WEBEX_ACCESS_TOKEN）が設定されていません")

// ErrMissingJWTSecret は呼び出し元認証用の秘密鍵が設定されていないことを表す。
var ErrMissingJWTSecret = errors.New("server.jwt_secret（GATEWAY_JWT_SECRET）が設定されていません")

// Credential はWebex APIのBearerトークン。
// String()は値を伏せるため、ログやエラーメッセージに誤って出力されない。
type Credential string

// String は伏字を返す。
func (c Credential) String() string {
	if c == "" {
		return ""
	}
	return "[REDACTED]"
}

// Token はトークンの生の値を返す。
func (c Credential) Token() string {
	return string(c)
}

// Config はゲートウェイ全体の設定。
type Config struct {
	// Webex は上流プラットフォームの設定。
	Webex WebexConfig `mapstructure:"webex"`
	// Server はHTTPサーバーの設定。
	Server ServerConfig `mapstructure:"server"`
	// Log はログ出力の設定。
	Log LogConfig `mapstructure:"log"`
}

// WebexConfig は上流プラットフォームの設定。
type WebexConfig struct {
	// AccessToken はサービスアプリのアクセストークン。
	AccessToken Credential `mapstructure:"access_token"`
	// BaseURL はWebex REST APIのベースURL。
	BaseURL string `mapstructure:"base_url"`
}

// ServerConfig はHTTPサーバーの設定。
type ServerConfig struct {
	// Port はリッスンポート。
	Port string `mapstructure:"port"`
	// AllowedOrigins はCORSで許可するオリジン。
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// JWTSecret は呼び出し元認証用のHS256秘密鍵。空の場合は認証しない。
	JWTSecret string `mapstructure:"jwt_secret"`
	// GinMode はGinの動作モード（debug/release/test）。
	GinMode string `mapstructure:"gin_mode"`
}

// LogConfig はログ出力の設定。
type LogConfig struct {
	// Level はログレベル（trace/debug/info/warn/error）。
	Level string `mapstructure:"level"`
	// Format は出力形式（console/json）。
	Format string `mapstructure:"format"`
}

// envBindings は設定キーと環境変数名の対応。
var envBindings = map[string]string{
	"webex.access_token":     "WEBEX_ACCESS_TOKEN",
	"webex.base_url":         "WEBEX_BASE_URL",
	"server.port":            "PORT",
	"server.allowed_origins": "ALLOWED_ORIGINS",
	"server.jwt_secret":      "GATEWAY_JWT_SECRET",
	"server.gin_mode":        "GIN_MODE",
	"log.level":              "LOG_LEVEL",
	"log.format":             "LOG_FORMAT",
}

// Load は設定を読み込み、Webexのアクセストークンが設定されていることを検証する。
func Load(configFile string) (*Config, error) {
	cfg, err := Read(configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read は設定を読み込む。必須項目の検証はしない。
// configFileが空の場合はカレントディレクトリと/etc/webex-gatewayからconfig.yamlを探し、
// 見つからなければ環境変数と既定値だけで構成する。
func Read(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("webex.base_url", webex.DefaultBaseURL)
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:4200"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("環境変数 %s のバインドに失敗: %w", env, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/webex-gateway")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("設定のデコードに失敗: %w", err)
	}
	return &cfg, nil
}

// Validate は必須項目が設定されていることを検証する。
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Webex.AccessToken.Token()) == "" {
		return ErrMissingCredential
	}
	return nil
}

// ConfigureZerolog はログ設定をグローバルロガーに反映する。
func (l *LogConfig) ConfigureZerolog() {
	level, err := zerolog.ParseLevel(strings.ToLower(l.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if strings.EqualFold(l.Format, "json") {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}
