// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供する。
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// EnvProduction は本番環境を表すAPP_ENVの値。
	EnvProduction = "production"

	defaultTokenSecret = "dev-secret-key"
)

// Config はアプリケーションの設定を保持する構造体。
type Config struct {
	// Port はHTTPサーバーのリッスンポート。
	Port string
	// Environment は実行環境（development / production など）。
	Environment string
	// TokenSecret はセッショントークンの署名に使う共有秘密鍵。
	TokenSecret string
	// DatabaseURL はアカウントストアの接続先。postgres:// 以外はSQLiteのDSNとして扱う。
	DatabaseURL string
	// FrontendURLs はCORSで許可するオリジン。
	FrontendURLs []string
	// BcryptCost はパスワードハッシュのコスト。0の場合はライブラリの既定値。
	BcryptCost int
	// LogLevel はzerologのログレベル。
	LogLevel string
	// LogFormat はログの出力形式（json / console）。
	LogFormat string
}

// Load は環境変数から設定を読み込む。
// カレントディレクトリに .env があれば先に読み込む（既存の環境変数は上書きしない）。
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf(".envの読み込みに失敗: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv は環境変数の取得関数から設定を組み立てる。
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Port:         getEnvOr(getenv, "PORT", "8080"),
		Environment:  getEnvOr(getenv, "APP_ENV", "development"),
		TokenSecret:  getenv("TOKEN_SECRET"),
		DatabaseURL:  getEnvOr(getenv, "DATABASE_URL", "credgate.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"),
		FrontendURLs: splitList(getEnvOr(getenv, "FRONTEND_URLS", "http://localhost:3000")),
		LogLevel:     getEnvOr(getenv, "LOG_LEVEL", "info"),
		LogFormat:    getEnvOr(getenv, "LOG_FORMAT", "json"),
	}

	if v := getenv("BCRYPT_COST"); v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("BCRYPT_COST が整数ではありません: %w", err)
		}
		cfg.BcryptCost = cost
	}

	if cfg.TokenSecret == "" && !cfg.Production() {
		cfg.TokenSecret = defaultTokenSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Production は本番環境かどうかを返す。Cookieのsecure属性はこの値に従う。
func (c *Config) Production() bool {
	return c.Environment == EnvProduction
}

// Validate は設定の妥当性を検証する。
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT が設定されていません")
	}
	if c.TokenSecret == "" {
		return errors.New("本番環境では TOKEN_SECRET が必須です")
	}
	if c.Production() && c.TokenSecret == defaultTokenSecret {
		return errors.New("本番環境で開発用の TOKEN_SECRET は使用できません")
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL が設定されていません")
	}
	return nil
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(getenv func(string) string, key, defaultValue string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
