// 認証ゲートウェイのエントリポイント。
// ユーザー登録・ログイン・ログアウト・トークン検証を担当し、
// セッショントークンをHTTP-only Cookieとして発行する。
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/nao1215/credgate/internal/account"
	"github.com/nao1215/credgate/internal/config"
	"github.com/nao1215/credgate/internal/gateway"
	"github.com/nao1215/credgate/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("設定の読み込みに失敗")
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	log.Logger = logger

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := account.Open(ctx, cfg.DatabaseURL, account.WithBcryptCost(cfg.BcryptCost))
	if err != nil {
		logger.Fatal().Err(err).Msg("アカウントストアの初期化に失敗")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("アカウントストアのクローズに失敗")
		}
	}()

	server := gateway.NewServer(store, gateway.Options{
		Port:           cfg.Port,
		TokenSecret:    cfg.TokenSecret,
		Production:     cfg.Production(),
		AllowedOrigins: cfg.FrontendURLs,
		Logger:         logger,
	})

	logger.Info().
		Str("port", cfg.Port).
		Str("env", cfg.Environment).
		Str("backend", store.Backend()).
		Msg("認証ゲートウェイを起動します")
	if err := server.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("認証ゲートウェイの起動に失敗")
		return
	}
	logger.Info().Msg("認証ゲートウェイを停止しました")
}
