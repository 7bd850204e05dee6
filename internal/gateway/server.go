package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/nao1215/credgate/internal/account"
	"github.com/nao1215/credgate/pkg/middleware"
)

// shutdownTimeout はRunがコンテキスト終了後に処理中のリクエストを待つ時間。
const shutdownTimeout = 10 * time.Second

// Options はServerの生成時に外部から与える設定。
type Options struct {
	// Port はサーバーのリッスンポート。
	Port string
	// TokenSecret はセッショントークンの署名に使う共有秘密鍵。
	TokenSecret string
	// Production が true の場合、Cookieにsecure属性を付ける。
	Production bool
	// AllowedOrigins はCORSで許可するオリジン。
	AllowedOrigins []string
	// Logger はサーバー側のログ出力先。
	Logger zerolog.Logger
}

// Server は認証ゲートウェイのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// accounts はアカウントの永続化層。
	accounts account.Store
	// tokenSecret はJWT署名用の秘密鍵。
	tokenSecret string
	// production はCookieのsecure属性を決める。
	production bool
	// validate はリクエストスキーマの検証器。
	validate *validator.Validate
	// logger はサーバー側のログ出力先。
	logger zerolog.Logger
}

// NewServer は新しいゲートウェイサーバーを生成する。
func NewServer(accounts account.Store, opts Options) *Server {
	router := gin.New()
	router.Use(middleware.Recovery(opts.Logger))
	router.Use(middleware.RequestLogger(opts.Logger))
	router.Use(middleware.CORS(opts.AllowedOrigins))

	s := &Server{
		router:      router,
		port:        opts.Port,
		accounts:    accounts,
		tokenSecret: opts.TokenSecret,
		production:  opts.Production,
		validate:    newValidator(),
		logger:      opts.Logger,
	}
	s.setupRoutes()

	return s
}

// Handler はルーティング済みのhttp.Handlerを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run はHTTPサーバーを起動し、ctxが終了したらグレースフルシャットダウンする。
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("シャットダウンに失敗: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	// 認証エンドポイント（認証不要）
	auth := s.router.Group("/auth")
	{
		auth.POST("/register", s.handleRegister())
		auth.POST("/login", s.handleLogin())
		auth.POST("/logout", s.handleLogout())
		auth.GET("/verify", s.handleVerify())
	}

	// 認証必須のAPIエンドポイント
	api := s.router.Group("/api/v1")
	api.Use(middleware.CookieAuth(s.tokenSecret, s.logger))
	{
		api.GET("/me", s.handleGetCurrentAccount())
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "credgate"})
	})
}
