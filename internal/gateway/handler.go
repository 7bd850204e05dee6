package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/credgate/internal/account"
	"github.com/nao1215/credgate/pkg/middleware"
)

// クライアントに返すメッセージ。
const (
	msgValidationFailed = "validation failed"
	msgInternal         = "internal server error"
	msgRegistered       = "user created"
	msgLoggedIn         = "user logged in"
	msgLoggedOut        = "user logged out"
	msgNotAuthenticated = "not authenticated"
	msgInvalidToken     = "invalid token"
)

// handleRegister はユーザー登録ハンドラを返す。
// 登録後にアカウントを取得し直し、セッショントークンをCookieに設定する。
func (s *Server) handleRegister() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if !s.bind(c, &req) {
			return
		}

		ctx := c.Request.Context()
		if err := s.accounts.Register(ctx, account.Credentials{
			Email:    req.Email,
			Password: req.Password,
			Username: req.Username,
		}); err != nil {
			s.respondError(c, registerStatus, err, "ユーザー登録に失敗")
			return
		}

		acc, err := s.accounts.GetByEmail(ctx, req.Email)
		if err != nil {
			s.respondError(c, registerStatus, err, "登録済みアカウントの取得に失敗")
			return
		}

		if !s.startSession(c, acc.ID) {
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": msgRegistered,
			"user":    acc,
		})
	}
}

// handleLogin はログインハンドラを返す。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if !s.bind(c, &req) {
			return
		}

		acc, err := s.accounts.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			s.respondError(c, loginStatus, err, "ログインに失敗")
			return
		}

		if !s.startSession(c, acc.ID) {
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": msgLoggedIn,
			"user":    acc,
		})
	}
}

// handleLogout はログアウトハンドラを返す。
// Cookieを削除するだけなので、未ログインでも何度呼んでも200を返す。
func (s *Server) handleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.clearSessionCookie(c)
		c.JSON(http.StatusOK, gin.H{"message": msgLoggedOut})
	}
}

// handleVerify はCookieのセッショントークンを検証し、ペイロードを返すハンドラを返す。
func (s *Server) handleVerify() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := middleware.TokenFromCookie(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": msgNotAuthenticated})
			return
		}

		claims, err := middleware.ParseToken(s.tokenSecret, tokenString)
		if err != nil {
			s.logger.Warn().Err(err).Msg("トークンの検証に失敗")
			c.JSON(http.StatusUnauthorized, gin.H{"message": msgInvalidToken})
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": claims})
	}
}

// handleGetCurrentAccount は認証済みアカウントの情報を返すハンドラを返す。
func (s *Server) handleGetCurrentAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		acc, err := s.accounts.GetByID(c.Request.Context(), middleware.GetAccountID(c))
		if err != nil {
			s.respondError(c, currentAccountStatus, err, "アカウントの取得に失敗")
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": acc})
	}
}

// bind はJSONボディを読み込みスキーマを検証する。
// 失敗した場合は理由を含めずに400を返し、falseを返す。
func (s *Server) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgValidationFailed})
		return false
	}
	if err := s.validate.Struct(req); err != nil {
		s.logger.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("入力検証に失敗")
		c.JSON(http.StatusBadRequest, gin.H{"message": msgValidationFailed})
		return false
	}
	return true
}

// startSession はセッショントークンを発行してCookieに設定する。
// 失敗した場合は500を返し、falseを返す。
func (s *Server) startSession(c *gin.Context, accountID string) bool {
	token, err := middleware.IssueToken(s.tokenSecret, accountID)
	if err != nil {
		s.logger.Error().Err(err).Str("account_id", accountID).Msg("トークン生成に失敗")
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgInternal})
		return false
	}
	s.setSessionCookie(c, token)
	return true
}

// respondError はエラーを操作ごとの対応表で分類してレスポンスを返す。
// 500になるエラーはサーバー側でのみ詳細をログに出力する。
func (s *Server) respondError(c *gin.Context, table statusTable, err error, logMsg string) {
	status, msg := table.classify(err)
	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg(logMsg)
	}
	c.JSON(status, gin.H{"message": msg})
}
