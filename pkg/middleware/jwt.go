package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

const (
	// AccessTokenCookie はセッショントークンを運ぶCookieの名前。
	AccessTokenCookie = "access_token"
	// TokenTTL はセッショントークンの有効期間。
	TokenTTL = time.Hour
)

// contextKeyAccountID はGinコンテキストにアカウントIDを格納するキー。
const contextKeyAccountID = "account_id"

// ErrNoToken はCookieにトークンが含まれていないことを表す。
var ErrNoToken = errors.New("トークンがありません")

// Claims はセッショントークンのペイロード。
// JSONにすると {"id": ..., "iat": ..., "exp": ...} になる。
type Claims struct {
	// AccountID は認証済みアカウントの一意識別子。
	AccountID string `json:"id"`
	jwt.RegisteredClaims
}

// IssueToken はアカウントIDを埋め込んだHS256トークンを発行する。
// 有効期限は発行から TokenTTL 後。
func IssueToken(secret, accountID string) (string, error) {
	return issueToken(secret, accountID, time.Now())
}

func issueToken(secret, accountID string, issuedAt time.Time) (string, error) {
	claims := Claims{
		AccountID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("JWTトークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// ParseToken はトークンの署名と有効期限を検証し、ペイロードを返す。
// HS256以外のアルゴリズムで署名されたトークンは拒否する。
func ParseToken(secret, tokenString string) (*Claims, error) {
	keyFunc := func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("トークンの検証に失敗: %w", err)
	}
	if !token.Valid || claims.AccountID == "" {
		return nil, errors.New("トークンが無効です")
	}
	return claims, nil
}

// TokenFromCookie はリクエストのCookieからセッショントークンを取り出す。
func TokenFromCookie(c *gin.Context) (string, error) {
	token, err := c.Cookie(AccessTokenCookie)
	if err != nil || token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// CookieAuth はaccess_token Cookieのトークンを検証するGinミドルウェアを返す。
// 検証に成功した場合、コンテキストにアカウントIDを設定する。
func CookieAuth(secret string, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := TokenFromCookie(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "not authenticated",
			})
			return
		}

		claims, err := ParseToken(secret, tokenString)
		if err != nil {
			logger.Warn().Err(err).Str("path", c.Request.URL.Path).Msg("トークンの検証に失敗")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "invalid token",
			})
			return
		}

		c.Set(contextKeyAccountID, claims.AccountID)
		c.Next()
	}
}

// GetAccountID はGinコンテキストからアカウントIDを取得する。
// CookieAuthミドルウェアが事前に適用されている必要がある。
func GetAccountID(c *gin.Context) string {
	accountID, _ := c.Get(contextKeyAccountID)
	if id, ok := accountID.(string); ok {
		return id
	}
	return ""
}
