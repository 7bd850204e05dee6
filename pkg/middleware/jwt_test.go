package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testSecret はテスト用のJWTシークレット。
const testSecret = "test-secret-key-for-unit-tests"

// TestIssueToken はIssueToken関数を検証する。
func TestIssueToken(t *testing.T) {
	t.Parallel()

	t.Run("正常にトークンを発行できること", func(t *testing.T) {
		t.Parallel()

		tokenStr, err := IssueToken(testSecret, "account-123")
		if err != nil {
			t.Fatalf("IssueToken()でエラーが発生: %v", err)
		}
		if tokenStr == "" {
			t.Fatal("IssueToken()が空文字列を返した")
		}

		claims, err := ParseToken(testSecret, tokenStr)
		if err != nil {
			t.Fatalf("ParseToken()でエラーが発生: %v", err)
		}
		if claims.AccountID != "account-123" {
			t.Errorf("AccountID = %q, want %q", claims.AccountID, "account-123")
		}
	})

	t.Run("トークンの有効期限が1時間後であること", func(t *testing.T) {
		t.Parallel()

		before := time.Now()
		tokenStr, err := IssueToken(testSecret, "account-exp")
		if err != nil {
			t.Fatalf("IssueToken()でエラーが発生: %v", err)
		}

		claims, err := ParseToken(testSecret, tokenStr)
		if err != nil {
			t.Fatalf("ParseToken()でエラーが発生: %v", err)
		}

		expectedExpiry := before.Add(time.Hour)
		// 有効期限が1時間後の前後1分以内であること
		if claims.ExpiresAt.Time.Before(expectedExpiry.Add(-1 * time.Minute)) {
			t.Errorf("ExpiresAt = %v, 期待する最小値: %v", claims.ExpiresAt.Time, expectedExpiry.Add(-1*time.Minute))
		}
		if claims.ExpiresAt.Time.After(expectedExpiry.Add(1 * time.Minute)) {
			t.Errorf("ExpiresAt = %v, 期待する最大値: %v", claims.ExpiresAt.Time, expectedExpiry.Add(1*time.Minute))
		}
		if claims.IssuedAt == nil {
			t.Error("IssuedAtが設定されていない")
		}
	})

	t.Run("署名アルゴリズムがHS256であること", func(t *testing.T) {
		t.Parallel()

		tokenStr, err := IssueToken(testSecret, "account-alg")
		if err != nil {
			t.Fatalf("IssueToken()でエラーが発生: %v", err)
		}

		token, _, err := new(jwt.Parser).ParseUnverified(tokenStr, &Claims{})
		if err != nil {
			t.Fatalf("トークンのパースに失敗: %v", err)
		}
		if token.Method.Alg() != "HS256" {
			t.Errorf("署名アルゴリズム = %q, want %q", token.Method.Alg(), "HS256")
		}
	})

	t.Run("ペイロードのJSONにidが含まれること", func(t *testing.T) {
		t.Parallel()

		tokenStr, err := IssueToken(testSecret, "account-json")
		if err != nil {
			t.Fatalf("IssueToken()でエラーが発生: %v", err)
		}
		claims, err := ParseToken(testSecret, tokenStr)
		if err != nil {
			t.Fatalf("ParseToken()でエラーが発生: %v", err)
		}

		raw, err := json.Marshal(claims)
		if err != nil {
			t.Fatalf("JSON変換に失敗: %v", err)
		}
		var payload map[string]any
		if err := json.Unmarshal(raw, &payload); err != nil {
			t.Fatalf("JSONのパースに失敗: %v", err)
		}
		if payload["id"] != "account-json" {
			t.Errorf("id = %v, want %q", payload["id"], "account-json")
		}
		if _, ok := payload["exp"]; !ok {
			t.Error("expが含まれていない")
		}
	})
}

// TestParseToken はParseToken関数の失敗ケースを検証する。
func TestParseToken(t *testing.T) {
	t.Parallel()

	t.Run("異なるシークレットでは検証に失敗すること", func(t *testing.T) {
		t.Parallel()

		tokenStr, err := IssueToken("different-secret", "account-diff")
		if err != nil {
			t.Fatalf("IssueToken()でエラーが発生: %v", err)
		}
		if _, err := ParseToken(testSecret, tokenStr); err == nil {
			t.Fatal("異なるシークレットでの検証がエラーを返すべき")
		}
	})

	t.Run("期限切れトークンでは検証に失敗すること", func(t *testing.T) {
		t.Parallel()

		tokenStr, err := issueToken(testSecret, "account-expired", time.Now().Add(-2*time.Hour))
		if err != nil {
			t.Fatalf("issueToken()でエラーが発生: %v", err)
		}
		if _, err := ParseToken(testSecret, tokenStr); err == nil {
			t.Fatal("期限切れトークンの検証がエラーを返すべき")
		}
	})

	t.Run("形式が不正なトークンでは検証に失敗すること", func(t *testing.T) {
		t.Parallel()

		if _, err := ParseToken(testSecret, "invalid-token-string"); err == nil {
			t.Fatal("不正なトークンの検証がエラーを返すべき")
		}
	})

	t.Run("HS256以外のアルゴリズムは拒否すること", func(t *testing.T) {
		t.Parallel()

		claims := Claims{
			AccountID: "account-hs512",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
		if err != nil {
			t.Fatalf("トークンの署名に失敗: %v", err)
		}
		if _, err := ParseToken(testSecret, tokenStr); err == nil {
			t.Fatal("HS512のトークンの検証がエラーを返すべき")
		}
	})

	t.Run("有効期限の無いトークンは拒否すること", func(t *testing.T) {
		t.Parallel()

		tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{AccountID: "account-noexp"}).SignedString([]byte(testSecret))
		if err != nil {
			t.Fatalf("トークンの署名に失敗: %v", err)
		}
		if _, err := ParseToken(testSecret, tokenStr); err == nil {
			t.Fatal("有効期限の無いトークンの検証がエラーを返すべき")
		}
	})

	t.Run("idの無いトークンは拒否すること", func(t *testing.T) {
		t.Parallel()

		tokenStr, err := issueToken(testSecret, "", time.Now())
		if err != nil {
			t.Fatalf("issueToken()でエラーが発生: %v", err)
		}
		if _, err := ParseToken(testSecret, tokenStr); err == nil {
			t.Fatal("idの無いトークンの検証がエラーを返すべき")
		}
	})
}

// newCookieAuthRouter はCookieAuthを適用したテスト用ルーターを生成する。
func newCookieAuthRouter(captured *string) *gin.Engine {
	router := gin.New()
	router.Use(CookieAuth(testSecret, zerolog.New(io.Discard)))
	router.GET("/test", func(c *gin.Context) {
		if captured != nil {
			*captured = GetAccountID(c)
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

// TestCookieAuth はCookieAuthミドルウェアを検証する。
func TestCookieAuth(t *testing.T) {
	t.Parallel()

	t.Run("有効なCookieでリクエストが成功しアカウントIDが設定されること", func(t *testing.T) {
		t.Parallel()

		tokenStr, err := IssueToken(testSecret, "account-ok")
		if err != nil {
			t.Fatalf("IssueToken()でエラーが発生: %v", err)
		}

		var captured string
		router := newCookieAuthRouter(&captured)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: tokenStr})
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		if captured != "account-ok" {
			t.Errorf("account_id = %q, want %q", captured, "account-ok")
		}
	})

	t.Run("Cookieが無い場合401でnot authenticatedが返ること", func(t *testing.T) {
		t.Parallel()

		router := newCookieAuthRouter(nil)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusUnauthorized)
		}

		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("レスポンスボディのパースに失敗: %v", err)
		}
		if body["message"] != "not authenticated" {
			t.Errorf("message = %q, want %q", body["message"], "not authenticated")
		}
	})

	t.Run("無効なトークンで401でinvalid tokenが返ること", func(t *testing.T) {
		t.Parallel()

		router := newCookieAuthRouter(nil)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "invalid-token-string"})
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusUnauthorized)
		}

		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("レスポンスボディのパースに失敗: %v", err)
		}
		if body["message"] != "invalid token" {
			t.Errorf("message = %q, want %q", body["message"], "invalid token")
		}
	})

	t.Run("Authorizationヘッダーのトークンは受け付けないこと", func(t *testing.T) {
		t.Parallel()

		tokenStr, err := IssueToken(testSecret, "account-header")
		if err != nil {
			t.Fatalf("IssueToken()でエラーが発生: %v", err)
		}

		router := newCookieAuthRouter(nil)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer "+tokenStr)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})
}

// TestGetAccountID はGetAccountID関数を検証する。
func TestGetAccountID(t *testing.T) {
	t.Parallel()

	t.Run("コンテキストにaccount_idが設定されている場合に取得できること", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Set("account_id", "account-get-id")

		if got := GetAccountID(c); got != "account-get-id" {
			t.Errorf("GetAccountID() = %q, want %q", got, "account-get-id")
		}
	})

	t.Run("コンテキストにaccount_idが設定されていない場合に空文字列が返ること", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		if got := GetAccountID(c); got != "" {
			t.Errorf("GetAccountID() = %q, want empty string", got)
		}
	})

	t.Run("account_idが文字列以外の型の場合に空文字列が返ること", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Set("account_id", 12345)

		if got := GetAccountID(c); got != "" {
			t.Errorf("GetAccountID() = %q, want empty string", got)
		}
	})
}
