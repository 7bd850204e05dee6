package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/credgate/pkg/middleware"
)

// setSessionCookie はセッショントークンをCookieに設定する。
// Max-Ageは付けず、ブラウザのセッションCookieとして扱う。
func (s *Server) setSessionCookie(c *gin.Context, token string) {
	s.writeSessionCookie(c, token, 0)
}

// clearSessionCookie はセッショントークンのCookieを削除する。
// 削除が効くように、設定時と同じ属性で Max-Age=0 を送る。
func (s *Server) clearSessionCookie(c *gin.Context) {
	s.writeSessionCookie(c, "", -1)
}

func (s *Server) writeSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(middleware.AccessTokenCookie, value, maxAge, "/", "", s.production, true)
}
