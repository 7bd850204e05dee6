package gateway

import (
	"net/http"

	"github.com/nao1215/credgate/internal/account"
)

// statusTable は操作ごとのエラー種別とHTTPステータスの対応表。
// 表に無い種別（ErrInternalを含む）はすべて500になる。
type statusTable map[account.ErrorKind]int

var registerStatus = statusTable{
	account.ErrEmailEmpty:    http.StatusUnauthorized,
	account.ErrPasswordEmpty: http.StatusNotFound,
	account.ErrUsernameEmpty: http.StatusUnauthorized,
	account.ErrEmailInUse:    http.StatusBadRequest,
	account.ErrUsernameInUse: http.StatusBadRequest,
}

var loginStatus = statusTable{
	account.ErrInvalidCredentials:  http.StatusUnauthorized,
	account.ErrNotRegistered:       http.StatusNotFound,
	account.ErrCredentialsMismatch: http.StatusUnauthorized,
	account.ErrPasswordMissing:     http.StatusBadRequest,
}

var currentAccountStatus = statusTable{
	account.ErrNotRegistered: http.StatusNotFound,
}

// classify はエラーをHTTPステータスとクライアント向けメッセージに変換する。
// 500の場合は内部の詳細を含まない固定メッセージを返す。
func (t statusTable) classify(err error) (int, string) {
	kind := account.KindOf(err)
	if status, ok := t[kind]; ok {
		return status, kind.Error()
	}
	return http.StatusInternalServerError, msgInternal
}
