package account

import "errors"

// ErrorKind はアカウントストアが返すドメインエラーの種別。
// エラー値そのものとして返され、errors.Is で比較できる。
type ErrorKind uint8

const (
	// ErrInternal は種別を持たないエラー（インフラ障害など）を表す。
	ErrInternal ErrorKind = iota
	// ErrEmailEmpty は登録時にメールアドレスが空であることを表す。
	ErrEmailEmpty
	// ErrPasswordEmpty は登録時にパスワードが空であることを表す。
	ErrPasswordEmpty
	// ErrUsernameEmpty は登録時にユーザー名が空であることを表す。
	ErrUsernameEmpty
	// ErrEmailInUse はメールアドレスが既に使用されていることを表す。
	ErrEmailInUse
	// ErrUsernameInUse はユーザー名が既に使用されていることを表す。
	ErrUsernameInUse
	// ErrInvalidCredentials はログイン時の認証情報が不正であることを表す。
	ErrInvalidCredentials
	// ErrNotRegistered はメールアドレス（またはID）が登録されていないことを表す。
	ErrNotRegistered
	// ErrCredentialsMismatch はメールアドレスとパスワードが一致しないことを表す。
	ErrCredentialsMismatch
	// ErrPasswordMissing はログイン時にパスワードが入力されていないことを表す。
	ErrPasswordMissing
)

var kindMessages = [...]string{
	ErrInternal:            "internal server error",
	ErrEmailEmpty:          "email must not be empty",
	ErrPasswordEmpty:       "password must not be empty",
	ErrUsernameEmpty:       "username must not be empty",
	ErrEmailInUse:          "email already in use",
	ErrUsernameInUse:       "username already in use",
	ErrInvalidCredentials:  "invalid credentials",
	ErrNotRegistered:       "email is not registered",
	ErrCredentialsMismatch: "email or password does not match",
	ErrPasswordMissing:     "password is required",
}

// Error はクライアントへそのまま返してよいメッセージを返す。
func (k ErrorKind) Error() string {
	if int(k) < len(kindMessages) {
		return kindMessages[k]
	}
	return kindMessages[ErrInternal]
}

// KindOf はエラーチェーンからErrorKindを取り出す。
// ErrorKindを含まないエラーはErrInternalとして扱う。
func KindOf(err error) ErrorKind {
	var kind ErrorKind
	if errors.As(err, &kind) {
		return kind
	}
	return ErrInternal
}
