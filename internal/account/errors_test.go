package account

import (
	"errors"
	"fmt"
	"testing"
)

// TestKindOf はエラーチェーンからの種別抽出を検証する。
func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{name: "ErrorKindそのものの場合はその種別を返すこと", err: ErrEmailInUse, want: ErrEmailInUse},
		{name: "ラップされている場合も種別を返すこと", err: fmt.Errorf("登録に失敗: %w", ErrUsernameInUse), want: ErrUsernameInUse},
		{name: "種別を持たないエラーはErrInternalを返すこと", err: errors.New("connection refused"), want: ErrInternal},
		{name: "nilの場合はErrInternalを返すこと", err: nil, want: ErrInternal},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestErrorKind_Error は種別ごとのメッセージを検証する。
func TestErrorKind_Error(t *testing.T) {
	t.Parallel()

	tests := map[ErrorKind]string{
		ErrEmailInUse:    "email already in use",
		ErrUsernameInUse: "username already in use",
		ErrInternal:      "internal server error",
		ErrorKind(200):   "internal server error",
	}

	for kind, want := range tests {
		if got := kind.Error(); got != want {
			t.Errorf("ErrorKind(%d).Error() = %q, want %q", uint8(kind), got, want)
		}
	}

	if !errors.Is(fmt.Errorf("wrap: %w", ErrNotRegistered), ErrNotRegistered) {
		t.Error("errors.IsでErrNotRegisteredと一致するべき")
	}
}
