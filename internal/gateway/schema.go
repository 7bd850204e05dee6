package gateway

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// bcryptMaxBytes はbcryptが扱えるパスワードの最大バイト数。
const bcryptMaxBytes = 72

// registerRequest は POST /auth/register のリクエストスキーマ。
type registerRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,notblank,bcryptlen"`
	Username string `json:"username" validate:"required,notblank,max=50"`
}

// loginRequest は POST /auth/login のリクエストスキーマ。
// username は登録時と同じ形のボディを受け付けるために定義しているが使用しない。
type loginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,bcryptlen"`
	Username string `json:"username" validate:"omitempty,max=50"`
}

// newValidator はリクエストスキーマ用のバリデーターを生成する。
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// 登録名は固定で関数もnilではないため、エラーは発生しない
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("bcryptlen", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= bcryptMaxBytes
	})
	return v
}
