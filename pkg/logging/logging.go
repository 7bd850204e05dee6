// Package logging はzerologベースの構造化ロガーを生成する。
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// FormatJSON は1行1JSONで出力する形式。
	FormatJSON = "json"
	// FormatConsole は人間向けに整形して出力する形式。
	FormatConsole = "console"
)

// New はレベルと出力形式を指定してロガーを生成する。
// 不正なレベルはinfoとして扱う。wがnilの場合は標準出力に書き込む。
func New(level, format string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if strings.ToLower(format) == FormatConsole {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
