package account

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/nao1215/credgate/pkg/migration"
)

//go:embed migrations/sqlite/*.sql
var sqliteMigrations embed.FS

var sqliteDialect = dialect{
	name: "sqlite",
	insertAccount: `INSERT INTO accounts (id, email, username, password_hash)
		VALUES (?, ?, ?, ?)`,
	selectByEmail:   `SELECT id, email, username, password_hash FROM accounts WHERE email = ?`,
	selectByID:      `SELECT id, email, username, password_hash FROM accounts WHERE id = ?`,
	existsEmail:     `SELECT COUNT(*) FROM accounts WHERE email = ?`,
	existsUsername:  `SELECT COUNT(*) FROM accounts WHERE username = ?`,
	uniqueViolation: sqliteUniqueViolation,
}

// OpenSQLite はSQLiteデータベースを開き、マイグレーションを適用したストアを返す。
func OpenSQLite(ctx context.Context, dsn string, opts ...Option) (*SQLStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	// :memory: は接続ごとに別DBになるため、接続を1本に固定する
	db.SetMaxOpenConns(1)

	s, err := NewSQLite(ctx, db, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLite は既存のSQLite接続にスキーマを適用してストアを生成する。
func NewSQLite(ctx context.Context, db *sql.DB, opts ...Option) (*SQLStore, error) {
	if err := migration.Run(ctx, db, sqliteMigrations, "migrations/sqlite"); err != nil {
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}
	return newSQLStore(db, sqliteDialect, opts...), nil
}

func sqliteUniqueViolation(err error) (ErrorKind, bool) {
	var serr *sqlite.Error
	// 拡張リザルトコードが無効な場合もあるため、下位8ビットで判定する
	if !errors.As(err, &serr) || serr.Code()&0xff != sqlite3.SQLITE_CONSTRAINT {
		return ErrInternal, false
	}
	msg := serr.Error()
	switch {
	case strings.Contains(msg, "accounts.email"):
		return ErrEmailInUse, true
	case strings.Contains(msg, "accounts.username"):
		return ErrUsernameInUse, true
	}
	return ErrInternal, false
}
