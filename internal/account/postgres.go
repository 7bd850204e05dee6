package account

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql
var postgresMigrations embed.FS

// pgUniqueViolation はPostgreSQLの一意制約違反のSQLSTATE。
const pgUniqueViolation = "23505"

var postgresDialect = dialect{
	name: "postgres",
	insertAccount: `INSERT INTO accounts (id, email, username, password_hash)
		VALUES ($1, $2, $3, $4)`,
	selectByEmail:   `SELECT id, email, username, password_hash FROM accounts WHERE email = $1`,
	selectByID:      `SELECT id, email, username, password_hash FROM accounts WHERE id = $1`,
	existsEmail:     `SELECT COUNT(*) FROM accounts WHERE email = $1`,
	existsUsername:  `SELECT COUNT(*) FROM accounts WHERE username = $1`,
	uniqueViolation: postgresUniqueViolation,
}

// gooseUp はテストで差し替えるためのマイグレーション実行関数。
var gooseUp = func(ctx context.Context, db *sql.DB, dir string) error {
	goose.SetBaseFS(postgresMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, dir)
}

// OpenPostgres はpgxドライバでPostgreSQLに接続し、gooseでマイグレーションを適用したストアを返す。
func OpenPostgres(ctx context.Context, dsn string, opts ...Option) (*SQLStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("データベース疎通確認に失敗: %w", err)
	}

	s, err := NewPostgres(ctx, db, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgres は既存のPostgreSQL接続にスキーマを適用してストアを生成する。
func NewPostgres(ctx context.Context, db *sql.DB, opts ...Option) (*SQLStore, error) {
	if err := gooseUp(ctx, db, "migrations/postgres"); err != nil {
		return nil, fmt.Errorf("マイグレーションに失敗: %w", err)
	}
	return newSQLStore(db, postgresDialect, opts...), nil
}

func postgresUniqueViolation(err error) (ErrorKind, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return ErrInternal, false
	}
	switch pgErr.ConstraintName {
	case "accounts_email_key":
		return ErrEmailInUse, true
	case "accounts_username_key":
		return ErrUsernameInUse, true
	}
	return ErrInternal, false
}
