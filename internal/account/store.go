package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Account はストアが保持するユーザーアカウント。
type Account struct {
	// ID はアカウントの一意識別子（UUID）。
	ID string `json:"id"`
	// Email は小文字に正規化されたメールアドレス。
	Email string `json:"email"`
	// Username は表示用のユーザー名。
	Username string `json:"username"`
	// PasswordHash はbcryptハッシュ。レスポンスには決して含めない。
	PasswordHash string `json:"-"`
}

// Credentials は登録・ログイン時の入力値。永続化はしない。
type Credentials struct {
	Email    string
	Password string
	Username string
}

// Store はアカウントの永続化層。
type Store interface {
	// Register は新しいアカウントを作成する。
	Register(ctx context.Context, cred Credentials) error
	// Login はメールアドレスとパスワードを照合し、一致したアカウントを返す。
	Login(ctx context.Context, email, password string) (*Account, error)
	// GetByEmail はメールアドレスでアカウントを取得する。
	GetByEmail(ctx context.Context, email string) (*Account, error)
	// GetByID はIDでアカウントを取得する。
	GetByID(ctx context.Context, id string) (*Account, error)
	// Close はデータベース接続を閉じる。
	Close() error
}

// dialect はバックエンドごとのSQLと制約違反の判定方法。
type dialect struct {
	name           string
	insertAccount  string
	selectByEmail  string
	selectByID     string
	existsEmail    string
	existsUsername string
	// uniqueViolation は一意制約違反の場合に対応するErrorKindを返す。
	uniqueViolation func(err error) (ErrorKind, bool)
}

// SQLStore はdatabase/sqlを使ったStoreの実装。
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	cost    int
}

// Option はSQLStoreの設定を変更する。
type Option func(*SQLStore)

// WithBcryptCost はパスワードハッシュのコストを指定する。
// 範囲外の値は無視してbcrypt.DefaultCostを使う。
func WithBcryptCost(cost int) Option {
	return func(s *SQLStore) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.cost = cost
		}
	}
}

func newSQLStore(db *sql.DB, d dialect, opts ...Option) *SQLStore {
	s := &SQLStore{db: db, dialect: d, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open はDSNのスキームに応じてバックエンドを選び、スキーマを適用したストアを返す。
// postgres:// または postgresql:// はPostgreSQL、それ以外はSQLiteのDSNとして扱う。
func Open(ctx context.Context, dsn string, opts ...Option) (*SQLStore, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return OpenPostgres(ctx, dsn, opts...)
	}
	return OpenSQLite(ctx, dsn, opts...)
}

// Backend はバックエンド名（sqlite / postgres）を返す。
func (s *SQLStore) Backend() string {
	return s.dialect.name
}

// Close はデータベース接続を閉じる。
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Register は入力を検証し、bcryptでハッシュ化したパスワードとともにアカウントを作成する。
func (s *SQLStore) Register(ctx context.Context, cred Credentials) error {
	email := normalizeEmail(cred.Email)
	username := strings.TrimSpace(cred.Username)

	switch {
	case email == "":
		return ErrEmailEmpty
	case strings.TrimSpace(cred.Password) == "":
		return ErrPasswordEmpty
	case username == "":
		return ErrUsernameEmpty
	}

	taken, err := s.exists(ctx, s.dialect.existsEmail, email)
	if err != nil {
		return fmt.Errorf("メールアドレスの重複確認に失敗: %w", err)
	}
	if taken {
		return ErrEmailInUse
	}

	taken, err = s.exists(ctx, s.dialect.existsUsername, username)
	if err != nil {
		return fmt.Errorf("ユーザー名の重複確認に失敗: %w", err)
	}
	if taken {
		return ErrUsernameInUse
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cred.Password), s.cost)
	if err != nil {
		return fmt.Errorf("パスワードのハッシュ化に失敗: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, s.dialect.insertAccount,
		uuid.New().String(), email, username, string(hash)); err != nil {
		// 重複確認と挿入の間に別リクエストが同じ値を登録した場合
		if kind, ok := s.dialect.uniqueViolation(err); ok {
			return kind
		}
		return fmt.Errorf("アカウントの作成に失敗: %w", err)
	}
	return nil
}

// Login はメールアドレスとパスワードを照合する。
func (s *SQLStore) Login(ctx context.Context, email, password string) (*Account, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, ErrInvalidCredentials
	}
	if password == "" {
		return nil, ErrPasswordMissing
	}

	acc, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrCredentialsMismatch
		}
		return nil, fmt.Errorf("パスワードの照合に失敗: %w", err)
	}
	return acc, nil
}

// GetByEmail はメールアドレスでアカウントを取得する。
func (s *SQLStore) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return s.scanOne(ctx, s.dialect.selectByEmail, normalizeEmail(email))
}

// GetByID はIDでアカウントを取得する。
func (s *SQLStore) GetByID(ctx context.Context, id string) (*Account, error) {
	return s.scanOne(ctx, s.dialect.selectByID, id)
}

func (s *SQLStore) scanOne(ctx context.Context, query, arg string) (*Account, error) {
	acc := &Account{}
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&acc.ID, &acc.Email, &acc.Username, &acc.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotRegistered
		}
		return nil, fmt.Errorf("アカウントの取得に失敗: %w", err)
	}
	return acc, nil
}

func (s *SQLStore) exists(ctx context.Context, query, arg string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, query, arg).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
