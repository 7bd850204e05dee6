// Package account はユーザーアカウントの永続化と認証情報の検証を提供する。
//
// パスワードはbcryptでハッシュ化して保存し、メールアドレスとユーザー名の
// 一意性はストア側（UNIQUE制約）で保証する。失敗はErrorKindとして返し、
// HTTPステータスへの変換は呼び出し側が担当する。
// バックエンドはSQLite（既定）とPostgreSQLの2種類。
package account
