// Package gateway は認証ゲートウェイ（Credential Gateway）のHTTP実装を提供する。
//
// ユーザー登録・ログイン・ログアウト・トークン検証の4つの操作を担当する。
// 入力検証はリクエストスキーマ、永続化とパスワード照合はaccount.Storeに委譲し、
// セッショントークン（JWT）をHTTP-only Cookieとして発行・削除する。
// サーバー側にセッションは保持しないため、ログアウト後も発行済みトークンは
// 有効期限まで検証に通る。
package gateway
