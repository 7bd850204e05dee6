// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// Cookieに載せたセッショントークン（JWT）の発行と検証、リクエストログ、
// パニックリカバリ、CORS設定を含む。
package middleware
