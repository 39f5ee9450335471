// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// セッショントークンの発行と解決、アクセスゲートの適用、顧客向けAPIの認証、
// パニックリカバリ、CORS設定を含む。
package middleware
