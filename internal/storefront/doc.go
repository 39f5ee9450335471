// Package storefront はECストアフロントと管理画面のHTTPサービスを提供する。
//
// 商品閲覧、会員登録とログイン、チェックアウト、注文確定、決済QRコードの発行、
// 管理画面（ダッシュボード・商品・注文・ユーザー・操作履歴）を担当する。
// すべてのリクエストはアクセスゲートを通過し、/admin 配下は管理者ロールのみが到達できる。
package storefront
