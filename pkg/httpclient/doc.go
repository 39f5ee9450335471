// Package httpclient は外部サービスとJSONでやり取りするHTTPクライアントを提供する。
//
// 決済QRコードの生成など、ストアフロントから外部APIを呼び出す際の
// タイムアウト・固定ヘッダー・エラー判定を統一する。
package httpclient
