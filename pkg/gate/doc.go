// Package gate はリクエストパスとセッショントークンからアクセス可否を判定するアクセスゲートを提供する。
//
// ゲートはパスを保護対象プレフィックスと照合し、トークンの有無とロールクレームに応じて
// 通過（Pass）またはリダイレクト（Redirect）のいずれかを返す。拒否（403）は存在せず、
// 拒否は常にリダイレクトとして表現される。ゲートは状態を持たず、HTTPフレームワークにも依存しない。
package gate
