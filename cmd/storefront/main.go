// ストアフロントサービスのエントリポイント。
// 商品カタログ、チェックアウト、決済QR発行、管理画面APIを提供する。
// 管理画面パスはアクセスゲートにより管理者ロールのユーザーのみに制限される。
package main

import (
	"context"
	"log"

	"github.com/vietthang09/huth-shop-ui-sub003/internal/storefront"
)

func main() {
	cfg, err := storefront.ConfigFromEnv()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	server, err := storefront.NewServer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Storefrontサーバーの初期化に失敗: %v", err)
	}
	defer func() { _ = server.Close() }()

	log.Printf("Storefrontサービスを起動します: :%s (保護パス: %v)", cfg.Port, cfg.Gate.ProtectedPrefixes)
	if err := server.Run(); err != nil {
		log.Printf("Storefrontサービスの起動に失敗: %v", err)
		return
	}
}
