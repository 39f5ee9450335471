package storefront

import (
	"fmt"
	"os"
	"time"

	"github.com/vietthang09/huth-shop-ui-sub003/pkg/gate"
)

// Config はストアフロントサービスの設定。
type Config struct {
	// Port はHTTPサーバーのリッスンポート。
	Port string
	// DatabasePath はSQLiteのDSN。
	DatabasePath string
	// JWTSecret はセッショントークンの署名鍵。
	JWTSecret string
	// FrontendURL はCORSで許可するフロントエンドのオリジン。
	FrontendURL string
	// Gate はアクセスゲートの構成。
	Gate gate.Config
	// QR は決済QRプロバイダの設定。
	QR QRConfig
	// AdminEmail は起動時に登録する初期管理者のメールアドレス。空の場合は登録しない。
	AdminEmail string
	// AdminPassword は初期管理者のパスワード。
	AdminPassword string
}

// QRConfig は決済QRプロバイダ（VietQR互換API）の設定。
type QRConfig struct {
	// ProviderURL はQR生成APIのベースURL。
	ProviderURL string
	// ClientID はプロバイダのクライアントID。
	ClientID string
	// APIKey はプロバイダのAPIキー。
	APIKey string
	// BankID は受取口座の銀行BIN（acqId）。
	BankID string
	// AccountNo は受取口座番号。空の場合はQR発行を無効にする。
	AccountNo string
	// AccountName は受取口座名義。
	AccountName string
	// Template はQR画像のテンプレート名。
	Template string
	// Timeout はプロバイダ呼び出しのタイムアウト。
	Timeout time.Duration
}

// ConfigFromEnv は環境変数から設定を読み込む。
// GATE_CONFIGが指定されていればYAMLファイルからゲート構成を読み込む。
func ConfigFromEnv() (Config, error) {
	gateCfg, err := gate.LoadConfig(os.Getenv("GATE_CONFIG"))
	if err != nil {
		return Config{}, fmt.Errorf("ゲート構成の読み込みに失敗: %w", err)
	}

	qrTimeout, err := time.ParseDuration(getEnvOr("QR_TIMEOUT", "10s"))
	if err != nil || qrTimeout <= 0 {
		return Config{}, fmt.Errorf("QR_TIMEOUTが不正です: %q", os.Getenv("QR_TIMEOUT"))
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "dev-secret-key"
	}

	return Config{
		Port:         getEnvOr("PORT", "8080"),
		DatabasePath: getEnvOr("DATABASE_PATH", "file:/data/shop.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"),
		JWTSecret:    jwtSecret,
		FrontendURL:  getEnvOr("FRONTEND_URL", "http://localhost:3000"),
		Gate:         gateCfg,
		QR: QRConfig{
			ProviderURL: getEnvOr("QR_PROVIDER_URL", "https://api.vietqr.io"),
			ClientID:    os.Getenv("QR_CLIENT_ID"),
			APIKey:      os.Getenv("QR_API_KEY"),
			BankID:      os.Getenv("QR_BANK_ID"),
			AccountNo:   os.Getenv("QR_ACCOUNT_NO"),
			AccountName: os.Getenv("QR_ACCOUNT_NAME"),
			Template:    getEnvOr("QR_TEMPLATE", "compact"),
			Timeout:     qrTimeout,
		},
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}, nil
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
