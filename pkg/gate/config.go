package gate

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig はYAMLファイルからゲート構成を読み込む。
// pathが空の場合はDefaultConfigを返す。ファイルで省略された項目はデフォルト値のまま残る。
//
//	protected_prefixes:
//	  - /admin
//	login_path: /login
//	home_path: /
//	required_role: admin
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("ゲート設定ファイルの読み込みに失敗: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("ゲート設定ファイルのパースに失敗: %w", err)
	}
	return cfg, nil
}
