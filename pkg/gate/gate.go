package gate

import "strings"

const (
	// DefaultLoginPath は未認証ユーザーのリダイレクト先。
	DefaultLoginPath = "/login"
	// DefaultHomePath はロール不足ユーザーのリダイレクト先。
	DefaultHomePath = "/"
	// DefaultProtectedPrefix は管理画面配下を表す保護対象プレフィックス。
	DefaultProtectedPrefix = "/admin"
)

// ActionKind はゲートの判定種別。
type ActionKind int

const (
	// ActionPass はリクエストをそのまま通過させる。
	ActionPass ActionKind = iota
	// ActionRedirect はリクエストを打ち切り、Targetへリダイレクトする。
	ActionRedirect
)

// String は判定種別の表示名を返す。
func (k ActionKind) String() string {
	switch k {
	case ActionPass:
		return "PASS"
	case ActionRedirect:
		return "REDIRECT"
	default:
		return "UNKNOWN"
	}
}

// Action はゲートの判定結果。
type Action struct {
	// Kind は判定種別。
	Kind ActionKind
	// Target はリダイレクト先のパス。Passの場合は空。
	Target string
}

// Pass は通過を表すActionを返す。
func Pass() Action {
	return Action{Kind: ActionPass}
}

// Redirect はtargetへのリダイレクトを表すActionを返す。
func Redirect(target string) Action {
	return Action{Kind: ActionRedirect, Target: target}
}

// Config はゲートの構成。ゲート生成時に渡され、以降は変更されない。
type Config struct {
	// ProtectedPrefixes は保護対象とするパスのプレフィックス一覧。
	// 空の場合はすべてのパスが公開扱いになる。
	ProtectedPrefixes []string `yaml:"protected_prefixes"`
	// LoginPath は未認証時のリダイレクト先。
	LoginPath string `yaml:"login_path"`
	// HomePath はロール不足時のリダイレクト先。
	HomePath string `yaml:"home_path"`
	// RequiredRole は保護対象パスに必要なロール。
	RequiredRole Role `yaml:"required_role"`
}

// DefaultConfig は管理画面配下のみを保護するデフォルト構成を返す。
func DefaultConfig() Config {
	return Config{
		ProtectedPrefixes: []string{DefaultProtectedPrefix},
		LoginPath:         DefaultLoginPath,
		HomePath:          DefaultHomePath,
		RequiredRole:      RoleAdmin,
	}
}

// Gate はリクエスト単位のアクセス判定を行う。
// 生成後は読み取り専用のため、複数のgoroutineから同時に呼び出してよい。
type Gate struct {
	prefixes     []string
	loginPath    string
	homePath     string
	requiredRole Role
}

// New は構成からゲートを生成する。
// LoginPath・HomePath・RequiredRoleが空の場合はデフォルト値で補う。
func New(cfg Config) *Gate {
	g := &Gate{
		loginPath:    cfg.LoginPath,
		homePath:     cfg.HomePath,
		requiredRole: cfg.RequiredRole,
	}
	if g.loginPath == "" {
		g.loginPath = DefaultLoginPath
	}
	if g.homePath == "" {
		g.homePath = DefaultHomePath
	}
	if g.requiredRole == "" {
		g.requiredRole = RoleAdmin
	}

	for _, p := range cfg.ProtectedPrefixes {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if p != "/" {
			p = strings.TrimRight(p, "/")
		}
		g.prefixes = append(g.prefixes, p)
	}
	return g
}

// LoginPath は未認証時のリダイレクト先を返す。
func (g *Gate) LoginPath() string { return g.loginPath }

// HomePath はロール不足時のリダイレクト先を返す。
func (g *Gate) HomePath() string { return g.homePath }

// IsProtected はパスが保護対象プレフィックスに一致するかを判定する。
// プレフィックスとの一致はパスセグメント単位で行う（/admin は /admin/users に一致し、/administrator には一致しない）。
func (g *Gate) IsProtected(path string) bool {
	for _, prefix := range g.prefixes {
		if prefix == "/" {
			return true
		}
		if path == prefix {
			return true
		}
		if rest, ok := strings.CutPrefix(path, prefix); ok && strings.HasPrefix(rest, "/") {
			return true
		}
	}
	return false
}

// Decide はパスとトークン解決結果からアクションを決定する。
// 解決失敗はトークン無しと同じ扱いになる。エラーを返すことはない。
func (g *Gate) Decide(path string, res Resolution) Action {
	if !g.IsProtected(path) {
		return Pass()
	}

	token, ok := res.Token()
	if !ok {
		return Redirect(g.loginPath)
	}
	if token.Role != g.requiredRole {
		return Redirect(g.homePath)
	}
	return Pass()
}
