package gate

// Role はセッショントークンに含まれるロールクレームを表す。
// 値は発行元をそのまま信頼し、ゲート側では検証しない。
type Role string

const (
	// RoleAdmin は管理者ロール。保護対象パスへのアクセスに必要な唯一のロール。
	RoleAdmin Role = "admin"
	// RoleUser は一般ユーザーのロール。
	RoleUser Role = "user"
)

// Token は解決済みのセッショントークンを表す。
type Token struct {
	// Subject は認証済みユーザーの識別子。空の場合は未認証として扱う。
	Subject string
	// Role はロールクレーム。クレームが無い場合は空文字列。
	Role Role
	// Email はユーザーのメールアドレス。
	Email string
}

// resolutionKind はトークン解決結果の種類。
type resolutionKind int

const (
	resolutionAbsent resolutionKind = iota
	resolutionResolved
	resolutionFailed
)

// Resolution はリクエストに付随する資格情報の解決結果を表す。
// Resolved・Absent・Failed のいずれかで生成する。ゼロ値は Absent と等価。
type Resolution struct {
	kind  resolutionKind
	token Token
	err   error
}

// Resolved は検証済みトークンを持つ解決結果を返す。
// Subjectが空のトークンは未認証なので Absent になる。
func Resolved(t Token) Resolution {
	if t.Subject == "" {
		return Absent()
	}
	return Resolution{kind: resolutionResolved, token: t}
}

// Absent は資格情報が無いことを表す解決結果を返す。
func Absent() Resolution {
	return Resolution{kind: resolutionAbsent}
}

// Failed は資格情報の解決に失敗したことを表す解決結果を返す。
// 判定上は Absent と同じ扱いになり、errはログ出力のためだけに保持する。
func Failed(err error) Resolution {
	return Resolution{kind: resolutionFailed, err: err}
}

// Token は解決済みトークンを返す。Resolved以外ではokがfalseになる。
func (r Resolution) Token() (Token, bool) {
	if r.kind != resolutionResolved {
		return Token{}, false
	}
	return r.token, true
}

// Err は解決失敗の原因を返す。Failed以外ではnil。
func (r Resolution) Err() error {
	if r.kind != resolutionFailed {
		return nil
	}
	return r.err
}

// IsFailed は解決に失敗した結果であればtrueを返す。
func (r Resolution) IsFailed() bool {
	return r.kind == resolutionFailed
}
