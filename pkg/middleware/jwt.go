package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/vietthang09/huth-shop-ui-sub003/pkg/gate"
)

// SessionClaims はセッショントークンのクレーム（ペイロード）を表す。
// Subjectにユーザーを、roleに管理画面の認可に使うロールを格納する。
type SessionClaims struct {
	jwt.RegisteredClaims
	// Email はユーザーのメールアドレス。
	Email string `json:"email"`
	// Role はユーザーのロール。クレームが無い場合は空文字列。
	Role gate.Role `json:"role,omitempty"`
}

const (
	// tokenIssuer はセッショントークンの発行者。
	tokenIssuer = "huth-shop"
	// tokenTTL はセッショントークンの有効期間。
	tokenTTL = 24 * time.Hour

	contextKeyToken = "session_token"
)

// GenerateJWT はユーザー情報からセッショントークンを生成する。
// ログインAPIが認証成功後に呼び出す。
func GenerateJWT(secret, userID, email string, role gate.Role) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
		Email: email,
		Role:  role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("JWTトークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// ResolveSession はリクエストに付与されたセッショントークンを解決する。
// session_token Cookieを優先し、Cookieが無いか検証に失敗した場合はAuthorizationヘッダーのBearerトークンを試す。
// 資格情報が無ければAbsent、いずれも検証に失敗すればFailed、成功すればResolvedを返す。
func ResolveSession(r *http.Request, secret string) gate.Resolution {
	candidates, err := extractTokens(r)
	if len(candidates) == 0 {
		if err != nil {
			return gate.Failed(err)
		}
		return gate.Absent()
	}

	for _, tokenString := range candidates {
		claims, perr := parseToken(tokenString, secret)
		if perr != nil {
			err = errors.Join(err, perr)
			continue
		}
		return gate.Resolved(gate.Token{
			Subject: claims.Subject,
			Role:    claims.Role,
			Email:   claims.Email,
		})
	}
	return gate.Failed(err)
}

// extractTokens はCookie、Authorizationヘッダーの順にトークン文字列を取り出す。
// Authorizationヘッダーの形式が不正な場合はエラーも返す。
func extractTokens(r *http.Request) ([]string, error) {
	var tokens []string
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		tokens = append(tokens, cookie.Value)
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return tokens, nil
	}
	tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
	if !found || tokenString == "" {
		return tokens, errors.New("Bearer トークン形式が不正です")
	}
	return append(tokens, tokenString), nil
}

// parseToken はトークンの署名・有効期限・発行者を検証してクレームを返す。
func parseToken(tokenString, secret string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
	)
	if err != nil {
		return nil, fmt.Errorf("トークンの検証に失敗: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("トークンが無効です")
	}
	return claims, nil
}

// RequireSession は有効なセッションを必須とするGinミドルウェアを返す。
// 顧客向けAPIで使用し、未認証の場合はリダイレクトではなく401のJSONを返す。
func RequireSession(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetToken(c); ok {
			c.Next()
			return
		}

		res := ResolveSession(c.Request, secret)
		token, ok := res.Token()
		if !ok {
			msg := "ログインが必要です"
			if res.IsFailed() {
				msg = "トークンが無効です"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		c.Set(contextKeyToken, token)
		c.Next()
	}
}

// GetToken はGinコンテキストから解決済みトークンを取得する。
// AccessGateまたはRequireSessionが事前に適用されている必要がある。
func GetToken(c *gin.Context) (gate.Token, bool) {
	v, ok := c.Get(contextKeyToken)
	if !ok {
		return gate.Token{}, false
	}
	token, ok := v.(gate.Token)
	return token, ok
}

// GetUserID はGinコンテキストからユーザーIDを取得する。
func GetUserID(c *gin.Context) string {
	token, _ := GetToken(c)
	return token.Subject
}

// GetRole はGinコンテキストからロールを取得する。
func GetRole(c *gin.Context) gate.Role {
	token, _ := GetToken(c)
	return token.Role
}
