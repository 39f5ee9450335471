package storefront

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vietthang09/huth-shop-ui-sub003/pkg/event"
	"github.com/vietthang09/huth-shop-ui-sub003/pkg/gate"
	"github.com/vietthang09/huth-shop-ui-sub003/pkg/middleware"
	"golang.org/x/crypto/bcrypt"
)

// registerRequest は会員登録リクエストのJSON構造。
type registerRequest struct {
	// Email はログインに使うメールアドレス。
	Email string `json:"email" binding:"required,email"`
	// Password は8文字以上のパスワード。bcryptの上限に合わせて72バイトまで。
	Password string `json:"password" binding:"required,min=8,max=72"`
	// Name は表示名。
	Name string `json:"name" binding:"required"`
}

// loginRequest はログインリクエストのJSON構造。
type loginRequest struct {
	// Email はメールアドレス。
	Email string `json:"email" binding:"required"`
	// Password はパスワード。
	Password string `json:"password" binding:"required"`
}

// userResponse はユーザーのJSONレスポンス構造。
type userResponse struct {
	// ID はユーザーの一意識別子。
	ID string `json:"id"`
	// Email はメールアドレス。
	Email string `json:"email"`
	// Name は表示名。
	Name string `json:"name"`
	// Role はロール。
	Role gate.Role `json:"role"`
	// CreatedAt は登録日時。
	CreatedAt string `json:"created_at"`
}

func toUserResponse(u User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// normalizeEmail はメールアドレスを比較用に正規化する。
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// handleLoginPage はログイン画面の代わりにログインAPIの案内を返すハンドラを返す。
// アクセスゲートが未認証ユーザーをリダイレクトする先。
func (s *Server) handleLoginPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":        "ログインが必要です",
			"login_endpoint": "/api/auth/login",
		})
	}
}

// handleRegister は会員登録を処理するハンドラを返す。
// 登録されたユーザーは常に一般ユーザーロールになる。
func (s *Server) handleRegister() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "パスワードの処理に失敗しました"})
			log.Printf("パスワードハッシュ化エラー: %v", err)
			return
		}

		user, err := s.store.CreateUser(c.Request.Context(), User{
			Email:        normalizeEmail(req.Email),
			Name:         strings.TrimSpace(req.Name),
			PasswordHash: string(hash),
			Role:         gate.RoleUser,
		})
		if err != nil {
			respondStoreError(c, err, "")
			return
		}

		s.recordEvent(c, user.ID, event.AggregateTypeUser, event.TypeUserRegistered, event.UserRegisteredData{
			Email: user.Email,
		})

		c.JSON(http.StatusCreated, toUserResponse(user))
	}
}

// handleLogin はメールアドレスとパスワードでログインするハンドラを返す。
// 認証に成功するとセッショントークンを発行し、Cookieにも設定する。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		user, err := s.store.GetUserByEmail(c.Request.Context(), normalizeEmail(req.Email))
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "メールアドレスまたはパスワードが正しくありません"})
			return
		}
		if err != nil {
			respondStoreError(c, err, "")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "メールアドレスまたはパスワードが正しくありません"})
			return
		}

		token, err := middleware.GenerateJWT(s.jwtSecret, user.ID, user.Email, user.Role)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "トークン生成に失敗しました"})
			log.Printf("JWT生成エラー: %v", err)
			return
		}

		middleware.SetSessionCookie(c, token)
		c.JSON(http.StatusOK, gin.H{
			"token": token,
			"user":  toUserResponse(user),
		})
	}
}

// handleLogout はセッションCookieを削除するハンドラを返す。
func (s *Server) handleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.ClearSessionCookie(c)
		c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
	}
}

// handleGetCurrentUser は認証済みユーザーの情報を返すハンドラを返す。
func (s *Server) handleGetCurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := s.store.GetUserByID(c.Request.Context(), middleware.GetUserID(c))
		if err != nil {
			respondStoreError(c, err, "ユーザーが見つかりません")
			return
		}
		c.JSON(http.StatusOK, toUserResponse(user))
	}
}
