package storefront

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vietthang09/huth-shop-ui-sub003/pkg/event"
	"github.com/vietthang09/huth-shop-ui-sub003/pkg/gate"
	"github.com/vietthang09/huth-shop-ui-sub003/pkg/httpclient"
	"github.com/vietthang09/huth-shop-ui-sub003/pkg/middleware"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

// Server はストアフロントサービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// db はSQLiteデータベース接続。
	db *sql.DB
	// store はストアフロントの永続化層。
	store *Store
	// gate は管理画面パスを保護するアクセスゲート。
	gate *gate.Gate
	// jwtSecret はJWT署名用の秘密鍵。
	jwtSecret string
	// qr は決済QRプロバイダの設定。
	qr QRConfig
	// qrClient は決済QRプロバイダへのHTTPクライアント。
	qrClient *httpclient.Client
}

// NewServer は新しいストアフロントサーバーを生成する。
// SQLiteデータベースを開いてマイグレーションを適用し、初期管理者を登録する。
func NewServer(ctx context.Context, cfg Config) (*Server, error) {
	sqlDB, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	if err := initSchema(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS([]string{cfg.FrontendURL}))

	s := newServer(router, sqlDB, cfg)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := s.ensureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("初期管理者の登録に失敗: %w", err)
		}
	}

	return s, nil
}

// newServer はルーターとDB接続からサーバーを組み立て、ルーティングを設定する。
func newServer(router *gin.Engine, sqlDB *sql.DB, cfg Config) *Server {
	qrOpts := []httpclient.Option{
		httpclient.WithHeader("x-client-id", cfg.QR.ClientID),
		httpclient.WithHeader("x-api-key", cfg.QR.APIKey),
	}
	if cfg.QR.Timeout > 0 {
		qrOpts = append(qrOpts, httpclient.WithTimeout(cfg.QR.Timeout))
	}

	s := &Server{
		router:    router,
		port:      cfg.Port,
		db:        sqlDB,
		store:     NewStore(sqlDB),
		gate:      gate.New(cfg.Gate),
		jwtSecret: cfg.JWTSecret,
		qr:        cfg.QR,
		qrClient:  httpclient.New(cfg.QR.ProviderURL, qrOpts...),
	}
	s.setupRoutes()
	return s
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// Close はデータベース接続を閉じる。
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes はAPIルーティングを設定する。
// アクセスゲートはルーター全体に適用し、保護対象プレフィックス配下は管理者のみが到達できる。
func (s *Server) setupRoutes() {
	s.router.Use(middleware.AccessGate(s.gate, s.jwtSecret))

	s.router.GET("/", s.handleHome())
	s.router.GET("/login", s.handleLoginPage())
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "storefront"})
	})

	// 認証（ログイン不要）
	auth := s.router.Group("/api/auth")
	{
		auth.POST("/register", s.handleRegister())
		auth.POST("/login", s.handleLogin())
		auth.POST("/logout", s.handleLogout())
	}

	// 商品カタログ（ログイン不要）
	catalog := s.router.Group("/api")
	{
		catalog.GET("/products", s.handleListProducts())
		catalog.GET("/products/:id", s.handleGetProduct())
		catalog.GET("/categories", s.handleListCategories())
	}

	// 購入者向けAPI（ログイン必須）
	customer := s.router.Group("/api")
	customer.Use(middleware.RequireSession(s.jwtSecret))
	{
		customer.GET("/me", s.handleGetCurrentUser())
		customer.POST("/orders", s.handleCheckout())
		customer.GET("/orders", s.handleListMyOrders())
		customer.GET("/orders/:id", s.handleGetMyOrder())
		customer.POST("/orders/:id/confirm", s.handleConfirmOrder())
		customer.POST("/orders/:id/payment-qr", s.handlePaymentQR())
	}

	// 管理画面（アクセスゲートで管理者ロールに限定される）
	admin := s.router.Group("/admin")
	{
		admin.GET("", s.handleDashboard())

		adminAPI := admin.Group("/api")
		adminAPI.GET("/products", s.handleAdminListProducts())
		adminAPI.POST("/products", s.handleAdminCreateProduct())
		adminAPI.PUT("/products/:id", s.handleAdminUpdateProduct())
		adminAPI.DELETE("/products/:id", s.handleAdminDeleteProduct())
		adminAPI.GET("/orders", s.handleAdminListOrders())
		adminAPI.PUT("/orders/:id/status", s.handleAdminUpdateOrderStatus())
		adminAPI.GET("/users", s.handleAdminListUsers())
		adminAPI.PUT("/users/:id/role", s.handleAdminUpdateUserRole())
		adminAPI.GET("/events", s.handleAdminListEvents())
	}
}

// ensureAdmin は指定メールアドレスの管理者が存在しなければ登録する。
// 既存ユーザーが管理者でない場合は管理者に昇格する。
// メールアドレスはログインと同じ規則で正規化してから照合する。
func (s *Server) ensureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("パスワードのハッシュ化に失敗: %w", err)
		}
		created, err := s.store.CreateUser(ctx, User{
			Email:        email,
			Name:         "管理者",
			PasswordHash: string(hash),
			Role:         gate.RoleAdmin,
		})
		if err != nil {
			return err
		}
		log.Printf("[Storefront] 初期管理者を登録しました: %s", created.Email)
		return nil
	}
	if err != nil {
		return err
	}

	if user.Role != gate.RoleAdmin {
		if _, err := s.store.UpdateUserRole(ctx, user.ID, gate.RoleAdmin); err != nil {
			return err
		}
		log.Printf("[Storefront] %s を管理者に昇格しました", user.Email)
	}
	return nil
}

// recordEvent はドメインイベントを記録する。記録の失敗はリクエストを失敗させずログに残す。
func (s *Server) recordEvent(c *gin.Context, aggregateID string, aggregateType event.AggregateType, eventType event.Type, data any) {
	if _, err := s.store.RecordEvent(c.Request.Context(), aggregateID, aggregateType, eventType, data); err != nil {
		log.Printf("イベント記録エラー: aggregate_id=%s, type=%s, error=%v", aggregateID, eventType, err)
	}
}

// respondStoreError はStoreのエラーをHTTPステータスに変換して返す。
func respondStoreError(c *gin.Context, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMsg})
	case errors.Is(err, ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrAmountOverflow):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": ErrAmountOverflow.Error()})
	case errors.Is(err, ErrDuplicateEmail):
		c.JSON(http.StatusConflict, gin.H{"error": ErrDuplicateEmail.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "内部エラーが発生しました"})
		log.Printf("ストアエラー: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
}
