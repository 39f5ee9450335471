package storefront

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vietthang09/huth-shop-ui-sub003/pkg/event"
	"github.com/vietthang09/huth-shop-ui-sub003/pkg/gate"
	"github.com/vietthang09/huth-shop-ui-sub003/pkg/middleware"
)

const (
	// defaultEventLimit は操作履歴の既定取得件数。
	defaultEventLimit = 50
	// maxEventLimit は操作履歴の最大取得件数。
	maxEventLimit = 500
)

// productRequest は商品登録・更新リクエストのJSON構造。
// 価格は1兆VND、在庫は100万個を上限とする。
type productRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Price       int64  `json:"price" binding:"min=0,max=1000000000000"`
	Stock       int64  `json:"stock" binding:"min=0,max=1000000"`
	ImageURL    string `json:"image_url"`
}

func (r productRequest) toProduct(id string) Product {
	return Product{
		ID:          id,
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		Price:       r.Price,
		Stock:       r.Stock,
		ImageURL:    r.ImageURL,
	}
}

// orderStatusRequest は注文ステータス変更リクエストのJSON構造。
type orderStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required,oneof=confirmed shipped delivered cancelled"`
}

// userRoleRequest はロール変更リクエストのJSON構造。
type userRoleRequest struct {
	Role gate.Role `json:"role" binding:"required,oneof=admin user"`
}

// handleDashboard は管理ダッシュボードの集計値を返すハンドラを返す。
func (s *Server) handleDashboard() gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := s.store.Dashboard(c.Request.Context())
		if err != nil {
			respondStoreError(c, err, "")
			return
		}

		byStatus := make(map[string]int64, len(stats.OrdersByStatus))
		for status, n := range stats.OrdersByStatus {
			byStatus[string(status)] = n
		}
		c.JSON(http.StatusOK, gin.H{
			"users":            stats.Users,
			"products":         stats.Products,
			"orders":           stats.Orders,
			"orders_by_status": byStatus,
			"revenue":          stats.Revenue,
			"low_stock":        toProductResponses(stats.LowStock),
		})
	}
}

// handleAdminListProducts は管理画面向けの商品一覧を返すハンドラを返す。
func (s *Server) handleAdminListProducts() gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := s.store.ListProducts(c.Request.Context(), ProductFilter{
			Category: c.Query("category"),
			Query:    c.Query("q"),
		})
		if err != nil {
			respondStoreError(c, err, "")
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": toProductResponses(products)})
	}
}

// handleAdminCreateProduct は商品を登録するハンドラを返す。
func (s *Server) handleAdminCreateProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		p, err := s.store.CreateProduct(c.Request.Context(), req.toProduct(""))
		if err != nil {
			respondStoreError(c, err, "")
			return
		}

		s.recordEvent(c, p.ID, event.AggregateTypeProduct, event.TypeProductCreated, event.ProductData{
			Name:    p.Name,
			Price:   p.Price,
			Stock:   p.Stock,
			ActorID: middleware.GetUserID(c),
		})
		c.JSON(http.StatusCreated, toProductResponse(p))
	}
}

// handleAdminUpdateProduct は商品情報を更新するハンドラを返す。
func (s *Server) handleAdminUpdateProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		p, err := s.store.UpdateProduct(c.Request.Context(), req.toProduct(c.Param("id")))
		if err != nil {
			respondStoreError(c, err, "商品が見つかりません")
			return
		}

		s.recordEvent(c, p.ID, event.AggregateTypeProduct, event.TypeProductUpdated, event.ProductData{
			Name:    p.Name,
			Price:   p.Price,
			Stock:   p.Stock,
			ActorID: middleware.GetUserID(c),
		})
		c.JSON(http.StatusOK, toProductResponse(p))
	}
}

// handleAdminDeleteProduct は商品を削除するハンドラを返す。
func (s *Server) handleAdminDeleteProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := s.store.DeleteProduct(c.Request.Context(), id); err != nil {
			respondStoreError(c, err, "商品が見つかりません")
			return
		}

		s.recordEvent(c, id, event.AggregateTypeProduct, event.TypeProductDeleted, event.ProductDeletedData{
			ActorID: middleware.GetUserID(c),
		})
		c.Status(http.StatusNoContent)
	}
}

// handleAdminListOrders は全ユーザーの注文一覧を返すハンドラを返す。
// クエリパラメータ status で絞り込める。
func (s *Server) handleAdminListOrders() gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := s.store.ListOrders(c.Request.Context(), "", OrderStatus(c.Query("status")))
		if err != nil {
			respondStoreError(c, err, "")
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": toOrderResponses(orders)})
	}
}

// handleAdminUpdateOrderStatus は注文ステータスを変更するハンドラを返す。
// 許可されていない遷移は409を返す。
func (s *Server) handleAdminUpdateOrderStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req orderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		id := c.Param("id")
		prev, err := s.store.TransitionOrder(c.Request.Context(), id, "", req.Status)
		if err != nil {
			respondStoreError(c, err, "注文が見つかりません")
			return
		}

		s.recordEvent(c, id, event.AggregateTypeOrder, event.TypeOrderStatusChanged, event.OrderStatusChangedData{
			From:    string(prev),
			To:      string(req.Status),
			ActorID: middleware.GetUserID(c),
		})

		order, err := s.store.GetOrder(c.Request.Context(), id)
		if err != nil {
			respondStoreError(c, err, "注文が見つかりません")
			return
		}
		c.JSON(http.StatusOK, toOrderResponse(order))
	}
}

// handleAdminListUsers はユーザー一覧を返すハンドラを返す。
func (s *Server) handleAdminListUsers() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := s.store.ListUsers(c.Request.Context())
		if err != nil {
			respondStoreError(c, err, "")
			return
		}
		resp := make([]userResponse, 0, len(users))
		for _, u := range users {
			resp = append(resp, toUserResponse(u))
		}
		c.JSON(http.StatusOK, gin.H{"users": resp})
	}
}

// handleAdminUpdateUserRole はユーザーのロールを変更するハンドラを返す。
// 変更は対象ユーザーの次回ログイン時に発行されるトークンから反映される。
// 管理者が不在になるのを防ぐため、自分自身のロールは変更できない。
func (s *Server) handleAdminUpdateUserRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req userRoleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		id := c.Param("id")
		actorID := middleware.GetUserID(c)
		if id == actorID {
			c.JSON(http.StatusConflict, gin.H{"error": "自分自身のロールは変更できません"})
			return
		}

		prev, err := s.store.UpdateUserRole(c.Request.Context(), id, req.Role)
		if err != nil {
			respondStoreError(c, err, "ユーザーが見つかりません")
			return
		}

		if prev != req.Role {
			s.recordEvent(c, id, event.AggregateTypeUser, event.TypeUserRoleChanged, event.UserRoleChangedData{
				From:    string(prev),
				To:      string(req.Role),
				ActorID: actorID,
			})
		}

		user, err := s.store.GetUserByID(c.Request.Context(), id)
		if err != nil {
			respondStoreError(c, err, "ユーザーが見つかりません")
			return
		}
		c.JSON(http.StatusOK, toUserResponse(user))
	}
}

// handleAdminListEvents はドメインイベントの履歴を新しい順に返すハンドラを返す。
// クエリパラメータ limit で件数を、aggregate_id で対象エンティティを指定できる。
func (s *Server) handleAdminListEvents() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := defaultEventLimit
		if v := c.Query("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limitは正の整数で指定してください"})
				return
			}
			limit = min(n, maxEventLimit)
		}

		events, err := s.store.ListEvents(c.Request.Context(), c.Query("aggregate_id"), limit)
		if err != nil {
			respondStoreError(c, err, "")
			return
		}
		c.JSON(http.StatusOK, gin.H{"events": events})
	}
}
