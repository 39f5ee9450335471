package storefront

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vietthang09/huth-shop-ui-sub003/pkg/event"
	"github.com/vietthang09/huth-shop-ui-sub003/pkg/middleware"
)

// checkoutItem はチェックアウトの購入明細。
type checkoutItem struct {
	// ProductID は購入する商品のID。
	ProductID string `json:"product_id" binding:"required"`
	// Quantity は購入数量。
	Quantity int64 `json:"quantity" binding:"required,min=1,max=1000000"`
}

// shippingRequest は配送先のJSON構造。
type shippingRequest struct {
	// Name は受取人の氏名。
	Name string `json:"name" binding:"required"`
	// Phone は受取人の電話番号。
	Phone string `json:"phone" binding:"required"`
	// Address は配送先住所。
	Address string `json:"address" binding:"required"`
}

// checkoutRequest はチェックアウトリクエストのJSON構造。
// カートの状態はクライアントが保持し、チェックアウト時に内容を送信する。
type checkoutRequest struct {
	// Items は購入明細。1件以上必要。
	Items []checkoutItem `json:"items" binding:"required,min=1,dive"`
	// Shipping は配送先。
	Shipping shippingRequest `json:"shipping" binding:"required"`
}

// orderItemResponse は注文明細のJSONレスポンス構造。
type orderItemResponse struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	UnitPrice   int64  `json:"unit_price"`
	Quantity    int64  `json:"quantity"`
	Subtotal    int64  `json:"subtotal"`
}

// orderResponse は注文のJSONレスポンス構造。
type orderResponse struct {
	ID              string              `json:"id"`
	UserID          string              `json:"user_id"`
	Status          OrderStatus         `json:"status"`
	Total           int64               `json:"total"`
	ShippingName    string              `json:"shipping_name"`
	ShippingPhone   string              `json:"shipping_phone"`
	ShippingAddress string              `json:"shipping_address"`
	Items           []orderItemResponse `json:"items,omitempty"`
	CreatedAt       string              `json:"created_at"`
	UpdatedAt       string              `json:"updated_at"`
}

func toOrderResponse(o Order) orderResponse {
	resp := orderResponse{
		ID:              o.ID,
		UserID:          o.UserID,
		Status:          o.Status,
		Total:           o.Total,
		ShippingName:    o.Shipping.Name,
		ShippingPhone:   o.Shipping.Phone,
		ShippingAddress: o.Shipping.Address,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			Subtotal:    item.UnitPrice * item.Quantity,
		})
	}
	return resp
}

func toOrderResponses(orders []Order) []orderResponse {
	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o))
	}
	return resp
}

// handleCheckout はチェックアウトを処理するハンドラを返す。
// 在庫を引き当てて pending の注文を作成し、OrderPlacedイベントを記録する。
func (s *Server) handleCheckout() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		lines := make([]OrderLine, 0, len(req.Items))
		for _, item := range req.Items {
			lines = append(lines, OrderLine{ProductID: item.ProductID, Quantity: item.Quantity})
		}

		userID := middleware.GetUserID(c)
		order, err := s.store.PlaceOrder(c.Request.Context(), userID, lines, Shipping{
			Name:    req.Shipping.Name,
			Phone:   req.Shipping.Phone,
			Address: req.Shipping.Address,
		})
		if err != nil {
			respondStoreError(c, err, "商品が見つかりません")
			return
		}

		s.recordEvent(c, order.ID, event.AggregateTypeOrder, event.TypeOrderPlaced, event.OrderPlacedData{
			UserID:    userID,
			Total:     order.Total,
			ItemCount: len(order.Items),
		})

		c.JSON(http.StatusCreated, toOrderResponse(order))
	}
}

// handleListMyOrders はログインユーザーの注文一覧を返すハンドラを返す。
func (s *Server) handleListMyOrders() gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := s.store.ListOrders(c.Request.Context(), middleware.GetUserID(c), "")
		if err != nil {
			respondStoreError(c, err, "")
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": toOrderResponses(orders)})
	}
}

// handleGetMyOrder はログインユーザーの注文詳細を返すハンドラを返す。
// 他のユーザーの注文は存在しないものとして404を返す。
func (s *Server) handleGetMyOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := s.store.GetOrder(c.Request.Context(), c.Param("id"))
		if err == nil && order.UserID != middleware.GetUserID(c) {
			err = ErrNotFound
		}
		if err != nil {
			respondStoreError(c, err, "注文が見つかりません")
			return
		}
		c.JSON(http.StatusOK, toOrderResponse(order))
	}
}

// handleConfirmOrder は購入者による注文確定を処理するハンドラを返す。
// pending の注文のみ確定でき、それ以外は409を返す。
func (s *Server) handleConfirmOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		orderID := c.Param("id")

		if _, err := s.store.TransitionOrder(c.Request.Context(), orderID, userID, OrderStatusConfirmed); err != nil {
			respondStoreError(c, err, "注文が見つかりません")
			return
		}

		s.recordEvent(c, orderID, event.AggregateTypeOrder, event.TypeOrderConfirmed, event.OrderConfirmedData{
			UserID: userID,
		})

		order, err := s.store.GetOrder(c.Request.Context(), orderID)
		if err != nil {
			respondStoreError(c, err, "注文が見つかりません")
			return
		}
		c.JSON(http.StatusOK, toOrderResponse(order))
	}
}
