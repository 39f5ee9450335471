package storefront

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// homeProductLimit はホームに表示する新着商品の件数。
const homeProductLimit = 8

// productResponse は商品のJSONレスポンス構造。
type productResponse struct {
	// ID は商品の一意識別子。
	ID string `json:"id"`
	// Name は商品名。
	Name string `json:"name"`
	// Description は商品説明。
	Description string `json:"description"`
	// Category はカテゴリ。
	Category string `json:"category"`
	// Price は価格（VND）。
	Price int64 `json:"price"`
	// Stock は在庫数。
	Stock int64 `json:"stock"`
	// ImageURL は商品画像のURL。
	ImageURL string `json:"image_url"`
	// CreatedAt は登録日時。
	CreatedAt string `json:"created_at"`
	// UpdatedAt は更新日時。
	UpdatedAt string `json:"updated_at"`
}

func toProductResponse(p Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toProductResponses(products []Product) []productResponse {
	resp := make([]productResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, toProductResponse(p))
	}
	return resp
}

// handleHome はストアフロントのトップとして新着商品を返すハンドラを返す。
// ロール不足で管理画面から戻されたユーザーもここに到達する。
func (s *Server) handleHome() gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := s.store.ListProducts(c.Request.Context(), ProductFilter{Limit: homeProductLimit})
		if err != nil {
			respondStoreError(c, err, "")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"service":  "huth-shop",
			"products": toProductResponses(products),
		})
	}
}

// handleListProducts は商品一覧を返すハンドラを返す。
// クエリパラメータ category と q で絞り込める。
func (s *Server) handleListProducts() gin.HandlerFunc {
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

// handleGetProduct は商品詳細を返すハンドラを返す。
func (s *Server) handleGetProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := s.store.GetProduct(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondStoreError(c, err, "商品が見つかりません")
			return
		}
		c.JSON(http.StatusOK, toProductResponse(p))
	}
}

// handleListCategories はカテゴリ一覧を返すハンドラを返す。
func (s *Server) handleListCategories() gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := s.store.ListCategories(c.Request.Context())
		if err != nil {
			respondStoreError(c, err, "")
			return
		}
		c.JSON(http.StatusOK, gin.H{"categories": categories})
	}
}
