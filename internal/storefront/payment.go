package storefront

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vietthang09/huth-shop-ui-sub003/pkg/event"
	"github.com/vietthang09/huth-shop-ui-sub003/pkg/middleware"
)

// qrGeneratePath はQR生成APIのパス。
const qrGeneratePath = "/v2/generate"

// qrSuccessCode はQR生成APIの成功コード。
const qrSuccessCode = "00"

// qrGenerateRequest はQR生成APIのリクエストボディ。
type qrGenerateRequest struct {
	AccountNo   string `json:"accountNo"`
	AccountName string `json:"accountName"`
	AcqID       int    `json:"acqId"`
	Amount      int64  `json:"amount"`
	AddInfo     string `json:"addInfo"`
	Format      string `json:"format"`
	Template    string `json:"template"`
}

// qrGenerateResponse はQR生成APIのレスポンスボディ。
type qrGenerateResponse struct {
	Code string `json:"code"`
	Desc string `json:"desc"`
	Data struct {
		QRCode    string `json:"qrCode"`
		QRDataURL string `json:"qrDataURL"`
	} `json:"data"`
}

// paymentReference は振込内容に記載する注文の参照コードを返す。
// 銀行アプリで入力できるよう英数字のみ・大文字で構成する。
func paymentReference(orderID string) string {
	ref := strings.ToUpper(strings.ReplaceAll(orderID, "-", ""))
	if len(ref) > 8 {
		ref = ref[:8]
	}
	return "HUTH" + ref
}

// handlePaymentQR は注文の決済QRコードを発行するハンドラを返す。
// 支払い前（pending・confirmed）の注文のみ対象とし、プロバイダの失敗は502を返す。
func (s *Server) handlePaymentQR() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.qr.AccountNo == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "決済QRが設定されていません"})
			return
		}

		order, err := s.store.GetOrder(c.Request.Context(), c.Param("id"))
		if err == nil && order.UserID != middleware.GetUserID(c) {
			err = ErrNotFound
		}
		if err != nil {
			respondStoreError(c, err, "注文が見つかりません")
			return
		}
		if order.Status != OrderStatusPending && order.Status != OrderStatusConfirmed {
			c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("%s の注文には決済QRを発行できません", order.Status)})
			return
		}

		acqID, err := strconv.Atoi(s.qr.BankID)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "決済QRの銀行設定が不正です"})
			log.Printf("QR_BANK_IDが不正: %q", s.qr.BankID)
			return
		}

		ref := paymentReference(order.ID)
		var resp qrGenerateResponse
		if err := s.qrClient.PostJSON(c.Request.Context(), qrGeneratePath, qrGenerateRequest{
			AccountNo:   s.qr.AccountNo,
			AccountName: s.qr.AccountName,
			AcqID:       acqID,
			Amount:      order.Total,
			AddInfo:     ref,
			Format:      "text",
			Template:    s.qr.Template,
		}, &resp); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "決済QRの生成に失敗しました"})
			log.Printf("QR生成エラー: order_id=%s, error=%v", order.ID, err)
			return
		}
		if resp.Code != qrSuccessCode || resp.Data.QRDataURL == "" {
			c.JSON(http.StatusBadGateway, gin.H{"error": "決済QRの生成に失敗しました"})
			log.Printf("QR生成エラー: order_id=%s, code=%s, desc=%s", order.ID, resp.Code, resp.Desc)
			return
		}

		s.recordEvent(c, order.ID, event.AggregateTypeOrder, event.TypePaymentQRIssued, event.PaymentQRIssuedData{
			Amount:    order.Total,
			Reference: ref,
		})

		c.JSON(http.StatusOK, gin.H{
			"order_id":    order.ID,
			"amount":      order.Total,
			"reference":   ref,
			"qr_data_url": resp.Data.QRDataURL,
			"qr_code":     resp.Data.QRCode,
		})
	}
}
