package event

import (
	"encoding/json"
	"time"
)

// AggregateType はイベントの対象となるエンティティの種類を表す。
type AggregateType string

const (
	// AggregateTypeProduct は商品エンティティを表す。
	AggregateTypeProduct AggregateType = "Product"
	// AggregateTypeOrder は注文エンティティを表す。
	AggregateTypeOrder AggregateType = "Order"
	// AggregateTypeUser はユーザーエンティティを表す。
	AggregateTypeUser AggregateType = "User"
)

// Type はイベントの種類を表す。
type Type string

const (
	// TypeProductCreated は商品が登録されたことを表す。
	TypeProductCreated Type = "ProductCreated"
	// TypeProductUpdated は商品情報が更新されたことを表す。
	TypeProductUpdated Type = "ProductUpdated"
	// TypeProductDeleted は商品が削除されたことを表す。
	TypeProductDeleted Type = "ProductDeleted"

	// TypeOrderPlaced はチェックアウトで注文が作成されたことを表す。
	TypeOrderPlaced Type = "OrderPlaced"
	// TypeOrderConfirmed は購入者が注文を確定したことを表す。
	TypeOrderConfirmed Type = "OrderConfirmed"
	// TypeOrderStatusChanged は管理者が注文ステータスを変更したことを表す。
	TypeOrderStatusChanged Type = "OrderStatusChanged"
	// TypePaymentQRIssued は注文の決済QRコードが発行されたことを表す。
	TypePaymentQRIssued Type = "PaymentQRIssued"

	// TypeUserRegistered はユーザーが登録されたことを表す。
	TypeUserRegistered Type = "UserRegistered"
	// TypeUserRoleChanged はユーザーのロールが変更されたことを表す。
	TypeUserRoleChanged Type = "UserRoleChanged"
)

// Event はストアフロントで発生した不変のイベントレコードを表す。
// 管理画面の操作履歴として永続化される。
type Event struct {
	// ID はイベントの一意識別子（UUID）。
	ID string `json:"id"`
	// AggregateID は対象エンティティの識別子。
	AggregateID string `json:"aggregate_id"`
	// AggregateType は対象エンティティの種類。
	AggregateType AggregateType `json:"aggregate_type"`
	// EventType はイベントの種類。
	EventType Type `json:"event_type"`
	// Data はイベント固有のデータ（JSON形式）。
	Data json.RawMessage `json:"data"`
	// Version はAggregate内でのイベントの順序番号。
	Version int64 `json:"version"`
	// CreatedAt はイベントが作成された日時。
	CreatedAt time.Time `json:"created_at"`
}

// ProductData は商品の登録・更新イベントのデータ。
type ProductData struct {
	// Name は商品名。
	Name string `json:"name"`
	// Price は価格（最小通貨単位）。
	Price int64 `json:"price"`
	// Stock は在庫数。
	Stock int64 `json:"stock"`
	// ActorID は操作した管理者のID。
	ActorID string `json:"actor_id"`
}

// ProductDeletedData はProductDeletedイベントのデータ。
type ProductDeletedData struct {
	// ActorID は操作した管理者のID。
	ActorID string `json:"actor_id"`
}

// OrderPlacedData はOrderPlacedイベントのデータ。
type OrderPlacedData struct {
	// UserID は注文したユーザーのID。
	UserID string `json:"user_id"`
	// Total は合計金額（最小通貨単位）。
	Total int64 `json:"total"`
	// ItemCount は注文明細の数。
	ItemCount int `json:"item_count"`
}

// OrderConfirmedData はOrderConfirmedイベントのデータ。
type OrderConfirmedData struct {
	// UserID は注文を確定したユーザーのID。
	UserID string `json:"user_id"`
}

// OrderStatusChangedData はOrderStatusChangedイベントのデータ。
type OrderStatusChangedData struct {
	// From は変更前のステータス。
	From string `json:"from"`
	// To は変更後のステータス。
	To string `json:"to"`
	// ActorID は操作した管理者のID。
	ActorID string `json:"actor_id"`
}

// PaymentQRIssuedData はPaymentQRIssuedイベントのデータ。
type PaymentQRIssuedData struct {
	// Amount は請求金額。
	Amount int64 `json:"amount"`
	// Reference は振込内容に記載する注文の参照コード。
	Reference string `json:"reference"`
}

// UserRegisteredData はUserRegisteredイベントのデータ。
type UserRegisteredData struct {
	// Email はユーザーのメールアドレス。
	Email string `json:"email"`
}

// UserRoleChangedData はUserRoleChangedイベントのデータ。
type UserRoleChangedData struct {
	// From は変更前のロール。
	From string `json:"from"`
	// To は変更後のロール。
	To string `json:"to"`
	// ActorID は操作した管理者のID。
	ActorID string `json:"actor_id"`
}
