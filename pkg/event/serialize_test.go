package event

import (
	"encoding/json"
	"testing"
	"time"
)

// TestNew はNew関数でイベントが正しく生成されることを検証する。
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("OrderPlacedDataでイベントを正常に生成できること", func(t *testing.T) {
		t.Parallel()

		data := OrderPlacedData{UserID: "user-1", Total: 450000, ItemCount: 2}

		before := time.Now().UTC()
		ev, err := New("order-1", AggregateTypeOrder, TypeOrderPlaced, 1, data)
		after := time.Now().UTC()
		if err != nil {
			t.Fatalf("New()でエラーが発生: %v", err)
		}

		if ev.ID == "" {
			t.Error("IDが空文字列")
		}
		if ev.AggregateID != "order-1" {
			t.Errorf("AggregateID = %q, want %q", ev.AggregateID, "order-1")
		}
		if ev.AggregateType != AggregateTypeOrder {
			t.Errorf("AggregateType = %q, want %q", ev.AggregateType, AggregateTypeOrder)
		}
		if ev.EventType != TypeOrderPlaced {
			t.Errorf("EventType = %q, want %q", ev.EventType, TypeOrderPlaced)
		}
		if ev.Version != 1 {
			t.Errorf("Version = %d, want %d", ev.Version, 1)
		}
		if ev.CreatedAt.Before(before) || ev.CreatedAt.After(after) {
			t.Errorf("CreatedAt = %v, 期待する範囲: [%v, %v]", ev.CreatedAt, before, after)
		}

		var decoded map[string]any
		if err := json.Unmarshal(ev.Data, &decoded); err != nil {
			t.Fatalf("Dataのデシリアライズに失敗: %v", err)
		}
		if decoded["user_id"] != "user-1" {
			t.Errorf("data.user_id = %v, want user-1", decoded["user_id"])
		}
	})

	t.Run("イベントごとに異なるIDが採番されること", func(t *testing.T) {
		t.Parallel()

		ev1, err := New("p-1", AggregateTypeProduct, TypeProductDeleted, 1, ProductDeletedData{ActorID: "admin"})
		if err != nil {
			t.Fatalf("New()でエラーが発生: %v", err)
		}
		ev2, err := New("p-1", AggregateTypeProduct, TypeProductDeleted, 2, ProductDeletedData{ActorID: "admin"})
		if err != nil {
			t.Fatalf("New()でエラーが発生: %v", err)
		}
		if ev1.ID == ev2.ID {
			t.Errorf("IDが重複している: %s", ev1.ID)
		}
	})

	t.Run("シリアライズできないデータでエラーが返ること", func(t *testing.T) {
		t.Parallel()

		if _, err := New("x", AggregateTypeUser, TypeUserRegistered, 1, make(chan int)); err == nil {
			t.Error("chanのシリアライズでエラーが返らない")
		}
	})
}

// TestDecodeData はDecodeData関数を検証する。
func TestDecodeData(t *testing.T) {
	t.Parallel()

	t.Run("イベントデータを指定した型に復元できること", func(t *testing.T) {
		t.Parallel()

		ev, err := New("order-2", AggregateTypeOrder, TypeOrderStatusChanged, 3, OrderStatusChangedData{
			From:    "confirmed",
			To:      "shipped",
			ActorID: "admin-1",
		})
		if err != nil {
			t.Fatalf("New()でエラーが発生: %v", err)
		}

		data, err := DecodeData[OrderStatusChangedData](ev)
		if err != nil {
			t.Fatalf("DecodeData()でエラーが発生: %v", err)
		}
		if data.From != "confirmed" || data.To != "shipped" || data.ActorID != "admin-1" {
			t.Errorf("DecodeData() = %+v", data)
		}
	})

	t.Run("不正なJSONでエラーが返ること", func(t *testing.T) {
		t.Parallel()

		ev := &Event{Data: json.RawMessage(`{broken`)}
		if _, err := DecodeData[UserRoleChangedData](ev); err == nil {
			t.Error("不正なJSONでエラーが返らない")
		}
	})
}

// TestNewRequiresAggregateID はAggregateIDが必須であることを検証する。
func TestNewRequiresAggregateID(t *testing.T) {
	t.Parallel()

	if _, err := New("", AggregateTypeOrder, TypeOrderPlaced, 1, OrderPlacedData{}); err == nil {
		t.Error("空のAggregateIDでエラーが返らない")
	}
}
